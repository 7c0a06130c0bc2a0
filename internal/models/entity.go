// Package models defines core data structures for catalog entities, queries, and search results.
package models

import "strconv"

// Department is one academic department.
type Department struct {
	Abbr       string `json:"abbr" db:"dept_abbr"`
	Campus     string `json:"campus" db:"campus"`
	Name       string `json:"name" db:"dept_name"`
	Enrollment int64  `json:"enrollment" db:"-"`
}

// Course is one catalog course. Enrollment is the total number of students graded.
type Course struct {
	ID         int64  `json:"id" db:"id"`
	Campus     string `json:"campus" db:"campus"`
	DeptAbbr   string `json:"dept_abbr" db:"dept_abbr"`
	Number     string `json:"course_num" db:"course_num"`
	Title      string `json:"title" db:"class_desc"`
	Enrollment int64  `json:"enrollment" db:"total_students"`
}

// Code returns the compact code, e.g. "CS1332".
func (c *Course) Code() string {
	return c.DeptAbbr + c.Number
}

// SpacedCode returns the code with a space between department and number, e.g. "CS 1332".
func (c *Course) SpacedCode() string {
	return c.DeptAbbr + " " + c.Number
}

// Key returns the course ID in the string form used by indexes and results.
func (c *Course) Key() string {
	return strconv.FormatInt(c.ID, 10)
}

// Professor is one instructor with optional external rating data.
type Professor struct {
	ID             int64   `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	Rating         float64 `json:"rating" db:"rmp_score"`
	Difficulty     float64 `json:"difficulty" db:"rmp_diff"`
	WouldTakeAgain float64 `json:"would_take_again" db:"rmp_would_take_again"`
	RatingLink     string  `json:"rating_link,omitempty" db:"rmp_link"`
	Enrollment     int64   `json:"enrollment" db:"-"`
}

// Key returns the professor ID in the string form used by indexes and results.
func (p *Professor) Key() string {
	return strconv.FormatInt(p.ID, 10)
}

// GradeCounts maps a grade category ("A", "B", "W", ...) to a student count.
type GradeCounts map[string]float64

// GradeSummary is the aggregate of one or more GradeCounts.
type GradeSummary struct {
	WeightedAverage float64 `json:"weightedAverage"`
	ModalCategory   string  `json:"modalCategory"`
	ModalPercentage float64 `json:"modalPercentage"`
}

// Catalog is the import document accepted by the load command.
type Catalog struct {
	Departments   []Department   `json:"departments"`
	Courses       []Course       `json:"courses"`
	Professors    []Professor    `json:"professors"`
	Distributions []Distribution `json:"distributions"`
}

// Distribution links a course to the professor who taught it, with per-term grade counts.
type Distribution struct {
	ID          int64              `json:"id"`
	CourseID    int64              `json:"course_id"`
	ProfessorID int64              `json:"professor_id"`
	Terms       []TermDistribution `json:"terms"`
}

// TermDistribution holds the grades given in one term, e.g. term 202502.
type TermDistribution struct {
	Term     int         `json:"term"`
	Students int64       `json:"students"`
	Grades   GradeCounts `json:"grades"`
}
