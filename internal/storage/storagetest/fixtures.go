// Package storagetest provides a sample catalog and store constructors for tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/internal/storage"
)

// SampleCatalog returns a small catalog covering every entity kind. Course 14 is the
// only row mentioning "Xyzzyzzy1" and course 3 is CS1332.
func SampleCatalog() *models.Catalog {
	return &models.Catalog{
		Departments: []models.Department{
			{Abbr: "CS", Campus: "Atlanta", Name: "Computer Science"},
			{Abbr: "MATH", Campus: "Atlanta", Name: "Mathematics"},
			{Abbr: "PHYS", Campus: "Atlanta", Name: "Physics"},
			{Abbr: "CHEM", Campus: "Atlanta", Name: "Chemistry"},
			{Abbr: "ECE", Campus: "Atlanta", Name: "Electrical and Computer Engineering"},
		},
		Courses: []models.Course{
			{ID: 1, DeptAbbr: "CS", Number: "1301", Title: "Introduction to Computing", Enrollment: 5000},
			{ID: 2, DeptAbbr: "CS", Number: "1331", Title: "Introduction to Object Oriented Programming", Enrollment: 4000},
			{ID: 3, DeptAbbr: "CS", Number: "1332", Title: "Data Structures and Algorithms", Enrollment: 3500},
			{ID: 4, DeptAbbr: "CS", Number: "2340", Title: "Objects and Design", Enrollment: 2000},
			{ID: 5, DeptAbbr: "MATH", Number: "1551", Title: "Differential Calculus", Enrollment: 6000},
			{ID: 6, DeptAbbr: "MATH", Number: "1552", Title: "Integral Calculus", Enrollment: 5500},
			{ID: 7, DeptAbbr: "PHYS", Number: "2211", Title: "Introductory Physics I", Enrollment: 4500},
			{ID: 8, DeptAbbr: "CHEM", Number: "1310", Title: "General Chemistry", Enrollment: 3000},
			{ID: 9, DeptAbbr: "ECE", Number: "2020", Title: "Fundamentals of Digital System Design", Enrollment: 1500},
			{ID: 10, DeptAbbr: "CS", Number: "4641", Title: "Machine Learning", Enrollment: 1200},
			{ID: 11, DeptAbbr: "CS", Number: "7643", Title: "Deep Learning", Enrollment: 800},
			{ID: 12, DeptAbbr: "MATH", Number: "3012", Title: "Applied Combinatorics", Enrollment: 2500},
			{ID: 13, DeptAbbr: "CS", Number: "3510", Title: "Design and Analysis of Algorithms", Enrollment: 1800},
			{ID: 14, DeptAbbr: "PHYS", Number: "4999", Title: "Xyzzyzzy1 Special Topics"},
			{ID: 15, DeptAbbr: "CS", Number: "4400", Title: "Introduction to Database Systems", Enrollment: 1700},
		},
		Professors: []models.Professor{
			{ID: 100, Name: "Mary Hudachek-Buswell", Rating: 4.5, Difficulty: 3.1, WouldTakeAgain: 88},
			{ID: 101, Name: "Sal Barone", Rating: 3.9, Difficulty: 3.4, WouldTakeAgain: 70},
			{ID: 102, Name: "Thad Starner", Rating: 4.1, Difficulty: 3.0, WouldTakeAgain: 80},
			{ID: 103, Name: "Greg Mayer", Rating: 4.2, Difficulty: 2.9, WouldTakeAgain: 85},
			{ID: 104, Name: "Joy Arulraj", Rating: 4.6, Difficulty: 3.6, WouldTakeAgain: 90},
		},
		Distributions: []models.Distribution{
			{ID: 1000, CourseID: 3, ProfessorID: 100, Terms: []models.TermDistribution{
				{Term: 202402, Students: 300, Grades: models.GradeCounts{"A": 150, "B": 100, "C": 30, "D": 10, "F": 10}},
				{Term: 202408, Students: 200, Grades: models.GradeCounts{"A": 120, "B": 60, "C": 20}},
			}},
			{ID: 1001, CourseID: 6, ProfessorID: 101, Terms: []models.TermDistribution{
				{Term: 202402, Students: 400, Grades: models.GradeCounts{"A": 100, "B": 150, "C": 100, "D": 30, "F": 20}},
			}},
			{ID: 1002, CourseID: 10, ProfessorID: 102, Terms: []models.TermDistribution{
				{Term: 202408, Students: 150, Grades: models.GradeCounts{"A": 100, "B": 40, "C": 10}},
			}},
			{ID: 1003, CourseID: 2, ProfessorID: 103, Terms: []models.TermDistribution{
				{Term: 202405, Students: 250, Grades: models.GradeCounts{"A": 125, "B": 75, "C": 25, "D": 15, "F": 5, "W": 5}},
			}},
			{ID: 1004, CourseID: 15, ProfessorID: 104, Terms: []models.TermDistribution{
				{Term: 202502, Students: 120, Grades: models.GradeCounts{"A": 80, "B": 30, "C": 10}},
			}},
			{ID: 1005, CourseID: 14, ProfessorID: 101, Terms: []models.TermDistribution{
				{Term: 202408, Students: 12, Grades: models.GradeCounts{"A": 12}},
			}},
		},
	}
}

// NewStore opens a fresh file-backed store in a temp dir. It is closed on test cleanup.
func NewStore(tb testing.TB, opts ...storage.Option) *storage.SQLiteStorage {
	tb.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(tb.TempDir(), "grades.db"), opts...)
	if err != nil {
		tb.Fatalf("NewSQLiteStorage: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// NewSampleStore opens a store loaded with SampleCatalog.
func NewSampleStore(tb testing.TB, opts ...storage.Option) *storage.SQLiteStorage {
	tb.Helper()
	store := NewStore(tb, opts...)
	if err := store.ImportCatalog(context.Background(), SampleCatalog()); err != nil {
		tb.Fatalf("ImportCatalog: %v", err)
	}
	return store
}
