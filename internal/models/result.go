package models

import "encoding/json"

// Source tags where a RawResult came from and which score field is meaningful.
type Source string

const (
	// SourceIndex rows carry NativeScore (lower is more relevant).
	SourceIndex Source = "index"
	// SourceFastPath rows are identity matches that carry Priority.
	SourceFastPath Source = "fast_path"
	// SourceFallback rows come from substring matching and carry BoostScore once ranked.
	SourceFallback Source = "fallback"
)

// RawResult is one retrieved row before ranking. Exactly one of Course, Professor and
// Department is set, matching Kind.
type RawResult struct {
	Kind        EntityKind
	ID          string
	Source      Source
	NativeScore float64
	Priority    float64
	BoostScore  float64
	Popularity  int64

	Course     *Course
	Professor  *Professor
	Department *Department
}

// NewCourseResult wraps a course row.
func NewCourseResult(c *Course, src Source) *RawResult {
	return &RawResult{Kind: KindCourse, ID: c.Key(), Source: src, Popularity: c.Enrollment, Course: c}
}

// NewProfessorResult wraps a professor row.
func NewProfessorResult(p *Professor, src Source) *RawResult {
	return &RawResult{Kind: KindProfessor, ID: p.Key(), Source: src, Popularity: p.Enrollment, Professor: p}
}

// NewDepartmentResult wraps a department row.
func NewDepartmentResult(d *Department, src Source) *RawResult {
	return &RawResult{Kind: KindDepartment, ID: d.Abbr, Source: src, Popularity: d.Enrollment, Department: d}
}

// Name returns the human-readable text: course title, professor name, or department name.
func (r *RawResult) Name() string {
	switch {
	case r.Course != nil:
		return r.Course.Title
	case r.Professor != nil:
		return r.Professor.Name
	case r.Department != nil:
		return r.Department.Name
	}
	return ""
}

// Code returns the identifying code: compact course code or department abbreviation.
// Professors have none.
func (r *RawResult) Code() string {
	switch {
	case r.Course != nil:
		return r.Course.Code()
	case r.Department != nil:
		return r.Department.Abbr
	}
	return ""
}

// RankedResult is a RawResult with its final scores and grade summary.
type RankedResult struct {
	*RawResult
	CombinedScore float64
	FuzzyScore    *float64
	Summary       GradeSummary
}

type rankedRecord struct {
	Kind           EntityKind   `json:"kind"`
	ID             string       `json:"id"`
	Source         Source       `json:"source,omitempty"`
	Course         *Course      `json:"course,omitempty"`
	Professor      *Professor   `json:"professor,omitempty"`
	Department     *Department  `json:"department,omitempty"`
	RelevanceScore *float64     `json:"relevanceScore,omitempty"`
	CombinedScore  float64      `json:"combinedScore"`
	FuzzyScore     *float64     `json:"fuzzyScore,omitempty"`
	Summary        GradeSummary `json:"summary"`
}

// MarshalJSON flattens the record and emits only the score fields that applied.
func (r *RankedResult) MarshalJSON() ([]byte, error) {
	rec := rankedRecord{
		Kind:          r.Kind,
		ID:            r.ID,
		Source:        r.Source,
		Course:        r.Course,
		Professor:     r.Professor,
		Department:    r.Department,
		CombinedScore: r.CombinedScore,
		FuzzyScore:    r.FuzzyScore,
		Summary:       r.Summary,
	}
	switch r.Source {
	case SourceIndex:
		s := r.NativeScore
		rec.RelevanceScore = &s
	case SourceFallback:
		s := r.BoostScore
		rec.RelevanceScore = &s
	}
	return json.Marshal(rec)
}

// Failure describes an entity kind whose index and fallback paths both failed.
type Failure struct {
	Kind  EntityKind `json:"kind"`
	Label string     `json:"label"`
	Error string     `json:"error"`
}

// SearchResponse holds the three result lists. Lists are never nil.
type SearchResponse struct {
	Query          string          `json:"query"`
	Scope          string          `json:"scope,omitempty"`
	Classification string          `json:"classification"`
	Departments    []*RankedResult `json:"departments"`
	Classes        []*RankedResult `json:"classes"`
	Professors     []*RankedResult `json:"professors"`
	Failures       []Failure       `json:"failures,omitempty"`
	Cached         bool            `json:"cached"`
	QueryTime      int64           `json:"query_time_ms"`
}

// NewSearchResponse returns a response with three empty lists.
func NewSearchResponse(q SearchQuery) *SearchResponse {
	return &SearchResponse{
		Query:       q.Normalized,
		Scope:       q.Scope,
		Departments: []*RankedResult{},
		Classes:     []*RankedResult{},
		Professors:  []*RankedResult{},
	}
}

// List returns the result list for kind.
func (r *SearchResponse) List(kind EntityKind) []*RankedResult {
	switch kind {
	case KindCourse:
		return r.Classes
	case KindProfessor:
		return r.Professors
	case KindDepartment:
		return r.Departments
	}
	return nil
}

// SetList replaces the result list for kind. A nil list is stored as empty.
func (r *SearchResponse) SetList(kind EntityKind, list []*RankedResult) {
	if list == nil {
		list = []*RankedResult{}
	}
	switch kind {
	case KindCourse:
		r.Classes = list
	case KindProfessor:
		r.Professors = list
	case KindDepartment:
		r.Departments = list
	}
}

// Total returns the number of results across all lists.
func (r *SearchResponse) Total() int {
	return len(r.Departments) + len(r.Classes) + len(r.Professors)
}
