package ranking

import (
	"math"
	"testing"

	"github.com/hyperjump/gradesearch/internal/models"
)

func ranked(rows ...*models.RawResult) []*models.RankedResult {
	out := make([]*models.RankedResult, len(rows))
	for i, r := range rows {
		out[i] = &models.RankedResult{RawResult: r, CombinedScore: float64(len(rows) - i)}
	}
	return out
}

func TestFuzzyReranker_triggerBoundary(t *testing.T) {
	f := NewFuzzyReranker(nil)

	two := ranked(
		course(1, "CS", "1301", "Introduction to Computing", 5000, models.SourceIndex),
		course(3, "CS", "1332", "Data Structures and Algorithms", 3500, models.SourceIndex),
	)
	got := f.Rerank("data structures", two)
	if len(got) != 2 {
		t.Fatalf("rerank changed membership: %v", ids(got))
	}
	for _, r := range got {
		if r.FuzzyScore == nil {
			t.Errorf("result %s: fuzzy score not populated", r.ID)
		}
	}
	if got[0].ID != "3" {
		t.Errorf("closest title should win, got %v", ids(got))
	}

	three := ranked(
		course(1, "CS", "1301", "Introduction to Computing", 5000, models.SourceIndex),
		course(2, "CS", "1331", "Introduction to Object Oriented Programming", 4000, models.SourceIndex),
		course(3, "CS", "1332", "Data Structures and Algorithms", 3500, models.SourceIndex),
	)
	got = f.Rerank("data structures", three)
	if !equalIDs(got, "1", "2", "3") {
		t.Errorf("order changed: %v", ids(got))
	}
	for _, r := range got {
		if r.FuzzyScore != nil {
			t.Errorf("result %s: unexpected fuzzy score", r.ID)
		}
	}
	if got[0].CombinedScore != 3 {
		t.Errorf("combined score changed: %v", got[0].CombinedScore)
	}
}

func TestFuzzyReranker_singleResult(t *testing.T) {
	f := NewFuzzyReranker(nil)
	one := ranked(course(14, "PHYS", "4999", "Xyzzyzzy1 Special Topics", 12, models.SourceIndex))

	got := f.Rerank("Xyzzyzzy1", one)
	if len(got) != 1 || got[0].FuzzyScore == nil {
		t.Fatal("single result should carry a fuzzy score")
	}
	want := 100 + 10*math.Log(12)
	if math.Abs(*got[0].FuzzyScore-want) > 1e-9 {
		t.Errorf("fuzzy = %v, want %v", *got[0].FuzzyScore, want)
	}
	if math.Abs(got[0].CombinedScore-(1+want)) > 1e-9 {
		t.Errorf("combined = %v, want existing + fuzzy", got[0].CombinedScore)
	}
}

func TestFuzzyReranker_emptyQueryOrList(t *testing.T) {
	f := NewFuzzyReranker(nil)
	if got := f.Rerank("x", nil); len(got) != 0 {
		t.Errorf("nil list: %v", got)
	}
	list := ranked(course(1, "CS", "1301", "A", 1, models.SourceIndex))
	if got := f.Rerank("   ", list); got[0].FuzzyScore != nil {
		t.Error("blank query should not rerank")
	}
}

func TestFuzzyReranker_Score(t *testing.T) {
	f := NewFuzzyReranker(nil)

	tests := []struct {
		name  string
		query string
		row   *models.RawResult
		want  float64
	}{
		{
			name:  "exact course code",
			query: "cs1332",
			row:   course(3, "CS", "1332", "Data Structures and Algorithms", 3500, models.SourceIndex),
			want:  ExactCodeBonus + 100 + 10*math.Log(3500),
		},
		{
			name:  "short department prefix",
			query: "ma",
			row:   models.NewDepartmentResult(&models.Department{Abbr: "MATH", Name: "Mathematics"}, models.SourceIndex),
			want:  ShortPrefixBonus + (100 - 2*3),
		},
		{
			name:  "exact department",
			query: "cs",
			row:   models.NewDepartmentResult(&models.Department{Abbr: "CS", Name: "Computer Science"}, models.SourceIndex),
			want:  ExactCodeBonus + 100,
		},
		{
			name:  "professor surname with rating",
			query: "starner",
			row:   models.NewProfessorResult(&models.Professor{ID: 102, Name: "Thad Starner", Rating: 4.1}, models.SourceIndex),
			want:  100 + 10*4.1,
		},
		{
			name:  "professor typo",
			query: "stamer",
			row:   models.NewProfessorResult(&models.Professor{ID: 102, Name: "Thad Starner"}, models.SourceIndex),
			want:  100 - 2*5,
		},
		{
			name:  "distance floor",
			query: "zzzzzzzzzzzzzzzzzzzz",
			row:   models.NewProfessorResult(&models.Professor{ID: 1, Name: "Al"}, models.SourceIndex),
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Score(tt.query, tt.row); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		q, text string
		want    int
	}{
		{"xyzzyzzy1", "phys4999 xyzzyzzy1 special topics", 0},
		{"data structure", "cs1332 data structures and algorithms", 1},
		{"computer science", "cs computer science", 0},
		{"abc", "abd", 1},
		{"a b c d", "a b", 4},
	}
	for _, tt := range tests {
		if got := Distance(tt.q, tt.text); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.q, tt.text, got, tt.want)
		}
	}
}

func TestSearchableText(t *testing.T) {
	c := course(3, "CS", "1332", "Data Structures", 0, models.SourceIndex)
	if got := SearchableText(c); got != "cs1332 data structures" {
		t.Errorf("course text = %q", got)
	}
	d := models.NewDepartmentResult(&models.Department{Abbr: "CS", Name: "Computer Science"}, models.SourceIndex)
	if got := SearchableText(d); got != "cs computer science" {
		t.Errorf("department text = %q", got)
	}
}
