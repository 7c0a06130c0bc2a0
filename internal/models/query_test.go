package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewSearchQuery(t *testing.T) {
	tests := []struct {
		name       string
		raw, scope string
		wantNorm   string
		wantKey    string
	}{
		{"trims", "  CS1332 ", "", "CS1332", "cs1332"},
		{"collapses whitespace", "Computer \t  Science", "", "Computer Science", "computer science"},
		{"scope uppercased", "data", " cs ", "data", "data|CS"},
		{"empty", "   ", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewSearchQuery(tt.raw, tt.scope)
			if q.Normalized != tt.wantNorm {
				t.Errorf("Normalized = %q, want %q", q.Normalized, tt.wantNorm)
			}
			if q.CacheKey() != tt.wantKey {
				t.Errorf("CacheKey() = %q, want %q", q.CacheKey(), tt.wantKey)
			}
			if q.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", q.Raw, tt.raw)
			}
		})
	}
}

func TestSearchQuery_CacheKeyCaseFolded(t *testing.T) {
	a := NewSearchQuery("CS 1332", "")
	b := NewSearchQuery("cs   1332", "")
	if a.CacheKey() != b.CacheKey() {
		t.Errorf("keys differ: %q vs %q", a.CacheKey(), b.CacheKey())
	}
	if a.CacheKey() == NewSearchQuery("cs 1332", "math").CacheKey() {
		t.Error("scoped key should differ from unscoped key")
	}
}

func TestParseEntityKind(t *testing.T) {
	for in, want := range map[string]EntityKind{"classes": KindCourse, "Professor": KindProfessor, "dept": KindDepartment} {
		got, err := ParseEntityKind(in)
		if err != nil || got != want {
			t.Errorf("ParseEntityKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseEntityKind("room"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRankedResult_MarshalJSON(t *testing.T) {
	c := &Course{ID: 7, DeptAbbr: "CS", Number: "1332", Title: "Data Structures", Enrollment: 100}
	raw := NewCourseResult(c, SourceIndex)
	raw.NativeScore = -3.5
	fuzzy := 12.0
	r := &RankedResult{RawResult: raw, CombinedScore: 4.2, FuzzyScore: &fuzzy}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"kind":"course"`, `"id":"7"`, `"relevanceScore":-3.5`, `"fuzzyScore":12`, `"combinedScore":4.2`} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s in %s", want, s)
		}
	}

	fast := &RankedResult{RawResult: NewCourseResult(c, SourceFastPath), CombinedScore: 1e6}
	data, err = json.Marshal(fast)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "relevanceScore") || strings.Contains(string(data), "fuzzyScore") {
		t.Errorf("fast path record should carry no relevance or fuzzy score: %s", data)
	}
}

func TestSearchResponse_emptyListsEncodeAsArrays(t *testing.T) {
	resp := NewSearchResponse(NewSearchQuery("", ""))
	resp.SetList(KindCourse, nil)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"departments":[]`, `"classes":[]`, `"professors":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("missing %s in %s", want, data)
		}
	}
	if resp.Total() != 0 {
		t.Errorf("Total() = %d", resp.Total())
	}
}
