package query

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  Classification
	}{
		{"CS1332", Classification{Kind: ExactCourse, Text: "CS1332", Dept: "CS", Number: "1332"}},
		{"CS 1332", Classification{Kind: ExactCourse, Text: "CS 1332", Dept: "CS", Number: "1332"}},
		{"cs1332", Classification{Kind: ExactCourse, Text: "cs1332", Dept: "CS", Number: "1332"}},
		{"PHYS2211l", Classification{Kind: ExactCourse, Text: "PHYS2211l", Dept: "PHYS", Number: "2211L", Suffix: "L"}},
		{"CS", Classification{Kind: DeptPrefix, Text: "CS", Dept: "CS"}},
		{"calculus", Classification{Kind: DeptPrefix, Text: "calculus", Dept: "CALCULUS"}},
		{"CS13", Classification{Kind: PartialCourse, Text: "CS13", Dept: "CS", Number: "13"}},
		{"math 1", Classification{Kind: PartialCourse, Text: "math 1", Dept: "MATH", Number: "1"}},
		{"1234", Classification{Kind: PureNumeric, Text: "1234"}},
		{"7", Classification{Kind: PureNumeric, Text: "7"}},
		{"A", Classification{Kind: SingleAlpha, Text: "A"}},
		{"!!!", Classification{Kind: SpecialOnly, Text: "!!!"}},
		{"- +", Classification{Kind: SpecialOnly, Text: "- +"}},
		{"Computer Science", Classification{Kind: Phrase, Text: "Computer Science"}},
		{"C++", Classification{Kind: Phrase, Text: "C++"}},
		{"e-commerce", Classification{Kind: Phrase, Text: "e-commerce"}},
		{"intro to cs", Classification{Kind: Prefix, Text: "intro to cs"}},
		{"Xyzzyzzy1", Classification{Kind: Prefix, Text: "Xyzzyzzy1"}},
		{"", Classification{Kind: Prefix}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Classify(tt.query)
			if got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassify_deterministic(t *testing.T) {
	inputs := []string{"CS1332", "CS", "intro to cs", "!!!", "", "Data Structures", "a"}
	for _, in := range inputs {
		first := Classify(in)
		for i := 0; i < 5; i++ {
			if got := Classify(in); got != first {
				t.Fatalf("Classify(%q) changed between calls: %+v vs %+v", in, first, got)
			}
		}
	}
}

func TestClassify_emptyIsNoQuery(t *testing.T) {
	c := Classify("   ")
	if !c.IsEmpty() {
		t.Errorf("expected empty classification, got %+v", c)
	}
	if Classify("ab").IsEmpty() {
		t.Error("non-empty input should not be empty")
	}
}

func TestKind_EngineExempt(t *testing.T) {
	exempt := map[Kind]bool{PureNumeric: true, SingleAlpha: true, SpecialOnly: true}
	for k := range kindNames {
		if k.EngineExempt() != exempt[k] {
			t.Errorf("%s.EngineExempt() = %v", k, k.EngineExempt())
		}
	}
}

func TestRules_order(t *testing.T) {
	want := []string{
		"pure-numeric", "single-alpha", "special-only", "exact-course", "partial-course",
		"dept-prefix", "multi-word-phrase", "punctuated-token", "prefix",
	}
	got := Rules()
	if len(got) != len(want) {
		t.Fatalf("Rules() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rule %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestClassification_String(t *testing.T) {
	if s := Classify("CS1332").String(); s != "ExactCourse{dept:CS, number:1332}" {
		t.Errorf("String() = %s", s)
	}
	if s := Classify("1234").String(); s != "PureNumeric" {
		t.Errorf("String() = %s", s)
	}
}
