package query

import (
	"strings"
	"testing"
)

func TestBuilder_FTS5(t *testing.T) {
	b := NewBuilder(FTS5Dialect{}, 0)
	tests := []struct {
		query    string
		want     string
		fastPath bool
	}{
		{"CS1332", `code:"CS1332" OR code_spaced:"CS 1332"`, true},
		{"cs 1332", `code:"CS1332" OR code_spaced:"CS 1332"`, true},
		{"CS13", `code:"CS13"* OR code_spaced:"CS 13"*`, false},
		{"CS", `dept:"CS"*`, true},
		{"Computer Science", `"Computer Science"`, false},
		{"intro to cs", `"intro" "to" "cs"*`, false},
		{"Xyzzyzzy1", `"Xyzzyzzy1"*`, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			bq := b.Build(Classify(tt.query))
			if bq.Match != tt.want {
				t.Errorf("Match = %s, want %s", bq.Match, tt.want)
			}
			if bq.FastPath != tt.fastPath {
				t.Errorf("FastPath = %v, want %v", bq.FastPath, tt.fastPath)
			}
			if bq.FastPath && bq.Priority != DefaultFastPathPriority {
				t.Errorf("Priority = %v", bq.Priority)
			}
			if bq.Exempt() {
				t.Error("query should not be exempt")
			}
		})
	}
}

func TestBuilder_exemptProducesNoQuery(t *testing.T) {
	b := NewBuilder(FTS5Dialect{}, 0)
	for _, q := range []string{"1234", "A", "!!!", ""} {
		bq := b.Build(Classify(q))
		if !bq.Exempt() || bq.Match != "" {
			t.Errorf("Build(%q) = %+v, want exempt", q, bq)
		}
	}
}

func TestBuilder_phraseQuoteDoubled(t *testing.T) {
	b := NewBuilder(FTS5Dialect{}, 0)
	bq := b.Build(Classify(`the "best" course`))
	if bq.Classification.Kind != Phrase {
		t.Fatalf("kind = %s", bq.Classification.Kind)
	}
	want := `"the ""best"" course"`
	if bq.Match != want {
		t.Fatalf("Match = %s, want %s", bq.Match, want)
	}
	// Stripping the outer quotes and undoubling must give back the input.
	inner := bq.Match[1 : len(bq.Match)-1]
	if strings.Contains(strings.ReplaceAll(inner, `""`, ""), `"`) {
		t.Errorf("unescaped quote in %s", bq.Match)
	}
	if got := strings.ReplaceAll(inner, `""`, `"`); got != `the "best" course` {
		t.Errorf("round trip = %s", got)
	}
}

func TestBuilder_prefixDropsPunctuationTokens(t *testing.T) {
	b := NewBuilder(FTS5Dialect{}, 0)
	if got := b.Prefix("ab !! cd,"); got != `"ab" "cd"*` {
		t.Errorf("Prefix = %s", got)
	}
	if got := b.Prefix("?? !!"); got != "" {
		t.Errorf("Prefix = %s, want empty", got)
	}
}

func TestBuilder_Bleve(t *testing.T) {
	b := NewBuilder(BleveDialect{}, 42)
	tests := []struct {
		query string
		want  string
	}{
		{"CS1332", `code:"CS1332" code_spaced:"CS 1332"`},
		{"CS13", `code:cs13* code_spaced:cs\ 13*`},
		{"CS", `dept:cs*`},
		{`say "hi" now`, `"say \"hi\" now"`},
		{"intro to cs", `intro to cs*`},
		{"a:b", `"a:b"`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			bq := b.Build(Classify(tt.query))
			if bq.Match != tt.want {
				t.Errorf("Match = %s, want %s", bq.Match, tt.want)
			}
		})
	}
	if bq := b.Build(Classify("CS")); bq.Priority != 42 {
		t.Errorf("Priority = %v, want 42", bq.Priority)
	}
}

func TestBleveDialect_escapesOperators(t *testing.T) {
	d := BleveDialect{}
	if got := d.Term("+a-b"); got != `\+a\-b` {
		t.Errorf("Term = %s", got)
	}
}

func TestDialectFor(t *testing.T) {
	if DialectFor("bleve").Name() != "bleve" || DialectFor("fts5").Name() != "fts5" || DialectFor("").Name() != "fts5" {
		t.Error("unexpected dialect selection")
	}
}
