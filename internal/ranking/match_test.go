package ranking

import (
	"reflect"
	"testing"
)

func TestSignificantWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Intro to Data Structures", []string{"intro", "data", "structures"}},
		{"  Data,   data  ", []string{"data"}},
		{"a an of", []string{}},
		{"(machine) learning!", []string{"machine", "learning"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		if got := SignificantWords(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SignificantWords(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatchesMostWords(t *testing.T) {
	tests := []struct {
		query, text string
		want        bool
	}{
		{"data algorithms", "Data Structures and Algorithms", true},
		{"data physics", "Data Structures and Algorithms", true},
		{"data physics chemistry", "Data Structures and Algorithms", false},
		{"calculus", "Integral Calculus", false},
		{"to of", "anything", false},
	}
	for _, tt := range tests {
		if got := MatchesMostWords(tt.query, tt.text); got != tt.want {
			t.Errorf("MatchesMostWords(%q, %q) = %v, want %v", tt.query, tt.text, got, tt.want)
		}
	}
}

func TestCompactUpper(t *testing.T) {
	if got := CompactUpper(" cs  1332 "); got != "CS1332" {
		t.Errorf("CompactUpper = %q", got)
	}
}
