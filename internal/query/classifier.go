// Package query classifies normalized search strings and builds full-text index queries from them.
package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the classification variant of a query.
type Kind int

const (
	Prefix Kind = iota
	ExactCourse
	PartialCourse
	DeptPrefix
	Phrase
	PureNumeric
	SingleAlpha
	SpecialOnly
)

var kindNames = map[Kind]string{
	Prefix:        "Prefix",
	ExactCourse:   "ExactCourse",
	PartialCourse: "PartialCourse",
	DeptPrefix:    "DeptPrefix",
	Phrase:        "Phrase",
	PureNumeric:   "PureNumeric",
	SingleAlpha:   "SingleAlpha",
	SpecialOnly:   "SpecialOnly",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// EngineExempt reports whether queries of this kind skip the full-text index.
func (k Kind) EngineExempt() bool {
	return k == PureNumeric || k == SingleAlpha || k == SpecialOnly
}

// Classification is the result of Classify. Text always holds the classified input;
// Dept, Number and Suffix are set for the course and department variants.
type Classification struct {
	Kind   Kind
	Text   string
	Dept   string
	Number string
	Suffix string
}

// IsEmpty reports whether the classification carries no query at all.
func (c Classification) IsEmpty() bool {
	return c.Kind == Prefix && c.Text == ""
}

func (c Classification) String() string {
	switch c.Kind {
	case ExactCourse:
		return fmt.Sprintf("ExactCourse{dept:%s, number:%s}", c.Dept, c.Number)
	case PartialCourse:
		return fmt.Sprintf("PartialCourse{dept:%s, partialNumber:%s}", c.Dept, c.Number)
	case DeptPrefix:
		return fmt.Sprintf("DeptPrefix{dept:%s}", c.Dept)
	case Phrase, Prefix:
		return fmt.Sprintf("%s{%q}", c.Kind, c.Text)
	}
	return c.Kind.String()
}

var (
	numericRe       = regexp.MustCompile(`^\d+$`)
	exactCourseRe   = regexp.MustCompile(`^([A-Za-z]{2,6})\s*(\d{3,5}[A-Za-z]?)$`)
	partialCourseRe = regexp.MustCompile(`^([A-Za-z]{2,6})\s*(\d{1,4})$`)
	alphaRe         = regexp.MustCompile(`^[A-Za-z]+$`)
)

type rule struct {
	name     string
	classify func(s string) (Classification, bool)
}

// rules are evaluated in order and the first match wins. Later rules are more general
// and would shadow earlier ones if reordered.
var rules = []rule{
	{"pure-numeric", func(s string) (Classification, bool) {
		return Classification{Kind: PureNumeric, Text: s}, numericRe.MatchString(s)
	}},
	{"single-alpha", func(s string) (Classification, bool) {
		r, size := utf8.DecodeRuneInString(s)
		return Classification{Kind: SingleAlpha, Text: s}, size == len(s) && unicode.IsLetter(r)
	}},
	{"special-only", func(s string) (Classification, bool) {
		return Classification{Kind: SpecialOnly, Text: s}, strings.IndexFunc(s, isAlnum) < 0
	}},
	{"exact-course", func(s string) (Classification, bool) {
		m := exactCourseRe.FindStringSubmatch(s)
		if m == nil {
			return Classification{}, false
		}
		c := Classification{Kind: ExactCourse, Text: s, Dept: strings.ToUpper(m[1]), Number: strings.ToUpper(m[2])}
		if last := c.Number[len(c.Number)-1]; last < '0' || last > '9' {
			c.Suffix = string(last)
		}
		return c, true
	}},
	{"partial-course", func(s string) (Classification, bool) {
		m := partialCourseRe.FindStringSubmatch(s)
		if m == nil {
			return Classification{}, false
		}
		return Classification{Kind: PartialCourse, Text: s, Dept: strings.ToUpper(m[1]), Number: m[2]}, true
	}},
	{"dept-prefix", func(s string) (Classification, bool) {
		return Classification{Kind: DeptPrefix, Text: s, Dept: strings.ToUpper(s)}, alphaRe.MatchString(s)
	}},
	{"multi-word-phrase", func(s string) (Classification, bool) {
		if !strings.ContainsFunc(s, unicode.IsSpace) {
			return Classification{}, false
		}
		long := 0
		for _, tok := range strings.Fields(s) {
			if utf8.RuneCountInString(tok) > 2 {
				long++
			}
		}
		return Classification{Kind: Phrase, Text: s}, long >= 2
	}},
	{"punctuated-token", func(s string) (Classification, bool) {
		if strings.ContainsFunc(s, unicode.IsSpace) {
			return Classification{}, false
		}
		return Classification{Kind: Phrase, Text: s}, strings.ContainsFunc(s, isPunct)
	}},
}

// Rules returns the rule names in evaluation order, followed by the default.
func Rules() []string {
	names := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		names = append(names, r.name)
	}
	return append(names, "prefix")
}

// Classify maps a normalized query to its classification. It never fails: input that
// matches no rule, including the empty string, classifies as Prefix.
func Classify(normalized string) Classification {
	s := strings.TrimSpace(normalized)
	if s == "" {
		return Classification{Kind: Prefix}
	}
	for _, r := range rules {
		if c, ok := r.classify(s); ok {
			return c
		}
	}
	return Classification{Kind: Prefix, Text: s}
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isPunct(r rune) bool {
	return !isAlnum(r) && !unicode.IsSpace(r)
}
