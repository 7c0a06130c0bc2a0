package query

import "strings"

// DefaultFastPathPriority is the score assigned to identity matches.
const DefaultFastPathPriority = 1e6

// BuiltQuery is a classification translated into an engine-native match expression.
// Match is empty for engine-exempt classifications.
type BuiltQuery struct {
	Classification Classification
	Match          string
	FastPath       bool
	Priority       float64
}

// Exempt reports whether the index must be skipped for this query.
func (b BuiltQuery) Exempt() bool {
	return b.Match == ""
}

// Builder translates classifications into match expressions for one dialect.
type Builder struct {
	dialect  Dialect
	priority float64
}

// NewBuilder creates a builder. A non-positive priority uses DefaultFastPathPriority.
func NewBuilder(d Dialect, fastPathPriority float64) *Builder {
	if d == nil {
		d = FTS5Dialect{}
	}
	if fastPathPriority <= 0 {
		fastPathPriority = DefaultFastPathPriority
	}
	return &Builder{dialect: d, priority: fastPathPriority}
}

// Build returns the match expression for c.
func (b *Builder) Build(c Classification) BuiltQuery {
	bq := BuiltQuery{Classification: c}
	switch c.Kind {
	case ExactCourse:
		bq.Match = b.ExactCourse(c.Dept, c.Number)
		bq.FastPath = true
		bq.Priority = b.priority
	case PartialCourse:
		bq.Match = b.PartialCourse(c.Dept, c.Number)
	case DeptPrefix:
		bq.Match = b.DeptPrefix(c.Dept)
		bq.FastPath = true
		bq.Priority = b.priority
	case Phrase:
		bq.Match = b.Phrase(c.Text)
	case Prefix:
		bq.Match = b.Prefix(c.Text)
	}
	return bq
}

// ExactCourse matches the compact and the spaced course code. Sources index either form,
// so both sides of the disjunction are always emitted.
func (b *Builder) ExactCourse(dept, number string) string {
	d := b.dialect
	return d.Or(
		d.Field(FieldCode, d.Phrase(dept+number)),
		d.Field(FieldCodeSpaced, d.Phrase(dept+" "+number)),
	)
}

// PartialCourse prefix-matches the compact and the spaced course code.
func (b *Builder) PartialCourse(dept, partial string) string {
	d := b.dialect
	return d.Or(
		d.Field(FieldCode, d.PrefixPhrase(dept+partial)),
		d.Field(FieldCodeSpaced, d.PrefixPhrase(dept+" "+partial)),
	)
}

// DeptPrefix prefix-matches the department field only.
func (b *Builder) DeptPrefix(dept string) string {
	d := b.dialect
	return d.Field(FieldDept, d.PrefixTerm(dept))
}

// Phrase quotes the whole text for an exact token-sequence match.
func (b *Builder) Phrase(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return b.dialect.Phrase(text)
}

// Prefix matches every token, with a wildcard on the trailing one. Tokens with no letters
// or digits are dropped; if none remain the result is empty.
func (b *Builder) Prefix(text string) string {
	var toks []string
	for _, t := range strings.Fields(text) {
		if strings.IndexFunc(t, isAlnum) >= 0 {
			toks = append(toks, strings.TrimFunc(t, isPunct))
		}
	}
	if len(toks) == 0 {
		return ""
	}
	d := b.dialect
	clauses := make([]string, len(toks))
	for i, t := range toks {
		if i == len(toks)-1 {
			clauses[i] = d.PrefixTerm(t)
		} else {
			clauses[i] = d.Term(t)
		}
	}
	return d.All(clauses...)
}
