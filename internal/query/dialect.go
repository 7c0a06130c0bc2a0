package query

import "strings"

// Index field names shared by every full-text backend.
const (
	FieldCode       = "code"
	FieldCodeSpaced = "code_spaced"
	FieldDept       = "dept"
	FieldTitle      = "title"
	FieldName       = "name"
)

// Dialect renders query fragments in one engine's syntax. Every method escapes its
// input so user text cannot inject operators.
type Dialect interface {
	// Name identifies the dialect, e.g. "fts5".
	Name() string
	// Phrase matches text exactly as a token sequence.
	Phrase(text string) string
	// PrefixPhrase matches text with its last token treated as a prefix.
	PrefixPhrase(text string) string
	// Term matches a single token.
	Term(token string) string
	// PrefixTerm matches tokens starting with token.
	PrefixTerm(token string) string
	// Field restricts expr to one field.
	Field(field, expr string) string
	// Or joins clauses disjunctively.
	Or(clauses ...string) string
	// All joins clauses so that every one must match, or as near as the engine allows.
	All(clauses ...string) string
}

// FTS5Dialect renders SQLite FTS5 MATCH expressions. Every token is emitted as a quoted
// string with embedded quotes doubled, so FTS5 operators in user input are inert.
type FTS5Dialect struct{}

func (FTS5Dialect) Name() string { return "fts5" }

func (FTS5Dialect) Phrase(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
}

func (d FTS5Dialect) PrefixPhrase(text string) string {
	return d.Phrase(text) + "*"
}

func (d FTS5Dialect) Term(token string) string {
	return d.Phrase(token)
}

func (d FTS5Dialect) PrefixTerm(token string) string {
	return d.Phrase(token) + "*"
}

func (FTS5Dialect) Field(field, expr string) string {
	return field + ":" + expr
}

func (FTS5Dialect) Or(clauses ...string) string {
	return strings.Join(clauses, " OR ")
}

func (FTS5Dialect) All(clauses ...string) string {
	return strings.Join(clauses, " ")
}

// BleveDialect renders bleve query-string syntax. Wildcard terms bypass analysis, so they
// are lowercased to match the lowercase analyzers the index uses.
type BleveDialect struct{}

const bleveSpecial = `+-=&|><!(){}[]^"~*?:\/ `

func bleveEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(bleveSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (BleveDialect) Name() string { return "bleve" }

func (BleveDialect) Phrase(text string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text) + `"`
}

// PrefixPhrase treats the whole text as one keyword term with a trailing wildcard.
// Bleve query strings have no phrase-prefix form; the code fields it is used on are keywords.
func (d BleveDialect) PrefixPhrase(text string) string {
	return bleveEscape(strings.ToLower(text)) + "*"
}

func (BleveDialect) Term(token string) string {
	return bleveEscape(token)
}

func (BleveDialect) PrefixTerm(token string) string {
	return bleveEscape(strings.ToLower(token)) + "*"
}

func (BleveDialect) Field(field, expr string) string {
	return field + ":" + expr
}

func (BleveDialect) Or(clauses ...string) string {
	return strings.Join(clauses, " ")
}

// All is a disjunction too. A required clause that analyzes to nothing (a stop word)
// would match no documents; rows matching more clauses still score higher.
func (BleveDialect) All(clauses ...string) string {
	return strings.Join(clauses, " ")
}

// DialectFor returns the dialect for a backend name, defaulting to FTS5.
func DialectFor(backend string) Dialect {
	if backend == "bleve" {
		return BleveDialect{}
	}
	return FTS5Dialect{}
}
