package models

import (
	"fmt"
	"strings"
)

// EntityKind identifies one of the three searchable catalogs.
type EntityKind string

const (
	KindCourse     EntityKind = "course"
	KindProfessor  EntityKind = "professor"
	KindDepartment EntityKind = "department"
)

// Kinds lists every entity kind in response order.
var Kinds = []EntityKind{KindDepartment, KindCourse, KindProfessor}

// Plural returns the label used in log messages, e.g. "courses".
func (k EntityKind) Plural() string {
	return string(k) + "s"
}

// ParseEntityKind converts a user-supplied string to an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCourse, "class", "courses", "classes":
		return KindCourse, nil
	case KindProfessor, "professors", "instructor", "instructors":
		return KindProfessor, nil
	case KindDepartment, "departments", "dept":
		return KindDepartment, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// SearchQuery is an immutable, normalized search request. Build it with NewSearchQuery.
type SearchQuery struct {
	Raw        string `json:"raw"`
	Normalized string `json:"query"`
	Scope      string `json:"scope,omitempty"`
}

// NewSearchQuery trims the input, collapses internal whitespace, and uppercases the scope.
func NewSearchQuery(raw, scope string) SearchQuery {
	return SearchQuery{
		Raw:        raw,
		Normalized: strings.Join(strings.Fields(raw), " "),
		Scope:      strings.ToUpper(strings.TrimSpace(scope)),
	}
}

// IsEmpty reports whether there is nothing to search for.
func (q SearchQuery) IsEmpty() bool {
	return q.Normalized == ""
}

// Scoped reports whether results are restricted to one department.
func (q SearchQuery) Scoped() bool {
	return q.Scope != ""
}

// CacheKey is the case-folded normalized query, suffixed with "|SCOPE" when a scope is set.
func (q SearchQuery) CacheKey() string {
	key := strings.ToLower(q.Normalized)
	if q.Scope != "" {
		key += "|" + q.Scope
	}
	return key
}
