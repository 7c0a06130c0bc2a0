// Package keyword provides full-text index backends that score catalog entities.
package keyword

import (
	"context"
	"errors"

	"github.com/hyperjump/gradesearch/internal/models"
)

var (
	// ErrIndexUnavailable means the index could not be queried at all.
	ErrIndexUnavailable = errors.New("full-text index unavailable")
	// ErrQuerySyntax means the index rejected the match expression.
	ErrQuerySyntax = errors.New("full-text query syntax error")
)

// FullTextIndex runs engine-native match expressions against one entity kind.
// Implementations return an empty slice, not an error, when nothing matches, and wrap
// ErrQuerySyntax or ErrIndexUnavailable on failure.
type FullTextIndex interface {
	// Search returns up to limit hits for match, most relevant first. A non-empty scope
	// restricts hits to one department.
	Search(ctx context.Context, kind models.EntityKind, match, scope string, limit int) ([]Hit, error)
	// Name identifies the backend, e.g. "fts5".
	Name() string
	Close() error
}

// Hit is one index match. Score follows the lower-is-more-relevant convention.
type Hit struct {
	ID    string
	Score float64
}

// IsRecoverable reports whether err is an index failure that the substring path can absorb.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrIndexUnavailable) || errors.Is(err, ErrQuerySyntax)
}
