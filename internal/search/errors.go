package search

import (
	"errors"
	"fmt"

	"github.com/hyperjump/gradesearch/internal/models"
)

// ErrBothPathsFailed matches every BothPathsFailedError.
var ErrBothPathsFailed = errors.New("index and fallback paths both failed")

// ErrInvalidKey is returned by Describe for a malformed entity key or an unknown kind.
var ErrInvalidKey = errors.New("invalid entity key")

// BothPathsFailedError is the terminal failure of one entity kind: the index path failed
// and so did the substring query that replaced it. IndexErr is nil when the query was
// engine-exempt and only the substring path ran.
type BothPathsFailedError struct {
	Kind        models.EntityKind
	Label       string
	IndexErr    error
	FallbackErr error
}

func (e *BothPathsFailedError) Error() string {
	if e.IndexErr == nil {
		return fmt.Sprintf("%s: %v", e.Label, e.FallbackErr)
	}
	return fmt.Sprintf("%s: index: %v; fallback: %v", e.Label, e.IndexErr, e.FallbackErr)
}

// Is reports whether target is ErrBothPathsFailed.
func (e *BothPathsFailedError) Is(target error) bool {
	return target == ErrBothPathsFailed
}

// Unwrap exposes both underlying errors to errors.Is and errors.As.
func (e *BothPathsFailedError) Unwrap() []error {
	var errs []error
	for _, err := range []error{e.IndexErr, e.FallbackErr} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Failure converts the error to its response form.
func (e *BothPathsFailedError) Failure() models.Failure {
	return models.Failure{Kind: e.Kind, Label: e.Label, Error: e.Error()}
}
