// Package storage defines the read and import interface over the relational catalog store.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/gradesearch/internal/models"
)

// ErrNotFound is returned by point lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Storage defines catalog lookups, substring matching and import.
type Storage interface {
	// Point lookups
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetProfessor(ctx context.Context, id int64) (*models.Professor, error)
	GetDepartment(ctx context.Context, abbr string) (*models.Department, error)

	// Batch lookups by primary key. Missing keys are absent from the map.
	CoursesByIDs(ctx context.Context, ids []string) (map[string]*models.Course, error)
	ProfessorsByIDs(ctx context.Context, ids []string) (map[string]*models.Professor, error)
	DepartmentsByAbbrs(ctx context.Context, abbrs []string) (map[string]*models.Department, error)

	// Substring matching: case-insensitive containment of any term, most popular first.
	SubstringCourses(ctx context.Context, terms []string, scope string, limit int) ([]*models.Course, error)
	SubstringProfessors(ctx context.Context, terms []string, scope string, limit int) ([]*models.Professor, error)
	SubstringDepartments(ctx context.Context, terms []string, scope string, limit int) ([]*models.Department, error)

	// GradeCounts returns every per-term grade map for each id of kind.
	GradeCounts(ctx context.Context, kind models.EntityKind, ids []string) (map[string][]models.GradeCounts, error)

	// Full listings, used to build external indexes.
	ListCourses(ctx context.Context) ([]*models.Course, error)
	ListProfessors(ctx context.Context) ([]*models.Professor, error)
	ListDepartments(ctx context.Context) ([]*models.Department, error)
	ProfessorDepartments(ctx context.Context) (map[string][]string, error)

	ImportCatalog(ctx context.Context, cat *models.Catalog) error
	Counts(ctx context.Context) (Counts, error)

	Close() error
}

// Counts holds row counts for the status endpoint.
type Counts struct {
	Departments   int64 `json:"departments"`
	Courses       int64 `json:"courses"`
	Professors    int64 `json:"professors"`
	Distributions int64 `json:"distributions"`
}
