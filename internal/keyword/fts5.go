package keyword

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hyperjump/gradesearch/internal/models"
)

// Querier runs a read query. *sql.DB and the store's statement cache both satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// FTS5Index queries the SQLite FTS5 tables maintained by the store's triggers.
// Scores come from bm25(), where lower means more relevant.
type FTS5Index struct {
	db Querier
}

// NewFTS5Index creates an index over db.
func NewFTS5Index(db Querier) *FTS5Index {
	return &FTS5Index{db: db}
}

var fts5Queries = map[models.EntityKind]string{
	models.KindCourse: `
		SELECT c.id, bm25(courses_fts) AS score
		FROM courses_fts
		JOIN courses c ON c.id = courses_fts.rowid
		WHERE courses_fts MATCH ?
		  AND (? = '' OR c.dept_abbr = ?)
		ORDER BY score, c.total_students DESC
		LIMIT ?`,
	models.KindProfessor: `
		SELECT p.id, bm25(professors_fts) AS score
		FROM professors_fts
		JOIN professors p ON p.id = professors_fts.rowid
		WHERE professors_fts MATCH ?
		  AND (? = '' OR EXISTS (
		      SELECT 1 FROM distributions d
		      JOIN courses c ON c.id = d.class_id
		      WHERE d.instructor_id = p.id AND c.dept_abbr = ?))
		ORDER BY score
		LIMIT ?`,
	models.KindDepartment: `
		SELECT d.dept_abbr, bm25(departments_fts) AS score
		FROM departments_fts
		JOIN departments d ON d.rowid = departments_fts.rowid
		WHERE departments_fts MATCH ?
		  AND (? = '' OR d.dept_abbr = ?)
		ORDER BY score
		LIMIT ?`,
}

// Name returns "fts5".
func (f *FTS5Index) Name() string { return "fts5" }

// Search runs match against the FTS5 table for kind.
func (f *FTS5Index) Search(ctx context.Context, kind models.EntityKind, match, scope string, limit int) ([]Hit, error) {
	stmt, ok := fts5Queries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no fts5 table for %q", ErrIndexUnavailable, kind)
	}
	if strings.TrimSpace(match) == "" {
		return nil, fmt.Errorf("%w: empty match expression", ErrQuerySyntax)
	}

	rows, err := f.db.QueryContext(ctx, stmt, match, scope, scope, limit)
	if err != nil {
		return nil, classifyFTS5Error(err)
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.Score); err != nil {
			return nil, classifyFTS5Error(err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyFTS5Error(err)
	}
	return hits, nil
}

// Close is a no-op; the store owns the connection.
func (f *FTS5Index) Close() error { return nil }

var fts5SyntaxMarkers = []string{
	"fts5: syntax error",
	"malformed match",
	"unterminated string",
	"unknown special query",
	"no such column",
	"fts5: column queries",
}

// classifyFTS5Error maps SQLite error text onto ErrQuerySyntax or ErrIndexUnavailable.
func classifyFTS5Error(err error) error {
	msg := strings.ToLower(err.Error())
	for _, m := range fts5SyntaxMarkers {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %w", ErrQuerySyntax, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
}
