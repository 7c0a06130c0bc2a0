package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/gradesearch/internal/models"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var _ Storage = (*SQLiteStorage)(nil)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	stmts  *stmtCache
	path   string
	fts5   bool
	logger *zap.Logger
}

// Option configures SQLiteStorage.
type Option func(*sqliteOptions)

type sqliteOptions struct {
	statementCapacity int
	logger            *zap.Logger
}

// WithStatementCapacity bounds the prepared statement cache.
func WithStatementCapacity(n int) Option {
	return func(o *sqliteOptions) {
		if n > 0 {
			o.statementCapacity = n
		}
	}
}

// WithLogger sets the logger used for schema warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *sqliteOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and applies migrations.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	o := sqliteOptions{statementCapacity: 100, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if dbPath != MemoryPath {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	res, err := ApplyMigrations(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if len(res.Skipped) > 0 {
		o.logger.Warn("full-text index unavailable, searches will use substring matching",
			zap.Strings("skipped_migrations", res.Skipped),
			zap.String("driver", DriverName))
	}

	stmts, err := newStmtCache(db, o.statementCapacity)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStorage{
		db:     db,
		stmts:  stmts,
		path:   dbPath,
		fts5:   !slices.Contains(res.Skipped, "1.1.0"),
		logger: o.logger,
	}, nil
}

// DB exposes the underlying handle.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Path returns the database path the store was opened with.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// FTS5Available reports whether the full-text tables exist.
func (s *SQLiteStorage) FTS5Available() bool {
	return s.fts5
}

// QueryContext runs a read query through the prepared statement cache.
func (s *SQLiteStorage) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.stmts.query(ctx, query, args...)
}

// CachedStatements returns the number of memoized prepared statements.
func (s *SQLiteStorage) CachedStatements() int {
	return s.stmts.len()
}

const (
	courseColumns = `c.id, c.campus, c.dept_abbr, c.course_num, c.class_desc, c.total_students`

	professorColumns = `p.id, p.name, COALESCE(p.rmp_score, 0), COALESCE(p.rmp_diff, 0),
		COALESCE(p.rmp_would_take_again, 0), COALESCE(p.rmp_link, ''),
		COALESCE((SELECT SUM(td.students) FROM distributions pd
		          JOIN term_distributions td ON td.dist_id = pd.id
		          WHERE pd.instructor_id = p.id), 0) AS enrollment`

	departmentColumns = `d.dept_abbr, d.campus, d.dept_name,
		COALESCE((SELECT SUM(dc.total_students) FROM courses dc WHERE dc.dept_abbr = d.dept_abbr), 0) AS enrollment`

	professorScope = `(? = '' OR EXISTS (
		SELECT 1 FROM distributions sd JOIN courses sc ON sc.id = sd.class_id
		WHERE sd.instructor_id = p.id AND sc.dept_abbr = ?))`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(r rowScanner) (*models.Course, error) {
	var c models.Course
	if err := r.Scan(&c.ID, &c.Campus, &c.DeptAbbr, &c.Number, &c.Title, &c.Enrollment); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanProfessor(r rowScanner) (*models.Professor, error) {
	var p models.Professor
	if err := r.Scan(&p.ID, &p.Name, &p.Rating, &p.Difficulty, &p.WouldTakeAgain, &p.RatingLink, &p.Enrollment); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanDepartment(r rowScanner) (*models.Department, error) {
	var d models.Department
	if err := r.Scan(&d.Abbr, &d.Campus, &d.Name, &d.Enrollment); err != nil {
		return nil, err
	}
	return &d, nil
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, s *SQLiteStorage, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := s.stmts.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryOne[T any](ctx context.Context, s *SQLiteStorage, scan func(rowScanner) (T, error), query string, args ...any) (T, error) {
	all, err := queryAll(ctx, s, scan, query, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(all) == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return all[0], nil
}

// GetCourse returns a course by ID.
func (s *SQLiteStorage) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	c, err := queryOne(ctx, s, scanCourse, `SELECT `+courseColumns+` FROM courses c WHERE c.id = ?`, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	return c, err
}

// GetProfessor returns a professor by ID.
func (s *SQLiteStorage) GetProfessor(ctx context.Context, id int64) (*models.Professor, error) {
	p, err := queryOne(ctx, s, scanProfessor, `SELECT `+professorColumns+` FROM professors p WHERE p.id = ?`, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("professor %d: %w", id, ErrNotFound)
	}
	return p, err
}

// GetDepartment returns a department by abbreviation, case-insensitively.
func (s *SQLiteStorage) GetDepartment(ctx context.Context, abbr string) (*models.Department, error) {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	d, err := queryOne(ctx, s, scanDepartment, `SELECT `+departmentColumns+` FROM departments d WHERE d.dept_abbr = ?`, abbr)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("department %s: %w", abbr, ErrNotFound)
	}
	return d, err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func uniqueArgs(keys []string) []any {
	seen := make(map[string]struct{}, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		args = append(args, k)
	}
	return args
}

// CoursesByIDs fetches courses by ID in one query.
func (s *SQLiteStorage) CoursesByIDs(ctx context.Context, ids []string) (map[string]*models.Course, error) {
	out := make(map[string]*models.Course, len(ids))
	args := uniqueArgs(ids)
	if len(args) == 0 {
		return out, nil
	}
	list, err := queryAll(ctx, s, scanCourse,
		`SELECT `+courseColumns+` FROM courses c WHERE c.id IN (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	for _, c := range list {
		out[c.Key()] = c
	}
	return out, nil
}

// ProfessorsByIDs fetches professors by ID in one query.
func (s *SQLiteStorage) ProfessorsByIDs(ctx context.Context, ids []string) (map[string]*models.Professor, error) {
	out := make(map[string]*models.Professor, len(ids))
	args := uniqueArgs(ids)
	if len(args) == 0 {
		return out, nil
	}
	list, err := queryAll(ctx, s, scanProfessor,
		`SELECT `+professorColumns+` FROM professors p WHERE p.id IN (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch professors: %w", err)
	}
	for _, p := range list {
		out[p.Key()] = p
	}
	return out, nil
}

// DepartmentsByAbbrs fetches departments by abbreviation in one query.
func (s *SQLiteStorage) DepartmentsByAbbrs(ctx context.Context, abbrs []string) (map[string]*models.Department, error) {
	out := make(map[string]*models.Department, len(abbrs))
	args := uniqueArgs(abbrs)
	if len(args) == 0 {
		return out, nil
	}
	list, err := queryAll(ctx, s, scanDepartment,
		`SELECT `+departmentColumns+` FROM departments d WHERE d.dept_abbr IN (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch departments: %w", err)
	}
	for _, d := range list {
		out[d.Abbr] = d
	}
	return out, nil
}

// escapeLikePattern escapes the LIKE wildcards and the escape character itself.
func escapeLikePattern(pattern string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(pattern)
}

// likeAny builds "(e1 LIKE ? ESCAPE '\' OR ...)" over every expr and term.
func likeAny(exprs, terms []string) (string, []any) {
	clauses := make([]string, 0, len(exprs)*len(terms))
	args := make([]any, 0, len(exprs)*len(terms))
	for _, t := range terms {
		pattern := "%" + escapeLikePattern(t) + "%"
		for _, e := range exprs {
			clauses = append(clauses, e+` LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

var (
	courseHaystacks     = []string{`c.dept_abbr || c.course_num`, `c.dept_abbr || ' ' || c.course_num`, `c.class_desc`}
	professorHaystacks  = []string{`p.name`}
	departmentHaystacks = []string{`d.dept_abbr`, `d.dept_name`}
)

// SubstringCourses matches terms against the compact code, the spaced code and the title.
func (s *SQLiteStorage) SubstringCourses(ctx context.Context, terms []string, scope string, limit int) ([]*models.Course, error) {
	terms = cleanTerms(terms)
	if len(terms) == 0 {
		return []*models.Course{}, nil
	}
	where, args := likeAny(courseHaystacks, terms)
	args = append(args, scope, scope, limit)
	return queryAll(ctx, s, scanCourse, `SELECT `+courseColumns+` FROM courses c
		WHERE `+where+` AND (? = '' OR c.dept_abbr = ?)
		ORDER BY c.total_students DESC, c.id
		LIMIT ?`, args...)
}

// SubstringProfessors matches terms against professor names.
func (s *SQLiteStorage) SubstringProfessors(ctx context.Context, terms []string, scope string, limit int) ([]*models.Professor, error) {
	terms = cleanTerms(terms)
	if len(terms) == 0 {
		return []*models.Professor{}, nil
	}
	where, args := likeAny(professorHaystacks, terms)
	args = append(args, scope, scope, limit)
	return queryAll(ctx, s, scanProfessor, `SELECT `+professorColumns+` FROM professors p
		WHERE `+where+` AND `+professorScope+`
		ORDER BY enrollment DESC, p.id
		LIMIT ?`, args...)
}

// SubstringDepartments matches terms against the abbreviation and the full name.
func (s *SQLiteStorage) SubstringDepartments(ctx context.Context, terms []string, scope string, limit int) ([]*models.Department, error) {
	terms = cleanTerms(terms)
	if len(terms) == 0 {
		return []*models.Department{}, nil
	}
	where, args := likeAny(departmentHaystacks, terms)
	args = append(args, scope, scope, limit)
	return queryAll(ctx, s, scanDepartment, `SELECT `+departmentColumns+` FROM departments d
		WHERE `+where+` AND (? = '' OR d.dept_abbr = ?)
		ORDER BY enrollment DESC, d.dept_abbr
		LIMIT ?`, args...)
}

var gradeQueries = map[models.EntityKind]string{
	models.KindCourse: `SELECT d.class_id, td.grades FROM distributions d
		JOIN term_distributions td ON td.dist_id = d.id
		WHERE d.class_id IN (%s) ORDER BY td.term`,
	models.KindProfessor: `SELECT d.instructor_id, td.grades FROM distributions d
		JOIN term_distributions td ON td.dist_id = d.id
		WHERE d.instructor_id IN (%s) ORDER BY td.term`,
	models.KindDepartment: `SELECT c.dept_abbr, td.grades FROM courses c
		JOIN distributions d ON d.class_id = c.id
		JOIN term_distributions td ON td.dist_id = d.id
		WHERE c.dept_abbr IN (%s) ORDER BY td.term`,
}

// GradeCounts returns the per-term grade maps of every id in one query.
func (s *SQLiteStorage) GradeCounts(ctx context.Context, kind models.EntityKind, ids []string) (map[string][]models.GradeCounts, error) {
	tmpl, ok := gradeQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	out := make(map[string][]models.GradeCounts, len(ids))
	args := uniqueArgs(ids)
	if len(args) == 0 {
		return out, nil
	}

	rows, err := s.stmts.query(ctx, fmt.Sprintf(tmpl, placeholders(len(args))), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grade counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var counts models.GradeCounts
		if err := json.Unmarshal([]byte(raw), &counts); err != nil {
			return nil, fmt.Errorf("failed to decode grades for %s %s: %w", kind, key, err)
		}
		out[key] = append(out[key], counts)
	}
	return out, rows.Err()
}

// ListCourses returns every course ordered by ID.
func (s *SQLiteStorage) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return queryAll(ctx, s, scanCourse, `SELECT `+courseColumns+` FROM courses c ORDER BY c.id`)
}

// ListProfessors returns every professor ordered by ID.
func (s *SQLiteStorage) ListProfessors(ctx context.Context) ([]*models.Professor, error) {
	return queryAll(ctx, s, scanProfessor, `SELECT `+professorColumns+` FROM professors p ORDER BY p.id`)
}

// ListDepartments returns every department ordered by abbreviation.
func (s *SQLiteStorage) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	return queryAll(ctx, s, scanDepartment, `SELECT `+departmentColumns+` FROM departments d ORDER BY d.dept_abbr`)
}

// ProfessorDepartments maps each professor ID to the departments they taught in.
func (s *SQLiteStorage) ProfessorDepartments(ctx context.Context) (map[string][]string, error) {
	rows, err := s.stmts.query(ctx, `SELECT DISTINCT d.instructor_id, c.dept_abbr
		FROM distributions d JOIN courses c ON c.id = d.class_id
		ORDER BY 1, 2`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var id, dept string
		if err := rows.Scan(&id, &dept); err != nil {
			return nil, err
		}
		out[id] = append(out[id], dept)
	}
	return out, rows.Err()
}

// ImportCatalog upserts every entity of cat in one transaction. Courses imported with
// zero enrollment get it summed from their distributions.
func (s *SQLiteStorage) ImportCatalog(ctx context.Context, cat *models.Catalog) error {
	if err := validateCatalog(cat); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range cat.Departments {
		if _, err := tx.ExecContext(ctx, `INSERT INTO departments (dept_abbr, campus, dept_name) VALUES (?, ?, ?)
			ON CONFLICT(dept_abbr) DO UPDATE SET campus = excluded.campus, dept_name = excluded.dept_name`,
			normalizeAbbr(d.Abbr), d.Campus, d.Name); err != nil {
			return fmt.Errorf("failed to import department %s: %w", d.Abbr, err)
		}
	}
	for _, c := range cat.Courses {
		if _, err := tx.ExecContext(ctx, `INSERT INTO courses (id, campus, dept_abbr, course_num, class_desc, total_students)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET campus = excluded.campus, dept_abbr = excluded.dept_abbr,
				course_num = excluded.course_num, class_desc = excluded.class_desc,
				total_students = excluded.total_students`,
			c.ID, c.Campus, normalizeAbbr(c.DeptAbbr), strings.ToUpper(strings.TrimSpace(c.Number)), c.Title, c.Enrollment); err != nil {
			return fmt.Errorf("failed to import course %d: %w", c.ID, err)
		}
	}
	for _, p := range cat.Professors {
		if _, err := tx.ExecContext(ctx, `INSERT INTO professors (id, name, rmp_score, rmp_diff, rmp_would_take_again, rmp_link)
			VALUES (?, ?, ?, ?, ?, NULLIF(?, ''))
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, rmp_score = excluded.rmp_score,
				rmp_diff = excluded.rmp_diff, rmp_would_take_again = excluded.rmp_would_take_again,
				rmp_link = excluded.rmp_link`,
			p.ID, p.Name, p.Rating, p.Difficulty, p.WouldTakeAgain, p.RatingLink); err != nil {
			return fmt.Errorf("failed to import professor %d: %w", p.ID, err)
		}
	}
	for _, d := range cat.Distributions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO distributions (id, class_id, instructor_id) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET class_id = excluded.class_id, instructor_id = excluded.instructor_id`,
			d.ID, d.CourseID, d.ProfessorID); err != nil {
			return fmt.Errorf("failed to import distribution %d: %w", d.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM term_distributions WHERE dist_id = ?`, d.ID); err != nil {
			return fmt.Errorf("failed to reset terms of distribution %d: %w", d.ID, err)
		}
		for _, term := range d.Terms {
			grades, err := json.Marshal(term.Grades)
			if err != nil {
				return fmt.Errorf("failed to encode grades: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO term_distributions (dist_id, term, students, grades) VALUES (?, ?, ?, ?)`,
				d.ID, term.Term, term.Students, string(grades)); err != nil {
				return fmt.Errorf("failed to import term %d of distribution %d: %w", term.Term, d.ID, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE courses SET total_students = (
			SELECT COALESCE(SUM(td.students), 0) FROM distributions d
			JOIN term_distributions td ON td.dist_id = d.id
			WHERE d.class_id = courses.id)
		WHERE total_students = 0
		  AND EXISTS (SELECT 1 FROM distributions d WHERE d.class_id = courses.id)`); err != nil {
		return fmt.Errorf("failed to derive enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func normalizeAbbr(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func validateCatalog(cat *models.Catalog) error {
	if cat == nil {
		return errors.New("catalog is nil")
	}
	for _, d := range cat.Departments {
		if normalizeAbbr(d.Abbr) == "" {
			return errors.New("department with empty abbreviation")
		}
	}
	for _, c := range cat.Courses {
		if normalizeAbbr(c.DeptAbbr) == "" || strings.TrimSpace(c.Number) == "" {
			return fmt.Errorf("course %d: department and number are required", c.ID)
		}
	}
	for _, p := range cat.Professors {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("professor %d: name is required", p.ID)
		}
	}
	return nil
}

// Counts returns the number of rows per table.
func (s *SQLiteStorage) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM departments),
		(SELECT COUNT(*) FROM courses),
		(SELECT COUNT(*) FROM professors),
		(SELECT COUNT(*) FROM distributions)`).Scan(&c.Departments, &c.Courses, &c.Professors, &c.Distributions)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}

// Close releases cached statements and closes the database.
func (s *SQLiteStorage) Close() error {
	s.stmts.close()
	return s.db.Close()
}

// ParseID converts a string key to a numeric row ID.
func ParseID(key string) (int64, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", key, err)
	}
	return id, nil
}
