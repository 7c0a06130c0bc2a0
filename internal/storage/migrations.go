package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Migration is one versioned schema change. An Optional migration that fails because
// the SQLite build lacks a module is skipped and retried on the next open.
type Migration struct {
	Version  string
	Up       string
	Optional bool
}

// AllMigrations contains all database migrations in order.
var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1Up},
	{Version: "1.1.0", Up: migrationV1_1Up, Optional: true},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS departments (
    dept_abbr TEXT PRIMARY KEY,
    campus TEXT NOT NULL DEFAULT '',
    dept_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS courses (
    id INTEGER PRIMARY KEY,
    campus TEXT NOT NULL DEFAULT '',
    dept_abbr TEXT NOT NULL,
    course_num TEXT NOT NULL,
    class_desc TEXT NOT NULL DEFAULT '',
    total_students INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_courses_dept ON courses(dept_abbr, course_num);
CREATE INDEX IF NOT EXISTS idx_courses_students ON courses(total_students);

CREATE TABLE IF NOT EXISTS professors (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    rmp_score REAL,
    rmp_diff REAL,
    rmp_would_take_again REAL,
    rmp_link TEXT
);

CREATE TABLE IF NOT EXISTS distributions (
    id INTEGER PRIMARY KEY,
    class_id INTEGER NOT NULL,
    instructor_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_distributions_class ON distributions(class_id);
CREATE INDEX IF NOT EXISTS idx_distributions_instructor ON distributions(instructor_id);

CREATE TABLE IF NOT EXISTS term_distributions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dist_id INTEGER NOT NULL,
    term INTEGER NOT NULL,
    students INTEGER NOT NULL DEFAULT 0,
    grades TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_term_distributions_dist ON term_distributions(dist_id);
`

// Full-text tables. Each FTS row shares its rowid with the base row; triggers keep them
// in sync and the trailing INSERTs backfill rows loaded before the index existed.
const migrationV1_1Up = `
CREATE VIRTUAL TABLE IF NOT EXISTS courses_fts USING fts5(code, code_spaced, dept, title);
CREATE VIRTUAL TABLE IF NOT EXISTS professors_fts USING fts5(name);
CREATE VIRTUAL TABLE IF NOT EXISTS departments_fts USING fts5(dept, name);

CREATE TRIGGER IF NOT EXISTS courses_ai AFTER INSERT ON courses BEGIN
    INSERT INTO courses_fts(rowid, code, code_spaced, dept, title)
    VALUES (new.id, new.dept_abbr || new.course_num, new.dept_abbr || ' ' || new.course_num, new.dept_abbr, new.class_desc);
END;
CREATE TRIGGER IF NOT EXISTS courses_ad AFTER DELETE ON courses BEGIN
    DELETE FROM courses_fts WHERE rowid = old.id;
END;
CREATE TRIGGER IF NOT EXISTS courses_au AFTER UPDATE ON courses BEGIN
    DELETE FROM courses_fts WHERE rowid = old.id;
    INSERT INTO courses_fts(rowid, code, code_spaced, dept, title)
    VALUES (new.id, new.dept_abbr || new.course_num, new.dept_abbr || ' ' || new.course_num, new.dept_abbr, new.class_desc);
END;

CREATE TRIGGER IF NOT EXISTS professors_ai AFTER INSERT ON professors BEGIN
    INSERT INTO professors_fts(rowid, name) VALUES (new.id, new.name);
END;
CREATE TRIGGER IF NOT EXISTS professors_ad AFTER DELETE ON professors BEGIN
    DELETE FROM professors_fts WHERE rowid = old.id;
END;
CREATE TRIGGER IF NOT EXISTS professors_au AFTER UPDATE ON professors BEGIN
    DELETE FROM professors_fts WHERE rowid = old.id;
    INSERT INTO professors_fts(rowid, name) VALUES (new.id, new.name);
END;

CREATE TRIGGER IF NOT EXISTS departments_ai AFTER INSERT ON departments BEGIN
    INSERT INTO departments_fts(rowid, dept, name) VALUES (new.rowid, new.dept_abbr, new.dept_name);
END;
CREATE TRIGGER IF NOT EXISTS departments_ad AFTER DELETE ON departments BEGIN
    DELETE FROM departments_fts WHERE rowid = old.rowid;
END;
CREATE TRIGGER IF NOT EXISTS departments_au AFTER UPDATE ON departments BEGIN
    DELETE FROM departments_fts WHERE rowid = old.rowid;
    INSERT INTO departments_fts(rowid, dept, name) VALUES (new.rowid, new.dept_abbr, new.dept_name);
END;

DELETE FROM courses_fts;
INSERT INTO courses_fts(rowid, code, code_spaced, dept, title)
    SELECT id, dept_abbr || course_num, dept_abbr || ' ' || course_num, dept_abbr, class_desc FROM courses;
DELETE FROM professors_fts;
INSERT INTO professors_fts(rowid, name) SELECT id, name FROM professors;
DELETE FROM departments_fts;
INSERT INTO departments_fts(rowid, dept, name) SELECT rowid, dept_abbr, dept_name FROM departments;
`

// MigrationResult reports what ApplyMigrations did.
type MigrationResult struct {
	Applied []string
	Skipped []string
	Current string
}

// ApplyMigrations runs all pending migrations in version order.
func ApplyMigrations(ctx context.Context, db *sql.DB) (*MigrationResult, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	res := &MigrationResult{Current: "0.0.0"}
	current := semver.MustParse("0.0.0")
	for _, v := range applied {
		if v.GreaterThan(current) {
			current = v
		}
	}

	for _, m := range AllMigrations {
		version, err := semver.NewVersion(m.Version)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if _, ok := applied[version.String()]; ok {
			continue
		}

		if _, err := db.ExecContext(ctx, m.Up); err != nil {
			if m.Optional && isMissingModule(err) {
				res.Skipped = append(res.Skipped, m.Version)
				continue
			}
			return nil, fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return nil, fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}
		res.Applied = append(res.Applied, m.Version)
		if version.GreaterThan(current) {
			current = version
		}
	}

	res.Current = current.String()
	return res, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]*semver.Version, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*semver.Version)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", s, err)
		}
		out[v.String()] = v
	}
	return out, rows.Err()
}

func isMissingModule(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such module")
}
