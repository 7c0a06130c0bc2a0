package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/gradesearch/internal/keyword"
	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/internal/query"
	"github.com/hyperjump/gradesearch/internal/ranking"
	"github.com/hyperjump/gradesearch/internal/storage"
)

// DefaultCandidatePoolSize caps the rows retrieved per entity kind before ranking.
const DefaultCandidatePoolSize = 30

// Execution paths, used in failure labels.
const (
	pathContent   = "content search"
	pathFastPath  = "fast path search"
	pathSubstring = "substring search"
	pathLookup    = "department lookup"
)

var errNoIndex = fmt.Errorf("%w: no full-text index configured", keyword.ErrIndexUnavailable)

// Execution holds the raw rows of every entity kind and the kinds that failed outright.
type Execution struct {
	Rows     map[models.EntityKind][]*models.RawResult
	Failures map[models.EntityKind]*BothPathsFailedError
}

// Executor runs a built query against the full-text index, falling back to substring
// matches on the store when the index path fails.
type Executor struct {
	store    storage.Storage
	index    keyword.FullTextIndex
	builder  *query.Builder
	poolSize int
	logger   *zap.Logger
}

// NewExecutor creates an executor. index may be nil, in which case every query takes
// the substring path.
func NewExecutor(store storage.Storage, index keyword.FullTextIndex, builder *query.Builder, poolSize int, logger *zap.Logger) *Executor {
	if poolSize <= 0 {
		poolSize = DefaultCandidatePoolSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{store: store, index: index, builder: builder, poolSize: poolSize, logger: logger}
}

func (e *Executor) withLogger(logger *zap.Logger) *Executor {
	c := *e
	c.logger = logger
	return &c
}

// Execute runs the three entity kinds concurrently. A kind whose index and fallback
// paths both fail is reported in Failures with an empty row list; the others are
// unaffected.
func (e *Executor) Execute(ctx context.Context, q models.SearchQuery, bq query.BuiltQuery) *Execution {
	exec := &Execution{
		Rows:     make(map[models.EntityKind][]*models.RawResult, len(models.Kinds)),
		Failures: make(map[models.EntityKind]*BothPathsFailedError),
	}
	var mu sync.Mutex
	var g errgroup.Group
	for _, kind := range models.Kinds {
		kind := kind
		g.Go(func() error {
			rows, err := e.executeKind(ctx, kind, q, bq)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				exec.Failures[kind] = err
				rows = nil
			}
			if rows == nil {
				rows = []*models.RawResult{}
			}
			exec.Rows[kind] = rows
			return nil
		})
	}
	_ = g.Wait()
	return exec
}

func (e *Executor) executeKind(ctx context.Context, kind models.EntityKind, q models.SearchQuery, bq query.BuiltQuery) ([]*models.RawResult, *BothPathsFailedError) {
	if bq.Exempt() {
		return e.substringOnly(ctx, kind, q)
	}

	c := bq.Classification
	switch c.Kind {
	case query.ExactCourse:
		switch kind {
		case models.KindCourse:
			return e.indexPath(ctx, kind, q, pathFastPath, bq.Match, models.SourceFastPath, bq.Priority)
		case models.KindDepartment:
			return e.lookupDepartment(ctx, q, c.Dept, bq.Priority)
		}
		return nil, nil

	case query.PartialCourse:
		switch kind {
		case models.KindCourse:
			return e.indexPath(ctx, kind, q, pathContent, bq.Match, models.SourceIndex, 0)
		case models.KindDepartment:
			return e.lookupDepartment(ctx, q, c.Dept, bq.Priority)
		}
		return nil, nil

	case query.DeptPrefix:
		prefix := e.builder.Prefix(c.Text)
		if kind == models.KindProfessor {
			return e.indexPath(ctx, kind, q, pathContent, prefix, models.SourceIndex, 0)
		}
		rows, err := e.indexPath(ctx, kind, q, pathFastPath, bq.Match, models.SourceFastPath, bq.Priority)
		if err != nil || len(rows) > 0 {
			return rows, err
		}
		return e.indexPath(ctx, kind, q, pathContent, prefix, models.SourceIndex, 0)
	}

	return e.indexPath(ctx, kind, q, pathContent, bq.Match, models.SourceIndex, 0)
}

func label(path string, kind models.EntityKind) string {
	return fmt.Sprintf("%s (%s)", path, kind.Plural())
}

// indexPath runs match against the index and fetches the details of every hit in one
// batch. Any failure on the way is logged and answered by the substring path.
func (e *Executor) indexPath(ctx context.Context, kind models.EntityKind, q models.SearchQuery, path, match string, src models.Source, priority float64) ([]*models.RawResult, *BothPathsFailedError) {
	lbl := label(path, kind)
	if match == "" {
		return e.substringOnly(ctx, kind, q)
	}

	rows, err := e.searchIndex(ctx, kind, q, match, src, priority)
	if err == nil {
		return rows, nil
	}

	e.logger.Warn("index search failed, falling back to substring match",
		zap.String("label", lbl),
		zap.String("kind", string(kind)),
		zap.String("match", match),
		zap.Bool("recoverable", keyword.IsRecoverable(err)),
		zap.Error(err))

	rows, fbErr := e.substring(ctx, kind, q)
	if fbErr != nil {
		failure := &BothPathsFailedError{Kind: kind, Label: lbl, IndexErr: err, FallbackErr: fbErr}
		e.logger.Error("search failed on both paths", zap.String("label", lbl), zap.String("kind", string(kind)), zap.Error(failure))
		return nil, failure
	}
	return rows, nil
}

func (e *Executor) searchIndex(ctx context.Context, kind models.EntityKind, q models.SearchQuery, match string, src models.Source, priority float64) ([]*models.RawResult, error) {
	if e.index == nil {
		return nil, errNoIndex
	}
	hits, err := e.index.Search(ctx, kind, match, q.Scope, e.poolSize)
	if err != nil {
		return nil, err
	}
	rows, err := e.fetch(ctx, kind, hits)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		r.Source = src
		r.Priority = priority
	}
	return rows, nil
}

// fetch loads the details of hits by primary key in one query, keeping hit order.
// Hits with no row are skipped.
func (e *Executor) fetch(ctx context.Context, kind models.EntityKind, hits []keyword.Hit) ([]*models.RawResult, error) {
	keys := make([]string, len(hits))
	for i, h := range hits {
		keys[i] = h.ID
	}

	var lookup func(string) *models.RawResult
	switch kind {
	case models.KindCourse:
		m, err := e.store.CoursesByIDs(ctx, keys)
		if err != nil {
			return nil, err
		}
		lookup = func(k string) *models.RawResult {
			if c, ok := m[k]; ok {
				return models.NewCourseResult(c, models.SourceIndex)
			}
			return nil
		}
	case models.KindProfessor:
		m, err := e.store.ProfessorsByIDs(ctx, keys)
		if err != nil {
			return nil, err
		}
		lookup = func(k string) *models.RawResult {
			if p, ok := m[k]; ok {
				return models.NewProfessorResult(p, models.SourceIndex)
			}
			return nil
		}
	case models.KindDepartment:
		m, err := e.store.DepartmentsByAbbrs(ctx, keys)
		if err != nil {
			return nil, err
		}
		lookup = func(k string) *models.RawResult {
			if d, ok := m[k]; ok {
				return models.NewDepartmentResult(d, models.SourceIndex)
			}
			return nil
		}
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	rows := make([]*models.RawResult, 0, len(hits))
	for _, h := range hits {
		if r := lookup(h.ID); r != nil {
			r.NativeScore = h.Score
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// lookupDepartment answers the department list of a course-code query with a point
// lookup of the code's department.
func (e *Executor) lookupDepartment(ctx context.Context, q models.SearchQuery, abbr string, priority float64) ([]*models.RawResult, *BothPathsFailedError) {
	if q.Scoped() && q.Scope != abbr {
		return nil, nil
	}
	d, err := e.store.GetDepartment(ctx, abbr)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		lbl := label(pathLookup, models.KindDepartment)
		e.logger.Error("department lookup failed", zap.String("label", lbl), zap.Error(err))
		return nil, &BothPathsFailedError{Kind: models.KindDepartment, Label: lbl, FallbackErr: err}
	}
	r := models.NewDepartmentResult(d, models.SourceFastPath)
	r.Priority = priority
	return []*models.RawResult{r}, nil
}

func (e *Executor) substringOnly(ctx context.Context, kind models.EntityKind, q models.SearchQuery) ([]*models.RawResult, *BothPathsFailedError) {
	rows, err := e.substring(ctx, kind, q)
	if err != nil {
		lbl := label(pathSubstring, kind)
		e.logger.Error("substring search failed", zap.String("label", lbl), zap.Error(err))
		return nil, &BothPathsFailedError{Kind: kind, Label: lbl, FallbackErr: err}
	}
	return rows, nil
}

// SubstringTerms returns the terms matched by the substring path: the whole normalized
// query plus each of its significant words.
func SubstringTerms(q models.SearchQuery) []string {
	if q.IsEmpty() {
		return nil
	}
	return append([]string{q.Normalized}, ranking.SignificantWords(q.Normalized)...)
}

func (e *Executor) substring(ctx context.Context, kind models.EntityKind, q models.SearchQuery) ([]*models.RawResult, error) {
	terms := SubstringTerms(q)
	rows := []*models.RawResult{}
	switch kind {
	case models.KindCourse:
		list, err := e.store.SubstringCourses(ctx, terms, q.Scope, e.poolSize)
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			rows = append(rows, models.NewCourseResult(c, models.SourceFallback))
		}
	case models.KindProfessor:
		list, err := e.store.SubstringProfessors(ctx, terms, q.Scope, e.poolSize)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			rows = append(rows, models.NewProfessorResult(p, models.SourceFallback))
		}
	case models.KindDepartment:
		list, err := e.store.SubstringDepartments(ctx, terms, q.Scope, e.poolSize)
		if err != nil {
			return nil, err
		}
		for _, d := range list {
			rows = append(rows, models.NewDepartmentResult(d, models.SourceFallback))
		}
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	return rows, nil
}
