// Package search resolves free-text queries against the course, professor and
// department catalogs.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/gradesearch/internal/cache"
	"github.com/hyperjump/gradesearch/internal/config"
	"github.com/hyperjump/gradesearch/internal/keyword"
	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/internal/query"
	"github.com/hyperjump/gradesearch/internal/ranking"
	"github.com/hyperjump/gradesearch/internal/storage"
	"github.com/hyperjump/gradesearch/internal/summary"
)

// Caches are the two result caches owned by an Engine.
type Caches struct {
	Search       *cache.Cache[*models.SearchResponse]
	Autocomplete *cache.Cache[*models.SearchResponse]
}

// NewCaches creates the search and autocomplete caches sized by cfg.
func NewCaches(cfg config.CacheConfig, opts ...cache.Option) (Caches, error) {
	s, err := cache.New[*models.SearchResponse](cfg.SearchCapacity, cfg.TTL, append(opts, cache.WithName("search"))...)
	if err != nil {
		return Caches{}, err
	}
	a, err := cache.New[*models.SearchResponse](cfg.AutocompleteCapacity, cfg.TTL, append(opts, cache.WithName("autocomplete"))...)
	if err != nil {
		return Caches{}, err
	}
	return Caches{Search: s, Autocomplete: a}, nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithAggregator replaces the grade summary aggregator.
func WithAggregator(a summary.Aggregator) Option {
	return func(e *Engine) {
		if a != nil {
			e.aggregator = a
		}
	}
}

// Engine runs the search pipeline: classify, build, execute, rank, rerank, enrich.
type Engine struct {
	store      storage.Storage
	index      keyword.FullTextIndex
	builder    *query.Builder
	executor   *Executor
	ranker     *ranking.Ranker
	fuzzy      *ranking.FuzzyReranker
	aggregator summary.Aggregator
	caches     Caches
	config     config.SearchConfig
	logger     *zap.Logger
}

// NewEngine creates a search engine. index may be nil, in which case every query is
// answered by substring matching.
func NewEngine(store storage.Storage, index keyword.FullTextIndex, cfg *config.Config, caches Caches, opts ...Option) *Engine {
	backend := config.BackendFTS5
	if index != nil {
		backend = index.Name()
	}
	rankCfg := cfg.Ranking
	e := &Engine{
		store:      store,
		index:      index,
		builder:    query.NewBuilder(query.DialectFor(backend), cfg.Search.FastPathPriority),
		ranker:     ranking.NewRanker(&rankCfg),
		fuzzy:      ranking.NewFuzzyReranker(&rankCfg),
		aggregator: summary.GPA{},
		caches:     caches,
		config:     cfg.Search,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.executor = NewExecutor(store, index, e.builder, cfg.Search.CandidatePoolSize, e.logger)
	return e
}

// Search returns a page of results for raw, restricted to scope when it is non-empty.
// The response is always usable; the error joins the failures of individual kinds.
func (e *Engine) Search(ctx context.Context, raw, scope string) (*models.SearchResponse, error) {
	return e.run(ctx, "search", raw, scope, e.caches.Search, e.config.PageSize)
}

// Autocomplete is Search with the smaller autocomplete page and its own cache.
func (e *Engine) Autocomplete(ctx context.Context, raw, scope string) (*models.SearchResponse, error) {
	return e.run(ctx, "autocomplete", raw, scope, e.caches.Autocomplete, e.config.AutocompletePageSize)
}

func (e *Engine) run(ctx context.Context, mode, raw, scope string, c *cache.Cache[*models.SearchResponse], pageSize int) (*models.SearchResponse, error) {
	start := time.Now()
	q := models.NewSearchQuery(raw, scope)
	logger := e.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("mode", mode),
		zap.String("query", q.Normalized),
		zap.String("scope", q.Scope))

	if q.IsEmpty() {
		resp := models.NewSearchResponse(q)
		resp.Classification = query.Classify("").String()
		return resp, nil
	}

	key := q.CacheKey()
	if c != nil {
		if cached, ok := c.Get(key); ok && cached != nil {
			logger.Debug("cache hit", zap.String("key", key))
			hit := *cached
			hit.Cached = true
			hit.QueryTime = time.Since(start).Milliseconds()
			return &hit, nil
		}
		logger.Debug("cache miss", zap.String("key", key))
	}

	cls := query.Classify(q.Normalized)
	bq := e.builder.Build(cls)
	exec := e.executor.withLogger(logger).Execute(ctx, q, bq)

	resp := models.NewSearchResponse(q)
	resp.Classification = cls.String()
	var errs []error
	for _, kind := range models.Kinds {
		if failure := exec.Failures[kind]; failure != nil {
			resp.Failures = append(resp.Failures, failure.Failure())
			errs = append(errs, failure)
		}
		list := e.ranker.Rank(q.Normalized, exec.Rows[kind])
		list = e.fuzzy.Rerank(q.Normalized, list)
		resp.SetList(kind, ranking.Trim(list, pageSize))
	}

	enriched := e.enrich(ctx, resp, logger)
	resp.QueryTime = time.Since(start).Milliseconds()

	if c != nil && len(errs) == 0 && enriched {
		c.Set(key, resp)
	}
	logger.Info("search completed",
		zap.String("classification", resp.Classification),
		zap.Int("departments", len(resp.Departments)),
		zap.Int("classes", len(resp.Classes)),
		zap.Int("professors", len(resp.Professors)),
		zap.Int("failures", len(resp.Failures)),
		zap.Int64("query_time_ms", resp.QueryTime))
	return resp, errors.Join(errs...)
}

// enrich attaches grade summaries with one batch query per kind. A failed batch leaves
// that kind's summaries zero and is logged; it reports false so the response is not cached.
func (e *Engine) enrich(ctx context.Context, resp *models.SearchResponse, logger *zap.Logger) bool {
	ok := true
	for _, kind := range models.Kinds {
		list := resp.List(kind)
		if len(list) == 0 {
			continue
		}
		ids := make([]string, len(list))
		for i, r := range list {
			ids[i] = r.ID
		}
		counts, err := e.store.GradeCounts(ctx, kind, ids)
		if err != nil {
			logger.Warn("failed to load grade counts", zap.String("kind", string(kind)), zap.Error(err))
			ok = false
			continue
		}
		for _, r := range list {
			r.Summary = e.aggregator.Aggregate(counts[r.ID])
		}
	}
	return ok
}

// Describe returns one entity with its grade summary. key is a numeric ID for courses
// and professors and an abbreviation for departments.
func (e *Engine) Describe(ctx context.Context, kind models.EntityKind, key string) (*models.RankedResult, error) {
	var row *models.RawResult
	switch kind {
	case models.KindDepartment:
		d, err := e.store.GetDepartment(ctx, key)
		if err != nil {
			return nil, err
		}
		row = models.NewDepartmentResult(d, "")
	case models.KindCourse, models.KindProfessor:
		id, err := storage.ParseID(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s id %q", ErrInvalidKey, kind, key)
		}
		if kind == models.KindCourse {
			c, err := e.store.GetCourse(ctx, id)
			if err != nil {
				return nil, err
			}
			row = models.NewCourseResult(c, "")
		} else {
			p, err := e.store.GetProfessor(ctx, id)
			if err != nil {
				return nil, err
			}
			row = models.NewProfessorResult(p, "")
		}
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %q", ErrInvalidKey, kind)
	}

	counts, err := e.store.GradeCounts(ctx, kind, []string{row.ID})
	if err != nil {
		return nil, err
	}
	return &models.RankedResult{RawResult: row, Summary: e.aggregator.Aggregate(counts[row.ID])}, nil
}

// IndexName returns the active full-text backend, or "substring" when there is none.
func (e *Engine) IndexName() string {
	if e.index == nil {
		return "substring"
	}
	return e.index.Name()
}

// CacheStats returns counters of both result caches.
func (e *Engine) CacheStats() []cache.Stats {
	var stats []cache.Stats
	for _, c := range []*cache.Cache[*models.SearchResponse]{e.caches.Search, e.caches.Autocomplete} {
		if c != nil {
			stats = append(stats, c.Stats())
		}
	}
	return stats
}

// PurgeCaches empties both result caches, e.g. after a catalog import.
func (e *Engine) PurgeCaches() {
	for _, c := range []*cache.Cache[*models.SearchResponse]{e.caches.Search, e.caches.Autocomplete} {
		if c != nil {
			c.Purge()
		}
	}
}
