// Package indexer loads catalog rows from storage into a bleve keyword index.
package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/hyperjump/gradesearch/internal/keyword"
	"github.com/hyperjump/gradesearch/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of documents written per bleve batch.
const DefaultBatchSize = 500

// Stats reports how many documents a Sync wrote per kind.
type Stats struct {
	Courses     int
	Professors  int
	Departments int
	Duration    time.Duration
}

// Total is the number of documents written.
func (s Stats) Total() int { return s.Courses + s.Professors + s.Departments }

// Indexer copies storage rows into a bleve index.
type Indexer struct {
	store     storage.Storage
	index     *keyword.BleveIndex
	batchSize int
	logger    *zap.Logger // optional
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for progress output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithBatchSize overrides DefaultBatchSize. Values below 1 are ignored.
func WithBatchSize(n int) IndexerOption {
	return func(idx *Indexer) {
		if n > 0 {
			idx.batchSize = n
		}
	}
}

// NewIndexer creates an indexer reading from store and writing to index.
func NewIndexer(store storage.Storage, index *keyword.BleveIndex, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		store:     store,
		index:     index,
		batchSize: DefaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.logger == nil {
		idx.logger = zap.NewNop()
	}
	return idx
}

// Sync writes every department, course and professor to the index.
// Existing documents with the same IDs are replaced.
func (idx *Indexer) Sync(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		depts, err := idx.store.ListDepartments(gctx)
		if err != nil {
			return fmt.Errorf("list departments: %w", err)
		}
		docs := make([]keyword.Document, 0, len(depts))
		for _, d := range depts {
			doc := keyword.DepartmentDocument(d)
			doc.Name = cleanText(doc.Name)
			docs = append(docs, doc)
		}
		stats.Departments = len(docs)
		return idx.write(gctx, "departments", docs)
	})
	g.Go(func() error {
		courses, err := idx.store.ListCourses(gctx)
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		docs := make([]keyword.Document, 0, len(courses))
		for _, c := range courses {
			doc := keyword.CourseDocument(c)
			doc.Title = cleanText(doc.Title)
			docs = append(docs, doc)
		}
		stats.Courses = len(docs)
		return idx.write(gctx, "courses", docs)
	})
	g.Go(func() error {
		profs, err := idx.store.ListProfessors(gctx)
		if err != nil {
			return fmt.Errorf("list professors: %w", err)
		}
		depts, err := idx.store.ProfessorDepartments(gctx)
		if err != nil {
			return fmt.Errorf("professor departments: %w", err)
		}
		docs := make([]keyword.Document, 0, len(profs))
		for _, p := range profs {
			doc := keyword.ProfessorDocument(p, depts[p.Key()])
			doc.Name = cleanText(doc.Name)
			docs = append(docs, doc)
		}
		stats.Professors = len(docs)
		return idx.write(gctx, "professors", docs)
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats.Duration = time.Since(start)
	idx.logger.Info("index sync complete",
		zap.Int("courses", stats.Courses),
		zap.Int("professors", stats.Professors),
		zap.Int("departments", stats.Departments),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

func (idx *Indexer) write(ctx context.Context, label string, docs []keyword.Document) error {
	for start := 0; start < len(docs); start += idx.batchSize {
		end := min(start+idx.batchSize, len(docs))
		if err := idx.index.Index(ctx, docs[start:end]); err != nil {
			return fmt.Errorf("index %s: %w", label, err)
		}
		idx.logger.Debug("indexer wrote batch", zap.String("kind", label), zap.Int("from", start), zap.Int("to", end))
	}
	return nil
}

// cleanText trims and collapses runs of whitespace to a single space.
func cleanText(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		wasSpace = false
	}
	return b.String()
}
