package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/gradesearch/internal/models"
)

const codeAnalyzer = "code_keyword"

// Document is the bleve representation of one catalog entity.
type Document struct {
	Kind       string   `json:"kind"`
	Code       string   `json:"code,omitempty"`
	CodeSpaced string   `json:"code_spaced,omitempty"`
	Dept       string   `json:"dept,omitempty"`
	Title      string   `json:"title,omitempty"`
	Name       string   `json:"name,omitempty"`
	Depts      []string `json:"depts,omitempty"`

	id string
}

// CourseDocument builds the index document for a course.
func CourseDocument(c *models.Course) Document {
	return Document{
		Kind:       string(models.KindCourse),
		Code:       c.Code(),
		CodeSpaced: c.SpacedCode(),
		Dept:       c.DeptAbbr,
		Title:      c.Title,
		id:         c.Key(),
	}
}

// ProfessorDocument builds the index document for a professor who taught in depts.
func ProfessorDocument(p *models.Professor, depts []string) Document {
	return Document{Kind: string(models.KindProfessor), Name: p.Name, Depts: depts, id: p.Key()}
}

// DepartmentDocument builds the index document for a department.
func DepartmentDocument(d *models.Department) Document {
	return Document{Kind: string(models.KindDepartment), Dept: d.Abbr, Name: d.Name, id: d.Abbr}
}

// DocID is the bleve document ID, unique across kinds.
func (d Document) DocID() string {
	return d.Kind + ":" + d.id
}

// BleveIndex implements FullTextIndex with one bleve index holding every kind.
// Bleve scores are higher-is-better, so hits are negated on the way out.
type BleveIndex struct {
	index bleve.Index
}

func newIndexMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(codeAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register code analyzer: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()

	kindField := bleve.NewKeywordFieldMapping()
	kindField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("kind", kindField)

	codeField := bleve.NewTextFieldMapping()
	codeField.Analyzer = codeAnalyzer
	docMapping.AddFieldMappingsAt("code", codeField)
	docMapping.AddFieldMappingsAt("code_spaced", codeField)
	docMapping.AddFieldMappingsAt("dept", codeField)

	deptsField := bleve.NewTextFieldMapping()
	deptsField.Analyzer = codeAnalyzer
	deptsField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("depts", deptsField)

	// Standard analyzer (lowercase + tokenize, no stemming) so "calc" prefixes "Calculus".
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("name", textField)

	im.DefaultMapping = docMapping
	im.DefaultAnalyzer = standard.Name
	return im, nil
}

// NewBleveIndex creates or opens a bleve index at path.
// If you change the index mapping in code, remove the index directory and reload.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	im, err := newIndexMapping()
	if err != nil {
		return nil, err
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemBleveIndex creates an in-memory index.
func NewMemBleveIndex() (*BleveIndex, error) {
	im, err := newIndexMapping()
	if err != nil {
		return nil, err
	}
	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Name returns "bleve".
func (b *BleveIndex) Name() string { return "bleve" }

// Index adds or replaces docs in one batch.
func (b *BleveIndex) Index(ctx context.Context, docs []Document) error {
	batch := b.index.NewBatch()
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(d.DocID(), d); err != nil {
			return fmt.Errorf("failed to batch %s: %w", d.DocID(), err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	return nil
}

// Search parses match as a bleve query string and restricts it to kind and scope.
func (b *BleveIndex) Search(ctx context.Context, kind models.EntityKind, match, scope string, limit int) ([]Hit, error) {
	if strings.TrimSpace(match) == "" {
		return nil, fmt.Errorf("%w: empty match expression", ErrQuerySyntax)
	}
	qs := bleve.NewQueryStringQuery(match)
	if _, err := qs.Parse(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuerySyntax, err)
	}

	kindQuery := bleve.NewTermQuery(string(kind))
	kindQuery.SetField("kind")
	clauses := []blevequery.Query{qs, kindQuery}
	if scope != "" {
		scopeQuery := bleve.NewTermQuery(strings.ToLower(scope))
		if kind == models.KindProfessor {
			scopeQuery.SetField("depts")
		} else {
			scopeQuery.SetField("dept")
		}
		clauses = append(clauses, scopeQuery)
	}

	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(clauses...))
	req.Size = limit
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: Bleve search failed: %w", ErrIndexUnavailable, err)
	}

	prefix := string(kind) + ":"
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: strings.TrimPrefix(h.ID, prefix), Score: -h.Score})
	}
	return hits, nil
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
