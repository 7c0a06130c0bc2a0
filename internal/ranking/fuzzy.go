package ranking

import (
	"strings"

	"github.com/hyperjump/gradesearch/internal/keyword"
	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/pkg/utils"
)

// Fuzzy score components.
const (
	ExactCodeBonus    = 1000
	ShortPrefixBonus  = 500
	shortQueryLength  = 4
	similarityCeiling = 100
	popularityScale   = 10
)

// FuzzyReranker reorders scarce result lists by edit distance to the query.
type FuzzyReranker struct {
	threshold int
	decay     map[models.EntityKind]float64
}

// NewFuzzyReranker creates a reranker from the threshold and decay settings of config.
func NewFuzzyReranker(config *Config) *FuzzyReranker {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &FuzzyReranker{
		threshold: config.FuzzyThreshold,
		decay: map[models.EntityKind]float64{
			models.KindCourse:     config.CourseDistanceDecay,
			models.KindProfessor:  config.ProfessorDistanceDecay,
			models.KindDepartment: config.DepartmentDistanceDecay,
		},
	}
}

// Applies reports whether a list of n results is scarce enough to rerank.
func (f *FuzzyReranker) Applies(n int) bool {
	return n < f.threshold
}

// Rerank adds a fuzzy score to every result of a scarce list and re-sorts it. Lists at
// or above the threshold are returned untouched. Members are never added or removed.
func (f *FuzzyReranker) Rerank(query string, results []*models.RankedResult) []*models.RankedResult {
	if !f.Applies(len(results)) {
		return results
	}
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" {
		return results
	}

	for _, r := range results {
		s := f.Score(q, r.RawResult)
		r.FuzzyScore = &s
		r.CombinedScore += s
	}
	Sort(results)
	return results
}

// Score computes the fuzzy score of row for a lowercased query.
func (f *FuzzyReranker) Score(q string, row *models.RawResult) float64 {
	var score float64

	if code := strings.ToLower(row.Code()); code != "" {
		compact := strings.ToLower(CompactUpper(q))
		switch {
		case compact == code:
			score += ExactCodeBonus
		case len([]rune(q)) <= shortQueryLength && strings.HasPrefix(code, compact):
			score += ShortPrefixBonus
		}
	}

	d := float64(Distance(q, SearchableText(row)))
	score += max(0, similarityCeiling-d*f.decay[row.Kind])

	switch {
	case row.Course != nil:
		score += popularityScale * utils.LogPopularity(row.Course.Enrollment)
	case row.Professor != nil:
		score += popularityScale * row.Professor.Rating
	}
	return score
}

// SearchableText returns the lowercased text a query is compared against: code and
// title for courses, the name for professors, abbreviation and name for departments.
func SearchableText(row *models.RawResult) string {
	switch {
	case row.Course != nil:
		return strings.ToLower(row.Course.Code() + " " + row.Course.Title)
	case row.Professor != nil:
		return strings.ToLower(row.Professor.Name)
	case row.Department != nil:
		return strings.ToLower(row.Department.Abbr + " " + row.Department.Name)
	}
	return ""
}

// Distance is the smallest Levenshtein distance between q and either the whole text or
// any run of consecutive text words as long as q in words. A query naming one word of a
// long title scores as close as the word itself.
func Distance(q, text string) int {
	ed := keyword.NewEditDistance(q)
	best := ed.To(text)
	qn := len(strings.Fields(q))
	words := strings.Fields(text)
	if qn == 0 || qn > len(words) {
		return best
	}
	for i := 0; i+qn <= len(words); i++ {
		best = min(best, ed.To(strings.Join(words[i:i+qn], " ")))
	}
	return best
}
