// Package ranking orders retrieved catalog rows by relevance and popularity.
package ranking

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/pkg/utils"
)

// Fallback boost constants.
const (
	NameMatchBoost = 10000
	CodeMatchBoost = 20000
	popularityUnit = 100
)

// Ranker turns raw rows into ordered RankedResults. Each source has its own model:
// index rows blend relevance with popularity, fast-path rows keep their natural key
// order, and fallback rows get a deterministic boost.
type Ranker struct {
	config *Config
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *Config) *Ranker {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &Ranker{config: config}
}

// GetConfig returns the ranking configuration.
func (r *Ranker) GetConfig() *Config {
	return r.config
}

// Rank ranks rows of any mix of sources for query. Fast-path rows come first, then
// index rows, then fallback rows.
func (r *Ranker) Rank(query string, rows []*models.RawResult) []*models.RankedResult {
	var fast, content, fallback []*models.RawResult
	for _, row := range rows {
		switch row.Source {
		case models.SourceFastPath:
			fast = append(fast, row)
		case models.SourceIndex:
			content = append(content, row)
		default:
			fallback = append(fallback, row)
		}
	}

	out := make([]*models.RankedResult, 0, len(rows))
	out = append(out, r.OrderFastPath(fast)...)
	out = append(out, r.RankContent(content)...)
	out = append(out, r.RankFallback(query, fallback)...)
	return out
}

// RankContent scores index rows: w_r*normalize(s) + w_p*log(max(pop,1)), where
// normalize negates the native score and min-max scales it over the pool.
func (r *Ranker) RankContent(rows []*models.RawResult) []*models.RankedResult {
	results := make([]*models.RankedResult, 0, len(rows))
	if len(rows) == 0 {
		return results
	}

	scores := make([]float64, len(rows))
	for i, row := range rows {
		scores[i] = -row.NativeScore
	}
	lo, hi := utils.MinMax(scores)

	for i, row := range rows {
		norm := 1.0
		if hi > lo {
			norm = (scores[i] - lo) / (hi - lo)
		}
		combined := r.config.RelevanceWeight*norm*r.config.RelevanceScale +
			r.config.PopularityWeight*utils.LogPopularity(row.Popularity)
		results = append(results, &models.RankedResult{RawResult: row, CombinedScore: combined})
	}

	Sort(results)
	return results
}

// OrderFastPath orders identity matches by natural key: course number ascending, or
// department abbreviation. The combined score is the row's priority.
func (r *Ranker) OrderFastPath(rows []*models.RawResult) []*models.RankedResult {
	results := make([]*models.RankedResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, &models.RankedResult{RawResult: row, CombinedScore: row.Priority})
	}
	slices.SortStableFunc(results, func(a, b *models.RankedResult) int {
		return compareNaturalKey(a.RawResult, b.RawResult)
	})
	return results
}

// RankFallback scores substring matches with Boost and sorts them.
func (r *Ranker) RankFallback(query string, rows []*models.RawResult) []*models.RankedResult {
	results := make([]*models.RankedResult, 0, len(rows))
	for _, row := range rows {
		row.BoostScore = Boost(query, row)
		results = append(results, &models.RankedResult{RawResult: row, CombinedScore: row.BoostScore})
	}
	Sort(results)
	return results
}

// Boost computes the fallback score of row for query:
// 100*log(max(pop,1)), plus NameMatchBoost when the name contains the query or most of
// its significant words, plus CodeMatchBoost when the code contains the compacted query.
func Boost(query string, row *models.RawResult) float64 {
	score := popularityUnit * utils.LogPopularity(row.Popularity)

	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" {
		return score
	}
	name := strings.ToLower(row.Name())
	if strings.Contains(name, q) || MatchesMostWords(q, name) {
		score += NameMatchBoost
	}
	if code := strings.ToUpper(row.Code()); code != "" && strings.Contains(code, CompactUpper(q)) {
		score += CodeMatchBoost
	}
	return score
}

// Sort orders results by combined score descending, then popularity descending, then ID.
func Sort(results []*models.RankedResult) {
	slices.SortStableFunc(results, func(a, b *models.RankedResult) int {
		if c := cmp.Compare(b.CombinedScore, a.CombinedScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
}

// Trim returns at most n results.
func Trim(results []*models.RankedResult, n int) []*models.RankedResult {
	if n < 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

func compareNaturalKey(a, b *models.RawResult) int {
	if a.Course != nil && b.Course != nil {
		if c := compareIDs(a.Course.Number, b.Course.Number); c != 0 {
			return c
		}
		return cmp.Compare(a.Course.DeptAbbr, b.Course.DeptAbbr)
	}
	if a.Department != nil && b.Department != nil {
		return cmp.Compare(a.Department.Abbr, b.Department.Abbr)
	}
	return compareIDs(a.ID, b.ID)
}

// compareIDs compares numerically when both keys have a numeric prefix, else lexically.
// "1332" < "1332L" < "2110".
func compareIDs(a, b string) int {
	na, oka := leadingInt(a)
	nb, okb := leadingInt(b)
	if oka && okb {
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	}
	return cmp.Compare(a, b)
}

func leadingInt(s string) (int64, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	return n, err == nil
}
