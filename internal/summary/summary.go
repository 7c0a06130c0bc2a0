// Package summary aggregates per-term grade counts into the figures shown next to
// every search result.
package summary

import (
	"slices"
	"strconv"

	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/pkg/utils"
)

// Aggregator reduces a list of grade count maps to one summary.
type Aggregator interface {
	Aggregate(counts []models.GradeCounts) models.GradeSummary
}

// GradePoints maps letter grades to quality points. Other categories (W, S, U, ...)
// count toward the distribution but not the average.
var GradePoints = map[string]float64{
	"A": 4,
	"B": 3,
	"C": 2,
	"D": 1,
	"F": 0,
}

// GPA computes the weighted grade point average and the modal category.
type GPA struct{}

var _ Aggregator = GPA{}

// Aggregate sums counts per category across terms. The average covers graded categories
// only and is rounded to 2 decimals; the modal category is the largest over all
// categories with its share of all students rounded to 1 decimal. Ties go to the
// alphabetically first category.
func (GPA) Aggregate(counts []models.GradeCounts) models.GradeSummary {
	totals := make(map[string]float64)
	for _, c := range counts {
		for cat, n := range c {
			totals[cat] += n
		}
	}

	var points, graded, all float64
	for cat, n := range totals {
		all += n
		if p, ok := GradePoints[cat]; ok {
			points += p * n
			graded += n
		}
	}
	if all == 0 {
		return models.GradeSummary{}
	}

	cats := make([]string, 0, len(totals))
	for cat := range totals {
		cats = append(cats, cat)
	}
	slices.Sort(cats)
	modal := ""
	for _, cat := range cats {
		if modal == "" || totals[cat] > totals[modal] {
			modal = cat
		}
	}

	var avg float64
	if graded > 0 {
		avg = utils.Round(points/graded, 2)
	}
	return models.GradeSummary{
		WeightedAverage: avg,
		ModalCategory:   modal,
		ModalPercentage: utils.Round(totals[modal]/all*100, 1),
	}
}

// InvalidTerm is returned by TermName for codes outside the YYYY02/05/08 scheme.
const InvalidTerm = "Invalid Term"

// TermName renders a YYYYMM term code, e.g. 202408 -> "Fall 2024".
func TermName(code int) string {
	year, month := code/100, code%100
	if year < 1000 || year > 9999 {
		return InvalidTerm
	}
	var season string
	switch month {
	case 2:
		season = "Spring"
	case 5:
		season = "Summer"
	case 8:
		season = "Fall"
	default:
		return InvalidTerm
	}
	return season + " " + strconv.Itoa(year)
}
