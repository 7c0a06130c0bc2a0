// Package cli provides output helpers for the gradesearch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

const nameWidth = 48

// ParseOutputFormat accepts "text", "json", or "" (text).
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	cached := ""
	if response.Cached {
		cached = ", cached"
	}
	fmt.Fprintf(w, "\n%q as %s in %dms%s\n", response.Query, response.Classification, response.QueryTime, cached)
	if response.Scope != "" {
		fmt.Fprintf(w, "Scope: %s\n", response.Scope)
	}
	writeSection(w, "Departments", response.Departments)
	writeSection(w, "Classes", response.Classes)
	writeSection(w, "Professors", response.Professors)
	if len(response.Failures) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, f := range response.Failures {
			fmt.Fprintf(w, "  %s: %s\n", f.Label, f.Error)
		}
	}
	fmt.Fprintln(w)
}

func writeSection(w io.Writer, title string, results []*models.RankedResult) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(results))
	for i, r := range results {
		writeOneResult(w, i+1, r)
	}
}

func writeOneResult(w io.Writer, rank int, r *models.RankedResult) {
	label := r.Name()
	if code := r.Code(); code != "" {
		label = code + "  " + label
	}
	fmt.Fprintf(w, "  %2d. %-*s  score %10.2f", rank, nameWidth, utils.Truncate(label, nameWidth-3), r.CombinedScore)
	if r.Summary.ModalCategory != "" {
		fmt.Fprintf(w, "  avg %.2f  mode %s (%.1f%%)", r.Summary.WeightedAverage, r.Summary.ModalCategory, r.Summary.ModalPercentage)
	}
	fmt.Fprintln(w)
}

// WriteResult writes one described entity to w in the given format.
func WriteResult(w io.Writer, result *models.RankedResult, format SearchOutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	writeOneResult(w, 1, result)
	return nil
}
