package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/gradesearch/internal/models"
)

func sampleResponse() *models.SearchResponse {
	q := models.NewSearchQuery("cs1332", "")
	resp := models.NewSearchResponse(q)
	resp.Classification = "ExactCourse{dept:CS, number:1332}"
	resp.QueryTime = 7
	course := &models.Course{ID: 3, DeptAbbr: "CS", Number: "1332", Title: "Data Structures and Algorithms", Enrollment: 900}
	resp.Classes = []*models.RankedResult{{
		RawResult:     models.NewCourseResult(course, models.SourceFastPath),
		CombinedScore: 1e6,
		Summary:       models.GradeSummary{WeightedAverage: 3.34, ModalCategory: "A", ModalPercentage: 52.5},
	}}
	resp.Departments = []*models.RankedResult{{
		RawResult: models.NewDepartmentResult(&models.Department{Abbr: "CS", Name: "Computer Science"}, models.SourceFastPath),
	}}
	return resp
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSearchResults(&buf, sampleResponse(), OutputJSON))

	var decoded struct {
		Query   string           `json:"query"`
		Classes []map[string]any `json:"classes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded), buf.String())
	assert.Equal(t, "cs1332", decoded.Query)
	require.Len(t, decoded.Classes, 1)
	assert.Equal(t, "3", decoded.Classes[0]["id"])
	assert.Equal(t, "fast_path", decoded.Classes[0]["source"])
}

func TestWriteSearchResults_Text(t *testing.T) {
	resp := sampleResponse()
	resp.Failures = []models.Failure{{Kind: models.KindProfessor, Label: "content search (professors)", Error: "boom"}}

	var buf bytes.Buffer
	require.NoError(t, WriteSearchResults(&buf, resp, OutputText))
	out := buf.String()

	for _, want := range []string{
		`"cs1332" as ExactCourse{dept:CS, number:1332} in 7ms`,
		"Departments (1)",
		"Classes (1)",
		"Professors (0)",
		"CS1332  Data Structures and Algorithms",
		"avg 3.34  mode A (52.5%)",
		"content search (professors): boom",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "cached")
}

func TestWriteSearchResults_TextTruncatesLongNames(t *testing.T) {
	resp := sampleResponse()
	resp.Classes[0].Course.Title = strings.Repeat("x", 100)

	var buf bytes.Buffer
	require.NoError(t, WriteSearchResults(&buf, resp, OutputText))
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 60))
}

func TestWriteResult(t *testing.T) {
	resp := sampleResponse()

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, resp.Classes[0], OutputText))
	assert.Contains(t, buf.String(), "CS1332")

	buf.Reset()
	require.NoError(t, WriteResult(&buf, resp.Classes[0], OutputJSON))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchOutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
