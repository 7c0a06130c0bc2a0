package ranking

import (
	"fmt"
	"testing"

	"github.com/hyperjump/gradesearch/internal/models"
)

func benchRows(src models.Source) []*models.RawResult {
	rows := make([]*models.RawResult, 30)
	for i := range rows {
		c := &models.Course{ID: int64(i), DeptAbbr: "CS", Number: fmt.Sprintf("%d", 1100+i*7), Title: "Topics in Data Structures", Enrollment: int64(50 + i*13)}
		rows[i] = models.NewCourseResult(c, src)
		rows[i].NativeScore = -float64(i) / 3
	}
	return rows
}

func BenchmarkRankContent(b *testing.B) {
	r := NewRanker(DefaultConfig())
	rows := benchRows(models.SourceIndex)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.RankContent(rows)
	}
}

func BenchmarkRankFallback(b *testing.B) {
	r := NewRanker(DefaultConfig())
	rows := benchRows(models.SourceFallback)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.RankFallback("data structures", rows)
	}
}

func BenchmarkDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Distance("dta strctures", "CS1332 Data Structures and Algorithms")
	}
}
