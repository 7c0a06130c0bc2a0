package keyword

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/internal/query"
)

func newTestBleveIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewMemBleveIndex()
	if err != nil {
		t.Fatalf("NewMemBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	docs := []Document{
		CourseDocument(&models.Course{ID: 1, DeptAbbr: "CS", Number: "1332", Title: "Data Structures and Algorithms"}),
		CourseDocument(&models.Course{ID: 2, DeptAbbr: "CS", Number: "1331", Title: "Introduction to Object Oriented Programming"}),
		CourseDocument(&models.Course{ID: 3, DeptAbbr: "MATH", Number: "1552", Title: "Integral Calculus"}),
		DepartmentDocument(&models.Department{Abbr: "CS", Name: "Computer Science"}),
		DepartmentDocument(&models.Department{Abbr: "MATH", Name: "Mathematics"}),
		ProfessorDocument(&models.Professor{ID: 10, Name: "Mary Hudachek-Buswell"}, []string{"CS"}),
		ProfessorDocument(&models.Professor{ID: 11, Name: "Sal Barone"}, []string{"MATH"}),
	}
	if err := idx.Index(context.Background(), docs); err != nil {
		t.Fatalf("Index: %v", err)
	}
	return idx
}

func hitIDs(hits []Hit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

func TestBleveIndex_ExactCourse(t *testing.T) {
	idx := newTestBleveIndex(t)
	b := query.NewBuilder(query.BleveDialect{}, 0)
	ctx := context.Background()

	for _, q := range []string{"CS1332", "cs 1332"} {
		bq := b.Build(query.Classify(q))
		hits, err := idx.Search(ctx, models.KindCourse, bq.Match, "", 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(hits) != 1 || hits[0].ID != "1" {
			t.Errorf("Search(%q) = %v, want [1]", q, hitIDs(hits))
		}
	}
}

func TestBleveIndex_PartialAndDeptPrefix(t *testing.T) {
	idx := newTestBleveIndex(t)
	b := query.NewBuilder(query.BleveDialect{}, 0)
	ctx := context.Background()

	hits, err := idx.Search(ctx, models.KindCourse, b.Build(query.Classify("CS13")).Match, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("partial CS13 = %v, want two courses", hitIDs(hits))
	}

	hits, err = idx.Search(ctx, models.KindDepartment, b.Build(query.Classify("CS")).Match, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "CS" {
		t.Errorf("dept prefix CS = %v, want [CS]", hitIDs(hits))
	}
}

func TestBleveIndex_ScoresAreLowerIsBetter(t *testing.T) {
	idx := newTestBleveIndex(t)
	hits, err := idx.Search(context.Background(), models.KindCourse, "data structures", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 || hits[0].ID != "1" {
		t.Fatalf("hits = %v", hitIDs(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score < hits[i-1].Score {
			t.Errorf("scores not ascending: %v", hits)
		}
	}
	if hits[0].Score >= 0 {
		t.Errorf("expected negated score, got %v", hits[0].Score)
	}
}

func TestBleveIndex_Scope(t *testing.T) {
	idx := newTestBleveIndex(t)
	ctx := context.Background()

	hits, err := idx.Search(ctx, models.KindProfessor, "barone", "MATH", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "11" {
		t.Errorf("scoped professor search = %v", hitIDs(hits))
	}
	hits, err = idx.Search(ctx, models.KindProfessor, "barone", "CS", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no professors outside scope, got %v", hitIDs(hits))
	}
}

func TestBleveIndex_KindIsolation(t *testing.T) {
	idx := newTestBleveIndex(t)
	hits, err := idx.Search(context.Background(), models.KindProfessor, "calculus", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("course title matched professor search: %v", hitIDs(hits))
	}
}

func TestBleveIndex_SyntaxError(t *testing.T) {
	idx := newTestBleveIndex(t)
	_, err := idx.Search(context.Background(), models.KindCourse, `title:>`, "", 10)
	if !errors.Is(err, ErrQuerySyntax) {
		t.Fatalf("expected ErrQuerySyntax, got %v", err)
	}
	if !IsRecoverable(err) {
		t.Error("syntax errors should be recoverable")
	}
}

func TestBleveIndex_ClosedIsUnavailable(t *testing.T) {
	idx, err := NewMemBleveIndex()
	if err != nil {
		t.Fatal(err)
	}
	_ = idx.Close()
	_, err = idx.Search(context.Background(), models.KindCourse, "data", "", 10)
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestNewBleveIndex_reopensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	doc := DepartmentDocument(&models.Department{Abbr: "CS", Name: "Computer Science"})
	if err := idx.Index(context.Background(), []Document{doc}); err != nil {
		t.Fatal(err)
	}
	_ = idx.Close()

	idx, err = NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	n, err := idx.DocCount()
	if err != nil || n != 1 {
		t.Errorf("DocCount() = %d, %v", n, err)
	}
}
