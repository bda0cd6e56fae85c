package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/dbtest"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/model"
)

type stubKeywords struct {
	out   []string
	calls int
}

func (s *stubKeywords) Extract(ctx context.Context, text, hint string) []string {
	s.calls++
	return s.out
}

func TestListQuestionsByCategoryRespectsOffsetAndLimit(t *testing.T) {
	f := newFixture(t)
	dbtest.SeedQuestions(t, f.db, model.CategoryDB, 10, "")
	svc := NewQuestionService(f.questions, &stubKeywords{}, FixedRandSource(1))
	ctx := context.Background()

	got, err := svc.ListQuestions(ctx, dto.QuestionListQuery{Category: "db", Limit: 4, Offset: 8})
	if err != nil {
		t.Fatal(err)
	}
	// Ids sort as strings: db-1, db-10, db-2 ... db-9, so offset 8 leaves db-8 and db-9.
	if len(got) != 2 {
		t.Fatalf("got %d questions, want 2", len(got))
	}
	for _, q := range got {
		if q.Category != "db" {
			t.Fatalf("category = %q", q.Category)
		}
	}

	got, err = svc.ListQuestions(ctx, dto.QuestionListQuery{Category: "db", Limit: 4, Offset: 50})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("past the end: %v", got)
	}
}

func TestListQuestionsAcrossCategories(t *testing.T) {
	f := newFixture(t)
	f.seedAll(t, 3)
	svc := NewQuestionService(f.questions, &stubKeywords{}, FixedRandSource(2))

	got, err := svc.ListQuestions(context.Background(), dto.QuestionListQuery{Limit: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 20 {
		t.Fatalf("got %d, want 20", len(got))
	}
	counts := map[string]int{}
	seen := map[string]bool{}
	for _, q := range got {
		if seen[q.ID] {
			t.Fatalf("duplicate %s", q.ID)
		}
		seen[q.ID] = true
		counts[q.Category]++
	}
	if len(counts) != len(model.Categories) {
		t.Fatalf("categories covered = %v", counts)
	}
}

func TestRandomQuestion(t *testing.T) {
	f := newFixture(t)
	dbtest.SeedQuestions(t, f.db, model.CategoryAlgorithm, 3, "")
	svc := NewQuestionService(f.questions, &stubKeywords{}, FixedRandSource(3))
	ctx := context.Background()

	q, err := svc.RandomQuestion(ctx, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if q.Category != "algorithm" {
		t.Fatalf("category = %q", q.Category)
	}

	if _, err := svc.RandomQuestion(ctx, "chemistry", nil); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown category: %v", err)
	}
	if _, err := svc.RandomQuestion(ctx, "os", nil); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("empty category: %v", err)
	}
	five := 5
	if _, err := svc.RandomQuestion(ctx, "algorithm", &five); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("no matching difficulty: %v", err)
	}
}

func TestCreateQuestionDerivesKeywords(t *testing.T) {
	f := newFixture(t)
	kw := &stubKeywords{out: []string{"교착상태", "상호배제"}}
	svc := NewQuestionService(f.questions, kw, FixedRandSource(1))
	ctx := context.Background()

	created, err := svc.CreateQuestion(ctx, "os", dto.QuestionCreateDTO{ID: "os-100", Question: "교착상태 조건은?", Answer: "상호배제"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Keywords != "교착상태,상호배제" || created.Category != "os" || created.Difficulty != 1 {
		t.Fatalf("created = %+v", created)
	}

	_, err = svc.CreateQuestion(ctx, "os", dto.QuestionCreateDTO{ID: "os-100", Question: "q", Answer: "a"})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("duplicate: %v", err)
	}
	_, err = svc.CreateQuestion(ctx, "os", dto.QuestionCreateDTO{ID: "db-1", Question: "q", Answer: "a"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("prefix mismatch: %v", err)
	}
}

func TestKeywordsAreClippedToColumnWidth(t *testing.T) {
	f := newFixture(t)
	long := make([]string, 40)
	for i := range long {
		long[i] = strings.Repeat("가", 5)
	}
	svc := NewQuestionService(f.questions, &stubKeywords{out: long}, FixedRandSource(1)).(*questionService)

	got := svc.deriveKeywords(context.Background(), &model.Question{Question: "q", Answer: "a"})
	if len(got) > 255 {
		t.Fatalf("keywords are %d bytes", len(got))
	}
	if strings.HasSuffix(got, ",") {
		t.Fatalf("dangling separator: %q", got)
	}
}

func TestUpdateAndDeleteMissingQuestion(t *testing.T) {
	f := newFixture(t)
	svc := NewQuestionService(f.questions, &stubKeywords{}, FixedRandSource(1))
	ctx := context.Background()

	_, err := svc.UpdateQuestion(ctx, "os", "os-1", dto.QuestionUpdateDTO{Question: "q", Answer: "a"})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("update: %v", err)
	}
	if err := svc.DeleteQuestion(ctx, "os", "os-1"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("delete: %v", err)
	}
	if err := svc.DeleteQuestion(ctx, "biology", "x"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("bad category: %v", err)
	}
}

func TestImportAndRefreshKeywords(t *testing.T) {
	f := newFixture(t)
	kw := &stubKeywords{out: []string{"스케줄링"}}
	svc := NewQuestionService(f.questions, kw, FixedRandSource(1))
	ctx := context.Background()

	if err := svc.ImportQuestion(ctx, model.CategoryOS, &model.Question{ID: "os-1", Question: "q", Answer: "a", Keywords: "preset"}); err != nil {
		t.Fatal(err)
	}
	if kw.calls != 0 {
		t.Fatalf("preset keywords were re-derived")
	}
	dbtest.SeedQuestions(t, f.db, model.CategoryDB, 2, "")

	n, err := svc.RefreshMissingKeywords(ctx, model.CategoryDB)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("refreshed %d, want 2", n)
	}
	q, err := f.questions.FindByID(ctx, "db-1")
	if err != nil {
		t.Fatal(err)
	}
	if q.Keywords != "스케줄링" {
		t.Fatalf("keywords = %q", q.Keywords)
	}
}
