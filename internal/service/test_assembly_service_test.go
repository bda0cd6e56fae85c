package service

import (
	"context"
	"testing"

	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/dbtest"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/model"
)

func TestAssembleHonorsQuotas(t *testing.T) {
	f := newFixture(t)
	f.seedAll(t, 5)

	qs, err := f.assembly(1).Assemble(context.Background(), []CategoryQuota{
		{model.CategoryOS, 3},
		{model.CategoryDB, 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 6 {
		t.Fatalf("got %d questions, want 6", len(qs))
	}
	assertUnique(t, qs)
	counts := countByCategory(qs)
	if counts[model.CategoryOS] != 3 || counts[model.CategoryDB] != 3 || len(counts) != 2 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestAssembleShortCategoryReturnsEverything(t *testing.T) {
	f := newFixture(t)
	dbtest.SeedQuestions(t, f.db, model.CategoryOS, 2, "")

	qs, err := f.assembly(1).Assemble(context.Background(), []CategoryQuota{{model.CategoryOS, 5}, {model.CategoryDB, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want the 2 available", len(qs))
	}
}

func TestStandardTestLayout(t *testing.T) {
	f := newFixture(t)
	f.seedAll(t, 10)

	test, err := f.assembly(7).StandardTest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if test.TotalQuestions != 20 || len(test.Questions) != 20 {
		t.Fatalf("total = %d, len = %d", test.TotalQuestions, len(test.Questions))
	}
	counts := map[string]int{}
	for _, q := range test.Questions {
		counts[q.Category]++
	}
	want := map[string]int{"os": 3, "network": 3, "db": 3, "base_sql": 2, "hard_sql": 2, "program": 6, "app_defect": 1}
	for cat, n := range want {
		if counts[cat] != n {
			t.Errorf("%s: got %d, want %d", cat, counts[cat], n)
		}
	}
	if counts["algorithm"] != 0 || counts["app_test"] != 0 {
		t.Errorf("unexpected categories: %v", counts)
	}
}

func TestCustomTestRejectsNegativeCounts(t *testing.T) {
	f := newFixture(t)
	neg := -1
	cfg := DefaultCustomTestConfig().ApplyOverrides(dto.CustomTestRequestDTO{OSCount: &neg})
	_, err := f.assembly(1).CustomTest(context.Background(), cfg)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestAssembleIsDeterministicForAFixedSeed(t *testing.T) {
	f := newFixture(t)
	f.seedAll(t, 8)

	a, err := f.assembly(42).StandardTest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.assembly(42).StandardTest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Questions {
		if a.Questions[i].ID != b.Questions[i].ID {
			t.Fatalf("position %d differs: %s vs %s", i, a.Questions[i].ID, b.Questions[i].ID)
		}
	}
}

func TestPersonalizedWithoutHistoryFillsRandomly(t *testing.T) {
	f := newFixture(t)
	f.seedAll(t, 5)
	u := f.createUser(t, "park", "sub-park")

	for _, ratio := range []float64{0, 0.5, 1} {
		qs, err := f.assembly(3).Personalized(context.Background(), u.ID, ratio, 20)
		if err != nil {
			t.Fatal(err)
		}
		if len(qs) != 20 {
			t.Fatalf("ratio %v: got %d questions", ratio, len(qs))
		}
		assertUnique(t, qs)
		counts := countByCategory(qs)
		// 20 over 9 categories: the first two get 3, the rest 2.
		if counts[model.CategoryOS] != 3 || counts[model.CategoryDB] != 3 || counts[model.CategoryHardSQL] != 2 {
			t.Fatalf("ratio %v: counts = %v", ratio, counts)
		}
	}
}

func TestPersonalizedPrefersMissedKeywords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedAll(t, 4)
	for _, id := range []string{"os-1", "os-2", "os-3"} {
		if err := f.db.Table(model.CategoryOS.Table()).Where("id = ?", id).Update("keywords", "교착상태,프로세스").Error; err != nil {
			t.Fatal(err)
		}
	}
	u := f.createUser(t, "choi", "sub-choi")
	missed, err := f.questions.FindByID(ctx, "os-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.wrongAnswers.RecordMiss(ctx, u.ID, missed, "모름"); err != nil {
		t.Fatal(err)
	}

	qs, err := f.assembly(5).Personalized(ctx, u.ID, 1, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 6 {
		t.Fatalf("got %d questions", len(qs))
	}
	assertUnique(t, qs)
	ids := map[string]bool{}
	for _, q := range qs {
		ids[q.ID] = true
	}
	for _, id := range []string{"os-1", "os-2", "os-3"} {
		if !ids[id] {
			t.Errorf("keyword match %s missing from %v", id, ids)
		}
	}
}

func TestPersonalizedValidation(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "jung", "sub-jung")
	svc := f.assembly(1)
	ctx := context.Background()

	if _, err := svc.Personalized(ctx, "nobody", 0.5, 10); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown user: %v", err)
	}
	if _, err := svc.Personalized(ctx, u.ID, 1.5, 10); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("ratio 1.5: %v", err)
	}
	if _, err := svc.Personalized(ctx, u.ID, 0.5, 0); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("total 0: %v", err)
	}
}

func TestEvenSplit(t *testing.T) {
	got := evenSplit(20, 9)
	want := []int{3, 3, 2, 2, 2, 2, 2, 2, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("evenSplit(20, 9) = %v", got)
		}
	}
}

func TestRankKeywordsBreaksTiesByTerm(t *testing.T) {
	ranked := rankKeywords(map[string]int{"b": 1, "a": 1, "c": 2})
	if ranked[0].term != "c" || ranked[1].term != "a" || ranked[2].term != "b" {
		t.Fatalf("ranked = %+v", ranked)
	}
	if ranked[0].weight != 0.5 {
		t.Fatalf("weight = %v", ranked[0].weight)
	}
}
