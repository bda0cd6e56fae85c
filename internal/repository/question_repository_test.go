package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jumptop/ITOP/internal/dbtest"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"gorm.io/gorm"
)

func TestFindByIDRoutesByPrefixAndScans(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewQuestionRepository(db)
	ctx := context.Background()

	dbtest.SeedQuestions(t, db, model.CategoryOS, 2, "")
	// An id without a category prefix is only found by scanning every table.
	odd := model.Question{ID: "legacy7", Question: "q", Answer: "a", Difficulty: 1}
	if err := db.Table(model.CategoryNetwork.Table()).Create(&odd).Error; err != nil {
		t.Fatal(err)
	}

	q, err := repo.FindByID(ctx, "os-2")
	if err != nil {
		t.Fatalf("FindByID(os-2): %v", err)
	}
	if q.Category != model.CategoryOS {
		t.Fatalf("category = %q, want os", q.Category)
	}

	q, err = repo.FindByID(ctx, "legacy7")
	if err != nil {
		t.Fatalf("FindByID(legacy7): %v", err)
	}
	if q.Category != model.CategoryNetwork {
		t.Fatalf("category = %q, want network", q.Category)
	}

	if _, err := repo.FindByID(ctx, "db-99"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing id error = %v, want ErrRecordNotFound", err)
	}
}

func TestFindByKeywordSubstringIsCaseInsensitive(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewQuestionRepository(db)
	ctx := context.Background()

	dbtest.SeedQuestions(t, db, model.CategoryDB, 2, "Normalization,SQL")
	dbtest.SeedQuestions(t, db, model.CategoryOS, 1, "deadlock")

	got, err := repo.FindByKeywordSubstring(ctx, model.CategoryDB, "normal")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	for _, q := range got {
		if q.Category != model.CategoryDB {
			t.Fatalf("row %s tagged %q", q.ID, q.Category)
		}
	}

	got, err = repo.FindByKeywordSubstring(ctx, model.CategoryDB, "100%")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("wildcard keyword matched %d rows", len(got))
	}
}

func TestListIDsFiltersAndExcludes(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewQuestionRepository(db)
	ctx := context.Background()
	dbtest.SeedQuestions(t, db, model.CategoryProgram, 6, "")

	ids, err := repo.ListIDs(ctx, model.CategoryProgram, nil, []string{"program-1", "program-2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 4 {
		t.Fatalf("got %v, want 4 ids", ids)
	}

	// Difficulty is 1 + i%3, so i = 3 and 6 have difficulty 1.
	one := 1
	ids, err = repo.ListIDs(ctx, model.CategoryProgram, &one, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "program-3" || ids[1] != "program-6" {
		t.Fatalf("difficulty 1 ids = %v", ids)
	}
}

func TestUpsertUpdateDelete(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewQuestionRepository(db)
	ctx := context.Background()

	q := &model.Question{ID: "app_test-1", Question: "q", Answer: "a", Difficulty: 1}
	if err := repo.Upsert(ctx, model.CategoryAppTest, q); err != nil {
		t.Fatal(err)
	}
	q2 := &model.Question{ID: "app_test-1", Question: "q2", Answer: "a2", Difficulty: 2, Keywords: "k"}
	if err := repo.Upsert(ctx, model.CategoryAppTest, q2); err != nil {
		t.Fatal(err)
	}
	got, err := repo.FindInCategory(ctx, model.CategoryAppTest, "app_test-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Question != "q2" || got.Keywords != "k" {
		t.Fatalf("upsert did not overwrite: %+v", got)
	}

	missing := &model.Question{ID: "app_test-9", Question: "q", Answer: "a"}
	if err := repo.Update(ctx, model.CategoryAppTest, missing); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Update missing = %v", err)
	}

	if err := repo.Create(ctx, model.CategoryAppTest, &model.Question{ID: "app_test-1", Question: "x", Answer: "y"}); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate Create = %v, want ErrDuplicatedKey", err)
	}

	if err := repo.Delete(ctx, model.CategoryAppTest, "app_test-1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, model.CategoryAppTest, "app_test-1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second Delete = %v", err)
	}
}

func TestFindWithoutKeywords(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewQuestionRepository(db)
	dbtest.SeedQuestions(t, db, model.CategoryHardSQL, 2, "")
	if err := db.Table(model.CategoryHardSQL.Table()).Where("id = ?", "hard_sql-1").Update("keywords", "join").Error; err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindWithoutKeywords(context.Background(), model.CategoryHardSQL)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "hard_sql-2" {
		t.Fatalf("got %+v", got)
	}
}
