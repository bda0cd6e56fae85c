package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jumptop/ITOP/internal/dbtest"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
)

func TestMarkStudiedOncePerDay(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{Username: "kim", Email: "kim@example.com"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if u.ID == "" {
		t.Fatal("user id not generated")
	}

	day1 := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	marked, err := repo.MarkStudied(ctx, u.ID, day1.Add(9*time.Hour), day1)
	if err != nil || !marked {
		t.Fatalf("first mark = %v, %v", marked, err)
	}
	marked, err = repo.MarkStudied(ctx, u.ID, day1.Add(20*time.Hour), day1)
	if err != nil || marked {
		t.Fatalf("second mark same day = %v, %v", marked, err)
	}

	day2 := day1.AddDate(0, 0, 1)
	marked, err = repo.MarkStudied(ctx, u.ID, day2.Add(time.Hour), day2)
	if err != nil || !marked {
		t.Fatalf("next day mark = %v, %v", marked, err)
	}
}

func TestExistsByUsernameOrEmail(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	sub := "sub-1"
	if err := repo.Create(ctx, &model.User{Username: "lee", Email: "lee@example.com", ExternalID: &sub}); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		username, email string
		want            bool
	}{
		{"lee", "other@example.com", true},
		{"other", "lee@example.com", true},
		{"other", "other@example.com", false},
	} {
		got, err := repo.ExistsByUsernameOrEmail(ctx, tc.username, tc.email)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("ExistsByUsernameOrEmail(%q, %q) = %v", tc.username, tc.email, got)
		}
	}

	u, err := repo.FindByExternalID(ctx, sub)
	if err != nil || u.Username != "lee" {
		t.Fatalf("FindByExternalID = %+v, %v", u, err)
	}
}
