package service

import (
	"context"
	"testing"
	"time"

	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/dbtest"
	"github.com/jumptop/ITOP/internal/grading"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"gorm.io/gorm"
)

type fixture struct {
	db           *gorm.DB
	cfg          *config.Config
	questions    repository.QuestionRepository
	users        repository.UserRepository
	attempts     repository.TestAttemptRepository
	wrongRepo    repository.WrongAnswerRepository
	wrongAnswers WrongAnswerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{
		db: db,
		cfg: &config.Config{
			Location:  time.UTC,
			RemoteTTL: time.Second,
			Grading:   config.Grading{SubmitConcurrency: 4},
			Assembly:  config.Assembly{KeywordSearchMultiplier: 2},
		},
		questions: repository.NewQuestionRepository(db),
		users:     repository.NewUserRepository(db),
		attempts:  repository.NewTestAttemptRepository(db),
		wrongRepo: repository.NewWrongAnswerRepository(db),
	}
	f.wrongAnswers = NewWrongAnswerService(f.wrongRepo, f.questions)
	return f
}

func (f *fixture) assembly(seed uint64) TestAssemblyService {
	return NewTestAssemblyService(f.questions, f.users, f.wrongAnswers, FixedRandSource(seed), f.cfg)
}

func (f *fixture) engine() *grading.Engine {
	return grading.NewEngine(nil, time.Second)
}

func (f *fixture) createUser(t *testing.T, username, subject string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", ExternalID: &subject}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) seedAll(t *testing.T, perCategory int) {
	t.Helper()
	for _, cat := range model.Categories {
		dbtest.SeedQuestions(t, f.db, cat, perCategory, "")
	}
}

func countByCategory(qs []model.Question) map[model.Category]int {
	out := map[model.Category]int{}
	for _, q := range qs {
		out[q.Category]++
	}
	return out
}

func assertUnique(t *testing.T, qs []model.Question) {
	t.Helper()
	seen := map[string]bool{}
	for _, q := range qs {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s", q.ID)
		}
		seen[q.ID] = true
	}
}
