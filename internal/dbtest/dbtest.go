// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated in-memory database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedQuestions inserts n questions per category with ids "<category>-<i>" and the
// given keywords.
func SeedQuestions(t testing.TB, db *gorm.DB, cat model.Category, n int, keywords string) []model.Question {
	t.Helper()
	qs := make([]model.Question, 0, n)
	for i := 1; i <= n; i++ {
		q := model.Question{
			ID:         fmt.Sprintf("%s-%d", cat, i),
			Question:   fmt.Sprintf("%s question %d", cat, i),
			Answer:     fmt.Sprintf("answer %d", i),
			Difficulty: 1 + i%3,
			Keywords:   keywords,
		}
		if err := db.Table(cat.Table()).Create(&q).Error; err != nil {
			t.Fatalf("seed %s: %v", q.ID, err)
		}
		q.Category = cat
		qs = append(qs, q)
	}
	return qs
}
