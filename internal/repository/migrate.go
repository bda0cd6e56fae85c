package repository

import (
	"fmt"

	"github.com/jumptop/ITOP/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate creates the nine question tables plus the user-owned tables.
func AutoMigrate(db *gorm.DB) error {
	for _, cat := range model.Categories {
		if err := db.Table(cat.Table()).AutoMigrate(&model.Question{}); err != nil {
			return fmt.Errorf("migrate %s: %w", cat.Table(), err)
		}
	}
	return db.AutoMigrate(
		&model.User{},
		&model.WrongAnswer{},
		&model.TestAttempt{},
		&model.AttemptAnswer{},
	)
}
