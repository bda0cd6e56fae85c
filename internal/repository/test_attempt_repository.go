package repository

import (
	"context"

	"github.com/jumptop/ITOP/internal/model"
	"gorm.io/gorm"
)

type TestAttemptRepository interface {
	Create(ctx context.Context, attempt *model.TestAttempt) error
	FindByIDWithAnswers(ctx context.Context, id uint) (*model.TestAttempt, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.TestAttempt, error)
}

type testAttemptRepository struct {
	db *gorm.DB
}

func NewTestAttemptRepository(db *gorm.DB) TestAttemptRepository {
	return &testAttemptRepository{db: db}
}

// Create stores the attempt together with its answers in one transaction.
func (r *testAttemptRepository) Create(ctx context.Context, attempt *model.TestAttempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(attempt).Error
	})
}

func (r *testAttemptRepository) FindByIDWithAnswers(ctx context.Context, id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *testAttemptRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&attempts).Error
	return attempts, err
}
