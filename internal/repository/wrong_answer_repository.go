package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jumptop/ITOP/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recordMissAttempts = 3

var ErrRecordMissExhausted = errors.New("record miss: retries exhausted")

type WrongAnswerRepository interface {
	RecordMiss(ctx context.Context, miss *model.WrongAnswer) (*model.WrongAnswer, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]model.WrongAnswer, error)
	KeywordFrequency(ctx context.Context, userID string) (map[string]int, error)
	CountForUser(ctx context.Context, userID string) (int64, error)
}

type wrongAnswerRepository struct {
	db *gorm.DB
}

func NewWrongAnswerRepository(db *gorm.DB) WrongAnswerRepository {
	return &wrongAnswerRepository{db: db}
}

// RecordMiss inserts the miss or, when the (user, question) row exists, bumps its
// attempt count and overwrites the submitted answer in the same statement.
// Transient failures are retried a bounded number of times.
func (r *wrongAnswerRepository) RecordMiss(ctx context.Context, miss *model.WrongAnswer) (*model.WrongAnswer, error) {
	if miss.RecordedAt.IsZero() {
		miss.RecordedAt = time.Now()
	}
	miss.AttemptCount = 1

	var lastErr error
	for attempt := 1; attempt <= recordMissAttempts; attempt++ {
		row := *miss
		row.ID = 0
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"attempt_count":    gorm.Expr("user_wrong_answers.attempt_count + 1"),
				"submitted_answer": row.SubmittedAnswer,
				"recorded_at":      row.RecordedAt,
			}),
		}).Create(&row).Error
		if err == nil {
			var stored model.WrongAnswer
			if err := r.db.WithContext(ctx).
				Where("user_id = ? AND question_id = ?", miss.UserID, miss.QuestionID).
				First(&stored).Error; err != nil {
				return nil, fmt.Errorf("reload wrong answer: %w", err)
			}
			return &stored, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Str("userID", miss.UserID).Str("questionID", miss.QuestionID).Msg("RecordMiss: upsert failed, retrying")
		time.Sleep(time.Duration(attempt) * 20 * time.Millisecond)
	}
	return nil, fmt.Errorf("%w: %v", ErrRecordMissExhausted, lastErr)
}

func (r *wrongAnswerRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]model.WrongAnswer, error) {
	var rows []model.WrongAnswer
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, err
}

// KeywordFrequency counts every keyword across the user's rows, once per row.
func (r *wrongAnswerRepository) KeywordFrequency(ctx context.Context, userID string) (map[string]int, error) {
	var keywordLists []string
	if err := r.db.WithContext(ctx).Model(&model.WrongAnswer{}).
		Where("user_id = ?", userID).
		Pluck("keywords", &keywordLists).Error; err != nil {
		return nil, err
	}
	freq := map[string]int{}
	for _, list := range keywordLists {
		for _, kw := range model.SplitKeywords(list) {
			freq[kw]++
		}
	}
	return freq, nil
}

func (r *wrongAnswerRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.WrongAnswer{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
