package service

import (
	"context"
	"errors"
	"time"

	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// WrongAnswerService is the only writer of the per-user miss history.
type WrongAnswerService interface {
	RecordMiss(ctx context.Context, userID string, q *model.Question, submitted string) error
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]dto.WrongAnswerResponseDTO, error)
	KeywordFrequency(ctx context.Context, userID string) (map[string]int, error)
}

type wrongAnswerService struct {
	repo         repository.WrongAnswerRepository
	questionRepo repository.QuestionRepository
	now          func() time.Time
}

func NewWrongAnswerService(repo repository.WrongAnswerRepository, questionRepo repository.QuestionRepository) WrongAnswerService {
	return &wrongAnswerService{repo: repo, questionRepo: questionRepo, now: time.Now}
}

func (s *wrongAnswerService) RecordMiss(ctx context.Context, userID string, q *model.Question, submitted string) error {
	row, err := s.repo.RecordMiss(ctx, &model.WrongAnswer{
		UserID:          userID,
		QuestionID:      q.ID,
		Category:        q.Category,
		SubmittedAnswer: submitted,
		Keywords:        q.Keywords,
		RecordedAt:      s.now(),
	})
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Str("questionID", q.ID).Msg("RecordMiss: failed to persist wrong answer")
		return apperr.Persistence("오답 기록 저장에 실패했습니다.", err)
	}
	log.Debug().Str("userID", userID).Str("questionID", q.ID).Int("attemptCount", row.AttemptCount).Msg("Wrong answer recorded")
	return nil
}

// ListForUser joins each miss with the current question text. Misses whose question
// has since been deleted are skipped.
func (s *wrongAnswerService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]dto.WrongAnswerResponseDTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Persistence("오답 목록을 불러오지 못했습니다.", err)
	}

	out := make([]dto.WrongAnswerResponseDTO, 0, len(rows))
	for _, row := range rows {
		var q *model.Question
		if row.Category.Valid() {
			q, err = s.questionRepo.FindInCategory(ctx, row.Category, row.QuestionID)
		} else {
			q, err = s.questionRepo.FindByID(ctx, row.QuestionID)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("questionID", row.QuestionID).Msg("ListForUser: question of wrong answer no longer exists, skipping")
			continue
		}
		if err != nil {
			return nil, apperr.Persistence("오답 목록을 불러오지 못했습니다.", err)
		}
		out = append(out, dto.WrongAnswerResponseDTO{
			ID:               row.ID,
			QuestionID:       row.QuestionID,
			QuestionText:     q.Question,
			UserAnswer:       row.SubmittedAnswer,
			CorrectAnswer:    q.Answer,
			QuestionCategory: row.Category.String(),
			Keywords:         row.Keywords,
			AttemptCount:     row.AttemptCount,
			CreatedAt:        row.RecordedAt,
		})
	}
	return out, nil
}

func (s *wrongAnswerService) KeywordFrequency(ctx context.Context, userID string) (map[string]int, error) {
	freq, err := s.repo.KeywordFrequency(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("오답 이력을 불러오지 못했습니다.", err)
	}
	return freq, nil
}
