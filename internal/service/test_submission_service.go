package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/grading"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	UnknownQuestionAnswer   = "알 수 없음"
	UnknownQuestionFeedback = "문제를 찾을 수 없습니다."
)

// TestSubmissionService grades whole tests and keeps the attempt history.
type TestSubmissionService interface {
	SubmitTest(ctx context.Context, req dto.SubmitTestRequestDTO) (*dto.SubmitTestResponseDTO, error)
	GetTestAttemptDetails(ctx context.Context, attemptID uint) (*dto.TestAttemptDetailDTO, error)
	GetUserAttempts(ctx context.Context, userID string, limit, offset int) ([]dto.TestAttemptSummaryDTO, error)
}

type testSubmissionService struct {
	questionRepo    repository.QuestionRepository
	userRepo        repository.UserRepository
	testAttemptRepo repository.TestAttemptRepository
	wrongAnswers    WrongAnswerService
	engine          *grading.Engine
	scoreConverter  ScoreConverterService
	opts            grading.Options
	concurrency     int
}

func NewTestSubmissionService(
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	testAttemptRepo repository.TestAttemptRepository,
	wrongAnswers WrongAnswerService,
	engine *grading.Engine,
	scoreConverter ScoreConverterService,
	cfg *config.Config,
) TestSubmissionService {
	return &testSubmissionService{
		questionRepo:    questionRepo,
		userRepo:        userRepo,
		testAttemptRepo: testAttemptRepo,
		wrongAnswers:    wrongAnswers,
		engine:          engine,
		scoreConverter:  scoreConverter,
		opts:            grading.Options{Semantic: cfg.Grading.SubmitSemanticEnabled, Weights: grading.SubmissionWeights},
		concurrency:     max(1, cfg.Grading.SubmitConcurrency),
	}
}

// gradedItem carries one graded answer back from its goroutine.
type gradedItem struct {
	question *model.Question
	verdict  grading.Verdict
}

func (s *testSubmissionService) SubmitTest(ctx context.Context, req dto.SubmitTestRequestDTO) (*dto.SubmitTestResponseDTO, error) {
	ctx, span := tracer.Start(ctx, "submission.SubmitTest")
	defer span.End()

	userID := ""
	if req.UserID != nil {
		userID = strings.TrimSpace(*req.UserID)
	}
	if userID != "" {
		if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
			return nil, notFoundOr(err, "사용자를 찾을 수 없습니다.", "사용자 정보를 불러오지 못했습니다.")
		}
	}

	// Items are graded in parallel; each goroutine owns one slot so order is kept.
	items := make([]gradedItem, len(req.Answers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, answer := range req.Answers {
		g.Go(func() error {
			q, err := s.questionRepo.FindByID(gctx, answer.QuestionID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn().Str("questionID", answer.QuestionID).Msg("SubmitTest: question not found, marking wrong")
				return nil
			}
			if err != nil {
				return apperr.Persistence("문제를 불러오지 못했습니다.", err)
			}
			items[i] = gradedItem{question: q, verdict: s.engine.Grade(gctx, answer.Answer, gradingQuestion(q), s.opts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("SubmitTest: grading failed")
		return nil, err
	}

	resp := &dto.SubmitTestResponseDTO{
		TotalQuestions: len(req.Answers),
		ResultDetails:  make([]dto.ResultDetailDTO, len(req.Answers)),
	}
	attempt := model.TestAttempt{UserID: userID, SubmittedAt: time.Now()}

	for i, answer := range req.Answers {
		item := items[i]
		detail := dto.ResultDetailDTO{
			QuestionID:    answer.QuestionID,
			UserAnswer:    answer.Answer,
			CorrectAnswer: UnknownQuestionAnswer,
			Feedback:      UnknownQuestionFeedback,
		}
		if item.question != nil {
			detail.IsCorrect = item.verdict.IsCorrect
			detail.CorrectAnswer = item.verdict.CorrectAnswer
			detail.Feedback = item.verdict.Feedback
			if detail.CorrectAnswer == "" {
				detail.CorrectAnswer = item.question.Answer
			}
		}
		detail.Points = s.scoreConverter.Points(detail.IsCorrect)
		if detail.IsCorrect {
			resp.CorrectCount++
		}
		resp.ResultDetails[i] = detail

		if userID != "" && item.question != nil && !item.verdict.IsCorrect {
			if err := s.wrongAnswers.RecordMiss(ctx, userID, item.question, answer.Answer); err != nil {
				return nil, err
			}
		}

		attempt.Answers = append(attempt.Answers, model.AttemptAnswer{
			Position:      i + 1,
			QuestionID:    detail.QuestionID,
			UserAnswer:    detail.UserAnswer,
			CorrectAnswer: detail.CorrectAnswer,
			IsCorrect:     detail.IsCorrect,
			Points:        detail.Points,
			Feedback:      detail.Feedback,
		})
	}

	resp.Score = s.scoreConverter.Total(resp.CorrectCount)
	resp.IsPassed = s.scoreConverter.Passed(resp.Score)
	span.SetAttributes(attribute.Int("submission.score", resp.Score), attribute.Bool("submission.passed", resp.IsPassed))

	if userID != "" {
		attempt.CorrectCount = resp.CorrectCount
		attempt.TotalQuestions = resp.TotalQuestions
		attempt.Score = resp.Score
		attempt.IsPassed = resp.IsPassed
		if err := s.testAttemptRepo.Create(ctx, &attempt); err != nil {
			log.Error().Err(err).Str("userID", userID).Msg("SubmitTest: failed to save test attempt")
			return nil, apperr.Persistence("시험 결과 저장에 실패했습니다.", err)
		}
		resp.AttemptID = &attempt.ID
	}

	log.Info().Str("userID", userID).Int("score", resp.Score).Bool("passed", resp.IsPassed).Msg("Test submitted")
	return resp, nil
}

func (s *testSubmissionService) GetTestAttemptDetails(ctx context.Context, attemptID uint) (*dto.TestAttemptDetailDTO, error) {
	attempt, err := s.testAttemptRepo.FindByIDWithAnswers(ctx, attemptID)
	if err != nil {
		return nil, notFoundOr(err, "시험 기록을 찾을 수 없습니다.", "시험 기록을 불러오지 못했습니다.")
	}
	var resp dto.TestAttemptDetailDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Error copying test attempt to DTO")
		return nil, err
	}
	if resp.Answers == nil {
		resp.Answers = []dto.ResultDetailDTO{}
	}
	return &resp, nil
}

func (s *testSubmissionService) GetUserAttempts(ctx context.Context, userID string, limit, offset int) ([]dto.TestAttemptSummaryDTO, error) {
	attempts, err := s.testAttemptRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Persistence("시험 기록을 불러오지 못했습니다.", err)
	}
	resp := []dto.TestAttemptSummaryDTO{}
	if err := copier.Copy(&resp, &attempts); err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error copying test attempts to DTO")
		return nil, err
	}
	return resp, nil
}
