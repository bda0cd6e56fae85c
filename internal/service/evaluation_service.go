package service

import (
	"context"

	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/grading"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/rs/zerolog/log"
)

type EvaluationService interface {
	// Evaluate grades one answer. A non-empty userID records the miss when the
	// answer is wrong.
	Evaluate(ctx context.Context, req dto.EvaluateRequestDTO, userID string) (*dto.EvaluateResponseDTO, error)
}

type evaluationService struct {
	questionRepo repository.QuestionRepository
	engine       *grading.Engine
	wrongAnswers WrongAnswerService
	opts         grading.Options
}

func NewEvaluationService(
	questionRepo repository.QuestionRepository,
	engine *grading.Engine,
	wrongAnswers WrongAnswerService,
	cfg *config.Config,
) EvaluationService {
	return &evaluationService{
		questionRepo: questionRepo,
		engine:       engine,
		wrongAnswers: wrongAnswers,
		opts:         grading.Options{Semantic: cfg.Grading.SemanticEnabled, Weights: grading.EvaluateWeights},
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, req dto.EvaluateRequestDTO, userID string) (*dto.EvaluateResponseDTO, error) {
	q, err := s.questionRepo.FindByID(ctx, req.QuestionID)
	if err != nil {
		return nil, notFoundOr(err, "문제를 찾을 수 없습니다.", "문제를 불러오지 못했습니다.")
	}

	v := s.engine.Grade(ctx, req.Answer, gradingQuestion(q), s.opts)
	log.Info().Str("questionID", q.ID).Str("strategy", string(v.Strategy)).Bool("correct", v.IsCorrect).Msg("Answer evaluated")

	if userID != "" && !v.IsCorrect {
		if err := s.wrongAnswers.RecordMiss(ctx, userID, q, req.Answer); err != nil {
			return nil, err
		}
	}

	return &dto.EvaluateResponseDTO{
		IsCorrect:       v.IsCorrect,
		Score:           round2(v.Score),
		Feedback:        v.Feedback,
		MissingPoints:   nonNilStrings(v.MissingPoints),
		IncorrectPoints: nonNilStrings(v.IncorrectPoints),
		CorrectAnswer:   v.CorrectAnswer,
		Example:         q.Example,
	}, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// NewGradingEngine wires the semantic step only when the LLM is configured.
func NewGradingEngine(llm GeminiLLMService, cfg *config.Config) *grading.Engine {
	if llm == nil || !llm.Available() {
		return grading.NewEngine(nil, cfg.RemoteTTL)
	}
	return grading.NewEngine(llm, cfg.RemoteTTL)
}
