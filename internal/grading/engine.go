// Package grading turns a free-text answer into a Verdict by running an ordered
// cascade of strategies; the first strategy that reaches a decision wins.
package grading

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	FeedbackCorrect       = "정답입니다!"
	FeedbackPartial       = "부분적으로 정답이지만, 좀 더 정확한 답변이 필요합니다."
	FeedbackIncorrect     = "틀렸습니다. 정답을 다시 확인해보세요."
	FeedbackMissingInput  = "답변 또는 문제 데이터가 없습니다."
	FeedbackAbbreviation  = "영문 약어로 작성해야 합니다."
	MissingAbbreviation   = "영문 약어 형식"
	ListOrderPoint        = "항목의 순서와 개수가 정답과 일치해야 합니다."
	PassThreshold         = 0.7
	PartialThreshold      = 0.5
	AbbreviationVetoScore = 0.1
	SemanticPassScore     = 70
)

type Strategy string

const (
	StrategyEmpty    Strategy = "empty"
	StrategyExact    Strategy = "exact"
	StrategyOption   Strategy = "option"
	StrategyFormat   Strategy = "format"
	StrategyList     Strategy = "list"
	StrategySemantic Strategy = "semantic"
	StrategyLexical  Strategy = "lexical"
)

// Question is the part of a stored question the engine needs.
type Question struct {
	Text    string
	Answer  string
	Example string
}

type Verdict struct {
	IsCorrect       bool
	Score           float64
	Feedback        string
	MissingPoints   []string
	IncorrectPoints []string
	CorrectAnswer   string
	Example         string
	Strategy        Strategy
}

// SemanticVerdict is the remote grader's answer; Score is on a 0-100 scale.
type SemanticVerdict struct {
	Score           float64
	IsCorrect       bool
	MissingPoints   []string
	IncorrectPoints []string
	Feedback        string
}

// SemanticGrader is a remote grading capability. Any error makes the engine fall
// back to lexical scoring.
type SemanticGrader interface {
	GradeAnswer(ctx context.Context, q Question, userAnswer string) (*SemanticVerdict, error)
}

type Options struct {
	Semantic bool
	Weights  Weights
}

type Engine struct {
	semantic SemanticGrader
	timeout  time.Duration
}

// NewEngine builds an engine. semantic may be nil, which disables step five.
func NewEngine(semantic SemanticGrader, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{semantic: semantic, timeout: timeout}
}

var tracer = otel.Tracer("github.com/jumptop/ITOP/internal/grading")

func (e *Engine) Grade(ctx context.Context, userAnswer string, q Question, opts Options) Verdict {
	ctx, span := tracer.Start(ctx, "grading.Grade")
	defer span.End()

	v := e.grade(ctx, userAnswer, q, opts)
	span.SetAttributes(
		attribute.String("grading.strategy", string(v.Strategy)),
		attribute.Bool("grading.correct", v.IsCorrect),
	)
	return v
}

func (e *Engine) grade(ctx context.Context, userAnswer string, q Question, opts Options) Verdict {
	answer := strings.TrimSpace(q.Answer)
	user := strings.TrimSpace(userAnswer)
	if user == "" || answer == "" {
		return Verdict{Score: 0, Feedback: FeedbackMissingInput, CorrectAnswer: answer, Example: q.Example, Strategy: StrategyEmpty}
	}

	correct := func(s Strategy) Verdict {
		return Verdict{IsCorrect: true, Score: 1, Feedback: FeedbackCorrect, CorrectAnswer: answer, Example: q.Example, Strategy: s}
	}

	if Fold(user) == Fold(answer) {
		return correct(StrategyExact)
	}

	if q.Example != "" && matchesOption(user, answer, q.Example) {
		return correct(StrategyOption)
	}

	if demandsAbbreviation(q.Text) && abbreviation.MatchString(answer) && !abbreviation.MatchString(user) {
		return Verdict{
			Score:         AbbreviationVetoScore,
			Feedback:      FeedbackAbbreviation,
			MissingPoints: []string{MissingAbbreviation},
			CorrectAnswer: answer,
			Example:       q.Example,
			Strategy:      StrategyFormat,
		}
	}

	// Any reply to a list answer is judged positionally and never falls through,
	// so reordered items cannot pass on word overlap.
	if isList(answer) {
		matched := listMatchRatio(user, answer)
		if matched == 1 {
			return correct(StrategyList)
		}
		feedback := FeedbackIncorrect
		if matched >= PartialThreshold {
			feedback = FeedbackPartial
		}
		return Verdict{
			Score:           matched,
			Feedback:        feedback,
			IncorrectPoints: []string{ListOrderPoint},
			CorrectAnswer:   answer,
			Example:         q.Example,
			Strategy:        StrategyList,
		}
	}

	if opts.Semantic && e.semantic != nil {
		if v, ok := e.semanticVerdict(ctx, user, Question{Text: q.Text, Answer: answer, Example: q.Example}); ok {
			return v
		}
	}

	weights := opts.Weights
	if weights == (Weights{}) {
		weights = EvaluateWeights
	}
	score := weights.Score(answer, user)
	return Verdict{
		IsCorrect:     score >= PassThreshold,
		Score:         score,
		Feedback:      tierFeedback(score),
		CorrectAnswer: answer,
		Example:       q.Example,
		Strategy:      StrategyLexical,
	}
}

func (e *Engine) semanticVerdict(ctx context.Context, user string, q Question) (Verdict, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	sv, err := e.semantic.GradeAnswer(ctx, q, user)
	if err != nil || sv == nil {
		log.Warn().Err(err).Msg("Semantic grading unavailable, falling back to lexical scoring")
		return Verdict{}, false
	}
	if math.IsNaN(sv.Score) {
		log.Warn().Msg("Semantic grading returned NaN score, falling back to lexical scoring")
		return Verdict{}, false
	}

	score := math.Min(math.Max(sv.Score, 0), 100) / 100
	isCorrect := sv.Score >= SemanticPassScore
	feedback := strings.TrimSpace(sv.Feedback)
	if feedback == "" {
		feedback = tierFeedback(score)
	}
	return Verdict{
		IsCorrect:       isCorrect,
		Score:           score,
		Feedback:        feedback,
		MissingPoints:   nonNil(sv.MissingPoints),
		IncorrectPoints: nonNil(sv.IncorrectPoints),
		CorrectAnswer:   q.Answer,
		Example:         q.Example,
		Strategy:        StrategySemantic,
	}, true
}

func tierFeedback(score float64) string {
	switch {
	case score >= PassThreshold:
		return FeedbackCorrect
	case score >= PartialThreshold:
		return FeedbackPartial
	default:
		return FeedbackIncorrect
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
