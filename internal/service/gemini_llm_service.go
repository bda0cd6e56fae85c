package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/grading"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

const maxFilteredKeywords = 3

var ErrGeminiUnavailable = errors.New("gemini client not initialized")

// GeminiLLMService grades free-text answers and filters keyword candidates.
type GeminiLLMService interface {
	grading.SemanticGrader
	KeywordFilter
	Available() bool
}

type geminiLLMService struct {
	model *genai.GenerativeModel
	cfg   *config.Config
}

func NewGeminiLLMService(lc fx.Lifecycle, cfg *config.Config) (GeminiLLMService, error) {
	if cfg.Gemini.ApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional.")
		return &geminiLLMService{cfg: cfg}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.ApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	model := client.GenerativeModel(cfg.Gemini.Model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	return &geminiLLMService{model: model, cfg: cfg}, nil
}

func (s *geminiLLMService) Available() bool { return s.model != nil }

type gradeResponse struct {
	Score           *float64 `json:"score"`
	IsCorrect       bool     `json:"is_correct"`
	MissingPoints   []string `json:"missing_points"`
	IncorrectPoints []string `json:"incorrect_points"`
	Feedback        string   `json:"feedback"`
}

func (s *geminiLLMService) GradeAnswer(ctx context.Context, q grading.Question, userAnswer string) (*grading.SemanticVerdict, error) {
	if s.model == nil {
		return nil, ErrGeminiUnavailable
	}

	var b strings.Builder
	b.WriteString("당신은 정보처리기능사 실기 시험 채점관입니다.\n")
	b.WriteString("아래 문제와 모범 답안을 기준으로 수험자의 답안을 채점하세요.\n")
	b.WriteString("표현이 달라도 의미가 같으면 정답으로 인정하되, 핵심 개념이 빠지거나 틀리면 감점합니다.\n\n")
	fmt.Fprintf(&b, "문제:\n%s\n\n", q.Text)
	if q.Example != "" {
		fmt.Fprintf(&b, "보기:\n%s\n\n", q.Example)
	}
	fmt.Fprintf(&b, "모범 답안:\n%s\n\n", q.Answer)
	fmt.Fprintf(&b, "수험자 답안:\n%s\n\n", userAnswer)
	b.WriteString(`다음 JSON 형식으로만 응답하세요:
{"score": 0-100 사이의 숫자, "is_correct": 70점 이상이면 true, "missing_points": [누락된 핵심 요소], "incorrect_points": [잘못된 내용], "feedback": "한두 문장의 피드백"}`)

	raw, err := s.generate(ctx, b.String())
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during grading")
		return nil, err
	}

	var parsed gradeResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse grading response: %w", err)
	}
	if parsed.Score == nil {
		return nil, fmt.Errorf("grading response has no score: %s", raw)
	}
	return &grading.SemanticVerdict{
		Score:           *parsed.Score,
		IsCorrect:       parsed.IsCorrect,
		MissingPoints:   parsed.MissingPoints,
		IncorrectPoints: parsed.IncorrectPoints,
		Feedback:        parsed.Feedback,
	}, nil
}

type filterResponse struct {
	Keywords []string `json:"keywords"`
}

func (s *geminiLLMService) FilterKeywords(ctx context.Context, text string, candidates []string) ([]string, error) {
	if s.model == nil {
		return nil, ErrGeminiUnavailable
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(`다음은 정보처리기능사 시험 문제와 그 문제에서 추출한 핵심어 후보입니다.
문제의 주제를 가장 잘 나타내는 핵심어를 최대 %d개만 후보 중에서 고르세요.

문제:
%s

후보: %s

다음 JSON 형식으로만 응답하세요: {"keywords": ["핵심어", ...]}`, maxFilteredKeywords, text, strings.Join(candidates, ", "))

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var parsed filterResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse keyword filter response: %w", err)
	}
	kws := parsed.Keywords
	if len(kws) > maxFilteredKeywords {
		kws = kws[:maxFilteredKeywords]
	}
	return kws, nil
}

func (s *geminiLLMService) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no content")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return stripCodeFence(b.String()), nil
}

// stripCodeFence removes a surrounding ```json fence the model sometimes adds.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
