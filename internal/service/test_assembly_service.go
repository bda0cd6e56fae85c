package service

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// CategoryQuota asks for Count questions from one category.
type CategoryQuota struct {
	Category model.Category
	Count    int
}

// CustomTestConfig is the declarative layout of a quota-mode test. SQL and app counts
// are split between their two banks by the given ratios.
type CustomTestConfig struct {
	OSCount        int
	NetworkCount   int
	DBCount        int
	AlgorithmCount int
	SQLCount       int
	BasicSQLRatio  float64
	ProgramCount   int
	AppCount       int
	AppTestRatio   float64
}

// DefaultCustomTestConfig is the standard 20-question exam layout.
func DefaultCustomTestConfig() CustomTestConfig {
	return CustomTestConfig{
		OSCount:       3,
		NetworkCount:  3,
		DBCount:       3,
		SQLCount:      4,
		BasicSQLRatio: 0.5,
		ProgramCount:  6,
		AppCount:      1,
		AppTestRatio:  0.5,
	}
}

func (c CustomTestConfig) Validate() error {
	for _, n := range []int{c.OSCount, c.NetworkCount, c.DBCount, c.AlgorithmCount, c.SQLCount, c.ProgramCount, c.AppCount} {
		if n < 0 {
			return apperr.Validation("문항 수는 0 이상이어야 합니다.")
		}
	}
	for _, r := range []float64{c.BasicSQLRatio, c.AppTestRatio} {
		if math.IsNaN(r) || r < 0 || r > 1 {
			return apperr.Validation("비율은 0과 1 사이여야 합니다.")
		}
	}
	return nil
}

// Quotas expands the layout into per-category counts in declaration order.
func (c CustomTestConfig) Quotas() []CategoryQuota {
	basic := int(math.Floor(float64(c.SQLCount) * c.BasicSQLRatio))
	appTest := int(math.Floor(float64(c.AppCount) * c.AppTestRatio))
	return []CategoryQuota{
		{model.CategoryOS, c.OSCount},
		{model.CategoryNetwork, c.NetworkCount},
		{model.CategoryDB, c.DBCount},
		{model.CategoryAlgorithm, c.AlgorithmCount},
		{model.CategoryBaseSQL, basic},
		{model.CategoryHardSQL, c.SQLCount - basic},
		{model.CategoryProgram, c.ProgramCount},
		{model.CategoryAppTest, appTest},
		{model.CategoryAppDefect, c.AppCount - appTest},
	}
}

// ApplyOverrides copies every field present in req over c.
func (c CustomTestConfig) ApplyOverrides(req dto.CustomTestRequestDTO) CustomTestConfig {
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&c.OSCount, req.OSCount)
	setInt(&c.NetworkCount, req.NetworkCount)
	setInt(&c.DBCount, req.DBCount)
	setInt(&c.AlgorithmCount, req.AlgorithmCount)
	setInt(&c.SQLCount, req.SQLCount)
	setInt(&c.ProgramCount, req.ProgramCount)
	setInt(&c.AppCount, req.AppCount)
	if req.BasicSQLRatio != nil {
		c.BasicSQLRatio = *req.BasicSQLRatio
	}
	if req.AppTestRatio != nil {
		c.AppTestRatio = *req.AppTestRatio
	}
	return c
}

type TestAssemblyService interface {
	Assemble(ctx context.Context, quotas []CategoryQuota) ([]model.Question, error)
	Personalized(ctx context.Context, userID string, wrongRatio float64, total int) ([]model.Question, error)
	CustomTest(ctx context.Context, cfg CustomTestConfig) (*dto.TestResponseDTO, error)
	StandardTest(ctx context.Context) (*dto.TestResponseDTO, error)
	PersonalizedTest(ctx context.Context, userID string, wrongRatio float64, total int) (*dto.TestResponseDTO, error)
}

type testAssemblyService struct {
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
	wrongAnswers WrongAnswerService
	rand         RandSource
	multiplier   float64
}

var tracer = otel.Tracer("github.com/jumptop/ITOP/internal/service")

func NewTestAssemblyService(
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	wrongAnswers WrongAnswerService,
	randSource RandSource,
	cfg *config.Config,
) TestAssemblyService {
	multiplier := cfg.Assembly.KeywordSearchMultiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	return &testAssemblyService{
		questionRepo: questionRepo,
		userRepo:     userRepo,
		wrongAnswers: wrongAnswers,
		rand:         randSource,
		multiplier:   multiplier,
	}
}

func (s *testAssemblyService) CustomTest(ctx context.Context, cfg CustomTestConfig) (*dto.TestResponseDTO, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	qs, err := s.Assemble(ctx, cfg.Quotas())
	if err != nil {
		return nil, err
	}
	return testResponse(qs), nil
}

func (s *testAssemblyService) StandardTest(ctx context.Context) (*dto.TestResponseDTO, error) {
	return s.CustomTest(ctx, DefaultCustomTestConfig())
}

func (s *testAssemblyService) PersonalizedTest(ctx context.Context, userID string, wrongRatio float64, total int) (*dto.TestResponseDTO, error) {
	qs, err := s.Personalized(ctx, userID, wrongRatio, total)
	if err != nil {
		return nil, err
	}
	return testResponse(qs), nil
}

func testResponse(qs []model.Question) *dto.TestResponseDTO {
	return &dto.TestResponseDTO{TotalQuestions: len(qs), Questions: toQuestionDTOs(qs)}
}

// Assemble samples each quota without replacement, taking everything a category has
// when it holds fewer than requested, then shuffles the combined set once.
func (s *testAssemblyService) Assemble(ctx context.Context, quotas []CategoryQuota) ([]model.Question, error) {
	ctx, span := tracer.Start(ctx, "assembly.Assemble")
	defer span.End()

	rng := s.rand()
	picker := newPicker()
	for _, quota := range quotas {
		if quota.Count <= 0 {
			continue
		}
		if !quota.Category.Valid() {
			return nil, apperr.Validation("지원하지 않는 카테고리입니다: " + string(quota.Category))
		}
		ids, err := s.questionRepo.ListIDs(ctx, quota.Category, nil, nil)
		if err != nil {
			log.Error().Err(err).Str("category", quota.Category.String()).Msg("Assemble: failed to list question ids")
			return nil, apperr.Persistence("문제를 불러오지 못했습니다.", err)
		}
		chosen := sample(rng, ids, quota.Count)
		if len(chosen) < quota.Count {
			log.Debug().Str("category", quota.Category.String()).Int("requested", quota.Count).Int("available", len(chosen)).Msg("Assemble: category has fewer questions than requested")
		}
		if err := s.load(ctx, picker, quota.Category, chosen); err != nil {
			return nil, err
		}
	}

	out := picker.questions
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	span.SetAttributes(attribute.Int("assembly.count", len(out)))
	return out, nil
}

type weightedKeyword struct {
	term   string
	weight float64
}

// Personalized biases roughly wrongRatio of the test toward keywords the user keeps
// missing and fills the rest uniformly from questions not already chosen.
func (s *testAssemblyService) Personalized(ctx context.Context, userID string, wrongRatio float64, total int) ([]model.Question, error) {
	ctx, span := tracer.Start(ctx, "assembly.Personalized")
	defer span.End()

	if total <= 0 {
		return nil, apperr.Validation("문항 수는 1 이상이어야 합니다.")
	}
	if math.IsNaN(wrongRatio) || wrongRatio < 0 || wrongRatio > 1 {
		return nil, apperr.Validation("wrong_ratio는 0과 1 사이여야 합니다.")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "사용자를 찾을 수 없습니다.", "사용자 정보를 불러오지 못했습니다.")
	}

	freq, err := s.wrongAnswers.KeywordFrequency(ctx, userID)
	if err != nil {
		return nil, err
	}

	rng := s.rand()
	picker := newPicker()

	if len(freq) > 0 {
		if err := s.pickByKeywords(ctx, rng, picker, rankKeywords(freq), wrongRatio, total); err != nil {
			return nil, err
		}
	}
	keywordSourced := len(picker.questions)

	if err := s.fillRandom(ctx, rng, picker, total-len(picker.questions)); err != nil {
		return nil, err
	}

	out := picker.questions
	if len(out) > total {
		out = out[:total]
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	span.SetAttributes(
		attribute.Int("assembly.count", len(out)),
		attribute.Int("assembly.keyword_sourced", keywordSourced),
	)
	log.Info().Str("userID", userID).Int("total", len(out)).Int("keywordSourced", keywordSourced).Msg("Personalized test assembled")
	return out, nil
}

func rankKeywords(freq map[string]int) []weightedKeyword {
	sum := 0
	for _, n := range freq {
		sum += n
	}
	ranked := make([]weightedKeyword, 0, len(freq))
	for term, n := range freq {
		ranked = append(ranked, weightedKeyword{term: term, weight: float64(n) / float64(sum)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].term < ranked[j].term
	})
	return ranked
}

// pickByKeywords searches every category for each keyword, allowing each keyword a
// share proportional to its weight, then keeps a random int(total*wrongRatio) of them.
// That truncation is the only cutoff: there is no separate headroom fraction.
func (s *testAssemblyService) pickByKeywords(ctx context.Context, rng *rand.Rand, picker *picker, ranked []weightedKeyword, wrongRatio float64, total int) error {
	target := int(float64(total) * wrongRatio)
	if target <= 0 {
		return nil
	}

	seen := map[string]struct{}{}
	var candidates []model.Question
	for _, cat := range model.Categories {
		for _, kw := range ranked {
			limit := max(1, int(float64(total)*wrongRatio*kw.weight*s.multiplier))
			matches, err := s.questionRepo.FindByKeywordSubstring(ctx, cat, kw.term)
			if err != nil {
				log.Error().Err(err).Str("category", cat.String()).Str("keyword", kw.term).Msg("Personalized: keyword search failed")
				return apperr.Persistence("문제를 불러오지 못했습니다.", err)
			}
			rng.Shuffle(len(matches), func(i, j int) { matches[i], matches[j] = matches[j], matches[i] })
			taken := 0
			for _, q := range matches {
				if taken >= limit {
					break
				}
				if _, dup := seen[q.ID]; dup {
					continue
				}
				seen[q.ID] = struct{}{}
				candidates = append(candidates, q)
				taken++
			}
		}
	}

	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if len(candidates) > target {
		candidates = candidates[:target]
	}
	for _, q := range candidates {
		picker.add(q)
	}
	return nil
}

// fillRandom spreads n slots evenly over all categories, remainder first, skipping
// questions already picked. Slots a small category cannot fill go to the others.
func (s *testAssemblyService) fillRandom(ctx context.Context, rng *rand.Rand, picker *picker, n int) error {
	if n <= 0 {
		return nil
	}

	exclude := picker.ids()
	available := make([][]string, len(model.Categories))
	for i, cat := range model.Categories {
		ids, err := s.questionRepo.ListIDs(ctx, cat, nil, exclude)
		if err != nil {
			log.Error().Err(err).Str("category", cat.String()).Msg("Personalized: failed to list question ids")
			return apperr.Persistence("문제를 불러오지 못했습니다.", err)
		}
		rng.Shuffle(len(ids), func(a, b int) { ids[a], ids[b] = ids[b], ids[a] })
		available[i] = ids
	}

	alloc := evenSplit(n, len(model.Categories))
	taken := make([]int, len(model.Categories))
	short := 0
	for i := range model.Categories {
		taken[i] = min(alloc[i], len(available[i]))
		short += alloc[i] - taken[i]
	}
	for i := range model.Categories {
		if short == 0 {
			break
		}
		extra := min(short, len(available[i])-taken[i])
		taken[i] += extra
		short -= extra
	}

	for i, cat := range model.Categories {
		if err := s.load(ctx, picker, cat, available[i][:taken[i]]); err != nil {
			return err
		}
	}
	return nil
}

func (s *testAssemblyService) load(ctx context.Context, picker *picker, cat model.Category, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	qs, err := s.questionRepo.FindByIDs(ctx, cat, ids)
	if err != nil {
		log.Error().Err(err).Str("category", cat.String()).Msg("Failed to load sampled questions")
		return apperr.Persistence("문제를 불러오지 못했습니다.", err)
	}
	for _, q := range qs {
		picker.add(q)
	}
	return nil
}

// evenSplit divides n into k parts, giving the remainder to the first parts.
func evenSplit(n, k int) []int {
	out := make([]int, k)
	if k == 0 || n <= 0 {
		return out
	}
	base, rem := n/k, n%k
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// sample returns up to n ids drawn without replacement.
func sample(rng *rand.Rand, ids []string, n int) []string {
	if n >= len(ids) {
		return ids
	}
	out := make([]string, len(ids))
	copy(out, ids)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:n]
}

// picker collects questions, ignoring ids it has already seen.
type picker struct {
	seen      map[string]struct{}
	questions []model.Question
}

func newPicker() *picker {
	return &picker{seen: map[string]struct{}{}}
}

func (p *picker) add(q model.Question) {
	if _, ok := p.seen[q.ID]; ok {
		return
	}
	p.seen[q.ID] = struct{}{}
	p.questions = append(p.questions, q)
}

func (p *picker) ids() []string {
	out := make([]string, 0, len(p.questions))
	for _, q := range p.questions {
		out = append(out, q.ID)
	}
	return out
}
