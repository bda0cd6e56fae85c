package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type QuestionService interface {
	Categories() []string
	GetQuestion(ctx context.Context, id string) (*dto.QuestionResponseDTO, error)
	ListQuestions(ctx context.Context, query dto.QuestionListQuery) ([]dto.QuestionResponseDTO, error)
	RandomQuestion(ctx context.Context, category string, difficulty *int) (*dto.QuestionResponseDTO, error)

	CreateQuestion(ctx context.Context, category string, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	UpdateQuestion(ctx context.Context, category, id string, req dto.QuestionUpdateDTO) (*dto.QuestionResponseDTO, error)
	DeleteQuestion(ctx context.Context, category, id string) error
	RegenerateKeywords(ctx context.Context, category, id string) (*dto.QuestionResponseDTO, error)

	// ImportQuestion upserts by id, deriving keywords when the row carries none.
	ImportQuestion(ctx context.Context, cat model.Category, q *model.Question) error
	RefreshMissingKeywords(ctx context.Context, cat model.Category) (int, error)
}

type questionService struct {
	repo     repository.QuestionRepository
	keywords KeywordService
	rand     RandSource
}

func NewQuestionService(repo repository.QuestionRepository, keywords KeywordService, randSource RandSource) QuestionService {
	return &questionService{repo: repo, keywords: keywords, rand: randSource}
}

func (s *questionService) Categories() []string {
	return model.CategoryStrings()
}

func (s *questionService) GetQuestion(ctx context.Context, id string) (*dto.QuestionResponseDTO, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "문제를 찾을 수 없습니다.", "문제를 불러오지 못했습니다.")
	}
	resp := toQuestionDTO(q)
	return &resp, nil
}

// ListQuestions samples limit questions. With a category it samples from the ids after
// offset; without one it spreads the page over every category.
func (s *questionService) ListQuestions(ctx context.Context, query dto.QuestionListQuery) ([]dto.QuestionResponseDTO, error) {
	rng := s.rand()

	if query.Category != "" {
		cat, err := model.ParseCategory(query.Category)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		ids, err := s.repo.ListIDs(ctx, cat, query.Difficulty, nil)
		if err != nil {
			return nil, apperr.Persistence("문제를 불러오지 못했습니다.", err)
		}
		if query.Offset >= len(ids) {
			return []dto.QuestionResponseDTO{}, nil
		}
		qs, err := s.repo.FindByIDs(ctx, cat, sample(rng, ids[query.Offset:], query.Limit))
		if err != nil {
			return nil, apperr.Persistence("문제를 불러오지 못했습니다.", err)
		}
		rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		return toQuestionDTOs(qs), nil
	}

	perCategory := max(1, query.Limit/len(model.Categories))
	order := make([]model.Category, len(model.Categories))
	copy(order, model.Categories)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	picker := newPicker()
	leftovers := map[model.Category][]string{}
	for _, cat := range order {
		ids, err := s.repo.ListIDs(ctx, cat, query.Difficulty, nil)
		if err != nil {
			return nil, apperr.Persistence("문제를 불러오지 못했습니다.", err)
		}
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		n := min(perCategory, len(ids))
		qs, err := s.repo.FindByIDs(ctx, cat, ids[:n])
		if err != nil {
			return nil, apperr.Persistence("문제를 불러오지 못했습니다.", err)
		}
		for _, q := range qs {
			picker.add(q)
		}
		leftovers[cat] = ids[n:]
	}
	for _, cat := range order {
		need := query.Limit - len(picker.questions)
		if need <= 0 {
			break
		}
		ids := leftovers[cat]
		qs, err := s.repo.FindByIDs(ctx, cat, ids[:min(need, len(ids))])
		if err != nil {
			return nil, apperr.Persistence("문제를 불러오지 못했습니다.", err)
		}
		for _, q := range qs {
			picker.add(q)
		}
	}

	out := picker.questions
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return toQuestionDTOs(out), nil
}

func (s *questionService) RandomQuestion(ctx context.Context, category string, difficulty *int) (*dto.QuestionResponseDTO, error) {
	rng := s.rand()
	var cats []model.Category
	if category == "" {
		cats = append(cats, model.Categories...)
		rng.Shuffle(len(cats), func(i, j int) { cats[i], cats[j] = cats[j], cats[i] })
	} else {
		cat, err := model.ParseCategory(category)
		if err != nil {
			return nil, apperr.NotFound("존재하지 않는 카테고리입니다.")
		}
		cats = []model.Category{cat}
	}

	for _, cat := range cats {
		ids, err := s.repo.ListIDs(ctx, cat, difficulty, nil)
		if err != nil {
			return nil, apperr.Persistence("문제를 불러오지 못했습니다.", err)
		}
		if len(ids) == 0 {
			continue
		}
		q, err := s.repo.FindInCategory(ctx, cat, ids[rng.IntN(len(ids))])
		if err != nil {
			return nil, notFoundOr(err, "문제를 찾을 수 없습니다.", "문제를 불러오지 못했습니다.")
		}
		resp := toQuestionDTO(q)
		return &resp, nil
	}
	return nil, apperr.NotFound("조건에 맞는 문제가 없습니다.")
}

func (s *questionService) CreateQuestion(ctx context.Context, category string, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	cat, err := model.ParseCategory(category)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	q := &model.Question{
		ID:         strings.TrimSpace(req.ID),
		Question:   req.Question,
		Answer:     req.Answer,
		Example:    req.Example,
		Difficulty: max(1, req.Difficulty),
	}
	if prefixCat, ok := model.CategoryFromID(q.ID); ok && prefixCat != cat {
		return nil, apperr.Validation("문제 ID의 접두어가 카테고리와 일치하지 않습니다.")
	}
	q.Keywords = s.deriveKeywords(ctx, q)

	if err := s.repo.Create(ctx, cat, q); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("이미 존재하는 문제 ID입니다.", err)
		}
		log.Error().Err(err).Str("questionID", q.ID).Msg("Failed to create question")
		return nil, apperr.Persistence("문제 저장에 실패했습니다.", err)
	}
	log.Info().Str("questionID", q.ID).Str("category", cat.String()).Str("keywords", q.Keywords).Msg("Question created")
	resp := toQuestionDTO(q)
	return &resp, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, category, id string, req dto.QuestionUpdateDTO) (*dto.QuestionResponseDTO, error) {
	cat, err := model.ParseCategory(category)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	q := &model.Question{
		ID:         id,
		Question:   req.Question,
		Answer:     req.Answer,
		Example:    req.Example,
		Difficulty: max(1, req.Difficulty),
	}
	q.Keywords = s.deriveKeywords(ctx, q)

	if err := s.repo.Update(ctx, cat, q); err != nil {
		return nil, notFoundOr(err, "문제를 찾을 수 없습니다.", "문제 수정에 실패했습니다.")
	}
	stored, err := s.repo.FindInCategory(ctx, cat, id)
	if err != nil {
		return nil, notFoundOr(err, "문제를 찾을 수 없습니다.", "문제를 불러오지 못했습니다.")
	}
	resp := toQuestionDTO(stored)
	return &resp, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, category, id string) error {
	cat, err := model.ParseCategory(category)
	if err != nil {
		return apperr.Validation(err.Error())
	}
	if err := s.repo.Delete(ctx, cat, id); err != nil {
		return notFoundOr(err, "문제를 찾을 수 없습니다.", "문제 삭제에 실패했습니다.")
	}
	log.Info().Str("questionID", id).Str("category", cat.String()).Msg("Question deleted")
	return nil
}

func (s *questionService) RegenerateKeywords(ctx context.Context, category, id string) (*dto.QuestionResponseDTO, error) {
	cat, err := model.ParseCategory(category)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	q, err := s.repo.FindInCategory(ctx, cat, id)
	if err != nil {
		return nil, notFoundOr(err, "문제를 찾을 수 없습니다.", "문제를 불러오지 못했습니다.")
	}
	q.Keywords = s.deriveKeywords(ctx, q)
	if err := s.repo.Update(ctx, cat, q); err != nil {
		return nil, notFoundOr(err, "문제를 찾을 수 없습니다.", "문제 수정에 실패했습니다.")
	}
	resp := toQuestionDTO(q)
	return &resp, nil
}

func (s *questionService) ImportQuestion(ctx context.Context, cat model.Category, q *model.Question) error {
	if strings.TrimSpace(q.Keywords) == "" {
		q.Keywords = s.deriveKeywords(ctx, q)
	}
	if q.Difficulty < 1 {
		q.Difficulty = 1
	}
	if err := s.repo.Upsert(ctx, cat, q); err != nil {
		return apperr.Persistence("문제 저장에 실패했습니다.", err)
	}
	return nil
}

func (s *questionService) RefreshMissingKeywords(ctx context.Context, cat model.Category) (int, error) {
	qs, err := s.repo.FindWithoutKeywords(ctx, cat)
	if err != nil {
		return 0, apperr.Persistence("문제를 불러오지 못했습니다.", err)
	}
	updated := 0
	for i := range qs {
		q := &qs[i]
		q.Keywords = s.deriveKeywords(ctx, q)
		if q.Keywords == "" {
			continue
		}
		if err := s.repo.Update(ctx, cat, q); err != nil {
			return updated, apperr.Persistence("문제 수정에 실패했습니다.", err)
		}
		updated++
	}
	return updated, nil
}

// deriveKeywords extracts keywords from the question and its answer, stored
// comma-joined and clipped to the column width.
func (s *questionService) deriveKeywords(ctx context.Context, q *model.Question) string {
	kws := s.keywords.Extract(ctx, q.Question+" "+q.Answer, "")
	joined := strings.Join(kws, ",")
	for len(joined) > 255 && len(kws) > 0 {
		kws = kws[:len(kws)-1]
		joined = strings.Join(kws, ",")
	}
	return joined
}
