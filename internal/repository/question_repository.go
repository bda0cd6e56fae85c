package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jumptop/ITOP/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionRepository is a single facade over the nine per-category question tables.
// Every operation is parameterized by the category instead of one type per table.
type QuestionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Question, error)
	FindInCategory(ctx context.Context, cat model.Category, id string) (*model.Question, error)
	FindByCategory(ctx context.Context, cat model.Category, difficulty *int) ([]model.Question, error)
	FindByIDs(ctx context.Context, cat model.Category, ids []string) ([]model.Question, error)
	FindByKeywordSubstring(ctx context.Context, cat model.Category, keyword string) ([]model.Question, error)
	FindWithoutKeywords(ctx context.Context, cat model.Category) ([]model.Question, error)
	Count(ctx context.Context, cat model.Category, difficulty *int) (int64, error)
	ListIDs(ctx context.Context, cat model.Category, difficulty *int, exclude []string) ([]string, error)
	Create(ctx context.Context, cat model.Category, q *model.Question) error
	Update(ctx context.Context, cat model.Category, q *model.Question) error
	Upsert(ctx context.Context, cat model.Category, q *model.Question) error
	Delete(ctx context.Context, cat model.Category, id string) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) table(ctx context.Context, cat model.Category) *gorm.DB {
	return r.db.WithContext(ctx).Table(cat.Table())
}

func tagged(qs []model.Question, cat model.Category) []model.Question {
	for i := range qs {
		qs[i].Category = cat
	}
	return qs
}

// FindByID looks in the table named by the id prefix first, then scans every table.
func (r *questionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	if cat, ok := model.CategoryFromID(id); ok {
		q, err := r.FindInCategory(ctx, cat, id)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	for _, cat := range model.Categories {
		q, err := r.FindInCategory(ctx, cat, id)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("question %s: %w", id, gorm.ErrRecordNotFound)
}

func (r *questionRepository) FindInCategory(ctx context.Context, cat model.Category, id string) (*model.Question, error) {
	var q model.Question
	if err := r.table(ctx, cat).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	q.Category = cat
	return &q, nil
}

func (r *questionRepository) FindByCategory(ctx context.Context, cat model.Category, difficulty *int) ([]model.Question, error) {
	var qs []model.Question
	query := r.table(ctx, cat)
	if difficulty != nil {
		query = query.Where("difficulty = ?", *difficulty)
	}
	if err := query.Order("id").Find(&qs).Error; err != nil {
		return nil, err
	}
	return tagged(qs, cat), nil
}

func (r *questionRepository) FindByIDs(ctx context.Context, cat model.Category, ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var qs []model.Question
	if err := r.table(ctx, cat).Where("id IN ?", ids).Find(&qs).Error; err != nil {
		return nil, err
	}
	return tagged(qs, cat), nil
}

// FindByKeywordSubstring matches case-insensitively; LIKE wildcards in keyword are literal.
func (r *questionRepository) FindByKeywordSubstring(ctx context.Context, cat model.Category, keyword string) ([]model.Question, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	var qs []model.Question
	if err := r.table(ctx, cat).Where(`LOWER(keywords) LIKE ? ESCAPE '\'`, pattern).Order("id").Find(&qs).Error; err != nil {
		return nil, err
	}
	return tagged(qs, cat), nil
}

func (r *questionRepository) FindWithoutKeywords(ctx context.Context, cat model.Category) ([]model.Question, error) {
	var qs []model.Question
	if err := r.table(ctx, cat).Where("keywords IS NULL OR keywords = ''").Order("id").Find(&qs).Error; err != nil {
		return nil, err
	}
	return tagged(qs, cat), nil
}

func (r *questionRepository) Count(ctx context.Context, cat model.Category, difficulty *int) (int64, error) {
	var n int64
	query := r.table(ctx, cat)
	if difficulty != nil {
		query = query.Where("difficulty = ?", *difficulty)
	}
	err := query.Count(&n).Error
	return n, err
}

func (r *questionRepository) ListIDs(ctx context.Context, cat model.Category, difficulty *int, exclude []string) ([]string, error) {
	var ids []string
	query := r.table(ctx, cat)
	if difficulty != nil {
		query = query.Where("difficulty = ?", *difficulty)
	}
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *questionRepository) Create(ctx context.Context, cat model.Category, q *model.Question) error {
	if err := r.table(ctx, cat).Create(q).Error; err != nil {
		return err
	}
	q.Category = cat
	return nil
}

// Update rewrites the mutable columns and reports gorm.ErrRecordNotFound for a missing id.
func (r *questionRepository) Update(ctx context.Context, cat model.Category, q *model.Question) error {
	q.UpdatedAt = time.Now()
	res := r.table(ctx, cat).Where("id = ?", q.ID).Updates(map[string]any{
		"question":   q.Question,
		"answer":     q.Answer,
		"example":    q.Example,
		"difficulty": q.Difficulty,
		"keywords":   q.Keywords,
		"updated_at": q.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	q.Category = cat
	return nil
}

func (r *questionRepository) Upsert(ctx context.Context, cat model.Category, q *model.Question) error {
	err := r.table(ctx, cat).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"question", "answer", "example", "difficulty", "keywords", "updated_at"}),
	}).Create(q).Error
	if err != nil {
		return err
	}
	q.Category = cat
	return nil
}

func (r *questionRepository) Delete(ctx context.Context, cat model.Category, id string) error {
	res := r.table(ctx, cat).Where("id = ?", id).Delete(&model.Question{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
