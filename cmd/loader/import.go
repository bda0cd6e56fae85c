package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/service"
)

// questionRecord is one entry of a question bank file.
type questionRecord struct {
	ID         string  `json:"id" validate:"required,max=36"`
	Question   string  `json:"question" validate:"required"`
	Answer     string  `json:"answer" validate:"required"`
	Example    *string `json:"example"`
	Difficulty int     `json:"difficulty" validate:"gte=0,lte=5"`
	Keywords   string  `json:"keywords" validate:"max=255"`
}

var validate = validator.New()

func parseCategories(raw []string) ([]model.Category, error) {
	out := make([]model.Category, 0, len(raw))
	for _, r := range raw {
		c, err := model.ParseCategory(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// readRecords decodes and validates a bank file. Any invalid record rejects the file.
func readRecords(path string) ([]questionRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []questionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("%s record %d (%q): %w", path, i, r.ID, err)
		}
	}
	return records, nil
}

func importFile(ctx context.Context, qs service.QuestionService, cat model.Category, dir string) (int, error) {
	records, err := readRecords(filepath.Join(dir, cat.String()+"_questions.json"))
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		q := &model.Question{
			ID:         r.ID,
			Question:   r.Question,
			Answer:     r.Answer,
			Example:    r.Example,
			Difficulty: r.Difficulty,
			Keywords:   r.Keywords,
		}
		if err := qs.ImportQuestion(ctx, cat, q); err != nil {
			return 0, fmt.Errorf("import %s: %w", r.ID, err)
		}
	}
	return len(records), nil
}
