package service

import (
	"errors"
	"math"

	"github.com/jinzhu/copier"
	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/grading"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func toQuestionDTO(q *model.Question) dto.QuestionResponseDTO {
	var resp dto.QuestionResponseDTO
	if err := copier.Copy(&resp, q); err != nil {
		log.Error().Err(err).Str("questionID", q.ID).Msg("Error copying question to DTO")
	}
	resp.Category = q.Category.String()
	return resp
}

func toQuestionDTOs(qs []model.Question) []dto.QuestionResponseDTO {
	out := make([]dto.QuestionResponseDTO, 0, len(qs))
	for i := range qs {
		out = append(out, toQuestionDTO(&qs[i]))
	}
	return out
}

func gradingQuestion(q *model.Question) grading.Question {
	return grading.Question{Text: q.Question, Answer: q.Answer, Example: q.ExampleText()}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// notFoundOr turns gorm.ErrRecordNotFound into a NotFound error and anything else into
// a Persistence error.
func notFoundOr(err error, notFoundMsg, persistMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Persistence(persistMsg, err)
}
