package dto

import "time"

type ErrorResponse struct {
	Message string `json:"message"`
	Details []string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type QuestionResponseDTO struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Example    *string `json:"example,omitempty"`
	Difficulty int     `json:"difficulty"`
	Keywords   string  `json:"keywords"`
}

type CategoriesResponseDTO struct {
	Categories []string `json:"categories"`
}

type EvaluateResponseDTO struct {
	IsCorrect       bool     `json:"is_correct"`
	Score           float64  `json:"score"`
	Feedback        string   `json:"feedback"`
	MissingPoints   []string `json:"missing_points"`
	IncorrectPoints []string `json:"incorrect_points"`
	CorrectAnswer   string   `json:"correct_answer"`
	Example         *string  `json:"example,omitempty"`
}

type WrongAnswerResponseDTO struct {
	ID               uint      `json:"id"`
	QuestionID       string    `json:"question_id"`
	QuestionText     string    `json:"question_text"`
	UserAnswer       string    `json:"user_answer"`
	CorrectAnswer    string    `json:"correct_answer"`
	QuestionCategory string    `json:"question_category"`
	Keywords         string    `json:"keywords"`
	AttemptCount     int       `json:"attempt_count"`
	CreatedAt        time.Time `json:"created_at"`
}
