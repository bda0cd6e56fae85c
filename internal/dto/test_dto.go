package dto

import "time"

// CustomTestRequestDTO describes a quota-mode test. Absent fields take the standard layout.
type CustomTestRequestDTO struct {
	OSCount        *int     `json:"os_count" binding:"omitempty,min=0"`
	NetworkCount   *int     `json:"network_count" binding:"omitempty,min=0"`
	DBCount        *int     `json:"db_count" binding:"omitempty,min=0"`
	AlgorithmCount *int     `json:"algorithm_count" binding:"omitempty,min=0"`
	SQLCount       *int     `json:"sql_count" binding:"omitempty,min=0"`
	BasicSQLRatio  *float64 `json:"basic_sql_ratio" binding:"omitempty,min=0,max=1"`
	ProgramCount   *int     `json:"program_count" binding:"omitempty,min=0"`
	AppCount       *int     `json:"app_count" binding:"omitempty,min=0"`
	AppTestRatio   *float64 `json:"app_test_ratio" binding:"omitempty,min=0,max=1"`
}

type PersonalizedTestQuery struct {
	WrongRatio     float64 `form:"wrong_ratio,default=0.5" binding:"min=0,max=1"`
	TotalQuestions int     `form:"total_questions,default=20" binding:"min=5,max=50"`
}

type TestResponseDTO struct {
	TotalQuestions int                   `json:"total_questions"`
	Questions      []QuestionResponseDTO `json:"questions"`
}

type SubmitAnswerDTO struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

type SubmitTestRequestDTO struct {
	UserID  *string           `json:"user_id"`
	Answers []SubmitAnswerDTO `json:"answers" binding:"required,min=1,dive"`
}

type ResultDetailDTO struct {
	QuestionID    string `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Feedback      string `json:"feedback"`
}

type SubmitTestResponseDTO struct {
	AttemptID      *uint             `json:"attempt_id,omitempty"`
	CorrectCount   int               `json:"correct_count"`
	TotalQuestions int               `json:"total_questions"`
	Score          int               `json:"score"`
	IsPassed       bool              `json:"is_passed"`
	ResultDetails  []ResultDetailDTO `json:"result_details"`
}

type TestAttemptSummaryDTO struct {
	ID             uint      `json:"id"`
	UserID         string    `json:"user_id"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	Score          int       `json:"score"`
	IsPassed       bool      `json:"is_passed"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type TestAttemptDetailDTO struct {
	ID             uint              `json:"id"`
	UserID         string            `json:"user_id"`
	CorrectCount   int               `json:"correct_count"`
	TotalQuestions int               `json:"total_questions"`
	Score          int               `json:"score"`
	IsPassed       bool              `json:"is_passed"`
	SubmittedAt    time.Time         `json:"submitted_at"`
	Answers        []ResultDetailDTO `json:"answers"`
}
