package model

// AttemptAnswer is the graded result of one item within a TestAttempt.
type AttemptAnswer struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	TestAttemptID uint   `gorm:"not null;index" json:"test_attempt_id"`
	Position      int    `gorm:"not null" json:"position"`
	QuestionID    string `gorm:"size:36;not null" json:"question_id"`
	UserAnswer    string `gorm:"type:text" json:"user_answer"`
	CorrectAnswer string `gorm:"type:text" json:"correct_answer"`
	IsCorrect     bool   `gorm:"not null" json:"is_correct"`
	Points        int    `gorm:"not null" json:"points"`
	Feedback      string `gorm:"type:text" json:"feedback"`
}
