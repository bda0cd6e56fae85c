package model

import (
	"time"
)

// TestAttempt is a graded submission of an identified user.
type TestAttempt struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	UserID         string          `gorm:"size:36;not null;index" json:"user_id"`
	CorrectCount   int             `gorm:"not null" json:"correct_count"`
	TotalQuestions int             `gorm:"not null" json:"total_questions"`
	Score          int             `gorm:"not null" json:"score"`
	IsPassed       bool            `gorm:"not null" json:"is_passed"`
	SubmittedAt    time.Time       `gorm:"not null;index" json:"submitted_at"`
	Answers        []AttemptAnswer `gorm:"foreignKey:TestAttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"answers,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
