package model

import "time"

// WrongAnswer is one row per (user, question); repeat misses bump AttemptCount.
type WrongAnswer struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	UserID          string    `gorm:"size:36;not null;uniqueIndex:idx_wrong_user_question,priority:1" json:"user_id"`
	QuestionID      string    `gorm:"size:36;not null;uniqueIndex:idx_wrong_user_question,priority:2" json:"question_id"`
	Category        Category  `gorm:"size:20;not null" json:"question_category"`
	SubmittedAnswer string    `gorm:"type:text" json:"user_answer"`
	Keywords        string    `gorm:"size:255" json:"keywords"`
	AttemptCount    int       `gorm:"not null;default:1" json:"attempt_count"`
	RecordedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

func (WrongAnswer) TableName() string { return "user_wrong_answers" }
