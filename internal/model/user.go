package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Username        string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email           string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	ExternalID      *string    `gorm:"size:100;uniqueIndex" json:"external_id,omitempty"`
	HasStudiedToday bool       `gorm:"not null;default:false" json:"has_studied_today"`
	LastStudyAt     *time.Time `json:"last_study_at,omitempty"`
	ExamDate        *time.Time `json:"exam_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
