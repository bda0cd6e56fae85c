package dto

import "time"

type UserResponseDTO struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	HasStudiedToday bool       `json:"has_studied_today"`
	LastStudyAt     *time.Time `json:"last_study_at"`
	ExamDate        *string    `json:"exam_date"`
	CreatedAt       time.Time  `json:"created_at"`
}

type TestDateRequestDTO struct {
	TestDate string `json:"test_date" binding:"required,datetime=2006-01-02"`
}

type WorkStatusResponseDTO struct {
	HasStudiedToday bool   `json:"has_studied_today"`
	Message         string `json:"message"`
}

type DDayResponseDTO struct {
	ExamDate *string `json:"exam_date"`
	Days     *int    `json:"days"`
	Message  string  `json:"message"`
}
