package dto

// QuestionCreateDTO is the admin payload for a new question; keywords are derived server-side.
type QuestionCreateDTO struct {
	ID         string  `json:"id" binding:"required,max=36"`
	Question   string  `json:"question" binding:"required"`
	Answer     string  `json:"answer" binding:"required"`
	Example    *string `json:"example"`
	Difficulty int     `json:"difficulty" binding:"omitempty,min=1"`
}

type QuestionUpdateDTO struct {
	Question   string  `json:"question" binding:"required"`
	Answer     string  `json:"answer" binding:"required"`
	Example    *string `json:"example"`
	Difficulty int     `json:"difficulty" binding:"omitempty,min=1"`
}
