package dto

// QuestionListQuery filters GET /api/questions.
type QuestionListQuery struct {
	Category   string `form:"category" binding:"omitempty,category"`
	Difficulty *int   `form:"difficulty" binding:"omitempty,min=1"`
	Limit      int    `form:"limit,default=10" binding:"min=1,max=100"`
	Offset     int    `form:"offset,default=0" binding:"min=0"`
}

// RandomQuestionQuery filters GET /api/random. Category is checked by the service so an
// unknown tag answers 404 instead of 400.
type RandomQuestionQuery struct {
	Category   string `form:"category"`
	Difficulty *int   `form:"difficulty" binding:"omitempty,min=1"`
}

type EvaluateRequestDTO struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

type PageQuery struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}
