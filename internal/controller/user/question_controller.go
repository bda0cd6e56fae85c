package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jumptop/ITOP/internal/controller"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/service"
)

type QuestionController struct {
	questionService   service.QuestionService
	evaluationService service.EvaluationService
	userService       service.UserService
}

func NewQuestionController(qs service.QuestionService, es service.EvaluationService, us service.UserService) *QuestionController {
	return &QuestionController{questionService: qs, evaluationService: es, userService: us}
}

func (c *QuestionController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/categories", c.GetCategories)
	api.GET("/questions", c.ListQuestions)
	api.GET("/questions/:question_id", c.GetQuestion)
	api.GET("/random", c.GetRandomQuestion)
	api.POST("/evaluate", c.Evaluate)
}

// GetCategories godoc
// @Summary List question categories
// @Tags Questions
// @Produce json
// @Success 200 {object} dto.CategoriesResponseDTO
// @Router /api/categories [get]
func (c *QuestionController) GetCategories(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.CategoriesResponseDTO{Categories: c.questionService.Categories()})
}

// ListQuestions godoc
// @Summary List a random page of questions
// @Description Without a category the page is spread over every category.
// @Tags Questions
// @Produce json
// @Param category query string false "Category"
// @Param difficulty query int false "Difficulty"
// @Param limit query int false "Page size (1-100)" default(10)
// @Param offset query int false "Offset into the category" default(0)
// @Success 200 {array} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	var query dto.QuestionListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	questions, err := c.questionService.ListQuestions(ctx.Request.Context(), query)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// GetQuestion godoc
// @Summary Get a question by id
// @Tags Questions
// @Produce json
// @Param question_id path string true "Question ID, e.g. os-1"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /api/questions/{question_id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	question, err := c.questionService.GetQuestion(ctx.Request.Context(), ctx.Param("question_id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// GetRandomQuestion godoc
// @Summary Get one random question
// @Tags Questions
// @Produce json
// @Param category query string false "Category"
// @Param difficulty query int false "Difficulty"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown category or no matching question"
// @Router /api/random [get]
func (c *QuestionController) GetRandomQuestion(ctx *gin.Context) {
	var query dto.RandomQuestionQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	question, err := c.questionService.RandomQuestion(ctx.Request.Context(), query.Category, query.Difficulty)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// Evaluate godoc
// @Summary Grade one answer
// @Description Runs the grading cascade. With a bearer token a wrong answer is recorded for the caller.
// @Tags Questions
// @Accept json
// @Produce json
// @Param request body dto.EvaluateRequestDTO true "Question id and answer"
// @Success 200 {object} dto.EvaluateResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/evaluate [post]
func (c *QuestionController) Evaluate(ctx *gin.Context) {
	var req dto.EvaluateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	userID, err := controller.CallerUserID(ctx, c.userService)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	resp, err := c.evaluationService.Evaluate(ctx.Request.Context(), req, userID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
