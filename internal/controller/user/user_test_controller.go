package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jumptop/ITOP/internal/controller"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/service"
	"github.com/rs/zerolog/log"
)

type UserTestController struct {
	assemblyService       service.TestAssemblyService
	testSubmissionService service.TestSubmissionService
	wrongAnswerService    service.WrongAnswerService
	userService           service.UserService
}

func NewUserTestController(
	as service.TestAssemblyService,
	tss service.TestSubmissionService,
	was service.WrongAnswerService,
	us service.UserService,
) *UserTestController {
	return &UserTestController{
		assemblyService:       as,
		testSubmissionService: tss,
		wrongAnswerService:    was,
		userService:           us,
	}
}

func (c *UserTestController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/standard-test", c.GetStandardTest)
	api.POST("/custom-test", c.CreateCustomTest)
	api.POST("/submit-test", c.SubmitTest)
	api.GET("/test-attempts/:attempt_id", c.GetTestAttempt)

	users := api.Group("/users/:user_id")
	users.GET("/personalized-test", c.GetPersonalizedTest)
	users.GET("/wrong-answers", c.GetWrongAnswers)
	users.GET("/test-attempts", c.GetUserTestAttempts)
}

// GetStandardTest godoc
// @Summary (User) Standard 20-question test
// @Description os 3, network 3, db 3, sql 4 (basic/hard 50:50), program 6, app 1 (test/defect 50:50).
// @Tags User - Tests & Attempts
// @Produce json
// @Success 200 {object} dto.TestResponseDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/standard-test [get]
func (c *UserTestController) GetStandardTest(ctx *gin.Context) {
	test, err := c.assemblyService.StandardTest(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// CreateCustomTest godoc
// @Summary (User) Build a test from per-category counts
// @Description Omitted fields fall back to the standard layout.
// @Tags User - Tests & Attempts
// @Accept json
// @Produce json
// @Param config body dto.CustomTestRequestDTO false "Category counts and split ratios"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid counts or ratios"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/custom-test [post]
func (c *UserTestController) CreateCustomTest(ctx *gin.Context) {
	var req dto.CustomTestRequestDTO
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			controller.RespondBindError(ctx, err)
			return
		}
	}
	cfg := service.DefaultCustomTestConfig().ApplyOverrides(req)
	test, err := c.assemblyService.CustomTest(ctx.Request.Context(), cfg)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// GetPersonalizedTest godoc
// @Summary (User) Test biased toward the user's frequent mistakes
// @Tags User - Tests & Attempts
// @Produce json
// @Param user_id path string true "User ID"
// @Param wrong_ratio query number false "Share of keyword-matched questions (0-1)" default(0.5)
// @Param total_questions query int false "Number of questions (5-50)" default(20)
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 403 {object} dto.ErrorResponse "Token belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /api/users/{user_id}/personalized-test [get]
func (c *UserTestController) GetPersonalizedTest(ctx *gin.Context) {
	var query dto.PersonalizedTestQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	userID := ctx.Param("user_id")
	if !controller.AuthorizeUser(ctx, c.userService, userID) {
		return
	}
	test, err := c.assemblyService.PersonalizedTest(ctx.Request.Context(), userID, query.WrongRatio, query.TotalQuestions)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// SubmitTest godoc
// @Summary (User) Submit answers for an entire test
// @Description Each item is worth 5 points; 60 points passes. With user_id, wrong answers and the attempt are stored.
// @Tags User - Tests & Attempts
// @Accept json
// @Produce json
// @Param submission_data body dto.SubmitTestRequestDTO true "Answers and optional user id"
// @Success 200 {object} dto.SubmitTestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Token belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Error processing submission"
// @Router /api/submit-test [post]
func (c *UserTestController) SubmitTest(ctx *gin.Context) {
	var req dto.SubmitTestRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	if req.UserID != nil && *req.UserID != "" && !controller.AuthorizeUser(ctx, c.userService, *req.UserID) {
		return
	}
	log.Info().Int("answers", len(req.Answers)).Msg("User SubmitTest: grading submission")
	result, err := c.testSubmissionService.SubmitTest(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetTestAttempt godoc
// @Summary (User) Get a stored test attempt
// @Tags User - Tests & Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.TestAttemptDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt id"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /api/test-attempts/{attempt_id} [get]
func (c *UserTestController) GetTestAttempt(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return
	}
	attempt, err := c.testSubmissionService.GetTestAttemptDetails(ctx.Request.Context(), uint(attemptID))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	if !controller.AuthorizeUser(ctx, c.userService, attempt.UserID) {
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// GetUserTestAttempts godoc
// @Summary (User) List a user's test attempts, newest first
// @Tags User - Tests & Attempts
// @Produce json
// @Param user_id path string true "User ID"
// @Param limit query int false "Page size (1-100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.TestAttemptSummaryDTO
// @Failure 403 {object} dto.ErrorResponse "Token belongs to another user"
// @Router /api/users/{user_id}/test-attempts [get]
func (c *UserTestController) GetUserTestAttempts(ctx *gin.Context) {
	var page dto.PageQuery
	if err := ctx.ShouldBindQuery(&page); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	userID := ctx.Param("user_id")
	if !controller.AuthorizeUser(ctx, c.userService, userID) {
		return
	}
	attempts, err := c.testSubmissionService.GetUserAttempts(ctx.Request.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// GetWrongAnswers godoc
// @Summary (User) List a user's wrong answers, newest first
// @Tags User - Tests & Attempts
// @Produce json
// @Param user_id path string true "User ID"
// @Param limit query int false "Page size (1-100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.WrongAnswerResponseDTO
// @Failure 403 {object} dto.ErrorResponse "Token belongs to another user"
// @Router /api/users/{user_id}/wrong-answers [get]
func (c *UserTestController) GetWrongAnswers(ctx *gin.Context) {
	var page dto.PageQuery
	if err := ctx.ShouldBindQuery(&page); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	userID := ctx.Param("user_id")
	if !controller.AuthorizeUser(ctx, c.userService, userID) {
		return
	}
	rows, err := c.wrongAnswerService.ListForUser(ctx.Request.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rows)
}
