package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jumptop/ITOP/internal/controller"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/service"
)

type AdminQuestionController struct {
	questionService service.QuestionService
}

func NewAdminQuestionController(questionService service.QuestionService) *AdminQuestionController {
	return &AdminQuestionController{questionService: questionService}
}

// RegisterRoutes mounts the handlers on a group already guarded by admin middleware.
func (c *AdminQuestionController) RegisterRoutes(group *gin.RouterGroup) {
	questions := group.Group("/questions/:category")
	questions.POST("", c.CreateQuestion)
	questions.PUT("/:question_id", c.UpdateQuestion)
	questions.DELETE("/:question_id", c.DeleteQuestion)
	questions.POST("/:question_id/keywords", c.RegenerateKeywords)
}

// CreateQuestion godoc
// @Summary (Admin) Create a question
// @Description Adds a question to a category bank. Keywords are extracted from the question and answer.
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category path string true "Category" Enums(os, db, network, algorithm, program, app_test, app_defect, base_sql, hard_sql)
// @Param question body dto.QuestionCreateDTO true "Question data"
// @Success 201 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or category"
// @Failure 409 {object} dto.ErrorResponse "Question id already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions/{category} [post]
func (c *AdminQuestionController) CreateQuestion(ctx *gin.Context) {
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	resp, err := c.questionService.CreateQuestion(ctx.Request.Context(), ctx.Param("category"), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// UpdateQuestion godoc
// @Summary (Admin) Update a question
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category path string true "Category"
// @Param question_id path string true "Question ID"
// @Param question body dto.QuestionUpdateDTO true "Question data"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or category"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{category}/{question_id} [put]
func (c *AdminQuestionController) UpdateQuestion(ctx *gin.Context) {
	var req dto.QuestionUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	resp, err := c.questionService.UpdateQuestion(ctx.Request.Context(), ctx.Param("category"), ctx.Param("question_id"), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Tags Admin - Questions
// @Security BearerAuth
// @Param category path string true "Category"
// @Param question_id path string true "Question ID"
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{category}/{question_id} [delete]
func (c *AdminQuestionController) DeleteQuestion(ctx *gin.Context) {
	if err := c.questionService.DeleteQuestion(ctx.Request.Context(), ctx.Param("category"), ctx.Param("question_id")); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// RegenerateKeywords godoc
// @Summary (Admin) Re-extract the keywords of a question
// @Tags Admin - Questions
// @Produce json
// @Security BearerAuth
// @Param category path string true "Category"
// @Param question_id path string true "Question ID"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{category}/{question_id}/keywords [post]
func (c *AdminQuestionController) RegenerateKeywords(ctx *gin.Context) {
	resp, err := c.questionService.RegenerateKeywords(ctx.Request.Context(), ctx.Param("category"), ctx.Param("question_id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
