package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jumptop/ITOP/internal/auth"
	"github.com/jumptop/ITOP/internal/controller"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/service"
)

// ProfileController serves /users, where every route requires a bearer token.
type ProfileController struct {
	userService service.UserService
}

func NewProfileController(us service.UserService) *ProfileController {
	return &ProfileController{userService: us}
}

func (c *ProfileController) RegisterRoutes(users *gin.RouterGroup) {
	users.GET("/me", c.Me)
	users.POST("/work-status", c.MarkWorkStatus)
	users.POST("/test-date", c.SetTestDate)
	users.GET("/d-day", c.DDay)
}

func subject(ctx *gin.Context) string {
	claims, _ := auth.ClaimsFrom(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// Me godoc
// @Summary (User) Current user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "No local profile"
// @Router /users/me [get]
func (c *ProfileController) Me(ctx *gin.Context) {
	resp, err := c.userService.Me(ctx.Request.Context(), subject(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// MarkWorkStatus godoc
// @Summary (User) Mark today's study as done
// @Description Credited at most once per calendar day.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.WorkStatusResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /users/work-status [post]
func (c *ProfileController) MarkWorkStatus(ctx *gin.Context) {
	resp, err := c.userService.MarkWorkStatus(ctx.Request.Context(), subject(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SetTestDate godoc
// @Summary (User) Set the exam date
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TestDateRequestDTO true "Exam date (YYYY-MM-DD)"
// @Success 200 {object} dto.DDayResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Router /users/test-date [post]
func (c *ProfileController) SetTestDate(ctx *gin.Context) {
	var req dto.TestDateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	resp, err := c.userService.SetTestDate(ctx.Request.Context(), subject(ctx), req.TestDate)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DDay godoc
// @Summary (User) Days left until the exam
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DDayResponseDTO
// @Router /users/d-day [get]
func (c *ProfileController) DDay(ctx *gin.Context) {
	resp, err := c.userService.DDay(ctx.Request.Context(), subject(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
