package account

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jumptop/ITOP/internal/auth"
	"github.com/jumptop/ITOP/internal/controller"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/service"
)

type AuthController struct {
	authService service.AuthService
	middleware  *auth.Middleware
}

func NewAuthController(as service.AuthService, mw *auth.Middleware) *AuthController {
	return &AuthController{authService: as, middleware: mw}
}

func (c *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/register", c.Register)
	group.POST("/confirm-email", c.ConfirmEmail)
	group.POST("/login", c.Login)
	group.POST("/refresh-token", c.RefreshToken)
	group.POST("/forgot-password", c.ForgotPassword)
	group.POST("/confirm-forgot-password", c.ConfirmForgotPassword)

	protected := group.Group("", c.middleware.RequireAuth())
	protected.POST("/change-password", c.ChangePassword)
	protected.POST("/logout", c.Logout)
	protected.GET("/me", c.Me)
}

// Register godoc
// @Summary Sign up
// @Description Creates the identity-provider account and the local profile. A confirmation code is mailed.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequestDTO true "Account"
// @Success 201 {object} dto.RegisterResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Username or email taken"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	resp, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ConfirmEmail godoc
// @Summary Confirm sign-up with the mailed code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ConfirmEmailRequestDTO true "Username and code"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Wrong or expired code"
// @Router /auth/confirm-email [post]
func (c *AuthController) ConfirmEmail(ctx *gin.Context) {
	var req dto.ConfirmEmailRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	if err := c.authService.ConfirmEmail(ctx.Request.Context(), req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "이메일 인증이 완료되었습니다."})
}

// Login godoc
// @Summary Log in with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequestDTO true "Credentials"
// @Success 200 {object} dto.TokenResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Wrong credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	tokens, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tokens)
}

// RefreshToken godoc
// @Summary Exchange a refresh token for new access and id tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequestDTO true "Refresh token"
// @Success 200 {object} dto.TokenResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Refresh token rejected"
// @Router /auth/refresh-token [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	tokens, err := c.authService.Refresh(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tokens)
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequestDTO true "Old and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Password policy violated"
// @Failure 401 {object} dto.ErrorResponse "Missing token or wrong password"
// @Router /auth/change-password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	if err := c.authService.ChangePassword(ctx.Request.Context(), auth.BearerToken(ctx), req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "비밀번호가 변경되었습니다."})
}

// ForgotPassword godoc
// @Summary Mail a password reset code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequestDTO true "Username"
// @Success 200 {object} dto.MessageResponse
// @Router /auth/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	if err := c.authService.ForgotPassword(ctx.Request.Context(), req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "비밀번호 재설정 코드가 전송되었습니다."})
}

// ConfirmForgotPassword godoc
// @Summary Reset the password with the mailed code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ConfirmForgotPasswordRequestDTO true "Code and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Wrong or expired code"
// @Router /auth/confirm-forgot-password [post]
func (c *AuthController) ConfirmForgotPassword(ctx *gin.Context) {
	var req dto.ConfirmForgotPasswordRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	if err := c.authService.ConfirmForgotPassword(ctx.Request.Context(), req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "비밀번호가 재설정되었습니다."})
}

// Logout godoc
// @Summary Log out
// @Description Signs the caller out everywhere and revokes the presented token until it expires.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims, _ := auth.ClaimsFrom(ctx)
	if err := c.authService.Logout(ctx.Request.Context(), claims); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "로그아웃되었습니다."})
}

// Me godoc
// @Summary Token claims of the caller
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AuthMeResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	claims, _ := auth.ClaimsFrom(ctx)
	groups := claims.Groups
	if groups == nil {
		groups = []string{}
	}
	ctx.JSON(http.StatusOK, dto.AuthMeResponseDTO{
		Sub:      claims.Subject,
		Username: claims.Username,
		Groups:   groups,
		IsAdmin:  claims.IsAdmin(),
	})
}
