package dto

type RegisterRequestDTO struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterResponseDTO struct {
	UserID    string `json:"user_id"`
	Sub       string `json:"sub"`
	Confirmed bool   `json:"confirmed"`
	Message   string `json:"message"`
}

type ConfirmEmailRequestDTO struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type LoginRequestDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequestDTO struct {
	Username     string `json:"username" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequestDTO struct {
	PreviousPassword string `json:"previous_password" binding:"required"`
	ProposedPassword string `json:"proposed_password" binding:"required,min=8"`
}

type ForgotPasswordRequestDTO struct {
	Username string `json:"username" binding:"required"`
}

type ConfirmForgotPasswordRequestDTO struct {
	Username    string `json:"username" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type TokenResponseDTO struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type AuthMeResponseDTO struct {
	Sub      string   `json:"sub"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
	IsAdmin  bool     `json:"is_admin"`
}
