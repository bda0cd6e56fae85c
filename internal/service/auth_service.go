package service

import (
	"context"
	"time"

	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/auth"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/rs/zerolog/log"
)

const MsgRegistered = "회원가입이 완료되었습니다. 이메일로 전송된 인증 코드를 확인해주세요."

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequestDTO) (*dto.RegisterResponseDTO, error)
	ConfirmEmail(ctx context.Context, req dto.ConfirmEmailRequestDTO) error
	Login(ctx context.Context, req dto.LoginRequestDTO) (*dto.TokenResponseDTO, error)
	Refresh(ctx context.Context, req dto.RefreshTokenRequestDTO) (*dto.TokenResponseDTO, error)
	ChangePassword(ctx context.Context, accessToken string, req dto.ChangePasswordRequestDTO) error
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequestDTO) error
	ConfirmForgotPassword(ctx context.Context, req dto.ConfirmForgotPasswordRequestDTO) error
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	provider IdentityProvider
	userRepo repository.UserRepository
	denylist auth.Denylist
	timeout  time.Duration
}

func NewAuthService(provider IdentityProvider, userRepo repository.UserRepository, denylist auth.Denylist, cfg *config.Config) AuthService {
	return &authService{provider: provider, userRepo: userRepo, denylist: denylist, timeout: cfg.RemoteTTL}
}

func (s *authService) remote(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Register creates the provider account first and the local profile second.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequestDTO) (*dto.RegisterResponseDTO, error) {
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apperr.Persistence("사용자 정보를 확인하지 못했습니다.", err)
	}
	if exists {
		return nil, apperr.Conflict("이미 사용 중인 아이디 또는 이메일입니다.", nil)
	}

	rctx, cancel := s.remote(ctx)
	defer cancel()
	res, err := s.provider.SignUp(rctx, req.Username, req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", req.Username).Msg("Register: provider sign-up failed")
		return nil, err
	}

	sub := res.Sub
	user := &model.User{Username: req.Username, Email: req.Email, ExternalID: &sub}
	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Error().Err(err).Str("username", req.Username).Str("sub", sub).Msg("Register: provider user created but local profile failed")
		return nil, apperr.Persistence("사용자 정보 저장에 실패했습니다.", err)
	}
	log.Info().Str("userID", user.ID).Str("sub", sub).Msg("User registered")
	return &dto.RegisterResponseDTO{UserID: user.ID, Sub: sub, Confirmed: res.Confirmed, Message: MsgRegistered}, nil
}

func (s *authService) ConfirmEmail(ctx context.Context, req dto.ConfirmEmailRequestDTO) error {
	rctx, cancel := s.remote(ctx)
	defer cancel()
	return s.provider.ConfirmSignUp(rctx, req.Username, req.Code)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequestDTO) (*dto.TokenResponseDTO, error) {
	rctx, cancel := s.remote(ctx)
	defer cancel()
	tokens, err := s.provider.SignIn(rctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return tokenResponse(tokens), nil
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshTokenRequestDTO) (*dto.TokenResponseDTO, error) {
	rctx, cancel := s.remote(ctx)
	defer cancel()
	tokens, err := s.provider.Refresh(rctx, req.Username, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return tokenResponse(tokens), nil
}

func tokenResponse(t *AuthTokens) *dto.TokenResponseDTO {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &dto.TokenResponseDTO{
		AccessToken:  t.AccessToken,
		IDToken:      t.IDToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		TokenType:    tokenType,
	}
}

func (s *authService) ChangePassword(ctx context.Context, accessToken string, req dto.ChangePasswordRequestDTO) error {
	rctx, cancel := s.remote(ctx)
	defer cancel()
	return s.provider.ChangePassword(rctx, accessToken, req.PreviousPassword, req.ProposedPassword)
}

func (s *authService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequestDTO) error {
	rctx, cancel := s.remote(ctx)
	defer cancel()
	return s.provider.ForgotPassword(rctx, req.Username)
}

func (s *authService) ConfirmForgotPassword(ctx context.Context, req dto.ConfirmForgotPasswordRequestDTO) error {
	rctx, cancel := s.remote(ctx)
	defer cancel()
	return s.provider.ConfirmForgotPassword(rctx, req.Username, req.Code, req.NewPassword)
}

// Logout signs the user out everywhere and denylists the presented token until it expires.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims.TokenUse == "access" {
		rctx, cancel := s.remote(ctx)
		defer cancel()
		if err := s.provider.GlobalSignOut(rctx, claims.Raw); err != nil {
			return err
		}
	}
	if err := s.denylist.Revoke(ctx, claims.Raw, time.Until(claims.ExpiresAt)); err != nil {
		log.Error().Err(err).Str("sub", claims.Subject).Msg("Logout: failed to denylist token")
		return apperr.Upstream("로그아웃 처리에 실패했습니다.", err)
	}
	log.Info().Str("sub", claims.Subject).Msg("User logged out")
	return nil
}
