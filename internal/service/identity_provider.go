package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/apperr"
)

type AuthTokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

type SignUpResult struct {
	Sub       string
	Confirmed bool
}

// IdentityProvider is the remote user directory. Errors are already mapped to apperr kinds.
type IdentityProvider interface {
	SignUp(ctx context.Context, username, email, password string) (*SignUpResult, error)
	ConfirmSignUp(ctx context.Context, username, code string) error
	SignIn(ctx context.Context, username, password string) (*AuthTokens, error)
	Refresh(ctx context.Context, username, refreshToken string) (*AuthTokens, error)
	ChangePassword(ctx context.Context, accessToken, previous, proposed string) error
	ForgotPassword(ctx context.Context, username string) error
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error
	GlobalSignOut(ctx context.Context, accessToken string) error
}

type cognitoProvider struct {
	client       *cip.Client
	clientID     string
	clientSecret string
}

func NewCognitoProvider(awsCfg aws.Config, cfg *config.Config) IdentityProvider {
	return &cognitoProvider{
		client:       cip.NewFromConfig(awsCfg),
		clientID:     cfg.Cognito.ClientID,
		clientSecret: cfg.Cognito.ClientSecret,
	}
}

// SecretHash is base64(HMAC-SHA256(secret, username+clientID)).
func SecretHash(secret, username, clientID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (p *cognitoProvider) secretHash(username string) *string {
	if p.clientSecret == "" {
		return nil
	}
	return aws.String(SecretHash(p.clientSecret, username, p.clientID))
}

func (p *cognitoProvider) authParams(username string, params map[string]string) map[string]string {
	if h := p.secretHash(username); h != nil {
		params["SECRET_HASH"] = *h
	}
	return params
}

func (p *cognitoProvider) SignUp(ctx context.Context, username, email, password string) (*SignUpResult, error) {
	out, err := p.client.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(p.clientID),
		Username:   aws.String(username),
		Password:   aws.String(password),
		SecretHash: p.secretHash(username),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return nil, mapProviderError(err)
	}
	return &SignUpResult{Sub: aws.ToString(out.UserSub), Confirmed: out.UserConfirmed}, nil
}

func (p *cognitoProvider) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := p.client.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       p.secretHash(username),
	})
	return mapProviderError(err)
}

func (p *cognitoProvider) SignIn(ctx context.Context, username, password string) (*AuthTokens, error) {
	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: p.authParams(username, map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		}),
	})
	if err != nil {
		return nil, mapProviderError(err)
	}
	return tokensFrom(out)
}

func (p *cognitoProvider) Refresh(ctx context.Context, username, refreshToken string) (*AuthTokens, error) {
	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: p.authParams(username, map[string]string{
			"REFRESH_TOKEN": refreshToken,
		}),
	})
	if err != nil {
		return nil, mapProviderError(err)
	}
	return tokensFrom(out)
}

func tokensFrom(out *cip.InitiateAuthOutput) (*AuthTokens, error) {
	if out.ChallengeName != "" {
		return nil, apperr.Validation("추가 인증 절차가 필요합니다: " + string(out.ChallengeName))
	}
	res := out.AuthenticationResult
	if res == nil {
		return nil, apperr.Upstream("인증 결과가 없습니다.", errors.New("empty authentication result"))
	}
	return &AuthTokens{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresIn:    res.ExpiresIn,
		TokenType:    aws.ToString(res.TokenType),
	}, nil
}

func (p *cognitoProvider) ChangePassword(ctx context.Context, accessToken, previous, proposed string) error {
	_, err := p.client.ChangePassword(ctx, &cip.ChangePasswordInput{
		AccessToken:      aws.String(accessToken),
		PreviousPassword: aws.String(previous),
		ProposedPassword: aws.String(proposed),
	})
	return mapProviderError(err)
}

func (p *cognitoProvider) ForgotPassword(ctx context.Context, username string) error {
	_, err := p.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(p.clientID),
		Username:   aws.String(username),
		SecretHash: p.secretHash(username),
	})
	return mapProviderError(err)
}

func (p *cognitoProvider) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	_, err := p.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       p.secretHash(username),
	})
	return mapProviderError(err)
}

func (p *cognitoProvider) GlobalSignOut(ctx context.Context, accessToken string) error {
	_, err := p.client.GlobalSignOut(ctx, &cip.GlobalSignOutInput{AccessToken: aws.String(accessToken)})
	return mapProviderError(err)
}

// mapProviderError converts Cognito error codes into apperr kinds.
func mapProviderError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return apperr.Upstream("인증 서비스에 연결할 수 없습니다.", err)
	}
	msg := apiErr.ErrorMessage()
	switch apiErr.ErrorCode() {
	case "UsernameExistsException":
		return apperr.Conflict("이미 존재하는 사용자입니다.", err)
	case "UserNotConfirmedException":
		return apperr.Validation("이메일 인증이 완료되지 않았습니다.")
	case "NotAuthorizedException":
		return apperr.Unauthorized("아이디 또는 비밀번호가 올바르지 않습니다.")
	case "UserNotFoundException":
		return apperr.NotFound("사용자를 찾을 수 없습니다.")
	case "CodeMismatchException", "ExpiredCodeException", "InvalidPasswordException", "InvalidParameterException":
		return apperr.Validation(msg)
	default:
		return apperr.Upstream("인증 서비스 오류가 발생했습니다.", err)
	}
}
