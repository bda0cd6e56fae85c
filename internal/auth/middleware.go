package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/rs/zerolog/log"
)

const claimsKey = "auth.claims"

type Middleware struct {
	verifier Verifier
	denylist Denylist
}

func NewMiddleware(verifier Verifier, denylist Denylist) *Middleware {
	return &Middleware{verifier: verifier, denylist: denylist}
}

// RequireAuth rejects requests without a valid, unrevoked bearer token.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "인증 토큰이 필요합니다.")
			return
		}
		if !m.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches claims when a bearer token is present. A present but
// invalid token is still rejected.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		if !m.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "인증 토큰이 필요합니다.")
			return
		}
		if !claims.IsAdmin() {
			abort(c, http.StatusForbidden, "관리자 권한이 필요합니다.")
			return
		}
		c.Next()
	}
}

func (m *Middleware) authenticate(c *gin.Context, token string) bool {
	claims, err := m.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("Token verification failed")
		abort(c, http.StatusUnauthorized, "유효하지 않은 토큰입니다.")
		return false
	}
	revoked, err := m.denylist.IsRevoked(c.Request.Context(), token)
	if err != nil {
		log.Error().Err(err).Msg("Denylist lookup failed")
		abort(c, http.StatusServiceUnavailable, "인증 상태를 확인할 수 없습니다.")
		return false
	}
	if revoked {
		abort(c, http.StatusUnauthorized, "로그아웃된 토큰입니다.")
		return false
	}
	c.Set(claimsKey, claims)
	return true
}

func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Message: msg})
}
