package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeVerifier map[string]*Claims

func (f fakeVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, ErrInvalidToken
}

type fakeDenylist struct {
	revoked map[string]bool
	err     error
}

func (d fakeDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error { return nil }
func (d fakeDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	return d.revoked[token], d.err
}

func newRouter(mw *Middleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) {
		claims, found := ClaimsFrom(c)
		if found {
			c.String(http.StatusOK, claims.Subject)
			return
		}
		c.String(http.StatusOK, "anonymous")
	}
	r.GET("/optional", mw.OptionalAuth(), ok)
	r.GET("/required", mw.RequireAuth(), ok)
	r.GET("/admin", mw.RequireAuth(), mw.RequireAdmin(), ok)
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	verifier := fakeVerifier{
		"user":    {Subject: "u"},
		"admin":   {Subject: "a", Groups: []string{AdminGroup}},
		"revoked": {Subject: "r"},
	}
	r := newRouter(NewMiddleware(verifier, fakeDenylist{revoked: map[string]bool{"revoked": true}}))

	tests := []struct {
		path, token string
		status      int
		body        string
	}{
		{"/optional", "", http.StatusOK, "anonymous"},
		{"/optional", "user", http.StatusOK, "u"},
		{"/optional", "bogus", http.StatusUnauthorized, ""},
		{"/required", "", http.StatusUnauthorized, ""},
		{"/required", "user", http.StatusOK, "u"},
		{"/required", "revoked", http.StatusUnauthorized, ""},
		{"/admin", "user", http.StatusForbidden, ""},
		{"/admin", "admin", http.StatusOK, "a"},
	}
	for _, tc := range tests {
		w := do(r, tc.path, tc.token)
		if w.Code != tc.status {
			t.Errorf("%s with %q: status %d, want %d", tc.path, tc.token, w.Code, tc.status)
			continue
		}
		if tc.body != "" && w.Body.String() != tc.body {
			t.Errorf("%s with %q: body %q", tc.path, tc.token, w.Body.String())
		}
	}
}

func TestMiddlewareDenylistOutage(t *testing.T) {
	r := newRouter(NewMiddleware(fakeVerifier{"user": {Subject: "u"}}, fakeDenylist{err: errors.New("redis down")}))
	if w := do(r, "/required", "user"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", w.Code)
	}
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for header, want := range map[string]string{
		"Bearer abc":  "abc",
		"bearer  abc": "abc",
		"Basic abc":   "",
		"abc":         "",
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", header)
		if got := BearerToken(c); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
