// Package auth verifies identity-provider tokens and exposes them to gin handlers.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jumptop/ITOP/config"
)

const AdminGroup = "admin"

var ErrInvalidToken = errors.New("invalid token")

// Claims is what the rest of the service needs from a verified token.
type Claims struct {
	Subject   string
	Username  string
	Groups    []string
	TokenUse  string
	ExpiresAt time.Time
	Raw       string
}

func (c *Claims) IsAdmin() bool {
	return c != nil && slices.Contains(c.Groups, AdminGroup)
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// JWKSVerifier checks RS256 tokens issued by a Cognito user pool.
type JWKSVerifier struct {
	issuer   string
	clientID string
	keys     *jwksCache
}

func NewJWKSVerifier(cfg *config.Config) *JWKSVerifier {
	issuer := cfg.Cognito.Issuer(cfg.AWS.Region)
	return NewVerifier(issuer, cfg.Cognito.ClientID, issuer+"/.well-known/jwks.json", nil)
}

func NewVerifier(issuer, clientID, jwksURL string, httpClient *http.Client) *JWKSVerifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSVerifier{
		issuer:   issuer,
		clientID: clientID,
		keys:     newJWKSCache(httpClient, jwksURL),
	}
}

func (v *JWKSVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.keys.getKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if tok == nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	use, _ := claims["token_use"].(string)
	switch use {
	case "access":
		if cid, _ := claims["client_id"].(string); cid != v.clientID {
			return nil, fmt.Errorf("%w: client_id mismatch", ErrInvalidToken)
		}
	case "id":
		if !audContains(claims["aud"], v.clientID) {
			return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected token_use %q", ErrInvalidToken, use)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	exp, _ := claims.GetExpirationTime()

	out := &Claims{Subject: sub, TokenUse: use, Raw: tokenString}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	if u, _ := claims["username"].(string); u != "" {
		out.Username = u
	} else if u, _ := claims["cognito:username"].(string); u != "" {
		out.Username = u
	}
	if groups, ok := claims["cognito:groups"].([]any); ok {
		for _, g := range groups {
			if s, ok := g.(string); ok {
				out.Groups = append(out.Groups, s)
			}
		}
	}
	return out, nil
}

func audContains(aud any, required string) bool {
	switch v := aud.(type) {
	case string:
		return v == required
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok && s == required {
				return true
			}
		}
	}
	return false
}

type jwksCache struct {
	httpClient *http.Client
	url        string

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	ttl       time.Duration
}

func newJWKSCache(httpClient *http.Client, url string) *jwksCache {
	return &jwksCache{
		httpClient: httpClient,
		url:        url,
		keys:       map[string]*rsa.PublicKey{},
		ttl:        6 * time.Hour,
	}
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (j *jwksCache) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	j.mu.RLock()
	key := j.keys[kid]
	stale := time.Since(j.fetchedAt) > j.ttl
	j.mu.RUnlock()

	if key != nil && !stale {
		return key, nil
	}

	if err := j.refresh(ctx); err != nil {
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	key = j.keys[kid]
	if key == nil {
		return nil, fmt.Errorf("kid not found in jwks: %s", kid)
	}
	return key, nil
}

func (j *jwksCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return err
	}
	res, err := j.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("jwks fetch failed: %s", res.Status)
	}

	var set jwkSet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return err
	}

	next := map[string]*rsa.PublicKey{}
	for _, k := range set.Keys {
		if k.Kty != "RSA" || strings.TrimSpace(k.Kid) == "" {
			continue
		}
		if pub, err := rsaFromModExp(k.N, k.E); err == nil {
			next[k.Kid] = pub
		}
	}
	if len(next) == 0 {
		return fmt.Errorf("jwks contained no usable keys")
	}

	j.mu.Lock()
	j.keys = next
	j.fetchedAt = time.Now()
	j.mu.Unlock()
	return nil
}

func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
