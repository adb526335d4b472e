package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/staffdesk/staffdesk/internal/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	claims map[string]interface{}
}

func (f *fakeToken) Claims(v interface{}) error {
	p, ok := v.(*map[string]interface{})
	if !ok {
		return errors.New("unsupported claims target")
	}
	*p = f.claims
	return nil
}

type fakeVerifier struct {
	token Token
	err   error
}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	return f.token, f.err
}

func newAuthRouter(ver Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(ver), func(c *gin.Context) {
		claims, _ := c.Get("claims")
		c.JSON(http.StatusOK, claims)
	})
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	ver := &fakeVerifier{token: &fakeToken{claims: map[string]interface{}{"sub": "u1"}}}
	r := newAuthRouter(ver)

	w := get(r, "Bearer good-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sub":"u1"`)
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	ver := &fakeVerifier{token: &fakeToken{claims: map[string]interface{}{}}}
	r := newAuthRouter(ver)

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsFailedVerification(t *testing.T) {
	ver := &fakeVerifier{err: errors.New("signature mismatch")}
	r := newAuthRouter(ver)

	w := get(r, "Bearer bad-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestAuthMiddlewareRejectsBlacklistedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions.SetBlacklistClient(client)
	t.Cleanup(func() { sessions.SetBlacklistClient(nil) })

	require.NoError(t, sessions.BlacklistAccessToken(context.Background(), "revoked-token", time.Minute))

	ver := &fakeVerifier{token: &fakeToken{claims: map[string]interface{}{"sub": "u1"}}}
	r := newAuthRouter(ver)

	w := get(r, "Bearer revoked-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token revoked")

	// a different token from the same user still passes
	w = get(r, "Bearer fresh-token")
	assert.Equal(t, http.StatusOK, w.Code)
}
