package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staffdesk/staffdesk/internal/config"
	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/internal/sessions"
	"github.com/staffdesk/staffdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	svc, err := records.NewService(context.Background(), st, nil, records.NewBcryptHasher(4))
	require.NoError(t, err)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
	}
	sess := sessions.NewService(sessions.NewMemoryRepository())
	r := gin.New()
	NewAuthHandler(cfg, svc, sess).Register(r.Group("/"))
	return r
}

func TestSetupThenLoginFlow(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/auth/setup", `{"name":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var setup map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &setup))
	user := setup["user"].(map[string]any)
	assert.Equal(t, "superadmin", user["role"])
	assert.NotContains(t, user, "password")

	// second setup with the same name is rejected
	w = doJSON(r, http.MethodPost, "/auth/setup", `{"name":"admin","password":"other"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", `{"name":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login["accessToken"])
	assert.NotEmpty(t, login["refreshToken"])
	u := login["user"].(map[string]any)
	assert.Equal(t, "admin", u["name"])
	assert.NotContains(t, u, "password")
}

func TestSetupValidation(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/auth/setup", `{"name":"","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(r, http.MethodPost, "/auth/setup", `{"name":"admin","password":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/auth/setup", `{"name":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	wrongPass := doJSON(r, http.MethodPost, "/auth/login", `{"name":"admin","password":"nope"}`)
	unknownUser := doJSON(r, http.MethodPost, "/auth/login", `{"name":"ghost","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	// same status and same body: the response never reveals whether the
	// account exists
	assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestRefreshAndLogout(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/auth/setup", `{"name":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(r, http.MethodPost, "/auth/login", `{"name":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	refresh := login["refreshToken"].(string)

	w = doJSON(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed["accessToken"])

	w = doJSON(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"not-a-session"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/logout", `{"refresh_token":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// the session is gone after logout
	w = doJSON(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWithoutSecretConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	svc, err := records.NewService(context.Background(), st, nil, records.NewBcryptHasher(4))
	require.NoError(t, err)
	cfg := &config.Config{}
	sess := sessions.NewService(sessions.NewMemoryRepository())
	r := gin.New()
	NewAuthHandler(cfg, svc, sess).Register(r.Group("/"))

	w := doJSON(r, http.MethodPost, "/auth/login", `{"name":"admin","password":"s3cret"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "authentication not configured")
}
