package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staffdesk/staffdesk/internal/config"
	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/internal/sessions"
	"github.com/staffdesk/staffdesk/internal/tokens"
	"github.com/staffdesk/staffdesk/pkg/logger"
)

// CredentialsRequest carries a name/secret pair for setup and login.
type CredentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	recordsSvc  *records.Service
	sessionsSvc *sessions.Service
}

func NewAuthHandler(cfg *config.Config, r *records.Service, s *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, recordsSvc: r, sessionsSvc: s}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/setup", h.Setup)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// Setup creates the superadmin account. Rejected when an account with the
// same name already exists.
func (h *AuthHandler) Setup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.recordsSvc.CreateSuperadmin(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": u})
}

// Login verifies credentials and returns an access token plus a refresh
// session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.cfg.JWT.Secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication not configured"})
		return
	}

	u, err := h.recordsSvc.Login(req.Name, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	refresh, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.ID(), h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         u,
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Refresh accepts a refresh token and returns a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.sessionsSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	u := h.recordsSvc.GetUser(sess.UserID)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": access,
		"expiresIn":   int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Logout deletes the refresh session and blacklists the presented access
// token for the remainder of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RefreshToken != "" {
		if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
			logger.Warnf("failed to delete refresh session: %v", err)
		}
	}
	var bearer string
	if n, _ := fmt.Sscanf(c.GetHeader("Authorization"), "Bearer %s", &bearer); n == 1 {
		if err := sessions.BlacklistAccessToken(c.Request.Context(), bearer, h.cfg.JWT.AccessTokenTTL); err != nil {
			logger.Warnf("failed to blacklist access token: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
