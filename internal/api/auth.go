package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 24 * time.Hour

// AuthHandler serves the only public endpoint besides health. The team
// shares one passphrase whose bcrypt hash is configured as ACCESS_HASH;
// the email identifies the user in history entries and preferences.
type AuthHandler struct {
	accessHash []byte
	jwtSecret  string
	logger     *zap.Logger
}

func NewAuthHandler(accessHash, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accessHash: []byte(accessHash),
		jwtSecret:  jwtSecret,
		logger:     logger,
	}
}

type loginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name"`
	Passphrase string `json:"passphrase" binding:"required"`
}

type authResponse struct {
	Token string `json:"token"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	// Same message for a missing hash and a wrong passphrase.
	if len(h.accessHash) == 0 ||
		bcrypt.CompareHashAndPassword(h.accessHash, []byte(req.Passphrase)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	token, err := auth.GenerateToken(email, req.Name, h.jwtSecret, sessionTTL)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.logger.Info("user logged in", zap.String("email", email))
	c.JSON(http.StatusOK, authResponse{Token: token})
}
