package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChiefGuap/divvit2.0/internal/auth"
	"github.com/ChiefGuap/divvit2.0/internal/models"
)

// AuthHandlers serves registration and login.
type AuthHandlers struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthHandlers creates auth handlers backed by the given
// authenticator and token manager.
func NewAuthHandlers(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthHandlers {
	return &AuthHandlers{authenticator: authenticator, jwtManager: jwtManager}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *AuthHandlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authenticator.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Info("User registered", "user_id", user.ID)
	h.respondWithSession(c, http.StatusCreated, user)
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authenticator.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.respondWithSession(c, http.StatusOK, user)
}

func (h *AuthHandlers) respondWithSession(c *gin.Context, status int, user *models.User) {
	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, sessionResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName},
	})
}
