package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anirudhprmar/pushup-t3/internal/api/dto"
	"github.com/anirudhprmar/pushup-t3/internal/api/middleware"
	"github.com/anirudhprmar/pushup-t3/internal/domain/user"
	"github.com/anirudhprmar/pushup-t3/pkg/logger"
	"github.com/anirudhprmar/pushup-t3/pkg/security/auth"
)

type UsersHandler struct {
	service user.Service
	tokens  *auth.TokenManager
	logger  *logger.Logger
}

func NewUsersHandler(service user.Service, tokens *auth.TokenManager, log *logger.Logger) *UsersHandler {
	return &UsersHandler{service: service, tokens: tokens, logger: log}
}

func (h *UsersHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("users handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

// Register creates a user and issues a token for them. Identity comes
// from the upstream auth provider; this endpoint only provisions the
// local account.
func (h *UsersHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	newUser := &user.User{
		Email: req.Email,
		Name:  req.Name,
		Image: req.Image,
	}
	if err := h.service.Register(c.Request.Context(), newUser); err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(newUser.ID, newUser.Email)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": newUser, "token": token})
}

func (h *UsersHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	profile, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UsersHandler) UpdateMe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	updated := &user.User{
		ID:       userID,
		Name:     req.Name,
		Image:    req.Image,
		Timezone: req.Timezone,
	}
	if err := h.service.UpdateProfile(c.Request.Context(), updated); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) Leaderboard(c *gin.Context) {
	entries, err := h.service.Leaderboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
