package api

import (
	"errors"
	"net/http"
	"time"

	"neighborlift/internal/service"
	"neighborlift/pkg/auth"
	"neighborlift/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.JWTAuth) {
	r := &userRoutes{us: us}
	h := handler.Group("/users")
	h.Use(a.AuthMiddleware())
	{
		h.GET("/me", r.GetMe)
		h.PATCH("/me/telegram", r.LinkTelegramChat)
	}
}

type UserResponse struct {
	ID               string    `json:"id"`
	Handle           string    `json:"handle"`
	DisplayName      string    `json:"display_name"`
	TelegramLinked   bool      `json:"telegram_linked"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (r *userRoutes) GetMe(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := r.us.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:               user.ID.String(),
		Handle:           user.Handle,
		DisplayName:      user.DisplayName,
		TelegramLinked:   user.TelegramChatID != nil,
		RegistrationDate: user.RegistrationDate,
	})
}

type LinkTelegramRequest struct {
	ChatID *int64 `json:"chat_id"`
}

// LinkTelegramChat binds the caller's Telegram chat for push pings; a null
// chat id unbinds it.
func (r *userRoutes) LinkTelegramChat(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req LinkTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := r.us.LinkTelegramChat(c.Request.Context(), userID, req.ChatID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to link telegram chat", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
