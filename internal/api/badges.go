package api

import (
	"net/http"

	"neighborlift/internal/service"
	"neighborlift/pkg/auth"
	"neighborlift/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type badgeRoutes struct {
	bs service.BadgeServiceI
}

func NewBadgeRoutes(handler *gin.RouterGroup, bs service.BadgeServiceI, a *auth.JWTAuth) {
	r := &badgeRoutes{bs: bs}
	h := handler.Group("/badges")
	h.Use(a.AuthMiddleware())
	{
		h.GET("/", r.GetBadges)
		h.POST("/threads/:thread_id/read", r.MarkThreadRead)
	}
}

type BadgeResponse struct {
	Rides    int `json:"rides"`
	Favors   int `json:"favors"`
	TownHall int `json:"town_hall"`
	Messages int `json:"messages"`
	Total    int `json:"total"`
}

func (r *badgeRoutes) GetBadges(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	counts, err := r.bs.Badges(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to load badges", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, BadgeResponse{
		Rides:    counts.Rides,
		Favors:   counts.Favors,
		TownHall: counts.TownHall,
		Messages: counts.Messages,
		Total:    counts.Total(),
	})
}

// MarkThreadRead clears the caller's unread state for one chat thread and
// recomputes the message badge.
func (r *badgeRoutes) MarkThreadRead(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	if err := r.bs.MarkThreadRead(c.Request.Context(), userID, threadID); err != nil {
		log.Error("failed to mark thread read",
			zap.String("user_id", userID.String()),
			zap.String("thread_id", threadID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
