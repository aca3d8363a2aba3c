package api

import (
	"errors"
	"net/http"
	"time"

	"neighborlift/internal/model"
	"neighborlift/internal/prompt"
	"neighborlift/internal/repository"
	"neighborlift/internal/service"
	"neighborlift/pkg/auth"
	"neighborlift/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type promptRoutes struct {
	ps service.PromptServiceI
	rs service.ReviewServiceI
}

func NewPromptRoutes(handler *gin.RouterGroup, ps service.PromptServiceI, rs service.ReviewServiceI, a *auth.JWTAuth) {
	r := &promptRoutes{ps: ps, rs: rs}
	h := handler.Group("/prompts")
	h.Use(a.AuthMiddleware())
	{
		h.GET("/active", r.GetActivePrompt)
		h.POST("/reconcile", r.Reconcile)
		h.POST("/completion", r.EnqueueCompletion)
		h.POST("/review", r.EnqueueReview)
		h.POST("/completion/response", r.RespondToCompletion)
		h.POST("/review/finish", r.FinishReview)
		h.POST("/review/submit", r.SubmitReview)
		h.DELETE("/session", r.EndSession)
	}
}

type PromptResponse struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	RequestType   string     `json:"request_type"`
	RequestID     string     `json:"request_id"`
	RequestTitle  string     `json:"request_title"`
	SortDate      time.Time  `json:"sort_date"`
	ReminderID    *string    `json:"reminder_id,omitempty"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	FulfillerID   *string    `json:"fulfiller_id,omitempty"`
	FulfillerName string     `json:"fulfiller_name,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

type ActivePromptResponse struct {
	Prompt  *PromptResponse `json:"prompt"`
	Pending int             `json:"pending"`
}

func toPromptResponse(item *model.PromptItem) *PromptResponse {
	if item == nil {
		return nil
	}
	resp := &PromptResponse{
		ID:          item.ID().String(),
		Kind:        item.Kind.String(),
		RequestType: string(item.RequestType()),
		RequestID:   item.RequestID().String(),
		SortDate:    item.SortDate(),
	}
	switch item.Kind {
	case model.PromptKindCompletion:
		reminderID := item.Completion.ReminderID.String()
		dueAt := item.Completion.DueAt
		resp.RequestTitle = item.Completion.RequestTitle
		resp.ReminderID = &reminderID
		resp.DueAt = &dueAt
	case model.PromptKindReview:
		fulfillerID := item.Review.FulfillerID.String()
		createdAt := item.Review.CreatedAt
		resp.RequestTitle = item.Review.RequestTitle
		resp.FulfillerID = &fulfillerID
		resp.FulfillerName = item.Review.FulfillerName
		resp.CreatedAt = &createdAt
	}
	return resp
}

// GetActivePrompt returns the single prompt the UI should currently render,
// or a null prompt when the session is idle.
func (r *promptRoutes) GetActivePrompt(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, ActivePromptResponse{
		Prompt:  toPromptResponse(r.ps.ActivePrompt(userID)),
		Pending: r.ps.PendingCount(userID),
	})
}

func (r *promptRoutes) Reconcile(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := r.ps.Reconcile(c.Request.Context(), userID); err != nil {
		log.Warn("reconcile failed", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to sync prompts"})
		return
	}

	c.JSON(http.StatusOK, ActivePromptResponse{
		Prompt:  toPromptResponse(r.ps.ActivePrompt(userID)),
		Pending: r.ps.PendingCount(userID),
	})
}

type EnqueueRequest struct {
	RequestType string `json:"request_type" binding:"required"`
	RequestID   string `json:"request_id" binding:"required"`
}

func (r *promptRoutes) enqueue(c *gin.Context, enqueue func(userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID)) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	requestType := model.RequestType(req.RequestType)
	if !requestType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request type"})
		return
	}
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	enqueue(userID, requestType, requestID)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// EnqueueCompletion is called by a screen that just watched a request become
// eligible for its completion check, ahead of the next reconcile.
func (r *promptRoutes) EnqueueCompletion(c *gin.Context) {
	r.enqueue(c, func(userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) {
		r.ps.EnqueueCompletion(c.Request.Context(), userID, requestType, requestID)
	})
}

func (r *promptRoutes) EnqueueReview(c *gin.Context) {
	r.enqueue(c, func(userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) {
		r.ps.EnqueueReview(c.Request.Context(), userID, requestType, requestID)
	})
}

type CompletionResponseRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (r *promptRoutes) RespondToCompletion(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CompletionResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.ps.RespondToCompletion(c.Request.Context(), userID, *req.Completed)
	if err != nil {
		if errors.Is(err, prompt.ErrNoActivePrompt) || errors.Is(err, prompt.ErrWrongPromptKind) {
			c.JSON(http.StatusConflict, gin.H{"error": "no completion prompt is active"})
			return
		}
		log.Error("failed to submit completion response",
			zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to submit response, please retry"})
		return
	}

	c.JSON(http.StatusOK, ActivePromptResponse{
		Prompt:  toPromptResponse(r.ps.ActivePrompt(userID)),
		Pending: r.ps.PendingCount(userID),
	})
}

func (r *promptRoutes) FinishReview(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := r.ps.FinishReview(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, prompt.ErrNoActivePrompt) || errors.Is(err, prompt.ErrWrongPromptKind) {
			c.JSON(http.StatusConflict, gin.H{"error": "no review prompt is active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ActivePromptResponse{
		Prompt:  toPromptResponse(r.ps.ActivePrompt(userID)),
		Pending: r.ps.PendingCount(userID),
	})
}

type SubmitReviewRequest struct {
	RequestType string `json:"request_type" binding:"required"`
	RequestID   string `json:"request_id" binding:"required"`
	FulfillerID string `json:"fulfiller_id" binding:"required"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	Skipped     bool   `json:"skipped"`
}

// SubmitReview stores the rating (or an explicit skip) and clears the
// matching review prompt.
func (r *promptRoutes) SubmitReview(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	fulfillerID, err := uuid.Parse(req.FulfillerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fulfiller id"})
		return
	}

	review := &repository.Review{
		RequestType: model.RequestType(req.RequestType),
		RequestID:   requestID,
		FulfillerID: fulfillerID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Skipped:     req.Skipped,
	}
	if err := r.rs.SubmitReview(c.Request.Context(), userID, review); err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request type"})
			return
		}
		log.Error("failed to submit review",
			zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit review"})
		return
	}

	c.JSON(http.StatusOK, ActivePromptResponse{
		Prompt:  toPromptResponse(r.ps.ActivePrompt(userID)),
		Pending: r.ps.PendingCount(userID),
	})
}

// EndSession drops the caller's coordinator; used on logout.
func (r *promptRoutes) EndSession(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	r.ps.EndSession(userID)
	c.JSON(http.StatusOK, gin.H{"status": "session ended"})
}
