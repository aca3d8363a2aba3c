package service

import (
	"context"
	"errors"

	"neighborlift/internal/model"
	"neighborlift/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidRequest = errors.New("invalid request")
)

type PromptServiceI interface {
	ActivePrompt(userID uuid.UUID) *model.PromptItem
	PendingCount(userID uuid.UUID) int
	Reconcile(ctx context.Context, userID uuid.UUID) error
	EnqueueCompletion(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID)
	EnqueueReview(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID)
	RespondToCompletion(ctx context.Context, userID uuid.UUID, completed bool) error
	FinishReview(ctx context.Context, userID uuid.UUID) error
	EndSession(userID uuid.UUID)
}

type ReviewServiceI interface {
	SubmitReview(ctx context.Context, userID uuid.UUID, review *repository.Review) error
}

type BadgeServiceI interface {
	Badges(ctx context.Context, userID uuid.UUID) (*model.BadgeCounts, error)
	MarkThreadRead(ctx context.Context, userID, threadID uuid.UUID) error
}

type UserServiceI interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	LinkTelegramChat(ctx context.Context, userID uuid.UUID, chatID *int64) error
}

// NotificationRepository covers the side-effect writes and badge reads
// against the primary store.
type NotificationRepository interface {
	MarkCompletionNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error
	MarkReviewNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (*model.BadgeCounts, error)
	SubmitCompletionResponse(ctx context.Context, reminderID uuid.UUID, completed bool) error
	MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) error
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *repository.Review) error
}

type UserRepository interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	SetTelegramChatID(ctx context.Context, userID uuid.UUID, chatID *int64) error
}

// BadgeStore is the derived-counts cache the UI tab bar reads from.
type BadgeStore interface {
	Set(ctx context.Context, userID uuid.UUID, counts model.BadgeCounts) error
	Get(ctx context.Context, userID uuid.UUID) (*model.BadgeCounts, error)
}
