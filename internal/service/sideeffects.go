package service

import (
	"context"
	"fmt"

	"neighborlift/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SideEffectsService implements prompt.SideEffects on top of the primary
// store and the badge cache, and doubles as the badge read service for the
// API layer.
type SideEffectsService struct {
	notifications NotificationRepository
	badges        BadgeStore
	log           *zap.Logger
}

func NewSideEffectsService(notifications NotificationRepository, badges BadgeStore, log *zap.Logger) *SideEffectsService {
	return &SideEffectsService{
		notifications: notifications,
		badges:        badges,
		log:           log,
	}
}

func (s *SideEffectsService) MarkCompletionNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error {
	err := s.notifications.MarkCompletionNotificationsRead(ctx, userID, requestType, requestID)
	if err != nil {
		return fmt.Errorf("failed to mark completion notifications read: %w", err)
	}
	return nil
}

func (s *SideEffectsService) MarkReviewNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error {
	err := s.notifications.MarkReviewNotificationsRead(ctx, userID, requestType, requestID)
	if err != nil {
		return fmt.Errorf("failed to mark review notifications read: %w", err)
	}
	return nil
}

// RefreshBadges recomputes the user's unread counts from the primary store
// and replaces the cached entry.
func (s *SideEffectsService) RefreshBadges(ctx context.Context, userID uuid.UUID, reason string) error {
	counts, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count unread notifications: %w", err)
	}
	if err := s.badges.Set(ctx, userID, *counts); err != nil {
		return fmt.Errorf("failed to store badge counts: %w", err)
	}
	s.log.Debug("refreshed badges",
		zap.String("user_id", userID.String()),
		zap.String("reason", reason),
		zap.Int("total", counts.Total()))
	return nil
}

func (s *SideEffectsService) SubmitCompletionResponse(ctx context.Context, reminderID uuid.UUID, completed bool) error {
	err := s.notifications.SubmitCompletionResponse(ctx, reminderID, completed)
	if err != nil {
		return fmt.Errorf("failed to submit completion response: %w", err)
	}
	return nil
}

// MarkThreadRead stamps the user as a reader of every message in the thread
// and brings the message badge back down.
func (s *SideEffectsService) MarkThreadRead(ctx context.Context, userID, threadID uuid.UUID) error {
	if err := s.notifications.MarkThreadRead(ctx, threadID, userID); err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return s.RefreshBadges(ctx, userID, "thread read")
}

// Badges serves the UI's tab bar from the cache.
func (s *SideEffectsService) Badges(ctx context.Context, userID uuid.UUID) (*model.BadgeCounts, error) {
	counts, err := s.badges.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge counts: %w", err)
	}
	return counts, nil
}
