package service

import (
	"context"
	"testing"

	"neighborlift/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) MarkCompletionNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error {
	args := m.Called(ctx, userID, requestType, requestID)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkReviewNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error {
	args := m.Called(ctx, userID, requestType, requestID)
	return args.Error(0)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (*model.BadgeCounts, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BadgeCounts), args.Error(1)
}

func (m *mockNotificationRepo) SubmitCompletionResponse(ctx context.Context, reminderID uuid.UUID, completed bool) error {
	args := m.Called(ctx, reminderID, completed)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) error {
	args := m.Called(ctx, threadID, userID)
	return args.Error(0)
}

type mockBadgeStore struct {
	mock.Mock
}

func (m *mockBadgeStore) Set(ctx context.Context, userID uuid.UUID, counts model.BadgeCounts) error {
	args := m.Called(ctx, userID, counts)
	return args.Error(0)
}

func (m *mockBadgeStore) Get(ctx context.Context, userID uuid.UUID) (*model.BadgeCounts, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BadgeCounts), args.Error(1)
}

func TestSideEffectsService_RefreshBadgesRecomputesFromStore(t *testing.T) {
	repo := &mockNotificationRepo{}
	store := &mockBadgeStore{}
	s := NewSideEffectsService(repo, store, zap.NewNop())
	userID := uuid.New()

	counts := &model.BadgeCounts{Rides: 1, Messages: 2}
	repo.On("CountUnread", mock.Anything, userID).Return(counts, nil)
	store.On("Set", mock.Anything, userID, *counts).Return(nil)

	err := s.RefreshBadges(context.Background(), userID, "test")
	assert.NoError(t, err)

	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestSideEffectsService_MarkThreadReadRefreshesBadges(t *testing.T) {
	repo := &mockNotificationRepo{}
	store := &mockBadgeStore{}
	s := NewSideEffectsService(repo, store, zap.NewNop())
	userID := uuid.New()
	threadID := uuid.New()

	repo.On("MarkThreadRead", mock.Anything, threadID, userID).Return(nil)
	counts := &model.BadgeCounts{}
	repo.On("CountUnread", mock.Anything, userID).Return(counts, nil)
	store.On("Set", mock.Anything, userID, *counts).Return(nil)

	err := s.MarkThreadRead(context.Background(), userID, threadID)
	assert.NoError(t, err)

	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestSideEffectsService_RefreshBadgesPropagatesCountError(t *testing.T) {
	repo := &mockNotificationRepo{}
	store := &mockBadgeStore{}
	s := NewSideEffectsService(repo, store, zap.NewNop())
	userID := uuid.New()

	repo.On("CountUnread", mock.Anything, userID).Return(nil, assert.AnError)

	err := s.RefreshBadges(context.Background(), userID, "test")
	assert.ErrorIs(t, err, assert.AnError)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}
