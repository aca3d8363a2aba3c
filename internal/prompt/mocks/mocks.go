package mocks

import (
	"context"

	"neighborlift/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) FetchDue(ctx context.Context, userID uuid.UUID) ([]*model.CompletionPrompt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CompletionPrompt), args.Error(1)
}

func (m *MockCompletionProvider) FetchDueForRequest(ctx context.Context, requestType model.RequestType, requestID, userID uuid.UUID) (*model.CompletionPrompt, error) {
	args := m.Called(ctx, requestType, requestID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompletionPrompt), args.Error(1)
}

type MockReviewProvider struct {
	mock.Mock
}

func (m *MockReviewProvider) FetchPending(ctx context.Context, userID uuid.UUID) ([]*model.ReviewPrompt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ReviewPrompt), args.Error(1)
}

func (m *MockReviewProvider) FetchPendingForRequest(ctx context.Context, requestType model.RequestType, requestID, userID uuid.UUID) (*model.ReviewPrompt, error) {
	args := m.Called(ctx, requestType, requestID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReviewPrompt), args.Error(1)
}

type MockSideEffects struct {
	mock.Mock
}

func (m *MockSideEffects) MarkReviewNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error {
	args := m.Called(ctx, userID, requestType, requestID)
	return args.Error(0)
}

func (m *MockSideEffects) MarkCompletionNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error {
	args := m.Called(ctx, userID, requestType, requestID)
	return args.Error(0)
}

func (m *MockSideEffects) RefreshBadges(ctx context.Context, userID uuid.UUID, reason string) error {
	args := m.Called(ctx, userID, reason)
	return args.Error(0)
}

func (m *MockSideEffects) SubmitCompletionResponse(ctx context.Context, reminderID uuid.UUID, completed bool) error {
	args := m.Called(ctx, reminderID, completed)
	return args.Error(0)
}
