package feed

import (
	"context"
	"testing"

	"neighborlift/internal/model"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueCompletion(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) {
	m.Called(ctx, userID, requestType, requestID)
}

func (m *mockEnqueuer) EnqueueReview(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) {
	m.Called(ctx, userID, requestType, requestID)
}

func (m *mockEnqueuer) ReconcileAll(ctx context.Context) {
	m.Called(ctx)
}

type mockBadges struct {
	mock.Mock
}

func (m *mockBadges) RefreshBadges(ctx context.Context, userID uuid.UUID, reason string) error {
	args := m.Called(ctx, userID, reason)
	return args.Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type mockPush struct {
	mock.Mock
}

func (m *mockPush) SendNotification(chatID int64, title, body string) error {
	args := m.Called(chatID, title, body)
	return args.Error(0)
}

type listenerFixture struct {
	prompts  *mockEnqueuer
	badges   *mockBadges
	users    *mockUsers
	push     *mockPush
	listener *Listener
}

func newListenerFixture() *listenerFixture {
	f := &listenerFixture{
		prompts: &mockEnqueuer{},
		badges:  &mockBadges{},
		users:   &mockUsers{},
		push:    &mockPush{},
	}
	f.listener = NewListener(Config{}, f.prompts, f.badges, f.users, f.push, zap.NewNop())
	return f
}

func frame(t *testing.T, v map[string]interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	assert.NoError(t, err)
	return b
}

func TestListener_ReminderDueFrameEnqueuesCompletion(t *testing.T) {
	f := newListenerFixture()
	userID := uuid.New()
	requestID := uuid.New()
	notificationID := uuid.New()

	f.prompts.On("EnqueueCompletion", mock.Anything, userID, model.RequestTypeRide, requestID).Once()
	f.badges.On("RefreshBadges", mock.Anything, userID, mock.Anything).Return(nil)
	f.users.On("GetUserByID", mock.Anything, userID).
		Return(&model.User{ID: userID}, nil)

	f.listener.handleFrame(context.Background(), frame(t, map[string]interface{}{
		"type": "reminder_due",
		"data": map[string]interface{}{
			"id":           notificationID.String(),
			"user_id":      userID.String(),
			"kind":         "reminder_due",
			"created_at":   "2025-03-01T09:00:00Z",
			"request_type": "ride",
			"request_id":   requestID.String(),
			"title":        "Did your ride happen?",
		},
	}))

	f.prompts.AssertExpectations(t)
	f.badges.AssertExpectations(t)
	// No telegram chat linked: nothing pushed.
	f.push.AssertNotCalled(t, "SendNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestListener_RequestCompletedFramePushesWhenLinked(t *testing.T) {
	f := newListenerFixture()
	userID := uuid.New()
	requestID := uuid.New()
	chatID := int64(4242)

	f.prompts.On("EnqueueReview", mock.Anything, userID, model.RequestTypeFavor, requestID).Once()
	f.badges.On("RefreshBadges", mock.Anything, userID, mock.Anything).Return(nil)
	f.users.On("GetUserByID", mock.Anything, userID).
		Return(&model.User{ID: userID, TelegramChatID: &chatID}, nil)
	f.push.On("SendNotification", chatID, "Favor completed", "").Return(nil).Once()

	f.listener.handleFrame(context.Background(), frame(t, map[string]interface{}{
		"event_type": "request_completed",
		"data": map[string]interface{}{
			"id":           uuid.New().String(),
			"userId":       userID.String(),
			"kind":         "request_completed",
			"createdAt":    "2025-03-01T09:00:00Z",
			"request_type": "favor",
			"requestId":    requestID.String(),
			"title":        "Favor completed",
		},
	}))

	f.prompts.AssertExpectations(t)
	f.push.AssertExpectations(t)
}

func TestListener_MessageFrameRefreshesRecipients(t *testing.T) {
	f := newListenerFixture()
	sender := uuid.New()
	recipient := uuid.New()

	f.badges.On("RefreshBadges", mock.Anything, recipient, mock.Anything).Return(nil).Once()

	f.listener.handleFrame(context.Background(), frame(t, map[string]interface{}{
		"type": "message_created",
		"data": map[string]interface{}{
			"id":            uuid.New().String(),
			"thread_id":     uuid.New().String(),
			"sender_id":     sender.String(),
			"sent_at":       "2025-03-01T09:00:00Z",
			"text":          "running late",
			"recipient_ids": []string{sender.String(), recipient.String()},
		},
	}))

	// The sender never gets their own unread badge bumped.
	f.badges.AssertExpectations(t)
	f.badges.AssertNumberOfCalls(t, "RefreshBadges", 1)
}

func TestListener_DropsMalformedAndUnknownFrames(t *testing.T) {
	f := newListenerFixture()

	f.listener.handleFrame(context.Background(), []byte("not json"))
	f.listener.handleFrame(context.Background(), frame(t, map[string]interface{}{"no": "type"}))
	f.listener.handleFrame(context.Background(), frame(t, map[string]interface{}{"type": "unrelated_event"}))
	f.listener.handleFrame(context.Background(), frame(t, map[string]interface{}{
		"type": "reminder_due",
		"data": map[string]interface{}{"id": "not-a-uuid"},
	}))

	f.prompts.AssertNotCalled(t, "EnqueueCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.prompts.AssertNotCalled(t, "EnqueueReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.badges.AssertNotCalled(t, "RefreshBadges", mock.Anything, mock.Anything, mock.Anything)
}
