package prompt

import (
	"context"
	"testing"
	"time"

	"neighborlift/internal/model"
	"neighborlift/internal/prompt/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type coordinatorFixture struct {
	completions *mocks.MockCompletionProvider
	reviews     *mocks.MockReviewProvider
	effects     *mocks.MockSideEffects
	coordinator *Coordinator
	userID      uuid.UUID
}

func newFixture() *coordinatorFixture {
	f := &coordinatorFixture{
		completions: &mocks.MockCompletionProvider{},
		reviews:     &mocks.MockReviewProvider{},
		effects:     &mocks.MockSideEffects{},
		userID:      uuid.New(),
	}
	f.coordinator = NewCoordinator(f.userID, f.completions, f.reviews, f.effects, zap.NewNop())
	return f
}

func completionPrompt(dueAt time.Time) *model.CompletionPrompt {
	id := uuid.New()
	return &model.CompletionPrompt{
		ID:           id,
		ReminderID:   id,
		RequestType:  model.RequestTypeRide,
		RequestID:    uuid.New(),
		RequestTitle: "Ride downtown",
		DueAt:        dueAt,
	}
}

func reviewPrompt(createdAt time.Time) *model.ReviewPrompt {
	return &model.ReviewPrompt{
		ID:            uuid.New(),
		RequestType:   model.RequestTypeFavor,
		RequestID:     uuid.New(),
		RequestTitle:  "Pick up groceries",
		FulfillerID:   uuid.New(),
		FulfillerName: "Alex",
		CreatedAt:     createdAt,
	}
}

func expectReviewActivation(f *coordinatorFixture, p *model.ReviewPrompt) {
	f.effects.On("MarkReviewNotificationsRead", mock.Anything, f.userID, p.RequestType, p.RequestID).
		Return(nil)
	f.effects.On("RefreshBadges", mock.Anything, f.userID, mock.Anything).
		Return(nil)
}

func TestCoordinator_ReconcileOrdersAcrossProviders(t *testing.T) {
	f := newFixture()
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	review := reviewPrompt(t0)
	completion := completionPrompt(t0.Add(time.Hour))

	f.completions.On("FetchDue", mock.Anything, f.userID).
		Return([]*model.CompletionPrompt{completion}, nil)
	f.reviews.On("FetchPending", mock.Anything, f.userID).
		Return([]*model.ReviewPrompt{review}, nil)
	expectReviewActivation(f, review)

	err := f.coordinator.Reconcile(context.Background())
	assert.NoError(t, err)

	active := f.coordinator.Active()
	assert.NotNil(t, active)
	assert.Equal(t, review.ID, active.ID())
	assert.Equal(t, model.PromptKindReview, active.Kind)
	assert.Equal(t, 1, f.coordinator.Pending())

	f.effects.AssertExpectations(t)
}

func TestCoordinator_ReconcileFailureKeepsPreviousState(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(f *coordinatorFixture)
	}{
		{
			name: "completion provider fails",
			mockSetup: func(f *coordinatorFixture) {
				f.completions.On("FetchDue", mock.Anything, f.userID).
					Return(nil, assert.AnError)
				f.reviews.On("FetchPending", mock.Anything, f.userID).
					Return([]*model.ReviewPrompt{}, nil).Maybe()
			},
		},
		{
			name: "review provider fails",
			mockSetup: func(f *coordinatorFixture) {
				f.completions.On("FetchDue", mock.Anything, f.userID).
					Return([]*model.CompletionPrompt{completionPrompt(time.Now())}, nil).Maybe()
				f.reviews.On("FetchPending", mock.Anything, f.userID).
					Return(nil, assert.AnError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			// Seed an active prompt and a queued one via a successful pass.
			first := completionPrompt(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
			second := completionPrompt(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
			f.completions.On("FetchDue", mock.Anything, f.userID).
				Return([]*model.CompletionPrompt{first, second}, nil).Once()
			f.reviews.On("FetchPending", mock.Anything, f.userID).
				Return([]*model.ReviewPrompt{}, nil).Once()
			assert.NoError(t, f.coordinator.Reconcile(context.Background()))

			tt.mockSetup(f)

			err := f.coordinator.Reconcile(context.Background())
			assert.Error(t, err)

			// Previous queue and active slot untouched.
			active := f.coordinator.Active()
			assert.NotNil(t, active)
			assert.Equal(t, first.ID, active.ID())
			assert.Equal(t, 1, f.coordinator.Pending())
		})
	}
}

func TestCoordinator_ReconcileDoesNotRequeueActivePrompt(t *testing.T) {
	f := newFixture()
	current := completionPrompt(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	f.completions.On("FetchDue", mock.Anything, f.userID).
		Return([]*model.CompletionPrompt{current}, nil)
	f.reviews.On("FetchPending", mock.Anything, f.userID).
		Return([]*model.ReviewPrompt{}, nil)

	assert.NoError(t, f.coordinator.Reconcile(context.Background()))
	assert.Equal(t, current.ID, f.coordinator.Active().ID())
	assert.Equal(t, 0, f.coordinator.Pending())

	// The provider still returns the active prompt on the next pass; it must
	// not end up queued behind itself.
	assert.NoError(t, f.coordinator.Reconcile(context.Background()))
	assert.Equal(t, current.ID, f.coordinator.Active().ID())
	assert.Equal(t, 0, f.coordinator.Pending())
}

func TestCoordinator_EnqueueCompletion(t *testing.T) {
	f := newFixture()
	p := completionPrompt(time.Now())

	f.completions.On("FetchDueForRequest", mock.Anything, p.RequestType, p.RequestID, f.userID).
		Return(p, nil)

	f.coordinator.EnqueueCompletion(context.Background(), p.RequestType, p.RequestID)

	active := f.coordinator.Active()
	assert.NotNil(t, active)
	assert.Equal(t, p.ID, active.ID())
	assert.Equal(t, 0, f.coordinator.Pending())
}

func TestCoordinator_EnqueueReviewMatchingActiveIsDropped(t *testing.T) {
	f := newFixture()
	p := reviewPrompt(time.Now())

	f.reviews.On("FetchPendingForRequest", mock.Anything, p.RequestType, p.RequestID, f.userID).
		Return(p, nil)
	expectReviewActivation(f, p)

	f.coordinator.EnqueueReview(context.Background(), p.RequestType, p.RequestID)
	assert.Equal(t, p.ID, f.coordinator.Active().ID())
	assert.Equal(t, 0, f.coordinator.Pending())

	// Same prompt observed again while it is on screen: queue unchanged.
	f.coordinator.EnqueueReview(context.Background(), p.RequestType, p.RequestID)
	assert.Equal(t, p.ID, f.coordinator.Active().ID())
	assert.Equal(t, 0, f.coordinator.Pending())

	// Side effects ran exactly once, at first activation.
	f.effects.AssertNumberOfCalls(t, "MarkReviewNotificationsRead", 1)
	f.effects.AssertNumberOfCalls(t, "RefreshBadges", 1)
}

func TestCoordinator_EnqueueFetchFailureIsSilent(t *testing.T) {
	f := newFixture()
	requestID := uuid.New()

	f.completions.On("FetchDueForRequest", mock.Anything, model.RequestTypeRide, requestID, f.userID).
		Return(nil, assert.AnError)

	f.coordinator.EnqueueCompletion(context.Background(), model.RequestTypeRide, requestID)

	assert.Nil(t, f.coordinator.Active())
	assert.Equal(t, 0, f.coordinator.Pending())
}

func TestCoordinator_RespondToCompletion(t *testing.T) {
	tests := []struct {
		name          string
		submitErr     error
		expectedError error
	}{
		{
			name: "success clears slot and activates next",
		},
		{
			name:          "submission failure leaves prompt active",
			submitErr:     assert.AnError,
			expectedError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			first := completionPrompt(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
			next := completionPrompt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

			f.completions.On("FetchDue", mock.Anything, f.userID).
				Return([]*model.CompletionPrompt{first, next}, nil)
			f.reviews.On("FetchPending", mock.Anything, f.userID).
				Return([]*model.ReviewPrompt{}, nil)
			assert.NoError(t, f.coordinator.Reconcile(context.Background()))

			f.effects.On("SubmitCompletionResponse", mock.Anything, first.ReminderID, true).
				Return(tt.submitErr)
			if tt.submitErr == nil {
				f.effects.On("MarkCompletionNotificationsRead", mock.Anything, f.userID, first.RequestType, first.RequestID).
					Return(nil)
				f.effects.On("RefreshBadges", mock.Anything, f.userID, mock.Anything).
					Return(nil)
			}

			err := f.coordinator.RespondToCompletion(context.Background(), true)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				// Nothing advanced: same active prompt, same queue.
				assert.Equal(t, first.ID, f.coordinator.Active().ID())
				assert.Equal(t, 1, f.coordinator.Pending())
				return
			}

			assert.NoError(t, err)
			active := f.coordinator.Active()
			assert.NotNil(t, active)
			assert.Equal(t, next.ID, active.ID())
			assert.Equal(t, 0, f.coordinator.Pending())
			f.effects.AssertExpectations(t)
		})
	}
}

func TestCoordinator_ResolutionGuards(t *testing.T) {
	f := newFixture()

	// Nothing active at all.
	assert.ErrorIs(t, f.coordinator.RespondToCompletion(context.Background(), true), ErrNoActivePrompt)
	assert.ErrorIs(t, f.coordinator.FinishReview(context.Background()), ErrNoActivePrompt)

	// A completion prompt is active; finishing a review is a kind mismatch.
	p := completionPrompt(time.Now())
	f.completions.On("FetchDueForRequest", mock.Anything, p.RequestType, p.RequestID, f.userID).
		Return(p, nil)
	f.coordinator.EnqueueCompletion(context.Background(), p.RequestType, p.RequestID)

	assert.ErrorIs(t, f.coordinator.FinishReview(context.Background()), ErrWrongPromptKind)
	assert.Equal(t, p.ID, f.coordinator.Active().ID())
}

func TestCoordinator_FinishReviewActivatesNext(t *testing.T) {
	f := newFixture()
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	review := reviewPrompt(t0)
	completion := completionPrompt(t0.Add(time.Hour))

	f.completions.On("FetchDue", mock.Anything, f.userID).
		Return([]*model.CompletionPrompt{completion}, nil)
	f.reviews.On("FetchPending", mock.Anything, f.userID).
		Return([]*model.ReviewPrompt{review}, nil)
	expectReviewActivation(f, review)

	assert.NoError(t, f.coordinator.Reconcile(context.Background()))
	assert.Equal(t, review.ID, f.coordinator.Active().ID())

	assert.NoError(t, f.coordinator.FinishReview(context.Background()))

	active := f.coordinator.Active()
	assert.NotNil(t, active)
	assert.Equal(t, completion.ID, active.ID())
	assert.Equal(t, 0, f.coordinator.Pending())
}
