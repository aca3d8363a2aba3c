package service

import (
	"context"
	"sync"

	"neighborlift/internal/model"
	"neighborlift/internal/prompt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromptService owns one prompt coordinator per authenticated user.
// Coordinators are constructed lazily on the first call for a user and
// dropped when the session ends; each one re-derives its state from server
// truth on its first reconcile, so nothing needs to survive restarts.
type PromptService struct {
	mu           sync.Mutex
	coordinators map[uuid.UUID]*prompt.Coordinator

	completions prompt.CompletionProvider
	reviews     prompt.ReviewProvider
	effects     prompt.SideEffects
	log         *zap.Logger
}

func NewPromptService(
	completions prompt.CompletionProvider,
	reviews prompt.ReviewProvider,
	effects prompt.SideEffects,
	log *zap.Logger,
) *PromptService {
	return &PromptService{
		coordinators: make(map[uuid.UUID]*prompt.Coordinator),
		completions:  completions,
		reviews:      reviews,
		effects:      effects,
		log:          log,
	}
}

// Coordinator returns the user's session coordinator, creating it on first
// use.
func (s *PromptService) Coordinator(userID uuid.UUID) *prompt.Coordinator {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coordinators[userID]
	if !ok {
		c = prompt.NewCoordinator(userID, s.completions, s.reviews, s.effects, s.log)
		s.coordinators[userID] = c
	}
	return c
}

// EndSession drops the user's coordinator. The next call for the user
// starts a fresh session.
func (s *PromptService) EndSession(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.coordinators, userID)
}

// ReconcileAll resyncs every live session against server state. Driven by
// the feed listener's polling ticker; per-session failures are logged and
// skipped, the session keeps its previous state.
func (s *PromptService) ReconcileAll(ctx context.Context) {
	s.mu.Lock()
	userIDs := make([]uuid.UUID, 0, len(s.coordinators))
	for userID := range s.coordinators {
		userIDs = append(userIDs, userID)
	}
	s.mu.Unlock()

	for _, userID := range userIDs {
		if err := s.Coordinator(userID).Reconcile(ctx); err != nil {
			s.log.Warn("periodic reconcile failed",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
}

func (s *PromptService) ActivePrompt(userID uuid.UUID) *model.PromptItem {
	return s.Coordinator(userID).Active()
}

func (s *PromptService) PendingCount(userID uuid.UUID) int {
	return s.Coordinator(userID).Pending()
}

func (s *PromptService) Reconcile(ctx context.Context, userID uuid.UUID) error {
	return s.Coordinator(userID).Reconcile(ctx)
}

func (s *PromptService) EnqueueCompletion(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) {
	s.Coordinator(userID).EnqueueCompletion(ctx, requestType, requestID)
}

func (s *PromptService) EnqueueReview(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) {
	s.Coordinator(userID).EnqueueReview(ctx, requestType, requestID)
}

func (s *PromptService) RespondToCompletion(ctx context.Context, userID uuid.UUID, completed bool) error {
	return s.Coordinator(userID).RespondToCompletion(ctx, completed)
}

func (s *PromptService) FinishReview(ctx context.Context, userID uuid.UUID) error {
	return s.Coordinator(userID).FinishReview(ctx)
}
