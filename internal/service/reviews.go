package service

import (
	"context"
	"errors"

	"neighborlift/internal/model"
	"neighborlift/internal/repository"

	"github.com/google/uuid"
)

// ReviewService stores submitted (or explicitly skipped) reviews and clears
// the matching review prompt off the user's screen.
type ReviewService struct {
	repo    ReviewRepository
	prompts *PromptService
}

func NewReviewService(repo ReviewRepository, prompts *PromptService) *ReviewService {
	return &ReviewService{
		repo:    repo,
		prompts: prompts,
	}
}

func (s *ReviewService) SubmitReview(ctx context.Context, userID uuid.UUID, review *repository.Review) error {
	if !review.RequestType.Valid() {
		return ErrInvalidRequest
	}
	review.ReviewerID = userID

	err := s.repo.CreateReview(ctx, review)
	if err != nil && !errors.Is(err, repository.ErrAlreadyReviewed) {
		return err
	}

	// Only the prompt for this request may be cleared; the coordinator guards
	// against clearing anything else.
	c := s.prompts.Coordinator(userID)
	active := c.Active()
	if active != nil && active.Kind == model.PromptKindReview && active.RequestID() == review.RequestID {
		return c.FinishReview(ctx)
	}
	return nil
}
