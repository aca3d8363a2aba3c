package prompt

import (
	"context"
	"sync"

	"neighborlift/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoActivePrompt = errors.New("no active prompt")
	// ErrWrongPromptKind means a resolution method was called while a prompt
	// of the other kind was active. The API layer's guards make this
	// unreachable; hitting it is a programming error.
	ErrWrongPromptKind = errors.New("active prompt is not of the expected kind")
)

// CompletionProvider fetches "did this happen?" checks whose reminders have
// matured.
type CompletionProvider interface {
	FetchDue(ctx context.Context, userID uuid.UUID) ([]*model.CompletionPrompt, error)
	FetchDueForRequest(ctx context.Context, requestType model.RequestType, requestID, userID uuid.UUID) (*model.CompletionPrompt, error)
}

// ReviewProvider fetches "rate your counterpart" requests for fulfilled
// requests the user has not reviewed yet.
type ReviewProvider interface {
	FetchPending(ctx context.Context, userID uuid.UUID) ([]*model.ReviewPrompt, error)
	FetchPendingForRequest(ctx context.Context, requestType model.RequestType, requestID, userID uuid.UUID) (*model.ReviewPrompt, error)
}

// SideEffects groups the collaborator calls the coordinator runs exactly
// once per prompt resolution.
type SideEffects interface {
	MarkReviewNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error
	MarkCompletionNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error
	RefreshBadges(ctx context.Context, userID uuid.UUID, reason string) error
	SubmitCompletionResponse(ctx context.Context, reminderID uuid.UUID, completed bool) error
}

// Coordinator owns one user session's prompt state: the pending queue and
// the single active slot the UI renders. All public methods hold the
// instance mutex for their full duration, provider fetches included, so a
// caller always observes either the pre- or post-state of another call,
// never a torn one.
type Coordinator struct {
	mu sync.Mutex

	userID      uuid.UUID
	completions CompletionProvider
	reviews     ReviewProvider
	effects     SideEffects
	log         *zap.Logger

	queue  *Queue
	active *model.PromptItem
}

func NewCoordinator(
	userID uuid.UUID,
	completions CompletionProvider,
	reviews ReviewProvider,
	effects SideEffects,
	log *zap.Logger,
) *Coordinator {
	return &Coordinator{
		userID:      userID,
		completions: completions,
		reviews:     reviews,
		effects:     effects,
		log:         log.With(zap.String("user_id", userID.String())),
		queue:       NewQueue(),
	}
}

// Active returns a copy of the prompt currently presented to the user, or
// nil when the session is idle.
func (c *Coordinator) Active() *model.PromptItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	item := *c.active
	return &item
}

// Pending returns the number of queued prompts behind the active one.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Count()
}

// Reconcile resyncs the queue against server state: both providers are
// fetched concurrently, and once both succeed the queue is rebuilt from
// scratch. The currently active prompt is never re-enqueued behind itself.
// Rebuild is all-or-nothing: if either fetch fails the previous queue and
// active slot are left untouched and the error is returned.
func (c *Coordinator) Reconcile(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		due     []*model.CompletionPrompt
		pending []*model.ReviewPrompt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		due, err = c.completions.FetchDue(gctx, c.userID)
		return errors.Wrap(err, "fetch due completion prompts")
	})
	g.Go(func() error {
		var err error
		pending, err = c.reviews.FetchPending(gctx, c.userID)
		return errors.Wrap(err, "fetch pending review prompts")
	})
	if err := g.Wait(); err != nil {
		c.log.Warn("reconcile aborted, keeping previous prompt state", zap.Error(err))
		return err
	}

	rebuilt := NewQueue()
	for _, p := range due {
		c.admit(rebuilt, model.NewCompletionItem(p))
	}
	for _, p := range pending {
		c.admit(rebuilt, model.NewReviewItem(p))
	}
	c.queue = rebuilt

	c.log.Debug("reconciled prompt queue",
		zap.Int("completion_prompts", len(due)),
		zap.Int("review_prompts", len(pending)),
		zap.Int("queued", c.queue.Count()))

	c.activateNext(ctx)
	return nil
}

// admit enqueues unless the item is the prompt already on screen.
func (c *Coordinator) admit(q *Queue, item model.PromptItem) {
	if c.active != nil && c.active.ID() == item.ID() {
		return
	}
	q.Enqueue(item)
}

// EnqueueCompletion fetches one completion prompt for the given request and
// queues it. Used when a screen observes the request becoming eligible,
// ahead of the next full reconcile. Fetch failures are logged and dropped:
// the next Reconcile picks the item up.
func (c *Coordinator) EnqueueCompletion(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.completions.FetchDueForRequest(ctx, requestType, requestID, c.userID)
	if err != nil {
		c.log.Debug("targeted completion fetch failed",
			zap.String("request_id", requestID.String()), zap.Error(err))
		return
	}
	if p == nil {
		return
	}
	c.admitAndActivate(ctx, model.NewCompletionItem(p))
}

// EnqueueReview is the review-side counterpart of EnqueueCompletion.
func (c *Coordinator) EnqueueReview(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.reviews.FetchPendingForRequest(ctx, requestType, requestID, c.userID)
	if err != nil {
		c.log.Debug("targeted review fetch failed",
			zap.String("request_id", requestID.String()), zap.Error(err))
		return
	}
	if p == nil {
		return
	}
	c.admitAndActivate(ctx, model.NewReviewItem(p))
}

func (c *Coordinator) admitAndActivate(ctx context.Context, item model.PromptItem) {
	c.admit(c.queue, item)
	c.activateNext(ctx)
}

// activateNext moves the earliest queued item into the active slot. At most
// one prompt is ever active: an occupied slot is never overwritten. A review
// prompt has its source notifications marked read and badges refreshed
// synchronously here, so the badge count reflects "seen" the instant the
// prompt becomes visible rather than after resolution.
//
// Callers must hold c.mu.
func (c *Coordinator) activateNext(ctx context.Context) {
	if c.active != nil {
		return
	}
	item, ok := c.queue.Dequeue()
	if !ok {
		return
	}
	c.active = &item

	c.log.Info("activated prompt",
		zap.String("prompt_id", item.ID().String()),
		zap.String("kind", item.Kind.String()))

	if item.Kind == model.PromptKindReview {
		if err := c.effects.MarkReviewNotificationsRead(ctx, c.userID, item.RequestType(), item.RequestID()); err != nil {
			c.log.Warn("failed to mark review notifications read", zap.Error(err))
		}
		if err := c.effects.RefreshBadges(ctx, c.userID, "review prompt shown"); err != nil {
			c.log.Warn("failed to refresh badges", zap.Error(err))
		}
	}
}

// RespondToCompletion submits the user's yes/no answer for the active
// completion prompt, marks its notifications read, clears the slot and
// activates the next prompt. A failed submission leaves the active prompt
// in place so the user can retry; nothing is advanced.
func (c *Coordinator) RespondToCompletion(ctx context.Context, completed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNoActivePrompt
	}
	if c.active.Kind != model.PromptKindCompletion {
		c.log.Error("completion response with non-completion prompt active",
			zap.String("prompt_id", c.active.ID().String()))
		return ErrWrongPromptKind
	}

	item := *c.active
	if err := c.effects.SubmitCompletionResponse(ctx, item.Completion.ReminderID, completed); err != nil {
		return errors.Wrap(err, "submit completion response")
	}
	if err := c.effects.MarkCompletionNotificationsRead(ctx, c.userID, item.RequestType(), item.RequestID()); err != nil {
		c.log.Warn("failed to mark completion notifications read", zap.Error(err))
	}
	if err := c.effects.RefreshBadges(ctx, c.userID, "completion prompt resolved"); err != nil {
		c.log.Warn("failed to refresh badges", zap.Error(err))
	}

	c.active = nil
	c.activateNext(ctx)
	return nil
}

// FinishReview clears the active review prompt once the user has submitted
// or explicitly skipped the review (both handled by the review-submission
// flow) and activates the next prompt. Notification and badge effects
// already ran at activation time.
func (c *Coordinator) FinishReview(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNoActivePrompt
	}
	if c.active.Kind != model.PromptKindReview {
		c.log.Error("review finish with non-review prompt active",
			zap.String("prompt_id", c.active.ID().String()))
		return ErrWrongPromptKind
	}

	c.active = nil
	c.activateNext(ctx)
	return nil
}
