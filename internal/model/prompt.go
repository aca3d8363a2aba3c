package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestType string

const (
	RequestTypeRide  RequestType = "ride"
	RequestTypeFavor RequestType = "favor"
)

func (t RequestType) Valid() bool {
	return t == RequestTypeRide || t == RequestTypeFavor
}

// CompletionPrompt asks the user whether a request they made actually
// happened. It matures out of a reminder record once its due time passes.
type CompletionPrompt struct {
	ID           uuid.UUID
	ReminderID   uuid.UUID
	RequestType  RequestType
	RequestID    uuid.UUID
	RequestTitle string
	DueAt        time.Time
}

// ReviewPrompt asks the user to rate whoever fulfilled their request.
type ReviewPrompt struct {
	ID            uuid.UUID
	RequestType   RequestType
	RequestID     uuid.UUID
	RequestTitle  string
	FulfillerID   uuid.UUID
	FulfillerName string
	CreatedAt     time.Time
}

type PromptKind int

const (
	PromptKindCompletion PromptKind = iota + 1
	PromptKindReview
)

func (k PromptKind) String() string {
	switch k {
	case PromptKindCompletion:
		return "completion"
	case PromptKindReview:
		return "review"
	default:
		return "unknown"
	}
}

// PromptItem is the tagged union the queue and coordinator operate on.
// Exactly one of Completion/Review is non-nil, matching Kind. Items are
// treated as values: never mutated in place, only replaced or removed.
type PromptItem struct {
	Kind       PromptKind
	Completion *CompletionPrompt
	Review     *ReviewPrompt
}

func NewCompletionItem(p *CompletionPrompt) PromptItem {
	return PromptItem{Kind: PromptKindCompletion, Completion: p}
}

func NewReviewItem(p *ReviewPrompt) PromptItem {
	return PromptItem{Kind: PromptKindReview, Review: p}
}

// ID is the identity shared across re-fetches: two items with equal IDs are
// the same logical prompt regardless of which fetch produced them.
func (i PromptItem) ID() uuid.UUID {
	switch i.Kind {
	case PromptKindCompletion:
		return i.Completion.ID
	case PromptKindReview:
		return i.Review.ID
	default:
		return uuid.Nil
	}
}

// SortDate is the merge key across both producers: due time for completion
// checks, creation time for review requests.
func (i PromptItem) SortDate() time.Time {
	switch i.Kind {
	case PromptKindCompletion:
		return i.Completion.DueAt
	case PromptKindReview:
		return i.Review.CreatedAt
	default:
		return time.Time{}
	}
}

func (i PromptItem) RequestType() RequestType {
	switch i.Kind {
	case PromptKindCompletion:
		return i.Completion.RequestType
	case PromptKindReview:
		return i.Review.RequestType
	default:
		return ""
	}
}

func (i PromptItem) RequestID() uuid.UUID {
	switch i.Kind {
	case PromptKindCompletion:
		return i.Completion.RequestID
	case PromptKindReview:
		return i.Review.RequestID
	default:
		return uuid.Nil
	}
}
