package model

import (
	"time"

	"github.com/google/uuid"
)

// FeedEvent is the decoded envelope of one realtime change-feed frame or
// push payload. Payload keeps the raw fields for the per-kind decoders.
type FeedEvent struct {
	EventType string
	Payload   map[string]interface{}
}

// Feed event types emitted by the primary backend.
const (
	EventReminderDue         = "reminder_due"
	EventRequestCompleted    = "request_completed"
	EventNotificationCreated = "notification_created"
	EventMessageCreated      = "message_created"
)

type Ride struct {
	ID          uuid.UUID
	CreatorID   uuid.UUID
	Title       string
	Origin      string
	Destination string
	Seats       int
	DepartAt    time.Time
	Status      string
	FulfillerID *uuid.UUID
	CreatedAt   time.Time
}

type Favor struct {
	ID          uuid.UUID
	CreatorID   uuid.UUID
	Title       string
	Description string
	DueAt       *time.Time
	Status      string
	FulfillerID *uuid.UUID
	CreatedAt   time.Time
}

type ChatMessage struct {
	ID        uuid.UUID
	ThreadID  uuid.UUID
	SenderID  uuid.UUID
	Text      string
	SentAt    time.Time
	ReaderIDs []uuid.UUID
}

type Notification struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Kind        string
	RequestType RequestType
	RequestID   *uuid.UUID
	Title       string
	Body        string
	Read        bool
	CreatedAt   time.Time
}

type TownHallPost struct {
	ID           uuid.UUID
	AuthorID     uuid.UUID
	Title        string
	Body         string
	CommentCount int
	CreatedAt    time.Time
}
