package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID
	Handle           string
	DisplayName      string
	TelegramChatID   *int64
	RegistrationDate time.Time
}

// BadgeCounts is what the UI renders on its tab bar.
type BadgeCounts struct {
	Rides    int
	Favors   int
	TownHall int
	Messages int
}

func (b BadgeCounts) Total() int {
	return b.Rides + b.Favors + b.TownHall + b.Messages
}
