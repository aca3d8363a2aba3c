package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"neighborlift/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type userRow struct {
	ID               uuid.UUID `db:"id"`
	Handle           string    `db:"handle"`
	DisplayName      string    `db:"display_name"`
	TelegramChatID   *int64    `db:"telegram_chat_id"`
	RegistrationDate time.Time `db:"registration_date"`
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	query, args, err := squirrel.
		Select("id", "handle", "display_name", "telegram_chat_id", "registration_date").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	var row userRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	return &model.User{
		ID:               row.ID,
		Handle:           row.Handle,
		DisplayName:      row.DisplayName,
		TelegramChatID:   row.TelegramChatID,
		RegistrationDate: row.RegistrationDate,
	}, nil
}

// SetTelegramChatID binds (or unbinds, with nil) the Telegram chat used for
// push notifications.
func (r *Repository) SetTelegramChatID(ctx context.Context, userID uuid.UUID, chatID *int64) error {
	query, args, err := squirrel.
		Update("users").
		Set("telegram_chat_id", chatID).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user update query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update telegram chat id: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
