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

type reminderRow struct {
	ID           uuid.UUID `db:"id"`
	RequestType  string    `db:"request_type"`
	RequestID    uuid.UUID `db:"request_id"`
	RequestTitle string    `db:"request_title"`
	RemindAt     time.Time `db:"remind_at"`
}

func (row *reminderRow) toPrompt() *model.CompletionPrompt {
	return &model.CompletionPrompt{
		ID:           row.ID,
		ReminderID:   row.ID,
		RequestType:  model.RequestType(row.RequestType),
		RequestID:    row.RequestID,
		RequestTitle: row.RequestTitle,
		DueAt:        row.RemindAt,
	}
}

func dueReminderQuery(userID uuid.UUID) squirrel.SelectBuilder {
	return squirrel.Select(
		"id",
		"request_type",
		"request_id",
		"request_title",
		"remind_at",
	).
		From("reminders").
		Where(squirrel.Eq{"user_id": userID, "answered": false}).
		Where(squirrel.LtOrEq{"remind_at": time.Now().UTC()}).
		PlaceholderFormat(squirrel.Dollar)
}

// FetchDue returns every completion check whose reminder has matured and has
// not been answered yet, earliest first.
func (r *Repository) FetchDue(ctx context.Context, userID uuid.UUID) ([]*model.CompletionPrompt, error) {
	query, args, err := dueReminderQuery(userID).
		OrderBy("remind_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build due reminders query: %w", err)
	}

	var rows []*reminderRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select due reminders: %w", err)
	}

	prompts := make([]*model.CompletionPrompt, len(rows))
	for i, row := range rows {
		prompts[i] = row.toPrompt()
	}
	return prompts, nil
}

// FetchDueForRequest returns the due completion check for a single request,
// or nil when none has matured.
func (r *Repository) FetchDueForRequest(ctx context.Context, requestType model.RequestType, requestID, userID uuid.UUID) (*model.CompletionPrompt, error) {
	query, args, err := dueReminderQuery(userID).
		Where(squirrel.Eq{
			"request_type": string(requestType),
			"request_id":   requestID,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build reminder query: %w", err)
	}

	var row reminderRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select reminder: %w", err)
	}
	return row.toPrompt(), nil
}

// SubmitCompletionResponse records the user's yes/no answer on the reminder
// record and stamps the request completed when the answer was yes.
func (r *Repository) SubmitCompletionResponse(ctx context.Context, reminderID uuid.UUID, completed bool) error {
	query, args, err := squirrel.
		Update("reminders").
		Set("answered", true).
		Set("completed", completed).
		Set("answered_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": reminderID, "answered": false}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build reminder update query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyAnswered
	}
	return nil
}
