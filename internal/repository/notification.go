package repository

import (
	"context"
	"fmt"

	"neighborlift/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Notification kinds written by the primary backend. Completion and review
// prompts each mark their own kinds read when presented or resolved.
var (
	completionNotificationKinds = []string{"reminder_due", "completion_check"}
	reviewNotificationKinds     = []string{"request_completed", "review_request"}
)

func (r *Repository) markNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID, kinds []string) error {
	query, args, err := squirrel.
		Update("notifications").
		Set("read", true).
		Where(squirrel.Eq{
			"user_id":      userID,
			"request_type": string(requestType),
			"request_id":   requestID,
			"read":         false,
		}).
		Where(squirrel.Expr("kind = ANY(?)", pq.StringArray(kinds))).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build notification update query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *Repository) MarkCompletionNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error {
	return r.markNotificationsRead(ctx, userID, requestType, requestID, completionNotificationKinds)
}

func (r *Repository) MarkReviewNotificationsRead(ctx context.Context, userID uuid.UUID, requestType model.RequestType, requestID uuid.UUID) error {
	return r.markNotificationsRead(ctx, userID, requestType, requestID, reviewNotificationKinds)
}

type unreadCountRow struct {
	RequestType *string `db:"request_type"`
	Kind        string  `db:"kind"`
	Count       int     `db:"count"`
}

// CountUnread aggregates unread notifications into the UI's tab badges.
// Ride- and favor-scoped notifications land on their request tab, town hall
// posts on theirs; unread chat messages are counted separately because read
// state for messages lives on the message rows.
func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (*model.BadgeCounts, error) {
	query, args, err := squirrel.
		Select("request_type", "kind", "count(*) as count").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID, "read": false}).
		GroupBy("request_type", "kind").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build unread count query: %w", err)
	}

	var rows []*unreadCountRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	counts := &model.BadgeCounts{}
	for _, row := range rows {
		switch {
		case row.Kind == "town_hall_post":
			counts.TownHall += row.Count
		case row.RequestType != nil && *row.RequestType == string(model.RequestTypeRide):
			counts.Rides += row.Count
		case row.RequestType != nil && *row.RequestType == string(model.RequestTypeFavor):
			counts.Favors += row.Count
		}
	}

	messages, err := r.countUnreadMessages(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts.Messages = messages

	return counts, nil
}

// countUnreadMessages counts messages in the user's threads that the user
// neither sent nor appears in the reader-id array of.
func (r *Repository) countUnreadMessages(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := squirrel.
		Select("count(*)").
		From("messages m").
		Join("thread_members tm ON tm.thread_id = m.thread_id").
		Where(squirrel.Eq{"tm.user_id": userID}).
		Where(squirrel.NotEq{"m.sender_id": userID}).
		Where(squirrel.Expr("NOT (m.reader_ids @> ?)", pq.Array([]string{userID.String()}))).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build unread messages query: %w", err)
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// MarkThreadRead appends the user to the reader-id array of every message in
// the thread they have not read yet.
func (r *Repository) MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) error {
	query, args, err := squirrel.
		Update("messages").
		Set("reader_ids", squirrel.Expr("array_append(reader_ids, ?)", userID)).
		Where(squirrel.Eq{"thread_id": threadID}).
		Where(squirrel.NotEq{"sender_id": userID}).
		Where(squirrel.Expr("NOT (reader_ids @> ?)", pq.Array([]string{userID.String()}))).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build thread read query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}
