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
	"github.com/jmoiron/sqlx"
)

type pendingReviewRow struct {
	RequestID     uuid.UUID `db:"request_id"`
	RequestTitle  string    `db:"request_title"`
	FulfillerID   uuid.UUID `db:"fulfiller_id"`
	FulfillerName string    `db:"fulfiller_name"`
	CompletedAt   time.Time `db:"completed_at"`
}

func (row *pendingReviewRow) toPrompt(requestType model.RequestType) *model.ReviewPrompt {
	return &model.ReviewPrompt{
		ID:            row.RequestID,
		RequestType:   requestType,
		RequestID:     row.RequestID,
		RequestTitle:  row.RequestTitle,
		FulfillerID:   row.FulfillerID,
		FulfillerName: row.FulfillerName,
		CreatedAt:     row.CompletedAt,
	}
}

// requestTable maps a request type to its backing table. Rides and favors
// live in separate tables; pending reviews are collected per table and
// merged by the caller.
func requestTable(t model.RequestType) string {
	if t == model.RequestTypeRide {
		return "rides"
	}
	return "favors"
}

func pendingReviewQuery(requestType model.RequestType, userID uuid.UUID) squirrel.SelectBuilder {
	table := requestTable(requestType)
	return squirrel.Select(
		"r.id as request_id",
		"r.title as request_title",
		"r.fulfiller_id",
		"u.display_name as fulfiller_name",
		"r.completed_at",
	).
		From(table+" r").
		Join("users u ON u.id = r.fulfiller_id").
		Where(squirrel.Eq{"r.creator_id": userID, "r.status": "completed"}).
		Where("r.fulfiller_id IS NOT NULL").
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM reviews v WHERE v.request_type = ? AND v.request_id = r.id AND v.reviewer_id = ?)",
			string(requestType), userID,
		)).
		PlaceholderFormat(squirrel.Dollar)
}

// FetchPending returns a review prompt for every completed request of the
// user that has a fulfiller and no review from the user yet.
func (r *Repository) FetchPending(ctx context.Context, userID uuid.UUID) ([]*model.ReviewPrompt, error) {
	prompts := make([]*model.ReviewPrompt, 0)
	for _, requestType := range []model.RequestType{model.RequestTypeRide, model.RequestTypeFavor} {
		query, args, err := pendingReviewQuery(requestType, userID).
			OrderBy("r.completed_at").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build pending reviews query: %w", err)
		}

		var rows []*pendingReviewRow
		err = r.db.SelectContext(ctx, &rows, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to select pending reviews: %w", err)
		}
		for _, row := range rows {
			prompts = append(prompts, row.toPrompt(requestType))
		}
	}
	return prompts, nil
}

// FetchPendingForRequest returns the review prompt for a single request, or
// nil when the request is not reviewable (not completed, no fulfiller, or
// already reviewed).
func (r *Repository) FetchPendingForRequest(ctx context.Context, requestType model.RequestType, requestID, userID uuid.UUID) (*model.ReviewPrompt, error) {
	query, args, err := pendingReviewQuery(requestType, userID).
		Where(squirrel.Eq{"r.id": requestID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pending review query: %w", err)
	}

	var row pendingReviewRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select pending review: %w", err)
	}
	return row.toPrompt(requestType), nil
}

type Review struct {
	RequestType model.RequestType
	RequestID   uuid.UUID
	ReviewerID  uuid.UUID
	FulfillerID uuid.UUID
	Rating      int
	Comment     string
	Skipped     bool
}

// CreateReview stores the user's rating of the fulfiller. An explicit skip
// is stored too, so the prompt does not come back on the next resync.
func (r *Repository) CreateReview(ctx context.Context, review *Review) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("reviews").
			SetMap(map[string]interface{}{
				"id":           uuid.New(),
				"request_type": string(review.RequestType),
				"request_id":   review.RequestID,
				"reviewer_id":  review.ReviewerID,
				"fulfiller_id": review.FulfillerID,
				"rating":       review.Rating,
				"comment":      review.Comment,
				"skipped":      review.Skipped,
				"created_at":   time.Now().UTC(),
			}).
			Suffix("ON CONFLICT (request_type, request_id, reviewer_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build review insert query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return ErrAlreadyReviewed
		}
		return nil
	})
}
