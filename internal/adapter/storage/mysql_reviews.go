package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiyeni/storefront/internal/core/domain"
)

const reviewColumns = `id, item_id, user_id, rating, comment, status, created_at, updated_at`

func (m *MySQLAdapter) CreateReview(ctx context.Context, r domain.Review) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ItemID, r.UserID, r.Rating, r.Comment, r.Status, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	return m.getReviewWhere(ctx, "id = ?", id)
}

func (m *MySQLAdapter) GetReviewByUserItem(ctx context.Context, userID, itemID string) (*domain.Review, error) {
	return m.getReviewWhere(ctx, "user_id = ? AND item_id = ?", userID, itemID)
}

func (m *MySQLAdapter) getReviewWhere(ctx context.Context, where string, args ...any) (*domain.Review, error) {
	var r domain.Review
	err := m.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE `+where, args...,
	).Scan(&r.ID, &r.ItemID, &r.UserID, &r.Rating, &r.Comment, &r.Status, &r.CreatedAt, &r.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query review: %w", err)
	}
	return &r, nil
}

func (m *MySQLAdapter) ListReviews(ctx context.Context, itemID string, status domain.ReviewStatus) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE 1=1`
	var args []any
	if itemID != "" {
		query += " AND item_id = ?"
		args = append(args, itemID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.ItemID, &r.UserID, &r.Rating, &r.Comment, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (m *MySQLAdapter) UpdateReviewStatus(ctx context.Context, id string, status domain.ReviewStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE reviews SET status = ?, updated_at = NOW() WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
