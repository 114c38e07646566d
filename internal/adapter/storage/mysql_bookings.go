package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

const bookingColumns = `id, user_id, item_id, item_name, starts_at, ends_at, guests, notes, promo_code, subtotal, discount, gateway_fee, tax, total, currency, status, payment_ref, created_at, updated_at`

func (m *MySQLAdapter) CreateBooking(ctx context.Context, b domain.Booking) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.ItemID, b.ItemName, b.StartsAt, b.EndsAt, b.Guests, b.Notes,
		b.PromoCode, b.Subtotal, b.Discount, b.GatewayFee, b.Tax, b.Total, b.Currency,
		b.Status, b.PaymentRef, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return m.getBookingWhere(ctx, "id = ?", id)
}

func (m *MySQLAdapter) GetBookingByPaymentRef(ctx context.Context, txRef string) (*domain.Booking, error) {
	return m.getBookingWhere(ctx, "payment_ref = ?", txRef)
}

func (m *MySQLAdapter) getBookingWhere(ctx context.Context, where string, arg any) (*domain.Booking, error) {
	var b domain.Booking
	err := m.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE `+where, arg,
	).Scan(&b.ID, &b.UserID, &b.ItemID, &b.ItemName, &b.StartsAt, &b.EndsAt, &b.Guests,
		&b.Notes, &b.PromoCode, &b.Subtotal, &b.Discount, &b.GatewayFee, &b.Tax, &b.Total,
		&b.Currency, &b.Status, &b.PaymentRef, &b.CreatedAt, &b.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query booking: %w", err)
	}
	return &b, nil
}

func (m *MySQLAdapter) ListBookings(ctx context.Context, filter port.BookingFilter) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []any
	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.ItemID != "" {
		query += " AND item_id = ?"
		args = append(args, filter.ItemID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.To)
	}
	query += " ORDER BY starts_at DESC"

	return m.queryBookings(ctx, query, args...)
}

func (m *MySQLAdapter) ListOverlapping(ctx context.Context, itemID string, startsAt, endsAt time.Time) ([]domain.Booking, error) {
	return m.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE item_id = ? AND status IN (?, ?) AND starts_at < ? AND ends_at > ?`,
		itemID, domain.BookingStatusPending, domain.BookingStatusConfirmed, endsAt, startsAt,
	)
}

func (m *MySQLAdapter) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.ItemID, &b.ItemName, &b.StartsAt, &b.EndsAt, &b.Guests,
			&b.Notes, &b.PromoCode, &b.Subtotal, &b.Discount, &b.GatewayFee, &b.Tax, &b.Total,
			&b.Currency, &b.Status, &b.PaymentRef, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (m *MySQLAdapter) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = NOW() WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
