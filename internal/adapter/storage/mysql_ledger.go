package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tiyeni/storefront/internal/core/domain"
)

func (m *MySQLAdapter) CreateEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_entries (id, source_kind, source_id, account, side, amount, currency, posted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.SourceKind, e.SourceID, e.Account, e.Side, e.Amount, e.Currency, e.PostedAt,
		)
		if err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}
	return tx.Commit()
}

func (m *MySQLAdapter) ListEntries(ctx context.Context, kind domain.LedgerSource, sourceID string) ([]domain.LedgerEntry, error) {
	return m.queryEntries(ctx, `
		SELECT id, source_kind, source_id, account, side, amount, currency, posted_at
		FROM ledger_entries WHERE source_kind = ? AND source_id = ?`, kind, sourceID)
}

func (m *MySQLAdapter) ListAllEntries(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	query := `
		SELECT id, source_kind, source_id, account, side, amount, currency, posted_at
		FROM ledger_entries WHERE 1=1`
	var args []any
	if !from.IsZero() {
		query += " AND posted_at >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		query += " AND posted_at <= ?"
		args = append(args, to)
	}
	return m.queryEntries(ctx, query, args...)
}

func (m *MySQLAdapter) queryEntries(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.SourceKind, &e.SourceID, &e.Account, &e.Side, &e.Amount, &e.Currency, &e.PostedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (m *MySQLAdapter) CreatePayment(ctx context.Context, p domain.Payment) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO payments (id, tx_ref, source_kind, source_id, amount, currency, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TxRef, p.SourceKind, p.SourceID, p.Amount, p.Currency, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetPaymentByTxRef(ctx context.Context, txRef string) (*domain.Payment, error) {
	var p domain.Payment
	err := m.db.QueryRowContext(ctx, `
		SELECT id, tx_ref, source_kind, source_id, amount, currency, status, created_at, updated_at
		FROM payments WHERE tx_ref = ?`, txRef,
	).Scan(&p.ID, &p.TxRef, &p.SourceKind, &p.SourceID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query payment: %w", err)
	}
	return &p, nil
}

func (m *MySQLAdapter) UpdatePaymentStatus(ctx context.Context, txRef string, status domain.PaymentStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE payments SET status = ?, updated_at = NOW() WHERE tx_ref = ?`,
		status, txRef,
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
