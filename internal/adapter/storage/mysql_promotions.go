package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tiyeni/storefront/internal/core/domain"
)

const promoColumns = `id, code, kind, value, item_ids, starts_at, ends_at, usage_limit, usage_count, active, created_at, updated_at`

func (m *MySQLAdapter) CreatePromotion(ctx context.Context, p domain.Promotion) error {
	itemIDs, err := json.Marshal(p.ItemIDs)
	if err != nil {
		return fmt.Errorf("marshal item ids: %w", err)
	}
	_, err = m.db.ExecContext(ctx, `
		INSERT INTO promotions (`+promoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.Kind, p.Value, itemIDs, p.StartsAt, nullTime(p.EndsAt),
		p.UsageLimit, p.UsageCount, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetPromotion(ctx context.Context, id string) (*domain.Promotion, error) {
	return m.getPromotionWhere(ctx, "id = ?", id)
}

func (m *MySQLAdapter) GetPromotionByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	return m.getPromotionWhere(ctx, "code = ?", code)
}

func (m *MySQLAdapter) getPromotionWhere(ctx context.Context, where string, arg any) (*domain.Promotion, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+promoColumns+` FROM promotions WHERE `+where, arg)
	p, err := scanPromotion(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query promotion: %w", err)
	}
	return p, nil
}

func scanPromotion(scan func(...any) error) (*domain.Promotion, error) {
	var p domain.Promotion
	var itemIDs []byte
	var endsAt sql.NullTime
	err := scan(&p.ID, &p.Code, &p.Kind, &p.Value, &itemIDs, &p.StartsAt, &endsAt,
		&p.UsageLimit, &p.UsageCount, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if endsAt.Valid {
		p.EndsAt = endsAt.Time
	}
	if len(itemIDs) > 0 {
		if err := json.Unmarshal(itemIDs, &p.ItemIDs); err != nil {
			return nil, fmt.Errorf("unmarshal item ids: %w", err)
		}
	}
	return &p, nil
}

func (m *MySQLAdapter) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT `+promoColumns+` FROM promotions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		promos = append(promos, *p)
	}
	return promos, rows.Err()
}

func (m *MySQLAdapter) UpdatePromotion(ctx context.Context, p domain.Promotion) error {
	itemIDs, err := json.Marshal(p.ItemIDs)
	if err != nil {
		return fmt.Errorf("marshal item ids: %w", err)
	}
	_, err = m.db.ExecContext(ctx, `
		UPDATE promotions
		SET code = ?, kind = ?, value = ?, item_ids = ?, starts_at = ?, ends_at = ?, usage_limit = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		p.Code, p.Kind, p.Value, itemIDs, p.StartsAt, nullTime(p.EndsAt),
		p.UsageLimit, p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	return nil
}

// IncrementUsage enforces the usage limit in the update predicate so
// concurrent checkouts cannot overrun it.
func (m *MySQLAdapter) IncrementUsage(ctx context.Context, id string) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE promotions
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = ? AND (usage_limit = 0 OR usage_count < usage_limit)`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}

// DecrementUsage gives back a usage slot when a checkout fails after
// the counter was bumped.
func (m *MySQLAdapter) DecrementUsage(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE promotions
		SET usage_count = usage_count - 1, updated_at = NOW()
		WHERE id = ? AND usage_count > 0`,
		id,
	)
	if err != nil {
		return fmt.Errorf("decrement usage: %w", err)
	}
	return nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
