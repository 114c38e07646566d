package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

var ErrOptimisticLock = errors.New("optimistic lock conflict")

// MySQLAdapter implements the repository ports on a relational schema.
// Methods are spread over the mysql_*.go files by aggregate.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO items (id, kind, name, description, category, price, currency, image_url, active, duration_min, capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Kind, item.Name, item.Description, item.Category, item.Price,
		item.Currency, item.ImageURL, item.Active, item.DurationMin, item.Capacity,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	err := m.db.QueryRowContext(ctx, `
		SELECT id, kind, name, description, category, price, currency, image_url, active, duration_min, capacity, created_at, updated_at
		FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Kind, &item.Name, &item.Description, &item.Category, &item.Price,
		&item.Currency, &item.ImageURL, &item.Active, &item.DurationMin, &item.Capacity,
		&item.CreatedAt, &item.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (m *MySQLAdapter) ListItems(ctx context.Context, filter port.ItemFilter) ([]domain.Item, error) {
	query := `
		SELECT id, kind, name, description, category, price, currency, image_url, active, duration_min, capacity, created_at, updated_at
		FROM items WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.ActiveOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY created_at DESC"

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Kind, &item.Name, &item.Description, &item.Category, &item.Price,
			&item.Currency, &item.ImageURL, &item.Active, &item.DurationMin, &item.Capacity,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) UpdateItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE items
		SET kind = ?, name = ?, description = ?, category = ?, price = ?, currency = ?, image_url = ?, active = ?, duration_min = ?, capacity = ?, updated_at = ?
		WHERE id = ?`,
		item.Kind, item.Name, item.Description, item.Category, item.Price, item.Currency,
		item.ImageURL, item.Active, item.DurationMin, item.Capacity, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteItem(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetInventory(ctx context.Context, itemID string) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := m.db.QueryRowContext(ctx, `
		SELECT item_id, stock, version, created_at, updated_at
		FROM inventory WHERE item_id = ?`, itemID,
	).Scan(&inv.ItemID, &inv.Stock, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &inv, nil
}

func (m *MySQLAdapter) UpdateInventory(ctx context.Context, inv domain.Inventory) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET stock = ?, version = version + 1, updated_at = NOW()
		WHERE item_id = ? AND version = ?`,
		inv.Stock, inv.ItemID, inv.Version,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func (m *MySQLAdapter) UpsertInventory(ctx context.Context, itemID string, stock int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory (item_id, stock, version, created_at, updated_at)
		VALUES (?, ?, 0, NOW(), NOW())
		ON DUPLICATE KEY UPDATE stock = VALUES(stock), version = version + 1, updated_at = NOW()`,
		itemID, stock,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return nil
}
