package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

const orderColumns = `id, user_id, promo_code, subtotal, discount, gateway_fee, tax, total, currency, status, payment_ref, created_at, updated_at`

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.PromoCode, order.Subtotal, order.Discount,
		order.GatewayFee, order.Tax, order.Total, order.Currency, order.Status,
		order.PaymentRef, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, l := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, item_id, item_name, unit_price, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			order.ID, l.ItemID, l.ItemName, l.UnitPrice, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE inventory
			SET stock = stock - ?, version = version + 1, updated_at = NOW()
			WHERE item_id = ? AND stock >= ?`,
			l.Quantity, l.ItemID, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrOptimisticLock
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return m.getOrderWhere(ctx, "id = ?", id)
}

func (m *MySQLAdapter) GetOrderByPaymentRef(ctx context.Context, txRef string) (*domain.Order, error) {
	return m.getOrderWhere(ctx, "payment_ref = ?", txRef)
}

func (m *MySQLAdapter) getOrderWhere(ctx context.Context, where string, arg any) (*domain.Order, error) {
	var order domain.Order
	err := m.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+where, arg,
	).Scan(&order.ID, &order.UserID, &order.PromoCode, &order.Subtotal, &order.Discount,
		&order.GatewayFee, &order.Tax, &order.Total, &order.Currency, &order.Status,
		&order.PaymentRef, &order.CreatedAt, &order.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	lines, err := m.orderLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return &order, nil
}

func (m *MySQLAdapter) orderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT item_id, item_name, unit_price, quantity
		FROM order_lines WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ItemID, &l.ItemName, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (m *MySQLAdapter) ListOrders(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	var args []any
	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
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
	query += " ORDER BY created_at DESC"

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.PromoCode, &order.Subtotal, &order.Discount,
			&order.GatewayFee, &order.Tax, &order.Total, &order.Currency, &order.Status,
			&order.PaymentRef, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := m.orderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
