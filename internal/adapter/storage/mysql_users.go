package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiyeni/storefront/internal/core/domain"
)

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

func (m *MySQLAdapter) CreateUser(ctx context.Context, u domain.User) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return m.getUserWhere(ctx, "id = ?", id)
}

func (m *MySQLAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getUserWhere(ctx, "email = ?", email)
}

func (m *MySQLAdapter) getUserWhere(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := m.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
