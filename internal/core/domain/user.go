package domain

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return Invalid("email", "must be a valid address")
	}
	if u.Name == "" {
		return Invalid("name", "must not be empty")
	}
	return nil
}
