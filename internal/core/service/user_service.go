package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/port"
)

var ErrBadCredentials = errors.New("invalid email or password")

// UserService registers and authenticates accounts.
type UserService struct {
	users port.UserRepository
	now   func() time.Time
}

func NewUserService(users port.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

func (s *UserService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return nil, domain.Invalid("password", "must be at least 8 characters")
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      domain.RoleCustomer,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}
