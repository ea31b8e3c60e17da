// Package auth handles user registration, credential verification and
// session tracking for the web layer.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"financas/internal/core"
	"financas/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must have at least 8 characters")
)

// UserRepository is the slice of storage the service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, u core.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
}

// Service registers users and verifies logins.
type Service struct {
	repo UserRepository
}

func NewService(repo UserRepository) *Service {
	return &Service{repo: repo}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (int64, error) {
	if len(password) < 8 {
		return 0, ErrWeakPassword
	}

	u := core.User{Name: name, Email: email}
	if err := u.Validate(); err != nil {
		return 0, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return 0, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	id, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Login verifies the credentials and returns the matching user.
// A missing user and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*core.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
