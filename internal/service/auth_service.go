package service

import (
	"context"
	"fmt"
	"time"

	"cam-server/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

type AuthService struct {
	userStore UserStore
}

func NewAuthService(userStore UserStore) *AuthService {
	return &AuthService{userStore: userStore}
}

// Login verifies credentials and the approval gate. It returns the user id
// on success and nil when the credentials are wrong or the user is not yet
// approved; the caller cannot tell the two apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (*int64, error) {
	user, err := s.userStore.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login lookup failed: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}

	if !user.Approved {
		return nil, nil
	}

	if err := s.userStore.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return &user.ID, nil
}

// Register creates a new unapproved user. Returns false when the email is
// already taken.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (bool, error) {
	existing, err := s.userStore.GetUserByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("register lookup failed: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Approved:     false,
		LastLogin:    time.Now().UTC(),
	}
	if _, err := s.userStore.CreateUser(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return true, nil
}

// UsernameTaken reports whether a username is already registered
func (s *AuthService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	user, err := s.userStore.GetUserByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("username lookup failed: %w", err)
	}
	return user != nil, nil
}
