package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"microblog/internal/apperr"
	"microblog/internal/models"
	"microblog/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Field-error messages, kept stable for clients that match on them.
const (
	msgUsernameTaken    = "Username is not available"
	msgUsernameNotFound = "Username does not exist"
	msgWrongPassword    = "Incorrect password"
)

// AuthResult is the outcome of register/login. Either Errors is set, or
// User and AccessToken are.
type AuthResult struct {
	Errors      []apperr.FieldError `json:"errors,omitempty"`
	User        *models.User        `json:"user,omitempty"`
	AccessToken string              `json:"access_token,omitempty"`
}

func fieldError(field, message string) AuthResult {
	return AuthResult{Errors: []apperr.FieldError{{Field: field, Message: message}}}
}

// AuthService handles user auth logic.
type AuthService struct {
	users  repository.Users
	tokens Tokens
}

func NewAuthService(users repository.Users, tokens Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a user with a hashed password and returns an issued
// token for immediate login. A taken username is a field error, not a
// failure; the store's unique constraint closes the check-then-insert
// race with concurrent registrations.
func (s *AuthService) Register(ctx context.Context, username, password string) (AuthResult, error) {
	taken, err := s.users.Exists(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}
	if taken {
		return fieldError("username", msgUsernameTaken), nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("register %q: %w", username, err)
	}

	now := time.Now().UTC()
	u := models.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return fieldError("username", msgUsernameTaken), nil
		}
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token for %q: %w", username, err)
	}
	return AuthResult{User: &u, AccessToken: token}, nil
}

// Login verifies credentials and returns the user plus a fresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (AuthResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}
	if u == nil {
		return fieldError("username", msgUsernameNotFound), nil
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return fieldError("password", msgWrongPassword), nil
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token for %q: %w", username, err)
	}
	return AuthResult{User: u, AccessToken: token}, nil
}

// ChangePassword re-hashes and persists the new password. Returns false
// when the identity's record no longer exists. Hashing happens exactly
// here, once per actual password change; repositories only see hashes.
func (s *AuthService) ChangePassword(ctx context.Context, username, newPassword string) (bool, error) {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return false, fmt.Errorf("change password for %q: %w", username, err)
	}
	return s.users.UpdatePassword(ctx, username, hash, time.Now().UTC())
}

// GetSelf returns the current user record, or nil if it was deleted
// after the token was issued.
func (s *AuthService) GetSelf(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
