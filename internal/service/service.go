package service

import (
	"context"
	"time"

	"microblog/internal/models"
	"microblog/internal/repository"
)

// Authorization covers the credential-store operations. Validation
// failures (taken username, wrong password) come back inside AuthResult
// as field errors, never as the error return.
type Authorization interface {
	Register(ctx context.Context, username, password string) (AuthResult, error)
	Login(ctx context.Context, username, password string) (AuthResult, error)
	ChangePassword(ctx context.Context, username, newPassword string) (bool, error)
	GetSelf(ctx context.Context, username string) (*models.User, error)
}

// Tokens issues and verifies signed, time-limited identity assertions.
type Tokens interface {
	Issue(username string) (string, error)
	Verify(token string) (models.TokenPayload, bool)
}

// Posts covers post creation and cursor-based listing.
type Posts interface {
	Create(ctx context.Context, author, title string) (models.Post, error)
	List(ctx context.Context, limit int, cursor *time.Time) (PostPage, error)
}

// Publisher delivers a newly created post to live subscribers.
type Publisher interface {
	Publish(p models.Post)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Authorization
	Tokens
	Posts
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, tokens *TokenManager, pub Publisher) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, tokens),
		Tokens:        tokens,
		Posts:         NewPostService(repos.Posts, pub),
	}
}
