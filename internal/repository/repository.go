package repository

import (
	"context"
	"database/sql"
	"time"

	"microblog/internal/models"
)

type Users interface {
	Create(ctx context.Context, u models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, username, passwordHash string, updatedAt time.Time) (bool, error)
}

type Posts interface {
	Create(ctx context.Context, p models.Post) error
	// ListBefore returns up to limit posts in descending creation-time
	// order; a non-nil cursor restricts results to posts strictly older.
	ListBefore(ctx context.Context, cursor *time.Time, limit int) ([]models.Post, error)
}

type Repository struct {
	Users Users
	Posts Posts
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserSQLite(db),
		Posts: NewPostSQLite(db),
	}
}
