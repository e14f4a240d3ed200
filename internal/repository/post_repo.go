package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"microblog/internal/models"
)

type PostSQLite struct {
	db *sql.DB
}

func NewPostSQLite(db *sql.DB) *PostSQLite { return &PostSQLite{db: db} }

var _ Posts = (*PostSQLite)(nil)

const (
	insertPostSQL = `INSERT INTO posts (id, title, author_username, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	selectPostsSQL = `SELECT id, title, author_username, created_at, updated_at FROM posts`
)

// Create inserts a new post. Posts are immutable after creation.
func (r *PostSQLite) Create(ctx context.Context, p models.Post) error {
	_, err := r.db.ExecContext(ctx, insertPostSQL,
		p.ID,
		p.Title,
		p.AuthorUsername,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert post %q: %w", p.ID, err)
	}
	return nil
}

// ListBefore returns up to limit posts strictly older than the cursor
// (all posts when cursor is nil), newest first.
func (r *PostSQLite) ListBefore(ctx context.Context, cursor *time.Time, limit int) ([]models.Post, error) {
	q := selectPostsSQL
	var args []any
	if cursor != nil {
		q += " WHERE created_at < ?"
		args = append(args, cursor.UTC())
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Post, 0, limit)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.AuthorUsername, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		p.UpdatedAt = p.UpdatedAt.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
