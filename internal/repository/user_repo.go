package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"microblog/internal/models"
)

// ErrDuplicateUsername is returned by Create when the username is already
// taken. The users table carries a UNIQUE constraint, so two registrations
// racing on the same username cannot both succeed.
var ErrDuplicateUsername = errors.New("username already taken")

type UserSQLite struct {
	db *sql.DB
}

func NewUserSQLite(db *sql.DB) *UserSQLite { return &UserSQLite{db: db} }

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserSQLite)(nil)

const (
	insertUserSQL = `INSERT INTO users (username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)`

	selectUserByUsernameSQL = `SELECT username, password_hash, created_at, updated_at FROM users WHERE username = ?`

	existsUserSQL = `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

	updateUserPasswordSQL = `UPDATE users SET password_hash = ?, updated_at = ? WHERE username = ?`
)

// Create inserts a new user. The caller hashes the password; this layer
// only ever sees the hash.
func (r *UserSQLite) Create(ctx context.Context, u models.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL,
		u.Username,
		u.PasswordHash,
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return nil
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserSQLite) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectUserByUsernameSQL, username).
		Scan(&u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// GetByUsernames fetches all users whose username is in the given set.
// Missing usernames are simply absent from the result; order is whatever
// the store returns.
func (r *UserSQLite) GetByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(usernames)-1) + "?"
	q := `SELECT username, password_hash, created_at, updated_at FROM users WHERE username IN (` + placeholders + `)`

	args := make([]any, len(usernames))
	for i, name := range usernames {
		args[i] = name
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select users by usernames: %w", err)
	}
	defer rows.Close()

	out := make([]models.User, 0, len(usernames))
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.CreatedAt = u.CreatedAt.UTC()
		u.UpdatedAt = u.UpdatedAt.UTC()
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether a user with the given username exists.
func (r *UserSQLite) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, existsUserSQL, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user %q exists: %w", username, err)
	}
	return exists, nil
}

// UpdatePassword replaces the stored hash. Returns false when no row
// matched (the user record no longer exists).
func (r *UserSQLite) UpdatePassword(ctx context.Context, username, passwordHash string, updatedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, updateUserPasswordSQL, passwordHash, updatedAt.UTC(), username)
	if err != nil {
		return false, fmt.Errorf("update password for %q: %w", username, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for %q: %w", username, err)
	}
	return affected > 0, nil
}

// isUniqueViolation detects the sqlite unique-constraint error without
// depending on driver-internal error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
