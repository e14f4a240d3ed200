package models

import "time"

// Post is a single text post. AuthorUsername is a lookup key into users,
// not enforced referentially by the store.
type Post struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	AuthorUsername string    `json:"author_username"`
	Author         *User     `json:"author,omitempty"` // resolved per request, not persisted
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
