package service

import (
	"context"
	"fmt"
	"time"

	"microblog/internal/models"
	"microblog/internal/repository"

	"github.com/google/uuid"
)

// MaxPageSize caps how many posts one page may return, regardless of the
// requested limit.
const MaxPageSize = 10

// PostPage is one page of posts plus an O(1) has-more signal.
type PostPage struct {
	Posts   []models.Post `json:"posts"`
	HasMore bool          `json:"has_more"`
}

// PostService handles post creation and pagination.
type PostService struct {
	posts repository.Posts
	pub   Publisher
}

func NewPostService(posts repository.Posts, pub Publisher) *PostService {
	return &PostService{posts: posts, pub: pub}
}

// Create persists a new post owned by author and announces it to live
// subscribers.
func (s *PostService) Create(ctx context.Context, author, title string) (models.Post, error) {
	now := time.Now().UTC()
	p := models.Post{
		ID:             uuid.NewString(),
		Title:          title,
		AuthorUsername: author,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return models.Post{}, fmt.Errorf("create post by %q: %w", author, err)
	}
	if s.pub != nil {
		s.pub.Publish(p)
	}
	return p, nil
}

// List returns posts strictly older than the cursor (all when nil),
// newest first. The limit is clamped to MaxPageSize; one extra row is
// fetched to compute HasMore and trimmed before returning.
func (s *PostService) List(ctx context.Context, limit int, cursor *time.Time) (PostPage, error) {
	if limit > MaxPageSize || limit <= 0 {
		limit = MaxPageSize
	}

	rows, err := s.posts.ListBefore(ctx, cursor, limit+1)
	if err != nil {
		return PostPage{}, fmt.Errorf("list posts: %w", err)
	}

	hasMore := len(rows) == limit+1
	if hasMore {
		rows = rows[:limit]
	}
	return PostPage{Posts: rows, HasMore: hasMore}, nil
}
