package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"microblog/internal/models"
)

type mockPostsRepo struct {
	ListBeforeFn func(cursor *time.Time, limit int) ([]models.Post, error)
	CreateFn     func(p models.Post) error

	createCalls []models.Post
	lastCursor  *time.Time
	lastLimit   int
}

func (m *mockPostsRepo) Create(ctx context.Context, p models.Post) error {
	m.createCalls = append(m.createCalls, p)
	return m.CreateFn(p)
}
func (m *mockPostsRepo) ListBefore(ctx context.Context, cursor *time.Time, limit int) ([]models.Post, error) {
	m.lastCursor = cursor
	m.lastLimit = limit
	return m.ListBeforeFn(cursor, limit)
}

type mockPublisher struct {
	published []models.Post
}

func (m *mockPublisher) Publish(p models.Post) {
	m.published = append(m.published, p)
}

func makePosts(n int) []models.Post {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	out := make([]models.Post, n)
	for i := range out {
		out[i] = models.Post{
			ID:             string(rune('a' + i)),
			Title:          "post",
			AuthorUsername: "alice",
			CreatedAt:      base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

// --- Create tests ---

func TestPostService_Create_PersistsAndPublishes(t *testing.T) {
	repo := &mockPostsRepo{CreateFn: func(p models.Post) error { return nil }}
	pub := &mockPublisher{}
	svc := NewPostService(repo, pub)

	p, err := svc.Create(context.Background(), "alice", "first!")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated post ID")
	}
	if p.AuthorUsername != "alice" || p.Title != "first!" {
		t.Fatalf("unexpected post: %+v", p)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("expected matching creation timestamps, got %v / %v", p.CreatedAt, p.UpdatedAt)
	}

	if len(repo.createCalls) != 1 {
		t.Fatalf("expected 1 repo insert, got %d", len(repo.createCalls))
	}
	if len(pub.published) != 1 || pub.published[0].ID != p.ID {
		t.Fatalf("expected post announced to subscribers, got %+v", pub.published)
	}
}

func TestPostService_Create_RepoErrorDoesNotPublish(t *testing.T) {
	repo := &mockPostsRepo{CreateFn: func(p models.Post) error { return errors.New("disk full") }}
	pub := &mockPublisher{}
	svc := NewPostService(repo, pub)

	if _, err := svc.Create(context.Background(), "alice", "x"); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.published) != 0 {
		t.Fatal("failed create must not be announced")
	}
}

// --- List tests ---

func TestPostService_List_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantFetch int // limit+1 rows requested from the store
	}{
		{"over_max", 15, MaxPageSize + 1},
		{"at_max", 10, 11},
		{"under_max", 3, 4},
		{"zero_defaults", 0, MaxPageSize + 1},
		{"negative_defaults", -5, MaxPageSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockPostsRepo{
				ListBeforeFn: func(cursor *time.Time, limit int) ([]models.Post, error) {
					return nil, nil
				},
			}
			svc := NewPostService(repo, nil)

			if _, err := svc.List(context.Background(), tt.limit, nil); err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			if repo.lastLimit != tt.wantFetch {
				t.Fatalf("store asked for %d rows, want %d", repo.lastLimit, tt.wantFetch)
			}
		})
	}
}

func TestPostService_List_HasMore(t *testing.T) {
	// 11 rows back for limit 10 → hasMore, extra row trimmed.
	repo := &mockPostsRepo{
		ListBeforeFn: func(cursor *time.Time, limit int) ([]models.Post, error) {
			return makePosts(11), nil
		},
	}
	svc := NewPostService(repo, nil)

	page, err := svc.List(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !page.HasMore {
		t.Error("expected HasMore with a full page plus one")
	}
	if len(page.Posts) != 10 {
		t.Fatalf("expected 10 posts after trim, got %d", len(page.Posts))
	}

	// exactly 10 rows → no more pages
	repo.ListBeforeFn = func(cursor *time.Time, limit int) ([]models.Post, error) {
		return makePosts(10), nil
	}
	page, err = svc.List(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.HasMore {
		t.Error("expected HasMore=false with exactly one page")
	}
	if len(page.Posts) != 10 {
		t.Fatalf("expected 10 posts, got %d", len(page.Posts))
	}
}

func TestPostService_List_CursorForwarded(t *testing.T) {
	cursor := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockPostsRepo{
		ListBeforeFn: func(c *time.Time, limit int) ([]models.Post, error) {
			return nil, nil
		},
	}
	svc := NewPostService(repo, nil)

	if _, err := svc.List(context.Background(), 10, &cursor); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastCursor == nil || !repo.lastCursor.Equal(cursor) {
		t.Fatalf("cursor not forwarded to store: %v", repo.lastCursor)
	}
}

func TestPostService_List_PagesNeverOverlap(t *testing.T) {
	// Chain pages by cursor over a fixed descending set and make sure no
	// post repeats across pages.
	all := makePosts(25)
	repo := &mockPostsRepo{
		ListBeforeFn: func(cursor *time.Time, limit int) ([]models.Post, error) {
			var out []models.Post
			for _, p := range all {
				if cursor != nil && !p.CreatedAt.Before(*cursor) {
					continue
				}
				out = append(out, p)
				if len(out) == limit {
					break
				}
			}
			return out, nil
		},
	}
	svc := NewPostService(repo, nil)

	seen := map[string]bool{}
	var cursor *time.Time
	for {
		page, err := svc.List(context.Background(), 10, cursor)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		for _, p := range page.Posts {
			if seen[p.ID] {
				t.Fatalf("post %s returned twice across pages", p.ID)
			}
			seen[p.ID] = true
		}
		if !page.HasMore {
			break
		}
		last := page.Posts[len(page.Posts)-1].CreatedAt
		cursor = &last
	}
	if len(seen) != len(all) {
		t.Fatalf("expected to page through %d posts, saw %d", len(all), len(seen))
	}
}
