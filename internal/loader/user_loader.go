package loader

import (
	"context"
	"sync"
	"time"

	"microblog/internal/models"
)

// DefaultWindow is how long the loader waits for more Load calls before
// flushing the pending batch.
const DefaultWindow = 2 * time.Millisecond

// UserSource is the bulk lookup the loader batches over.
type UserSource interface {
	GetByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
}

type loadResult struct {
	user *models.User
	err  error
}

// UserLoader coalesces concurrent author lookups within one request into
// a single batched query keyed by the distinct set of requested
// usernames. One instance lives per inbound request and is never shared
// across requests, so nothing can leak between them and memory is
// bounded by one request's working set.
type UserLoader struct {
	source UserSource
	window time.Duration

	mu      sync.Mutex
	pending map[string][]chan loadResult
}

// NewUserLoader builds a loader over source. A non-positive window falls
// back to DefaultWindow.
func NewUserLoader(source UserSource, window time.Duration) *UserLoader {
	if window <= 0 {
		window = DefaultWindow
	}
	return &UserLoader{source: source, window: window}
}

// Load resolves one username, returning (nil, nil) when no such user
// exists. All Load calls issued before the current window closes are
// merged into one outgoing batch query; each caller gets the result
// matching its own key regardless of the order the store returns rows.
func (l *UserLoader) Load(ctx context.Context, username string) (*models.User, error) {
	ch := make(chan loadResult, 1)

	l.mu.Lock()
	if l.pending == nil {
		l.pending = make(map[string][]chan loadResult)
		// First caller of the window owns the flush; the batch query
		// runs under its context since all callers share one request.
		time.AfterFunc(l.window, func() { l.flush(ctx) })
	}
	l.pending[username] = append(l.pending[username], ch)
	l.mu.Unlock()

	select {
	case res := <-ch:
		return res.user, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// flush issues the batched lookup and distributes results back to every
// waiter, keyed by username.
func (l *UserLoader) flush(ctx context.Context) {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	usernames := make([]string, 0, len(batch))
	for name := range batch {
		usernames = append(usernames, name)
	}

	users, err := l.source.GetByUsernames(ctx, usernames)
	if err != nil {
		for _, waiters := range batch {
			for _, ch := range waiters {
				ch <- loadResult{err: err}
			}
		}
		return
	}

	byUsername := make(map[string]*models.User, len(users))
	for i := range users {
		byUsername[users[i].Username] = &users[i]
	}

	for name, waiters := range batch {
		res := loadResult{user: byUsername[name]}
		for _, ch := range waiters {
			ch <- res
		}
	}
}
