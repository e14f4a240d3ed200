package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"microblog/internal/models"
	"microblog/internal/pubsub"
	"microblog/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuthorization struct {
	registerRes service.AuthResult
	registerErr error
	loginRes    service.AuthResult
	loginErr    error
	changeOK    bool
	changeErr   error
	selfUser    *models.User
	selfErr     error

	lastRegisterUsername string
	lastRegisterPassword string
	lastLoginUsername    string
	lastLoginPassword    string
	lastChangeUsername   string
	lastChangePassword   string
	lastSelfUsername     string
}

func (m *mockAuthorization) Register(ctx context.Context, username, password string) (service.AuthResult, error) {
	m.lastRegisterUsername = username
	m.lastRegisterPassword = password
	return m.registerRes, m.registerErr
}
func (m *mockAuthorization) Login(ctx context.Context, username, password string) (service.AuthResult, error) {
	m.lastLoginUsername = username
	m.lastLoginPassword = password
	return m.loginRes, m.loginErr
}
func (m *mockAuthorization) ChangePassword(ctx context.Context, username, newPassword string) (bool, error) {
	m.lastChangeUsername = username
	m.lastChangePassword = newPassword
	return m.changeOK, m.changeErr
}
func (m *mockAuthorization) GetSelf(ctx context.Context, username string) (*models.User, error) {
	m.lastSelfUsername = username
	return m.selfUser, m.selfErr
}

type mockTokens struct {
	issueToken    string
	issueErr      error
	verifyPayload models.TokenPayload
	verifyOK      bool

	lastIssueUsername string
	lastVerifyToken   string
}

func (m *mockTokens) Issue(username string) (string, error) {
	m.lastIssueUsername = username
	return m.issueToken, m.issueErr
}
func (m *mockTokens) Verify(token string) (models.TokenPayload, bool) {
	m.lastVerifyToken = token
	return m.verifyPayload, m.verifyOK
}

type mockPosts struct {
	createPost models.Post
	createErr  error
	listPage   service.PostPage
	listErr    error

	createCalls      int
	lastCreateAuthor string
	lastCreateTitle  string
	lastListLimit    int
	lastListCursor   *time.Time
}

func (m *mockPosts) Create(ctx context.Context, author, title string) (models.Post, error) {
	m.createCalls++
	m.lastCreateAuthor = author
	m.lastCreateTitle = title
	return m.createPost, m.createErr
}
func (m *mockPosts) List(ctx context.Context, limit int, cursor *time.Time) (service.PostPage, error) {
	m.lastListLimit = limit
	m.lastListCursor = cursor
	return m.listPage, m.listErr
}

// stubUserSource backs the author batch-loader in tests, recording every
// batched lookup it serves.
type stubUserSource struct {
	mu    sync.Mutex
	users []models.User
	err   error
	calls [][]string
}

func (s *stubUserSource) GetByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), usernames...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	requested := make(map[string]bool, len(usernames))
	for _, name := range usernames {
		requested[name] = true
	}
	var out []models.User
	for _, u := range s.users {
		if requested[u.Username] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubUserSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, authors *stubUserSource, hub *pubsub.Hub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if authors == nil {
		h := NewHandler(s, nil, nil, hub, nil)
		return h.InitRoutes()
	}
	h := NewHandler(s, authors, nil, hub, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
