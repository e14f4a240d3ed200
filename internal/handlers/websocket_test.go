package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microblog/internal/models"
	"microblog/internal/pubsub"
	"microblog/internal/service"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, srvURL, path string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srvURL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial %s: %v", path, err)
	}
	return conn
}

func TestWebSocket_PostAdded_AuthenticatedReceives(t *testing.T) {
	hub := pubsub.NewHub()
	tokens := &mockTokens{verifyOK: true, verifyPayload: models.TokenPayload{Username: "alice"}}
	s := &service.Service{Tokens: tokens}
	r := newTestRouter(s, nil, hub)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialWS(t, srv.URL, "/ws/posts?token=tok")
	defer conn.Close()

	// The subscription registers shortly after the handshake; keep
	// publishing until the stream delivers.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Publish(models.Post{ID: "p1", Title: "hello", AuthorUsername: "alice"})
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected a post_added event, read failed: %v", err)
	}

	var env struct {
		Type string      `json:"type"`
		Data models.Post `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != "post_added" || env.Data.ID != "p1" {
		t.Fatalf("unexpected envelope: %s", msg)
	}
}

func TestWebSocket_PostAdded_UnauthenticatedFilteredAtDelivery(t *testing.T) {
	hub := pubsub.NewHub()
	tokens := &mockTokens{verifyOK: false}
	s := &service.Service{Tokens: tokens}
	r := newTestRouter(s, nil, hub)

	srv := httptest.NewServer(r)
	defer srv.Close()

	// Connection is accepted without a token...
	conn := dialWS(t, srv.URL, "/ws/posts")
	defer conn.Close()

	// ...but published posts must never reach it.
	for i := 0; i < 5; i++ {
		hub.Publish(models.Post{ID: "p1", Title: "secret"})
		time.Sleep(20 * time.Millisecond)
	}

	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, msg, err := conn.ReadMessage(); err == nil {
		t.Fatalf("unauthenticated subscriber received event: %s", msg)
	}
}
