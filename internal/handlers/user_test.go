package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"microblog/internal/models"
	"microblog/internal/service"
)

func authedRouter(auth *mockAuthorization) *serviceRouter {
	tokens := &mockTokens{verifyOK: true, verifyPayload: models.TokenPayload{Username: "alice"}}
	s := &service.Service{Authorization: auth, Tokens: tokens}
	return &serviceRouter{r: newTestRouter(s, nil, nil)}
}

type serviceRouter struct {
	r http.Handler
}

func (sr *serviceRouter) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	sr.r.ServeHTTP(w, req)
	return w
}

func TestMe(t *testing.T) {
	auth := &mockAuthorization{selfUser: &models.User{Username: "alice"}}
	sr := authedRouter(auth)

	w := sr.do(http.MethodGet, "/api/v1/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var m map[string]*models.User
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["user"] == nil || m["user"].Username != "alice" {
		t.Fatalf("expected current user, got %s", w.Body.String())
	}
}

func TestMe_RecordGoneAfterIssuance(t *testing.T) {
	auth := &mockAuthorization{selfUser: nil}
	sr := authedRouter(auth)

	w := sr.do(http.MethodGet, "/api/v1/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["user"] != nil {
		t.Fatalf("expected null user, got %v", m["user"])
	}
}

func TestChangePassword(t *testing.T) {
	auth := &mockAuthorization{changeOK: true}
	sr := authedRouter(auth)

	w := sr.do(http.MethodPut, "/api/v1/me/password", `{"password":"new-pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var m map[string]bool
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if !m["ok"] {
		t.Fatalf("expected ok=true, got %s", w.Body.String())
	}
	if auth.lastChangeUsername != "alice" || auth.lastChangePassword != "new-pw" {
		t.Fatalf("service called with %q/%q", auth.lastChangeUsername, auth.lastChangePassword)
	}

	// missing body → 400, service untouched
	w = sr.do(http.MethodPut, "/api/v1/me/password", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty payload, got %d", w.Code)
	}
}
