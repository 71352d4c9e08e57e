package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := FromRequest(r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	r.Header.Set(HeaderUserID, "  user-1 ")
	r.Header.Set(HeaderUserName, "Ana")
	u, err := FromRequest(r)
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if u.ID != "user-1" || u.Name != "Ana" || u.Image != "" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestMiddleware(t *testing.T) {
	var seen User
	h := Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "user-2")
	req.Header.Set(HeaderUserImage, "https://img.example/u2.png")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if seen.ID != "user-2" || seen.Image != "https://img.example/u2.png" {
		t.Fatalf("unexpected user in context: %+v", seen)
	}
}

func TestFromContextEmpty(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no user")
	}
}
