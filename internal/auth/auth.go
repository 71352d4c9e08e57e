// Package auth carries the identity supplied by the upstream authentication
// provider. The service trusts the headers set by that provider and never
// performs a sign-in flow of its own.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderUserName  = "X-User-Name"
	HeaderUserImage = "X-User-Image"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// User is the authenticated person. ID keys the transaction log.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type contextKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the user stored by Middleware.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok
}

// FromRequest reads the identity headers. A missing or blank user id yields
// ErrUnauthenticated.
func FromRequest(r *http.Request) (User, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return User{}, ErrUnauthenticated
	}
	return User{
		ID:    id,
		Name:  strings.TrimSpace(r.Header.Get(HeaderUserName)),
		Image: strings.TrimSpace(r.Header.Get(HeaderUserImage)),
	}, nil
}

// Middleware rejects requests without an identity by calling unauthorized,
// and stores the user in the request context otherwise.
func Middleware(unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := FromRequest(r)
			if err != nil {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
