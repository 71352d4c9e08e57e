// Package http exposes the transaction service as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gofinances/internal/auth"
	"gofinances/internal/log"
	"gofinances/internal/middleware/ratelimit"
	"gofinances/internal/middleware/security"
)

// Options configures NewServer.
type Options struct {
	Addr           string
	AllowedOrigins []string
	// WritesPerMinute bounds transaction registrations per user.
	WritesPerMinute int
	// Ready reports whether the storage backend can serve requests.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
}

type Server struct {
	http.Server
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(svc TransactionService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.WritesPerMinute})

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		limiter: limiter,
	}
	s.Handler = newRouter(svc, opts, limiter)
	return s
}

func newRouter(svc TransactionService, opts Options, limiter *ratelimit.Limiter) http.Handler {
	h := &handlers{svc: svc, ready: opts.Ready}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", auth.HeaderUserID, auth.HeaderUserName, auth.HeaderUserImage},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", h.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(unauthorized))
		r.Get("/me", h.handleMe)
		r.Get("/categories", h.handleCategories)
		r.Get("/transactions", h.handleListTransactions)
		r.With(limiter.Middleware(userKey, tooManyRequests)).Post("/transactions", h.handleCreateTransaction)
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/resume", h.handleResume)
	})
	return r
}

func userKey(r *http.Request) string {
	if u, ok := auth.FromContext(r.Context()); ok {
		return u.ID
	}
	return r.RemoteAddr
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
