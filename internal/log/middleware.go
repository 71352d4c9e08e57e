package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from ctx, falling back to the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// RequestLogger is chi middleware that stores a request-scoped logger in the
// context and logs the start and end of every request.
func RequestLogger(logger *Logger) func(http.Handler) http.Handler {
	sl := NewStructuredLogger(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With(FieldRequestID, middleware.GetReqID(r.Context()))
			ctx := NewContext(r.Context(), reqLogger)
			r = r.WithContext(ctx)

			sl.LogHTTPStart(ctx, r)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			sl.LogHTTPEnd(ctx, r, status, time.Since(start).Milliseconds())
		})
	}
}

// StructuredLogger provides domain-level log events
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
		WithClientIP(r.RemoteAddr).
		WithRequestID(middleware.GetReqID(ctx))
	sl.logger.WithComponent(ComponentHTTP).DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs at warn for 4xx and error for 5xx responses.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(r.RemoteAddr).
		WithRequestID(middleware.GetReqID(ctx)).
		WithComponent(ComponentHTTP)
	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogTransactionRegistered(ctx context.Context, userID, id, txType, category, amount string) {
	fields := NewFields().
		WithUser(userID).
		WithTransaction(id, txType, category, amount).
		WithOperation(OpCreate).
		WithComponent(ComponentTransaction)
	sl.logger.Logger.InfoContext(ctx, "Transaction registered", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithError(err).WithOperation(operation).WithComponent(component)
	sl.logger.Logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}
