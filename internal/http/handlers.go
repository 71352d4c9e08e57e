package http

import (
	"context"
	"errors"
	"net/http"

	"gofinances/internal/auth"
	"gofinances/internal/core"
	"gofinances/internal/log"
	"gofinances/internal/services"
)

// TransactionService is the application layer used by the handlers.
type TransactionService interface {
	Register(ctx context.Context, userID string, form core.TransactionForm) (core.Transaction, error)
	Transactions(ctx context.Context, userID string) ([]core.TransactionView, error)
	Dashboard(ctx context.Context, userID string) (services.Dashboard, error)
	Resume(ctx context.Context, userID string, period core.Period) (services.Resume, error)
	CurrentPeriod() core.Period
	Categories() []core.CategoryView
	View(tx core.Transaction) core.TransactionView
}

type handlers struct {
	svc   TransactionService
	ready func(ctx context.Context) error
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handlers) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())
	RespondJSON(w, r, http.StatusOK, user)
}

func (h *handlers) handleCategories(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, r, http.StatusOK, h.svc.Categories())
}

func (h *handlers) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())
	views, err := h.svc.Transactions(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, r, http.StatusOK, views)
}

func (h *handlers) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())
	form, err := decodeTransactionForm(w, r)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	tx, err := h.svc.Register(r.Context(), user.ID, form)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, r, http.StatusCreated, h.svc.View(tx))
}

func (h *handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())
	d, err := h.svc.Dashboard(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, r, http.StatusOK, d)
}

func (h *handlers) handleResume(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())
	period, err := parsePeriod(r, h.svc.CurrentPeriod())
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid period", err.Error())
		return
	}
	res, err := h.svc.Resume(r.Context(), user.ID, period)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	RespondJSON(w, r, http.StatusOK, res)
}

func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		RespondError(w, r, http.StatusUnprocessableEntity, "validation failed", map[string]string{
			"field":   verr.Field,
			"message": verr.Err.Error(),
		})
	case errors.Is(err, services.ErrLoadTransactions):
		RespondError(w, r, http.StatusInternalServerError, services.ErrLoadTransactions.Error(), nil)
	case errors.Is(err, services.ErrSaveTransaction):
		RespondError(w, r, http.StatusInternalServerError, services.ErrSaveTransaction.Error(), nil)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Unhandled service error", log.FieldError, err.Error())
		RespondError(w, r, http.StatusInternalServerError, "internal error", nil)
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	RespondError(w, r, http.StatusUnauthorized, "authentication required", nil)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	RespondError(w, r, http.StatusTooManyRequests, "rate limit exceeded", nil)
}
