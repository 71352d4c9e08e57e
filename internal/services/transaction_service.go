package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gofinances/internal/category"
	"gofinances/internal/core"
	"gofinances/internal/format"
	"gofinances/internal/ledger"
	"gofinances/internal/log"
	"gofinances/internal/report"
)

var (
	// ErrLoadTransactions is returned when a user's log cannot be read. The
	// underlying storage error stays reachable through errors.As.
	ErrLoadTransactions = errors.New("could not load transactions")
	ErrSaveTransaction  = errors.New("could not save transaction")
)

// Publisher announces registered transactions to other processes.
type Publisher interface {
	PublishTransactionRegistered(ctx context.Context, userID string, tx core.Transaction) error
}

type (
	// Dashboard is the home screen: the three cards and the full listing.
	Dashboard struct {
		Summary      core.Summary           `json:"summary"`
		Transactions []core.TransactionView `json:"transactions"`
	}

	PeriodRef struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}

	// Resume is the per-category expense breakdown of one month.
	Resume struct {
		Period         PeriodRef            `json:"period"`
		Label          string               `json:"label"`
		Previous       PeriodRef            `json:"previous"`
		Next           PeriodRef            `json:"next"`
		Categories     []core.CategoryTotal `json:"categories"`
		Total          decimal.Decimal      `json:"total"`
		TotalFormatted string               `json:"total_formatted"`
	}
)

// TransactionService orchestrates registration and the read views over a
// user's transaction log.
type TransactionService struct {
	ledger    *ledger.Log
	engine    *report.Engine
	format    *format.Formatter
	registry  *category.Registry
	publisher Publisher
	newID     func() string
	now       func() time.Time
	logger    *log.Logger
	events    *log.StructuredLogger
}

type Option func(*TransactionService)

// WithPublisher enables event publishing after each successful append.
func WithPublisher(p Publisher) Option {
	return func(s *TransactionService) { s.publisher = p }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *TransactionService) { s.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *TransactionService) { s.now = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *TransactionService) { s.logger = l }
}

func NewTransactionService(l *ledger.Log, f *format.Formatter, opts ...Option) *TransactionService {
	s := &TransactionService{
		ledger:   l,
		engine:   report.NewEngine(f),
		format:   f,
		registry: f.Registry(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentTransaction)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Register validates the form, appends the new transaction to the user's log
// and publishes it. Publishing failures are logged and do not fail the call.
func (s *TransactionService) Register(ctx context.Context, userID string, form core.TransactionForm) (core.Transaction, error) {
	if err := form.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !s.registry.Contains(form.Category) {
		return core.Transaction{}, &core.ValidationError{Field: "category", Err: core.ErrUnknownCategory}
	}

	tx, err := core.NewTransaction(form, s.newID(), s.now().UTC())
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.ledger.Append(ctx, userID, tx); err != nil {
		s.events.LogError(ctx, "Failed to append transaction", err, log.ComponentTransaction, log.OpAppend,
			log.NewFields().WithUser(userID))
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrSaveTransaction, err)
	}
	s.events.LogTransactionRegistered(ctx, userID, tx.ID, string(tx.Type), tx.Category, tx.Amount.StringFixed(2))

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No publisher configured, skipping transaction event")
		return tx, nil
	}
	if err := s.publisher.PublishTransactionRegistered(ctx, userID, tx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldUserID, userID,
			log.FieldTransactionID, tx.ID,
			log.FieldError, err.Error())
	}
	return tx, nil
}

// Transactions returns the user's formatted listing, newest first.
func (s *TransactionService) Transactions(ctx context.Context, userID string) ([]core.TransactionView, error) {
	txs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.Transactions(txs), nil
}

func (s *TransactionService) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	txs, err := s.load(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Summary:      s.engine.Summary(txs),
		Transactions: s.engine.Transactions(txs),
	}, nil
}

// Resume returns the expense breakdown of period with links to the adjacent
// months.
func (s *TransactionService) Resume(ctx context.Context, userID string, period core.Period) (Resume, error) {
	txs, err := s.load(ctx, userID)
	if err != nil {
		return Resume{}, err
	}
	categories := s.engine.Breakdown(txs, period)
	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.Total)
	}
	return Resume{
		Period:         ref(period),
		Label:          s.format.MonthYear(period),
		Previous:       ref(period.Previous()),
		Next:           ref(period.Next()),
		Categories:     categories,
		Total:          total,
		TotalFormatted: s.format.Currency(total),
	}, nil
}

// CurrentPeriod is the month containing the service clock's now.
func (s *TransactionService) CurrentPeriod() core.Period {
	return core.CurrentPeriod(s.now(), s.format.Location())
}

func (s *TransactionService) Categories() []core.CategoryView {
	all := s.registry.All()
	out := make([]core.CategoryView, 0, len(all))
	for _, c := range all {
		out = append(out, s.format.Category(c.Key))
	}
	return out
}

func (s *TransactionService) load(ctx context.Context, userID string) ([]core.Transaction, error) {
	txs, err := s.ledger.Load(ctx, userID)
	if err != nil {
		s.events.LogError(ctx, "Failed to load transactions", err, log.ComponentTransaction, log.OpRead,
			log.NewFields().WithUser(userID))
		return nil, fmt.Errorf("%w: %w", ErrLoadTransactions, err)
	}
	return txs, nil
}

func ref(p core.Period) PeriodRef {
	return PeriodRef{Year: p.Year, Month: int(p.Month)}
}

// View formats a single transaction the way the listing does.
func (s *TransactionService) View(tx core.Transaction) core.TransactionView {
	return s.format.Transaction(tx)
}
