package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"gofinances/internal/amqp"
	"gofinances/internal/log"
)

// Consumer delivers transaction events until its context is done.
type Consumer interface {
	ConsumeTransactionRegistered(ctx context.Context, handler func(context.Context, *amqp.TransactionRegisteredMessage) error) error
}

// Handler processes one event. A returned error schedules a retry.
type Handler interface {
	Handle(ctx context.Context, msg *amqp.TransactionRegisteredMessage) error
}

// ExportWorker feeds consumed transaction events to a handler and keeps
// running totals for the shutdown log.
type ExportWorker struct {
	consumer Consumer
	handler  Handler
	logger   *log.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

func NewExportWorker(consumer Consumer, handler Handler, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		consumer: consumer,
		handler:  handler,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled or the consumer gives up. Cancellation
// is a clean stop and returns nil.
func (w *ExportWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Export worker started")
	err := w.consumer.ConsumeTransactionRegistered(ctx, w.handle)
	w.logger.InfoContext(ctx, "Export worker stopped",
		"processed", w.processed.Load(),
		"failed", w.failed.Load())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (w *ExportWorker) handle(ctx context.Context, msg *amqp.TransactionRegisteredMessage) error {
	if err := w.handler.Handle(ctx, msg); err != nil {
		w.failed.Add(1)
		return err
	}
	w.processed.Add(1)
	return nil
}

// Stats returns the number of handled and failed events so far.
func (w *ExportWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

// ReportStats logs the running totals every interval, skipping ticks where
// nothing changed, until ctx is done. A non-positive interval disables it.
func (w *ExportWorker) ReportStats(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastProcessed, lastFailed int64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			processed, failed := w.Stats()
			if processed == lastProcessed && failed == lastFailed {
				continue
			}
			lastProcessed, lastFailed = processed, failed
			w.logger.InfoContext(ctx, "Export worker stats",
				"processed", processed,
				"failed", failed)
		}
	}
}
