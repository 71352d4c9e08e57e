package services

import (
	"context"
	"fmt"

	"gofinances/internal/amqp"
	"gofinances/internal/log"
	"gofinances/internal/sheets"
)

// ExportProcessor copies registered transactions to a spreadsheet. A
// returned error makes the consumer retry the message.
type ExportProcessor struct {
	exporter sheets.TransactionExporter
	logger   *log.Logger
}

func NewExportProcessor(exporter sheets.TransactionExporter, logger *log.Logger) *ExportProcessor {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportProcessor{exporter: exporter, logger: logger.WithComponent(log.ComponentWorker)}
}

func (p *ExportProcessor) Handle(ctx context.Context, msg *amqp.TransactionRegisteredMessage) error {
	if p.exporter == nil {
		p.logger.WarnContext(ctx, "No exporter configured, dropping transaction event",
			log.FieldTransactionID, msg.Transaction.ID)
		return nil
	}
	ref, err := p.exporter.ExportTransaction(ctx, msg.UserID, msg.Transaction)
	if err != nil {
		return fmt.Errorf("export transaction %s: %w", msg.Transaction.ID, err)
	}
	p.logger.InfoContext(ctx, "Transaction exported",
		log.FieldUserID, msg.UserID,
		log.FieldTransactionID, msg.Transaction.ID,
		log.FieldOperation, log.OpExport,
		"row_ref", ref)
	return nil
}
