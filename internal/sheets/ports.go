package sheets

import (
	"context"

	"gofinances/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter copies a registered transaction to an external
	// spreadsheet. It returns a reference to the written row range.
	TransactionExporter interface {
		ExportTransaction(ctx context.Context, userID string, tx core.Transaction) (rowRef string, err error)
	}
)
