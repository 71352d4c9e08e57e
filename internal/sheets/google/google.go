package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gofinances/internal/core"
	"gofinances/internal/log"
	ports "gofinances/internal/sheets"
)

const dateLayout = "2006-01-02 15:04"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	loc           *time.Location
	logger        *log.Logger
}

var _ ports.TransactionExporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account taken
// from the environment. Rows are appended to sheetName of spreadsheetID and
// dates are written in loc.
func New(ctx context.Context, spreadsheetID, sheetName string, loc *time.Location, logger *log.Logger) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		loc:           loc,
		logger:        logger,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, logger *log.Logger) (*gsheet.Service, error) {
	credentialsJSON, source, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"source", source,
		"credentials_size", len(credentialsJSON))

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountCredentials() ([]byte, string, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), "GOOGLE_SERVICE_ACCOUNT_JSON", nil
	}
	for _, key := range []string{"GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS"} {
		path := strings.TrimSpace(os.Getenv(key))
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read service account file: %w", err)
		}
		return data, key, nil
	}
	return nil, "", errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// ExportTransaction appends one row for tx after the last non-empty row of
// the sheet.
func (c *Client) ExportTransaction(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(userID, tx, c.loc)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Exported transaction",
		log.FieldUserID, userID,
		log.FieldTransactionID, tx.ID,
		"range", ref)
	return ref, nil
}

// transactionRow lays out the columns date, user, name, type, category and
// amount. The amount is negative for exits so sheet sums give the balance.
func transactionRow(userID string, tx core.Transaction, loc *time.Location) []any {
	amount := tx.Amount
	kind := "entry"
	if tx.Type == core.Exit {
		amount = amount.Neg()
		kind = "exit"
	}
	return []any{
		tx.Date.In(loc).Format(dateLayout),
		userID,
		tx.Name,
		kind,
		tx.Category,
		amount.StringFixed(2),
	}
}
