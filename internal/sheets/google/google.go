package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fiscal/internal/core"
	"fiscal/internal/log"
	ports "fiscal/internal/sheets"
)

var _ ports.LedgerExporter = (*Client)(nil)

// Columns written for every exported transaction.
var Header = []any{"ID", "Date", "Kind", "Category", "Description", "Amount"}

type Options struct {
	SpreadsheetID string
	// SheetName is the base tab name; the transaction year is prefixed to it.
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	logger = logger.WithComponent(log.ComponentSheets)

	credentials, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentials),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, opts, logger), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, opts Options, logger *log.Logger) *Client {
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Ledger"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		sheetBase:     base,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

func loadCredentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Export appends the transaction as one row of the year's ledger tab.
func (c *Client) Export(ctx context.Context, tx core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if tx.ID <= 0 {
		return "", fmt.Errorf("export transaction: invalid id %d", tx.ID)
	}

	sheet := yearPrefixedName(c.sheetBase, tx.Date.Year())
	rng := fmt.Sprintf("'%s'!A:F", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{Row(tx)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Exported transaction", log.FieldTxID, tx.ID, log.FieldSheetsRef, ref)
	return ref, nil
}

// Row renders a transaction in Header column order. Expenses keep a positive
// amount; the Kind column carries the sign.
func Row(tx core.Transaction) []any {
	return []any{
		strconv.FormatInt(tx.ID, 10),
		tx.Date.String(),
		string(tx.Kind),
		tx.Category,
		tx.Description,
		tx.Amount.String(),
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
