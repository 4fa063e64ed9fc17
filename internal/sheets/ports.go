package sheets

import (
	"context"

	"fiscal/internal/core"
)

// LedgerExporter copies a recorded transaction to an external spreadsheet.
// Implementations return an opaque reference to the written row.
type LedgerExporter interface {
	Export(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
