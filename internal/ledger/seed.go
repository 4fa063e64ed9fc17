package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"fiscal/internal/core"
)

// seedRecord is the on-disk shape of a historical transaction.
type seedRecord struct {
	ID          int64      `json:"id"`
	Kind        core.Kind  `json:"kind"`
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
}

// ReadSeedFile decodes a JSON array of historical transactions. Records
// without an id are numbered after their position in the file.
func ReadSeedFile(path string) ([]core.Transaction, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var records []seedRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	out := make([]core.Transaction, 0, len(records))
	for i, r := range records {
		id := r.ID
		if id == 0 {
			id = int64(i + 1)
		}
		out = append(out, core.Transaction{
			ID:          id,
			Kind:        r.Kind,
			Amount:      r.Amount,
			Category:    r.Category,
			Description: r.Description,
			Date:        r.Date,
		})
	}
	return out, nil
}
