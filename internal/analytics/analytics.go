// Package analytics derives read-only views from a ledger snapshot.
//
// Every function here is pure: it takes the snapshot and the reference date
// explicitly, keeps no state and never mutates its input, so equal inputs
// always produce identical outputs. Empty ledgers yield zeroed views.
package analytics

import (
	"fmt"
	"slices"

	"fiscal/internal/core"
)

// amountOf returns the unsigned amount of tx. A non-positive amount can only
// reach this point if the ledger admitted an invalid record.
func amountOf(tx core.Transaction) int64 {
	if tx.Amount.Cents <= 0 {
		panic(fmt.Sprintf("analytics: transaction %d has non-positive amount %d", tx.ID, tx.Amount.Cents))
	}
	return tx.Amount.Cents
}

// chronological returns the snapshot ordered by date ascending. Transactions
// on the same date keep their insertion order.
func chronological(txs []core.Transaction) []core.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})
	return out
}
