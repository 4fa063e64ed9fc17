package analytics

import (
	"slices"

	"fiscal/internal/core"
)

type (
	ActivityItem struct {
		Transaction core.Transaction `json:"transaction"`
		Signed      core.Money       `json:"signedAmount"`
		Icon        string           `json:"icon"`
	}

	RecentActivity struct {
		Items []ActivityItem `json:"items"`
	}
)

// Recent returns at most limit transactions, newest date first. Same-day
// transactions are listed most recently inserted first.
func Recent(txs []core.Transaction, limit int, rules []IconRule) RecentActivity {
	ordered := slices.Clone(txs)
	slices.Reverse(ordered)
	slices.SortStableFunc(ordered, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	if limit < 0 {
		limit = 0
	}
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	items := make([]ActivityItem, 0, len(ordered))
	for _, tx := range ordered {
		amountOf(tx)
		items = append(items, ActivityItem{
			Transaction: tx,
			Signed:      tx.Signed(),
			Icon:        IconFor(tx.Category, rules),
		})
	}
	return RecentActivity{Items: items}
}
