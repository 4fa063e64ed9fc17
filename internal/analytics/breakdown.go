package analytics

import (
	"fiscal/internal/core"
)

// DefaultPalette is the fixed colour cycle for breakdown entries.
var DefaultPalette = []string{"#8b5cf6", "#06b6d4", "#f43f5e", "#fb923c", "#34d399", "#94a3b8"}

type (
	CategoryEntry struct {
		Category   string     `json:"category"`
		Amount     core.Money `json:"amount"`
		Percent    float64    `json:"percent"`
		ColorIndex int        `json:"colorIndex"`
		Color      string     `json:"color,omitempty"`
	}

	CategoryBreakdown struct {
		Entries []CategoryEntry `json:"entries"`
		Total   core.Money      `json:"total"`
	}
)

// Breakdown groups the expenses of now's calendar month by category.
func Breakdown(txs []core.Transaction, now core.Date, palette []string) CategoryBreakdown {
	return BreakdownFor(txs, core.PeriodOf(now), palette)
}

// BreakdownFor groups the expenses of period by category. Entries appear in
// the order their category is first seen when walking the period's expenses
// by date, and colours are assigned by entry position modulo the palette.
func BreakdownFor(txs []core.Transaction, period core.Period, palette []string) CategoryBreakdown {
	index := map[string]int{}
	var entries []CategoryEntry
	var total core.Money
	for _, tx := range chronological(txs) {
		if tx.Kind != core.Expense || tx.Period() != period {
			continue
		}
		amount := core.Money{Cents: amountOf(tx)}
		total = total.Add(amount)
		i, ok := index[tx.Category]
		if !ok {
			i = len(entries)
			index[tx.Category] = i
			entries = append(entries, CategoryEntry{Category: tx.Category})
		}
		entries[i].Amount = entries[i].Amount.Add(amount)
	}

	out := CategoryBreakdown{Entries: []CategoryEntry{}, Total: total}
	if total.IsZero() {
		return out
	}
	for i := range entries {
		entries[i].Percent = core.Percent(entries[i].Amount, total)
		if len(palette) > 0 {
			entries[i].ColorIndex = i % len(palette)
			entries[i].Color = palette[entries[i].ColorIndex]
		}
	}
	out.Entries = entries
	return out
}
