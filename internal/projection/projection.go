// Package projection estimates next-month spending from the rolling category
// history produced by the analytics package.
//
// The estimate for a series is a recency-weighted blend of its latest month
// and its trailing average over the whole window. Confidence reflects how
// many months of the window carry spending and how stable those amounts are.
package projection

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"fiscal/internal/analytics"
	"fiscal/internal/core"
)

// DefaultRecencyWeight is the share of the latest month in a projection.
const DefaultRecencyWeight = 0.6

// DefaultDispersionScale is the standard deviation at which a fully observed
// series scores a confidence of 50.
var DefaultDispersionScale = core.FromUnits(1000)

type Params struct {
	RecencyWeight   float64
	DispersionScale core.Money
}

func DefaultParams() Params {
	return Params{RecencyWeight: DefaultRecencyWeight, DispersionScale: DefaultDispersionScale}
}

type (
	CategoryProjection struct {
		Category      string     `json:"category"`
		Projected     core.Money `json:"projected"`
		Current       core.Money `json:"current"`
		PercentChange float64    `json:"percentChange"`
		Confidence    float64    `json:"confidence"`
	}

	Projection struct {
		PerCategory []CategoryProjection `json:"perCategory"`
		Confidence  float64              `json:"confidence"`

		PredictedExpenses core.Money `json:"predictedExpenses"`
		PredictedIncome   core.Money `json:"predictedIncome"`
		SavingsPotential  core.Money `json:"savingsPotential"`
		ExpensesChange    float64    `json:"expensesChange"`
		IncomeChange      float64    `json:"incomeChange"`
		SavingsChange     float64    `json:"savingsChange"`
	}
)

// Estimate projects every category observed in the history window, ordered by
// projected amount, largest first. Categories with equal projections keep
// their history order.
func Estimate(h analytics.History, p Params) Projection {
	w := p.RecencyWeight
	if math.IsNaN(w) || w < 0 || w > 1 {
		w = DefaultRecencyWeight
	}
	scale := float64(p.DispersionScale.Cents)
	if scale <= 0 {
		scale = float64(DefaultDispersionScale.Cents)
	}

	out := Projection{PerCategory: []CategoryProjection{}}
	var weighted, weights float64
	for _, series := range h.Categories {
		projected := project(series.Amounts, w)
		current := last(series.Amounts)
		conf := confidence(series.Amounts, scale)
		out.PerCategory = append(out.PerCategory, CategoryProjection{
			Category:      series.Category,
			Projected:     projected,
			Current:       current,
			PercentChange: core.PercentChange(current, projected),
			Confidence:    core.RoundFloat(conf, 2),
		})
		out.PredictedExpenses = out.PredictedExpenses.Add(projected)
		abs := math.Abs(float64(projected.Cents))
		weighted += conf * abs
		weights += abs
	}
	if weights > 0 {
		out.Confidence = core.RoundFloat(weighted/weights, 2)
	}

	slices.SortStableFunc(out.PerCategory, func(a, b CategoryProjection) int {
		return cmp.Compare(absCents(b.Projected), absCents(a.Projected))
	})

	out.PredictedIncome = project(h.Income, w)
	out.SavingsPotential = floor(out.PredictedIncome.Sub(out.PredictedExpenses))

	currentIncome := last(h.Income)
	currentExpenses := last(h.Expenses)
	out.IncomeChange = core.PercentChange(currentIncome, out.PredictedIncome)
	out.ExpensesChange = core.PercentChange(currentExpenses, out.PredictedExpenses)
	out.SavingsChange = core.PercentChange(floor(currentIncome.Sub(currentExpenses)), out.SavingsPotential)
	return out
}

// project blends the latest amount with the trailing average. A series that
// is empty in its latest month falls back to the average alone.
func project(amounts []core.Money, w float64) core.Money {
	if len(amounts) == 0 {
		return core.Money{}
	}
	avg := stat.Mean(floats(amounts), nil)
	recent := float64(last(amounts).Cents)
	if recent > 0 {
		return core.MoneyFromFloat(recent*w + avg*(1-w))
	}
	return core.MoneyFromFloat(avg)
}

// confidence is 100 * (n/W) / (1 + sd/scale), where n counts months with
// spending and sd is the population standard deviation of those months.
// It never rises with sd at fixed n, whatever the mean does.
func confidence(amounts []core.Money, scale float64) float64 {
	if len(amounts) == 0 {
		return 0
	}
	var observed []float64
	for _, a := range amounts {
		if a.Cents != 0 {
			observed = append(observed, float64(a.Cents))
		}
	}
	if len(observed) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(observed, nil)
	coverage := float64(len(observed)) / float64(len(amounts))
	return 100 * coverage / (1 + std/scale)
}

func floats(amounts []core.Money) []float64 {
	out := make([]float64, len(amounts))
	for i, a := range amounts {
		out[i] = float64(a.Cents)
	}
	return out
}

func last(amounts []core.Money) core.Money {
	if len(amounts) == 0 {
		return core.Money{}
	}
	return amounts[len(amounts)-1]
}

func floor(m core.Money) core.Money {
	if m.Cents < 0 {
		return core.Money{}
	}
	return m
}

func absCents(m core.Money) int64 {
	if m.Cents < 0 {
		return -m.Cents
	}
	return m.Cents
}
