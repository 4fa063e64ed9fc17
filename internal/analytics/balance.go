package analytics

import (
	"fiscal/internal/core"
)

type (
	// BalanceSummary holds the all-time balance and the totals of the
	// calendar month containing the reference date.
	BalanceSummary struct {
		CurrentBalance core.Money `json:"currentBalance"`
		PeriodIncome   core.Money `json:"periodIncome"`
		PeriodExpenses core.Money `json:"periodExpenses"`
	}

	SavingsState struct {
		Amount core.Money `json:"amount"`
		Goal   core.Money `json:"goal"`

		// ProgressPercent is not clamped; values above 100 mean the goal
		// was exceeded.
		ProgressPercent float64 `json:"progressPercent"`
	}

	// MonthComparison reports percent changes of the current month against
	// the previous one.
	MonthComparison struct {
		IncomeChange   float64 `json:"incomeChange"`
		ExpensesChange float64 `json:"expensesChange"`
		BalanceChange  float64 `json:"balanceChange"`
	}
)

func Balance(txs []core.Transaction, now core.Date) BalanceSummary {
	period := core.PeriodOf(now)
	var out BalanceSummary
	for _, tx := range txs {
		amount := amountOf(tx)
		inPeriod := tx.Period() == period
		switch tx.Kind {
		case core.Income:
			out.CurrentBalance.Cents += amount
			if inPeriod {
				out.PeriodIncome.Cents += amount
			}
		case core.Expense:
			out.CurrentBalance.Cents -= amount
			if inPeriod {
				out.PeriodExpenses.Cents += amount
			}
		}
	}
	return out
}

// Savings derives the savings state of the current month from its balance
// summary. Savings are never reported negative and a zero goal yields zero
// progress.
func Savings(b BalanceSummary, goal core.Money) SavingsState {
	amount := b.PeriodIncome.Sub(b.PeriodExpenses)
	if amount.Cents < 0 {
		amount = core.Money{}
	}
	return SavingsState{
		Amount:          amount,
		Goal:            goal,
		ProgressPercent: core.Percent(amount, goal),
	}
}

// Rendered is the progress clamped to [0,100] for bar-style display.
func (s SavingsState) Rendered() float64 {
	return min(max(s.ProgressPercent, 0), 100)
}

func Compare(txs []core.Transaction, now core.Date) MonthComparison {
	current := core.PeriodOf(now)
	previous := current.Add(-1)

	var curInc, curExp, prevInc, prevExp, balanceNow, balancePrev core.Money
	for _, tx := range txs {
		signed := core.Money{Cents: amountOf(tx)}
		if tx.Kind == core.Expense {
			signed.Cents = -signed.Cents
		}
		balanceNow = balanceNow.Add(signed)
		p := tx.Period()
		if p.Before(current) {
			balancePrev = balancePrev.Add(signed)
		}
		switch p {
		case current:
			if tx.Kind == core.Income {
				curInc = curInc.Add(tx.Amount)
			} else {
				curExp = curExp.Add(tx.Amount)
			}
		case previous:
			if tx.Kind == core.Income {
				prevInc = prevInc.Add(tx.Amount)
			} else {
				prevExp = prevExp.Add(tx.Amount)
			}
		}
	}
	return MonthComparison{
		IncomeChange:   core.PercentChange(prevInc, curInc),
		ExpensesChange: core.PercentChange(prevExp, curExp),
		BalanceChange:  core.PercentChange(balancePrev, balanceNow),
	}
}
