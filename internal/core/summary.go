package core

import "github.com/shopspring/decimal"

// BudgetSummary is the derived snapshot produced by Ledger.Recalculate.
type BudgetSummary struct {
	Budget            decimal.Decimal
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	ExpensePercentage int
}

// EmptySummary is what an untouched ledger reports.
func EmptySummary() BudgetSummary {
	return BudgetSummary{
		Budget:            decimal.Zero,
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
		ExpensePercentage: NoPercentage,
	}
}

// Equal compares summaries by value; decimal.Decimal values are not comparable with ==.
func (s BudgetSummary) Equal(o BudgetSummary) bool {
	return s.Budget.Equal(o.Budget) &&
		s.TotalIncome.Equal(o.TotalIncome) &&
		s.TotalExpense.Equal(o.TotalExpense) &&
		s.ExpensePercentage == o.ExpensePercentage
}

// Surplus reports whether income exceeds expenses.
func (s BudgetSummary) Surplus() bool {
	return s.TotalIncome.GreaterThan(s.TotalExpense)
}
