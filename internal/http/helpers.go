package http

import (
	"strings"

	"budgeter/internal/core"
	"budgeter/internal/format"
	"budgeter/internal/services"
)

type (
	entryView struct {
		Ref         string
		Kind        string
		Description string
		Value       string
		Percentage  string
	}

	ledgerView struct {
		Budget            string
		BudgetClass       string
		TotalIncome       string
		TotalExpense      string
		ExpensePercentage string
		Incomes           []entryView
		Expenses          []entryView
	}

	pageView struct {
		MonthTitle string
		Ledger     ledgerView
	}

	summaryResponse struct {
		Budget            string `json:"budget"`
		TotalIncome       string `json:"totalIncome"`
		TotalExpense      string `json:"totalExpense"`
		ExpensePercentage int    `json:"expensePercentage"`
		Percentages       []int  `json:"percentages"`
	}

	entryResponse struct {
		ID      string          `json:"id"`
		Summary summaryResponse `json:"summary"`
	}
)

func newLedgerView(snap services.Snapshot) ledgerView {
	sum := snap.Summary
	v := ledgerView{
		Budget:            format.Budget(sum),
		BudgetClass:       format.BudgetKind(sum).String(),
		TotalIncome:       format.Amount(sum.TotalIncome, core.KindIncome),
		TotalExpense:      format.Amount(sum.TotalExpense, core.KindExpense),
		ExpensePercentage: format.Percentage(sum.ExpensePercentage),
		Incomes:           make([]entryView, 0, len(snap.Incomes)),
		Expenses:          make([]entryView, 0, len(snap.Expenses)),
	}
	for _, e := range snap.Incomes {
		v.Incomes = append(v.Incomes, newEntryView(e))
	}
	for _, e := range snap.Expenses {
		v.Expenses = append(v.Expenses, newEntryView(e))
	}
	return v
}

func newEntryView(e core.Entry) entryView {
	v := entryView{
		Ref:         e.Ref(),
		Kind:        e.Kind.String(),
		Description: e.Description,
		Value:       format.Amount(e.Value, e.Kind),
	}
	if e.Kind == core.KindExpense {
		v.Percentage = format.Percentage(e.Percentage)
	}
	return v
}

func newSummaryResponse(snap services.Snapshot) summaryResponse {
	percentages := snap.Percentages
	if percentages == nil {
		percentages = []int{}
	}
	return summaryResponse{
		Budget:            snap.Summary.Budget.StringFixed(2),
		TotalIncome:       snap.Summary.TotalIncome.StringFixed(2),
		TotalExpense:      snap.Summary.TotalExpense.StringFixed(2),
		ExpensePercentage: snap.Summary.ExpensePercentage,
		Percentages:       percentages,
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
