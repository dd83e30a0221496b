// Package format renders ledger figures the way both the web page and the
// terminal show them.
package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"budgeter/internal/core"
)

// NoPercentage is shown instead of a percentage that is zero or undefined.
const NoPercentage = "---"

// Amount renders an absolute amount with two decimals, thousands separators
// and a sign taken from the kind: "+ 1,234.50" for income, "- 30.00" for expense.
func Amount(v decimal.Decimal, kind core.Kind) string {
	rounded := v.Abs().Round(2)
	_, cents, _ := strings.Cut(rounded.StringFixed(2), ".")

	sign := "+ "
	if kind == core.KindExpense {
		sign = "- "
	}
	return sign + humanize.BigComma(rounded.Truncate(0).BigInt()) + "." + cents
}

// Budget renders the balance, signed "+" on a surplus and "-" otherwise.
func Budget(s core.BudgetSummary) string {
	return Amount(s.Budget, BudgetKind(s))
}

// BudgetKind is the kind whose sign and colour the balance takes.
func BudgetKind(s core.BudgetSummary) core.Kind {
	if s.Surplus() {
		return core.KindIncome
	}
	return core.KindExpense
}

// Percentage renders "N%" for a positive percentage and "---" otherwise.
func Percentage(p int) string {
	if p > 0 {
		return strconv.Itoa(p) + "%"
	}
	return NoPercentage
}

// MonthTitle renders a month header, e.g. "Jan, 2026".
func MonthTitle(t time.Time) string {
	return t.Format("Jan, 2006")
}
