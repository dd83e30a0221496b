package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Ledger holds the income and expense entries of one budget session.
//
// A Ledger is not safe for concurrent use; the owner serialises access.
type Ledger struct {
	incomes  []Entry
	expenses []Entry

	// highest id ever issued per kind, so deleted ids are never handed out again
	lastID map[Kind]int

	summary BudgetSummary
}

// NewLedger returns an empty ledger with a zero summary.
func NewLedger() *Ledger {
	return &Ledger{
		lastID:  map[Kind]int{KindIncome: 0, KindExpense: 0},
		summary: EmptySummary(),
	}
}

func (l *Ledger) items(kind Kind) *[]Entry {
	if kind == KindIncome {
		return &l.incomes
	}
	return &l.expenses
}

func (l *Ledger) nextID(kind Kind) int {
	next := l.lastID[kind]
	for _, e := range *l.items(kind) {
		if e.ID > next {
			next = e.ID
		}
	}
	return next + 1
}

// AddEntry appends a new entry of the given kind and returns it.
func (l *Ledger) AddEntry(kind Kind, description string, value decimal.Decimal) (Entry, error) {
	if err := validateEntryInput(kind, description, value); err != nil {
		return Entry{}, err
	}

	id := l.nextID(kind)
	e := Entry{
		Kind:        kind,
		ID:          id,
		Description: description,
		Value:       value,
		Percentage:  NoPercentage,
	}
	items := l.items(kind)
	*items = append(*items, e)
	l.lastID[kind] = id
	return e, nil
}

// DeleteEntry removes the entry with the given id. Unknown ids are ignored.
func (l *Ledger) DeleteEntry(kind Kind, id int) {
	if !kind.Valid() {
		return
	}
	items := l.items(kind)
	idx := slices.IndexFunc(*items, func(e Entry) bool { return e.ID == id })
	if idx == -1 {
		return
	}
	*items = slices.Delete(*items, idx, idx+1)
}

// Recalculate recomputes totals, budget and every percentage from the current entries.
func (l *Ledger) Recalculate() BudgetSummary {
	totalIncome := sum(l.incomes)
	totalExpense := sum(l.expenses)

	l.summary = BudgetSummary{
		Budget:            totalIncome.Sub(totalExpense),
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		ExpensePercentage: Percent(totalExpense, totalIncome),
	}

	for i := range l.expenses {
		l.expenses[i].Percentage = Percent(l.expenses[i].Value, totalIncome)
	}

	return l.summary
}

// ExpensePercentages returns each expense's percentage in insertion order.
func (l *Ledger) ExpensePercentages() []int {
	out := make([]int, len(l.expenses))
	for i, e := range l.expenses {
		out[i] = e.Percentage
	}
	return out
}

// Summary returns the result of the last Recalculate call.
func (l *Ledger) Summary() BudgetSummary {
	return l.summary
}

// Incomes returns a copy of the income entries in insertion order.
func (l *Ledger) Incomes() []Entry {
	return slices.Clone(l.incomes)
}

// Expenses returns a copy of the expense entries in insertion order.
func (l *Ledger) Expenses() []Entry {
	return slices.Clone(l.expenses)
}

// Len returns the number of entries of both kinds.
func (l *Ledger) Len() int {
	return len(l.incomes) + len(l.expenses)
}

func sum(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Value)
	}
	return total
}
