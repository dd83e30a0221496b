package core

import (
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustAdd(t *testing.T, l *Ledger, kind Kind, desc, value string) Entry {
	t.Helper()
	e, err := l.AddEntry(kind, desc, amount(value))
	if err != nil {
		t.Fatalf("add %s %q: %v", kind, desc, err)
	}
	return e
}

func TestAddEntryAssignsIncreasingIDs(t *testing.T) {
	l := NewLedger()
	for want := 1; want <= 3; want++ {
		e := mustAdd(t, l, KindIncome, "salary", "10")
		if e.ID != want {
			t.Fatalf("expected id %d, got %d", want, e.ID)
		}
	}
	// ids are per kind
	if e := mustAdd(t, l, KindExpense, "rent", "5"); e.ID != 1 {
		t.Fatalf("expected first expense id 1, got %d", e.ID)
	}
}

func TestAddEntryDoesNotReuseDeletedIDs(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, KindExpense, "a", "1")
	mustAdd(t, l, KindExpense, "b", "1")
	mustAdd(t, l, KindExpense, "c", "1")

	l.DeleteEntry(KindExpense, 2)
	if e := mustAdd(t, l, KindExpense, "d", "1"); e.ID != 4 {
		t.Fatalf("expected id 4 after deleting 2, got %d", e.ID)
	}

	// deleting the highest id must not hand it out again either
	l.DeleteEntry(KindExpense, 4)
	if e := mustAdd(t, l, KindExpense, "e", "1"); e.ID != 5 {
		t.Fatalf("expected id 5 after deleting 4, got %d", e.ID)
	}
}

func TestAddEntryRejectsInvalidInput(t *testing.T) {
	l := NewLedger()
	cases := []struct {
		kind  Kind
		desc  string
		value decimal.Decimal
		want  error
	}{
		{KindIncome, "", amount("1"), ErrEmptyDescription},
		{KindIncome, "   ", amount("1"), ErrEmptyDescription},
		{KindExpense, "x", decimal.Zero, ErrInvalidAmount},
		{KindExpense, "x", amount("-3"), ErrInvalidAmount},
		{Kind("transfer"), "x", amount("1"), ErrInvalidKind},
	}
	for i, tc := range cases {
		_, err := l.AddEntry(tc.kind, tc.desc, tc.value)
		if !errors.Is(err, tc.want) || !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
	if l.Len() != 0 {
		t.Fatalf("rejected entries must not be stored, len=%d", l.Len())
	}
}

func TestRecalculateTotals(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, KindIncome, "salary", "100")
	mustAdd(t, l, KindIncome, "gift", "50")
	mustAdd(t, l, KindExpense, "food", "30")

	s := l.Recalculate()
	if !s.TotalIncome.Equal(amount("150")) || !s.TotalExpense.Equal(amount("30")) || !s.Budget.Equal(amount("120")) {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.ExpensePercentage != 20 {
		t.Fatalf("expected expense percentage 20, got %d", s.ExpensePercentage)
	}
	if got := l.ExpensePercentages(); !slices.Equal(got, []int{20}) {
		t.Fatalf("unexpected percentages %v", got)
	}
	if !s.Equal(l.Summary()) {
		t.Fatalf("Summary should return the last recalculation")
	}
}

func TestRecalculateWithoutIncome(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, KindExpense, "coffee", "10")

	s := l.Recalculate()
	if s.ExpensePercentage != NoPercentage {
		t.Fatalf("expected -1, got %d", s.ExpensePercentage)
	}
	if !s.Budget.Equal(amount("-10")) {
		t.Fatalf("expected budget -10, got %s", s.Budget)
	}
	if got := l.ExpensePercentages(); !slices.Equal(got, []int{NoPercentage}) {
		t.Fatalf("unexpected percentages %v", got)
	}
}

func TestPercentagesFollowIncomeChanges(t *testing.T) {
	l := NewLedger()
	inc := mustAdd(t, l, KindIncome, "salary", "200")
	mustAdd(t, l, KindExpense, "rent", "50")
	l.Recalculate()
	if got := l.ExpensePercentages(); !slices.Equal(got, []int{25}) {
		t.Fatalf("unexpected percentages %v", got)
	}

	l.DeleteEntry(KindIncome, inc.ID)
	l.Recalculate()
	if got := l.ExpensePercentages(); !slices.Equal(got, []int{NoPercentage}) {
		t.Fatalf("expected percentages reset to -1, got %v", got)
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, KindIncome, "salary", "100")
	mustAdd(t, l, KindExpense, "rent", "40")
	before := l.Recalculate()

	l.DeleteEntry(KindExpense, 99)
	l.DeleteEntry(Kind("bogus"), 1)

	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}
	if after := l.Recalculate(); !after.Equal(before) {
		t.Fatalf("summary changed: before=%+v after=%+v", before, after)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, KindIncome, "salary", "333.33")
	mustAdd(t, l, KindExpense, "rent", "111.11")
	mustAdd(t, l, KindExpense, "food", "42")

	first := l.Recalculate()
	firstPct := l.ExpensePercentages()
	second := l.Recalculate()
	if !first.Equal(second) {
		t.Fatalf("summaries differ: %+v vs %+v", first, second)
	}
	if !slices.Equal(firstPct, l.ExpensePercentages()) {
		t.Fatalf("percentages differ")
	}
}

func TestExpensePercentagesKeepInsertionOrder(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, KindIncome, "salary", "1000")
	mustAdd(t, l, KindIncome, "bonus", "0.01")
	mustAdd(t, l, KindExpense, "a", "100")
	mustAdd(t, l, KindExpense, "b", "500")
	mustAdd(t, l, KindExpense, "c", "250")

	l.DeleteEntry(KindIncome, 2)
	l.DeleteEntry(KindExpense, 99)
	l.Recalculate()

	if got := l.ExpensePercentages(); !slices.Equal(got, []int{10, 50, 25}) {
		t.Fatalf("unexpected order %v", got)
	}

	l.DeleteEntry(KindExpense, 2)
	l.Recalculate()
	if got := l.ExpensePercentages(); !slices.Equal(got, []int{10, 25}) {
		t.Fatalf("unexpected order after delete %v", got)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	l := NewLedger()
	mustAdd(t, l, KindIncome, "salary", "100")
	incomes := l.Incomes()
	incomes[0].Description = "changed"
	if l.Incomes()[0].Description != "salary" {
		t.Fatalf("Incomes must return a copy")
	}
	if len(l.Expenses()) != 0 {
		t.Fatalf("expected no expenses")
	}
}

func TestEmptyLedgerSummary(t *testing.T) {
	l := NewLedger()
	s := l.Recalculate()
	if !s.Equal(EmptySummary()) {
		t.Fatalf("unexpected empty summary %+v", s)
	}
	if len(l.ExpensePercentages()) != 0 {
		t.Fatalf("expected no percentages")
	}
}
