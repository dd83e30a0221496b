package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  Kind = "inc"
	KindExpense Kind = "exp"
)

// NoPercentage marks a percentage that cannot be computed because there is no income.
const NoPercentage = -1

type (
	// Kind tells which side of the ledger an entry belongs to.
	Kind string

	// Entry is a single income or expense record. Percentage is only
	// meaningful for expenses and is rewritten on every recalculation.
	Entry struct {
		Kind        Kind
		ID          int
		Description string
		Value       decimal.Decimal
		Percentage  int
	}
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrInvalidInput)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be a positive number up to 1,000,000,000,000", ErrInvalidInput)
	ErrInvalidKind      = fmt.Errorf("%w: unknown entry kind", ErrInvalidInput)
	ErrInvalidRef       = fmt.Errorf("%w: malformed entry reference", ErrInvalidInput)
)

// ParseKind accepts the short codes used by the UI ("inc", "exp") and the long names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inc", "income", "+":
		return KindIncome, nil
	case "exp", "expense", "-":
		return KindExpense, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (k Kind) String() string {
	return string(k)
}

// Label returns a human readable name for the kind.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	default:
		return "Unknown"
	}
}

// Ref returns the identifier the presentation layer uses for delete actions, e.g. "exp-3".
func (e Entry) Ref() string {
	return e.Kind.String() + "-" + strconv.Itoa(e.ID)
}

// ParseRef splits an identifier produced by Entry.Ref back into kind and id.
func ParseRef(ref string) (Kind, int, error) {
	kindPart, idPart, ok := strings.Cut(strings.TrimSpace(ref), "-")
	if !ok {
		return "", 0, ErrInvalidRef
	}
	kind, err := ParseKind(kindPart)
	if err != nil {
		return "", 0, ErrInvalidRef
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 1 {
		return "", 0, ErrInvalidRef
	}
	return kind, id, nil
}

func validateEntryInput(kind Kind, description string, value decimal.Decimal) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	if len(strings.TrimSpace(description)) == 0 {
		return ErrEmptyDescription
	}
	if !value.IsPositive() || value.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}
