// Package core holds the budget ledger and its arithmetic.
//
// This file contains amount parsing and the percentage rounding policy.
package core

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest value a single entry may carry.
var MaxAmount = decimal.New(1, 12)

// MaxPercentage caps percentages of tiny incomes against huge expenses.
const MaxPercentage = math.MaxInt32

var (
	hundred       = decimal.NewFromInt(100)
	maxPercentage = decimal.NewFromInt(MaxPercentage)
)

// ParseAmount converts user input into a positive amount rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// blanks, non-numeric input, amounts that round to zero and amounts above
// MaxAmount are rejected with an error wrapping ErrInvalidInput.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35 (half away from zero)
//	ParseAmount("0.001")  -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() || d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Percent returns part as a whole-number percentage of whole, rounding half away
// from zero. It returns NoPercentage when whole is not positive and never
// more than MaxPercentage.
func Percent(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return NoPercentage
	}
	r := part.Mul(hundred).Div(whole).Round(0)
	if r.GreaterThan(maxPercentage) {
		return MaxPercentage
	}
	return int(r.IntPart())
}
