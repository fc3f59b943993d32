package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// clients expect amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType direction of a ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// MoneyScale is the number of decimal places stored for every amount
const MoneyScale = 2

// ValidAmount reports whether d is greater than zero and fits the stored
// scale without rounding.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(MoneyScale))
}

// SignedAmount returns the balance effect of amount under type t:
// positive for INCOME, negative for EXPENSE.
func (t TransactionType) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// DateOf truncates t to its calendar date in loc and returns that date as
// UTC midnight, the representation used for every date-only column.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
