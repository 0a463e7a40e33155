// Package calc holds the balance arithmetic. Pure functions, no I/O; all
// amounts are exact decimals.
package calc

import (
	"github.com/shopspring/decimal"

	"homeledger-server/src/apperr"
	"homeledger-server/src/models"
)

type Summary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
	Count        int             `json:"count"`
}

func EmptySummary() Summary {
	return Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
	}
}

// Summarize totals a transaction set. Order of the input never matters.
func Summarize(transactions []models.Transaction) Summary {
	s := EmptySummary()
	for _, t := range transactions {
		switch t.Kind {
		case models.KindIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case models.KindExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	s.Count = len(transactions)
	return s
}

// CanAfford reports whether a transaction of the given kind and amount fits
// the current balance. Income always fits; an expense fits only when the
// balance covers it.
func CanAfford(currentBalance, amount decimal.Decimal, kind string) bool {
	if kind == models.KindIncome {
		return true
	}
	return currentBalance.GreaterThanOrEqual(amount)
}

// ApplyDelta returns the balance after a transaction of the given kind.
func ApplyDelta(currentBalance, amount decimal.Decimal, kind string) (decimal.Decimal, error) {
	switch kind {
	case models.KindIncome:
		return currentBalance.Add(amount), nil
	case models.KindExpense:
		return currentBalance.Sub(amount), nil
	default:
		return decimal.Zero, apperr.InvalidArgument("unknown transaction kind: %q", kind)
	}
}
