package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeledger-server/src/apperr"
	"homeledger-server/src/models"
)

func txn(kind, amount string) models.Transaction {
	return models.Transaction{Kind: kind, Amount: decimal.RequireFromString(amount)}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpense.IsZero())
	assert.True(t, s.Balance.IsZero())
	assert.Equal(t, 0, s.Count)
}

func TestSummarize(t *testing.T) {
	transactions := []models.Transaction{
		txn(models.KindIncome, "2500.00"),
		txn(models.KindExpense, "120.50"),
		txn(models.KindExpense, "79.49"),
		txn(models.KindIncome, "0.01"),
	}
	s := Summarize(transactions)
	assert.Equal(t, "2500.01", s.TotalIncome.String())
	assert.Equal(t, "199.99", s.TotalExpense.String())
	assert.Equal(t, "2300.02", s.Balance.String())
	assert.Equal(t, 4, s.Count)
}

func TestSummarizeOrderIndependent(t *testing.T) {
	forward := []models.Transaction{
		txn(models.KindIncome, "100.10"),
		txn(models.KindExpense, "0.30"),
		txn(models.KindIncome, "0.20"),
		txn(models.KindExpense, "99.99"),
	}
	reversed := make([]models.Transaction, len(forward))
	for i, tr := range forward {
		reversed[len(forward)-1-i] = tr
	}

	a := Summarize(forward)
	b := Summarize(reversed)
	assert.True(t, a.Balance.Equal(b.Balance))
	assert.True(t, a.TotalIncome.Equal(b.TotalIncome))
	assert.True(t, a.TotalExpense.Equal(b.TotalExpense))
}

func TestSummarizeExactDecimals(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, not a float approximation.
	s := Summarize([]models.Transaction{
		txn(models.KindIncome, "0.1"),
		txn(models.KindIncome, "0.2"),
	})
	assert.True(t, s.TotalIncome.Equal(decimal.RequireFromString("0.3")))
}

func TestCanAfford(t *testing.T) {
	balance := decimal.RequireFromString("50.00")

	assert.True(t, CanAfford(balance, decimal.RequireFromString("999999"), models.KindIncome))
	assert.True(t, CanAfford(balance, decimal.RequireFromString("50.00"), models.KindExpense))
	assert.True(t, CanAfford(balance, decimal.RequireFromString("49.99"), models.KindExpense))
	assert.False(t, CanAfford(balance, decimal.RequireFromString("50.01"), models.KindExpense))
	assert.False(t, CanAfford(decimal.Zero, decimal.RequireFromString("0.01"), models.KindExpense))
}

func TestApplyDelta(t *testing.T) {
	balance := decimal.RequireFromString("10.00")

	after, err := ApplyDelta(balance, decimal.RequireFromString("2.50"), models.KindIncome)
	require.NoError(t, err)
	assert.Equal(t, "12.5", after.String())

	after, err = ApplyDelta(balance, decimal.RequireFromString("2.50"), models.KindExpense)
	require.NoError(t, err)
	assert.Equal(t, "7.5", after.String())

	// Expenses may drive the balance negative; ApplyDelta never clamps.
	after, err = ApplyDelta(decimal.Zero, decimal.RequireFromString("5"), models.KindExpense)
	require.NoError(t, err)
	assert.Equal(t, "-5", after.String())
}

func TestApplyDeltaUnknownKind(t *testing.T) {
	_, err := ApplyDelta(decimal.Zero, decimal.RequireFromString("1"), "TRANSFER")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}
