package service

import (
	"testing"

	"celengan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetService(t *testing.T) {
	f := newFixture(t, "1000000")
	svc := NewBudgetService(f.db)
	l := f.ledger(now)
	transport := createCategory(t, f.db, f.user.ID, "Transportasi", models.TransactionTypeExpense)

	first, err := svc.Upsert(ctx, f.user.ID, BudgetCommand{CategoryID: f.expense.ID, Year: 2024, Month: 5, Amount: money("500000")})
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, f.user.ID, BudgetCommand{CategoryID: f.expense.ID, Year: 2024, Month: 5, Amount: money("750000")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert keeps the row")
	assertMoney(t, "750000", second.Amount)

	var n int64
	f.db.Model(&models.Budget{}).Count(&n)
	assert.Equal(t, int64(1), n)

	f.post(t, l, models.TransactionTypeExpense, "120000")
	_, err = l.Post(ctx, f.user.ID, PostCommand{
		AccountID: f.account.ID, CategoryID: f.expense.ID, Type: models.TransactionTypeExpense,
		Amount: money("99"), TransactionDate: day(2024, 6, 1),
	})
	require.NoError(t, err)

	lines, err := svc.List(ctx, f.user.ID, 2024, 5)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	byID := map[string]BudgetLine{}
	for _, line := range lines {
		byID[line.CategoryID] = line
	}
	food := byID[f.expense.ID]
	require.NotNil(t, food.BudgetID)
	assertMoney(t, "750000", food.Amount)
	assertMoney(t, "120000", food.Spent)
	assertMoney(t, "630000", food.Remaining)

	other := byID[transport.ID]
	assert.Nil(t, other.BudgetID)
	assert.True(t, other.Amount.IsZero())
	assert.True(t, other.Spent.IsZero())

	_, err = svc.Upsert(ctx, f.user.ID, BudgetCommand{CategoryID: f.income.ID, Year: 2024, Month: 5, Amount: money("1")})
	assert.Equal(t, CodeCategoryTypeMismatch, ErrorCode(err))
	_, err = svc.Upsert(ctx, f.user.ID, BudgetCommand{CategoryID: f.expense.ID, Year: 2024, Month: 13, Amount: money("1")})
	assert.Equal(t, CodeInvalidDate, ErrorCode(err))
	_, err = svc.List(ctx, f.user.ID, 2024, 0)
	assert.Equal(t, CodeInvalidDate, ErrorCode(err))

	assert.Equal(t, CodeBudgetNotFound, ErrorCode(svc.Delete(ctx, "someone-else", first.ID)))
	require.NoError(t, svc.Delete(ctx, f.user.ID, first.ID))
}
