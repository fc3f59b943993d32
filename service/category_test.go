package service

import (
	"testing"

	"celengan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService(t *testing.T) {
	f := newFixture(t, "1000")
	svc := NewCategoryService(f.db)

	_, err := svc.Create(ctx, f.user.ID, CategoryCommand{Name: "Gaji", Type: models.TransactionTypeIncome})
	assert.Equal(t, CodeDuplicateCategory, ErrorCode(err))

	// same name, other type is fine
	bonus, err := svc.Create(ctx, f.user.ID, CategoryCommand{Name: "Gaji", Type: models.TransactionTypeExpense})
	require.NoError(t, err)

	_, err = svc.Create(ctx, f.user.ID, CategoryCommand{Name: "", Type: models.TransactionTypeExpense})
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.post(t, f.ledger(now), models.TransactionTypeExpense, "5")
	_, err = NewBudgetService(f.db).Upsert(ctx, f.user.ID, BudgetCommand{CategoryID: f.expense.ID, Year: 2024, Month: 5, Amount: money("100")})
	require.NoError(t, err)

	list, err := svc.List(ctx, f.user.ID, models.TransactionTypeExpense)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byName := map[string]CategoryView{}
	for _, c := range list {
		byName[c.Name] = c
	}
	assert.Equal(t, int64(1), byName["Makanan"].TransactionCount)
	assert.Equal(t, int64(1), byName["Makanan"].BudgetCount)
	assert.Equal(t, int64(0), byName["Gaji"].TransactionCount)

	all, err := svc.List(ctx, f.user.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.List(ctx, f.user.ID, "BOTH")
	assert.Equal(t, CodeInvalidType, ErrorCode(err))

	_, err = svc.Update(ctx, f.user.ID, bonus.ID, CategoryCommand{Name: "Makanan", Type: models.TransactionTypeExpense})
	assert.Equal(t, CodeDuplicateCategory, ErrorCode(err))

	_, err = svc.Update(ctx, f.user.ID, f.expense.ID, CategoryCommand{Name: "Makanan", Type: models.TransactionTypeIncome})
	assert.Equal(t, CodeCategoryInUse, ErrorCode(err))

	renamed, err := svc.Update(ctx, f.user.ID, f.expense.ID, CategoryCommand{Name: "Makan & Minum", Type: models.TransactionTypeExpense})
	require.NoError(t, err)
	assert.Equal(t, "Makan & Minum", renamed.Name)

	err = svc.Delete(ctx, f.user.ID, f.expense.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, CodeCategoryInUse, ErrorCode(err))

	require.NoError(t, svc.Delete(ctx, f.user.ID, bonus.ID))
	_, err = svc.Get(ctx, f.user.ID, bonus.ID)
	assert.Equal(t, CodeCategoryNotFound, ErrorCode(err))
}
