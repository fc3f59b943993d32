package service

import (
	"testing"

	"celengan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Create(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "a@example.com")
	svc := NewAccountService(db)

	account, err := svc.Create(ctx, user.ID, CreateAccountCommand{Name: " BCA ", Type: models.AccountTypeBank, OpeningBalance: money("1500000")})
	require.NoError(t, err)
	assert.Equal(t, "BCA", account.Name)
	assertMoney(t, "1500000", account.Balance)
	assertMoney(t, "1500000", account.OpeningBalance)

	_, err = svc.Create(ctx, user.ID, CreateAccountCommand{Name: "X", Type: "SAFE"})
	assert.Equal(t, CodeInvalidType, ErrorCode(err))
	_, err = svc.Create(ctx, user.ID, CreateAccountCommand{Name: "X", Type: models.AccountTypeCash, OpeningBalance: money("-1")})
	assert.Equal(t, CodeInvalidAmount, ErrorCode(err))
	_, err = svc.Create(ctx, user.ID, CreateAccountCommand{Type: models.AccountTypeCash})
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAccountService_UpdateKeepsBalance(t *testing.T) {
	f := newFixture(t, "1000")
	svc := NewAccountService(f.db)
	f.post(t, f.ledger(now), models.TransactionTypeExpense, "300")

	updated, err := svc.Update(ctx, f.user.ID, f.account.ID, UpdateAccountCommand{Name: "Mandiri", Type: models.AccountTypeEWallet})
	require.NoError(t, err)
	assert.Equal(t, "Mandiri", updated.Name)
	assert.Equal(t, models.AccountTypeEWallet, updated.Type)
	assertMoney(t, "700", updated.Balance)

	_, err = svc.Update(ctx, "someone-else", f.account.ID, UpdateAccountCommand{Name: "x", Type: models.AccountTypeCash})
	assert.Equal(t, CodeAccountNotFound, ErrorCode(err))
}

func TestAccountService_DeleteGuards(t *testing.T) {
	f := newFixture(t, "1000")
	svc := NewAccountService(f.db)
	l := f.ledger(now)
	entry := f.post(t, l, models.TransactionTypeExpense, "10")

	err := svc.Delete(ctx, f.user.ID, f.account.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, CodeAccountInUse, ErrorCode(err))
	_, err = svc.Get(ctx, f.user.ID, f.account.ID)
	require.NoError(t, err, "account must survive")
	assert.Equal(t, int64(1), f.countTransactions(t, f.account.ID))

	_, err = l.Reverse(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)

	f.template(t, models.FrequencyDaily, day(2024, 6, 1), nil)
	assert.Equal(t, CodeAccountInUse, ErrorCode(svc.Delete(ctx, f.user.ID, f.account.ID)))

	f.db.Where("account_id = ?", f.account.ID).Delete(&models.RecurringTransaction{})
	require.NoError(t, svc.Delete(ctx, f.user.ID, f.account.ID))
	_, err = svc.Get(ctx, f.user.ID, f.account.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountService_DeleteWithGoalContribution(t *testing.T) {
	f := newFixture(t, "1000")
	goals := NewGoalService(f.db)
	goal := newGoal(t, goals, f.user.ID, "500")
	_, err := goals.AddFunds(ctx, f.user.ID, goal.ID, AddFundsCommand{AccountID: f.account.ID, Amount: money("10")})
	require.NoError(t, err)

	assert.Equal(t, CodeAccountInUse, ErrorCode(NewAccountService(f.db).Delete(ctx, f.user.ID, f.account.ID)))
}
