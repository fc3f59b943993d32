package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"celengan/database"
	"celengan/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var ctx = context.Background()

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, money(want).Equal(got), fmt.Sprintf("want %s, got %s %v", want, got.String(), msgAndArgs))
}

// fixture one user with one account and an income and an expense category
type fixture struct {
	db      *gorm.DB
	user    models.User
	account models.Account
	income  models.Category
	expense models.Category
}

func newFixture(t *testing.T, opening string) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db}
	f.user = createUser(t, db, "owner@example.com")
	f.account = createAccount(t, db, f.user.ID, "Rekening Bank", opening)
	f.income = createCategory(t, db, f.user.ID, "Gaji", models.TransactionTypeIncome)
	f.expense = createCategory(t, db, f.user.ID, "Makanan", models.TransactionTypeExpense)
	return f
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: email, Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createAccount(t *testing.T, db *gorm.DB, userID, name, opening string) models.Account {
	t.Helper()
	a := models.Account{
		UserID:         userID,
		Name:           name,
		Type:           models.AccountTypeBank,
		OpeningBalance: money(opening),
		Balance:        money(opening),
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func createCategory(t *testing.T, db *gorm.DB, userID, name string, typ models.TransactionType) models.Category {
	t.Helper()
	c := models.Category{UserID: userID, Name: name, Type: typ}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func (f *fixture) ledger(now time.Time) *LedgerService {
	return NewLedgerService(f.db, LedgerOptions{Now: func() time.Time { return now }})
}

func (f *fixture) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	var a models.Account
	require.NoError(t, f.db.Where("id = ?", accountID).First(&a).Error)
	return a.Balance
}

func (f *fixture) countTransactions(t *testing.T, accountID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Where("account_id = ?", accountID).Count(&n).Error)
	return n
}

func (f *fixture) post(t *testing.T, l *LedgerService, typ models.TransactionType, amount string) *models.Transaction {
	t.Helper()
	category := f.income.ID
	if typ == models.TransactionTypeExpense {
		category = f.expense.ID
	}
	entry, err := l.Post(ctx, f.user.ID, PostCommand{
		AccountID:       f.account.ID,
		CategoryID:      category,
		Type:            typ,
		Amount:          money(amount),
		TransactionDate: day(2024, 5, 10),
	})
	require.NoError(t, err)
	return entry
}

func (f *fixture) assertConsistent(t *testing.T, l *LedgerService, accountID string) {
	t.Helper()
	rec, err := l.Reconcile(ctx, f.user.ID, accountID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "balance %s, expected %s", rec.Balance, rec.Expected)
}
