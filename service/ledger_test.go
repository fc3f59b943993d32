package service

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"celengan/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func TestPostAndReverse_Scenario(t *testing.T) {
	f := newFixture(t, "1000000")
	l := f.ledger(now)

	expense := f.post(t, l, models.TransactionTypeExpense, "200000")
	assertMoney(t, "800000", f.balance(t, f.account.ID))

	f.post(t, l, models.TransactionTypeIncome, "50000")
	assertMoney(t, "850000", f.balance(t, f.account.ID))

	account, err := l.Reverse(ctx, f.user.ID, expense.ID)
	require.NoError(t, err)
	assertMoney(t, "1050000", account.Balance)
	assertMoney(t, "1050000", f.balance(t, f.account.ID))
	assert.Equal(t, int64(1), f.countTransactions(t, f.account.ID))

	f.assertConsistent(t, l, f.account.ID)
}

func TestReverse_UndoesPost(t *testing.T) {
	f := newFixture(t, "500")
	l := f.ledger(now)

	entry := f.post(t, l, models.TransactionTypeIncome, "100")
	assertMoney(t, "600", f.balance(t, f.account.ID))

	_, err := l.Reverse(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)
	assertMoney(t, "500", f.balance(t, f.account.ID))
	assert.Equal(t, int64(0), f.countTransactions(t, f.account.ID))

	_, err = l.Reverse(ctx, f.user.ID, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, CodeTransactionNotFound, ErrorCode(err))
	assertMoney(t, "500", f.balance(t, f.account.ID), "second reversal must not move the balance")
}

func TestReverse_Expense(t *testing.T) {
	f := newFixture(t, "100000")
	l := f.ledger(now)

	entry := f.post(t, l, models.TransactionTypeExpense, "50000")
	assertMoney(t, "50000", f.balance(t, f.account.ID))

	_, err := l.Reverse(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)
	assertMoney(t, "100000", f.balance(t, f.account.ID))

	var n int64
	f.db.Model(&models.Transaction{}).Where("id = ?", entry.ID).Count(&n)
	assert.Equal(t, int64(0), n)
}

func TestReverse_OtherUser(t *testing.T) {
	f := newFixture(t, "100")
	l := f.ledger(now)
	entry := f.post(t, l, models.TransactionTypeExpense, "40")

	stranger := createUser(t, f.db, "stranger@example.com")
	_, err := l.Reverse(ctx, stranger.ID, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assertMoney(t, "60", f.balance(t, f.account.ID))
	assert.Equal(t, int64(1), f.countTransactions(t, f.account.ID))
}

func TestPost_Rejections(t *testing.T) {
	f := newFixture(t, "1000")
	l := f.ledger(now)
	stranger := createUser(t, f.db, "stranger@example.com")
	foreign := createAccount(t, f.db, stranger.ID, "Dompet", "1000")

	valid := PostCommand{
		AccountID:       f.account.ID,
		CategoryID:      f.expense.ID,
		Type:            models.TransactionTypeExpense,
		Amount:          money("10"),
		TransactionDate: day(2024, 5, 1),
	}

	tests := []struct {
		name   string
		mutate func(c *PostCommand)
		kind   error
		code   string
	}{
		{"zero amount", func(c *PostCommand) { c.Amount = decimal.Zero }, ErrInvalidInput, CodeInvalidAmount},
		{"negative amount", func(c *PostCommand) { c.Amount = money("-5") }, ErrInvalidInput, CodeInvalidAmount},
		{"sub-cent amount", func(c *PostCommand) { c.Amount = money("0.004") }, ErrInvalidInput, CodeInvalidAmount},
		{"three decimals", func(c *PostCommand) { c.Amount = money("10.005") }, ErrInvalidInput, CodeInvalidAmount},
		{"unknown type", func(c *PostCommand) { c.Type = "TRANSFER" }, ErrInvalidInput, CodeInvalidType},
		{"missing date", func(c *PostCommand) { c.TransactionDate = time.Time{} }, ErrInvalidInput, CodeInvalidDate},
		{"missing account", func(c *PostCommand) { c.AccountID = "" }, ErrInvalidInput, CodeInvalidInput},
		{"unknown account", func(c *PostCommand) { c.AccountID = "nope" }, ErrNotFound, CodeAccountNotFound},
		{"foreign account", func(c *PostCommand) { c.AccountID = foreign.ID }, ErrNotFound, CodeAccountNotFound},
		{"unknown category", func(c *PostCommand) { c.CategoryID = "nope" }, ErrNotFound, CodeCategoryNotFound},
		{"category kind mismatch", func(c *PostCommand) { c.CategoryID = f.income.ID }, ErrInvalidInput, CodeCategoryTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := valid
			tt.mutate(&cmd)
			_, err := l.Post(ctx, f.user.ID, cmd)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}

	assertMoney(t, "1000", f.balance(t, f.account.ID))
	assertMoney(t, "1000", f.balance(t, foreign.ID))
	assert.Equal(t, int64(0), f.countTransactions(t, f.account.ID))
}

func TestPost_StoresCalendarDate(t *testing.T) {
	f := newFixture(t, "0")
	l := f.ledger(now)

	entry, err := l.Post(ctx, f.user.ID, PostCommand{
		AccountID:       f.account.ID,
		CategoryID:      f.income.ID,
		Type:            models.TransactionTypeIncome,
		Amount:          money("12.34"),
		TransactionDate: time.Date(2024, 2, 29, 18, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 29), entry.TransactionDate)
	assertMoney(t, "12.34", f.balance(t, f.account.ID))
}

func TestUpdateTransaction(t *testing.T) {
	f := newFixture(t, "1000")
	l := f.ledger(now)
	savings := createAccount(t, f.db, f.user.ID, "Tabungan", "0")
	snacks := createCategory(t, f.db, f.user.ID, "Jajan", models.TransactionTypeExpense)

	entry := f.post(t, l, models.TransactionTypeExpense, "100")
	assertMoney(t, "900", f.balance(t, f.account.ID))

	t.Run("metadata only", func(t *testing.T) {
		desc := "makan siang"
		date := day(2024, 5, 3)
		updated, err := l.UpdateTransaction(ctx, f.user.ID, entry.ID, UpdateCommand{
			CategoryID:      &snacks.ID,
			Description:     &desc,
			TransactionDate: &date,
		})
		require.NoError(t, err)
		assert.Equal(t, entry.ID, updated.ID)
		assert.Equal(t, "makan siang", updated.Description)
		assert.Equal(t, snacks.ID, updated.CategoryID)
		assert.Equal(t, date, updated.TransactionDate)
		assertMoney(t, "900", f.balance(t, f.account.ID))
	})

	t.Run("amount", func(t *testing.T) {
		amount := money("250")
		_, err := l.UpdateTransaction(ctx, f.user.ID, entry.ID, UpdateCommand{Amount: &amount})
		require.NoError(t, err)
		assertMoney(t, "750", f.balance(t, f.account.ID))
	})

	t.Run("type", func(t *testing.T) {
		typ := models.TransactionTypeIncome
		_, err := l.UpdateTransaction(ctx, f.user.ID, entry.ID, UpdateCommand{Type: &typ, CategoryID: &f.income.ID})
		require.NoError(t, err)
		assertMoney(t, "1250", f.balance(t, f.account.ID))
	})

	t.Run("type without matching category", func(t *testing.T) {
		typ := models.TransactionTypeExpense
		_, err := l.UpdateTransaction(ctx, f.user.ID, entry.ID, UpdateCommand{Type: &typ})
		assert.Equal(t, CodeCategoryTypeMismatch, ErrorCode(err))
		assertMoney(t, "1250", f.balance(t, f.account.ID))
	})

	t.Run("account", func(t *testing.T) {
		_, err := l.UpdateTransaction(ctx, f.user.ID, entry.ID, UpdateCommand{AccountID: &savings.ID})
		require.NoError(t, err)
		assertMoney(t, "1000", f.balance(t, f.account.ID))
		assertMoney(t, "250", f.balance(t, savings.ID))
	})

	t.Run("invalid amount leaves everything", func(t *testing.T) {
		zero := decimal.Zero
		_, err := l.UpdateTransaction(ctx, f.user.ID, entry.ID, UpdateCommand{Amount: &zero})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assertMoney(t, "250", f.balance(t, savings.ID))
	})

	t.Run("sub-cent amount leaves everything", func(t *testing.T) {
		fine := money("250.001")
		_, err := l.UpdateTransaction(ctx, f.user.ID, entry.ID, UpdateCommand{Amount: &fine})
		assert.Equal(t, CodeInvalidAmount, ErrorCode(err))
		assertMoney(t, "250", f.balance(t, savings.ID))
	})

	t.Run("unknown target account", func(t *testing.T) {
		missing := "missing"
		_, err := l.UpdateTransaction(ctx, f.user.ID, entry.ID, UpdateCommand{AccountID: &missing})
		assert.Equal(t, CodeAccountNotFound, ErrorCode(err))
		assertMoney(t, "250", f.balance(t, savings.ID))
	})

	f.assertConsistent(t, l, f.account.ID)
	f.assertConsistent(t, l, savings.ID)
}

func TestLedgerInvariant_RandomSequence(t *testing.T) {
	f := newFixture(t, "1000")
	l := f.ledger(now)
	rng := rand.New(rand.NewSource(42))

	var live []string
	for i := 0; i < 60; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(live))
			_, err := l.Reverse(ctx, f.user.ID, live[idx])
			require.NoError(t, err)
			live = append(live[:idx], live[idx+1:]...)
		} else {
			typ := models.TransactionTypeIncome
			if rng.Intn(2) == 0 {
				typ = models.TransactionTypeExpense
			}
			amount := decimal.New(int64(rng.Intn(100000)+1), -2)
			entry := f.post(t, l, typ, amount.String())
			live = append(live, entry.ID)
		}
		f.assertConsistent(t, l, f.account.ID)
	}
	assert.Equal(t, int64(len(live)), f.countTransactions(t, f.account.ID))
}

func TestPost_ConcurrentSameAccount(t *testing.T) {
	f := newFixture(t, "0")
	l := f.ledger(now)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			typ, category := models.TransactionTypeIncome, f.income.ID
			if i%4 == 0 {
				typ, category = models.TransactionTypeExpense, f.expense.ID
			}
			_, err := l.Post(ctx, f.user.ID, PostCommand{
				AccountID:       f.account.ID,
				CategoryID:      category,
				Type:            typ,
				Amount:          money("1000.10"),
				TransactionDate: day(2024, 5, 10),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// 15 incomes and 5 expenses
	assertMoney(t, "10001", f.balance(t, f.account.ID))
	assert.Equal(t, int64(workers), f.countTransactions(t, f.account.ID))
	f.assertConsistent(t, l, f.account.ID)
}

func TestListTransactions(t *testing.T) {
	f := newFixture(t, "0")
	l := f.ledger(now)

	for i := 1; i <= 5; i++ {
		_, err := l.Post(ctx, f.user.ID, PostCommand{
			AccountID:       f.account.ID,
			CategoryID:      f.income.ID,
			Type:            models.TransactionTypeIncome,
			Amount:          money("10"),
			TransactionDate: day(2024, 5, i),
		})
		require.NoError(t, err)
	}
	f.post(t, l, models.TransactionTypeExpense, "3")

	stranger := createUser(t, f.db, "stranger@example.com")
	page, err := l.ListTransactions(ctx, stranger.ID, TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.List)

	page, err = l.ListTransactions(ctx, f.user.ID, TransactionFilter{Page: 1, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
	require.Len(t, page.List, 4)
	assert.Equal(t, day(2024, 5, 10), page.List[0].TransactionDate, "newest first")
	require.NotNil(t, page.List[0].Category)
	require.NotNil(t, page.List[0].Account)
	assert.Equal(t, f.account.ID, page.List[0].Account.ID)

	page, err = l.ListTransactions(ctx, f.user.ID, TransactionFilter{Page: 2, PageSize: 4})
	require.NoError(t, err)
	assert.Len(t, page.List, 2)

	from, to := day(2024, 5, 2), day(2024, 5, 4)
	page, err = l.ListTransactions(ctx, f.user.ID, TransactionFilter{
		Type: models.TransactionTypeIncome,
		From: &from,
		To:   &to,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	page, err = l.ListTransactions(ctx, f.user.ID, TransactionFilter{CategoryID: f.expense.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestGetTransaction(t *testing.T) {
	f := newFixture(t, "0")
	l := f.ledger(now)
	entry := f.post(t, l, models.TransactionTypeIncome, "5")

	got, err := l.GetTransaction(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gaji", got.Category.Name)

	_, err = l.GetTransaction(ctx, "someone-else", entry.ID)
	assert.Equal(t, CodeTransactionNotFound, ErrorCode(err))
}

func TestReconcile_DetectsDrift(t *testing.T) {
	f := newFixture(t, "100")
	l := f.ledger(now)
	f.post(t, l, models.TransactionTypeIncome, "50")

	require.NoError(t, f.db.Model(&models.Account{}).Where("id = ?", f.account.ID).Update("balance", money("999")).Error)

	rec, err := l.Reconcile(ctx, f.user.ID, f.account.ID)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assertMoney(t, "150", rec.Expected)
	assertMoney(t, "849", rec.Difference)
}
