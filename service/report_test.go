package service

import (
	"testing"
	"time"

	"celengan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService(t *testing.T) {
	f := newFixture(t, "1000")
	l := f.ledger(now)
	createAccount(t, f.db, f.user.ID, "Dompet", "50")

	postOn := func(typ models.TransactionType, amount string, date time.Time) {
		category := f.income.ID
		if typ == models.TransactionTypeExpense {
			category = f.expense.ID
		}
		_, err := l.Post(ctx, f.user.ID, PostCommand{
			AccountID: f.account.ID, CategoryID: category, Type: typ,
			Amount: money(amount), TransactionDate: date,
		})
		require.NoError(t, err)
	}
	postOn(models.TransactionTypeIncome, "500", day(2024, 5, 2))
	postOn(models.TransactionTypeExpense, "120.50", day(2024, 5, 3))
	postOn(models.TransactionTypeExpense, "30", day(2024, 5, 31))
	postOn(models.TransactionTypeExpense, "70", day(2024, 4, 30))
	postOn(models.TransactionTypeIncome, "10", day(2023, 11, 30))

	svc := NewReportService(f.db, time.UTC)
	svc.now = func() time.Time { return now }

	summary, err := svc.Summary(ctx, f.user.ID, 2024, 5)
	require.NoError(t, err)
	assertMoney(t, "500", summary.Income)
	assertMoney(t, "150.5", summary.Expense)
	assertMoney(t, "349.5", summary.Net)
	// 1000 + 50 + 500 - 150.5 - 70 + 10
	assertMoney(t, "1339.5", summary.TotalBalance)

	charts, err := svc.Charts(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, charts.Pie, 1)
	assert.Equal(t, "Makanan", charts.Pie[0].Name)
	assertMoney(t, "150.5", charts.Pie[0].Value)

	require.Len(t, charts.Bar, 6)
	assert.Equal(t, "Des 2023", charts.Bar[0].Label)
	assert.Equal(t, "Mei 2024", charts.Bar[5].Label)
	assertMoney(t, "70", charts.Bar[4].Expense)
	assert.True(t, charts.Bar[0].Income.IsZero(), "november is outside the window")

	rows, err := svc.ExportTransactions(ctx, f.user.ID, day(2024, 4, 1), day(2024, 5, 3))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, day(2024, 4, 30), rows[0].TransactionDate)
	require.NotNil(t, rows[0].Account)

	_, err = svc.ExportTransactions(ctx, f.user.ID, day(2024, 5, 3), day(2024, 4, 1))
	assert.Equal(t, CodeInvalidDate, ErrorCode(err))

	year, month := svc.CurrentPeriod()
	assert.Equal(t, 2024, year)
	assert.Equal(t, 5, month)
}
