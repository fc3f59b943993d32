package service

import (
	"context"
	"fmt"
	"time"

	"celengan/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportService read-only rollups for the dashboard, charts and exports
type ReportService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewReportService(db *gorm.DB, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{db: db, loc: loc, now: time.Now}
}

// Summary monthly totals
type Summary struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// PieSlice expense total of one category
type PieSlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// MonthBar income and expense of one month
type MonthBar struct {
	Label   string          `json:"label"`
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Charts dashboard chart data
type Charts struct {
	Pie []PieSlice `json:"pie"`
	Bar []MonthBar `json:"bar"`
}

var shortMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// CurrentPeriod year and month of today in the report time zone
func (s *ReportService) CurrentPeriod() (int, int) {
	today := models.DateOf(s.now(), s.loc)
	return today.Year(), int(today.Month())
}

// Summary returns income, expense and net for a month plus the total
// balance across all accounts.
func (s *ReportService) Summary(ctx context.Context, userID string, year, month int) (*Summary, error) {
	if err := checkPeriod(year, month); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	from, to := monthRange(year, time.Month(month))

	income, expense, err := monthTotals(db, userID, from, to)
	if err != nil {
		return nil, err
	}

	var balance struct{ Total decimal.Decimal }
	err = db.Model(&models.Account{}).
		Select("COALESCE(SUM(balance), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&balance).Error
	if err != nil {
		return nil, fmt.Errorf("sum balances: %w", err)
	}

	return &Summary{
		Year:         year,
		Month:        month,
		Income:       income,
		Expense:      expense,
		Net:          income.Sub(expense),
		TotalBalance: balance.Total.Round(2),
	}, nil
}

// Charts returns this month's expenses by category and the income and
// expense totals of the last six months, oldest first.
func (s *ReportService) Charts(ctx context.Context, userID string) (*Charts, error) {
	db := s.db.WithContext(ctx)
	year, month := s.CurrentPeriod()
	from, to := monthRange(year, time.Month(month))

	charts := &Charts{Pie: []PieSlice{}, Bar: make([]MonthBar, 0, 6)}
	err := db.Model(&models.Transaction{}).
		Select("categories.name AS name, COALESCE(SUM(transactions.amount), 0) AS value").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("accounts.user_id = ? AND transactions.type = ?", userID, models.TransactionTypeExpense).
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", from, to).
		Group("categories.name").
		Order("value DESC").
		Scan(&charts.Pie).Error
	if err != nil {
		return nil, fmt.Errorf("expense by category: %w", err)
	}
	for i := range charts.Pie {
		charts.Pie[i].Value = charts.Pie[i].Value.Round(2)
	}

	for i := 5; i >= 0; i-- {
		start := from.AddDate(0, -i, 0)
		income, expense, err := monthTotals(db, userID, start, start.AddDate(0, 1, 0))
		if err != nil {
			return nil, err
		}
		charts.Bar = append(charts.Bar, MonthBar{
			Label:   fmt.Sprintf("%s %d", shortMonths[start.Month()-1], start.Year()),
			Year:    start.Year(),
			Month:   int(start.Month()),
			Income:  income,
			Expense: expense,
		})
	}
	return charts, nil
}

// ExportTransactions returns the user's transactions dated in [from, to],
// oldest first, with account and category loaded.
func (s *ReportService) ExportTransactions(ctx context.Context, userID string, from, to time.Time) ([]models.Transaction, error) {
	if to.Before(from) {
		return nil, invalid(CodeInvalidDate, "end date is before start date")
	}
	list := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Preload("Account").
		Preload("Category").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.user_id = ?", userID).
		Where("transactions.transaction_date >= ? AND transactions.transaction_date <= ?", calendarDate(from), calendarDate(to)).
		Order("transactions.transaction_date ASC, transactions.created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}
	return list, nil
}

func monthTotals(db *gorm.DB, userID string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var rows []struct {
		Type  models.TransactionType
		Total decimal.Decimal
	}
	err := db.Model(&models.Transaction{}).
		Select("transactions.type AS type, COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.user_id = ?", userID).
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", from, to).
		Group("transactions.type").
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("monthly totals: %w", err)
	}
	income, expense := decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch r.Type {
		case models.TransactionTypeIncome:
			income = r.Total.Round(2)
		case models.TransactionTypeExpense:
			expense = r.Total.Round(2)
		}
	}
	return income, expense, nil
}
