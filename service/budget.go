package service

import (
	"context"
	"fmt"
	"time"

	"celengan/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetService monthly budgets per expense category
type BudgetService struct {
	db *gorm.DB
}

func NewBudgetService(db *gorm.DB) *BudgetService {
	return &BudgetService{db: db}
}

// BudgetLine one expense category with its budget and spending in a month
type BudgetLine struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	BudgetID     *string         `json:"budget_id"`
	Amount       decimal.Decimal `json:"amount"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// BudgetCommand set the budget of a category for a month
type BudgetCommand struct {
	CategoryID string
	Year       int
	Month      int
	Amount     decimal.Decimal
}

// List returns every expense category of the user with its budget (zero
// when unset) and the amount spent in the month.
func (s *BudgetService) List(ctx context.Context, userID string, year, month int) ([]BudgetLine, error) {
	if err := checkPeriod(year, month); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var categories []models.Category
	err := db.Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var budgets []models.Budget
	if err := db.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	byCategory := make(map[string]models.Budget, len(budgets))
	for _, b := range budgets {
		byCategory[b.CategoryID] = b
	}

	from, to := monthRange(year, time.Month(month))
	spent, err := spentByCategory(db, userID, from, to)
	if err != nil {
		return nil, err
	}

	lines := make([]BudgetLine, 0, len(categories))
	for _, c := range categories {
		line := BudgetLine{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Amount:       decimal.Zero,
			Spent:        spent[c.ID],
		}
		if b, ok := byCategory[c.ID]; ok {
			id := b.ID
			line.BudgetID = &id
			line.Amount = b.Amount
		}
		line.Remaining = line.Amount.Sub(line.Spent)
		lines = append(lines, line)
	}
	return lines, nil
}

// Upsert creates the budget or replaces its amount
func (s *BudgetService) Upsert(ctx context.Context, userID string, cmd BudgetCommand) (*models.Budget, error) {
	if err := checkPeriod(cmd.Year, cmd.Month); err != nil {
		return nil, err
	}
	if cmd.Amount.IsNegative() {
		return nil, invalid(CodeInvalidAmount, "amount cannot be negative")
	}

	var budget models.Budget
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, userID, cmd.CategoryID, models.TransactionTypeExpense); err != nil {
			return err
		}
		row := models.Budget{
			UserID:     userID,
			CategoryID: cmd.CategoryID,
			Year:       cmd.Year,
			Month:      cmd.Month,
			Amount:     cmd.Amount.Round(2),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}, {Name: "year"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upsert budget: %w", err)
		}
		return tx.Where("user_id = ? AND category_id = ? AND year = ? AND month = ?",
			userID, cmd.CategoryID, cmd.Year, cmd.Month).First(&budget).Error
	})
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, budgetID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if res.Error != nil {
		return fmt.Errorf("delete budget: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(CodeBudgetNotFound, "budget not found")
	}
	return nil
}

func checkPeriod(year, month int) error {
	if month < 1 || month > 12 {
		return invalid(CodeInvalidDate, "month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return invalid(CodeInvalidDate, "year out of range")
	}
	return nil
}

// monthRange [first day of month, first day of next month)
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func spentByCategory(db *gorm.DB, userID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	var rows []struct {
		CategoryID string
		Total      decimal.Decimal
	}
	err := db.Model(&models.Transaction{}).
		Select("transactions.category_id AS category_id, COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.user_id = ? AND transactions.type = ?", userID, models.TransactionTypeExpense).
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", from, to).
		Group("transactions.category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sum spending: %w", err)
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.CategoryID] = r.Total.Round(2)
	}
	return out, nil
}
