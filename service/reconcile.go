package service

import (
	"context"
	"fmt"

	"celengan/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reconciliation stored balance against the balance recomputed from rows
type Reconciliation struct {
	AccountID  string          `json:"account_id"`
	Balance    decimal.Decimal `json:"balance"`
	Expected   decimal.Decimal `json:"expected"`
	Difference decimal.Decimal `json:"difference"`
	Consistent bool            `json:"consistent"`
}

// Reconcile recomputes an account's balance from its opening balance,
// its transactions and its goal contributions.
func (s *LedgerService) Reconcile(ctx context.Context, userID, accountID string) (*Reconciliation, error) {
	var rec *Reconciliation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID, accountID)
		if err != nil {
			return err
		}
		expected, err := expectedBalance(tx, account)
		if err != nil {
			return err
		}
		diff := account.Balance.Sub(expected)
		rec = &Reconciliation{
			AccountID:  account.ID,
			Balance:    account.Balance,
			Expected:   expected,
			Difference: diff,
			Consistent: diff.IsZero(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func expectedBalance(tx *gorm.DB, account *models.Account) (decimal.Decimal, error) {
	var income, expense, funded struct{ Total decimal.Decimal }

	if err := sumTransactions(tx, account.ID, models.TransactionTypeIncome, &income); err != nil {
		return decimal.Zero, err
	}
	if err := sumTransactions(tx, account.ID, models.TransactionTypeExpense, &expense); err != nil {
		return decimal.Zero, err
	}
	err := tx.Model(&models.GoalContribution{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("account_id = ?", account.ID).
		Scan(&funded).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum goal contributions: %w", err)
	}

	return account.OpeningBalance.
		Add(income.Total).
		Sub(expense.Total).
		Sub(funded.Total).
		Round(2), nil
}

func sumTransactions(tx *gorm.DB, accountID string, typ models.TransactionType, dest interface{}) error {
	err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("account_id = ? AND type = ?", accountID, typ).
		Scan(dest).Error
	if err != nil {
		return fmt.Errorf("sum %s transactions: %w", typ, err)
	}
	return nil
}
