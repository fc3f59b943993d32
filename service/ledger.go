package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"celengan/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService posts, edits and reverses transactions and runs the
// recurrence sweep. Every operation that touches a balance runs in a
// single database transaction with the affected account rows locked.
type LedgerService struct {
	db         *gorm.DB
	loc        *time.Location
	now        func() time.Time
	maxCatchUp int
	reporter   SweepReporter
}

// LedgerOptions optional LedgerService settings
type LedgerOptions struct {
	// Location defines "today" for the recurrence sweep. Defaults to UTC.
	Location *time.Location
	// Now replaces time.Now, for tests.
	Now func() time.Time
	// MaxCatchUp bounds how many missed occurrences of one template a
	// single sweep materializes. Defaults to 31.
	MaxCatchUp int
	// Reporter is told about sweeps that had failing rows.
	Reporter SweepReporter
}

// NewLedgerService creates the ledger engine on top of db
func NewLedgerService(db *gorm.DB, opts LedgerOptions) *LedgerService {
	s := &LedgerService{
		db:         db,
		loc:        opts.Location,
		now:        opts.Now,
		maxCatchUp: opts.MaxCatchUp,
		reporter:   opts.Reporter,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxCatchUp <= 0 {
		s.maxCatchUp = 31
	}
	return s
}

// PostCommand a new ledger entry
type PostCommand struct {
	AccountID       string
	CategoryID      string
	Type            models.TransactionType
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
}

// checkAmount rejects non-positive amounts and amounts finer than a cent
func checkAmount(amount decimal.Decimal, field string) error {
	if !models.ValidAmount(amount) {
		return invalid(CodeInvalidAmount, field+" must be greater than zero with at most two decimal places")
	}
	return nil
}

func (c PostCommand) validate() error {
	if err := checkAmount(c.Amount, "amount"); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return invalid(CodeInvalidType, "type must be INCOME or EXPENSE")
	}
	if c.AccountID == "" || c.CategoryID == "" {
		return invalid(CodeInvalidInput, "account and category are required")
	}
	if c.TransactionDate.IsZero() {
		return invalid(CodeInvalidDate, "transaction date is required")
	}
	return nil
}

// Post records a transaction and applies its effect to the account balance.
// Both writes commit together or not at all.
func (s *LedgerService) Post(ctx context.Context, userID string, cmd PostCommand) (*models.Transaction, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	entry := models.Transaction{
		AccountID:       cmd.AccountID,
		CategoryID:      cmd.CategoryID,
		Type:            cmd.Type,
		Amount:          cmd.Amount,
		Description:     cmd.Description,
		TransactionDate: calendarDate(cmd.TransactionDate),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockAccount(tx, userID, cmd.AccountID); err != nil {
			return err
		}
		if err := checkCategory(tx, userID, cmd.CategoryID, cmd.Type); err != nil {
			return err
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return adjustBalance(tx, cmd.AccountID, entry.SignedAmount())
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Reverse undoes a transaction's balance effect and deletes it.
// It returns the account as it stands afterwards.
func (s *LedgerService) Reverse(ctx context.Context, userID, transactionID string) (*models.Account, error) {
	var account models.Account

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := findOwnedTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}
		if _, err := lockAccount(tx, userID, entry.AccountID); err != nil {
			return err
		}

		// a concurrent reversal may have won the lock first
		res := tx.Where("id = ?", entry.ID).Delete(&models.Transaction{})
		if res.Error != nil {
			return fmt.Errorf("delete transaction: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return notFound(CodeTransactionNotFound, "transaction not found")
		}

		if err := adjustBalance(tx, entry.AccountID, entry.SignedAmount().Neg()); err != nil {
			return err
		}
		return tx.Where("id = ?", entry.AccountID).First(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateCommand partial edit of a transaction; nil fields are left unchanged
type UpdateCommand struct {
	AccountID       *string
	CategoryID      *string
	Type            *models.TransactionType
	Amount          *decimal.Decimal
	Description     *string
	TransactionDate *time.Time
}

// UpdateTransaction edits a transaction. When the amount, type or account
// changes, the old effect is reversed and the new one applied in the same
// database transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, transactionID string, cmd UpdateCommand) (*models.Transaction, error) {
	var updated models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := findOwnedTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		next := *entry
		if cmd.AccountID != nil {
			next.AccountID = *cmd.AccountID
		}
		if cmd.CategoryID != nil {
			next.CategoryID = *cmd.CategoryID
		}
		if cmd.Type != nil {
			next.Type = *cmd.Type
		}
		if cmd.Amount != nil {
			next.Amount = *cmd.Amount
		}
		if cmd.Description != nil {
			next.Description = *cmd.Description
		}
		if cmd.TransactionDate != nil {
			next.TransactionDate = calendarDate(*cmd.TransactionDate)
		}

		if err := checkAmount(next.Amount, "amount"); err != nil {
			return err
		}
		if !next.Type.Valid() {
			return invalid(CodeInvalidType, "type must be INCOME or EXPENSE")
		}
		if next.CategoryID != entry.CategoryID || next.Type != entry.Type {
			if err := checkCategory(tx, userID, next.CategoryID, next.Type); err != nil {
				return err
			}
		}

		rebalance := next.AccountID != entry.AccountID ||
			next.Type != entry.Type ||
			!next.Amount.Equal(entry.Amount)

		if rebalance {
			// fixed lock order keeps two edits moving money in opposite
			// directions between the same accounts from deadlocking
			ids := []string{entry.AccountID}
			if next.AccountID != entry.AccountID {
				ids = append(ids, next.AccountID)
			}
			sort.Strings(ids)
			for _, id := range ids {
				if _, err := lockAccount(tx, userID, id); err != nil {
					return err
				}
			}

			if err := adjustBalance(tx, entry.AccountID, entry.SignedAmount().Neg()); err != nil {
				return err
			}
			if err := adjustBalance(tx, next.AccountID, next.SignedAmount()); err != nil {
				return err
			}
		}

		res := tx.Model(&models.Transaction{}).Where("id = ?", entry.ID).Updates(map[string]interface{}{
			"account_id":       next.AccountID,
			"category_id":      next.CategoryID,
			"type":             next.Type,
			"amount":           next.Amount,
			"description":      next.Description,
			"transaction_date": next.TransactionDate,
		})
		if res.Error != nil {
			return fmt.Errorf("update transaction: %w", res.Error)
		}
		return tx.Where("id = ?", entry.ID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetTransaction returns one of the user's transactions with account and category
func (s *LedgerService) GetTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	var entry models.Transaction
	err := s.db.WithContext(ctx).
		Preload("Account").
		Preload("Category").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("transactions.id = ? AND accounts.user_id = ?", transactionID, userID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeTransactionNotFound, "transaction not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	return &entry, nil
}

// TransactionFilter list criteria; zero values mean "any"
type TransactionFilter struct {
	AccountID  string
	CategoryID string
	Type       models.TransactionType
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// TransactionPage one page of transactions, newest first
type TransactionPage struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	List     []models.Transaction `json:"list"`
}

// ListTransactions pages through the user's transactions
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, f TransactionFilter) (*TransactionPage, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Transaction{}).
			Joins("JOIN accounts ON accounts.id = transactions.account_id").
			Where("accounts.user_id = ?", userID)
		if f.AccountID != "" {
			q = q.Where("transactions.account_id = ?", f.AccountID)
		}
		if f.CategoryID != "" {
			q = q.Where("transactions.category_id = ?", f.CategoryID)
		}
		if f.Type != "" {
			q = q.Where("transactions.type = ?", f.Type)
		}
		if f.From != nil {
			q = q.Where("transactions.transaction_date >= ?", calendarDate(*f.From))
		}
		if f.To != nil {
			q = q.Where("transactions.transaction_date <= ?", calendarDate(*f.To))
		}
		return q
	}

	page := &TransactionPage{Page: f.Page, PageSize: f.PageSize, List: []models.Transaction{}}
	if err := base().Count(&page.Total).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	err := base().
		Preload("Account").
		Preload("Category").
		Order("transactions.transaction_date DESC, transactions.created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&page.List).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return page, nil
}

// lockAccount loads the user's account with a row lock held until the
// surrounding transaction ends.
func lockAccount(tx *gorm.DB, userID, accountID string) (*models.Account, error) {
	var account models.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", accountID, userID).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &account, nil
}

// checkCategory verifies the category belongs to the user and matches typ
func checkCategory(tx *gorm.DB, userID, categoryID string, typ models.TransactionType) error {
	var category models.Category
	err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(CodeCategoryNotFound, "category not found")
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if category.Type != typ {
		return invalid(CodeCategoryTypeMismatch, fmt.Sprintf("category %q is for %s transactions", category.Name, category.Type))
	}
	return nil
}

func findOwnedTransaction(tx *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var entry models.Transaction
	err := tx.Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("transactions.id = ? AND accounts.user_id = ?", transactionID, userID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeTransactionNotFound, "transaction not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	return &entry, nil
}

// adjustBalance adds delta to the account balance inside the database, so
// the new value never derives from a stale read.
func adjustBalance(tx *gorm.DB, accountID string, delta decimal.Decimal) error {
	res := tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("ROUND(balance + CAST(? AS DECIMAL(20,2)), 2)", delta))
	if res.Error != nil {
		return fmt.Errorf("update balance: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return notFound(CodeAccountNotFound, "account not found")
	}
	return nil
}

// withdraw is adjustBalance for debits that must stay covered by the balance
func withdraw(tx *gorm.DB, accountID string, amount decimal.Decimal) error {
	res := tx.Model(&models.Account{}).
		Where("id = ? AND balance >= CAST(? AS DECIMAL(20,2))", accountID, amount).
		Update("balance", gorm.Expr("ROUND(balance - CAST(? AS DECIMAL(20,2)), 2)", amount))
	if res.Error != nil {
		return fmt.Errorf("update balance: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return conflict(CodeInsufficientFunds, "insufficient account balance")
	}
	return nil
}

// calendarDate keeps the calendar fields of t and drops the time of day
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
