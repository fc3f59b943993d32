package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"celengan/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountService account CRUD. Balances are never written here except for
// the opening balance on creation.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// CreateAccountCommand new account
type CreateAccountCommand struct {
	Name           string
	Type           models.AccountType
	OpeningBalance decimal.Decimal
}

// UpdateAccountCommand editable account fields
type UpdateAccountCommand struct {
	Name string
	Type models.AccountType
}

func (s *AccountService) List(ctx context.Context, userID string) ([]models.Account, error) {
	list := []models.Account{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return list, nil
}

func (s *AccountService) Get(ctx context.Context, userID, accountID string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &account, nil
}

func (s *AccountService) Create(ctx context.Context, userID string, cmd CreateAccountCommand) (*models.Account, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, invalid(CodeInvalidInput, "name is required")
	}
	if !cmd.Type.Valid() {
		return nil, invalid(CodeInvalidType, fmt.Sprintf("unknown account type %q", cmd.Type))
	}
	if cmd.OpeningBalance.IsNegative() {
		return nil, invalid(CodeInvalidAmount, "opening balance cannot be negative")
	}

	opening := cmd.OpeningBalance.Round(2)
	account := models.Account{
		UserID:         userID,
		Name:           name,
		Type:           cmd.Type,
		OpeningBalance: opening,
		Balance:        opening,
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &account, nil
}

// Update renames or retypes an account
func (s *AccountService) Update(ctx context.Context, userID, accountID string, cmd UpdateAccountCommand) (*models.Account, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, invalid(CodeInvalidInput, "name is required")
	}
	if !cmd.Type.Valid() {
		return nil, invalid(CodeInvalidType, fmt.Sprintf("unknown account type %q", cmd.Type))
	}
	account, err := s.Get(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(account).Updates(map[string]interface{}{
		"name": name,
		"type": cmd.Type,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return s.Get(ctx, userID, accountID)
}

// Delete removes an account that nothing in the ledger references
func (s *AccountService) Delete(ctx context.Context, userID, accountID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID, accountID)
		if err != nil {
			return err
		}

		refs := []struct {
			model interface{}
			what  string
		}{
			{&models.Transaction{}, "transactions"},
			{&models.RecurringTransaction{}, "recurring transactions"},
			{&models.GoalContribution{}, "goal contributions"},
		}
		for _, ref := range refs {
			var count int64
			if err := tx.Model(ref.model).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("count %s: %w", ref.what, err)
			}
			if count > 0 {
				return conflict(CodeAccountInUse, fmt.Sprintf("account still has %d %s", count, ref.what))
			}
		}

		if err := tx.Delete(&models.Account{}, "id = ?", account.ID).Error; err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
}
