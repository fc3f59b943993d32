package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"celengan/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecurringService manages recurring transaction templates
type RecurringService struct {
	db *gorm.DB
}

func NewRecurringService(db *gorm.DB) *RecurringService {
	return &RecurringService{db: db}
}

// CreateRecurringCommand new template; the first occurrence is StartDate
type CreateRecurringCommand struct {
	AccountID   string
	CategoryID  string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Frequency   models.Frequency
	StartDate   time.Time
	EndDate     *time.Time
}

// List returns the user's templates, soonest first
func (s *RecurringService) List(ctx context.Context, userID string) ([]models.RecurringTransaction, error) {
	list := []models.RecurringTransaction{}
	err := s.db.WithContext(ctx).
		Preload("Account").
		Preload("Category").
		Joins("JOIN accounts ON accounts.id = recurring_transactions.account_id").
		Where("accounts.user_id = ?", userID).
		Order("recurring_transactions.next_occurrence_date ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	return list, nil
}

// Create validates and stores a template
func (s *RecurringService) Create(ctx context.Context, userID string, cmd CreateRecurringCommand) (*models.RecurringTransaction, error) {
	if err := checkAmount(cmd.Amount, "amount"); err != nil {
		return nil, err
	}
	if !cmd.Type.Valid() {
		return nil, invalid(CodeInvalidType, "type must be INCOME or EXPENSE")
	}
	if !cmd.Frequency.Valid() {
		return nil, invalid(CodeInvalidFrequency, "frequency must be DAILY, WEEKLY or MONTHLY")
	}
	if cmd.StartDate.IsZero() {
		return nil, invalid(CodeInvalidDate, "start date is required")
	}

	start := calendarDate(cmd.StartDate)
	r := models.RecurringTransaction{
		AccountID:          cmd.AccountID,
		CategoryID:         cmd.CategoryID,
		Type:               cmd.Type,
		Amount:             cmd.Amount,
		Description:        cmd.Description,
		Frequency:          cmd.Frequency,
		StartDate:          start,
		NextOccurrenceDate: start,
	}
	if cmd.EndDate != nil {
		end := calendarDate(*cmd.EndDate)
		if end.Before(start) {
			return nil, invalid(CodeInvalidDate, "end date is before start date")
		}
		r.EndDate = &end
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("id = ? AND user_id = ?", cmd.AccountID, userID).Count(&count).Error; err != nil {
			return fmt.Errorf("check account: %w", err)
		}
		if count == 0 {
			return notFound(CodeAccountNotFound, "account not found")
		}
		if err := checkCategory(tx, userID, cmd.CategoryID, cmd.Type); err != nil {
			return err
		}
		return tx.Create(&r).Error
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a template. Transactions it already posted stay.
func (s *RecurringService) Delete(ctx context.Context, userID, id string) error {
	var r models.RecurringTransaction
	err := s.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = recurring_transactions.account_id").
		Where("recurring_transactions.id = ? AND accounts.user_id = ?", id, userID).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(CodeRecurringNotFound, "recurring transaction not found")
	}
	if err != nil {
		return fmt.Errorf("load recurring transaction: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&models.RecurringTransaction{}, "id = ?", r.ID).Error; err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	return nil
}
