package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Frequency repeat period of a recurring transaction
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

// Valid reports whether f is a known frequency
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// RecurringDescriptionPrefix marks transactions materialized by the recurrence sweep
const RecurringDescriptionPrefix = "(Rutin) "

// RecurringTransaction template that the recurrence sweep posts on schedule.
// NextOccurrenceDate only moves forward.
type RecurringTransaction struct {
	ID                 string          `json:"id" gorm:"primaryKey;size:36"`
	AccountID          string          `json:"account_id" gorm:"size:36;index;not null"`
	CategoryID         string          `json:"category_id" gorm:"size:36;index;not null"`
	Type               TransactionType `json:"type" gorm:"size:10;not null"`
	Amount             decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Description        string          `json:"description" gorm:"size:255"`
	Frequency          Frequency       `json:"frequency" gorm:"size:10;not null"`
	StartDate          time.Time       `json:"start_date" gorm:"not null"`
	NextOccurrenceDate time.Time       `json:"next_occurrence_date" gorm:"index;not null"`
	EndDate            *time.Time      `json:"end_date"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Account            *Account        `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Category           *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (RecurringTransaction) TableName() string {
	return "recurring_transactions"
}

func (r *RecurringTransaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// DueOn reports whether the template should fire on the given date
func (r *RecurringTransaction) DueOn(today time.Time) bool {
	if r.NextOccurrenceDate.After(today) {
		return false
	}
	return r.EndDate == nil || !r.EndDate.Before(today)
}
