package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget monthly spending limit for one expense category
type Budget struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	UserID     string          `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_budget_period,priority:1"`
	CategoryID string          `json:"category_id" gorm:"size:36;not null;uniqueIndex:idx_budget_period,priority:2"`
	Year       int             `json:"year" gorm:"not null;uniqueIndex:idx_budget_period,priority:3"`
	Month      int             `json:"month" gorm:"not null;uniqueIndex:idx_budget_period,priority:4"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Budget) TableName() string {
	return "budgets"
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
