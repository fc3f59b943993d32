package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Goal savings target funded from accounts
type Goal struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	UserID        string          `json:"user_id" gorm:"size:36;index;not null"`
	Name          string          `json:"name" gorm:"size:100;not null"`
	TargetAmount  decimal.Decimal `json:"target_amount" gorm:"type:decimal(20,2);not null"`
	CurrentAmount decimal.Decimal `json:"current_amount" gorm:"type:decimal(20,2);not null;default:0"`
	TargetDate    *time.Time      `json:"target_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName sets the table name
func (Goal) TableName() string {
	return "goals"
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Progress percentage of the target reached, capped at 100
func (g *Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
	if p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return p
}

// GoalContribution one transfer from an account into a goal
type GoalContribution struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	GoalID    string          `json:"goal_id" gorm:"size:36;index;not null"`
	AccountID string          `json:"account_id" gorm:"size:36;index;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}

func (GoalContribution) TableName() string {
	return "goal_contributions"
}

func (c *GoalContribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// FinancialTip short advice shown next to goals
type FinancialTip struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Title   string `json:"title" gorm:"size:150;not null"`
	Content string `json:"content" gorm:"type:text"`
}

func (FinancialTip) TableName() string {
	return "financial_tips"
}
