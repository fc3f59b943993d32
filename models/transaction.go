package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction a posted ledger entry. Amount is always positive; Type gives the sign.
type Transaction struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	AccountID       string          `json:"account_id" gorm:"size:36;index;not null"`
	CategoryID      string          `json:"category_id" gorm:"size:36;index;not null"`
	Type            TransactionType `json:"type" gorm:"size:10;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Description     string          `json:"description" gorm:"size:255"`
	TransactionDate time.Time       `json:"transaction_date" gorm:"index;not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Account         *Account        `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Category        *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName sets the table name
func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// SignedAmount balance effect of the entry on its account
func (t *Transaction) SignedAmount() decimal.Decimal {
	return t.Type.SignedAmount(t.Amount)
}
