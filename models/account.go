package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountType kind of money store
type AccountType string

const (
	AccountTypeCash       AccountType = "CASH"
	AccountTypeBank       AccountType = "BANK"
	AccountTypeEWallet    AccountType = "E_WALLET"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeOther      AccountType = "OTHER"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeEWallet,
		AccountTypeCreditCard, AccountTypeInvestment, AccountTypeOther:
		return true
	}
	return false
}

// Account a user's wallet, bank account or similar.
// Balance is only written by the ledger engine; OpeningBalance is fixed at creation.
type Account struct {
	ID             string          `json:"id" gorm:"primaryKey;size:36"`
	UserID         string          `json:"user_id" gorm:"size:36;index;not null"`
	Name           string          `json:"name" gorm:"size:100;not null"`
	Type           AccountType     `json:"type" gorm:"size:20;not null"`
	OpeningBalance decimal.Decimal `json:"opening_balance" gorm:"type:decimal(20,2);not null;default:0"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	User           User            `json:"-" gorm:"foreignKey:UserID"`
}

// TableName sets the table name
func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// DefaultAccounts accounts seeded for every new user
func DefaultAccounts(userID string) []Account {
	return []Account{
		{UserID: userID, Name: "Dompet Tunai", Type: AccountTypeCash},
		{UserID: userID, Name: "Rekening Bank", Type: AccountTypeBank},
		{UserID: userID, Name: "E-Wallet", Type: AccountTypeEWallet},
	}
}
