package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category user-defined label for income or expense entries
type Category struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	UserID    string          `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_category_user_name_type,priority:1"`
	Name      string          `json:"name" gorm:"size:100;not null;uniqueIndex:idx_category_user_name_type,priority:2"`
	Type      TransactionType `json:"type" gorm:"size:10;not null;uniqueIndex:idx_category_user_name_type,priority:3"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	User      User            `json:"-" gorm:"foreignKey:UserID"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Default category names seeded at registration
var (
	DefaultIncomeCategories = []string{
		"Gaji",
		"Hadiah",
		"Pemasukan Lainnya",
	}
	DefaultExpenseCategories = []string{
		"Makanan & Minuman",
		"Transportasi",
		"Tagihan",
		"Belanja",
		"Hiburan",
		"Kesehatan",
		"Pengeluaran Lainnya",
	}
)

// DefaultCategories categories seeded for every new user
func DefaultCategories(userID string) []Category {
	cats := make([]Category, 0, len(DefaultIncomeCategories)+len(DefaultExpenseCategories))
	for _, name := range DefaultIncomeCategories {
		cats = append(cats, Category{UserID: userID, Name: name, Type: TransactionTypeIncome})
	}
	for _, name := range DefaultExpenseCategories {
		cats = append(cats, Category{UserID: userID, Name: name, Type: TransactionTypeExpense})
	}
	return cats
}
