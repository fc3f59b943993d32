package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"celengan/models"

	"gorm.io/gorm"
)

// CategoryService category CRUD with usage guards
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CategoryView category with how often it is referenced
type CategoryView struct {
	models.Category
	TransactionCount int64 `json:"transaction_count"`
	BudgetCount      int64 `json:"budget_count"`
}

// CategoryCommand create or update payload
type CategoryCommand struct {
	Name string
	Type models.TransactionType
}

func (c CategoryCommand) normalized() (CategoryCommand, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, invalid(CodeInvalidInput, "name is required")
	}
	if !c.Type.Valid() {
		return c, invalid(CodeInvalidType, "type must be INCOME or EXPENSE")
	}
	return c, nil
}

// List returns the user's categories ordered by name; typ filters when set
func (s *CategoryService) List(ctx context.Context, userID string, typ models.TransactionType) ([]CategoryView, error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).
		Select("categories.*, "+
			"(SELECT COUNT(*) FROM transactions WHERE transactions.category_id = categories.id) AS transaction_count, "+
			"(SELECT COUNT(*) FROM budgets WHERE budgets.category_id = categories.id) AS budget_count").
		Where("categories.user_id = ?", userID)
	if typ != "" {
		if !typ.Valid() {
			return nil, invalid(CodeInvalidType, "type must be INCOME or EXPENSE")
		}
		q = q.Where("categories.type = ?", typ)
	}

	list := []CategoryView{}
	if err := q.Order("categories.name ASC").Scan(&list).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return list, nil
}

func (s *CategoryService) Get(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeCategoryNotFound, "category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, userID string, cmd CategoryCommand) (*models.Category, error) {
	cmd, err := cmd.normalized()
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, userID, "", cmd); err != nil {
		return nil, err
	}
	category := models.Category{UserID: userID, Name: cmd.Name, Type: cmd.Type}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// Update renames a category. Changing the type of a category that
// transactions or templates already use is refused, since it would flip
// the meaning of those entries.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, cmd CategoryCommand) (*models.Category, error) {
	cmd, err := cmd.normalized()
	if err != nil {
		return nil, err
	}
	category, err := s.Get(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, userID, category.ID, cmd); err != nil {
		return nil, err
	}
	if cmd.Type != category.Type {
		used, err := s.usage(ctx, category.ID, &models.Transaction{}, &models.RecurringTransaction{})
		if err != nil {
			return nil, err
		}
		if used > 0 {
			return nil, conflict(CodeCategoryInUse, "category type cannot change while transactions use it")
		}
	}

	err = s.db.WithContext(ctx).Model(category).Updates(map[string]interface{}{
		"name": cmd.Name,
		"type": cmd.Type,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.Get(ctx, userID, categoryID)
}

// Delete removes a category no transaction, template or budget references
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	category, err := s.Get(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	used, err := s.usage(ctx, category.ID, &models.Transaction{}, &models.RecurringTransaction{}, &models.Budget{})
	if err != nil {
		return err
	}
	if used > 0 {
		return conflict(CodeCategoryInUse, "category is still used by transactions or budgets")
	}
	if err := s.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", category.ID).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) checkDuplicate(ctx context.Context, userID, exceptID string, cmd CategoryCommand) error {
	q := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("user_id = ? AND name = ? AND type = ?", userID, cmd.Name, cmd.Type)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if count > 0 {
		return conflict(CodeDuplicateCategory, fmt.Sprintf("category %q already exists", cmd.Name))
	}
	return nil
}

func (s *CategoryService) usage(ctx context.Context, categoryID string, tables ...interface{}) (int64, error) {
	var total int64
	for _, model := range tables {
		var count int64
		if err := s.db.WithContext(ctx).Model(model).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return 0, fmt.Errorf("count category usage: %w", err)
		}
		total += count
	}
	return total, nil
}
