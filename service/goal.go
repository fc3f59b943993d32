package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"celengan/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalService savings goals and the transfers that fund them
type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

// GoalView goal with its progress percentage
type GoalView struct {
	models.Goal
	Progress decimal.Decimal `json:"progress"`
}

// GoalOverview goals page payload
type GoalOverview struct {
	Goals []GoalView            `json:"goals"`
	Tips  []models.FinancialTip `json:"tips"`
}

// GoalCommand create or replace the editable fields of a goal
type GoalCommand struct {
	Name         string
	TargetAmount decimal.Decimal
	TargetDate   *time.Time
}

func (c GoalCommand) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid(CodeInvalidInput, "name is required")
	}
	if err := checkAmount(c.TargetAmount, "target amount"); err != nil {
		return err
	}
	return nil
}

// AddFundsCommand transfer from an account into a goal
type AddFundsCommand struct {
	AccountID string
	Amount    decimal.Decimal
}

// FundingResult entities touched by AddFunds
type FundingResult struct {
	Goal         models.Goal             `json:"goal"`
	Account      models.Account          `json:"account"`
	Contribution models.GoalContribution `json:"contribution"`
}

// List returns the user's goals, nearest target date first, with tips
func (s *GoalService) List(ctx context.Context, userID string) (*GoalOverview, error) {
	var goals []models.Goal
	// goals without a target date sort last on both dialects
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("CASE WHEN target_date IS NULL THEN 1 ELSE 0 END, target_date ASC, created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	overview := &GoalOverview{Goals: make([]GoalView, 0, len(goals)), Tips: []models.FinancialTip{}}
	for i := range goals {
		overview.Goals = append(overview.Goals, GoalView{Goal: goals[i], Progress: goals[i].Progress()})
	}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&overview.Tips).Error; err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	return overview, nil
}

// Create stores a new goal with nothing saved yet
func (s *GoalService) Create(ctx context.Context, userID string, cmd GoalCommand) (*models.Goal, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	goal := models.Goal{
		UserID:        userID,
		Name:          strings.TrimSpace(cmd.Name),
		TargetAmount:  cmd.TargetAmount,
		CurrentAmount: decimal.Zero,
		TargetDate:    datePtr(cmd.TargetDate),
	}
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return &goal, nil
}

// Update changes name, target amount and target date. The saved amount
// only moves through AddFunds.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, cmd GoalCommand) (*models.Goal, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	goal, err := s.find(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(goal).Updates(map[string]interface{}{
		"name":          strings.TrimSpace(cmd.Name),
		"target_amount": cmd.TargetAmount,
		"target_date":   datePtr(cmd.TargetDate),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return s.find(ctx, userID, goalID)
}

// Delete removes a goal. Money already moved into it is not returned;
// its contribution rows stay so the source accounts still reconcile.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	goal, err := s.find(ctx, userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Goal{}, "id = ?", goal.ID).Error; err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// AddFunds moves amount from one of the user's accounts into the goal.
// The debit, the goal increment and the contribution row commit together.
func (s *GoalService) AddFunds(ctx context.Context, userID, goalID string, cmd AddFundsCommand) (*FundingResult, error) {
	if err := checkAmount(cmd.Amount, "amount"); err != nil {
		return nil, err
	}
	if cmd.AccountID == "" {
		return nil, invalid(CodeInvalidInput, "account is required")
	}

	var result FundingResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", goalID, userID).
			First(&result.Goal).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(CodeGoalNotFound, "goal not found")
		}
		if err != nil {
			return fmt.Errorf("load goal: %w", err)
		}

		account, err := lockAccount(tx, userID, cmd.AccountID)
		if err != nil {
			return err
		}
		if account.Balance.LessThan(cmd.Amount) {
			return conflict(CodeInsufficientFunds, "insufficient account balance")
		}
		if err := withdraw(tx, account.ID, cmd.Amount); err != nil {
			return err
		}

		res := tx.Model(&models.Goal{}).
			Where("id = ?", result.Goal.ID).
			Update("current_amount", gorm.Expr("ROUND(current_amount + CAST(? AS DECIMAL(20,2)), 2)", cmd.Amount))
		if res.Error != nil {
			return fmt.Errorf("update goal: %w", res.Error)
		}

		result.Contribution = models.GoalContribution{
			GoalID:    result.Goal.ID,
			AccountID: account.ID,
			Amount:    cmd.Amount,
		}
		if err := tx.Create(&result.Contribution).Error; err != nil {
			return fmt.Errorf("insert contribution: %w", err)
		}

		if err := tx.Where("id = ?", account.ID).First(&result.Account).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", result.Goal.ID).First(&result.Goal).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *GoalService) find(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeGoalNotFound, "goal not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load goal: %w", err)
	}
	return &goal, nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := calendarDate(*t)
	return &d
}
