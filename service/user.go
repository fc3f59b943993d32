package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"celengan/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService registration and credential checks
type UserService struct {
	db   *gorm.DB
	cost int
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, cost: bcrypt.DefaultCost}
}

// RegisterCommand sign-up payload
type RegisterCommand struct {
	Name     string
	Email    string
	Password string
}

// Register creates the user together with the default accounts and
// categories. Nothing is stored if any of it fails.
func (s *UserService) Register(ctx context.Context, cmd RegisterCommand) (*models.User, error) {
	email := normalizeEmail(cmd.Email)
	name := strings.TrimSpace(cmd.Name)
	if name == "" || email == "" {
		return nil, invalid(CodeInvalidInput, "name and email are required")
	}
	if len(cmd.Password) < 6 {
		return nil, invalid(CodeInvalidInput, "password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Name: name, Email: email, PasswordHash: string(hash)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return conflict(CodeEmailTaken, "email is already registered")
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		accounts := models.DefaultAccounts(user.ID)
		if err := tx.Create(&accounts).Error; err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
		categories := models.DefaultCategories(user.ID)
		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks email and password. Unknown email and wrong password
// fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, badCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, badCredentials()
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeUserNotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid(CodeInvalidInput, "password must be at least 6 characters")
	}
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return badCredentials()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func badCredentials() error {
	return &Error{Kind: ErrInvalidCredentials, Code: CodeInvalidCredentials, Message: "invalid email or password"}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
