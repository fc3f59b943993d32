package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"celengan/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 30 * time.Minute

// ResetMailer delivers reset links
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

// PasswordResetService forgot-password flow: a single-use emailed token
// that replaces the password without the old one.
type PasswordResetService struct {
	db      *gorm.DB
	mailer  ResetMailer
	baseURL string
	now     func() time.Time
	cost    int
}

// NewPasswordResetService links in mails point at baseURL
func NewPasswordResetService(db *gorm.DB, mailer ResetMailer, baseURL string) *PasswordResetService {
	return &PasswordResetService{
		db:      db,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
	}
}

// RequestReset issues a new token for the account behind email and mails
// it. Unknown addresses succeed silently so the endpoint does not reveal
// who is registered.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	token, hash, err := models.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// one live token per user
		if err := tx.Model(&models.PasswordReset{}).
			Where("user_id = ? AND used = ?", user.ID, false).
			Update("used", true).Error; err != nil {
			return fmt.Errorf("retire tokens: %w", err)
		}
		return tx.Create(&models.PasswordReset{
			UserID:    user.ID,
			TokenHash: hash,
			ExpiresAt: now.Add(resetTokenTTL),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, link); err != nil {
		if errors.Is(err, ErrEmailDisabled) {
			return conflict(CodeEmailDisabled, "password reset by email is not available")
		}
		return err
	}
	return nil
}

// ResetPassword sets a new password with a token from RequestReset. The
// token and any other outstanding token of the user stop working.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid(CodeInvalidInput, "password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		err := tx.Where("token_hash = ?", models.HashResetToken(token)).First(&reset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid(CodeInvalidResetToken, "reset link is invalid")
		}
		if err != nil {
			return fmt.Errorf("load reset token: %w", err)
		}
		if !reset.IsValid(s.now()) {
			return invalid(CodeInvalidResetToken, "reset link has expired or was already used")
		}

		// conditional so two concurrent resets cannot both consume the token
		res := tx.Model(&models.PasswordReset{}).
			Where("id = ? AND used = ?", reset.ID, false).
			Update("used", true)
		if res.Error != nil {
			return fmt.Errorf("consume token: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return invalid(CodeInvalidResetToken, "reset link has expired or was already used")
		}

		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", string(hash)).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return tx.Model(&models.PasswordReset{}).
			Where("user_id = ? AND used = ?", reset.UserID, false).
			Update("used", true).Error
	})
}
