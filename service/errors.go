package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error wraps exactly one of them.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Stable error codes returned to clients
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeInvalidType          = "INVALID_TYPE"
	CodeInvalidDate          = "INVALID_DATE"
	CodeInvalidFrequency     = "INVALID_FREQUENCY"
	CodeCategoryTypeMismatch = "CATEGORY_TYPE_MISMATCH"

	CodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	CodeRecurringNotFound   = "RECURRING_NOT_FOUND"
	CodeBudgetNotFound      = "BUDGET_NOT_FOUND"
	CodeGoalNotFound        = "GOAL_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"

	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeAccountInUse      = "ACCOUNT_HAS_TRANSACTIONS"
	CodeCategoryInUse     = "CATEGORY_IN_USE"
	CodeDuplicateCategory = "DUPLICATE_CATEGORY"
	CodeEmailTaken        = "EMAIL_TAKEN"

	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	CodeEmailDisabled      = "EMAIL_DISABLED"
)

// Error a typed business failure with a stable code
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalid(code, message string) error {
	return &Error{Kind: ErrInvalidInput, Code: code, Message: message}
}

func notFound(code, message string) error {
	return &Error{Kind: ErrNotFound, Code: code, Message: message}
}

func conflict(code, message string) error {
	return &Error{Kind: ErrConflict, Code: code, Message: message}
}

// ErrorCode extracts the stable code from err, or "" for storage errors
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
