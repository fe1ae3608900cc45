package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/materials-service/internal/validator"
)

// Sentinel errors mapped to HTTP statuses by the handler layer.
var (
	// Material domain
	ErrMaterialNotFound = errors.New("material not found")

	// User / auth domain
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotActive    = errors.New("account is not active")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")

	// Upload domain
	ErrNoFileUploaded  = errors.New("no file uploaded")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")

	// Generic
	ErrValidationFailed        = errors.New("validation failed")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrBadRequest              = errors.New("bad request")
	ErrInternal                = errors.New("internal error")
)

// ValidationErrors re-exports the validator's structured result so handlers
// can errors.As against the services package alone.
type ValidationErrors = validator.ValidationErrors

// NewValidationError builds a single structured validation error.
func NewValidationError(field, message string, value interface{}) *validator.ValidationError {
	return &validator.ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// UploadError pairs an upload sentinel with the user-facing message so the
// handler layer can surface the exact limit that was violated.
type UploadError struct {
	Kind    error
	Message string
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() error { return e.Kind }

func newUploadError(kind error, message string) *UploadError {
	return &UploadError{Kind: kind, Message: message}
}

// PermissionError carries the denied resource/action context.
type PermissionError struct {
	UserID   uint
	TargetID uint
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.TargetID, e.Reason)
}

func NewPermissionError(userID, targetID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		TargetID: targetID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// BusinessRuleError represents a violated domain rule.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}
