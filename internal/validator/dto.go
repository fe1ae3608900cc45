package validator

import "github.com/SAP-F-2025/materials-service/internal/models"

// RegisterRequest represents the request structure for user signup
type RegisterRequest struct {
	Name     string          `json:"name" validate:"required,user_name"`
	Email    string          `json:"email" validate:"required,email,min=6,max=100"`
	Password string          `json:"password" validate:"required,user_password"`
	Role     models.UserRole `json:"role" validate:"omitempty,user_role"`
}

// LoginRequest represents the request structure for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest starts the password-reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the password-reset flow
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,user_password"`
}

// MaterialCreateRequest represents the request structure for creating materials
type MaterialCreateRequest struct {
	Title       string                 `json:"title" validate:"required,material_title"`
	Description *string                `json:"description" validate:"omitempty,material_description"`
	Subject     *string                `json:"subject" validate:"omitempty,max=100"`
	Content     *string                `json:"content"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// MaterialUpdateRequest represents the request structure for partial updates
type MaterialUpdateRequest struct {
	Title       *string                `json:"title" validate:"omitempty,material_title"`
	Description *string                `json:"description" validate:"omitempty,material_description"`
	Subject     *string                `json:"subject" validate:"omitempty,max=100"`
	Content     *string                `json:"content"`
	Metadata    map[string]interface{} `json:"metadata"`
}
