package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/materials-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against business rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   fieldErr.Field(),
				Message: bv.getErrorMessage(fieldErr),
				Value:   fieldErr.Value(),
				Rule:    fieldErr.Tag(),
			})
		}
	}

	return errors
}

// ValidateRegister validates user signup business rules
func (bv *BusinessValidator) ValidateRegister(req *RegisterRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateMaterialCreate validates material creation business rules
func (bv *BusinessValidator) ValidateMaterialCreate(req *MaterialCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateMaterialUpdate validates material update business rules
func (bv *BusinessValidator) ValidateMaterialUpdate(req *MaterialUpdateRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.Title == nil && req.Description == nil && req.Subject == nil &&
		req.Content == nil && req.Metadata == nil {
		errors = append(errors, ValidationError{
			Field:   "body",
			Message: "at least one field must be provided",
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Material title validation (1-200 characters)
	bv.validate.RegisterValidation("material_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Material description validation (max 2000 characters)
	bv.validate.RegisterValidation("material_description", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= 2000
	})

	// User name validation (2-100 characters)
	bv.validate.RegisterValidation("user_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 2 && len(name) <= 100
	})

	// Password validation (min 6 characters pre-hash, bcrypt cap 72)
	bv.validate.RegisterValidation("user_password", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		return len(pw) >= 6 && len(pw) <= 72
	})

	// Role validation against the known role set
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		switch models.UserRole(fl.Field().String()) {
		case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
			return true
		}
		return false
	})
}

func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "material_title":
		return "must be between 1 and 200 characters"
	case "material_description":
		return "must be at most 2000 characters"
	case "user_name":
		return "must be between 2 and 100 characters"
	case "user_password":
		return "must be between 6 and 72 characters"
	case "user_role":
		return "must be one of: student, teacher, admin"
	default:
		return fmt.Sprintf("failed validation rule %s", err.Tag())
	}
}
