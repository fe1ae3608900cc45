package validator

// Validator bundles the validation layers exposed to services and handlers.
type Validator struct {
	business *BusinessValidator
}

// New creates a fully configured validator.
func New() *Validator {
	return &Validator{
		business: NewBusinessValidator(),
	}
}

// GetBusinessValidator returns the business rule validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
