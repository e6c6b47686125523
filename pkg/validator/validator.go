package validator

import (
	validators "github.com/go-playground/validator/v10"
)

// Validator interface
type Validator interface {
	ValidateStruct(inf interface{}) error
}

type validator struct {
	validator *validators.Validate
}

// New Validator func - registers the feed-query rule on top of the
// standard tag set
func New() Validator {
	v := validators.New()
	_ = v.RegisterValidation("timeframe", validTimeframe)
	return &validator{
		validator: v,
	}
}

// ValidateStruct func
func (v *validator) ValidateStruct(inf interface{}) error {

	return v.validator.Struct(inf)
}

// validTimeframe accepts the named rolling windows a timeframe feed can
// review
func validTimeframe(fl validators.FieldLevel) bool {
	switch fl.Field().String() {
	case "TODAY", "YESTERDAY", "LAST_7_DAYS", "LAST_30_DAYS", "OLDER":
		return true
	default:
		return false
	}
}
