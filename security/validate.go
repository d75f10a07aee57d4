package security

import (
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the custom "phone" rule
// registered. Request DTOs declare their constraints as binding tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("phone", validPhone); err != nil {
		panic(err)
	}
	return v
}

// validPhone accepts digits, spaces, parentheses, plus and dashes,
// and requires at least seven digits overall.
func validPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7
}
