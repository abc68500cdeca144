package validate

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Quantity reports whether a field holds a decimal string strictly greater
// than zero. Registered under the "quantity" tag.
func Quantity(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// New returns a validator with the custom rules of this module registered.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("quantity", Quantity)
	return validate
}
