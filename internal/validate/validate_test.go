package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type quantityHolder struct {
	Quantity string `validate:"required,quantity"`
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		valid    bool
	}{
		{name: "integer quantity is valid", quantity: "1", valid: true},
		{name: "fractional quantity is valid", quantity: "0.250", valid: true},
		{name: "zero is invalid", quantity: "0", valid: false},
		{name: "negative quantity is invalid", quantity: "-1", valid: false},
		{name: "non numeric quantity is invalid", quantity: "deux", valid: false},
		{name: "empty quantity is invalid", quantity: "", valid: false},
	}

	validate := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(quantityHolder{Quantity: tt.quantity})
			if tt.valid {
				assert.NoError(t, err, "quantity should be valid")
			} else {
				assert.Error(t, err, "quantity should be invalid")
			}
		})
	}
}
