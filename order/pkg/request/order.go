package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrder struct {
	Token      string      `validate:"required,len=64,hexadecimal" json:"token"`
	OrderItems []OrderItem `validate:"required,min=1,dive"         json:"order_items"`
}

type OrderItem struct {
	ProductID uuid.UUID       `validate:"required" json:"product_id"`
	Quantity  decimal.Decimal `validate:"required" json:"quantity"`
}
