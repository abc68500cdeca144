package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/leclercq/boutique/order/pkg/request"
)

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func TestCreateOrderInvalidRequest(t *testing.T) {
	item := request.OrderItem{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)}
	tests := []struct {
		name  string
		param request.CreateOrder
	}{
		{
			name:  "missing token is invalid",
			param: request.CreateOrder{OrderItems: []request.OrderItem{item}},
		},
		{
			name: "short token is invalid",
			param: request.CreateOrder{
				Token:      "abc123",
				OrderItems: []request.OrderItem{item},
			},
		},
		{
			name: "non hexadecimal token is invalid",
			param: request.CreateOrder{
				Token:      strings.Repeat("z", 64),
				OrderItems: []request.OrderItem{item},
			},
		},
		{
			name:  "empty order items are invalid",
			param: request.CreateOrder{Token: strings.Repeat("a", 64)},
		},
	}

	c := testContext()
	// validation rejects the request before any database access
	orderService := NewOrderService(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orderService.CreateOrder(c, tt.param)
			assert.Error(t, err, "request should be rejected")
		})
	}
}
