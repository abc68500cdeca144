package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	inErrors "github.com/leclercq/boutique/internal/errors"
	orderResponse "github.com/leclercq/boutique/order/pkg/response"
	productResponse "github.com/leclercq/boutique/product/pkg/response"
)

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func newProduct(name string, price string, vatRate int64) productResponse.Product {
	return productResponse.Product{
		ID:      uuid.New(),
		Name:    name,
		Price:   decimal.RequireFromString(price),
		VatRate: decimal.NewFromInt(vatRate),
	}
}

func assertDecimalEqual(t *testing.T, expected string, actual decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(
		t,
		decimal.RequireFromString(expected).Equal(actual),
		"%s: expected %s got %s",
		msg,
		expected,
		actual.String(),
	)
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	c := testContext()
	redisClient, redisContainer, catalog, cartService := setup(t)(c)
	defer teardown(t)(redisClient, redisContainer)

	product := newProduct("savon de marseille", "10.00", 20)
	catalog.add(product)
	sessionID := uuid.NewString()

	_, err := cartService.AddItem(c, sessionID, product.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}
	cart, err := cartService.AddItem(c, sessionID, product.ID, decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}

	line, ok := cart.Lines[product.ID.String()]
	assert.True(t, ok, "cart should have a line for the product")
	assertDecimalEqual(t, "5", line.Quantity, "line quantity")

	hasLine, err := cartService.HasLine(c, sessionID, product.ID)
	if err != nil {
		t.Fatalf("failed checking line with error: %s", err)
	}
	assert.True(t, hasLine, "cart should report the line")
}

func TestAddItemUnknownProduct(t *testing.T) {
	c := testContext()
	redisClient, redisContainer, _, cartService := setup(t)(c)
	defer teardown(t)(redisClient, redisContainer)

	_, err := cartService.AddItem(c, uuid.NewString(), uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound, "adding an unknown product should fail")
}

func TestAddItemFractionalQuantity(t *testing.T) {
	c := testContext()
	redisClient, redisContainer, catalog, cartService := setup(t)(c)
	defer teardown(t)(redisClient, redisContainer)

	product := newProduct("comte 18 mois", "36.00", 5)
	catalog.add(product)
	sessionID := uuid.NewString()

	cart, err := cartService.AddItem(
		c,
		sessionID,
		product.ID,
		decimal.RequireFromString("0.250"),
	)
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}
	assertDecimalEqual(t, "0.250", cart.Lines[product.ID.String()].Quantity, "line quantity")
	assertDecimalEqual(t, "9.00", cart.Total.InclTax, "cart total incl tax")
}

func TestListWithTotals(t *testing.T) {
	c := testContext()
	redisClient, redisContainer, catalog, cartService := setup(t)(c)
	defer teardown(t)(redisClient, redisContainer)

	productA := newProduct("the vert", "10.00", 20)
	productB := newProduct("miel de lavande", "5.00", 10)
	catalog.add(productA)
	catalog.add(productB)
	sessionID := uuid.NewString()

	_, err := cartService.AddItem(c, sessionID, productA.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}
	_, err = cartService.AddItem(c, sessionID, productB.ID, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}

	cart, err := cartService.ListWithTotals(c, sessionID)
	if err != nil {
		t.Fatalf("failed listing cart with error: %s", err)
	}

	assert.Len(t, cart.Lines, 2, "cart should have two lines")
	assertDecimalEqual(t, "3", cart.Total.Quantity, "total quantity")
	assertDecimalEqual(t, "21.22", cart.Total.ExclTax, "total excl tax")
	assertDecimalEqual(t, "3.78", cart.Total.Tax, "total tax")
	assertDecimalEqual(t, "25.00", cart.Total.InclTax, "total incl tax")

	lineA := cart.Lines[productA.ID.String()]
	assertDecimalEqual(t, "20.00", lineA.InclTax, "line A incl tax")
	assertDecimalEqual(t, "16.67", lineA.ExclTax, "line A excl tax")
	assertDecimalEqual(t, "3.33", lineA.Tax, "line A tax")
}

func TestListWithTotalsStaleLine(t *testing.T) {
	c := testContext()
	redisClient, redisContainer, catalog, cartService := setup(t)(c)
	defer teardown(t)(redisClient, redisContainer)

	product := newProduct("tablier raye", "25.00", 20)
	catalog.add(product)
	sessionID := uuid.NewString()

	_, err := cartService.AddItem(c, sessionID, product.ID, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}

	catalog.remove(product.ID)
	_, err = cartService.ListWithTotals(c, sessionID)
	assert.ErrorIs(t, err, inErrors.ErrStaleCartLine, "a removed product should fail the read")
}

func TestRemoveItem(t *testing.T) {
	c := testContext()
	redisClient, redisContainer, catalog, cartService := setup(t)(c)
	defer teardown(t)(redisClient, redisContainer)

	productA := newProduct("the vert", "10.00", 20)
	productB := newProduct("miel de lavande", "5.00", 10)
	catalog.add(productA)
	catalog.add(productB)
	sessionID := uuid.NewString()

	_, err := cartService.AddItem(c, sessionID, productA.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}
	_, err = cartService.AddItem(c, sessionID, productB.ID, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}

	cart, err := cartService.RemoveItem(c, sessionID, productA.ID)
	if err != nil {
		t.Fatalf("failed removing item with error: %s", err)
	}
	assert.Len(t, cart.Lines, 1, "cart should have one line left")
	assertDecimalEqual(t, "5.00", cart.Total.InclTax, "total incl tax")

	// removing a product that is not in the cart is a no-op
	cart, err = cartService.RemoveItem(c, sessionID, uuid.New())
	if err != nil {
		t.Fatalf("failed removing absent item with error: %s", err)
	}
	assert.Len(t, cart.Lines, 1, "cart should be unchanged")
}

func TestClear(t *testing.T) {
	c := testContext()
	redisClient, redisContainer, catalog, cartService := setup(t)(c)
	defer teardown(t)(redisClient, redisContainer)

	product := newProduct("savon de marseille", "10.00", 20)
	catalog.add(product)
	sessionID := uuid.NewString()

	_, err := cartService.AddItem(c, sessionID, product.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}

	err = cartService.Clear(c, sessionID)
	if err != nil {
		t.Fatalf("failed clearing cart with error: %s", err)
	}

	cart, err := cartService.ListWithTotals(c, sessionID)
	if err != nil {
		t.Fatalf("failed listing cart with error: %s", err)
	}
	assert.Empty(t, cart.Lines, "cart should have no lines")
	assertDecimalEqual(t, "0", cart.Total.InclTax, "total incl tax")
}

func TestReplay(t *testing.T) {
	c := testContext()
	redisClient, redisContainer, catalog, cartService := setup(t)(c)
	defer teardown(t)(redisClient, redisContainer)

	productA := newProduct("the vert", "10.00", 20)
	productB := newProduct("miel de lavande", "5.00", 10)
	catalog.add(productA)
	catalog.add(productB)
	sessionID := uuid.NewString()

	err := cartService.Replay(c, sessionID, []orderResponse.OrderItem{
		{ProductID: productA.ID, Quantity: decimal.NewFromInt(2)},
		{ProductID: productB.ID, Quantity: decimal.NewFromInt(1)},
	})
	if err != nil {
		t.Fatalf("failed replaying order items with error: %s", err)
	}

	cart, err := cartService.ListWithTotals(c, sessionID)
	if err != nil {
		t.Fatalf("failed listing cart with error: %s", err)
	}
	assert.Len(t, cart.Lines, 2, "cart should have the replayed lines")
	assertDecimalEqual(t, "25.00", cart.Total.InclTax, "total incl tax")
}
