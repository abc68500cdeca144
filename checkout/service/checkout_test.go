package service

import (
	"context"
	"net/http"
	"os"
	"path"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	cartResponse "github.com/leclercq/boutique/cart/pkg/response"
	"github.com/leclercq/boutique/checkout/provider"
	"github.com/leclercq/boutique/internal/constants"
	inErrors "github.com/leclercq/boutique/internal/errors"
	productResponse "github.com/leclercq/boutique/product/pkg/response"
)

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func TestBeginCheckout(t *testing.T) {
	c := testContext()
	env := setup(t)(c)
	defer teardown(t)(env)

	productA := seedProduct(t, c, env.queries, "the vert", "10.00", 20)
	productB := seedProduct(t, c, env.queries, "miel de lavande", "5.00", 10)
	sessionID := uuid.NewString()

	_, err := env.carts.AddItem(c, sessionID, productA.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}
	_, err = env.carts.AddItem(c, sessionID, productB.ID, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}

	checkoutUrl, err := env.checkouts.BeginCheckout(c, sessionID)
	if err != nil {
		t.Fatalf("failed beginning checkout with error: %s", err)
	}
	assert.Equal(t, "https://checkout.example/pay/cs_test_1", checkoutUrl,
		"checkout should redirect to the provider page")

	request := env.providerStub.lastRequest(t)
	assert.Equal(t, "payment", request.Mode, "session mode should be payment")
	assert.Len(t, request.LineItems, 2, "session should carry one line item per cart line")
	unitAmounts := map[string]int64{}
	for _, item := range request.LineItems {
		unitAmounts[item.PriceData.ProductData.Name] = item.PriceData.UnitAmount
	}
	assert.Equal(t, int64(1000), unitAmounts["the vert"], "unit amount should be in cents")
	assert.Equal(t, int64(500), unitAmounts["miel de lavande"], "unit amount should be in cents")

	token := path.Base(request.SuccessUrl)
	order, err := env.orders.FindOrderByToken(c, token)
	if err != nil {
		t.Fatalf("failed finding order by token with error: %s", err)
	}
	assert.Equal(t, constants.OrderStatePendingPayment, order.State,
		"order should await payment")
	assert.Len(t, order.OrderItems, 2, "order should snapshot every cart line")

	cart, err := env.carts.ListWithTotals(c, sessionID)
	if err != nil {
		t.Fatalf("failed listing cart with error: %s", err)
	}
	assert.Empty(t, cart.Lines, "cart should be empty after checkout")
}

func TestBeginCheckoutProviderFailure(t *testing.T) {
	c := testContext()
	env := setup(t)(c)
	defer teardown(t)(env)

	product := seedProduct(t, c, env.queries, "the vert", "10.00", 20)
	sessionID := uuid.NewString()

	_, err := env.carts.AddItem(c, sessionID, product.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}

	env.providerStub.failWith(http.StatusInternalServerError)
	_, err = env.checkouts.BeginCheckout(c, sessionID)
	assert.ErrorIs(t, err, inErrors.ErrCheckoutProvider,
		"a provider failure should surface as ErrCheckoutProvider")

	cart, err := env.carts.ListWithTotals(c, sessionID)
	if err != nil {
		t.Fatalf("failed listing cart with error: %s", err)
	}
	line, ok := cart.Lines[product.ID.String()]
	assert.True(t, ok, "cart should keep its lines when the provider fails")
	assert.Truef(t, decimal.NewFromInt(2).Equal(line.Quantity),
		"cart quantity should be untouched: got %s", line.Quantity)

	// the provider going away entirely is the same contract
	env.providerStub.server.Close()
	_, err = env.checkouts.BeginCheckout(c, sessionID)
	assert.ErrorIs(t, err, inErrors.ErrCheckoutProvider,
		"a transport failure should surface as ErrCheckoutProvider")
}

func TestBeginCheckoutEmptyCart(t *testing.T) {
	c := testContext()
	env := setup(t)(c)
	defer teardown(t)(env)

	_, err := env.checkouts.BeginCheckout(c, uuid.NewString())
	assert.ErrorIs(t, err, inErrors.ErrCartEmpty, "an empty cart should not reach the provider")
}

func TestConfirmPayment(t *testing.T) {
	c := testContext()
	env := setup(t)(c)
	defer teardown(t)(env)

	product := seedProduct(t, c, env.queries, "savon de marseille", "10.00", 20)
	sessionID := uuid.NewString()

	_, err := env.carts.AddItem(c, sessionID, product.ID, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}
	_, err = env.checkouts.BeginCheckout(c, sessionID)
	if err != nil {
		t.Fatalf("failed beginning checkout with error: %s", err)
	}
	token := path.Base(env.providerStub.lastRequest(t).SuccessUrl)

	order, err := env.checkouts.ConfirmPayment(c, token)
	if err != nil {
		t.Fatalf("failed confirming payment with error: %s", err)
	}
	assert.Equal(t, constants.OrderStateValidated, order.State, "order should be validated")

	// confirming the same token again is harmless
	order, err = env.checkouts.ConfirmPayment(c, token)
	if err != nil {
		t.Fatalf("failed confirming payment twice with error: %s", err)
	}
	assert.Equal(t, constants.OrderStateValidated, order.State, "order should stay validated")
}

func TestConfirmPaymentUnknownToken(t *testing.T) {
	c := testContext()
	env := setup(t)(c)
	defer teardown(t)(env)

	token, err := NewOrderToken()
	if err != nil {
		t.Fatalf("failed minting order token with error: %s", err)
	}
	_, err = env.checkouts.ConfirmPayment(c, token)
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound, "an unknown token should not validate anything")
}

func TestCancelPayment(t *testing.T) {
	c := testContext()
	env := setup(t)(c)
	defer teardown(t)(env)

	product := seedProduct(t, c, env.queries, "tablier raye", "25.00", 20)
	sessionID := uuid.NewString()

	_, err := env.carts.AddItem(c, sessionID, product.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("failed adding item with error: %s", err)
	}
	_, err = env.checkouts.BeginCheckout(c, sessionID)
	if err != nil {
		t.Fatalf("failed beginning checkout with error: %s", err)
	}
	orderId := uuid.MustParse(path.Base(env.providerStub.lastRequest(t).CancelUrl))

	err = env.checkouts.CancelPayment(c, sessionID, orderId)
	if err != nil {
		t.Fatalf("failed cancelling payment with error: %s", err)
	}

	cart, err := env.carts.ListWithTotals(c, sessionID)
	if err != nil {
		t.Fatalf("failed listing cart with error: %s", err)
	}
	line, ok := cart.Lines[product.ID.String()]
	assert.True(t, ok, "cancelled order should be back in the cart")
	assert.Truef(t, decimal.NewFromInt(2).Equal(line.Quantity),
		"replayed quantity should match: got %s", line.Quantity)

	_, err = env.orders.FindOrderById(c, orderId)
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound, "cancelled order should be deleted")
}

func TestOrderItemsStableOrder(t *testing.T) {
	c := testContext()
	env := setup(t)(c)
	defer teardown(t)(env)

	sessionID := uuid.NewString()
	for i, name := range []string{"the vert", "miel de lavande", "savon de marseille", "tablier raye"} {
		product := seedProduct(t, c, env.queries, name, "10.00", 20)
		_, err := env.carts.AddItem(c, sessionID, product.ID, decimal.NewFromInt(int64(i+1)))
		if err != nil {
			t.Fatalf("failed adding item with error: %s", err)
		}
	}

	_, err := env.checkouts.BeginCheckout(c, sessionID)
	if err != nil {
		t.Fatalf("failed beginning checkout with error: %s", err)
	}
	token := path.Base(env.providerStub.lastRequest(t).SuccessUrl)

	// items are batch-inserted in one transaction, so created_at alone
	// cannot order them
	first, err := env.orders.FindOrderByToken(c, token)
	if err != nil {
		t.Fatalf("failed finding order by token with error: %s", err)
	}
	second, err := env.orders.FindOrderByToken(c, token)
	if err != nil {
		t.Fatalf("failed finding order by token with error: %s", err)
	}

	assert.Len(t, first.OrderItems, 4, "order should snapshot every cart line")
	assert.Equal(t, first.OrderItems, second.OrderItems,
		"repeated reads should return items in the same order")
	for i := 1; i < len(first.OrderItems); i++ {
		assert.Less(t, first.OrderItems[i-1].ID.String(), first.OrderItems[i].ID.String(),
			"items should come back sorted by id")
	}
}

func TestProviderLineItems(t *testing.T) {
	cart := cartResponse.CartWithProducts{
		Lines: map[string]cartResponse.LineWithProduct{
			"a": {
				Product: productResponse.Product{
					Name:     "the vert",
					Price:    decimal.RequireFromString("10.99"),
					ImageUrl: "https://img.example/the-vert.jpg",
				},
				Quantity: decimal.NewFromInt(2),
			},
			"b": {
				Product: productResponse.Product{
					Name:  "comte 18 mois",
					Price: decimal.RequireFromString("36.00"),
				},
				Quantity: decimal.RequireFromString("0.250"),
			},
		},
	}

	lineItems := providerLineItems(cart, "eur")

	assert.Len(t, lineItems, 2, "every line should map to a line item")
	byName := map[string]provider.LineItem{}
	for _, item := range lineItems {
		byName[item.PriceData.ProductData.Name] = item
	}

	theVert := byName["the vert"]
	assert.Equal(t, int64(1099), theVert.PriceData.UnitAmount, "unit amount should be in cents")
	assert.Equal(t, "eur", theVert.PriceData.Currency, "currency should pass through")
	assert.Equal(t, []string{"https://img.example/the-vert.jpg"}, theVert.PriceData.ProductData.Images,
		"image should pass through")

	comte := byName["comte 18 mois"]
	assert.Equal(t, int64(3600), comte.PriceData.UnitAmount, "unit amount should be in cents")
	assert.Empty(t, comte.PriceData.ProductData.Images, "missing image should stay empty")
	assert.Truef(t, decimal.RequireFromString("0.250").Equal(comte.Quantity),
		"fractional quantity should pass through: got %s", comte.Quantity)
}
