package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	cartService "github.com/leclercq/boutique/cart/service"
	cartResponse "github.com/leclercq/boutique/cart/pkg/response"
	"github.com/leclercq/boutique/checkout/otel"
	"github.com/leclercq/boutique/checkout/provider"
	"github.com/leclercq/boutique/internal/config"
	inErrors "github.com/leclercq/boutique/internal/errors"
	"github.com/leclercq/boutique/internal/log"
	inOtel "github.com/leclercq/boutique/internal/otel"
	orderService "github.com/leclercq/boutique/order/service"
	orderRequest "github.com/leclercq/boutique/order/pkg/request"
	orderResponse "github.com/leclercq/boutique/order/pkg/response"
)

var minorUnits = decimal.NewFromInt(100)

// CheckoutService orchestrates the payment flow: cart to order, order to
// hosted checkout session, and the order state reconciliation when the
// provider calls back.
type CheckoutService struct {
	carts    cartService.CartService
	orders   *orderService.OrderService
	provider *provider.Client
	baseUrl  string
	currency string
}

func NewCheckoutService(
	carts cartService.CartService,
	orders *orderService.OrderService,
	providerClient *provider.Client,
	appConfig config.Application,
	checkoutConfig config.Checkout,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		provider: providerClient,
		baseUrl:  appConfig.BaseUrl,
		currency: checkoutConfig.Currency,
	}
}

// BeginCheckout converts the session's cart into a pending order, creates a
// hosted checkout session for it, clears the cart and returns the provider's
// redirect URL. The order is persisted before the provider call so its token
// resolves whenever the callback arrives.
func (s CheckoutService) BeginCheckout(
	c context.Context,
	sessionID string,
) (string, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService BeginCheckout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService BeginCheckout").
		Str(log.KeySessionID, sessionID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "listing cart").Logger()
	logger.Trace().Msg("listing cart")
	c = logger.WithContext(c)
	cart, err := s.carts.ListWithTotals(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed listing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	if len(cart.Lines) == 0 {
		err = fmt.Errorf("failed beginning checkout with error=%w", inErrors.ErrCartEmpty)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Any(log.KeyTotal, cart.Total).Msg("listed cart")

	logger = logger.With().Str(log.KeyProcess, "minting order token").Logger()
	logger.Trace().Msg("minting order token")
	token, err := NewOrderToken()
	if err != nil {
		err = fmt.Errorf("failed minting order token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("minted order token")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Trace().Msg("creating order")
	items := make([]orderRequest.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, orderRequest.OrderItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	c = logger.WithContext(c)
	order, err := s.orders.CreateOrder(c, orderRequest.CreateOrder{
		Token:      token,
		OrderItems: items,
	})
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("created order")

	logger = logger.With().Str(log.KeyProcess, "creating checkout session").Logger()
	logger.Trace().Msg("creating checkout session")
	c = logger.WithContext(c)
	session, err := s.provider.CreateCheckoutSession(c, provider.CheckoutSessionParams{
		Mode:       "payment",
		LineItems:  providerLineItems(cart, s.currency),
		SuccessUrl: fmt.Sprintf("%s/paiement/succes/%s", s.baseUrl, order.Token),
		CancelUrl:  fmt.Sprintf("%s/paiement/echec/%s", s.baseUrl, order.ID.String()),
	})
	if err != nil {
		err = fmt.Errorf("failed creating checkout session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger = logger.With().Str(log.KeyCheckoutURL, session.Url).Logger()
	logger.Info().Msg("created checkout session")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Trace().Msg("clearing cart")
	c = logger.WithContext(c)
	err = s.carts.Clear(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("cleared cart")

	return session.Url, nil
}

// ConfirmPayment transitions the order behind the token to the validated
// state. An unknown token yields ErrOrderNotFound; confirming twice is
// harmless.
func (s CheckoutService) ConfirmPayment(
	c context.Context,
	token string,
) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService ConfirmPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService ConfirmPayment").
		Str(log.KeyProcess, "validating order").
		Logger()

	logger.Trace().Msg("validating order")
	c = logger.WithContext(c)
	order, err := s.orders.ValidateOrder(c, token)
	if err != nil {
		err = fmt.Errorf("failed validating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger.Info().Str(log.KeyOrderID, order.ID.String()).Msg("validated order")

	return order, nil
}

// CancelPayment replays the order's item snapshots back into the session's
// cart, then deletes the order and its items permanently.
func (s CheckoutService) CancelPayment(
	c context.Context,
	sessionID string,
	orderId uuid.UUID,
) error {
	c, span := otel.Tracer.Start(c, "CheckoutService CancelPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService CancelPayment").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyOrderID, orderId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	logger.Trace().Msg("finding order")
	c = logger.WithContext(c)
	order, err := s.orders.FindOrderById(c, orderId)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("found order")

	logger = logger.With().Str(log.KeyProcess, "replaying order into cart").Logger()
	logger.Trace().Msg("replaying order into cart")
	c = logger.WithContext(c)
	err = s.carts.Replay(c, sessionID, order.OrderItems)
	if err != nil {
		err = fmt.Errorf("failed replaying order into cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("replayed order into cart")

	logger = logger.With().Str(log.KeyProcess, "deleting order").Logger()
	logger.Trace().Msg("deleting order")
	c = logger.WithContext(c)
	err = s.orders.DeleteOrder(c, orderId)
	if err != nil {
		err = fmt.Errorf("failed deleting order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted order")

	return nil
}

// providerLineItems maps the joined cart into the provider's line item
// descriptors. Unit amounts are the VAT-inclusive catalog prices in minor
// units.
func providerLineItems(
	cart cartResponse.CartWithProducts,
	currency string,
) []provider.LineItem {
	lineItems := make([]provider.LineItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		item := provider.LineItem{
			Quantity: line.Quantity,
			PriceData: provider.PriceData{
				Currency:   currency,
				UnitAmount: line.Product.Price.Mul(minorUnits).Round(0).IntPart(),
				ProductData: provider.ProductData{
					Name: line.Product.Name,
				},
			},
		}
		if line.Product.ImageUrl != "" {
			item.PriceData.ProductData.Images = []string{line.Product.ImageUrl}
		}
		lineItems = append(lineItems, item)
	}
	return lineItems
}
