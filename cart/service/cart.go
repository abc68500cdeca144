package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/leclercq/boutique/cart/otel"
	"github.com/leclercq/boutique/cart/pkg/response"
	inErrors "github.com/leclercq/boutique/internal/errors"
	"github.com/leclercq/boutique/internal/log"
	inOtel "github.com/leclercq/boutique/internal/otel"
	orderResponse "github.com/leclercq/boutique/order/pkg/response"
	productResponse "github.com/leclercq/boutique/product/pkg/response"
)

const keyCart = "cart:%s"

// cartTTL matches the session cookie lifetime; an expired session has no
// business keeping a cart around.
const cartTTL = 30 * 24 * time.Hour

var oneHundred = decimal.NewFromInt(100)

// ProductFinder resolves catalog entries for cart lines. Implemented by the
// product service.
type ProductFinder interface {
	FindProductById(c context.Context, id uuid.UUID) (productResponse.Product, error)
}

// CartService owns the session cart document stored in redis. Every method
// takes the session id explicitly; there is no ambient session state.
type CartService struct {
	cache    *redis.Client
	products ProductFinder
}

func NewCartService(cache *redis.Client, products ProductFinder) CartService {
	return CartService{cache: cache, products: products}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf(keyCart, sessionID)
}

func (s CartService) getCart(c context.Context, sessionID string) (response.Cart, error) {
	jsonString, err := s.cache.Get(c, cartKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return response.EmptyCart(), nil
		}
		return response.Cart{}, fmt.Errorf("failed finding cart in cache with error=%w", err)
	}
	cart := response.Cart{}
	err = json.Unmarshal([]byte(jsonString), &cart)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed unmarshaling cart with error=%w", err)
	}
	if cart.Lines == nil {
		cart.Lines = map[string]response.Line{}
	}
	return cart, nil
}

func (s CartService) saveCart(c context.Context, sessionID string, cart response.Cart) error {
	jsonCart, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	err = s.cache.Set(c, cartKey(sessionID), jsonCart, cartTTL).Err()
	if err != nil {
		return fmt.Errorf("failed inserting cart in cache with error=%w", err)
	}
	return nil
}

// join resolves every line against the catalog and computes the totals. A
// line whose product no longer exists fails the whole read with
// ErrStaleCartLine instead of pricing it at zero.
func (s CartService) join(
	c context.Context,
	cart response.Cart,
) (response.CartWithProducts, error) {
	joined := response.CartWithProducts{
		Lines: map[string]response.LineWithProduct{},
		Total: response.Total{},
	}

	for id, line := range cart.Lines {
		productId, err := uuid.Parse(id)
		if err != nil {
			return response.CartWithProducts{}, fmt.Errorf(
				"failed parsing cart line key=%s with error=%w", id, err,
			)
		}
		product, err := s.products.FindProductById(c, productId)
		if err != nil {
			if errors.Is(err, inErrors.ErrProductNotFound) {
				return response.CartWithProducts{}, fmt.Errorf(
					"productId=%s with error=%w", id, inErrors.ErrStaleCartLine,
				)
			}
			return response.CartWithProducts{}, err
		}

		inclTax := line.Quantity.Mul(product.Price)
		divisor := decimal.NewFromInt(1).Add(product.VatRate.Div(oneHundred))
		exclTax := inclTax.DivRound(divisor, 2)
		tax := inclTax.Sub(exclTax)

		joined.Lines[id] = response.LineWithProduct{
			Product:  product,
			Quantity: line.Quantity,
			ExclTax:  exclTax,
			InclTax:  inclTax,
			Tax:      tax,
		}

		joined.Total.Quantity = joined.Total.Quantity.Add(line.Quantity)
		joined.Total.ExclTax = joined.Total.ExclTax.Add(exclTax)
		joined.Total.InclTax = joined.Total.InclTax.Add(inclTax)
		joined.Total.Tax = joined.Total.Tax.Add(tax)
	}

	return joined, nil
}

// HasLine reports whether the session's cart currently has a line for the
// product.
func (s CartService) HasLine(
	c context.Context,
	sessionID string,
	productId uuid.UUID,
) (bool, error) {
	c, span := otel.Tracer.Start(c, "CartService HasLine")
	defer span.End()

	cart, err := s.getCart(c, sessionID)
	if err != nil {
		inOtel.RecordError(err, span)
		return false, err
	}
	_, ok := cart.Lines[productId.String()]
	return ok, nil
}

// AddItem creates a line with the given quantity or adds the quantity to the
// existing line, then recomputes and saves the total.
func (s CartService) AddItem(
	c context.Context,
	sessionID string,
	productId uuid.UUID,
	quantity decimal.Decimal,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyQuantity, quantity.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	_, err := s.products.FindProductById(c, productId)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", productId.String(), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "adding cart line").Logger()
	logger.Trace().Msg("adding cart line")
	cart, err := s.getCart(c, sessionID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	id := productId.String()
	line, ok := cart.Lines[id]
	if ok {
		line.Quantity = line.Quantity.Add(quantity)
	} else {
		line = response.Line{ProductID: productId, Quantity: quantity}
	}
	cart.Lines[id] = line
	logger.Info().Msg("added cart line")

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Trace().Msg("saving cart")
	cart, err = s.refreshAndSave(c, sessionID, cart)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Any(log.KeyTotal, cart.Total).Msg("saved cart")

	return cart, nil
}

// AddQuantity increments an existing line by the given delta, or behaves as
// AddItem when the line does not exist. The delta is added, never a replace.
func (s CartService) AddQuantity(
	c context.Context,
	sessionID string,
	productId uuid.UUID,
	delta decimal.Decimal,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddQuantity")
	defer span.End()

	return s.AddItem(c, sessionID, productId, delta)
}

// RemoveItem deletes the product's line if present, a no-op otherwise, then
// recomputes and saves the total.
func (s CartService) RemoveItem(
	c context.Context,
	sessionID string,
	productId uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyProcess, "removing cart line").
		Logger()

	logger.Trace().Msg("removing cart line")
	cart, err := s.getCart(c, sessionID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	delete(cart.Lines, productId.String())
	logger.Info().Msg("removed cart line")

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Trace().Msg("saving cart")
	cart, err = s.refreshAndSave(c, sessionID, cart)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("saved cart")

	return cart, nil
}

// Clear empties all lines and resets the total.
func (s CartService) Clear(c context.Context, sessionID string) error {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Clear").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Trace().Msg("clearing cart")
	err := s.saveCart(c, sessionID, response.EmptyCart())
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("cleared cart")

	return nil
}

// ListWithTotals resolves every line via the catalog and returns the cart
// with per-line amounts and accumulated totals. Read-only: totals are
// recomputed from live prices on every call, never served from the cached
// total.
func (s CartService) ListWithTotals(
	c context.Context,
	sessionID string,
) (response.CartWithProducts, error) {
	c, span := otel.Tracer.Start(c, "CartService ListWithTotals")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ListWithTotals").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "listing cart").
		Logger()

	logger.Trace().Msg("listing cart")
	cart, err := s.getCart(c, sessionID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartWithProducts{}, err
	}

	joined, err := s.join(c, cart)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartWithProducts{}, err
	}
	logger.Info().Any(log.KeyTotal, joined.Total).Msg("listed cart")

	return joined, nil
}

// Replay rebuilds the cart's lines from an order's item snapshots. The total
// is left empty and recomputed from current catalog prices on the next read.
func (s CartService) Replay(
	c context.Context,
	sessionID string,
	items []orderResponse.OrderItem,
) error {
	c, span := otel.Tracer.Start(c, "CartService Replay")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Replay").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "replaying order items into cart").
		Logger()

	logger.Trace().Msgf("replaying %d order items into cart", len(items))
	cart := response.EmptyCart()
	for _, item := range items {
		cart.Lines[item.ProductID.String()] = response.Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	err := s.saveCart(c, sessionID, cart)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msgf("replayed %d order items into cart", len(items))

	return nil
}

// refreshAndSave recomputes the cached total from the current lines and
// persists the cart.
func (s CartService) refreshAndSave(
	c context.Context,
	sessionID string,
	cart response.Cart,
) (response.Cart, error) {
	joined, err := s.join(c, cart)
	if err != nil {
		return response.Cart{}, err
	}
	cart.Total = joined.Total
	err = s.saveCart(c, sessionID, cart)
	if err != nil {
		return response.Cart{}, err
	}
	return cart, nil
}
