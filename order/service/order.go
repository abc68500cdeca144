package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/leclercq/boutique/internal/constants"
	inErrors "github.com/leclercq/boutique/internal/errors"
	"github.com/leclercq/boutique/internal/log"
	inOtel "github.com/leclercq/boutique/internal/otel"
	"github.com/leclercq/boutique/internal/repository"
	"github.com/leclercq/boutique/internal/validate"
	"github.com/leclercq/boutique/order/otel"
	"github.com/leclercq/boutique/order/pkg/request"
	"github.com/leclercq/boutique/order/pkg/response"
)

type OrderService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewOrderService(pool *pgxpool.Pool, queries *repository.Queries) *OrderService {
	return &OrderService{pool: pool, queries: queries}
}

// CreateOrder persists a new order in pending-payment state together with
// its item snapshots, in one transaction.
func (s OrderService) CreateOrder(
	c context.Context,
	param request.CreateOrder,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateOrder").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request").Logger()
	logger.Trace().Msg("validating request")
	err := validate.New().StructCtx(c, param)
	if err != nil {
		err = fmt.Errorf("failed validating request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("validated request")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("initialized transaction")
	defer func() {
		l := logger.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		err := tx.Rollback(c)
		if err != nil {
			if errors.Is(err, pgx.ErrTxClosed) {
				return
			}
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inOtel.RecordError(err, span)
			l.Error().Err(err).Msg(err.Error())
			return
		}
		l.Info().Msg("rolled back transaction")
	}()

	logger = logger.With().Str(log.KeyProcess, "inserting order to database").Logger()
	logger.Trace().Msg("inserting order to database")
	order, err := s.queries.WithTx(tx).InsertOrder(c, repository.InsertOrderParams{
		ID:    uuid.New(),
		State: constants.OrderStatePendingPayment,
		Token: param.Token,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("inserted order to database")

	logger = logger.With().Str(log.KeyProcess, "inserting order items to database").Logger()
	logger.Trace().Msg("inserting order items to database")
	args := make([]repository.InsertOrderItemsParams, len(param.OrderItems))
	for i, item := range param.OrderItems {
		args[i] = repository.InsertOrderItemsParams{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  repository.NumericFromDecimal(item.Quantity),
		}
	}
	insertedCount, err := s.queries.WithTx(tx).InsertOrderItems(c, args)
	if err != nil {
		err = fmt.Errorf("failed inserting order items to database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("inserted %d order items to database", insertedCount)

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Trace().Msg("committing transaction")
	err = tx.Commit(c)
	if err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("committed transaction")

	orderResponse := mapOrder(order)
	orderResponse.OrderItems = make([]response.OrderItem, len(args))
	for i, arg := range args {
		orderResponse.OrderItems[i] = response.OrderItem{
			ID:        arg.ID,
			OrderID:   arg.OrderID,
			ProductID: arg.ProductID,
			Quantity:  repository.DecimalFromNumeric(arg.Quantity),
		}
	}
	return orderResponse, nil
}

// FindOrderByToken resolves an order through its opaque token, items
// included. A miss yields ErrOrderNotFound.
func (s OrderService) FindOrderByToken(
	c context.Context,
	token string,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderByToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderByToken").
		Str(log.KeyProcess, "finding order by token").
		Logger()

	logger.Trace().Msg("finding order by token")
	order, err := s.queries.FindOrderByToken(c, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("token with error=%w", inErrors.ErrOrderNotFound)
		} else {
			err = fmt.Errorf("failed finding order by token with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("found order by token")

	return s.withItems(c, span, logger, order)
}

// FindOrderById resolves an order by its id, items included.
func (s OrderService) FindOrderById(
	c context.Context,
	id uuid.UUID,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyOrderID, id.String()).
		Str(log.KeyProcess, "finding order by id").
		Logger()

	logger.Trace().Msg("finding order by id")
	order, err := s.queries.FindOrderById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("orderId=%s with error=%w", id.String(), inErrors.ErrOrderNotFound)
		} else {
			err = fmt.Errorf("failed finding orderId=%s with error=%w", id.String(), err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order by id")

	return s.withItems(c, span, logger, order)
}

// ValidateOrder transitions the order identified by token to the validated
// state. Transitioning an already validated order again is harmless.
func (s OrderService) ValidateOrder(
	c context.Context,
	token string,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService ValidateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService ValidateOrder").
		Str(log.KeyProcess, "validating order").
		Logger()

	logger.Trace().Msg("validating order")
	order, err := s.queries.UpdateOrderStateByToken(c, repository.UpdateOrderStateByTokenParams{
		Token: token,
		State: constants.OrderStateValidated,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("token with error=%w", inErrors.ErrOrderNotFound)
		} else {
			err = fmt.Errorf("failed validating order with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("validated order")

	return s.withItems(c, span, logger, order)
}

// DeleteOrder removes the order permanently; its items cascade away with it.
func (s OrderService) DeleteOrder(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "OrderService DeleteOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService DeleteOrder").
		Str(log.KeyOrderID, id.String()).
		Str(log.KeyProcess, "deleting order").
		Logger()

	logger.Trace().Msg("deleting order")
	deleted, err := s.queries.DeleteOrderById(c, id)
	if err != nil {
		err = fmt.Errorf("failed deleting orderId=%s with error=%w", id.String(), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if deleted == 0 {
		err = fmt.Errorf("orderId=%s with error=%w", id.String(), inErrors.ErrOrderNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted order")

	return nil
}

func (s OrderService) withItems(
	c context.Context,
	span trace.Span,
	logger zerolog.Logger,
	order repository.Order,
) (response.Order, error) {
	logger = logger.With().Str(log.KeyProcess, "finding order items").Logger()
	logger.Trace().Msg("finding order items")
	rows, err := s.queries.FindOrderItemsByOrderId(c, order.ID)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("found %d order items", len(rows))

	orderResponse := mapOrder(order)
	orderResponse.OrderItems = make([]response.OrderItem, len(rows))
	for i, row := range rows {
		orderResponse.OrderItems[i] = response.OrderItem{
			ID:        row.ID,
			OrderID:   row.OrderID,
			ProductID: row.ProductID,
			Quantity:  repository.DecimalFromNumeric(row.Quantity),
		}
	}
	return orderResponse, nil
}

func mapOrder(order repository.Order) response.Order {
	return response.Order{
		ID:        order.ID,
		State:     order.State,
		Token:     order.Token,
		CreatedAt: order.CreatedAt.Time,
		UpdatedAt: order.UpdatedAt.Time,
	}
}
