package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	inErrors "github.com/leclercq/boutique/internal/errors"
	"github.com/leclercq/boutique/internal/log"
	inOtel "github.com/leclercq/boutique/internal/otel"
	"github.com/leclercq/boutique/internal/repository"
	"github.com/leclercq/boutique/product/otel"
	"github.com/leclercq/boutique/product/pkg/response"
)

const keyProduct = "product:%s"

type ProductService struct {
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(queries *repository.Queries, cache *redis.Client) ProductService {
	return ProductService{queries: queries, cache: cache}
}

func (s ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := fmt.Sprintf(keyProduct, id.String())

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	jsonString, err := s.cache.Get(c, cacheKey).Result()
	if err == nil {
		product := response.Product{}
		err = json.Unmarshal([]byte(jsonString), &product)
		if err == nil {
			logger.Info().Msg("found product in cache")
			return product, nil
		}
		logger.Info().Err(err).Msg("failed unmarshaling cached product, falling back to db")
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in db").Logger()
	logger.Trace().Msg("finding product in db")
	row, err := s.queries.FindProductById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("productId=%s with error=%w", id.String(), inErrors.ErrProductNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		err = fmt.Errorf("failed finding productId=%s with error=%w", id.String(), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	product := mapProduct(row)
	logger.Info().Msg("found product in db")

	logger = logger.With().Str(log.KeyProcess, "inserting product in cache").Logger()
	logger.Trace().Msg("inserting product in cache")
	jsonProduct, err := json.Marshal(product)
	if err != nil {
		err = fmt.Errorf("failed marshaling product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	err = s.cache.Set(c, cacheKey, jsonProduct, time.Hour).Err()
	if err != nil {
		err = fmt.Errorf("failed inserting product in cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("inserted product in cache")

	return product, nil
}

func (s ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyProcess, "finding products in db").
		Logger()

	logger.Trace().Msg("finding products in db")
	rows, err := s.queries.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d products in db", len(rows))

	products := make([]response.Product, len(rows))
	for i, row := range rows {
		products[i] = mapProduct(row)
	}
	return products, nil
}

func mapProduct(row repository.Product) response.Product {
	return response.Product{
		ID:        row.ID,
		Name:      row.Name,
		Price:     repository.DecimalFromNumeric(row.Price),
		VatRate:   repository.DecimalFromNumeric(row.VatRate),
		ImageUrl:  row.ImageUrl,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
