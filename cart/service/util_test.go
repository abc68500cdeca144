package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	inErrors "github.com/leclercq/boutique/internal/errors"
	productResponse "github.com/leclercq/boutique/product/pkg/response"
)

type (
	setupFunc    func(context.Context) (*redis.Client, *testRedis.RedisContainer, *stubCatalog, CartService)
	teardownFunc func(*redis.Client, *testRedis.RedisContainer)
)

// stubCatalog is an in-memory ProductFinder so cart tests only need a redis
// container.
type stubCatalog struct {
	products map[uuid.UUID]productResponse.Product
}

func (s *stubCatalog) FindProductById(
	_ context.Context,
	id uuid.UUID,
) (productResponse.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return productResponse.Product{}, inErrors.ErrProductNotFound
	}
	return product, nil
}

func (s *stubCatalog) add(product productResponse.Product) {
	s.products[product.ID] = product
}

func (s *stubCatalog) remove(id uuid.UUID) {
	delete(s.products, id)
}

func setup(t *testing.T) setupFunc {
	return func(c context.Context) (*redis.Client, *testRedis.RedisContainer, *stubCatalog, CartService) {
		redisContainer, err := testRedis.Run(
			c,
			"redis:7.4.2-alpine3.21",
			testRedis.WithLogLevel(testRedis.LogLevelVerbose),
		)
		if err != nil {
			t.Fatalf("failed running redis container with error: %s", err)
		}

		redisConnStr, err := redisContainer.ConnectionString(c)
		if err != nil {
			t.Fatalf("failed getting redis connection string with error: %s", err)
		}

		redisOpt, err := redis.ParseURL(redisConnStr)
		if err != nil {
			t.Fatalf("failed parsing redis connection string with error: %s", err)
		}

		redisClient := redis.NewClient(redisOpt)
		if err = redisClient.Ping(c).Err(); err != nil {
			t.Fatalf("failed ping redis client with error: %s", err)
		}

		catalog := &stubCatalog{products: map[uuid.UUID]productResponse.Product{}}
		cartService := NewCartService(redisClient, catalog)
		return redisClient, redisContainer, catalog, cartService
	}
}

func teardown(t *testing.T) teardownFunc {
	return func(redisClient *redis.Client, redisContainer *testRedis.RedisContainer) {
		redisClient.Close()
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
}
