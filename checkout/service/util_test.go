package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	cartService "github.com/leclercq/boutique/cart/service"
	"github.com/leclercq/boutique/checkout/provider"
	"github.com/leclercq/boutique/internal/config"
	"github.com/leclercq/boutique/internal/repository"
	orderService "github.com/leclercq/boutique/order/service"
	productService "github.com/leclercq/boutique/product/service"
	productResponse "github.com/leclercq/boutique/product/pkg/response"
)

const testBaseUrl = "http://localhost:8080"

// providerStub records every checkout session request and answers with a
// fixed hosted page URL, or with a canned failure when one is armed.
type providerStub struct {
	server *httptest.Server

	mu         sync.Mutex
	failStatus int
	requests   []provider.CheckoutSessionParams
}

func newProviderStub(t *testing.T) *providerStub {
	stub := &providerStub{}
	stub.server = httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			param := provider.CheckoutSessionParams{}
			if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
				t.Errorf("failed decoding checkout session params with error: %s", err)
			}
			stub.mu.Lock()
			stub.requests = append(stub.requests, param)
			failStatus := stub.failStatus
			stub.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			if failStatus != 0 {
				w.WriteHeader(failStatus)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"message": "provider is down",
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(provider.CheckoutSession{
				ID:  "cs_test_1",
				Url: "https://checkout.example/pay/cs_test_1",
			})
		}),
	)
	return stub
}

func (s *providerStub) failWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

func (s *providerStub) lastRequest(t *testing.T) provider.CheckoutSessionParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("provider stub received no request")
	}
	return s.requests[len(s.requests)-1]
}

type testEnv struct {
	pool           *pgxpool.Pool
	pgContainer    *postgres.PostgresContainer
	redisClient    *redis.Client
	redisContainer *testRedis.RedisContainer
	queries        *repository.Queries
	providerStub   *providerStub
	carts          cartService.CartService
	orders         *orderService.OrderService
	checkouts      *CheckoutService
}

func setup(t *testing.T) func(context.Context) *testEnv {
	return func(c context.Context) *testEnv {
		pgContainer, err := postgres.Run(
			c,
			"postgres:16.6-alpine3.21",
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			postgres.WithDatabase("postgres"),
			postgres.BasicWaitStrategies(),
			postgres.WithInitScripts(
				filepath.Join("..", "..", "migrations", "20250212103031_create_table_products.up.sql"),
				filepath.Join("..", "..", "migrations", "20250212103610_create_table_orders.up.sql"),
				filepath.Join("..", "..", "migrations", "20250212104122_create_table_order_items.up.sql"),
			),
		)
		if err != nil {
			t.Fatalf("failed running postgres container with error: %s", err)
		}

		pgConnStr, err := pgContainer.ConnectionString(c)
		if err != nil {
			t.Fatalf("failed getting postgres connection string with error: %s", err)
		}

		pgConfig, err := pgxpool.ParseConfig(pgConnStr)
		if err != nil {
			t.Fatalf("failed parsing postgres config with error: %s", err)
		}

		pool, err := pgxpool.NewWithConfig(c, pgConfig)
		if err != nil {
			t.Fatalf("failed creating postgres pool with error: %s", err)
		}
		if err = pool.Ping(c); err != nil {
			t.Fatalf("failed ping postgres pool with error: %s", err)
		}

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

		stub := newProviderStub(t)

		queries := repository.New(pool)
		products := productService.NewProductService(queries, redisClient)
		carts := cartService.NewCartService(redisClient, products)
		orders := orderService.NewOrderService(pool, queries)
		checkouts := NewCheckoutService(
			carts,
			orders,
			provider.NewClient(config.Checkout{
				Url:       stub.server.URL,
				SecretKey: "sk_test",
				Currency:  "eur",
			}),
			config.Application{BaseUrl: testBaseUrl},
			config.Checkout{Currency: "eur"},
		)

		return &testEnv{
			pool:           pool,
			pgContainer:    pgContainer,
			redisClient:    redisClient,
			redisContainer: redisContainer,
			queries:        queries,
			providerStub:   stub,
			carts:          carts,
			orders:         orders,
			checkouts:      checkouts,
		}
	}
}

func teardown(t *testing.T) func(*testEnv) {
	return func(env *testEnv) {
		env.providerStub.server.Close()
		env.redisClient.Close()
		env.pool.Close()
		if err := testcontainers.TerminateContainer(env.pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
		if err := testcontainers.TerminateContainer(env.redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
}

func seedProduct(
	t *testing.T,
	c context.Context,
	queries *repository.Queries,
	name string,
	price string,
	vatRate int64,
) productResponse.Product {
	row, err := queries.InsertProduct(c, repository.InsertProductParams{
		ID:       uuid.New(),
		Name:     name,
		Price:    repository.NumericFromDecimal(decimal.RequireFromString(price)),
		VatRate:  repository.NumericFromDecimal(decimal.NewFromInt(vatRate)),
		ImageUrl: "https://img.example/" + name + ".jpg",
	})
	if err != nil {
		t.Fatalf("failed seeding product with error: %s", err)
	}
	return productResponse.Product{
		ID:      row.ID,
		Name:    row.Name,
		Price:   repository.DecimalFromNumeric(row.Price),
		VatRate: repository.DecimalFromNumeric(row.VatRate),
	}
}
