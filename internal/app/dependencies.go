package app

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/mustore/internal/health"
	"github.com/vladislavdragonenkov/mustore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/mustore/internal/metrics"
	"github.com/vladislavdragonenkov/mustore/internal/ratelimit"
	"github.com/vladislavdragonenkov/mustore/internal/service/auth"
	"github.com/vladislavdragonenkov/mustore/internal/service/cart"
	"github.com/vladislavdragonenkov/mustore/internal/service/checkout"
	"github.com/vladislavdragonenkov/mustore/internal/service/lifecycle"
	"github.com/vladislavdragonenkov/mustore/internal/service/outbox"
	"github.com/vladislavdragonenkov/mustore/internal/service/rest"
	"github.com/vladislavdragonenkov/mustore/internal/storage/memory"
	"github.com/vladislavdragonenkov/mustore/internal/storage/postgres"
	"github.com/vladislavdragonenkov/mustore/internal/version"
)

// Пороги, после которых backlog outbox считается деградацией.
const (
	outboxMaxPending = 1000
	outboxMaxAge     = 10 * time.Minute
)

// Dependencies содержит собранные зависимости приложения.
type Dependencies struct {
	Handler      *rest.Handler
	Health       *healthcheck.Handler
	OutboxWorker *outbox.Worker
	Metrics      *metrics.StoreMetrics

	pg       *postgres.Store
	producer *kafka.Producer
	redis    *redis.Client
	logger   *log.Entry
}

// BuildDependencies собирает хранилище, сервисы и HTTP-обработчик.
// Без PostgreSQL поднимается in-memory хранилище с демо-каталогом,
// без Kafka события остаются в outbox до появления брокера.
func BuildDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	deps := &Dependencies{logger: logger}

	var (
		products      domain.ProductRepository
		catalog       domain.CatalogRepository
		carts         domain.CartRepository
		checkoutRepo  domain.CheckoutRepository
		orders        domain.OrderRepository
		users         domain.UserRepository
		favorites     domain.FavoriteRepository
		stats         domain.StatsRepository
		outboxStorage domain.OutboxRepository
	)

	if cfg.PostgresDSN != "" {
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		deps.pg = pg
		products = postgres.NewProductRepository(pg)
		catalog = postgres.NewCatalogRepository(pg)
		carts = postgres.NewCartRepository(pg)
		checkoutRepo = postgres.NewCheckoutRepository(pg)
		orders = postgres.NewOrderRepository(pg)
		users = postgres.NewUserRepository(pg)
		favorites = postgres.NewFavoriteRepository(pg)
		stats = postgres.NewStatsRepository(pg)
		outboxStorage = postgres.NewOutboxRepository(pg)
		logger.Info("postgres storage initialized")
	} else {
		store := memory.NewStore()
		memory.SeedDemoCatalog(store)
		products = memory.NewProductRepository(store)
		catalog = memory.NewCatalogRepository(store)
		carts = memory.NewCartRepository(store)
		checkoutRepo = memory.NewCheckoutRepository(store)
		orders = memory.NewOrderRepository(store)
		users = memory.NewUserRepository(store)
		favorites = memory.NewFavoriteRepository(store)
		stats = memory.NewStatsRepository(store)
		outboxStorage = memory.NewOutboxRepository(store)
		logger.Warn("postgres dsn is empty, using in-memory storage with demo catalog")
	}

	storeMetrics := metrics.NewStoreMetrics()
	deps.Metrics = storeMetrics

	authSvc := auth.NewService(users, cfg.JWTSecret,
		auth.WithLogger(logger.WithField("component", "auth-service")))
	cartSvc := cart.NewService(carts, products,
		cart.WithPricing(cfg.Pricing),
		cart.WithLogger(logger.WithField("component", "cart-service")))
	checkoutSvc := checkout.NewService(checkoutRepo, carts,
		checkout.WithPricing(cfg.Pricing),
		checkout.WithMetrics(storeMetrics),
		checkout.WithLogger(logger.WithField("component", "checkout-service")))
	lifecycleMgr := lifecycle.NewManager(orders,
		lifecycle.WithMetrics(storeMetrics),
		lifecycle.WithLogger(logger.WithField("component", "lifecycle-manager")))

	deps.Handler = rest.NewHandler(
		authSvc, cartSvc, checkoutSvc, lifecycleMgr,
		products, catalog, favorites, stats,
		rest.WithLogger(logger.WithField("component", "rest-api")),
		rest.WithRateLimiter(buildRateLimiter(cfg, deps, logger)),
	)

	if producer := initKafkaProducer(cfg.KafkaBrokers, logger); producer != nil {
		deps.producer = producer
		deps.OutboxWorker = outbox.NewWorker(
			outboxStorage,
			kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
			outbox.WithMetrics(storeMetrics),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		)
	}

	deps.Health = buildHealthHandler(deps, outboxStorage)
	return deps, nil
}

// buildRateLimiter выбирает Redis-лимитер при наличии адреса, иначе in-memory.
func buildRateLimiter(cfg Config, deps *Dependencies, logger *log.Entry) ratelimit.Limiter {
	if cfg.AuthRateLimit <= 0 {
		return nil
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		deps.redis = client
		logger.WithField("addr", cfg.RedisAddr).Info("redis rate limiter initialized")
		return ratelimit.NewRedisLimiter(client, cfg.AuthRateLimit, cfg.AuthRateWindow)
	}
	return ratelimit.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
}

// initKafkaProducer создаёт producer, если указаны брокеры.
// Ошибка подключения не фатальна: магазин работает, события ждут в outbox.
func initKafkaProducer(brokers string, logger *log.Entry) *kafka.Producer {
	if brokers == "" {
		logger.Info("kafka brokers are not configured, outbox publishing disabled")
		return nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer
}

func buildHealthHandler(deps *Dependencies, outboxStorage domain.OutboxRepository) *healthcheck.Handler {
	handler := healthcheck.NewHandler(version.String())
	if deps.pg != nil {
		handler.RegisterChecker("postgres", healthcheck.NewDatabaseChecker("postgres", deps.pg))
	}
	handler.RegisterChecker("outbox", healthcheck.NewOutboxBacklogChecker(outboxStorage, outboxMaxPending, outboxMaxAge))
	return handler
}

// Close освобождает внешние соединения.
func (d *Dependencies) Close() {
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			d.logger.Info("kafka producer closed")
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if d.pg != nil {
		if err := d.pg.Close(); err != nil {
			d.logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
