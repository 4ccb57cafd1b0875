package bootstrap

import (
	"context"
	"fmt"

	"phonebook_server/adapter/in/http"
	"phonebook_server/adapter/out/mongodb"
	"phonebook_server/adapter/out/persistence"
	"phonebook_server/config"
	"phonebook_server/core/port/out"
	"phonebook_server/core/service/contact"
	"phonebook_server/infra/database"
	"phonebook_server/pkg/cache"
	"phonebook_server/pkg/logger"
	"phonebook_server/pkg/metrics"
	"phonebook_server/pkg/resilience"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type Dependencies struct {
	Config  *config.Config
	Metrics *metrics.Registry

	// Connections, nil when the driver is not in use
	MongoDB *mongo.Client
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client

	ContactRepo    out.ContactRepository
	ContactService *contact.Service

	// HealthChecks back the readiness probe, keyed by dependency name
	HealthChecks map[string]http.HealthChecker
}

// NewDependencies connects the configured backends and wires the contact
// service. The returned cleanup closes every connection that was opened.
func NewDependencies(ctx context.Context, cfg *config.Config, registry *metrics.Registry) (*Dependencies, func(), error) {
	deps := &Dependencies{
		Config:       cfg,
		Metrics:      registry,
		HealthChecks: make(map[string]http.HealthChecker),
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Storage
	repo, closeStorage, err := newStorage(ctx, cfg, deps)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeStorage)
	deps.HealthChecks["storage"] = repo

	if cfg.BreakerEnabled {
		breakerCfg := resilience.DefaultCircuitBreakerConfig("contacts")
		breakerCfg.FailureThreshold = uint32(cfg.BreakerFailures)
		breakerCfg.Timeout = cfg.BreakerTimeout
		repo = persistence.NewBreakerContactAdapter(repo, breakerCfg)
	}

	// Cache (optional)
	if cfg.RedisURL != "" {
		client, err := database.NewRedis(ctx, cfg.RedisURL, nil)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		deps.Redis = client

		redisCache := cache.NewRedisCache(client, "phonebook:")
		closers = append(closers, func() { _ = redisCache.Close() })
		deps.HealthChecks["redis"] = redisCache

		repo = persistence.NewCachedContactAdapter(repo, redisCache, cfg.CacheTTL, registry.Registerer())
		logger.Info("Contact cache enabled (ttl %s)", cfg.CacheTTL)
	}

	deps.ContactRepo = repo
	deps.ContactService = contact.NewService(repo, registry)

	return deps, cleanup, nil
}

// newStorage opens the backend selected by cfg.StorageDriver.
func newStorage(ctx context.Context, cfg *config.Config, deps *Dependencies) (out.ContactRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverMongoDB:
		client, err := database.NewMongo(ctx, cfg.MongoDBURL, deps.Metrics.MongoPoolMonitor())
		if err != nil {
			return nil, nil, err
		}
		deps.MongoDB = client

		adapter := mongodb.NewContactAdapter(client.Database(cfg.MongoDBName))
		if err := adapter.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure contact indexes: %w", err)
		}
		logger.Info("MongoDB storage ready (database %s)", cfg.MongoDBName)

		return adapter, func() { _ = client.Disconnect(context.Background()) }, nil

	case config.DriverPostgres:
		pool, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.DefaultPostgresConfig(cfg.DBMaxConns))
		if err != nil {
			return nil, nil, err
		}
		deps.DB = pool
		deps.SQLDB = database.NewSQLX(pool)
		deps.Metrics.RegisterSQLPool("postgres", deps.SQLDB.DB)

		adapter := persistence.NewContactAdapter(deps.SQLDB)
		if err := adapter.EnsureSchema(ctx); err != nil {
			_ = deps.SQLDB.Close()
			pool.Close()
			return nil, nil, err
		}
		logger.Info("PostgreSQL storage ready")

		return adapter, func() {
			_ = deps.SQLDB.Close()
			pool.Close()
		}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory storage; contacts are lost on restart")
		return persistence.NewMemoryContactAdapter(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
