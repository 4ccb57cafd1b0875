package bootstrap

import (
	"context"
	"strings"

	"phonebook_server/adapter/in/http"
	"phonebook_server/config"
	"phonebook_server/infra/middleware"
	"phonebook_server/pkg/logger"
	"phonebook_server/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewAPI builds the metrics registry and dependencies, then the HTTP app.
func NewAPI(ctx context.Context, cfg *config.Config) (*fiber.App, func(), error) {
	registry := metrics.NewRegistry()

	deps, cleanup, err := NewDependencies(ctx, cfg, registry)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := NewApp(cfg, deps)

	logger.Info("API server initialized successfully")
	return app, cleanup, nil
}

// NewApp creates the Fiber app with the global middleware stack and every route.
func NewApp(cfg *config.Config, deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		StrictRouting:         false,
		CaseSensitive:         false,

		// go-json: faster JSON serialization than encoding/json
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		ServerHeader: "",
	})

	// Global middleware stack (order matters)
	app.Use(middleware.RequestID())                             // 1. Request ID
	app.Use(middleware.RequestLogger())                         // 2. Request logging
	app.Use(middleware.Metrics(deps.Metrics, cfg.MetricsPath)) // 3. Request metrics, sees final status
	app.Use(middleware.Recover())                               // 4. Panic recovery
	app.Use(middleware.SecurityHeaders())                       // 5. Security headers

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        86400, // 24 hours
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Scrape endpoint
	app.Get(cfg.MetricsPath, http.NewMetricsHandler(deps.Metrics.Gatherer()))

	// Health check
	http.NewHealthHandler(deps.HealthChecks).Register(app)

	// Contact API
	api := app.Group("/api")
	contactHandler := http.NewContactHandler(deps.ContactService, middleware.NewContactValidator())
	contactHandler.Register(api)

	return app
}
