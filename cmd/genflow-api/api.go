// Package main provides the genflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/museloop/genflow/pkg/registry"
	"github.com/museloop/genflow/pkg/services"
	"github.com/museloop/genflow/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	logger     *slog.Logger
	generation *services.Generation
	registry   *registry.Registry
	gatherer   prometheus.Gatherer
	validate   *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	generation *services.Generation,
	registry *registry.Registry,
	gatherer prometheus.Gatherer,
) *API {
	return &API{
		logger:     logger,
		generation: generation,
		registry:   registry,
		gatherer:   gatherer,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.generation, a.registry, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(_ fiber.Ctx) bool {
			_, ok := a.registry.HealthCheck()

			return ok
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("genflow API")
	})

	if a.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})))
	}

	handlers.RegisterRoutes(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
