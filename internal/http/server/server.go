package server

import (
	"fmt"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"kurssite/internal/http/handler"
	"kurssite/internal/http/middleware"
)

// Options configures the site application.
type Options struct {
	Logger *zap.Logger
	// Registerer receives the request metrics; Deps.Gatherer usually reads
	// from the same registry.
	Registerer prometheus.Registerer
	Deps       handler.Dependencies
}

// New assembles the Fiber app: global middleware in order (tracing, request
// ID, logging, metrics, security headers) followed by the routes.
func New(opts Options) (*fiber.App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "kurssite",
		ErrorHandler:          handler.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))

	if opts.Registerer != nil {
		prom, err := middleware.NewPrometheusMiddleware(opts.Registerer)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		app.Use(prom.Handler())
	}

	app.Use(middleware.SecurityHeaders())

	handler.RegisterRoutes(app, opts.Deps)
	return app, nil
}
