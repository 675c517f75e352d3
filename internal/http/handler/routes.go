package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "kurssite/docs"
	"kurssite/internal/http/middleware"
	"kurssite/internal/service"
	"kurssite/internal/view"
)

// Dependencies are the collaborators the routes need.
type Dependencies struct {
	DB         Pinger
	Blog       service.BlogService
	AdminToken string
	// Location is the zone post dates are shown in; nil means UTC.
	Location *time.Location
	// Gatherer backs /metrics; nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches the site, health and editor API routes.
// The editor API and its Swagger UI exist only when an admin token is set.
// view.RootPath and view.BlogPath are the targets of the header links.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get(view.RootPath, StartPage())
	app.Get(view.BlogPath, BlogIndex(deps.Blog, deps.Location))
	app.Get(view.BlogPath+"/:slug", BlogPost(deps.Blog, deps.Location))
	app.Get("/"+service.MediaPrefix+":name", Media(deps.Blog))
	app.Get("/partials/header", HeaderPartial())

	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", Liveness())
	if deps.Gatherer != nil {
		app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", middleware.AdminAuth(deps.AdminToken))
	api.Post("/posts", PublishPost(deps.Blog))
	api.Delete("/posts/:slug", DeletePost(deps.Blog))
	api.Post("/media", UploadMedia(deps.Blog))

	if deps.AdminToken != "" {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}
}
