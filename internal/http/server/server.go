// Package server builds the Fiber application: error envelope, middleware,
// routes and the JSON 404 catch-all.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/redis/go-redis/v9"

	"docconv/internal/auth"
	"docconv/internal/config"
	"docconv/internal/http/handlers"
	"docconv/internal/http/middleware"
	"docconv/internal/infra/chrome"
	"docconv/internal/infra/logging"
)

type Deps struct {
	Config config.Config
	// Redis backs the result cache when cache.result_cache_enabled is set.
	Redis *redis.Client
	// Tokens enables X-API-Key auth; nil disables it.
	Tokens *auth.Store
	// Renderer prints HTML; built from Config when nil.
	Renderer *chrome.Renderer
	// Converter and Text override the wiring built from Config (tests).
	Converter handlers.Converter
	Text      handlers.TextSource
}

// New creates and configures the Fiber app.
func New(deps Deps) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		BodyLimit:             cfg.Limits.MaxUploadBytes,
		ErrorHandler:          errorHandler,
	})

	middleware.Register(app, cfg, deps.Tokens)
	registerRoutes(app, deps)

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		msg = e.Message
	}

	logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": msg,
		},
	})
}

func registerRoutes(app *fiber.App, deps Deps) {
	renderer := deps.Renderer
	if renderer == nil {
		renderer = chrome.NewRenderer(deps.Config)
	}

	conv, text := deps.Converter, deps.Text
	if conv == nil || text == nil {
		svc := NewConverter(deps.Config, deps.Redis, renderer)
		if conv == nil {
			conv = svc
		}
		if text == nil {
			text = svc
		}
	}

	app.Get("/", handlers.HandleRoot)

	api := app.Group("/api")
	ch := handlers.NewConvertHandler(conv, deps.Config)
	api.Post("/convert", ch.HandleConvert)
	api.Get("/conversions", ch.HandleConversions)
	api.Post("/flashcards", handlers.NewFlashcardHandler(text, deps.Config).HandleFlashcards)

	ops := app.Group("/ops")
	ops.Get("/chrome/stats", handlers.HandleChromeStats(renderer))
	ops.Get("/monitor", monitor.New())
}
