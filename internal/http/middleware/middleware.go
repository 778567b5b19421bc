// Package middleware registers the global Fiber middleware chain.
package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"

	"docconv/internal/auth"
	"docconv/internal/config"
	"docconv/internal/domain"
	"docconv/internal/infra/logging"
	"docconv/internal/infra/ratelimit"
)

const apiKeyLocal = "api_key"

// Register attaches global middleware to the app. tokens may be nil, in which
// case X-API-Key authentication and per-token limits are disabled.
func Register(app *fiber.App, cfg config.Config, tokens *auth.Store) {
	store := ratelimit.NewStore(ratelimit.RedisConfig{
		Addr: cfg.Cache.RedisHost,
		DB:   cfg.Cache.RateLimitDB,
	})

	app.Use(cors.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(healthcheck.New())

	if tokens != nil {
		app.Use(APIKeyAuth(tokens))
		app.Use(TokenRateLimit(tokens, store, cfg.RateLimiter.Interval))
	}

	if cfg.RateLimiter.EnableUserLimiter || cfg.RateLimiter.UserLimit > 0 {
		app.Use(UserRateLimit(cfg, store))
	}

	app.Use(RequestLogger())
}

// APIKeyAuth validates X-API-Key against the token store. Requests without
// the header pass through to the user limiter.
func APIKeyAuth(tokens *auth.Store) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:X-API-Key",
		ContextKey: apiKeyLocal,
		Validator: func(c *fiber.Ctx, key string) (bool, error) {
			if !tokens.Ready() {
				return false, domain.ErrTokenStoreNotReady
			}
			if !tokens.Validate(key) {
				return false, domain.ErrInvalidAPIKey
			}
			return true, nil
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || c.Get("X-API-Key") == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// keyauth may call this with a nil error.
			status := fiber.StatusUnauthorized
			if err == nil {
				err = fiber.ErrUnauthorized
			}
			if errors.Is(err, domain.ErrTokenStoreNotReady) {
				status = fiber.StatusServiceUnavailable
			}
			return errorJSON(c, status, err.Error())
		},
	})
}

type tokenLimiters struct {
	mu       sync.RWMutex
	handlers map[int]fiber.Handler
	store    fiber.Storage
	interval time.Duration
}

// get returns a cached limiter for the given limit, creating one if needed.
func (l *tokenLimiters) get(limit int) fiber.Handler {
	l.mu.RLock()
	h, ok := l.handlers[limit]
	l.mu.RUnlock()
	if ok {
		return h
	}

	h = limiter.New(limiter.Config{
		Max:               limit,
		Expiration:        l.interval,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           l.store,
		KeyGenerator: func(c *fiber.Ctx) string {
			if token, ok := c.Locals(apiKeyLocal).(string); ok {
				return token
			}
			return ""
		},
		LimitReached: func(c *fiber.Ctx) error {
			token, _ := c.Locals(apiKeyLocal).(string)
			logging.Warn("Rate limit exceeded", "token", token, "path", c.Path())
			return errorJSON(c, fiber.StatusTooManyRequests, "Too Many Requests")
		},
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.handlers[limit]; ok {
		return existing
	}
	l.handlers[limit] = h
	return h
}

// TokenRateLimit applies the per-token limit stored alongside each API key.
func TokenRateLimit(tokens *auth.Store, store fiber.Storage, interval time.Duration) fiber.Handler {
	limiters := &tokenLimiters{
		handlers: make(map[int]fiber.Handler),
		store:    store,
		interval: interval,
	}
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals(apiKeyLocal).(string)
		if !ok || token == "" {
			return c.Next()
		}
		limit := tokens.RateLimit(token)
		if limit == 0 {
			return c.Next()
		}
		return limiters.get(limit)(c)
	}
}

func clientKey(c *fiber.Ctx) string {
	sum := sha256.Sum256([]byte(c.IP() + c.Get("User-Agent")))
	return hex.EncodeToString(sum[:])
}

// UserRateLimit limits anonymous clients by IP and User-Agent.
func UserRateLimit(cfg config.Config, store fiber.Storage) fiber.Handler {
	if cfg.RateLimiter.UserLimit <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	userLimiter := limiter.New(limiter.Config{
		Max:               cfg.RateLimiter.UserLimit,
		Expiration:        cfg.RateLimiter.Interval,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           store,
		KeyGenerator:      clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			logging.Warn("Rate limit exceeded", "user", clientKey(c), "path", c.Path())
			return errorJSON(c, fiber.StatusTooManyRequests, "Too Many Requests")
		},
	})
	return func(c *fiber.Ctx) error {
		// Authenticated requests are limited per token instead.
		if token, ok := c.Locals(apiKeyLocal).(string); ok && token != "" {
			return c.Next()
		}
		return userLimiter(c)
	}
}

// RequestLogger logs every incoming request with its request id.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = c.GetRespHeader(fiber.HeaderXRequestID)
		}
		logging.Info("Incoming request", "method", c.Method(), "path", c.Path(), "request_id", requestID)
		return c.Next()
	}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    status,
			"message": msg,
		},
	})
}
