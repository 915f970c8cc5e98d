package routes

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/middleware"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Handlers groups the account-level handlers that live outside plugins.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Users  *handlers.UserHandler
	Push   *handlers.PushHandler
	Health *handlers.HealthHandler
}

// NewApp builds the Fiber app with the global middleware chain.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${respHeader:X-Request-ID}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	return app
}

func Setup(app *fiber.App, deps *apps.Deps, h Handlers, plugins []apps.Plugin) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/logout", deps.Auth, h.Auth.Logout)

	api.Get("/users/me", deps.Auth, h.Users.Me)
	api.Patch("/users/me", deps.Auth, h.Users.UpdateMe)
	api.Get("/users", deps.Auth, middleware.AdminRequired(), h.Users.List)
	api.Patch("/users/:id/role", deps.Auth, middleware.AdminRequired(), h.Users.ChangeRole)
	api.Delete("/users/:id", deps.Auth, middleware.AdminRequired(), h.Users.Deactivate)

	api.Get("/push/public-key", h.Push.PublicKey)
	api.Post("/push/subscriptions", deps.Auth, h.Push.Subscribe)
	api.Delete("/push/subscriptions", deps.Auth, h.Push.Unsubscribe)

	for _, p := range plugins {
		p.RegisterRoutes(api, deps)
		slog.Info("module routes registered", "module", p.ID())
	}
}
