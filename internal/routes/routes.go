package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/kmed-health/kmed-backend/internal/config"
	"github.com/kmed-health/kmed-backend/internal/handlers"
	"github.com/kmed-health/kmed-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)

	auth := app.Group("/auth")

	// Login-specific rate limit: 10 req/min per IP
	auth.Post("/login", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), authHandler.Login)

	auth.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)
}
