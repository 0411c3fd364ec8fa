package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/qboxhq/qbox/internal/config"
	"github.com/qboxhq/qbox/internal/handlers"
	"github.com/qboxhq/qbox/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	questionHandler *handlers.QuestionHandler,
	reportHandler *handlers.ReportHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP. The domain rate limit on
	// question submission (per receiver+IP) lives in the abuse engine.
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Account
	api.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Put("/me", middleware.JWTProtected(cfg), authHandler.UpdateMe)

	// Public content
	api.Get("/feed", questionHandler.Feed)
	api.Get("/users/:username", questionHandler.Profile)
	api.Get("/users/:username/answers/:public_id", questionHandler.Permalink)

	// Question submission and answer reporting are open to anonymous
	// visitors; an authenticated actor is still recorded when present.
	api.Post("/users/:username/questions", middleware.OptionalJWT(cfg), questionHandler.Ask)
	api.Post("/answers/:id/report", middleware.OptionalJWT(cfg), reportHandler.Create)

	// Receiver-only question operations
	api.Get("/questions/inbox", middleware.JWTProtected(cfg), questionHandler.Inbox)
	api.Post("/questions/:id/answer", middleware.JWTProtected(cfg), questionHandler.Answer)
	api.Post("/questions/:id/moderate", middleware.JWTProtected(cfg), questionHandler.Moderate)

	// Admin moderation surface
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/moderation", adminHandler.Moderation)
	admin.Post("/reports/:id/resolve", adminHandler.ResolveReport)
	admin.Post("/blocks", adminHandler.CreateBlock)
	admin.Post("/blocks/:id/deactivate", adminHandler.DeactivateBlock)
}
