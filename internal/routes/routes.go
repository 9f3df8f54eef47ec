package routes

import (
	"time"

	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/gatofitnees/gatofit-backend/internal/handlers"
	"github.com/gatofitnees/gatofit-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis/v3"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Webhook      *handlers.WebhookHandler
	Billing      *handlers.BillingHandler
	Legal        *handlers.LegalHandler
	RemoteConfig *handlers.RemoteConfigHandler
	Routine      *handlers.RoutineHandler
	Workout      *handlers.WorkoutHandler
	Program      *handlers.ProgramHandler
	Food         *handlers.FoodHandler
	Coach        *handlers.CoachHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	store := limiterStorage(cfg)

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           store,
	}))

	api.Get("/health", h.Health.Check)
	api.Get("/config", h.RemoteConfig.GetConfig)
	api.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	api.Get("/legal/terms", h.Legal.TermsOfService)

	// Auth routes are public but carry a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           store,
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/apple", h.Auth.AppleSignIn)

	// Protected auth routes get the middleware per-route so it never
	// shadows the public ones above.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), h.Auth.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), h.Auth.DeleteAccount)

	// Webhooks authenticate via the provider, no JWT
	webhooks := api.Group("/webhooks")
	webhooks.Post("/paypal", h.Webhook.HandlePayPal)
	webhooks.Post("/revenuecat", h.Webhook.HandleRevenueCat)

	// Billing: synchronous checkout verification and status
	billing := api.Group("/billing")
	billing.Post("/verify", middleware.JWTProtected(cfg), h.Billing.Verify)
	billing.Get("/status", middleware.JWTProtected(cfg), h.Billing.GetStatus)

	// Product surface (JWT required)
	p := api.Group("/p", middleware.JWTProtected(cfg))

	routines := p.Group("/routines")
	routines.Post("/", h.Routine.Create)
	routines.Get("/", h.Routine.List)
	routines.Get("/:id", h.Routine.Get)
	routines.Put("/:id", h.Routine.Update)
	routines.Delete("/:id", h.Routine.Delete)

	workouts := p.Group("/workouts")
	workouts.Post("/", h.Workout.Log)
	workouts.Get("/", h.Workout.List)
	workouts.Get("/stats", h.Workout.Stats)
	workouts.Get("/streak", h.Workout.Streak)
	workouts.Get("/:id", h.Workout.Get)
	workouts.Delete("/:id", h.Workout.Delete)

	programs := p.Group("/programs")
	programs.Post("/", h.Program.Create)
	programs.Get("/", h.Program.List)
	programs.Get("/today", h.Program.Today)
	programs.Post("/stop", h.Program.Stop)
	programs.Get("/:id", h.Program.Get)
	programs.Delete("/:id", h.Program.Delete)
	programs.Post("/:id/start", h.Program.Start)

	food := p.Group("/food")
	food.Post("/analyze", h.Food.Analyze)
	food.Get("/", h.Food.List)
	food.Get("/daily", h.Food.DailyTotals)
	food.Delete("/:id", h.Food.Delete)

	coach := p.Group("/coach")
	coach.Post("/chat", h.Coach.Chat)
	coach.Get("/history", h.Coach.History)
	coach.Delete("/history", h.Coach.ClearHistory)

	// Admin (JWT + admin role or allowlisted email)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Put("/config/:key", h.RemoteConfig.SetConfigKey)
	admin.Delete("/config/:key", h.RemoteConfig.DeleteConfigKey)
}

// limiterStorage returns a Redis-backed store when Redis is configured, so
// limits hold across replicas; otherwise the limiter falls back to its
// in-memory default.
func limiterStorage(cfg *config.Config) fiber.Storage {
	if cfg.RedisHost == "" {
		return nil
	}
	return redis.New(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		Database: 0,
	})
}
