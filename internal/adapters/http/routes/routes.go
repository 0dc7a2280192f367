package routes

import (
	"time"

	"claims-dashboard/internal/adapters/archive"
	"claims-dashboard/internal/adapters/http/handlers"
	"claims-dashboard/internal/adapters/http/middleware"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/config"
	"claims-dashboard/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger, archiver archive.Archiver) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	claimRepo := repositories.NewClaimRepository(db)
	transitionRepo := repositories.NewClaimTransitionRepository(db)

	// Initialize services
	var automation *services.Automation
	if cfg.DemoMode {
		automation = services.NewAutomation(nil)
	}
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg, log)
	userService := services.NewUserService(userRepo, log)
	claimService := services.NewClaimService(claimRepo, transitionRepo, userRepo, log)
	importService := services.NewImportService(claimRepo, archiver, automation, log)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	claimHandler := handlers.NewClaimHandler(claimService)
	uploadHandler := handlers.NewUploadHandler(importService, int64(cfg.UploadLimit()))
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)

	// Everything below requires a valid access token
	auth := middleware.AuthMiddleware(cfg)
	setupClaimRoutes(apiV1, auth, claimHandler, uploadHandler)
	setupUserRoutes(apiV1.Group("/users", auth), userHandler)
	apiV1.Get("/dashboard", auth, middleware.NoCacheHeaders(), dashboardHandler.GetSummary)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, cfg *config.Config) {
	router.Post("/login", middleware.AuthRateLimiter(), h.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), h.RefreshToken)
	router.Post("/logout", h.Logout)

	router.Get("/me", middleware.AuthMiddleware(cfg), h.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), h.LogoutAll)
}

// setupClaimRoutes configures claim, provider and upload routes
func setupClaimRoutes(router fiber.Router, auth fiber.Handler, h *handlers.ClaimHandler, upload *handlers.UploadHandler) {
	claims := router.Group("/claims", auth, middleware.NoCacheHeaders())

	// Static paths must precede /:id
	claims.Get("/export", h.Export)
	claims.Post("/bulk-assign", h.BulkAssign)

	claims.Get("/", h.List)
	claims.Post("/", h.Create)
	claims.Get("/:id", h.Get)
	claims.Patch("/:id", h.Update)
	claims.Delete("/:id", h.Delete)
	claims.Put("/:id/stage", h.AdvanceStage)
	claims.Get("/:id/history", h.History)
	claims.Get("/:id/template", h.Template)

	router.Get("/providers", auth, middleware.PrivateCacheHeaders(5*time.Minute), h.Providers)
	router.Post("/upload", auth, middleware.UploadRateLimiter(), upload.Upload)
}

// setupUserRoutes configures user routes
func setupUserRoutes(router fiber.Router, h *handlers.UserHandler) {
	router.Get("/", h.ListUsers)
	router.Post("/", middleware.AdminOnly(), h.CreateUser)
}
