package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"claims-dashboard/internal/adapters/archive"
	"claims-dashboard/internal/adapters/http/middleware"
	"claims-dashboard/internal/adapters/http/routes"
	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/config"
	"claims-dashboard/internal/core/services"
	"claims-dashboard/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "claims-dashboard/docs" // Swagger docs
)

// @title Claims Dashboard API
// @version 1.0
// @description Insurance claims review workflow: import, filter, assign, validate and export claims.

// @contact.name API Support
// @contact.email support@example.com

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger mode is unknown until the config loads
		logger.Must("prod").Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.Must(cfg.AppMode)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	log.Info("configuration loaded",
		zap.String("mode", cfg.AppMode),
		zap.String("dbDriver", cfg.Database.Driver),
		zap.Bool("demo", cfg.DemoMode),
	)

	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to auto migrate", zap.Error(err))
	}
	log.Info("database migration completed")

	if cfg.DemoMode {
		if _, err := config.NewSeeder(db, log).Run(context.Background(), false); err != nil {
			log.Warn("demo seed failed", zap.Error(err))
		}
	}

	archiver, err := archive.New(context.Background(), archive.Options{
		Bucket:    cfg.Upload.Bucket,
		Region:    cfg.Upload.Region,
		Endpoint:  cfg.Upload.Endpoint,
		AccessKey: cfg.Upload.AccessKey,
		SecretKey: cfg.Upload.SecretKey,
	})
	if err != nil {
		log.Fatal("failed to configure upload archive", zap.Error(err))
	}
	if cfg.ArchiveEnabled() {
		log.Info("upload archive enabled", zap.String("bucket", cfg.Upload.Bucket))
	}

	cronService := services.NewCronService(
		repositories.NewRefreshTokenRepository(db),
		cfg.Cron.TokenPurgeSchedule,
		log,
	)
	if err := cronService.Start(); err != nil {
		log.Fatal("failed to start cron", zap.Error(err))
	}
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Claims Dashboard API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		// multipart overhead on top of the largest accepted CSV
		BodyLimit: cfg.UploadLimit() + 1024*1024,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, db, cfg, log, archiver)

	go gracefulShutdown(app, log)

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}
