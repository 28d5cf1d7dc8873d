package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"onethy/config"
	controller "onethy/controllers"
	"onethy/middleware"
	"onethy/routes"
	"onethy/utils"
	"onethy/worker"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	utils.SetupLogger(config.AppConfig.LogLevel, config.AppConfig.IsProduction())
	logger := utils.Logger("main")

	if err := utils.InitSentry(config.AppConfig.SentryDSN, config.AppConfig.Environment); err != nil {
		logger.WithError(err).Warn("Sentry initialization failed")
	}
	defer sentry.Flush(2 * time.Second)

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "onethy",
		ErrorHandler: controller.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(middleware.CORS(middleware.DefaultCORSConfig(config.AppConfig.AllowedOrigins...)))
	app.Use(middleware.Metrics())

	// Start the campaign scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler := worker.NewCampaignScheduler(config.DB, time.Duration(config.AppConfig.CampaignScanMinutes)*time.Minute)
	go scheduler.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logger.Infof("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
