package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/localnerve/lp-docdb/internal/config"
	"github.com/localnerve/lp-docdb/internal/database"
	"github.com/localnerve/lp-docdb/internal/handlers"
	"github.com/localnerve/lp-docdb/internal/middleware"
	"github.com/localnerve/lp-docdb/internal/services"
)

func main() {
	// Best effort; environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Connect to the learning database
	learningDB, err := database.Connect(ctx, cfg, cfg.LearningDB)
	if err != nil {
		log.Fatalf("Failed to connect to learning database: %v", err)
	}
	defer database.Close(ctx, learningDB)

	// The prefs schema lives in a separate database on the same deployment
	prefsDB := &database.Handle{
		Client: learningDB.Client,
		DB:     learningDB.Client.Database(cfg.PrefsDB),
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("lp-docdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Health endpoint
	app.Get("/healthz", func(c *fiber.Ctx) error {
		result := services.HealthCheck(c.Context(), cfg, learningDB)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	analyticsHandler := &handlers.AnalyticsHandler{DB: learningDB.DB}
	catalogHandler := &handlers.CatalogHandler{DB: learningDB.DB}
	prefsHandler := &handlers.PrefsHandler{DB: prefsDB.DB}

	// Analytics routes
	analytics := api.Group("/analytics")
	analytics.Get("/engagement", analyticsHandler.GetEngagement)
	analytics.Get("/timeline/:email", analyticsHandler.GetTimeline)

	// Catalog routes
	catalog := api.Group("/catalog")
	catalog.Get("/modules", catalogHandler.GetModules)
	catalog.Get("/modules/:name/lessons", catalogHandler.GetModuleLessons)

	// Preference routes
	prefs := api.Group("/prefs")
	prefs.Get("/:email", prefsHandler.GetPreferences)
	prefs.Get("/:email/history/:key", prefsHandler.GetHistory)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
