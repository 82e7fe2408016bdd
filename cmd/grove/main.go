package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/grovekeep/grove/pkg/config"
	"github.com/grovekeep/grove/pkg/errx"
	"github.com/grovekeep/grove/pkg/logx"
)

func main() {
	// 1. Initialize Logger
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))

	logx.Info("🌳 Starting Grove Ingestion Server...")

	// 2. Load Configuration
	cfg := config.Load()

	// 3. Initialize Dependency Container
	container := NewContainer(cfg)
	defer container.Cleanup()

	// 4. Create Fiber App
	app := fiber.New(fiber.Config{
		AppName:               "Grove Ingestion API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             cfg.Server.BodyLimit,
	})

	// 5. Global Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-API-Key, X-Request-ID",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 6. Health Check
	app.Get("/health", healthCheckHandler(container))

	// 7. Register Routes
	container.IngestHandlers.RegisterRoutes(app)
	logx.Info("✓ Webhook routes registered")

	container.OutboxHandlers.RegisterRoutes(app)
	logx.Info("✓ Outbox routes registered")

	// 8. 404 Handler
	app.Use(notFoundHandler)

	// 9. Background Services
	container.StartBackgroundServices()

	// 10. Start Server with Graceful Shutdown
	startServer(app, cfg.Server.Port)
}

// ============================================================================
// Handler Functions
// ============================================================================

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "grove-ingestion",
		}

		if err := container.DB.Ping(); err != nil {
			health["db"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["db"] = "healthy"
		}

		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := container.Redis.Ping(ctx).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["redis"] = "healthy"
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Error Handler
// ============================================================================

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": c.Get("X-Request-ID"),
		"user_agent": c.Get("User-Agent"),
	}).Errorf("Request error: %v", err)

	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error":      e.Message,
			"code":       "FIBER_ERROR",
			"status":     e.Code,
			"request_id": c.Get("X-Request-ID"),
		})
	}

	if e, ok := err.(*errx.Error); ok {
		response := fiber.Map{
			"error":      e.Message,
			"code":       e.Code,
			"type":       string(e.Type),
			"status":     e.HTTPStatus,
			"request_id": c.Get("X-Request-ID"),
		}
		if len(e.Details) > 0 {
			response["details"] = e.Details
		}
		return c.Status(e.HTTPStatus).JSON(response)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":      "Internal Server Error",
		"type":       "INTERNAL",
		"code":       "INTERNAL_ERROR",
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Server Lifecycle
// ============================================================================

func startServer(app *fiber.App, port string) {
	go func() {
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
