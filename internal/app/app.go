package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"imovel-backend/internal/config"
	"imovel-backend/internal/db"
	"imovel-backend/internal/handlers"
	"imovel-backend/internal/logging"
	"imovel-backend/internal/metrics"
	"imovel-backend/internal/services"
	"imovel-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators NewServer wires into routes.
type Deps struct {
	CORSOrigins string
	Users       *services.UserService
	Properties  *services.PropertyService
	Documents   *services.DocumentService
	Registry    *prometheus.Registry
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info")
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Services
	pg := store.NewPostgresStore(pool)
	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, services.NewDenylist())
	userService := services.NewUserService(pg, tokens, services.PasswordVerifier{AllowLegacy: cfg.LegacyHashes}, m)
	propertyService := services.NewPropertyService(pg)
	documentService := services.NewDocumentService(
		&services.HTTPImageFetcher{Timeout: cfg.ImageFetchTimeout, MaxBytes: cfg.ImageMaxBytes},
		services.DocumentOptions{Concurrency: cfg.FetchConcurrency, MaxImages: cfg.MaxImages},
		m,
	)

	app := NewServer(Deps{
		CORSOrigins: cfg.CORSOrigins,
		Users:       userService,
		Properties:  propertyService,
		Documents:   documentService,
		Registry:    reg,
	})

	// Start Server
	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c // Block until signal
	slog.Info("gracefully shutting down")
	if err := app.Shutdown(); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server shutdown complete")
}

// NewServer builds the Fiber app with every route of the service.
func NewServer(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "imovel-backend",
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if d.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	auth := handlers.AuthMiddleware(d.Users)

	// Public Routes
	app.Post("/login", handlers.LoginHandler(d.Users))

	// Protected Routes
	app.Post("/logout", auth, handlers.LogoutHandler(d.Users))
	app.Get("/imovel/:codigo/fotos", auth, handlers.GetPropertyPhotosHandler(d.Properties))
	app.Post("/gerar-pdf", auth, handlers.GeneratePDFHandler(d.Documents))

	// WebSocket Route
	// WSUpgradeMiddleware rejects plain HTTP before the token is checked.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Use("/ws", auth)
	app.Get("/ws/gerar-pdf", handlers.DocumentStreamHandler(d.Documents))

	return app
}
