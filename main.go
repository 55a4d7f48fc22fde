package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"toko/internal/config"
	"toko/internal/database"
	"toko/internal/handlers"
	"toko/internal/logger"
	"toko/internal/middleware"
	"toko/internal/repositories"
	"toko/internal/services"
	"toko/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("err", err))
		os.Exit(1)
	}

	logger.New(logger.Options{Service: "toko", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if cfg.InsecureSecret {
		slog.Warn("JWT_SECRET is not set, signing sessions with the development secret")
	}

	srv, err := newApplication(cfg)
	if err != nil {
		slog.Error("failed to initialize application", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			slog.Error("failed to release resources", slog.Any("err", err))
		}
	}()

	if cfg.SeedSampleData {
		if _, err := srv.catalog.LoadSamples(context.Background()); err != nil {
			slog.Error("failed to load sample catalog", slog.Any("err", err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("addr", cfg.AppPort))
		serverErr <- srv.http.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			slog.Error("server failed", slog.Any("err", err))
		}
		return
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if err := srv.http.ShutdownWithTimeout(shutdownTimeout); err != nil {
		slog.Error("error during shutdown", slog.Any("err", err))
	}
	slog.Info("server gracefully stopped")
}

// application is the wired HTTP app together with the resources it owns.
type application struct {
	http    *fiber.App
	catalog *services.CatalogLoader
	closers []func() error
}

// newApplication builds stores, services and routes for cfg.
func newApplication(cfg config.Config) (*application, error) {
	a := &application{}

	var (
		userRepo    repositories.UserRepository
		productRepo repositories.ProductRepository
		cartRepo    repositories.CartRepository
		db          *gorm.DB
	)
	switch cfg.DBDriver {
	case "memory":
		userRepo = repositories.NewMockUserRepository()
		productRepo = repositories.NewMockProductRepository()
		cartRepo = repositories.NewMockCartRepository()
	default:
		var err error
		db, err = database.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })
		userRepo = repositories.NewGORMUserRepository(db)
		productRepo = repositories.NewGORMProductRepository(db)
		cartRepo = repositories.NewGORMCartRepository(db)
	}

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			// Cart events are optional.
			slog.Warn("cart events disabled", slog.Any("err", err))
		} else {
			events = mqClient
			a.closers = append(a.closers, mqClient.Close)
		}
	}

	authService := services.NewAuthService(userRepo, services.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.SessionTTL,
		StoreTimeout: cfg.StoreTimeout,
	})
	productService := services.NewProductService(productRepo, cfg.StoreTimeout)
	cartService := services.NewCartService(cartRepo, productRepo, events, cfg.StoreTimeout)
	a.catalog = services.NewCatalogLoader(productRepo, cfg.StoreTimeout)

	app := fiber.New(fiber.Config{
		AppName:      "toko",
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", healthHandler(db))

	api := app.Group("/api")
	requireSession := middleware.SessionRequired(authService, cfg.CookieName)

	handlers.NewAuthHandler(authService, handlers.SessionCookie{
		Name:   cfg.CookieName,
		Secure: cfg.IsProduction(),
	}).RegisterRoutes(api, requireSession)
	handlers.NewProductHandler(productService).RegisterRoutes(api)
	handlers.NewCartHandler(cartService).RegisterRoutes(api, requireSession)
	handlers.NewCatalogHandler(a.catalog).RegisterRoutes(api)

	a.http = app
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if db != nil {
			if err := pingDatabase(c.UserContext(), db); err != nil {
				slog.Error("health check failed", slog.Any("err", err))
				status["status"] = "unhealthy"
				return c.Status(fiber.StatusServiceUnavailable).JSON(status)
			}
		}
		return c.JSON(status)
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
