// Command seed loads a product catalog CSV export into the configured
// database. It does nothing when the catalog already has products.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"toko/internal/config"
	"toko/internal/database"
	"toko/internal/logger"
	"toko/internal/repositories"
	"toko/internal/services"
)

func main() {
	file := flag.String("file", "data/myntra_products_catalog.csv", "path of the catalog CSV")
	timeout := flag.Duration("timeout", 5*time.Minute, "upper bound for the whole load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("err", err))
		os.Exit(1)
	}
	logger.New(logger.Options{Service: "toko-seed", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := run(cfg, *file, *timeout); err != nil {
		slog.Error("seeding failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, file string, timeout time.Duration) error {
	if cfg.DBDriver == "memory" {
		return errors.New("seeding an in-memory store has no effect; set DB_DRIVER to sqlite or postgres")
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer database.Close(db)

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	loader := services.NewCatalogLoader(repositories.NewGORMProductRepository(db), cfg.StoreTimeout)
	inserted, err := loader.LoadCSV(ctx, f)
	if err != nil {
		return err
	}
	if inserted == 0 {
		slog.Info("products already seeded, skipping")
		return nil
	}
	slog.Info("seeded products", slog.Int("count", inserted), slog.String("file", file))
	return nil
}
