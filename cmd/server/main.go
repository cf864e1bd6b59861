package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-tailorshop/internal/config"
	"github.com/diewo77/go-tailorshop/internal/db"
	"github.com/diewo77/go-tailorshop/internal/logging"
	"github.com/diewo77/go-tailorshop/internal/notify"
	"github.com/diewo77/go-tailorshop/internal/sequence"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Init("tailorshop", logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})

	dbConn, err := db.Connect(cfg.Database, log)
	if err != nil {
		fatal(log, "Failed to connect to database", err)
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn, log); err != nil {
			fatal(log, "Migration failed", err)
		}
		log.Info("Migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			fatal(log, "Seeding failed", err)
		}
		log.Info("Seeding completed successfully")
		return
	}

	// sqlite has no SQL migrations and is always auto-migrated
	if cfg.App.Migrations || cfg.Database.Driver == config.DriverSQLite {
		if err := migrate(cfg, dbConn, log); err != nil {
			fatal(log, "Migration failed", err)
		}
		log.Info("Migrations completed")
	}

	if err := db.Seed(dbConn); err != nil {
		fatal(log, "Seeding failed", err)
	}

	ctx := context.Background()
	alloc, closeAlloc, err := newAllocator(ctx, cfg, dbConn)
	if err != nil {
		fatal(log, "Sequence backend unavailable", err)
	}
	defer closeAlloc()
	if err := applySequenceStart(ctx, cfg, alloc); err != nil {
		fatal(log, "Seeding invoice sequence failed", err)
	}

	pub, closePub := newPublisher(cfg, log)
	defer closePub()

	appHandler := NewApp(dbConn, NewFulfillment(cfg, dbConn, alloc, pub), log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev,
			"db_driver", cfg.Database.Driver, "sequence_backend", cfg.Sequence.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "Server error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "err", err)
	}
	log.Info("Server stopped gracefully")
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}

// migrate applies the embedded SQL migrations on postgres and gorm
// AutoMigrate elsewhere.
func migrate(cfg *config.Config, conn *gorm.DB, log *slog.Logger) error {
	if cfg.Database.Driver == config.DriverPostgres {
		return db.RunSQLMigrations(cfg.Database.URL(), log)
	}
	return db.Migrate(conn)
}

func newAllocator(ctx context.Context, cfg *config.Config, conn *gorm.DB) (sequence.Allocator, func(), error) {
	if cfg.Sequence.Backend != config.SequenceBackendRedis {
		return sequence.NewGormAllocator(conn), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}
	return sequence.NewRedisAllocator(rdb), func() { _ = rdb.Close() }, nil
}

// newPublisher connects to RabbitMQ when configured. Notifications are only
// logged when the broker is not configured or unreachable.
func newPublisher(cfg *config.Config, log *slog.Logger) (notify.Publisher, func()) {
	fallback := notify.NewLogPublisher(logging.New("notify"))
	if cfg.Rabbit.URL == "" {
		return fallback, func() {}
	}
	pub, closeFn, err := notify.Dial(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
	if err != nil {
		log.Warn("RabbitMQ unavailable, notifications will only be logged", "err", err)
		return fallback, func() {}
	}
	return pub, func() { _ = closeFn() }
}
