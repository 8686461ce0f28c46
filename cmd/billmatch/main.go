package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/billmatch/internal/config"
	dbRedis "github.com/kailas-cloud/billmatch/internal/db/redis"
	"github.com/kailas-cloud/billmatch/internal/db/sqldb"
	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
	logpkg "github.com/kailas-cloud/billmatch/internal/logger"
	"github.com/kailas-cloud/billmatch/internal/metrics"
	warehouserepo "github.com/kailas-cloud/billmatch/internal/repository/warehouse"
	chiTransport "github.com/kailas-cloud/billmatch/internal/transport/chi"
	combinationuc "github.com/kailas-cloud/billmatch/internal/usecase/combination"
	healthuc "github.com/kailas-cloud/billmatch/internal/usecase/health"
	warehouseuc "github.com/kailas-cloud/billmatch/internal/usecase/warehouse"
	"github.com/kailas-cloud/billmatch/internal/version"
)

func main() {
	env := config.GetEnv()

	// .env is a local convenience; prod takes its settings from the environment.
	if env != "prod" {
		_ = godotenv.Load()
	}

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting billmatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()
	wh, err := openWarehouse(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open warehouse storage", zap.Error(err))
	}
	defer wh.close()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := wh.waitForReady(ctx, readiness); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterCombinationMetrics()

	searchDefaults := domcomb.Options{
		MaxItems:        cfg.Search.MaxItems,
		MaxResults:      cfg.Search.MaxResults,
		MaxSteps:        cfg.Search.MaxSteps,
		TimeBudget:      cfg.Search.TimeBudget(),
		SkipZeroAmounts: *cfg.Search.SkipZeroAmounts,
	}
	combinationSvc := combinationuc.New(wh.repo, searchDefaults)
	warehouseSvc := warehouseuc.New(wh.repo, nil)
	healthSvc := healthuc.New(wh.pinger, cfg.Database.Driver, 0)

	server := chiTransport.NewServer(combinationSvc, warehouseSvc, healthSvc, logger).
		WithDefaultTolerance(cfg.Search.Tolerance())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// warehouseRepo is what both use cases need from storage.
type warehouseRepo interface {
	warehouseuc.Repository
	combinationuc.BillLister
}

type warehouse struct {
	repo         warehouseRepo
	pinger       healthuc.DBPinger
	waitForReady func(ctx context.Context, timeout time.Duration) error
	close        func()
}

// openWarehouse picks the storage backend for the configured driver.
func openWarehouse(ctx context.Context, cfg *config.DatabaseConfig) (*warehouse, error) {
	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, err
		}
		return &warehouse{
			repo:         warehouserepo.NewHashRepo(store, cfg.KeyPrefix),
			pinger:       store,
			waitForReady: store.WaitForReady,
			close:        store.Close,
		}, nil

	case config.DriverPostgres, config.DriverSQLite:
		conn, err := sqldb.Open(ctx, sqldb.Config{
			Driver:       cfg.Driver,
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
		})
		if err != nil {
			return nil, err
		}
		return &warehouse{
			repo:         warehouserepo.NewSQLRepo(conn),
			pinger:       conn,
			waitForReady: conn.WaitForReady,
			close:        func() { _ = conn.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
