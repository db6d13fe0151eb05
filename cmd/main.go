package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/container-rental/internal/auth"
	"github.com/senyabanana/container-rental/internal/db"
	"github.com/senyabanana/container-rental/internal/handlers"
	"github.com/senyabanana/container-rental/internal/repository"
	"github.com/senyabanana/container-rental/internal/repository/memory"
	"github.com/senyabanana/container-rental/internal/router"
	"github.com/senyabanana/container-rental/internal/router/config"
	"github.com/senyabanana/container-rental/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := logrus.New()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("cannot load config: ", err)
	}
	setupLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, logger, cfg)
	defer closeStore()

	tokens := auth.NewTokenManager(cfg.JWTSecret, tokenTTL)

	requestService := services.NewRequestService(store, logger)
	proposalService := services.NewProposalService(store, logger)
	rentalService := services.NewRentalService(store)

	routes := router.InitRoutes(router.Handlers{
		Auth:      handlers.NewAuthenticator(tokens, logger),
		Requests:  handlers.NewRequestHandler(requestService, logger, cfg.RequestTimeout),
		Proposals: handlers.NewProposalHandler(proposalService, logger, cfg.RequestTimeout),
		Rentals:   handlers.NewRentalHandler(rentalService, logger, cfg.RequestTimeout),
	})

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
		}
	}()

	logger.Infof("server is listening on %s...", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server failed: %v", err)
	}
	logger.Info("server stopped")
}

func setupLogger(logger *logrus.Logger, cfg config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// openStore выбирает хранилище по STORAGE_DRIVER и возвращает функцию его закрытия.
func openStore(ctx context.Context, logger *logrus.Logger, cfg config.Config) (repository.Store, func()) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}
	}

	runDBMigration(logger, cfg.MigrationURL, cfg.DatabaseURL())

	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		logger.Fatalf("error initializing database: %v", err)
	}
	return repository.NewPostgresStore(dbPool), dbPool.Close
}

func runDBMigration(logger *logrus.Logger, migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		logger.Fatal("cannot create a new migrate instance: ", err)
	}
	defer migration.Close()

	if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("failed to run migrate up: ", err)
	}
	logger.Info("db migrated successfully")
}
