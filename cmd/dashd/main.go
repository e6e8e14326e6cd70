package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	natsio "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/data-ashita/monitor-dash/internal/cache"
	"github.com/data-ashita/monitor-dash/internal/config"
	"github.com/data-ashita/monitor-dash/internal/handlers"
	"github.com/data-ashita/monitor-dash/internal/logging"
	"github.com/data-ashita/monitor-dash/internal/middleware"
	dashnats "github.com/data-ashita/monitor-dash/internal/nats"
	"github.com/data-ashita/monitor-dash/internal/server"
	"github.com/data-ashita/monitor-dash/internal/service"
	"github.com/data-ashita/monitor-dash/internal/store"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("dashd"))
	logging.SetDefault(logger)

	slog.Info("Starting dashboard service",
		slog.Int("port", cfg.Server.Port),
		slog.String("store", cfg.Store.Backend),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	if *addr != "" {
		listenAddr = *addr
	}

	// Run DB migrations for the Postgres backend
	if cfg.Store.Backend == store.BackendPostgres && cfg.Store.Migrate && cfg.Store.DatabaseURL != "" {
		slog.Info("Running database migrations")
		m, err := migrate.New("file://migrations", cfg.Store.DatabaseURL)
		if err != nil {
			slog.Error("Failed to initialize migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			slog.Error("Failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("Database migrations completed")
	}

	eventStore, err := buildStore(cfg)
	if err != nil {
		slog.Error("Failed to create event store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer eventStore.Close()
	slog.Info("Connected to event store", slog.String("backend", cfg.Store.Backend))

	// Snapshot cache (optional - service recomputes on every request without it)
	var snapshotCache cache.SnapshotCache = cache.Noop{}
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			slog.Warn("Failed to connect to Redis (continuing without cache)",
				slog.String("addr", cfg.Cache.Addr),
				slog.String("error", err.Error()))
		} else {
			snapshotCache = cache.NewRedisCache(redisClient, cfg.Cache.TTL())
			defer redisClient.Close()
			slog.Info("Snapshot cache enabled",
				slog.String("addr", cfg.Cache.Addr),
				slog.Duration("ttl", cfg.Cache.TTL()))
		}
	} else {
		slog.Info("Snapshot cache disabled")
	}

	// NATS messaging (optional - service works without it)
	var notifier service.Notifier
	var natsConn *natsio.Conn
	if cfg.NATS.Enabled {
		natsConn, err = natsio.Connect(cfg.NATS.URL,
			natsio.Name("dashd"),
			natsio.MaxReconnects(cfg.NATS.MaxReconnects),
			natsio.ReconnectWait(cfg.NATS.ReconnectWaitDuration()),
			natsio.Timeout(5*time.Second),
		)
		if err != nil {
			slog.Warn("Failed to connect to NATS (continuing without NATS)",
				slog.String("url", cfg.NATS.URL),
				slog.String("error", err.Error()))
		} else {
			slog.Info("Connected to NATS", slog.String("url", cfg.NATS.URL))
			notifier = dashnats.NewPublisher(natsConn)
		}
	} else {
		slog.Info("NATS messaging disabled")
	}

	svc := service.NewDashboardService(eventStore, snapshotCache, notifier, logger, service.Info{
		Version:      version,
		Store:        cfg.Store.Backend,
		CacheEnabled: cfg.Cache.Enabled,
	})
	h := handlers.New(svc)

	var natsHandler *dashnats.Handler
	if natsConn != nil {
		natsHandler = dashnats.NewHandler(natsConn, svc, logger)
		if err := natsHandler.Start(context.Background()); err != nil {
			slog.Warn("Failed to start NATS handler", slog.String("error", err.Error()))
			natsHandler = nil
		}
	}

	srv := &http.Server{
		Addr: listenAddr,
		Handler: server.NewRouter(h, middleware.CORSConfig{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		}),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("dashboard service listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCtx.Done()
	log.Println("shutdown signal received")

	// Stop NATS handler first
	if natsHandler != nil {
		log.Println("stopping NATS handler")
		if err := natsHandler.Stop(); err != nil {
			log.Printf("NATS handler shutdown error: %v", err)
		}
	}
	if natsConn != nil {
		natsConn.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func buildStore(cfg *config.Config) (store.EventStore, error) {
	switch cfg.Store.Backend {
	case store.BackendPostgres:
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("store.database_url is required for the postgres backend")
		}
		return store.NewPostgresStore(context.Background(), cfg.Store.DatabaseURL)
	case store.BackendOpenSearch:
		return store.NewOpenSearchStore(store.OpenSearchConfig{
			URL:      cfg.OpenSearch.URL,
			Username: cfg.OpenSearch.Username,
			Password: cfg.OpenSearch.Password,
			Insecure: cfg.OpenSearch.Insecure,
			Index:    cfg.OpenSearch.Index,
		})
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}
}
