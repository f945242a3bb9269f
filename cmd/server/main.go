package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/thorrester/cardstore/internal/adapters/primary/http/handlers"
	"github.com/thorrester/cardstore/internal/adapters/primary/http/middleware"
	"github.com/thorrester/cardstore/internal/adapters/secondary/apiproxy"
	"github.com/thorrester/cardstore/internal/adapters/secondary/gcs"
	"github.com/thorrester/cardstore/internal/adapters/secondary/localfs"
	"github.com/thorrester/cardstore/internal/adapters/secondary/onnx"
	"github.com/thorrester/cardstore/internal/adapters/secondary/postgres"
	"github.com/thorrester/cardstore/internal/config"
	"github.com/thorrester/cardstore/internal/core/codec"
	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
	"github.com/thorrester/cardstore/internal/core/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	backend, err := newStorageBackend(context.Background(), cfg)
	if err != nil {
		log.Fatalf("create storage backend: %v", err)
	}
	log.WithField("type", cfg.Storage.Type).Info("storage backend initialized")

	// Secondary adapters
	store := postgres.NewCardRecordStore(pool)

	// Core wiring: one codec registry and saver/loader set shared by every
	// table registry.
	codecs := codec.NewRegistry()
	savers := registry.NewSaverSet(codecs, backend, onnx.Unavailable{})
	loaders := registry.NewLoaderSet(codecs, backend)

	registries := make(map[domain.CardType]*registry.Registry, len(domain.Tables))
	for cardType, table := range domain.Tables {
		registries[cardType] = registry.New(table, store, savers, loaders)
	}

	// Primary adapter
	h := handlers.New(registries, backend)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func newStorageBackend(ctx context.Context, cfg *config.Config) (ports.StorageBackend, error) {
	switch cfg.Storage.Type {
	case "local":
		return localfs.New(cfg.Storage.LocalDir)
	case "gcs":
		return gcs.New(ctx, cfg.Storage.Bucket)
	case "api":
		return apiproxy.New(cfg.Storage.ProxyURL, cfg.Storage.Timeout)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
