package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkpoint-registry-service/internal/adapters/primary/http/handlers"
	"checkpoint-registry-service/internal/adapters/primary/http/middleware"
	"checkpoint-registry-service/internal/adapters/secondary/hostdir"
	"checkpoint-registry-service/internal/adapters/secondary/hub"
	"checkpoint-registry-service/internal/adapters/secondary/localfs"
	"checkpoint-registry-service/internal/adapters/secondary/postgres"
	"checkpoint-registry-service/internal/adapters/secondary/rediscache"
	"checkpoint-registry-service/internal/config"
	ports "checkpoint-registry-service/internal/core/ports/output"
	"checkpoint-registry-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Secondary adapters
	checkpointRepo := postgres.NewCheckpointRepository(pool)
	jobRepo := postgres.NewSnapshotJobRepository(pool)
	installRepo := postgres.NewInstallRepository(pool)

	hubClient := hub.NewClient(cfg.Hub.Endpoint, cfg.Hub.Token, cfg.Hub.Timeout)
	checkpointStore := localfs.NewStore()
	hostStore := hostdir.NewStore(cfg.Host.PluginDir)

	// Redis cache (optional - based on config)
	var repoInfoCache ports.RepoInfoCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warnf("redis ping failed (continuing without metadata cache): %v", err)
		} else {
			repoInfoCache = rediscache.NewRepoInfoCache(rdb, cfg.Redis.TTL)
			log.Info("redis metadata cache initialized")
		}
	} else {
		log.Info("redis metadata cache disabled")
	}

	// Core services
	checkpointSvc := services.NewCheckpointService(checkpointRepo, jobRepo, checkpointStore, cfg.Sync.BaseDir)
	snapshotSvc := services.NewSnapshotService(checkpointRepo, jobRepo, hubClient, repoInfoCache, checkpointStore, cfg.Sync.Concurrency)
	installSvc := services.NewInstallService(installRepo, checkpointRepo, hostStore, cfg.Host.Method)

	// Plugin directory watcher (optional - based on config)
	var watcher *hostdir.Watcher
	if cfg.Host.WatchEnabled && cfg.Host.PluginDir != "" {
		w, err := hostdir.NewWatcher(cfg.Host.PluginDir, cfg.Host.Debounce, func() {
			if err := installSvc.VerifyAll(context.Background()); err != nil {
				log.WithError(err).Warn("install verification sweep failed")
			}
		})
		if err != nil {
			log.Warnf("plugin dir watcher init failed (continuing without watch): %v", err)
		} else if err := w.Start(); err != nil {
			log.Warnf("plugin dir watcher start failed (continuing without watch): %v", err)
		} else {
			watcher = w
			log.Infof("watching plugin dir %s", cfg.Host.PluginDir)
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	// Primary adapter (HTTP handlers)
	h := handlers.New(checkpointSvc, snapshotSvc, installSvc)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/checkpoint-registry")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
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

	// Stop in-flight snapshot jobs before the pool closes.
	snapshotSvc.Close()

	log.Info("server stopped")
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
