// Command searchd runs the document search HTTP service.
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

	"github.com/docsearch-labs/docsearch/internal/analytics"
	"github.com/docsearch-labs/docsearch/internal/analyzer"
	"github.com/docsearch-labs/docsearch/internal/engine"
	"github.com/docsearch-labs/docsearch/internal/ingest"
	"github.com/docsearch-labs/docsearch/internal/persist"
	"github.com/docsearch-labs/docsearch/internal/searcher/cache"
	"github.com/docsearch-labs/docsearch/internal/server"
	"github.com/docsearch-labs/docsearch/pkg/config"
	"github.com/docsearch-labs/docsearch/pkg/health"
	"github.com/docsearch-labs/docsearch/pkg/logger"
	"github.com/docsearch-labs/docsearch/pkg/metrics"
	"github.com/docsearch-labs/docsearch/pkg/middleware"
	"github.com/docsearch-labs/docsearch/pkg/postgres"
	pkgredis "github.com/docsearch-labs/docsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("searchd")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := buildEngine(cfg, log)
	if err != nil {
		log.Error("engine startup failed", "error", err)
		os.Exit(1)
	}
	loader := ingest.NewLoader(eng, cfg.Ingest.Extensions)

	m := metrics.New()
	checker := health.NewChecker()
	checker.Register("engine", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp}
	})

	opts := server.Options{Metrics: m}

	var redisClient *pkgredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, query cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer redisClient.Close()
			opts.Cache = cache.New(redisClient, cfg.Redis.CacheTTL)
			checker.Register("redis", redisCheck(redisClient))
			log.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Analytics.Enabled {
		collector = analytics.NewCollector(cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()
		opts.Collector = collector

		if cfg.Postgres.Enabled {
			pgClient, err := postgres.New(cfg.Postgres)
			if err != nil {
				log.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
			} else {
				defer pgClient.Close()
				snapStore, err := analytics.NewSnapshotStore(ctx, pgClient)
				if err != nil {
					log.Warn("snapshot store init failed", "error", err)
				} else {
					snapStore.StartSnapshotLoop(ctx, collector, cfg.Analytics.SnapshotInterval)
					checker.Register("postgres", postgresCheck(pgClient))
					log.Info("analytics snapshots enabled", "interval", cfg.Analytics.SnapshotInterval)
				}
			}
		}
	}

	handler := server.New(eng, loader, cfg, opts)
	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("GET /healthz", checker.LiveHandler())
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())

	var root http.Handler = mux
	root = middleware.Metrics(m)(root)
	root = middleware.RequestID(root)
	root = middleware.Timeout(cfg.Server.WriteTimeout)(root)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "error", err)
	}
	if metricsShutdown != nil {
		if err := metricsShutdown(shutdownCtx); err != nil {
			log.Error("metrics shutdown error", "error", err)
		}
	}
	if cfg.Engine.IndexFile != "" {
		if err := eng.Save(cfg.Engine.IndexFile); err != nil {
			log.Error("final index save failed", "error", err)
		}
	}
	log.Info("shutdown complete")
}

// buildEngine constructs the engine from config and loads any existing index
// snapshot. A corrupt snapshot is fatal; a missing one is not.
func buildEngine(cfg *config.Config, log *slog.Logger) (*engine.Engine, error) {
	var an *analyzer.Analyzer
	if cfg.Engine.StopwordsFile != "" {
		stopwords, err := analyzer.LoadStopwords(cfg.Engine.StopwordsFile)
		if err != nil {
			return nil, fmt.Errorf("loading stopwords: %w", err)
		}
		an = analyzer.New(stopwords)
		log.Info("custom stopwords loaded", "path", cfg.Engine.StopwordsFile, "count", len(stopwords))
	} else {
		an = analyzer.New(nil)
	}

	eng := engine.New(an)
	if cfg.Engine.IndexFile != "" && persist.Exists(cfg.Engine.IndexFile) {
		if err := eng.Load(cfg.Engine.IndexFile); err != nil {
			return nil, err
		}
	}
	return eng, nil
}

func redisCheck(client *pkgredis.Client) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		if err := client.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	}
}

func postgresCheck(client *postgres.Client) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.DB.PingContext(pingCtx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	}
}
