package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/api/server"
	"github.com/xp-network/xpnet-go/internal/api/shared/executor"
	"github.com/xp-network/xpnet-go/internal/config"
	"github.com/xp-network/xpnet-go/internal/factory"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/metrics"
	"github.com/xp-network/xpnet-go/internal/nftlist"
	"github.com/xp-network/xpnet-go/internal/providers/jetstream"
	"github.com/xp-network/xpnet-go/internal/ratelimit"
	"github.com/xp-network/xpnet-go/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadBridgeAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "xpnet-bridge-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting XP.network bridge API")

	// Chain backend clients, throttled per endpoint when configured
	deps := factory.Deps{
		Dialer: adapter.NewEthClientDialer(),
		HTTP:   adapter.NewHTTPClient(cfg.HTTPTimeout),
	}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiters, err := ratelimit.New(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			MaxQueueTime:      cfg.RateLimit.MaxQueueTime,
		})
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create rate limiter", zap.Error(err))
		}
		deps.Dialer = ratelimit.NewEthClientDialer(deps.Dialer, limiters)
		deps.HTTP = ratelimit.NewHTTPClient(deps.HTTP, limiters)
	}
	opts := []factory.Option{factory.WithDeps(deps)}

	// Transfer journal
	var journal store.Store
	if cfg.Database.Enabled() {
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
		}

		if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
			logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to database",
			zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
			zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
		)

		journal = store.NewPGStore(db)
		opts = append(opts, factory.WithJournal(journal))
	} else {
		logger.WarnCtx(ctx, "Database not configured, transfers will not be journaled")
	}

	// Transfer notifications
	if cfg.NATS.URL != "" {
		publisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), adapter.NewJSON())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
		opts = append(opts, factory.WithPublisher(publisher))
	}

	// NFT list indexer
	if cfg.NftList.URL != "" {
		opts = append(opts, factory.WithLister(nftlist.NewClient(cfg.NftList.URL, adapter.NewHTTPClient(cfg.NftList.Timeout))))
	} else {
		logger.WarnCtx(ctx, "NFT list indexer not configured, nft listing is disabled")
	}

	// Metrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		recorder, err := metrics.NewPrometheusRecorder(reg)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to register metrics", zap.Error(err))
		}
		opts = append(opts, factory.WithRecorder(recorder))
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	bridge := factory.New(cfg.Chains, opts...)
	defer bridge.Close()

	srv := server.New(server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsPath:    cfg.Metrics.Path,
		MetricsHandler: metricsHandler,
	}, executor.NewExecutor(bridge, journal))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// ctx is already canceled
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Bridge API stopped")
}
