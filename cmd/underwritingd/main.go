package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/internal/infrastructure/cache"
	"github.com/bibbank/underwriting/internal/infrastructure/config"
	"github.com/bibbank/underwriting/internal/infrastructure/kafka"
	"github.com/bibbank/underwriting/internal/infrastructure/messaging"
	"github.com/bibbank/underwriting/internal/infrastructure/persistence/memory"
	pgRepo "github.com/bibbank/underwriting/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/bibbank/underwriting/internal/presentation/grpc"
	"github.com/bibbank/underwriting/internal/presentation/rest"
	pkgkafka "github.com/bibbank/underwriting/pkg/kafka"
	"github.com/bibbank/underwriting/pkg/observability"
	pkgpostgres "github.com/bibbank/underwriting/pkg/postgres"
	"github.com/bibbank/underwriting/pkg/tlsutil"
)

func main() {
	if err := run(); err != nil {
		slog.Error("underwriting-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting underwriting-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"db_enabled", cfg.DB.Enabled,
		"kafka_enabled", cfg.Kafka.Enabled,
	)

	// Tracing.
	if cfg.Tracing.Endpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush

	allocationMetrics, err := observability.NewAllocationMetrics(meterProvider.Meter(cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("init allocation metrics: %w", err)
	}

	checks := map[string]rest.ReadinessCheck{}

	// Persistence.
	var repo port.AllocationRepository
	if cfg.DB.Enabled {
		pool, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo = pgRepo.NewAllocationRepo(pool)
		checks["postgres"] = func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) }
	} else {
		logger.Warn("database disabled, allocations are kept in memory")
		repo = memory.NewAllocationRepo()
	}

	// Event publishing.
	var publisher port.EventPublisher
	if cfg.Kafka.Enabled {
		producer := pkgkafka.NewProducer(pkgkafka.Config{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.ServiceName,
		})
		defer producer.Close()
		publisher = kafka.NewKafkaEventPublisher(producer, cfg.Kafka.Topic, logger)
	} else {
		publisher = messaging.NewLogEventPublisher(cfg.Kafka.Topic, logger)
	}

	// Result cache.
	var resultCache port.ResultCache
	if cfg.Cache.RedisAddr != "" {
		redisCache := cache.NewRedisResultCache(cfg.Cache.RedisAddr, cfg.Cache.TTL)
		defer redisCache.Close()
		resultCache = redisCache
		checks["redis"] = redisCache.Ping
	} else {
		resultCache = cache.NewMemoryResultCache(cfg.Cache.TTL)
	}

	// Domain services and use cases.
	amortization := service.NewAmortizationEngine()
	dscr := service.NewDSCRCalculator()
	scorer := service.NewRiskScorer()
	engine := service.NewBlanketAllocationEngine(amortization, dscr, scorer)

	defaults := usecase.ConstraintDefaults{
		MinDSCR:              cfg.Allocation.MinDSCR,
		MaxLTVPerProperty:    cfg.Allocation.MaxLTVPerProperty,
		MaxIterations:        cfg.Allocation.MaxIterations,
		ConvergenceTolerance: cfg.Allocation.ConvergenceTolerance,
	}
	allocateUC := usecase.NewAllocateBlanketLoanUseCase(repo, publisher, resultCache, engine,
		allocationMetrics, defaults, logger)
	getUC := usecase.NewGetAllocationUseCase(repo)
	metricsUC := usecase.NewCalculatePropertyMetricsUseCase(amortization, dscr, scorer, cfg.Allocation.MinDSCR)

	// gRPC server.
	grpcHandler := grpcPresentation.NewBlanketLoanHandler(allocateUC, getUC, metricsUC, logger)
	grpcOpts := grpcPresentation.ServerOptions{
		ServiceName: cfg.ServiceName,
		Reflection:  cfg.GRPCReflection,
	}
	if cfg.GRPCTLS.Enabled() {
		creds, err := tlsutil.ServerCredentials(cfg.GRPCTLS.CertFile, cfg.GRPCTLS.KeyFile)
		if err != nil {
			return fmt.Errorf("grpc tls: %w", err)
		}
		grpcOpts.Credentials = creds
		logger.Info("gRPC TLS enabled")
	}
	grpcServer := grpcPresentation.NewServer(grpcHandler, logger, grpcOpts)

	// HTTP server.
	router := rest.NewRouter(
		rest.NewAllocationHandler(allocateUC, getUC, metricsUC, logger),
		rest.NewHealthHandler(cfg.ServiceName, checks, logger),
		metricsHandler,
		logger,
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("underwriting-service stopped")
	return serveErr
}

// connectDatabase opens the pool and applies pending migrations.
func connectDatabase(ctx context.Context, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(dbCfg.DSN(), cfg.DB.MigrationsPath); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return pool, nil
}
