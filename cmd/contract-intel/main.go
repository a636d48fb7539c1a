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

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AryaKesharwani/erp-next-contract/config"
	"github.com/AryaKesharwani/erp-next-contract/internal/repositories/alertlog"
	"github.com/AryaKesharwani/erp-next-contract/internal/repositories/mappingresult"
	"github.com/AryaKesharwani/erp-next-contract/internal/repositories/processeddocument"
	"github.com/AryaKesharwani/erp-next-contract/pkg/alerts"
	"github.com/AryaKesharwani/erp-next-contract/pkg/database"
	"github.com/AryaKesharwani/erp-next-contract/pkg/erpnext"
	"github.com/AryaKesharwani/erp-next-contract/pkg/events"
	"github.com/AryaKesharwani/erp-next-contract/pkg/extraction"
	"github.com/AryaKesharwani/erp-next-contract/pkg/kafka"
	"github.com/AryaKesharwani/erp-next-contract/pkg/logging"
	"github.com/AryaKesharwani/erp-next-contract/pkg/matching"
	"github.com/AryaKesharwani/erp-next-contract/pkg/middleware"
	"github.com/AryaKesharwani/erp-next-contract/pkg/processor"
	"github.com/AryaKesharwani/erp-next-contract/pkg/registry"
	"github.com/AryaKesharwani/erp-next-contract/pkg/routes/alert"
	"github.com/AryaKesharwani/erp-next-contract/pkg/routes/health"
	"github.com/AryaKesharwani/erp-next-contract/pkg/routes/mapping"
	"github.com/AryaKesharwani/erp-next-contract/pkg/routes/match"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing/exporters"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
		os.Exit(1)
	}

	logger, zapLogger, err := logging.New(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Service exited with error")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	if cfg.TracingEnabled {
		shutdown, err := setupTracing(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer shutdown()
	}

	// Database
	db, err := connectDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrateDatabase(cfg, logger, db); err != nil {
		return err
	}

	// System of record
	erp := erpnext.NewClient(erpnext.Config{
		BaseURL:       cfg.ERPNextURL,
		APIKey:        cfg.ERPNextAPIKey,
		APISecret:     cfg.ERPNextAPISecret,
		Timeout:       cfg.ERPNextTimeout,
		RatePerSecond: cfg.ERPNextRatePerSecond,
		RateBurst:     cfg.ERPNextRateBurst,
	}, logger)

	cachedRegistry := registry.NewCached(erp, cfg.ClientRegistryCacheTTL, logger)
	matcher := matching.NewMatcher()

	extractor := extraction.NewExtractor(extraction.Config{
		APIKey:              cfg.AnthropicAPIKey,
		Model:               cfg.ExtractionModel,
		MaxTokens:           cfg.ExtractionMaxTokens,
		ConfidenceThreshold: cfg.ExtractionConfidenceThreshold,
	}, logger)

	// Repositories
	mappingRepo := mappingresult.NewRepository(db, logger)
	documentRepo := processeddocument.NewRepository(db, logger)
	alertRepo := alertlog.NewRepository(db, logger)

	// Events
	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOutputTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, logger)
	defer producer.Close()
	emitter := events.NewEmitter(producer)

	engine := alerts.NewEngine(cfg.AlertPeriodDays, erp, erp, alertRepo, emitter, logger)

	proc := processor.NewProcessor(
		db,
		extractor,
		matcher,
		cachedRegistry,
		erp,
		mappingRepo,
		mappingresult.FromDecision,
		documentRepo,
		engine,
		emitter,
		cfg.ClientMappingConfidenceThreshold,
		logger,
	)

	scheduler := processor.NewScheduler(erp, proc, engine, processor.SchedulerConfig{
		Interval:  cfg.ProcessingInterval,
		BatchSize: cfg.ProcessingBatchSize,
	}, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = scheduler.Stop(stopCtx)
	}()

	// Kafka intake
	var consumer *kafka.Consumer
	var consumerHealth interface{ Health() bool }
	if cfg.KafkaConsumerEnabled {
		consumer = kafka.NewConsumer(cfg, logger, func(ctx context.Context, msg *kafka.IncomingMessage) error {
			return proc.ProcessDocument(ctx, msg.Document())
		})
		if err := consumer.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = consumer.Stop() }()
		consumerHealth = consumer
	}

	// HTTP API
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomw.Recover())
	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	checker := health.NewChecker(db, consumerHealth, version)
	checker.RegisterRoutes(e)

	match.NewHandler(matcher, cachedRegistry, cfg.ClientMappingConfidenceThreshold, logger).Register(e.Group("/api/v1/match"))
	mapping.NewHandler(mappingRepo).Register(e.Group("/api/v1/mappings"))
	alert.NewHandler(alertRepo).Register(e.Group("/api/v1/alerts"))

	serverErr := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.WithField("addr", addr).Info("Starting HTTP server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	checker.SetReady(true)
	logger.WithField("version", version).Info("Service started")

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	}

	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown failed")
	}

	return nil
}

func setupTracing(ctx context.Context, cfg config.Config) (func(), error) {
	exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
		Endpoint: cfg.TracingOTLPEndpoint,
		Protocol: cfg.TracingOTLPProtocol,
		Insecure: cfg.TracingInsecure,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.AppName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}, nil
}

func connectDatabase(cfg config.Config, logger ectologger.Logger) (database.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode)

	sqlxDB, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlxDB.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	return database.NewDatabaseInstance(sqlxDB, logger), nil
}

func migrateDatabase(cfg config.Config, logger ectologger.Logger, db database.DB) error {
	instance, ok := db.(*database.DatabaseInstance)
	if !ok {
		return errors.New("unexpected database instance type")
	}

	driver, err := migratepg.WithInstance(instance.DB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	svc := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})

	return svc.Migrate(cfg.DatabaseName, driver)
}
