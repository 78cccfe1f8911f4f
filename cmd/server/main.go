package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/config"
	"github.com/Ramsey-B/petal/internal/repositories/assignedvalue"
	"github.com/Ramsey-B/petal/internal/repositories/attribute"
	"github.com/Ramsey-B/petal/internal/repositories/attributevalue"
	"github.com/Ramsey-B/petal/internal/repositories/page"
	"github.com/Ramsey-B/petal/internal/repositories/product"
	"github.com/Ramsey-B/petal/internal/repositories/producttype"
	"github.com/Ramsey-B/petal/internal/repositories/reference"
	"github.com/Ramsey-B/petal/internal/repositories/variant"
	"github.com/Ramsey-B/petal/pkg/assignment"
	"github.com/Ramsey-B/petal/pkg/database"
	"github.com/Ramsey-B/petal/pkg/events"
	"github.com/Ramsey-B/petal/pkg/kafka"
	"github.com/Ramsey-B/petal/pkg/middleware"
	"github.com/Ramsey-B/petal/pkg/processor"
	"github.com/Ramsey-B/petal/pkg/redis"
	"github.com/Ramsey-B/petal/pkg/registry"
	attributeroutes "github.com/Ramsey-B/petal/pkg/routes/attribute"
	attributevalueroutes "github.com/Ramsey-B/petal/pkg/routes/attributevalue"
	"github.com/Ramsey-B/petal/pkg/routes/health"
	pageroutes "github.com/Ramsey-B/petal/pkg/routes/page"
	productroutes "github.com/Ramsey-B/petal/pkg/routes/product"
	producttyperoutes "github.com/Ramsey-B/petal/pkg/routes/producttype"
	validationroutes "github.com/Ramsey-B/petal/pkg/routes/validation"
	variantroutes "github.com/Ramsey-B/petal/pkg/routes/variant"
	"github.com/Ramsey-B/petal/pkg/startup"
	"github.com/Ramsey-B/petal/pkg/tracing"
	"github.com/Ramsey-B/petal/pkg/tracing/exporters"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, flushLogs := newLogger(cfg)
	defer flushLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := newTracing(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize tracing")
		os.Exit(1)
	}

	sqlxDB, err := connectDatabase(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("failed to connect to database")
		os.Exit(1)
	}
	defer sqlxDB.Close()

	db := database.NewDatabaseInstance(sqlxDB, logger)

	attributeRepo := attribute.NewRepository(db, logger)
	valueRepo := attributevalue.NewRepository(db, logger)
	assignedRepo := assignedvalue.NewRepository(db, logger)
	productTypeRepo := producttype.NewRepository(db, logger)
	productRepo := product.NewRepository(db, logger)
	variantRepo := variant.NewRepository(db, logger)
	pageRepo := page.NewRepository(db, logger)
	referenceRepo := reference.NewRepository(db, logger)

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("failed to connect to Redis")
			os.Exit(1)
		}
		defer redisClient.Close()
	}
	registryCache := registry.NewCache(productTypeRepo, redisClient, cfg.RegistryCacheTTL, logger)

	var producer *kafka.Producer
	var publisher events.Publisher
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaCatalogTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		publisher = producer
	}
	emitter := events.NewEmitter(publisher, logger)

	assignmentService := assignment.NewService(db, attributeRepo, registryCache, valueRepo, assignedRepo, referenceRepo, emitter, logger)

	if err := registerDependencies(cfg, logger, db, attributeRepo, valueRepo, assignedRepo, productTypeRepo, productRepo, variantRepo, pageRepo, registryCache, emitter, assignmentService); err != nil {
		logger.WithError(err).Error("failed to build DI container")
		os.Exit(1)
	}

	e := newServer(cfg, logger)

	checker := health.NewChecker(sqlxDB, healthPinger(redisClient), version)
	checker.RegisterRoutes(e)

	boot := startup.NewStartup[any](logger, cfg.StartupMaxAttempts)

	boot.AddDependency(&dependency{
		name: "http-server",
		start: func(context.Context) error {
			go func() {
				addr := fmt.Sprintf(":%d", cfg.Port)
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("http server stopped")
					os.Exit(1)
				}
			}()
			return nil
		},
		stop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})

	if cfg.KafkaConsumerEnabled {
		cleanup := processor.NewCleanupProcessor(db, valueRepo, assignedRepo, logger)
		consumer := kafka.NewConsumer(cfg, logger, cleanup.HandleMessage)
		boot.AddDependency(&dependency{
			name:  "kafka-consumer",
			start: consumer.Start,
			stop: func(context.Context) error {
				return consumer.Stop()
			},
		})
	}

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("startup failed")
		os.Exit(1)
	}
	checker.SetReady(true)
	logger.WithField("port", cfg.Port).Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	<-ctx.Done()
	logger.Info("shutdown signal received")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown did not complete cleanly")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to flush traces")
	}
}

// dependency adapts start/stop funcs to the startup orchestrator
type dependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *dependency) GetName() string { return d.name }

func (d *dependency) DependsOn() []string { return d.dependsOn }

func (d *dependency) Start(ctx context.Context) error { return d.start(ctx) }

func (d *dependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}

func newLogger(cfg config.Config) (ectologger.Logger, func()) {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		encoded, err := json.Marshal(msg)
		if err != nil {
			zapLogger.Info(fmt.Sprintf("%+v", msg))
			return
		}
		zapLogger.Info(string(encoded))
	})

	return logger, func() { _ = zapLogger.Sync() }
}

func newTracing(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error
	if cfg.TracingOTLPEnabled {
		otlpCfg := exporters.DefaultOTLPConfig()
		otlpCfg.Endpoint = cfg.TracingOTLPEndpoint
		exporter, err = exporters.NewOTLPExporter(ctx, otlpCfg)
	} else {
		exporter, err = exporters.NewConsoleExporter()
	}
	if err != nil {
		return nil, err
	}
	return tracing.NewProvider(cfg.AppName, exporter)
}

func connectDatabase(cfg config.Config, logger ectologger.Logger) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode)

	db, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func registerDependencies(
	cfg config.Config,
	logger ectologger.Logger,
	db database.DB,
	attributeRepo *attribute.Repository,
	valueRepo *attributevalue.Repository,
	assignedRepo *assignedvalue.Repository,
	productTypeRepo *producttype.Repository,
	productRepo *product.Repository,
	variantRepo *variant.Repository,
	pageRepo *page.Repository,
	registryCache *registry.Cache,
	emitter *events.Emitter,
	assignmentService *assignment.Service,
) error {
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return err
	}

	if err := ectoinject.RegisterInstance[config.Config](container, cfg); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[database.DB](container, db); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*attribute.Repository](container, attributeRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*attributevalue.Repository](container, valueRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*assignedvalue.Repository](container, assignedRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*producttype.Repository](container, productTypeRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*product.Repository](container, productRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*variant.Repository](container, variantRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*page.Repository](container, pageRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*registry.Cache](container, registryCache); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*events.Emitter](container, emitter); err != nil {
		return err
	}
	return ectoinject.RegisterInstance[*assignment.Service](container, assignmentService)
}

func newServer(cfg config.Config, logger ectologger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	api := e.Group("/api/v1")

	attributes := api.Group("/attributes")
	attributeroutes.Register(attributes)
	attributevalueroutes.Register(attributes)

	producttyperoutes.Register(api.Group("/product-types"))

	products := api.Group("/products")
	productroutes.Register(products)
	variantroutes.RegisterProductRoutes(products)

	variantroutes.Register(api.Group("/variants"))
	pageroutes.Register(api.Group("/pages"))
	validationroutes.Register(api.Group("/assignments"))

	return e
}

func healthPinger(client *redis.Client) health.Pinger {
	if client == nil {
		return nil
	}
	return client
}
