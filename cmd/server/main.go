package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/GoRent-Marketplace/service-rental/internal/application"
	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/database"
	"github.com/GoRent-Marketplace/service-rental/internal/common/health"
	"github.com/GoRent-Marketplace/service-rental/internal/common/kafka"
	"github.com/GoRent-Marketplace/service-rental/internal/common/logger"
	"github.com/GoRent-Marketplace/service-rental/internal/common/middleware"
	"github.com/GoRent-Marketplace/service-rental/internal/config"
	bookingDomain "github.com/GoRent-Marketplace/service-rental/internal/domain/booking"
	"github.com/GoRent-Marketplace/service-rental/internal/events"
	"github.com/GoRent-Marketplace/service-rental/internal/handler"
	"github.com/GoRent-Marketplace/service-rental/internal/lock"
	"github.com/GoRent-Marketplace/service-rental/internal/media"
	"github.com/GoRent-Marketplace/service-rental/internal/repository"
	"github.com/GoRent-Marketplace/service-rental/migrations"
)

const serviceName = "service-rental"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.DBConfig.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var closers []io.Closer

	// Connect to database and migrate
	db, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to prepare database", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager, err := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.TTL, cfg.JWTConfig.Issuer)
	if err != nil {
		log.Fatal("failed to create JWT manager", zap.Error(err))
	}

	// Initialize event producer
	var producer application.EventProducer = kafka.NopProducer{}
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		closers = append(closers, kafkaProducer)
		producer = kafkaProducer
	} else {
		log.Warn("kafka brokers not configured, booking events are discarded")
	}

	// Initialize booking lock
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisConfig.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		closers = append(closers, rdb)
		locker = lock.NewRedisLocker(rdb, log, lock.WithTTL(cfg.RedisConfig.LockTTL))
	} else {
		log.Warn("redis not configured, using in-process booking lock")
	}

	// Initialize image uploads
	var uploader media.Uploader = media.DisabledUploader{}
	if cfg.MediaConfig.Enabled() {
		s3Uploader, err := media.NewS3Uploader(ctx, media.S3Config{
			AccessKey:     cfg.MediaConfig.AccessKey,
			SecretKey:     cfg.MediaConfig.SecretKey,
			Region:        cfg.MediaConfig.Region,
			Bucket:        cfg.MediaConfig.Bucket,
			Endpoint:      cfg.MediaConfig.Endpoint,
			PublicBaseURL: cfg.MediaConfig.PublicBaseURL,
		}, log)
		if err != nil {
			log.Fatal("failed to create image uploader", zap.Error(err))
		}
		uploader = s3Uploader
	}

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	carRepo := repository.NewGormCarRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)

	// Initialize application services
	availability := application.NewAvailabilityChecker(bookingRepo, carRepo, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		carRepo,
		userRepo,
		availability,
		bookingDomain.NewDailyPricingStrategy(),
		locker,
		producer,
		cfg.Currency,
		log,
		application.WithLockTimeout(cfg.RedisConfig.LockTimeout),
	)
	carService := application.NewCarService(carRepo, userRepo, uploader, log)
	userService := application.NewUserService(userRepo, jwtManager, uploader, log)
	dashboardService := application.NewDashboardService(userRepo, carRepo, bookingRepo, cfg.Currency, log)

	// Start the booking audit consumer when requested
	if cfg.KafkaConfig.Enabled() && cfg.KafkaConfig.AuditConsumer {
		auditConsumer := events.NewBookingEventConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupPrefix+"rental-audit",
			events.NewAuditLogHandler(log.Named("audit")),
			log,
		)
		closers = append(closers, auditConsumer)

		go func() {
			log.Info("starting booking audit consumer")
			if err := auditConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking audit consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)

	// Register routes
	handler.NewUserHandler(userService, carService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewOwnerHandler(carService, dashboardService, userService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewBookingHandler(bookingService, availability).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	if err := closeAll(db, closers); err != nil {
		log.Error("failed to release resources", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// openDatabase connects to the configured store and brings its schema up to date.
func openDatabase(cfg *config.ServiceConfig, log *zap.Logger) (*gorm.DB, error) {
	if !usesSQLMigrations(cfg) {
		db, err := database.ConnectSQLite(cfg.DBConfig.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		return db, nil
	}

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.DatabaseURL(), migrations.FS, log); err != nil {
		return nil, err
	}
	return db, nil
}

// usesSQLMigrations reports whether the schema comes from the embedded SQL
// migrations. PostgreSQL always does, in every environment, because only they
// create the bookings_no_overlap exclusion constraint; SQLite is auto-migrated.
func usesSQLMigrations(cfg *config.ServiceConfig) bool {
	return cfg.DBConfig.Driver != config.DriverSQLite
}

func closeAll(db *gorm.DB, closers []io.Closer) error {
	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	if sqlDB, dbErr := db.DB(); dbErr != nil {
		err = multierr.Append(err, dbErr)
	} else {
		err = multierr.Append(err, sqlDB.Close())
	}
	return err
}
