package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/resultboard-api/internal/config"
	"github.com/noah-isme/resultboard-api/internal/database"
	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/handler"
	"github.com/noah-isme/resultboard-api/internal/middleware"
	"github.com/noah-isme/resultboard-api/internal/repository"
	"github.com/noah-isme/resultboard-api/internal/router"
	"github.com/noah-isme/resultboard-api/internal/service"
	cloud "github.com/noah-isme/resultboard-api/pkg/cloudinary"
	"github.com/noah-isme/resultboard-api/pkg/filestore"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		logger.Warn().Msg("redis url not set, metadata cache disabled")
	}

	files, err := openFileStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create result file store")
	}

	var natsConn *nats.Conn
	var delivery service.ContactDelivery = service.NewLogContactDelivery(logger)
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		delivery = service.NewNATSContactDelivery(natsConn, cfg.NATSContactSubject, logger)
	}

	validate := dto.NewValidator()

	universityRepo := repository.NewUniversityRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	degreeRepo := repository.NewDegreeRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	contactRepo := repository.NewContactRepository(db)

	resolver := service.NewSubjectResolver(subjectRepo)
	resultService := service.NewResultService(degreeRepo, resolver, files, validate, cfg.SemesterConcurrency, logger)
	metadataService := service.NewMetadataService(universityRepo, batchRepo, degreeRepo, redisClient, cfg.MetadataCacheTTL, logger)
	contactService := service.NewContactService(contactRepo, validate, delivery, logger)
	seedService := service.NewSeedService(db, metadataService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		AllowOrigins:   cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})
	router.Register(app, cfg, router.Dependencies{
		ResultHandler:   handler.NewResultHandler(resultService, logger),
		MetadataHandler: handler.NewMetadataHandler(metadataService, logger),
		ContactHandler:  handler.NewContactHandler(contactService, logger),
		SeedHandler:     handler.NewSeedHandler(seedService, cfg.SeedToken, logger),
		HealthChecks:    healthChecks(db, redisClient),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if err := database.Close(db); err != nil {
		logger.Warn().Err(err).Msg("failed to close database")
	}

	logger.Info().Msg("server stopped")
}

func openFileStore(cfg config.Config, logger zerolog.Logger) (service.ResultFileStore, error) {
	if cfg.FileStoreDriver == config.FileStoreDir {
		return filestore.NewDirStore(cfg.FileStoreDir)
	}

	return cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
		Timeout:   cfg.FileStoreTimeout,
	}, logger)
}

func healthChecks(db *gorm.DB, redisClient *redis.Client) map[string]handler.DependencyCheck {
	checks := map[string]handler.DependencyCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
