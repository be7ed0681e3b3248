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

	httpAdapter "github.com/mamatela/restaurant-review-back-end/internal/adapter/http"
	natsAdapter "github.com/mamatela/restaurant-review-back-end/internal/adapter/messaging/nats"
	"github.com/mamatela/restaurant-review-back-end/internal/adapter/repository/cache"
	mongoRepo "github.com/mamatela/restaurant-review-back-end/internal/adapter/repository/mongodb"
	"github.com/mamatela/restaurant-review-back-end/internal/adapter/storage/s3"
	"github.com/mamatela/restaurant-review-back-end/internal/config"
	"github.com/mamatela/restaurant-review-back-end/internal/mailer"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/metrics"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/tracer"
	"github.com/mamatela/restaurant-review-back-end/internal/usecase"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application starting...")

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// MongoDB
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	ctxPingMongo, cancelPingMongo := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPingMongo()
	if err = mongoClient.Ping(ctxPingMongo, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB.")
	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis (optional)
	var tokenCache usecase.TokenCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.RedisAddr)
		if err != nil {
			appLogger.Warn("Redis unavailable, refresh-token caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			tokenCache = cache.NewTokenCache(redisClient, appLogger)
			appLogger.Info("Redis token cache initialized.")
		}
	}

	// NATS
	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}
	defer natsPublisher.Close()

	// S3 picture storage (optional)
	var pictureStorage usecase.PictureStorage
	if cfg.S3Endpoint != "" {
		s3Storage, err := s3.NewS3Storage(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		pictureStorage = s3Storage
	} else {
		appLogger.Info("S3 storage not configured, picture uploads disabled.")
	}

	// Mailer (optional)
	var mailSender mailer.Mailer
	if cfg.SMTPHost != "" {
		mailSender = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, cfg.FrontendURL, appLogger)
		appLogger.Info("SMTP mailer initialized.")
	} else {
		appLogger.Info("SMTP not configured, password reset email disabled.")
	}

	// Metrics
	mm := metrics.NewMetricsManager("restaurant_review_service")
	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, mm.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// Repositories
	counters := mongoRepo.NewCounters(db)
	userRepo, err := mongoRepo.NewUserRepository(db, counters, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize UserRepository", zap.Error(err))
	}
	restaurantRepo, err := mongoRepo.NewRestaurantRepository(db, counters, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize RestaurantRepository", zap.Error(err))
	}
	reviewRepo, err := mongoRepo.NewReviewRepository(db, counters, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ReviewRepository", zap.Error(err))
	}
	notificationRepo, err := mongoRepo.NewNotificationRepository(db, counters, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize NotificationRepository", zap.Error(err))
	}
	tokenRepo, err := mongoRepo.NewTokenRepository(db, counters, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize TokenRepository", zap.Error(err))
	}

	// Usecases
	tokenUsecase := usecase.NewTokenUsecase(
		tokenRepo,
		tokenCache,
		cfg.JWTSecret,
		time.Duration(cfg.AccessExpirationMinutes)*time.Minute,
		time.Duration(cfg.RefreshExpirationDays)*24*time.Hour,
		time.Duration(cfg.ResetPasswordExpirationMins)*time.Minute,
		appLogger,
	)
	authUsecase := usecase.NewAuthUsecase(userRepo, tokenUsecase, mailSender, appLogger)
	userUsecase := usecase.NewUserUsecase(userRepo, restaurantRepo, reviewRepo, tokenUsecase, natsPublisher, appLogger)
	restaurantUsecase := usecase.NewRestaurantUsecase(restaurantRepo, reviewRepo, pictureStorage, mm, appLogger)
	reviewUsecase := usecase.NewReviewUsecase(reviewRepo, restaurantRepo, userRepo, notificationRepo, natsPublisher, mm, appLogger)
	notificationUsecase := usecase.NewNotificationUsecase(notificationRepo, appLogger)

	// HTTP server
	router := httpAdapter.NewRouter(httpAdapter.Handlers{
		Auth:          httpAdapter.NewAuthHandler(authUsecase, appLogger),
		Users:         httpAdapter.NewUserHandler(userUsecase, appLogger),
		Restaurants:   httpAdapter.NewRestaurantHandler(restaurantUsecase, appLogger),
		Reviews:       httpAdapter.NewReviewHandler(reviewUsecase, appLogger),
		Notifications: httpAdapter.NewNotificationHandler(notificationUsecase, appLogger),
	}, tokenUsecase, userRepo, mm, appLogger)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		appLogger.Info("HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server stopped gracefully.")
	}
}
