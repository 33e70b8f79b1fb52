package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymweb/booking-api/internal/api"
	"gymweb/booking-api/internal/config"
	"gymweb/booking-api/internal/jobs"
	"gymweb/booking-api/internal/notification"
	"gymweb/booking-api/internal/repository/mongo"
	"gymweb/booking-api/internal/service"
	"gymweb/booking-api/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logger ---
	logger, err := newLogger(cfg.Server.Env)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("starting gym booking server", zap.String("env", cfg.Server.Env))

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("workout_sessions"))
		mongo.EnsureOTPIndexes(ctx, appDB.Collection("otps"))
		logger.Info("index creation completed")
	}()

	// --- Initialize Storage & Mail ---
	fileStorage, err := storage.NewS3Storage(cfg.S3, logger)
	if err != nil {
		logger.Fatal("failed to initialize avatar storage", zap.Error(err))
	}
	mailer := notification.NewSMTPSender(cfg.Email, logger)

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	otpRepo := mongo.NewMongoOTPRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, otpRepo, mailer, cfg.JWT.Secret, cfg.JWT.Expiration, logger)
	userService := service.NewUserService(userRepo, fileStorage, logger)
	bookingService := service.NewBookingService(sessionRepo, userRepo, mailer, cfg.Booking, logger)

	// --- Background Jobs ---
	scheduler := jobs.Start(otpRepo, logger)
	defer scheduler.Stop()

	// --- Gin Engine & Routes ---
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, cfg.JWT.Secret, authService, userService, bookingService, logger)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
