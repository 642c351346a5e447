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

	"github.com/go-chi/chi/v5"
	"github.com/goodplay/goodplay-backend/config"
	"github.com/goodplay/goodplay-backend/db"
	"github.com/goodplay/goodplay-backend/handlers"
	"github.com/goodplay/goodplay-backend/live"
	"github.com/goodplay/goodplay-backend/repositories"
	api "github.com/goodplay/goodplay-backend/routes"
	"github.com/goodplay/goodplay-backend/services"
	"github.com/goodplay/goodplay-backend/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	client, err := db.Connect(cfg.MongoURI, 10*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	database := client.Database(cfg.MongoDatabase)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repositories.EnsureIndexes(indexCtx, database); err != nil {
		cancelIndexes()
		logger.Error("failed to ensure indexes", slog.Any("error", err))
		os.Exit(1)
	}
	cancelIndexes()
	logger.Info("indexes ensured")

	var uploader storage.FileUploader
	if cfg.S3AccessKeyID != "" {
		uploader, err = storage.NewS3Uploader(context.Background(), storage.S3UploaderConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			BucketName:      cfg.S3BucketName,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage uploader initialized")
	} else {
		logger.Warn("object storage not configured, document uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	// Repositories
	userRepo := repositories.NewMongoUserRepository(database)
	walletRepo := repositories.NewMongoWalletRepository(database)
	txRepo := repositories.NewMongoTransactionRepository(database)
	sessionRepo := repositories.NewMongoSessionRepository(database)
	donationRepo := repositories.NewMongoDonationRepository(database)
	paymentRepo := repositories.NewMongoPaymentRepository(database)
	onlusRepo := repositories.NewMongoOnlusRepository(database)
	appRepo := repositories.NewMongoApplicationRepository(database)
	teamRepo := repositories.NewMongoTeamRepository(database)
	tournamentRepo := repositories.NewMongoTournamentRepository(database)
	modeRepo := repositories.NewMongoModeRepository(database)
	achievementRepo := repositories.NewMongoAchievementRepository(database)
	logger.Info("repositories initialized")

	// Services
	walletService := services.NewWalletService(walletRepo, txRepo)
	achievementService := services.NewAchievementService(achievementRepo, walletService, logger)
	authService := services.NewAuthService(userRepo, walletRepo)
	userService := services.NewUserService(userRepo)
	creditService := services.NewCreditService(sessionRepo, modeRepo, userRepo, walletService, achievementService)
	donationService := services.NewDonationService(donationRepo, onlusRepo, userRepo, walletService, achievementService)
	paymentService := services.NewPaymentService(paymentRepo, walletService, cfg.WebhookSigningSecret, logger)
	onlusService := services.NewOnlusService(appRepo, onlusRepo, uploader)
	complianceService := services.NewComplianceService(onlusRepo, logger)
	teamService := services.NewTeamService(teamRepo, userRepo, uploader)
	tournamentService := services.NewTournamentService(tournamentRepo, teamRepo, wsHub, logger)
	modeService := services.NewModeService(modeRepo)
	analyticsService := services.NewAnalyticsService(donationRepo, onlusRepo)
	logger.Info("services initialized")

	scheduler, err := services.NewScheduler(modeService, tournamentService, cfg.ModeSchedulerInterval, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}()

	// HTTP handlers
	h := api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		User:        handlers.NewUserHandler(userService),
		Session:     handlers.NewSessionHandler(creditService),
		Wallet:      handlers.NewWalletHandler(walletService),
		Payment:     handlers.NewPaymentHandler(paymentService),
		Donation:    handlers.NewDonationHandler(donationService),
		Onlus:       handlers.NewOnlusHandler(onlusService, complianceService),
		Team:        handlers.NewTeamHandler(teamService),
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Mode:        handlers.NewModeHandler(modeService),
		Achievement: handlers.NewAchievementHandler(achievementService),
		Admin:       handlers.NewAdminHandler(analyticsService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, tournamentService),
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, h, []byte(cfg.JWTSecretKey))
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
