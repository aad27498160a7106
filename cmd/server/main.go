package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"donorhub/internal/cache"
	"donorhub/internal/config"
	"donorhub/internal/db"
	"donorhub/internal/handlers"
	"donorhub/internal/logger"
	"donorhub/internal/repository"
	"donorhub/internal/service"
)

func main() {
	// 1. Load configuration and logger
	cfg := config.LoadConfig()
	log := logger.Init(cfg.Environment, cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	// 2. Initialize database and redis connections
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 3. Initialize layers
	memberRepo := repository.NewMemberRepository(pool)
	otpRepo := repository.NewOTPRepository(pool)
	donationRepo := repository.NewDonationRepository(pool)

	emailService := service.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	otpService := service.NewOTPService(otpRepo, cfg.OTPExpiry(), cfg.OTPMaxAttempts)
	sendLimiter := cache.NewSendLimiter(redisClient, cfg.ResendCooldown(), cfg.OTPHourlyCap)

	memberService := service.NewMemberService(
		memberRepo,
		otpService,
		emailService,
		sendLimiter,
		service.PasswordPolicy{MinLength: cfg.PasswordMinLength, BcryptCost: cfg.BcryptCost},
		cfg.JWTSecret,
		cfg.OTPExpiry(),
	)
	donationService := service.NewDonationService(donationRepo, memberRepo, emailService)

	authHandler := handlers.NewAuthHandler(memberService)
	donationHandler := handlers.NewDonationHandler(donationService, cfg.JWTSecret)
	healthHandler := handlers.NewHealthHandler()

	// 4. Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	healthHandler.RegisterRoutes(router)
	authHandler.RegisterRoutes(router)
	donationHandler.RegisterRoutes(router)

	// 5. Background OTP expiry sweep
	sweepCtx, stopSweep := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				otpService.SweepExpired(sweepCtx)
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	// 6. Start server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")
	stopSweep()

	// Graceful shutdown with 5 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
