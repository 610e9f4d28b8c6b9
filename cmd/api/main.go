package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wabot/internal/config"
	"wabot/internal/db"
	apihttp "wabot/internal/http"
	"wabot/internal/repository"
	"wabot/internal/service"
	"wabot/internal/whatsapp"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	messageRepo := repository.NewPgMessageRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)
	waClient := whatsapp.NewHTTPClient(cfg.APIBaseURL, cfg.APIVersion, cfg.PhoneNumberID, cfg.WhatsAppToken, logger)

	sessionTTL := time.Duration(cfg.SessionTimeoutSeconds) * time.Second
	sessions := service.NewMemorySessionStore(sessionTTL)

	var (
		limiter     service.RateLimiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisInboundRateLimiter(redisClient, time.Minute, cfg.RateLimitMessages)
			sessions = service.NewRedisSessionStore(redisClient, sessionTTL)
		}
		cancel()
	}

	messageSvc := service.NewMessageService(logger, waClient, messageRepo, userRepo, sessions, limiter, cfg.MaxMessageLength)
	webhookHandler := apihttp.NewWebhookHandler(logger, cfg.VerifyToken, messageSvc)

	var redisPing func(ctx context.Context) error
	if redisClient != nil {
		redisPing = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	healthHandler := apihttp.NewHealthHandler(logger, cfg.Environment, pool.Ping, redisPing)
	adminHandler := apihttp.NewAdminHandler(logger, messageRepo, userRepo)

	router := apihttp.NewRouter(logger, cfg.AppSecret, webhookHandler, healthHandler, adminHandler)

	server := &http.Server{
		Addr:              cfg.HTTPHost + ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Environment == "development" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
