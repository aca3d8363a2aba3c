package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"neighborlift/internal/api"
	"neighborlift/internal/badge"
	"neighborlift/internal/feed"
	"neighborlift/internal/notifier"
	"neighborlift/internal/repository"
	"neighborlift/internal/service"
	"neighborlift/pkg/auth"
	"neighborlift/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	badges, err := badge.New(ctx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to initialize badge store", zap.Error(err))
	}
	defer badges.Close()

	var push feed.PushSender
	if cfg.Telegram.BotToken != "" {
		telegram, err := notifier.NewTelegram(cfg.Telegram.BotToken)
		if err != nil {
			zapLogger.Fatal("Failed to initialize telegram notifier", zap.Error(err))
		}
		push = telegram
	}

	effects := service.NewSideEffectsService(repo, badges, zapLogger)
	promptService := service.NewPromptService(repo, repo, effects, zapLogger)
	reviewService := service.NewReviewService(repo, promptService)
	userService := service.NewUserService(repo)

	jwtAuth := auth.NewJWTAuth(cfg.Auth.JWTSecret)

	listener := feed.NewListener(cfg.Feed, promptService, effects, repo, push, zapLogger)
	go func() {
		if err := listener.Run(ctx); err != nil {
			zapLogger.Error("Feed listener stopped", zap.Error(err))
		}
	}()

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewPromptRoutes(a, promptService, reviewService, jwtAuth)
	api.NewBadgeRoutes(a, effects, jwtAuth)
	api.NewUserRoutes(a, userService, jwtAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
