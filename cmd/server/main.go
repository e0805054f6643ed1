package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "quantumvision/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"quantumvision/internal/auth"
	"quantumvision/internal/cache"
	"quantumvision/internal/config"
	"quantumvision/internal/db"
	"quantumvision/internal/handler"
	"quantumvision/internal/logger"
	"quantumvision/internal/middleware"
	"quantumvision/internal/realtime"
	"quantumvision/internal/repository"
	"quantumvision/internal/router"
	"quantumvision/internal/service"
	"quantumvision/internal/storage"
)

const (
	realtimeBuffer  = 32
	shutdownTimeout = 10 * time.Second
)

// @title Quantum Vision API
// @version 1.0
// @description Film festival API: submissions, moderation, voting with levels and badges, vote packs and a realtime vote feed.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, "quantumvision")

	gormDB, err := db.Open(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("database init")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, running without cache")
	}
	cancelPing()

	files, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("upload storage init")
	}

	store := repository.NewStore(gormDB)
	hub := realtime.NewHub(realtimeBuffer, cfg.WSAllowedOrigins...)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(store.Users(), jwtService, tokenStore, cfg.Voting.StartingVotes)
	userService := service.NewUserService(store.Users(), cacheClient, cfg.Voting.WeeklyLimit)
	videoService := service.NewVideoService(store, files, cacheClient, service.NewSubmissionValidator(cfg.MaxUploadMB))
	voteService := service.NewVoteService(store, cacheClient, hub, cfg.Voting)
	purchaseService := service.NewPurchaseService(store, cacheClient)

	voteLimiter := middleware.NewRateLimiter(cfg.Voting.RateLimitRPS, cfg.Voting.RateLimitBurst, middleware.KeyBySession)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		User:          handler.NewUserHandler(userService),
		Video:         handler.NewVideoHandler(videoService),
		Vote:          handler.NewVoteHandler(voteService, purchaseService),
		Admin:         handler.NewAdminHandler(videoService),
		Realtime:      hub,
		Authenticator: middleware.NewAuthenticator(jwtService, tokenStore),
		VoteLimiter:   voteLimiter,
	})

	logger.Log.Info().Str("url", swaggerURL(cfg)).Msg("swagger documentation available")

	addr := ":" + cfg.ServerPort
	go func() {
		logger.Log.Info().Str("addr", addr).Str("db_driver", cfg.DBDriver).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("forced shutdown")
	}
	voteLimiter.Stop()
	voteService.Close()
	logger.Log.Info().Msg("server stopped")
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	// SwaggerHost may already include the scheme
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
