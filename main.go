package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/campus-canteen/cart"
	"github.com/yeremiapane/campus-canteen/config"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/kds"
	"github.com/yeremiapane/campus-canteen/router"
	"github.com/yeremiapane/campus-canteen/services"
	"github.com/yeremiapane/campus-canteen/utils"
)

func main() {
	utils.InitLogger()
	cfg := config.Load()
	utils.SetLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.SeedMenu(db, cfg.MenuSeedPath); err != nil {
		utils.ErrorLogger.Printf("Error seeding menu: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := database.NewGormStore(db)
	hub := kds.NewHub()

	registry := cart.NewRegistry(cfg.SessionIdleTTL)
	registry.Start()
	defer registry.Stop()

	sweepStop := make(chan struct{})
	go utils.SweepRevokedTokens(time.Hour, sweepStop)
	defer close(sweepStop)

	r := router.SetupRouter(router.Deps{
		Store:         store,
		Registry:      registry,
		Orders:        services.NewOrderService(store, hub),
		Hub:           hub,
		Recommender:   newRecommender(ctx, cfg),
		AllowedOrigin: cfg.AllowedOrigin,
		KitchenAPIKey: cfg.KitchenAPIKey,
		PollInterval:  cfg.PollInterval,
		RequestsPerIP: 300,
	})
	r.SetTrustedProxies([]string{"127.0.0.1"})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Error during shutdown: %v", err)
	}
}

// newRecommender wraps the AI client with the redis cache when REDIS_ADDR is set.
func newRecommender(ctx context.Context, cfg config.Config) services.Recommender {
	ai := services.NewAIRecommender(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
	if cfg.AIAPIKey == "" {
		utils.InfoLogger.Println("AI_API_KEY not set, recommendations disabled")
	}
	if cfg.RedisAddr == "" {
		return ai
	}

	client, err := services.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		utils.ErrorLogger.Printf("Recommendation cache disabled: %v", err)
		return ai
	}
	return &services.CachedRecommender{
		Next:  ai,
		Cache: services.NewRedisRecommendationCache(client, cfg.RecommendationCacheTTL),
	}
}
