package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toddjhayden/agogsaas-planning/internal/api"
	"github.com/toddjhayden/agogsaas-planning/internal/cache"
	"github.com/toddjhayden/agogsaas-planning/internal/config"
	"github.com/toddjhayden/agogsaas-planning/internal/repository/postgres"
	"github.com/toddjhayden/agogsaas-planning/internal/service"
	"github.com/toddjhayden/agogsaas-planning/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Forecast cache unavailable, continuing without caching")
		forecastCache = cache.NewNoopForecastCache()
	}

	demandRepo := postgres.NewDemandHistoryRepository(db)
	forecastRepo := postgres.NewForecastRepository(db)
	accuracyRepo := postgres.NewAccuracyRepository(db)
	materialRepo := postgres.NewMaterialRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	recommendationRepo := postgres.NewRecommendationRepository(db)

	safetyStockService := service.NewSafetyStockService(demandRepo, inventoryRepo, materialRepo, cfg.Planning)
	services := &api.Services{
		DemandService:      service.NewDemandService(demandRepo),
		ForecastService:    service.NewForecastService(demandRepo, forecastRepo, materialRepo, forecastCache, cfg.Planning),
		AccuracyService:    service.NewAccuracyService(demandRepo, forecastRepo, accuracyRepo, materialRepo, cfg.Planning),
		SafetyStockService: safetyStockService,
		RecommendationService: service.NewRecommendationService(
			forecastRepo, inventoryRepo, materialRepo, recommendationRepo, safetyStockService),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
