package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/toddjhayden/agogsaas-planning/internal/api/handlers"
	"github.com/toddjhayden/agogsaas-planning/internal/api/middleware"
	"github.com/toddjhayden/agogsaas-planning/internal/service"
)

type Services struct {
	DemandService         *service.DemandService
	ForecastService       *service.ForecastService
	AccuracyService       *service.AccuracyService
	SafetyStockService    *service.SafetyStockService
	RecommendationService *service.RecommendationService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services.DemandService != nil {
		demandHandler := handlers.NewDemandHandler(services.DemandService)
		demandGroup := apiGroup.Group("/demand")
		{
			demandGroup.POST("", demandHandler.RecordDemand)
			demandGroup.GET("/history", demandHandler.GetHistory)
			demandGroup.POST("/history/batch", demandHandler.GetBatchHistory)
			demandGroup.POST("/backfill", demandHandler.Backfill)
			demandGroup.GET("/statistics", demandHandler.GetStatistics)
		}
	}

	if services.ForecastService != nil {
		forecastHandler := handlers.NewForecastHandler(services.ForecastService)
		forecastGroup := apiGroup.Group("/forecasts")
		{
			forecastGroup.POST("/generate", forecastHandler.Generate)
			forecastGroup.GET("", forecastHandler.GetForecasts)
		}
	}

	if services.AccuracyService != nil {
		accuracyHandler := handlers.NewAccuracyHandler(services.AccuracyService)
		accuracyGroup := apiGroup.Group("/accuracy")
		{
			accuracyGroup.POST("/calculate", accuracyHandler.Calculate)
			accuracyGroup.GET("", accuracyHandler.GetMetrics)
			accuracyGroup.GET("/best-method", accuracyHandler.BestMethod)
			accuracyGroup.GET("/comparison", accuracyHandler.Comparison)
		}
	}

	if services.SafetyStockService != nil {
		planningHandler := handlers.NewPlanningHandler(services.SafetyStockService)
		planningGroup := apiGroup.Group("/planning")
		{
			planningGroup.GET("/safety-stock", planningHandler.SafetyStock)
			planningGroup.PUT("/parameters", planningHandler.UpdateParameters)
		}
	}

	if services.RecommendationService != nil {
		recommendationHandler := handlers.NewRecommendationHandler(services.RecommendationService)
		recommendationGroup := apiGroup.Group("/recommendations")
		{
			recommendationGroup.POST("/generate", recommendationHandler.Generate)
			recommendationGroup.GET("", recommendationHandler.List)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
