package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// Generate handles POST /forecasts/generate
func (h *ForecastHandler) Generate(c *gin.Context) {
	var body struct {
		MaterialIDs []string `json:"material_ids"`
		HorizonDays int      `json:"horizon_days"`
		Algorithm   string   `json:"algorithm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	choice := domain.AlgorithmAuto
	if body.Algorithm != "" {
		parsed, ok := domain.ParseAlgorithm(body.Algorithm)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown algorithm: " + body.Algorithm})
			return
		}
		choice = parsed
	}

	result, err := h.service.Generate(c.Request.Context(), parseScope(c), body.MaterialIDs, body.HorizonDays, choice)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetForecasts handles GET /forecasts
func (h *ForecastHandler) GetForecasts(c *gin.Context) {
	start, end, err := parseDateRange(c, 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	if end.Equal(start) {
		end = start.AddDate(0, 0, 90)
	}

	forecasts, err := h.service.GetActiveForecasts(c.Request.Context(), parseScope(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts, "count": len(forecasts)})
}
