package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toddjhayden/agogsaas-planning/internal/service"
)

type AccuracyHandler struct {
	service *service.AccuracyService
}

func NewAccuracyHandler(service *service.AccuracyService) *AccuracyHandler {
	return &AccuracyHandler{service: service}
}

// Calculate handles POST /accuracy/calculate
func (h *AccuracyHandler) Calculate(c *gin.Context) {
	start, end, err := parseDateRange(c, 30)
	if err != nil {
		badRequest(c, err)
		return
	}

	scope := parseScope(c)

	// Resolve forecasts onto actuals first so the period measures against
	// the current ACTIVE rows.
	if _, err := h.service.ResolveForecasts(c.Request.Context(), scope, start, end); err != nil {
		respondError(c, err)
		return
	}

	metrics, err := h.service.CalculateMetrics(c.Request.Context(), scope, start, end, c.Query("aggregation"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetMetrics handles GET /accuracy
func (h *AccuracyHandler) GetMetrics(c *gin.Context) {
	start, end, err := parseDateRange(c, 365)
	if err != nil {
		badRequest(c, err)
		return
	}

	metrics, err := h.service.GetMetrics(c.Request.Context(), parseScope(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": metrics, "count": len(metrics)})
}

// BestMethod handles GET /accuracy/best-method
func (h *AccuracyHandler) BestMethod(c *gin.Context) {
	best, err := h.service.BestPerformingMethod(c.Request.Context(), parseScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, best)
}

// Comparison handles GET /accuracy/comparison
func (h *AccuracyHandler) Comparison(c *gin.Context) {
	perf, err := h.service.CompareMethods(c.Request.Context(), parseScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"algorithms": perf})
}
