package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/service"
)

type DemandHandler struct {
	service *service.DemandService
}

func NewDemandHandler(service *service.DemandService) *DemandHandler {
	return &DemandHandler{service: service}
}

// RecordDemand handles POST /demand
func (h *DemandHandler) RecordDemand(c *gin.Context) {
	var input domain.DemandInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	record, err := h.service.RecordDemand(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetHistory handles GET /demand/history
func (h *DemandHandler) GetHistory(c *gin.Context) {
	start, end, err := parseDateRange(c, 90)
	if err != nil {
		badRequest(c, err)
		return
	}

	records, err := h.service.GetHistory(c.Request.Context(), parseScope(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// GetBatchHistory handles POST /demand/history/batch
func (h *DemandHandler) GetBatchHistory(c *gin.Context) {
	var body struct {
		MaterialIDs []string `json:"material_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	start, end, err := parseDateRange(c, 90)
	if err != nil {
		badRequest(c, err)
		return
	}

	grouped, err := h.service.GetBatchHistory(c.Request.Context(), parseScope(c), body.MaterialIDs, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, grouped)
}

// Backfill handles POST /demand/backfill
func (h *DemandHandler) Backfill(c *gin.Context) {
	start, end, err := parseDateRange(c, 365)
	if err != nil {
		badRequest(c, err)
		return
	}

	inserted, err := h.service.Backfill(c.Request.Context(), parseScope(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

// GetStatistics handles GET /demand/statistics
func (h *DemandHandler) GetStatistics(c *gin.Context) {
	start, end, err := parseDateRange(c, 90)
	if err != nil {
		badRequest(c, err)
		return
	}

	stats, err := h.service.GetStatistics(c.Request.Context(), parseScope(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
