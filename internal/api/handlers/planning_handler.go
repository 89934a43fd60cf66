package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/service"
)

type PlanningHandler struct {
	service *service.SafetyStockService
}

func NewPlanningHandler(service *service.SafetyStockService) *PlanningHandler {
	return &PlanningHandler{service: service}
}

// SafetyStock handles GET /planning/safety-stock
func (h *PlanningHandler) SafetyStock(c *gin.Context) {
	var serviceLevel *float64
	if raw := c.Query("service_level"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed >= 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "service_level must be a fraction between 0 and 1"})
			return
		}
		serviceLevel = &parsed
	}

	calc, err := h.service.Calculate(c.Request.Context(), parseScope(c), serviceLevel)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, calc)
}

// UpdateParameters handles PUT /planning/parameters
func (h *PlanningHandler) UpdateParameters(c *gin.Context) {
	var update domain.PlanningParametersUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, err)
		return
	}

	planning, err := h.service.UpdatePlanningParameters(c.Request.Context(), parseScope(c), update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, planning)
}
