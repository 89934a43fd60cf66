package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/service"
)

type RecommendationHandler struct {
	service *service.RecommendationService
}

func NewRecommendationHandler(service *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// Generate handles POST /recommendations/generate
func (h *RecommendationHandler) Generate(c *gin.Context) {
	var body struct {
		MaterialIDs []string `json:"material_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	recs, err := h.service.Generate(c.Request.Context(), parseScope(c), body.MaterialIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
}

// List handles GET /recommendations
func (h *RecommendationHandler) List(c *gin.Context) {
	scope := parseScope(c)
	filter := domain.RecommendationFilter{
		TenantID:   scope.TenantID,
		FacilityID: scope.FacilityID,
		MaterialID: scope.MaterialID,
		Urgency:    strings.ToUpper(strings.TrimSpace(c.Query("urgency"))),
		Status:     strings.ToUpper(strings.TrimSpace(c.Query("status"))),
		Page:       1,
		PageSize:   50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	recs, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recs,
		"total":           total,
		"page":            filter.Page,
		"page_size":       filter.PageSize,
	})
}
