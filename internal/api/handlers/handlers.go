package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

const dateLayout = "2006-01-02"

// parseScope reads the (tenant, facility, material) identifiers from query
// parameters. Validation happens in the services; handlers just carry them.
func parseScope(c *gin.Context) domain.Scope {
	return domain.Scope{
		TenantID:   strings.TrimSpace(c.Query("tenant_id")),
		FacilityID: strings.TrimSpace(c.Query("facility_id")),
		MaterialID: strings.TrimSpace(c.Query("material_id")),
	}
}

// parseDateRange reads start/end query parameters, defaulting to the trailing
// defaultDays window ending today.
func parseDateRange(c *gin.Context, defaultDays int) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	start := now.AddDate(0, 0, -defaultDays)
	end := now

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return start, end, err
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return start, end, err
		}
		end = parsed
	}

	return start, end, nil
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingScope):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoQualifyingData), errors.Is(err, domain.ErrInsufficientHistory):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
