package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/repository"
)

// orderDateBufferDays is subtracted from the latest viable order date so a
// recommendation is never cut exactly to the stockout day.
const orderDateBufferDays = 2

type RecommendationService struct {
	forecasts       repository.ForecastRepository
	inventory       repository.InventoryRepository
	materials       repository.MaterialRepository
	recommendations repository.RecommendationRepository
	safetyStock     *SafetyStockService
}

func NewRecommendationService(
	forecasts repository.ForecastRepository,
	inventory repository.InventoryRepository,
	materials repository.MaterialRepository,
	recommendations repository.RecommendationRepository,
	safetyStock *SafetyStockService,
) *RecommendationService {
	return &RecommendationService{
		forecasts:       forecasts,
		inventory:       inventory,
		materials:       materials,
		recommendations: recommendations,
		safetyStock:     safetyStock,
	}
}

// Generate produces replenishment recommendations for the given materials
// (all forecasting-enabled materials when the list is empty). Materials are
// evaluated independently: a failure is logged and the run continues.
func (s *RecommendationService) Generate(ctx context.Context, scope domain.Scope, materialIDs []string) ([]domain.ReplenishmentRecommendation, error) {
	if err := scope.Validate(false); err != nil {
		return nil, err
	}

	if len(materialIDs) == 0 {
		var err error
		materialIDs, err = s.materials.ListForecastable(ctx, scope)
		if err != nil {
			return nil, err
		}
	}

	var results []domain.ReplenishmentRecommendation
	for _, materialID := range materialIDs {
		materialScope := scope
		materialScope.MaterialID = materialID

		rec, err := s.generateForMaterial(ctx, materialScope)
		if err != nil {
			log.Error().Err(err).Str("material", materialID).Msg("recommendation generation failed")
			continue
		}
		if rec == nil {
			continue // replenishment not warranted
		}

		results = append(results, *rec)
	}

	return results, nil
}

func (s *RecommendationService) generateForMaterial(ctx context.Context, scope domain.Scope) (*domain.ReplenishmentRecommendation, error) {
	position, err := s.inventory.GetPosition(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("inventory position: %w", err)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	forecasts, err := s.forecasts.GetActiveForecasts(ctx, scope, today, today.AddDate(0, 0, 90))
	if err != nil {
		return nil, fmt.Errorf("active forecasts: %w", err)
	}
	if len(forecasts) == 0 {
		log.Warn().Str("material", scope.MaterialID).Msg("no active forecast, skipping recommendation")
		return nil, nil
	}

	f30, f60, f90 := windowedDemand(forecasts, today)

	calc, err := s.safetyStock.Calculate(ctx, scope, nil)
	if err != nil {
		return nil, fmt.Errorf("safety stock: %w", err)
	}

	stockout := projectStockout(forecasts, position.Available, calc.SafetyStock)

	// Strict comparisons: a position sitting exactly on the reorder point
	// does not trigger.
	projected := position.Available + position.OnOrder
	belowReorder := projected < calc.ReorderPoint
	belowForecast := projected < f30
	if !belowReorder && !belowForecast {
		return nil, nil
	}

	planning, err := s.materials.GetPlanning(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("material planning: %w", err)
	}

	qty := orderQuantity(calc.EOQ, f90, projected, calc.SafetyStock, planning)
	orderDate := recommendOrderDate(stockout, planning.LeadTimeDays, today)
	urgency := classifyUrgency(position.Available, calc.SafetyStock, stockout, today)

	unitCost := planning.StandardCost
	if unitCost <= 0 {
		unitCost = planning.LastCost
	}

	rec := &domain.ReplenishmentRecommendation{
		TenantID:   scope.TenantID,
		FacilityID: scope.FacilityID,
		MaterialID: scope.MaterialID,

		OnHand:    position.OnHand,
		Allocated: position.Allocated,
		Available: position.Available,
		OnOrder:   position.OnOrder,

		SafetyStock:  calc.SafetyStock,
		ReorderPoint: calc.ReorderPoint,
		EOQ:          calc.EOQ,

		Forecast30: f30,
		Forecast60: f60,
		Forecast90: f90,

		ProjectedStockoutDate: stockout,

		RecommendedQty:       qty,
		RecommendedOrderDate: orderDate,
		ExpectedDeliveryDate: orderDate.AddDate(0, 0, planning.LeadTimeDays),
		EstimatedCost:        qty * unitCost,

		Justification: buildJustification(belowReorder, belowForecast, projected, calc, f30, stockout),
		Method:        calc.Method,
		Urgency:       urgency,
		Status:        domain.RecommendationPending,
	}

	return s.recommendations.Insert(ctx, rec)
}

// windowedDemand sums forecasted demand over the 30/60/90 day windows.
func windowedDemand(forecasts []domain.MaterialForecast, today time.Time) (f30, f60, f90 float64) {
	for _, f := range forecasts {
		days := int(f.ForecastDate.Sub(today).Hours() / 24)
		if days < 0 || days > 90 {
			continue
		}
		qty := f.Quantity
		if f.ManualOverrideQty != nil {
			qty = *f.ManualOverrideQty
		}
		if days <= 30 {
			f30 += qty
		}
		if days <= 60 {
			f60 += qty
		}
		f90 += qty
	}
	return
}

// projectStockout walks the forecast day by day, draining available
// inventory, and returns the first date the remainder falls below safety
// stock. Nil when the horizon never breaches.
func projectStockout(forecasts []domain.MaterialForecast, available, safetyStock float64) *time.Time {
	remaining := available
	for _, f := range forecasts {
		qty := f.Quantity
		if f.ManualOverrideQty != nil {
			qty = *f.ManualOverrideQty
		}
		remaining -= qty
		if remaining < safetyStock {
			d := f.ForecastDate
			return &d
		}
	}
	return nil
}

// orderQuantity covers the larger of EOQ and the 90-day shortfall, then
// raises to the minimum order quantity and rounds up to the order multiple.
func orderQuantity(eoq, forecast90, projected, safetyStock float64, planning *domain.MaterialPlanning) float64 {
	shortfall := forecast90 + safetyStock - projected
	qty := math.Max(eoq, shortfall)
	qty = math.Max(qty, planning.MinOrderQty)

	if planning.OrderMultiple > 0 {
		qty = math.Ceil(qty/planning.OrderMultiple) * planning.OrderMultiple
	}

	return math.Max(0, qty)
}

func recommendOrderDate(stockout *time.Time, leadTimeDays int, today time.Time) time.Time {
	if stockout == nil {
		return today
	}

	orderDate := stockout.AddDate(0, 0, -(leadTimeDays + orderDateBufferDays))
	if orderDate.Before(today) {
		return today
	}
	return orderDate
}

// classifyUrgency ranks the recommendation. Available below safety stock is
// always CRITICAL regardless of the stockout projection.
func classifyUrgency(available, safetyStock float64, stockout *time.Time, today time.Time) domain.Urgency {
	if available < safetyStock {
		return domain.UrgencyCritical
	}
	if stockout == nil {
		return domain.UrgencyLow
	}

	days := int(stockout.Sub(today).Hours() / 24)
	switch {
	case days < 7:
		return domain.UrgencyCritical
	case days < 14:
		return domain.UrgencyHigh
	case days < 30:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func buildJustification(belowReorder, belowForecast bool, projected float64, calc *domain.SafetyStockCalculation, forecast30 float64, stockout *time.Time) string {
	var reasons []string
	if belowReorder {
		reasons = append(reasons, fmt.Sprintf(
			"projected inventory %.1f is below reorder point %.1f", projected, calc.ReorderPoint))
	}
	if belowForecast {
		reasons = append(reasons, fmt.Sprintf(
			"projected inventory %.1f does not cover 30-day forecasted demand %.1f", projected, forecast30))
	}
	if stockout != nil {
		reasons = append(reasons, fmt.Sprintf(
			"stockout projected on %s", stockout.Format("2006-01-02")))
	}
	return strings.Join(reasons, "; ")
}

// List reads stored recommendations, most urgent first.
func (s *RecommendationService) List(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ReplenishmentRecommendation, int, error) {
	if filter.TenantID == "" || filter.FacilityID == "" {
		return nil, 0, domain.ErrMissingScope
	}
	return s.recommendations.List(ctx, filter)
}
