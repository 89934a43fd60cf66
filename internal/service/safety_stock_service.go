package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toddjhayden/agogsaas-planning/internal/config"
	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/repository"
)

// Demand statistics window and lead-time sampling window.
const (
	demandStatsDays   = 90
	leadTimeStatsDays = 182
)

// CV thresholds deciding which safety stock formula applies.
const (
	demandCVThreshold   = 0.2
	leadTimeCVThreshold = 0.1
)

type SafetyStockService struct {
	demand    repository.DemandHistoryRepository
	inventory repository.InventoryRepository
	materials repository.MaterialRepository
	cfg       config.PlanningConfig
}

func NewSafetyStockService(
	demand repository.DemandHistoryRepository,
	inventory repository.InventoryRepository,
	materials repository.MaterialRepository,
	cfg config.PlanningConfig,
) *SafetyStockService {
	return &SafetyStockService{
		demand:    demand,
		inventory: inventory,
		materials: materials,
		cfg:       cfg,
	}
}

// zScore steps the service level up to the matching safety factor.
func zScore(serviceLevel float64) float64 {
	switch {
	case serviceLevel >= 0.99:
		return 2.33
	case serviceLevel >= 0.95:
		return 1.65
	case serviceLevel >= 0.90:
		return 1.28
	case serviceLevel >= 0.85:
		return 1.04
	case serviceLevel >= 0.80:
		return 0.84
	default:
		return 1.65
	}
}

// Calculate derives safety stock, reorder point and EOQ for a material. A nil
// serviceLevel falls back to the material's configured level, then the global
// default. Nothing is persisted; every call recomputes from current data.
func (s *SafetyStockService) Calculate(ctx context.Context, scope domain.Scope, serviceLevel *float64) (*domain.SafetyStockCalculation, error) {
	if err := scope.Validate(true); err != nil {
		return nil, err
	}

	planning, err := s.materials.GetPlanning(ctx, scope)
	if err != nil {
		return nil, err
	}

	level := s.resolveServiceLevel(serviceLevel, planning)
	z := zScore(level)

	now := time.Now()
	stats, err := s.demand.GetDemandStatistics(ctx, scope, now.AddDate(0, 0, -demandStatsDays), now)
	if err != nil {
		return nil, err
	}

	leadTime := s.leadTimeStats(ctx, scope, now)

	avgDaily := stats.Mean
	demandCV := cvOf(stats.StdDev, avgDaily)
	leadTimeCV := cvOf(leadTime.StdDevDays, leadTime.MeanDays)

	method, safetyStock := selectSafetyStock(z, avgDaily, stats.StdDev, demandCV,
		leadTime.MeanDays, leadTime.StdDevDays, leadTimeCV, s.cfg.SafetyStockDays)

	safetyStock = math.Max(0, safetyStock)
	reorderPoint := math.Max(0, avgDaily*leadTime.MeanDays+safetyStock)

	calc := &domain.SafetyStockCalculation{
		MaterialID:   scope.MaterialID,
		Method:       method,
		ServiceLevel: level,
		ZScore:       z,

		SafetyStock:  safetyStock,
		ReorderPoint: reorderPoint,
		EOQ:          s.economicOrderQty(avgDaily, planning),

		AvgDailyDemand:  avgDaily,
		DemandStdDev:    stats.StdDev,
		DemandCV:        demandCV,
		AvgLeadTimeDays: leadTime.MeanDays,
		LeadTimeStdDev:  leadTime.StdDevDays,
		LeadTimeCV:      leadTimeCV,
	}

	return calc, nil
}

// selectSafetyStock applies the four-way formula matrix on the two CVs.
func selectSafetyStock(z, avgDaily, demandStdDev, demandCV, avgLeadTime, leadTimeStdDev, leadTimeCV, safetyStockDays float64) (domain.SafetyStockMethod, float64) {
	demandVariable := demandCV >= demandCVThreshold
	leadTimeVariable := leadTimeCV >= leadTimeCVThreshold

	switch {
	case demandVariable && leadTimeVariable:
		// King's formula: both sources of variability combined.
		return domain.MethodCombined, z * math.Sqrt(
			avgLeadTime*demandStdDev*demandStdDev+
				avgDaily*avgDaily*leadTimeStdDev*leadTimeStdDev)
	case demandVariable:
		return domain.MethodDemandVariability, z * demandStdDev * math.Sqrt(avgLeadTime)
	case leadTimeVariable:
		return domain.MethodLeadTimeVariability, z * avgDaily * leadTimeStdDev
	default:
		return domain.MethodBasic, avgDaily * safetyStockDays
	}
}

func (s *SafetyStockService) resolveServiceLevel(override *float64, planning *domain.MaterialPlanning) float64 {
	if override != nil && *override > 0 {
		return *override
	}
	if planning.ServiceLevel != nil && *planning.ServiceLevel > 0 {
		return *planning.ServiceLevel
	}
	if s.cfg.DefaultServiceLevel > 0 {
		return s.cfg.DefaultServiceLevel
	}
	return 0.95
}

// leadTimeStats reads actual order-to-receipt durations, degrading to the
// configured defaults when the data is missing or the query fails.
func (s *SafetyStockService) leadTimeStats(ctx context.Context, scope domain.Scope, now time.Time) domain.LeadTimeStats {
	fallback := domain.LeadTimeStats{
		MeanDays:   float64(s.cfg.DefaultLeadTimeDays),
		StdDevDays: s.cfg.DefaultLeadTimeStdDev,
	}

	stats, err := s.inventory.GetLeadTimeStats(ctx, scope, now.AddDate(0, 0, -leadTimeStatsDays))
	if err != nil {
		log.Warn().Err(err).Str("material", scope.MaterialID).
			Msg("lead time query failed, using default lead time")
		return fallback
	}
	if stats.SampleSize == 0 || stats.MeanDays <= 0 {
		log.Warn().Str("material", scope.MaterialID).
			Msg("no received purchase orders, using default lead time")
		return fallback
	}

	return *stats
}

func (s *SafetyStockService) economicOrderQty(avgDaily float64, planning *domain.MaterialPlanning) float64 {
	unitCost := planning.StandardCost
	if unitCost <= 0 {
		unitCost = planning.LastCost
	}
	if unitCost <= 0 || avgDaily <= 0 {
		return 0
	}

	annualDemand := avgDaily * 365
	return math.Sqrt(2 * annualDemand * s.cfg.OrderingCost / (unitCost * s.cfg.HoldingCostRate))
}

func cvOf(stdDev, mean float64) float64 {
	if mean == 0 {
		return 0
	}
	return stdDev / mean
}

// UpdatePlanningParameters writes the material-master planning fields the
// engine owns. Nil fields in the update are left as-is.
func (s *SafetyStockService) UpdatePlanningParameters(ctx context.Context, scope domain.Scope, update domain.PlanningParametersUpdate) (*domain.MaterialPlanning, error) {
	if err := scope.Validate(true); err != nil {
		return nil, err
	}
	return s.materials.UpdatePlanningParameters(ctx, scope, update)
}
