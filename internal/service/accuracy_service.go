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

// defaultTargetMAPE applies when neither the material master nor the
// planning config carries an accuracy target.
const defaultTargetMAPE = 25.0

// comparisonWindowDays is the trailing window for algorithm ranking.
const comparisonWindowDays = 90

type AccuracyService struct {
	demand    repository.DemandHistoryRepository
	forecasts repository.ForecastRepository
	accuracy  repository.AccuracyRepository
	materials repository.MaterialRepository
	cfg       config.PlanningConfig
}

func NewAccuracyService(
	demand repository.DemandHistoryRepository,
	forecasts repository.ForecastRepository,
	accuracy repository.AccuracyRepository,
	materials repository.MaterialRepository,
	cfg config.PlanningConfig,
) *AccuracyService {
	return &AccuracyService{
		demand:    demand,
		forecasts: forecasts,
		accuracy:  accuracy,
		materials: materials,
		cfg:       cfg,
	}
}

// ResolveForecasts attaches the ACTIVE forecast quantity to every history day
// in the range that has one, deriving the per-day error fields. Days already
// resolved are re-resolved against the current ACTIVE rows.
func (s *AccuracyService) ResolveForecasts(ctx context.Context, scope domain.Scope, start, end time.Time) (int, error) {
	if err := scope.Validate(true); err != nil {
		return 0, err
	}

	records, err := s.demand.GetDemandHistory(ctx, scope, start, end)
	if err != nil {
		return 0, err
	}

	forecasts, err := s.forecasts.GetActiveForecasts(ctx, scope, start, end)
	if err != nil {
		return 0, err
	}

	byDate := make(map[string]float64, len(forecasts))
	for _, f := range forecasts {
		byDate[f.ForecastDate.Format("2006-01-02")] = f.Quantity
	}

	resolved := 0
	for _, rec := range records {
		qty, ok := byDate[rec.DemandDate.Format("2006-01-02")]
		if !ok {
			continue
		}
		if _, err := s.demand.AttachForecast(ctx, rec.ID, qty); err != nil {
			return resolved, err
		}
		resolved++
	}

	return resolved, nil
}

// CalculateMetrics computes and upserts accuracy metrics for a period.
// Returns domain.ErrNoQualifyingData when no day in the period carries both
// an actual and a forecasted quantity, or when every resolved day has zero
// actual demand and MAPE is therefore undefined; nothing is persisted in
// either case.
func (s *AccuracyService) CalculateMetrics(ctx context.Context, scope domain.Scope, periodStart, periodEnd time.Time, aggregation string) (*domain.ForecastAccuracyMetrics, error) {
	if err := scope.Validate(true); err != nil {
		return nil, err
	}
	if aggregation == "" {
		aggregation = "DAILY"
	}

	records, err := s.demand.GetDemandHistory(ctx, scope, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	type pair struct{ actual, forecast float64 }
	var pairs []pair
	for _, rec := range records {
		if rec.ForecastedQty == nil {
			continue
		}
		pairs = append(pairs, pair{actual: rec.ActualQty, forecast: *rec.ForecastedQty})
	}
	if len(pairs) == 0 {
		return nil, domain.ErrNoQualifyingData
	}

	var (
		sumAbsErr    float64
		sumSqErr     float64
		sumSignedErr float64
		sumPctErr    float64
		pctCount     int
		totalActual  float64
		totalFcst    float64
	)
	for _, p := range pairs {
		err := p.forecast - p.actual
		sumSignedErr += err
		sumAbsErr += math.Abs(err)
		sumSqErr += err * err
		totalActual += p.actual
		totalFcst += p.forecast

		// Zero-actual days are excluded from MAPE only.
		if p.actual > 0 {
			sumPctErr += math.Abs(p.actual-p.forecast) / p.actual * 100
			pctCount++
		}
	}

	// MAPE has no defined value without at least one positive-actual day,
	// and a zero-MAPE row would read as perfect accuracy.
	if pctCount == 0 {
		return nil, domain.ErrNoQualifyingData
	}

	n := float64(len(pairs))
	mae := sumAbsErr / n
	metrics := &domain.ForecastAccuracyMetrics{
		TenantID:    scope.TenantID,
		FacilityID:  scope.FacilityID,
		MaterialID:  scope.MaterialID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Aggregation: aggregation,

		MAE:  mae,
		RMSE: math.Sqrt(sumSqErr / n),
		Bias: sumSignedErr / n,

		SampleSize:      len(pairs),
		TotalActual:     totalActual,
		TotalForecasted: totalFcst,
	}
	metrics.MAPE = sumPctErr / float64(pctCount)
	if mae > 0 {
		metrics.TrackingSignal = sumSignedErr / mae
	}

	metrics.TargetMAPE = s.targetMAPE(ctx, scope)
	metrics.WithinTolerance = metrics.MAPE <= metrics.TargetMAPE

	return s.accuracy.UpsertMetrics(ctx, metrics)
}

func (s *AccuracyService) targetMAPE(ctx context.Context, scope domain.Scope) float64 {
	fallback := s.cfg.DefaultTargetMAPE
	if fallback <= 0 {
		fallback = defaultTargetMAPE
	}

	planning, err := s.materials.GetPlanning(ctx, scope)
	if err != nil {
		log.Warn().Err(err).Str("material", scope.MaterialID).Msg("falling back to default accuracy target")
		return fallback
	}
	if planning.TargetAccuracyPct == nil || *planning.TargetAccuracyPct <= 0 {
		return fallback
	}
	return *planning.TargetAccuracyPct
}

func (s *AccuracyService) GetMetrics(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.ForecastAccuracyMetrics, error) {
	if err := scope.Validate(true); err != nil {
		return nil, err
	}
	return s.accuracy.GetMetrics(ctx, scope, start, end)
}

// CompareMethods ranks every algorithm's trailing 90-day accuracy, best MAPE
// first.
func (s *AccuracyService) CompareMethods(ctx context.Context, scope domain.Scope) ([]domain.AlgorithmPerformance, error) {
	if err := scope.Validate(true); err != nil {
		return nil, err
	}
	since := time.Now().AddDate(0, 0, -comparisonWindowDays)
	return s.accuracy.AlgorithmPerformance(ctx, scope, since)
}

// BestPerformingMethod returns the algorithm with the lowest trailing MAPE,
// or ErrNoQualifyingData when nothing has been measured yet.
func (s *AccuracyService) BestPerformingMethod(ctx context.Context, scope domain.Scope) (*domain.AlgorithmPerformance, error) {
	perf, err := s.CompareMethods(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(perf) == 0 {
		return nil, domain.ErrNoQualifyingData
	}
	return &perf[0], nil
}
