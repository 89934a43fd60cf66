package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/toddjhayden/agogsaas-planning/internal/cache"
	"github.com/toddjhayden/agogsaas-planning/internal/config"
	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/forecast"
	"github.com/toddjhayden/agogsaas-planning/internal/repository"
)

// historyLookbackDays is how far back demand history feeds the models. A full
// year keeps the longer seasonal period candidates testable.
const historyLookbackDays = 365

type ForecastService struct {
	demand    repository.DemandHistoryRepository
	forecasts repository.ForecastRepository
	materials repository.MaterialRepository
	cache     cache.ForecastCache
	workers   int
}

func NewForecastService(
	demand repository.DemandHistoryRepository,
	forecasts repository.ForecastRepository,
	materials repository.MaterialRepository,
	fc cache.ForecastCache,
	cfg config.PlanningConfig,
) *ForecastService {
	workers := cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	return &ForecastService{
		demand:    demand,
		forecasts: forecasts,
		materials: materials,
		cache:     fc,
		workers:   workers,
	}
}

// BatchResult summarizes one batch generation run.
type BatchResult struct {
	Generated map[string]int `json:"generated"` // material id -> committed version
	Skipped   []string       `json:"skipped"`   // insufficient history
	Failed    []string       `json:"failed"`
}

// Generate runs a forecast for every requested material. An empty material
// list means every forecasting-enabled material at the facility. Materials
// with fewer than forecast.MinObservations days of history are skipped with a
// warning; one material's failure never aborts the rest of the batch.
func (s *ForecastService) Generate(ctx context.Context, scope domain.Scope, materialIDs []string, horizonDays int, choice domain.Algorithm) (*BatchResult, error) {
	if err := scope.Validate(false); err != nil {
		return nil, err
	}
	if horizonDays <= 0 {
		horizonDays = 30
	}

	if len(materialIDs) == 0 {
		var err error
		materialIDs, err = s.materials.ListForecastable(ctx, scope)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	start := now.AddDate(0, 0, -historyLookbackDays)
	histories, err := s.demand.GetBatchDemandHistory(ctx, scope, materialIDs, start, now)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Generated: make(map[string]int, len(materialIDs))}

	// Materials are independent, so the batch fans out over a bounded
	// worker pool. Failures are collected per material, never returned.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, materialID := range materialIDs {
		records := histories[materialID]
		if len(records) < forecast.MinObservations {
			log.Warn().
				Str("material", materialID).
				Int("observations", len(records)).
				Msg("skipping material with insufficient demand history")
			result.Skipped = append(result.Skipped, materialID)
			continue
		}

		materialScope := scope
		materialScope.MaterialID = materialID

		g.Go(func() error {
			version, err := s.generateForMaterial(gctx, materialScope, records, horizonDays, choice, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error().Err(err).Str("material", materialScope.MaterialID).Msg("forecast generation failed")
				result.Failed = append(result.Failed, materialScope.MaterialID)
				return nil
			}
			result.Generated[materialScope.MaterialID] = version
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *ForecastService) generateForMaterial(ctx context.Context, scope domain.Scope, records []domain.DemandHistoryRecord, horizonDays int, choice domain.Algorithm, now time.Time) (int, error) {
	series := make([]float64, len(records))
	for i, rec := range records {
		series[i] = rec.ActualQty
	}

	res := forecast.Generate(series, horizonDays, choice)

	horizon := domain.ClassifyHorizon(horizonDays)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	forecasts := make([]domain.MaterialForecast, len(res.Points))
	for i, p := range res.Points {
		forecasts[i] = domain.MaterialForecast{
			TenantID:     scope.TenantID,
			FacilityID:   scope.FacilityID,
			MaterialID:   scope.MaterialID,
			ForecastDate: today.AddDate(0, 0, p.Step),
			GeneratedAt:  now,
			Horizon:      horizon,
			Algorithm:    res.Algorithm,
			Quantity:     p.Quantity,
			Lower80:      p.Lower80,
			Upper80:      p.Upper80,
			Lower95:      p.Lower95,
			Upper95:      p.Upper95,
			Confidence:   res.Confidence,
		}
	}

	version, err := s.forecasts.CommitForecastBatch(ctx, scope, today, forecasts)
	if err != nil {
		return 0, err
	}

	if err := s.cache.InvalidateMaterial(ctx, scope); err != nil {
		log.Warn().Err(err).Str("material", scope.MaterialID).Msg("forecast cache invalidation failed")
	}

	log.Info().
		Str("material", scope.MaterialID).
		Str("algorithm", string(res.Algorithm)).
		Int("version", version).
		Int("horizon_days", horizonDays).
		Msg("forecast committed")

	return version, nil
}

// GetActiveForecasts serves the ACTIVE rows for a date range, cache-aside.
func (s *ForecastService) GetActiveForecasts(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.MaterialForecast, error) {
	if err := scope.Validate(true); err != nil {
		return nil, err
	}

	if cached, ok, err := s.cache.GetActive(ctx, scope, start, end); err != nil {
		log.Warn().Err(err).Str("material", scope.MaterialID).Msg("forecast cache read failed")
	} else if ok {
		return cached, nil
	}

	forecasts, err := s.forecasts.GetActiveForecasts(ctx, scope, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetActive(ctx, scope, start, end, forecasts); err != nil {
		log.Warn().Err(err).Str("material", scope.MaterialID).Msg("forecast cache write failed")
	}

	return forecasts, nil
}
