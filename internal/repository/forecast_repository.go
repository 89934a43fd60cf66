package repository

import (
	"context"
	"time"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// ForecastRepository persists forecast rows and owns the supersession
// discipline.
type ForecastRepository interface {
	// CommitForecastBatch atomically assigns the next version, marks all
	// still-ACTIVE rows dated supersedeFrom or later as SUPERSEDED and
	// inserts the new batch as ACTIVE. Rows before supersedeFrom keep their
	// recorded forecast for accuracy measurement. Concurrent commits for the
	// same material are serialized; different materials are independent.
	CommitForecastBatch(ctx context.Context, scope domain.Scope, supersedeFrom time.Time, forecasts []domain.MaterialForecast) (version int, err error)

	// GetActiveForecasts reads ACTIVE rows in the inclusive range, ascending
	// by date.
	GetActiveForecasts(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.MaterialForecast, error)
}

// AccuracyRepository persists accuracy metric rows and serves the read-only
// algorithm-performance aggregates.
type AccuracyRepository interface {
	// UpsertMetrics replaces the row keyed by (material, period, aggregation).
	UpsertMetrics(ctx context.Context, metrics *domain.ForecastAccuracyMetrics) (*domain.ForecastAccuracyMetrics, error)

	GetMetrics(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.ForecastAccuracyMetrics, error)

	// AlgorithmPerformance aggregates forecast error by algorithm over the
	// trailing window, ordered best (lowest MAPE) first.
	AlgorithmPerformance(ctx context.Context, scope domain.Scope, since time.Time) ([]domain.AlgorithmPerformance, error)
}

// RecommendationRepository persists replenishment recommendations.
type RecommendationRepository interface {
	Insert(ctx context.Context, rec *domain.ReplenishmentRecommendation) (*domain.ReplenishmentRecommendation, error)
	List(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ReplenishmentRecommendation, int, error)
}
