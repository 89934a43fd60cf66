package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

type accuracyRepository struct {
	db *DB
}

func NewAccuracyRepository(db *DB) *accuracyRepository {
	return &accuracyRepository{db: db}
}

const accuracyColumns = `
	id, tenant_id, facility_id, material_id,
	period_start, period_end, aggregation,
	mape, rmse, mae, bias, tracking_signal,
	sample_size, total_actual, total_forecasted,
	target_mape, within_tolerance, calculated_at`

func (r *accuracyRepository) UpsertMetrics(ctx context.Context, m *domain.ForecastAccuracyMetrics) (*domain.ForecastAccuracyMetrics, error) {
	// Recomputing the same period replaces the stored row.
	query := `
		INSERT INTO forecast_accuracy_metrics (
			tenant_id, facility_id, material_id,
			period_start, period_end, aggregation,
			mape, rmse, mae, bias, tracking_signal,
			sample_size, total_actual, total_forecasted,
			target_mape, within_tolerance, calculated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, NOW()
		)
		ON CONFLICT (tenant_id, facility_id, material_id, period_start, period_end, aggregation)
		DO UPDATE SET
			mape             = EXCLUDED.mape,
			rmse             = EXCLUDED.rmse,
			mae              = EXCLUDED.mae,
			bias             = EXCLUDED.bias,
			tracking_signal  = EXCLUDED.tracking_signal,
			sample_size      = EXCLUDED.sample_size,
			total_actual     = EXCLUDED.total_actual,
			total_forecasted = EXCLUDED.total_forecasted,
			target_mape      = EXCLUDED.target_mape,
			within_tolerance = EXCLUDED.within_tolerance,
			calculated_at    = NOW()
		RETURNING` + accuracyColumns

	var result domain.ForecastAccuracyMetrics
	err := r.db.GetContext(ctx, &result, query,
		m.TenantID, m.FacilityID, m.MaterialID,
		m.PeriodStart, m.PeriodEnd, m.Aggregation,
		m.MAPE, m.RMSE, m.MAE, m.Bias, m.TrackingSignal,
		m.SampleSize, m.TotalActual, m.TotalForecasted,
		m.TargetMAPE, m.WithinTolerance,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert accuracy metrics: %w", err)
	}

	return &result, nil
}

func (r *accuracyRepository) GetMetrics(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.ForecastAccuracyMetrics, error) {
	query := `
		SELECT` + accuracyColumns + `
		FROM forecast_accuracy_metrics
		WHERE tenant_id = $1 AND facility_id = $2 AND material_id = $3
		  AND period_start >= $4 AND period_end <= $5
		ORDER BY period_start ASC`

	var metrics []domain.ForecastAccuracyMetrics
	if err := sqlx.SelectContext(ctx, r.db, &metrics, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID, start, end); err != nil {
		return nil, fmt.Errorf("failed to get accuracy metrics: %w", err)
	}

	return metrics, nil
}

func (r *accuracyRepository) AlgorithmPerformance(ctx context.Context, scope domain.Scope, since time.Time) ([]domain.AlgorithmPerformance, error) {
	// Joins resolved history back onto the forecast rows that produced it,
	// so each algorithm is judged only on days it actually forecast.
	query := `
		SELECT
			f.algorithm,
			AVG(h.abs_pct_error)                   AS mape,
			AVG(f.quantity - h.actual_qty)         AS bias,
			COUNT(*)                               AS sample_size
		FROM material_forecasts f
		JOIN demand_history h
		  ON h.tenant_id = f.tenant_id
		 AND h.facility_id = f.facility_id
		 AND h.material_id = f.material_id
		 AND h.demand_date = f.forecast_date
		WHERE f.tenant_id = $1 AND f.facility_id = $2 AND f.material_id = $3
		  AND f.forecast_date >= $4
		  AND h.abs_pct_error IS NOT NULL
		  AND NOT h.deleted
		GROUP BY f.algorithm
		ORDER BY mape ASC`

	var perf []domain.AlgorithmPerformance
	if err := sqlx.SelectContext(ctx, r.db, &perf, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID, since); err != nil {
		return nil, fmt.Errorf("failed to get algorithm performance: %w", err)
	}

	return perf, nil
}
