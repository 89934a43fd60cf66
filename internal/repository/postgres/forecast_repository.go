package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

type forecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) *forecastRepository {
	return &forecastRepository{db: db}
}

const forecastColumns = `
	id, tenant_id, facility_id, material_id, forecast_date,
	generated_at, version, horizon, algorithm, status,
	quantity, lower_80, upper_80, lower_95, upper_95, confidence,
	manual_override_qty, override_reason`

func (r *forecastRepository) CommitForecastBatch(ctx context.Context, scope domain.Scope, supersedeFrom time.Time, forecasts []domain.MaterialForecast) (int, error) {
	if len(forecasts) == 0 {
		return 0, nil
	}

	var version int
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Advisory lock scoped to the transaction serializes concurrent
		// commits for the same material without touching other materials.
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2 || ':' || $3))`,
			scope.TenantID, scope.FacilityID, scope.MaterialID); err != nil {
			return fmt.Errorf("failed to acquire forecast lock: %w", err)
		}

		if err := tx.GetContext(ctx, &version,
			`SELECT COALESCE(MAX(version), 0) + 1
			 FROM material_forecasts
			 WHERE tenant_id = $1 AND facility_id = $2 AND material_id = $3`,
			scope.TenantID, scope.FacilityID, scope.MaterialID); err != nil {
			return fmt.Errorf("failed to determine next forecast version: %w", err)
		}

		// The cutoff is bound from the caller's clock so it matches the
		// dates stamped on the new batch regardless of the session
		// timezone. The past keeps its recorded forecast for accuracy
		// measurement.
		if _, err := tx.ExecContext(ctx,
			`UPDATE material_forecasts
			 SET status = $4
			 WHERE tenant_id = $1 AND facility_id = $2 AND material_id = $3
			   AND status = $5 AND forecast_date >= $6`,
			scope.TenantID, scope.FacilityID, scope.MaterialID,
			domain.ForecastSuperseded, domain.ForecastActive, supersedeFrom); err != nil {
			return fmt.Errorf("failed to supersede active forecasts: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO material_forecasts (
				tenant_id, facility_id, material_id, forecast_date,
				generated_at, version, horizon, algorithm, status,
				quantity, lower_80, upper_80, lower_95, upper_95, confidence
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`)
		if err != nil {
			return fmt.Errorf("failed to prepare forecast insert: %w", err)
		}
		defer stmt.Close()

		for _, f := range forecasts {
			if _, err := stmt.ExecContext(ctx,
				scope.TenantID, scope.FacilityID, scope.MaterialID, f.ForecastDate,
				f.GeneratedAt, version, f.Horizon, f.Algorithm, domain.ForecastActive,
				f.Quantity, f.Lower80, f.Upper80, f.Lower95, f.Upper95, f.Confidence,
			); err != nil {
				return fmt.Errorf("failed to insert forecast for %s: %w",
					f.ForecastDate.Format("2006-01-02"), err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

func (r *forecastRepository) GetActiveForecasts(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.MaterialForecast, error) {
	query := `
		SELECT` + forecastColumns + `
		FROM material_forecasts
		WHERE tenant_id = $1 AND facility_id = $2 AND material_id = $3
		  AND status = $4
		  AND forecast_date BETWEEN $5 AND $6
		ORDER BY forecast_date ASC`

	var forecasts []domain.MaterialForecast
	if err := sqlx.SelectContext(ctx, r.db, &forecasts, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID,
		domain.ForecastActive, start, end); err != nil {
		return nil, fmt.Errorf("failed to get active forecasts: %w", err)
	}

	return forecasts, nil
}
