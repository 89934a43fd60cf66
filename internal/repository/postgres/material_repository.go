package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

type materialRepository struct {
	db *DB
}

func NewMaterialRepository(db *DB) *materialRepository {
	return &materialRepository{db: db}
}

const planningColumns = `
	material_id, unit_of_measure, min_order_qty, order_multiple,
	lead_time_days, standard_cost, last_cost, preferred_vendor_id,
	target_accuracy_pct, service_level, forecasting_enabled`

func (r *materialRepository) GetPlanning(ctx context.Context, scope domain.Scope) (*domain.MaterialPlanning, error) {
	query := `
		SELECT` + planningColumns + `
		FROM materials
		WHERE tenant_id = $1 AND facility_id = $2 AND material_id = $3`

	var planning domain.MaterialPlanning
	err := r.db.GetContext(ctx, &planning, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get material planning: %w", err)
	}

	return &planning, nil
}

func (r *materialRepository) ListForecastable(ctx context.Context, scope domain.Scope) ([]string, error) {
	query := `
		SELECT material_id
		FROM materials
		WHERE tenant_id = $1 AND facility_id = $2 AND forecasting_enabled
		ORDER BY material_id`

	var ids []string
	if err := sqlx.SelectContext(ctx, r.db, &ids, query,
		scope.TenantID, scope.FacilityID); err != nil {
		return nil, fmt.Errorf("failed to list forecastable materials: %w", err)
	}

	return ids, nil
}

func (r *materialRepository) UpdatePlanningParameters(ctx context.Context, scope domain.Scope, update domain.PlanningParametersUpdate) (*domain.MaterialPlanning, error) {
	// COALESCE keeps any parameter the caller left nil.
	query := `
		UPDATE materials SET
			min_order_qty       = COALESCE($4, min_order_qty),
			order_multiple      = COALESCE($5, order_multiple),
			lead_time_days      = COALESCE($6, lead_time_days),
			service_level       = COALESCE($7, service_level),
			target_accuracy_pct = COALESCE($8, target_accuracy_pct),
			forecasting_enabled = COALESCE($9, forecasting_enabled),
			updated_at          = NOW()
		WHERE tenant_id = $1 AND facility_id = $2 AND material_id = $3
		RETURNING` + planningColumns

	var planning domain.MaterialPlanning
	err := r.db.GetContext(ctx, &planning, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID,
		update.MinOrderQty, update.OrderMultiple, update.LeadTimeDays,
		update.ServiceLevel, update.TargetAccuracyPct, update.ForecastingEnabled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update planning parameters: %w", err)
	}

	return &planning, nil
}
