package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

type demandHistoryRepository struct {
	db *DB
}

func NewDemandHistoryRepository(db *DB) *demandHistoryRepository {
	return &demandHistoryRepository{db: db}
}

const demandColumns = `
	id, tenant_id, facility_id, material_id, demand_date,
	year, month, week_of_year, day_of_week, quarter,
	actual_qty, unit_of_measure,
	sales_order_qty, production_order_qty, transfer_qty, scrap_qty,
	forecasted_qty, forecast_error, abs_pct_error,
	is_holiday, is_promotional, has_campaign,
	unit_price, discount_pct, deleted, created_at, updated_at`

func (r *demandHistoryRepository) UpsertDemand(ctx context.Context, record *domain.DemandHistoryRecord) (*domain.DemandHistoryRecord, error) {
	query := `
		INSERT INTO demand_history (
			tenant_id, facility_id, material_id, demand_date,
			year, month, week_of_year, day_of_week, quarter,
			actual_qty, unit_of_measure,
			sales_order_qty, production_order_qty, transfer_qty, scrap_qty,
			is_holiday, is_promotional, has_campaign,
			unit_price, discount_pct, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW()
		)
		ON CONFLICT (tenant_id, facility_id, material_id, demand_date)
		DO UPDATE SET
			actual_qty           = demand_history.actual_qty + EXCLUDED.actual_qty,
			sales_order_qty      = demand_history.sales_order_qty + EXCLUDED.sales_order_qty,
			production_order_qty = demand_history.production_order_qty + EXCLUDED.production_order_qty,
			transfer_qty         = demand_history.transfer_qty + EXCLUDED.transfer_qty,
			scrap_qty            = demand_history.scrap_qty + EXCLUDED.scrap_qty,
			is_holiday           = demand_history.is_holiday OR EXCLUDED.is_holiday,
			is_promotional       = demand_history.is_promotional OR EXCLUDED.is_promotional,
			has_campaign         = demand_history.has_campaign OR EXCLUDED.has_campaign,
			unit_price           = COALESCE(EXCLUDED.unit_price, demand_history.unit_price),
			discount_pct         = COALESCE(EXCLUDED.discount_pct, demand_history.discount_pct),
			updated_at           = NOW()
		RETURNING` + demandColumns

	var result domain.DemandHistoryRecord
	err := r.db.GetContext(ctx, &result, query,
		record.TenantID, record.FacilityID, record.MaterialID, record.DemandDate,
		record.Year, record.Month, record.WeekOfYear, record.DayOfWeek, record.Quarter,
		record.ActualQty, record.UnitOfMeasure,
		record.SalesOrderQty, record.ProductionOrderQty, record.TransferQty, record.ScrapQty,
		record.IsHoliday, record.IsPromotional, record.HasCampaign,
		record.UnitPrice, record.DiscountPct,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert demand history: %w", err)
	}

	return &result, nil
}

func (r *demandHistoryRepository) GetDemandHistory(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.DemandHistoryRecord, error) {
	query := `
		SELECT` + demandColumns + `
		FROM demand_history
		WHERE tenant_id = $1 AND facility_id = $2 AND material_id = $3
		  AND demand_date BETWEEN $4 AND $5
		  AND NOT deleted
		ORDER BY demand_date ASC`

	var records []domain.DemandHistoryRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID, start, end); err != nil {
		return nil, fmt.Errorf("failed to get demand history: %w", err)
	}

	return records, nil
}

func (r *demandHistoryRepository) GetBatchDemandHistory(ctx context.Context, scope domain.Scope, materialIDs []string, start, end time.Time) (map[string][]domain.DemandHistoryRecord, error) {
	// One query for the whole batch; per-material fan-out is exactly what
	// this method exists to avoid.
	query := `
		SELECT` + demandColumns + `
		FROM demand_history
		WHERE tenant_id = $1 AND facility_id = $2 AND material_id = ANY($3)
		  AND demand_date BETWEEN $4 AND $5
		  AND NOT deleted
		ORDER BY material_id, demand_date ASC`

	var records []domain.DemandHistoryRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query,
		scope.TenantID, scope.FacilityID, pq.Array(materialIDs), start, end); err != nil {
		return nil, fmt.Errorf("failed to get batch demand history: %w", err)
	}

	grouped := make(map[string][]domain.DemandHistoryRecord, len(materialIDs))
	for _, id := range materialIDs {
		grouped[id] = nil
	}
	for _, rec := range records {
		grouped[rec.MaterialID] = append(grouped[rec.MaterialID], rec)
	}

	return grouped, nil
}

func (r *demandHistoryRepository) BackfillFromTransactions(ctx context.Context, scope domain.Scope, start, end time.Time) (int64, error) {
	// Consumption transactions carry negative quantities; aggregate them per
	// day and leave any day that already has a row untouched.
	query := `
		INSERT INTO demand_history (
			tenant_id, facility_id, material_id, demand_date,
			year, month, week_of_year, day_of_week, quarter,
			actual_qty, unit_of_measure,
			sales_order_qty, production_order_qty, transfer_qty, scrap_qty,
			created_at, updated_at
		)
		SELECT
			t.tenant_id, t.facility_id, t.material_id,
			DATE(t.occurred_at) AS demand_date,
			EXTRACT(YEAR FROM t.occurred_at)::int,
			EXTRACT(MONTH FROM t.occurred_at)::int,
			CEIL((EXTRACT(DOY FROM t.occurred_at) + EXTRACT(DOW FROM DATE_TRUNC('year', t.occurred_at))) / 7.0)::int,
			EXTRACT(DOW FROM t.occurred_at)::int,
			EXTRACT(QUARTER FROM t.occurred_at)::int,
			SUM(-t.quantity),
			MIN(t.unit_of_measure),
			SUM(CASE WHEN t.transaction_type = 'ISSUE' AND t.sales_order_id IS NOT NULL THEN -t.quantity ELSE 0 END),
			SUM(CASE WHEN t.transaction_type = 'ISSUE' AND t.production_order_id IS NOT NULL THEN -t.quantity ELSE 0 END),
			SUM(CASE WHEN t.transaction_type = 'TRANSFER' THEN -t.quantity ELSE 0 END),
			SUM(CASE WHEN t.transaction_type = 'SCRAP' THEN -t.quantity ELSE 0 END),
			NOW(), NOW()
		FROM inventory_transactions t
		WHERE t.tenant_id = $1 AND t.facility_id = $2
		  AND ($3 = '' OR t.material_id = $3)
		  AND t.occurred_at >= $4 AND t.occurred_at < $5 + INTERVAL '1 day'
		  AND t.transaction_type IN ('ISSUE', 'SCRAP', 'TRANSFER')
		  AND t.quantity < 0
		GROUP BY t.tenant_id, t.facility_id, t.material_id, DATE(t.occurred_at),
			EXTRACT(YEAR FROM t.occurred_at), EXTRACT(MONTH FROM t.occurred_at),
			EXTRACT(DOY FROM t.occurred_at), EXTRACT(DOW FROM DATE_TRUNC('year', t.occurred_at)),
			EXTRACT(DOW FROM t.occurred_at), EXTRACT(QUARTER FROM t.occurred_at)
		ON CONFLICT (tenant_id, facility_id, material_id, demand_date) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill demand history: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count backfilled rows: %w", err)
	}

	return inserted, nil
}

func (r *demandHistoryRepository) AttachForecast(ctx context.Context, id int64, forecastedQty float64) (*domain.DemandHistoryRecord, error) {
	// Error fields derive in place; a zero-actual day keeps a NULL percentage
	// error rather than dividing by zero.
	query := `
		UPDATE demand_history SET
			forecasted_qty = $2,
			forecast_error = $2 - actual_qty,
			abs_pct_error  = CASE WHEN actual_qty > 0
				THEN ABS(actual_qty - $2) / actual_qty * 100
				ELSE NULL END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING` + demandColumns

	var result domain.DemandHistoryRecord
	err := r.db.GetContext(ctx, &result, query, id, forecastedQty)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to attach forecast to demand history: %w", err)
	}

	return &result, nil
}

func (r *demandHistoryRepository) GetDemandStatistics(ctx context.Context, scope domain.Scope, start, end time.Time) (*domain.DemandStatistics, error) {
	query := `
		SELECT
			COALESCE(AVG(actual_qty), 0)        AS mean,
			COALESCE(STDDEV_POP(actual_qty), 0) AS std_dev,
			COALESCE(SUM(actual_qty), 0)        AS sum,
			COUNT(*)                            AS count,
			COALESCE(MIN(actual_qty), 0)        AS min,
			COALESCE(MAX(actual_qty), 0)        AS max
		FROM demand_history
		WHERE tenant_id = $1 AND facility_id = $2 AND material_id = $3
		  AND demand_date BETWEEN $4 AND $5
		  AND NOT deleted`

	var stats domain.DemandStatistics
	if err := r.db.GetContext(ctx, &stats, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID, start, end); err != nil {
		return nil, fmt.Errorf("failed to get demand statistics: %w", err)
	}

	return &stats, nil
}
