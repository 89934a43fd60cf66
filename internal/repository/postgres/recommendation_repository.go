package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

type recommendationRepository struct {
	db *DB
}

func NewRecommendationRepository(db *DB) *recommendationRepository {
	return &recommendationRepository{db: db}
}

const recommendationColumns = `
	id, tenant_id, facility_id, material_id,
	on_hand, allocated, available, on_order,
	safety_stock, reorder_point, eoq,
	forecast_30, forecast_60, forecast_90,
	projected_stockout_date,
	recommended_qty, recommended_order_date, expected_delivery_date, estimated_cost,
	justification, method, urgency, status, generated_at`

func (r *recommendationRepository) Insert(ctx context.Context, rec *domain.ReplenishmentRecommendation) (*domain.ReplenishmentRecommendation, error) {
	query := `
		INSERT INTO replenishment_recommendations (
			tenant_id, facility_id, material_id,
			on_hand, allocated, available, on_order,
			safety_stock, reorder_point, eoq,
			forecast_30, forecast_60, forecast_90,
			projected_stockout_date,
			recommended_qty, recommended_order_date, expected_delivery_date, estimated_cost,
			justification, method, urgency, status, generated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, NOW()
		)
		RETURNING` + recommendationColumns

	var result domain.ReplenishmentRecommendation
	err := r.db.GetContext(ctx, &result, query,
		rec.TenantID, rec.FacilityID, rec.MaterialID,
		rec.OnHand, rec.Allocated, rec.Available, rec.OnOrder,
		rec.SafetyStock, rec.ReorderPoint, rec.EOQ,
		rec.Forecast30, rec.Forecast60, rec.Forecast90,
		rec.ProjectedStockoutDate,
		rec.RecommendedQty, rec.RecommendedOrderDate, rec.ExpectedDeliveryDate, rec.EstimatedCost,
		rec.Justification, rec.Method, rec.Urgency, rec.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recommendation: %w", err)
	}

	return &result, nil
}

func (r *recommendationRepository) List(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ReplenishmentRecommendation, int, error) {
	conditions := []string{"tenant_id = $1", "facility_id = $2"}
	args := []interface{}{filter.TenantID, filter.FacilityID}

	if filter.MaterialID != "" {
		args = append(args, filter.MaterialID)
		conditions = append(conditions, fmt.Sprintf("material_id = $%d", len(args)))
	}
	if filter.Urgency != "" {
		args = append(args, filter.Urgency)
		conditions = append(conditions, fmt.Sprintf("urgency = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM replenishment_recommendations WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count recommendations: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`
		SELECT%s
		FROM replenishment_recommendations
		WHERE %s
		ORDER BY
			CASE urgency
				WHEN 'CRITICAL' THEN 0
				WHEN 'HIGH' THEN 1
				WHEN 'MEDIUM' THEN 2
				ELSE 3
			END,
			recommended_order_date ASC
		LIMIT $%d OFFSET $%d`,
		recommendationColumns, where, len(args)-1, len(args))

	var recs []domain.ReplenishmentRecommendation
	if err := sqlx.SelectContext(ctx, r.db, &recs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list recommendations: %w", err)
	}

	return recs, total, nil
}
