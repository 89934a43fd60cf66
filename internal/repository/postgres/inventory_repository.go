package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *inventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetPosition(ctx context.Context, scope domain.Scope) (*domain.InventoryPosition, error) {
	// Lot balances plus still-open purchase order lines; a material with no
	// lots at all reads as a zero position, not an error.
	query := `
		SELECT
			$3::text AS material_id,
			COALESCE(SUM(l.on_hand_qty), 0)                       AS on_hand,
			COALESCE(SUM(l.allocated_qty), 0)                     AS allocated,
			COALESCE(SUM(l.on_hand_qty - l.allocated_qty), 0)     AS available,
			COALESCE((
				SELECT SUM(pol.ordered_qty - pol.received_qty)
				FROM purchase_order_lines pol
				JOIN purchase_orders po ON po.id = pol.purchase_order_id
				WHERE po.tenant_id = $1 AND po.facility_id = $2
				  AND pol.material_id = $3
				  AND po.status IN ('OPEN', 'PARTIALLY_RECEIVED')
			), 0) AS on_order
		FROM inventory_lots l
		WHERE l.tenant_id = $1 AND l.facility_id = $2 AND l.material_id = $3
		  AND l.status = 'RELEASED'`

	var pos domain.InventoryPosition
	if err := r.db.GetContext(ctx, &pos, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID); err != nil {
		return nil, fmt.Errorf("failed to get inventory position: %w", err)
	}

	return &pos, nil
}

func (r *inventoryRepository) GetLeadTimeStats(ctx context.Context, scope domain.Scope, since time.Time) (*domain.LeadTimeStats, error) {
	query := `
		SELECT
			COALESCE(AVG(EXTRACT(EPOCH FROM (po.received_at - po.ordered_at)) / 86400.0), 0)        AS mean_days,
			COALESCE(STDDEV_POP(EXTRACT(EPOCH FROM (po.received_at - po.ordered_at)) / 86400.0), 0) AS std_dev_days,
			COUNT(*)                                                                                AS sample_size
		FROM purchase_orders po
		JOIN purchase_order_lines pol ON pol.purchase_order_id = po.id
		WHERE po.tenant_id = $1 AND po.facility_id = $2
		  AND pol.material_id = $3
		  AND po.status = 'RECEIVED'
		  AND po.received_at IS NOT NULL
		  AND po.ordered_at >= $4`

	var stats domain.LeadTimeStats
	if err := r.db.GetContext(ctx, &stats, query,
		scope.TenantID, scope.FacilityID, scope.MaterialID, since); err != nil {
		return nil, fmt.Errorf("failed to get lead time stats: %w", err)
	}

	return &stats, nil
}
