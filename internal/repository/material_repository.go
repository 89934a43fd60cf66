package repository

import (
	"context"
	"time"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// MaterialRepository exposes the narrow material-master contract the engine
// consumes, plus the single planning-parameters write it owns.
type MaterialRepository interface {
	GetPlanning(ctx context.Context, scope domain.Scope) (*domain.MaterialPlanning, error)

	// ListForecastable returns the materials at a facility with forecasting
	// enabled, for batch runs invoked without an explicit material list.
	ListForecastable(ctx context.Context, scope domain.Scope) ([]string, error)

	UpdatePlanningParameters(ctx context.Context, scope domain.Scope, update domain.PlanningParametersUpdate) (*domain.MaterialPlanning, error)
}

// InventoryRepository is the read-only contract onto the inventory and
// purchasing subsystems.
type InventoryRepository interface {
	// GetPosition aggregates on-hand/allocated/available over released lots
	// and open purchase-order quantity for a material at a facility.
	GetPosition(ctx context.Context, scope domain.Scope) (*domain.InventoryPosition, error)

	// GetLeadTimeStats summarizes actual order-to-receipt durations for the
	// material's received purchase orders since the given time.
	GetLeadTimeStats(ctx context.Context, scope domain.Scope, since time.Time) (*domain.LeadTimeStats, error)
}
