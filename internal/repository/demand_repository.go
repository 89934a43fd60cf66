package repository

import (
	"context"
	"time"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// DemandHistoryRepository persists daily demand rows and their summary
// statistics.
type DemandHistoryRepository interface {
	// UpsertDemand inserts a daily row or additively accumulates its quantity
	// components on conflict, returning the resulting record.
	UpsertDemand(ctx context.Context, record *domain.DemandHistoryRecord) (*domain.DemandHistoryRecord, error)

	// GetDemandHistory reads the inclusive date range in ascending order,
	// excluding soft-deleted rows.
	GetDemandHistory(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.DemandHistoryRecord, error)

	// GetBatchDemandHistory reads many materials in one query and returns a
	// map with an entry (possibly empty) for every requested id.
	GetBatchDemandHistory(ctx context.Context, scope domain.Scope, materialIDs []string, start, end time.Time) (map[string][]domain.DemandHistoryRecord, error)

	// BackfillFromTransactions aggregates negative-quantity consumption
	// transactions into daily rows without overwriting existing ones.
	// Returns the number of rows inserted.
	BackfillFromTransactions(ctx context.Context, scope domain.Scope, start, end time.Time) (int64, error)

	// AttachForecast sets the forecasted quantity on a historical day and
	// derives the signed and absolute-percentage errors.
	AttachForecast(ctx context.Context, id int64, forecastedQty float64) (*domain.DemandHistoryRecord, error)

	// GetDemandStatistics returns mean, population std-dev, sum, count, min
	// and max of actual demand over the range.
	GetDemandStatistics(ctx context.Context, scope domain.Scope, start, end time.Time) (*domain.DemandStatistics, error)
}
