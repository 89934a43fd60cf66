package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
	"github.com/toddjhayden/agogsaas-planning/internal/repository"
)

type DemandService struct {
	repo repository.DemandHistoryRepository
}

func NewDemandService(repo repository.DemandHistoryRepository) *DemandService {
	return &DemandService{repo: repo}
}

// RecordDemand upserts one day of consumption. Calling it again for the same
// day accumulates the quantity components instead of overwriting them.
func (s *DemandService) RecordDemand(ctx context.Context, input domain.DemandInput) (*domain.DemandHistoryRecord, error) {
	if err := input.Scope.Validate(true); err != nil {
		return nil, err
	}
	if input.Quantity < 0 {
		return nil, fmt.Errorf("demand quantity must not be negative, got %f", input.Quantity)
	}

	cal := domain.CalendarFor(input.DemandDate)
	record := &domain.DemandHistoryRecord{
		TenantID:   input.TenantID,
		FacilityID: input.FacilityID,
		MaterialID: input.MaterialID,
		DemandDate: input.DemandDate,

		Year:       cal.Year,
		Month:      cal.Month,
		WeekOfYear: cal.WeekOfYear,
		DayOfWeek:  cal.DayOfWeek,
		Quarter:    cal.Quarter,

		ActualQty:     input.Quantity,
		UnitOfMeasure: input.UnitOfMeasure,

		SalesOrderQty:      input.SalesOrderQty,
		ProductionOrderQty: input.ProductionOrderQty,
		TransferQty:        input.TransferQty,
		ScrapQty:           input.ScrapQty,

		IsHoliday:     input.IsHoliday,
		IsPromotional: input.IsPromotional,
		HasCampaign:   input.HasCampaign,
		UnitPrice:     input.UnitPrice,
		DiscountPct:   input.DiscountPct,
	}

	return s.repo.UpsertDemand(ctx, record)
}

func (s *DemandService) GetHistory(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.DemandHistoryRecord, error) {
	if err := scope.Validate(true); err != nil {
		return nil, err
	}
	return s.repo.GetDemandHistory(ctx, scope, start, end)
}

func (s *DemandService) GetBatchHistory(ctx context.Context, scope domain.Scope, materialIDs []string, start, end time.Time) (map[string][]domain.DemandHistoryRecord, error) {
	if err := scope.Validate(false); err != nil {
		return nil, err
	}
	return s.repo.GetBatchDemandHistory(ctx, scope, materialIDs, start, end)
}

// Backfill aggregates raw consumption transactions into daily rows. Safe to
// re-run over the same range; existing days are untouched.
func (s *DemandService) Backfill(ctx context.Context, scope domain.Scope, start, end time.Time) (int64, error) {
	if err := scope.Validate(false); err != nil {
		return 0, err
	}

	inserted, err := s.repo.BackfillFromTransactions(ctx, scope, start, end)
	if err != nil {
		return 0, err
	}

	log.Info().
		Str("tenant", scope.TenantID).
		Str("facility", scope.FacilityID).
		Str("material", scope.MaterialID).
		Int64("rows", inserted).
		Msg("backfilled demand history from transactions")

	return inserted, nil
}

func (s *DemandService) GetStatistics(ctx context.Context, scope domain.Scope, start, end time.Time) (*domain.DemandStatistics, error) {
	if err := scope.Validate(true); err != nil {
		return nil, err
	}
	return s.repo.GetDemandStatistics(ctx, scope, start, end)
}
