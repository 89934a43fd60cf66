package service

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// In-memory repositories mirroring the persistence contracts, so the services
// can be exercised without a database.

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

type memDemandRepo struct {
	nextID int64
	rows   map[string]map[string]*domain.DemandHistoryRecord // material -> date -> row
	txns   []domain.InventoryTransaction
}

func newMemDemandRepo() *memDemandRepo {
	return &memDemandRepo{rows: make(map[string]map[string]*domain.DemandHistoryRecord)}
}

func (r *memDemandRepo) UpsertDemand(_ context.Context, record *domain.DemandHistoryRecord) (*domain.DemandHistoryRecord, error) {
	byDate, ok := r.rows[record.MaterialID]
	if !ok {
		byDate = make(map[string]*domain.DemandHistoryRecord)
		r.rows[record.MaterialID] = byDate
	}

	key := dateKey(record.DemandDate)
	if existing, ok := byDate[key]; ok {
		existing.ActualQty += record.ActualQty
		existing.SalesOrderQty += record.SalesOrderQty
		existing.ProductionOrderQty += record.ProductionOrderQty
		existing.TransferQty += record.TransferQty
		existing.ScrapQty += record.ScrapQty
		copied := *existing
		return &copied, nil
	}

	r.nextID++
	stored := *record
	stored.ID = r.nextID
	byDate[key] = &stored
	copied := stored
	return &copied, nil
}

func (r *memDemandRepo) GetDemandHistory(_ context.Context, scope domain.Scope, start, end time.Time) ([]domain.DemandHistoryRecord, error) {
	var out []domain.DemandHistoryRecord
	for _, row := range r.rows[scope.MaterialID] {
		if row.DemandDate.Before(start) || row.DemandDate.After(end) || row.Deleted {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DemandDate.Before(out[j].DemandDate) })
	return out, nil
}

func (r *memDemandRepo) GetBatchDemandHistory(ctx context.Context, scope domain.Scope, materialIDs []string, start, end time.Time) (map[string][]domain.DemandHistoryRecord, error) {
	grouped := make(map[string][]domain.DemandHistoryRecord, len(materialIDs))
	for _, id := range materialIDs {
		s := scope
		s.MaterialID = id
		rows, _ := r.GetDemandHistory(ctx, s, start, end)
		grouped[id] = rows
	}
	return grouped, nil
}

func (r *memDemandRepo) BackfillFromTransactions(_ context.Context, scope domain.Scope, start, end time.Time) (int64, error) {
	type dayAgg struct {
		material string
		date     time.Time
		qty      float64
		uom      string
	}
	aggs := make(map[string]*dayAgg)
	for _, txn := range r.txns {
		if txn.Quantity >= 0 {
			continue
		}
		switch txn.TransactionType {
		case domain.TxnIssue, domain.TxnScrap, domain.TxnTransfer:
		default:
			continue
		}
		if scope.MaterialID != "" && txn.MaterialID != scope.MaterialID {
			continue
		}
		day := time.Date(txn.OccurredAt.Year(), txn.OccurredAt.Month(), txn.OccurredAt.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(start) || day.After(end) {
			continue
		}
		key := txn.MaterialID + "|" + dateKey(day)
		if agg, ok := aggs[key]; ok {
			agg.qty += -txn.Quantity
		} else {
			aggs[key] = &dayAgg{material: txn.MaterialID, date: day, qty: -txn.Quantity, uom: txn.UnitOfMeasure}
		}
	}

	var inserted int64
	for _, agg := range aggs {
		byDate := r.rows[agg.material]
		if byDate == nil {
			byDate = make(map[string]*domain.DemandHistoryRecord)
			r.rows[agg.material] = byDate
		}
		key := dateKey(agg.date)
		if _, exists := byDate[key]; exists {
			continue // conflict-do-nothing
		}
		r.nextID++
		cal := domain.CalendarFor(agg.date)
		byDate[key] = &domain.DemandHistoryRecord{
			ID:            r.nextID,
			TenantID:      scope.TenantID,
			FacilityID:    scope.FacilityID,
			MaterialID:    agg.material,
			DemandDate:    agg.date,
			Year:          cal.Year,
			Month:         cal.Month,
			WeekOfYear:    cal.WeekOfYear,
			DayOfWeek:     cal.DayOfWeek,
			Quarter:       cal.Quarter,
			ActualQty:     agg.qty,
			UnitOfMeasure: agg.uom,
		}
		inserted++
	}
	return inserted, nil
}

func (r *memDemandRepo) AttachForecast(_ context.Context, id int64, forecastedQty float64) (*domain.DemandHistoryRecord, error) {
	for _, byDate := range r.rows {
		for _, row := range byDate {
			if row.ID != id {
				continue
			}
			qty := forecastedQty
			row.ForecastedQty = &qty
			signed := qty - row.ActualQty
			row.ForecastError = &signed
			if row.ActualQty > 0 {
				pct := math.Abs(row.ActualQty-qty) / row.ActualQty * 100
				row.AbsPctError = &pct
			} else {
				row.AbsPctError = nil
			}
			copied := *row
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memDemandRepo) GetDemandStatistics(ctx context.Context, scope domain.Scope, start, end time.Time) (*domain.DemandStatistics, error) {
	rows, _ := r.GetDemandHistory(ctx, scope, start, end)
	stats := &domain.DemandStatistics{Count: len(rows)}
	if len(rows) == 0 {
		return stats, nil
	}

	stats.Min = rows[0].ActualQty
	for _, row := range rows {
		stats.Sum += row.ActualQty
		stats.Min = math.Min(stats.Min, row.ActualQty)
		stats.Max = math.Max(stats.Max, row.ActualQty)
	}
	stats.Mean = stats.Sum / float64(len(rows))

	var sq float64
	for _, row := range rows {
		d := row.ActualQty - stats.Mean
		sq += d * d
	}
	stats.StdDev = math.Sqrt(sq / float64(len(rows)))
	return stats, nil
}

type memForecastRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.MaterialForecast
}

func (r *memForecastRepo) CommitForecastBatch(_ context.Context, scope domain.Scope, supersedeFrom time.Time, forecasts []domain.MaterialForecast) (int, error) {
	if len(forecasts) == 0 {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	version := 1
	for _, row := range r.rows {
		if row.MaterialID == scope.MaterialID && row.Version >= version {
			version = row.Version + 1
		}
	}

	for i := range r.rows {
		row := &r.rows[i]
		if row.MaterialID == scope.MaterialID &&
			row.Status == domain.ForecastActive &&
			!row.ForecastDate.Before(supersedeFrom) {
			row.Status = domain.ForecastSuperseded
		}
	}

	for _, f := range forecasts {
		r.nextID++
		f.ID = r.nextID
		f.TenantID = scope.TenantID
		f.FacilityID = scope.FacilityID
		f.MaterialID = scope.MaterialID
		f.Version = version
		f.Status = domain.ForecastActive
		r.rows = append(r.rows, f)
	}

	return version, nil
}

func (r *memForecastRepo) GetActiveForecasts(_ context.Context, scope domain.Scope, start, end time.Time) ([]domain.MaterialForecast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.MaterialForecast
	for _, row := range r.rows {
		if row.MaterialID != scope.MaterialID || row.Status != domain.ForecastActive {
			continue
		}
		if row.ForecastDate.Before(start) || row.ForecastDate.After(end) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ForecastDate.Before(out[j].ForecastDate) })
	return out, nil
}

type memAccuracyRepo struct {
	nextID      int64
	rows        map[string]domain.ForecastAccuracyMetrics
	performance []domain.AlgorithmPerformance
}

func newMemAccuracyRepo() *memAccuracyRepo {
	return &memAccuracyRepo{rows: make(map[string]domain.ForecastAccuracyMetrics)}
}

func (r *memAccuracyRepo) UpsertMetrics(_ context.Context, m *domain.ForecastAccuracyMetrics) (*domain.ForecastAccuracyMetrics, error) {
	key := m.MaterialID + "|" + dateKey(m.PeriodStart) + "|" + dateKey(m.PeriodEnd) + "|" + m.Aggregation
	stored := *m
	if existing, ok := r.rows[key]; ok {
		stored.ID = existing.ID
	} else {
		r.nextID++
		stored.ID = r.nextID
	}
	stored.CalculatedAt = time.Now()
	r.rows[key] = stored
	copied := stored
	return &copied, nil
}

func (r *memAccuracyRepo) GetMetrics(_ context.Context, scope domain.Scope, start, end time.Time) ([]domain.ForecastAccuracyMetrics, error) {
	var out []domain.ForecastAccuracyMetrics
	for _, row := range r.rows {
		if row.MaterialID == scope.MaterialID && !row.PeriodStart.Before(start) && !row.PeriodEnd.After(end) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memAccuracyRepo) AlgorithmPerformance(_ context.Context, _ domain.Scope, _ time.Time) ([]domain.AlgorithmPerformance, error) {
	return r.performance, nil
}

type memMaterialRepo struct {
	planning     map[string]*domain.MaterialPlanning
	forecastable []string
}

func newMemMaterialRepo() *memMaterialRepo {
	return &memMaterialRepo{planning: make(map[string]*domain.MaterialPlanning)}
}

func (r *memMaterialRepo) GetPlanning(_ context.Context, scope domain.Scope) (*domain.MaterialPlanning, error) {
	p, ok := r.planning[scope.MaterialID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memMaterialRepo) ListForecastable(_ context.Context, _ domain.Scope) ([]string, error) {
	return r.forecastable, nil
}

func (r *memMaterialRepo) UpdatePlanningParameters(_ context.Context, scope domain.Scope, update domain.PlanningParametersUpdate) (*domain.MaterialPlanning, error) {
	p, ok := r.planning[scope.MaterialID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.MinOrderQty != nil {
		p.MinOrderQty = *update.MinOrderQty
	}
	if update.OrderMultiple != nil {
		p.OrderMultiple = *update.OrderMultiple
	}
	if update.LeadTimeDays != nil {
		p.LeadTimeDays = *update.LeadTimeDays
	}
	if update.ServiceLevel != nil {
		p.ServiceLevel = update.ServiceLevel
	}
	if update.TargetAccuracyPct != nil {
		p.TargetAccuracyPct = update.TargetAccuracyPct
	}
	if update.ForecastingEnabled != nil {
		p.ForecastingEnabled = *update.ForecastingEnabled
	}
	copied := *p
	return &copied, nil
}

type memInventoryRepo struct {
	positions   map[string]*domain.InventoryPosition
	leadTimes   map[string]*domain.LeadTimeStats
	leadTimeErr error
}

func newMemInventoryRepo() *memInventoryRepo {
	return &memInventoryRepo{
		positions: make(map[string]*domain.InventoryPosition),
		leadTimes: make(map[string]*domain.LeadTimeStats),
	}
}

func (r *memInventoryRepo) GetPosition(_ context.Context, scope domain.Scope) (*domain.InventoryPosition, error) {
	if p, ok := r.positions[scope.MaterialID]; ok {
		copied := *p
		return &copied, nil
	}
	return &domain.InventoryPosition{MaterialID: scope.MaterialID}, nil
}

func (r *memInventoryRepo) GetLeadTimeStats(_ context.Context, scope domain.Scope, _ time.Time) (*domain.LeadTimeStats, error) {
	if r.leadTimeErr != nil {
		return nil, r.leadTimeErr
	}
	if s, ok := r.leadTimes[scope.MaterialID]; ok {
		copied := *s
		return &copied, nil
	}
	return &domain.LeadTimeStats{}, nil
}

type memRecommendationRepo struct {
	nextID int64
	rows   []domain.ReplenishmentRecommendation
}

func (r *memRecommendationRepo) Insert(_ context.Context, rec *domain.ReplenishmentRecommendation) (*domain.ReplenishmentRecommendation, error) {
	r.nextID++
	stored := *rec
	stored.ID = r.nextID
	stored.GeneratedAt = time.Now()
	r.rows = append(r.rows, stored)
	copied := stored
	return &copied, nil
}

func (r *memRecommendationRepo) List(_ context.Context, filter domain.RecommendationFilter) ([]domain.ReplenishmentRecommendation, int, error) {
	var out []domain.ReplenishmentRecommendation
	for _, row := range r.rows {
		if filter.MaterialID != "" && row.MaterialID != filter.MaterialID {
			continue
		}
		if filter.Urgency != "" && string(row.Urgency) != filter.Urgency {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, row)
	}
	return out, len(out), nil
}
