package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toddjhayden/agogsaas-planning/internal/config"
	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

func planningDefaults() config.PlanningConfig {
	return config.PlanningConfig{
		DefaultServiceLevel:   0.95,
		DefaultTargetMAPE:     25.0,
		DefaultLeadTimeDays:   14,
		DefaultLeadTimeStdDev: 3.0,
		SafetyStockDays:       7.0,
		OrderingCost:          50.0,
		HoldingCostRate:       0.25,
	}
}

func TestZScoreStepFunction(t *testing.T) {
	tests := []struct {
		serviceLevel float64
		want         float64
	}{
		{0.80, 0.84},
		{0.85, 1.04},
		{0.90, 1.28},
		{0.95, 1.65},
		{0.99, 2.33},
		{0.50, 1.65}, // below the table, default
		{0.97, 1.65}, // between steps, rounds down
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, zScore(tt.serviceLevel), "service level %.2f", tt.serviceLevel)
	}
}

func TestSafetyStockFormulaSelection(t *testing.T) {
	const (
		z        = 1.65
		avgDaily = 10.0
		leadTime = 9.0
		ssDays   = 7.0
	)

	tests := []struct {
		name           string
		demandStdDev   float64
		leadTimeStdDev float64
		wantMethod     domain.SafetyStockMethod
		wantStock      float64
	}{
		{
			name:         "stable demand and lead time",
			demandStdDev: 1.0, leadTimeStdDev: 0.5,
			wantMethod: domain.MethodBasic,
			wantStock:  avgDaily * ssDays,
		},
		{
			name:         "variable demand only",
			demandStdDev: 4.0, leadTimeStdDev: 0.5,
			wantMethod: domain.MethodDemandVariability,
			wantStock:  z * 4.0 * math.Sqrt(leadTime),
		},
		{
			name:         "variable lead time only",
			demandStdDev: 1.0, leadTimeStdDev: 2.0,
			wantMethod: domain.MethodLeadTimeVariability,
			wantStock:  z * avgDaily * 2.0,
		},
		{
			name:         "both variable",
			demandStdDev: 4.0, leadTimeStdDev: 2.0,
			wantMethod: domain.MethodCombined,
			wantStock:  z * math.Sqrt(leadTime*16.0+100.0*4.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			demandCV := tt.demandStdDev / avgDaily
			leadTimeCV := tt.leadTimeStdDev / leadTime

			method, stock := selectSafetyStock(z, avgDaily, tt.demandStdDev, demandCV,
				leadTime, tt.leadTimeStdDev, leadTimeCV, ssDays)

			assert.Equal(t, tt.wantMethod, method)
			assert.InDelta(t, tt.wantStock, stock, 1e-9)
		})
	}
}

func newSafetyStockFixture() (*memDemandRepo, *memInventoryRepo, *memMaterialRepo, *SafetyStockService) {
	demand := newMemDemandRepo()
	inventory := newMemInventoryRepo()
	materials := newMemMaterialRepo()
	svc := NewSafetyStockService(demand, inventory, materials, planningDefaults())
	return demand, inventory, materials, svc
}

func TestCalculateSafetyStockEndToEnd(t *testing.T) {
	demand, inventory, materials, svc := newSafetyStockFixture()

	materials.planning["MAT-1"] = &domain.MaterialPlanning{
		MaterialID:   "MAT-1",
		StandardCost: 2.0,
		LeadTimeDays: 10,
	}
	inventory.leadTimes["MAT-1"] = &domain.LeadTimeStats{MeanDays: 10, StdDevDays: 0, SampleSize: 5}

	// Constant consumption: CV 0 on both axes selects the basic formula.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 1; i <= 60; i++ {
		_, err := demand.UpsertDemand(context.Background(), &domain.DemandHistoryRecord{
			TenantID: "t1", FacilityID: "f1", MaterialID: "MAT-1",
			DemandDate: today.AddDate(0, 0, -i), ActualQty: 10,
		})
		require.NoError(t, err)
	}

	calc, err := svc.Calculate(context.Background(), testScope("MAT-1"), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.MethodBasic, calc.Method)
	assert.Equal(t, 0.95, calc.ServiceLevel)
	assert.Equal(t, 1.65, calc.ZScore)
	assert.InDelta(t, 70.0, calc.SafetyStock, 1e-9)       // 10/day x 7 days
	assert.InDelta(t, 170.0, calc.ReorderPoint, 1e-9)     // 10x10 + 70
	assert.InDelta(t, 854.4, calc.EOQ, 0.1)               // sqrt(2x3650x50/(2x0.25))
	assert.InDelta(t, 10.0, calc.AvgDailyDemand, 1e-9)
	assert.Zero(t, calc.DemandCV)
}

func TestCalculateFallsBackToDefaultLeadTime(t *testing.T) {
	demand, inventory, materials, svc := newSafetyStockFixture()

	materials.planning["MAT-1"] = &domain.MaterialPlanning{MaterialID: "MAT-1", StandardCost: 1.0}
	inventory.leadTimeErr = errors.New("purchasing subsystem unavailable")

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 1; i <= 30; i++ {
		_, err := demand.UpsertDemand(context.Background(), &domain.DemandHistoryRecord{
			TenantID: "t1", FacilityID: "f1", MaterialID: "MAT-1",
			DemandDate: today.AddDate(0, 0, -i), ActualQty: 5,
		})
		require.NoError(t, err)
	}

	calc, err := svc.Calculate(context.Background(), testScope("MAT-1"), nil)
	require.NoError(t, err)

	assert.Equal(t, 14.0, calc.AvgLeadTimeDays)
	assert.Equal(t, 3.0, calc.LeadTimeStdDev)
	// 3/14 > 0.1 pushes selection to the lead-time-variability formula.
	assert.Equal(t, domain.MethodLeadTimeVariability, calc.Method)
}

func TestCalculateHonorsServiceLevelOverride(t *testing.T) {
	demand, inventory, materials, svc := newSafetyStockFixture()

	materials.planning["MAT-1"] = &domain.MaterialPlanning{MaterialID: "MAT-1"}
	inventory.leadTimes["MAT-1"] = &domain.LeadTimeStats{MeanDays: 7, StdDevDays: 0, SampleSize: 3}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	_, err := demand.UpsertDemand(context.Background(), &domain.DemandHistoryRecord{
		TenantID: "t1", FacilityID: "f1", MaterialID: "MAT-1",
		DemandDate: today.AddDate(0, 0, -1), ActualQty: 4,
	})
	require.NoError(t, err)

	level := 0.99
	calc, err := svc.Calculate(context.Background(), testScope("MAT-1"), &level)
	require.NoError(t, err)

	assert.Equal(t, 0.99, calc.ServiceLevel)
	assert.Equal(t, 2.33, calc.ZScore)
}

func TestCalculateRequiresKnownMaterial(t *testing.T) {
	_, _, _, svc := newSafetyStockFixture()

	_, err := svc.Calculate(context.Background(), testScope("MAT-MISSING"), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePlanningParameters(t *testing.T) {
	_, _, materials, svc := newSafetyStockFixture()
	materials.planning["MAT-1"] = &domain.MaterialPlanning{MaterialID: "MAT-1", MinOrderQty: 10}

	moq := 25.0
	lead := 21
	updated, err := svc.UpdatePlanningParameters(context.Background(), testScope("MAT-1"),
		domain.PlanningParametersUpdate{MinOrderQty: &moq, LeadTimeDays: &lead})
	require.NoError(t, err)

	assert.Equal(t, 25.0, updated.MinOrderQty)
	assert.Equal(t, 21, updated.LeadTimeDays)
}
