package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toddjhayden/agogsaas-planning/internal/cache"
	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

func seedHistory(t *testing.T, repo *memDemandRepo, material string, days int, qty float64) {
	t.Helper()
	svc := NewDemandService(repo)
	end := time.Now().UTC().Truncate(24 * time.Hour)
	for i := days; i > 0; i-- {
		_, err := svc.RecordDemand(context.Background(), domain.DemandInput{
			Scope:      testScope(material),
			DemandDate: end.AddDate(0, 0, -i),
			Quantity:   qty,
		})
		require.NoError(t, err)
	}
}

func newForecastFixture() (*memDemandRepo, *memForecastRepo, *memMaterialRepo, *ForecastService) {
	demand := newMemDemandRepo()
	forecasts := &memForecastRepo{}
	materials := newMemMaterialRepo()
	svc := NewForecastService(demand, forecasts, materials, cache.NewNoopForecastCache(), planningDefaults())
	return demand, forecasts, materials, svc
}

func TestGenerateSkipsShortHistory(t *testing.T) {
	demand, _, _, svc := newForecastFixture()
	seedHistory(t, demand, "MAT-THIN", 3, 5)
	seedHistory(t, demand, "MAT-OK", 30, 5)

	result, err := svc.Generate(context.Background(),
		domain.Scope{TenantID: "t1", FacilityID: "f1"},
		[]string{"MAT-THIN", "MAT-OK"}, 30, domain.AlgorithmAuto)
	require.NoError(t, err)

	assert.Contains(t, result.Skipped, "MAT-THIN")
	assert.Contains(t, result.Generated, "MAT-OK")
	assert.Empty(t, result.Failed)
}

func TestGenerateVersioningAndSupersession(t *testing.T) {
	demand, forecasts, _, svc := newForecastFixture()
	seedHistory(t, demand, "MAT-1", 60, 8)
	scope := domain.Scope{TenantID: "t1", FacilityID: "f1"}

	for run := 1; run <= 3; run++ {
		result, err := svc.Generate(context.Background(), scope, []string{"MAT-1"}, 14, domain.AlgorithmMovingAverage)
		require.NoError(t, err)
		assert.Equal(t, run, result.Generated["MAT-1"])
	}

	// Exactly one ACTIVE row per forecast date, all from the latest version.
	activeByDate := make(map[string]int)
	for _, row := range forecasts.rows {
		if row.Status != domain.ForecastActive {
			continue
		}
		activeByDate[row.ForecastDate.Format("2006-01-02")]++
		assert.Equal(t, 3, row.Version)
	}
	assert.Len(t, activeByDate, 14)
	for date, count := range activeByDate {
		assert.Equal(t, 1, count, "duplicate active forecast on %s", date)
	}

	// Versions strictly increase across all rows for the material.
	assert.Len(t, forecasts.rows, 42)
}

func TestGenerateUsesForecastableListWhenMaterialsOmitted(t *testing.T) {
	demand, _, materials, svc := newForecastFixture()
	seedHistory(t, demand, "MAT-A", 30, 4)
	materials.forecastable = []string{"MAT-A"}

	result, err := svc.Generate(context.Background(),
		domain.Scope{TenantID: "t1", FacilityID: "f1"}, nil, 30, domain.AlgorithmAuto)
	require.NoError(t, err)

	assert.Contains(t, result.Generated, "MAT-A")
}

func TestGenerateFansOutOverWorkerPool(t *testing.T) {
	demand := newMemDemandRepo()
	forecasts := &memForecastRepo{}
	materials := newMemMaterialRepo()
	cfg := planningDefaults()
	cfg.BatchWorkers = 4
	svc := NewForecastService(demand, forecasts, materials, cache.NewNoopForecastCache(), cfg)

	ids := []string{"MAT-A", "MAT-B", "MAT-C", "MAT-D", "MAT-E", "MAT-F"}
	for _, id := range ids {
		seedHistory(t, demand, id, 30, 5)
	}

	result, err := svc.Generate(context.Background(),
		domain.Scope{TenantID: "t1", FacilityID: "f1"}, ids, 14, domain.AlgorithmMovingAverage)
	require.NoError(t, err)

	require.Len(t, result.Generated, len(ids))
	for _, id := range ids {
		assert.Equal(t, 1, result.Generated[id])
	}
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.Len(t, forecasts.rows, 14*len(ids))
}

func TestCommitPreservesPastActiveRows(t *testing.T) {
	demand, forecasts, _, svc := newForecastFixture()
	seedHistory(t, demand, "MAT-1", 60, 8)

	// A still-ACTIVE row dated yesterday must survive a new commit so its
	// forecast stays measurable against the recorded actual.
	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	forecasts.rows = append(forecasts.rows, domain.MaterialForecast{
		MaterialID:   "MAT-1",
		ForecastDate: yesterday,
		Quantity:     9,
		Status:       domain.ForecastActive,
		Version:      1,
	})

	_, err := svc.Generate(context.Background(),
		domain.Scope{TenantID: "t1", FacilityID: "f1"}, []string{"MAT-1"}, 14, domain.AlgorithmMovingAverage)
	require.NoError(t, err)

	for _, row := range forecasts.rows {
		if row.ForecastDate.Equal(yesterday) {
			assert.Equal(t, domain.ForecastActive, row.Status)
		}
	}
}

func TestGenerateRejectsMissingScope(t *testing.T) {
	_, _, _, svc := newForecastFixture()

	_, err := svc.Generate(context.Background(), domain.Scope{}, []string{"MAT-1"}, 30, domain.AlgorithmAuto)
	assert.ErrorIs(t, err, domain.ErrMissingScope)
}

func TestGetActiveForecastsOrderedAscending(t *testing.T) {
	demand, _, _, svc := newForecastFixture()
	seedHistory(t, demand, "MAT-1", 30, 8)
	scope := testScope("MAT-1")

	_, err := svc.Generate(context.Background(), scope, []string{"MAT-1"}, 14, domain.AlgorithmMovingAverage)
	require.NoError(t, err)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	rows, err := svc.GetActiveForecasts(context.Background(), scope, today, today.AddDate(0, 0, 14))
	require.NoError(t, err)

	require.Len(t, rows, 14)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i].ForecastDate.After(rows[i-1].ForecastDate))
	}
	assert.Equal(t, domain.AlgorithmMovingAverage, rows[0].Algorithm)
	assert.Equal(t, 8.0, rows[0].Quantity)
}
