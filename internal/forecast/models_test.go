package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageFlatForecast(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = float64(10 + i%5)
	}

	result := MovingAverage(series, 14)
	require.Len(t, result.Points, 14)
	assert.InDelta(t, 0.70, result.Confidence, 1e-10)

	// Mean and population std-dev over the trailing 30-day window.
	for _, p := range result.Points {
		assert.InDelta(t, 12.0, p.Quantity, 1e-10)
	}
	width1 := result.Points[0].Upper80 - result.Points[0].Lower80
	assert.InDelta(t, 2*1.28*math.Sqrt(2), width1, 1e-10)
}

func TestIntervalWidthGrowsWithSqrtOfStep(t *testing.T) {
	series := []float64{10, 14, 9, 13, 11, 15, 10, 12, 11, 13}

	for name, result := range map[string]Result{
		"moving average":        MovingAverage(series, 9),
		"exponential smoothing": ExponentialSmoothing(series, 9),
	} {
		t.Run(name, func(t *testing.T) {
			w1 := result.Points[0].Upper95 - result.Points[0].Quantity
			for _, p := range result.Points {
				wh := p.Upper95 - p.Quantity
				assert.InDelta(t, w1*math.Sqrt(float64(p.Step)), wh, 1e-9,
					"step %d", p.Step)
			}
		})
	}
}

func TestExponentialSmoothingFit(t *testing.T) {
	series := []float64{10, 12, 11, 13, 12, 14, 13}
	result := ExponentialSmoothing(series, 3)

	require.Len(t, result.Points, 3)
	assert.InDelta(t, 0.75, result.Confidence, 1e-10)
	// Level after the recursive fit seeded at the first observation.
	assert.InDelta(t, 12.515572, result.Points[0].Quantity, 1e-6)
	// Flat across the horizon.
	assert.InDelta(t, result.Points[0].Quantity, result.Points[2].Quantity, 1e-10)
}

func TestExponentialSmoothingSingleObservation(t *testing.T) {
	result := ExponentialSmoothing([]float64{8}, 2)
	require.Len(t, result.Points, 2)
	assert.InDelta(t, 8.0, result.Points[0].Quantity, 1e-10)
	// No one-step errors, so the interval collapses.
	assert.InDelta(t, 8.0, result.Points[1].Lower95, 1e-10)
	assert.InDelta(t, 8.0, result.Points[1].Upper95, 1e-10)
}

func TestForecastsNeverNegative(t *testing.T) {
	declining := make([]float64, 90)
	for i := range declining {
		declining[i] = math.Max(0, 50-float64(i))
	}

	for name, result := range map[string]Result{
		"moving average":        MovingAverage(declining, 30),
		"exponential smoothing": ExponentialSmoothing(declining, 30),
		"holt winters":          HoltWinters(declining, 30),
	} {
		t.Run(name, func(t *testing.T) {
			for _, p := range result.Points {
				assert.GreaterOrEqual(t, p.Quantity, 0.0, "step %d", p.Step)
				assert.GreaterOrEqual(t, p.Lower80, 0.0, "step %d", p.Step)
				assert.GreaterOrEqual(t, p.Lower95, 0.0, "step %d", p.Step)
			}
		})
	}
}

func TestHoltWintersTracksWeeklyPattern(t *testing.T) {
	series := weeklyBlockSeries(98)
	result := HoltWinters(series, 14)

	require.Len(t, result.Points, 14)
	assert.Equal(t, "HOLT_WINTERS", string(result.Algorithm))
	assert.InDelta(t, 0.80, result.Confidence, 1e-10)

	// The pattern repeats every 7 days: peak phases must forecast well above
	// trough phases.
	n := len(series)
	var peak, trough float64
	var peaks, troughs int
	for _, p := range result.Points {
		phase := (n + p.Step - 1) % 7
		if phase < 3 {
			peak += p.Quantity
			peaks++
		} else {
			trough += p.Quantity
			troughs++
		}
	}
	assert.Greater(t, peak/float64(peaks), trough/float64(troughs)+40)
}

func TestHoltWintersFallsBackOnShortHistory(t *testing.T) {
	// 10 observations cannot support even the weekly period twice.
	series := []float64{5, 9, 5, 9, 5, 9, 5, 9, 5, 9}
	result := HoltWinters(series, 5)
	assert.Equal(t, "EXPONENTIAL_SMOOTHING", string(result.Algorithm))
}

func TestGenerateHonorsExplicitChoice(t *testing.T) {
	series := weeklyBlockSeries(98)

	// AUTO would pick Holt-Winters here; an explicit choice overrides it.
	result := Generate(series, 7, "MOVING_AVERAGE")
	assert.Equal(t, "MOVING_AVERAGE", string(result.Algorithm))

	auto := Generate(series, 7, "AUTO")
	assert.Equal(t, "HOLT_WINTERS", string(auto.Algorithm))
}
