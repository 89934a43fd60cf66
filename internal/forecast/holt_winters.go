package forecast

import (
	"math"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// Holt-Winters smoothing factors: level, trend, seasonal.
const (
	hwAlpha = 0.2
	hwBeta  = 0.1
	hwGamma = 0.1
)

// hwState is the smoothing state folded over the series. The fit and the
// residual replay each seed and fold their own copy.
type hwState struct {
	level    float64
	trend    float64
	seasonal []float64
}

// HoltWinters fits additive Holt-Winters with an auto-detected seasonal
// period and projects level + trend + seasonal across the horizon, floored
// at zero. When the history is shorter than two full seasonal cycles it
// falls back to exponential smoothing.
func HoltWinters(series []float64, horizon int) Result {
	period := DetectSeasonalPeriod(series)
	if len(series) < 2*period {
		return ExponentialSmoothing(series, horizon)
	}

	state := fitHoltWinters(series, period)
	residual := holtWintersResidual(series, period)

	n := len(series)
	points := make([]Point, 0, horizon)
	for h := 1; h <= horizon; h++ {
		phase := (n + h - 1) % period
		qty := math.Max(0, state.level+float64(h)*state.trend+state.seasonal[phase])
		l80, u80, l95, u95 := boundsAt(qty, residual, h)
		points = append(points, Point{
			Step:     h,
			Quantity: qty,
			Lower80:  l80,
			Upper80:  u80,
			Lower95:  l95,
			Upper95:  u95,
		})
	}

	return Result{
		Algorithm:  domain.AlgorithmHoltWinters,
		Points:     points,
		Confidence: confidenceHoltWinters,
	}
}

// seedHoltWinters initializes level from the overall mean, trend at zero and
// each seasonal phase from the mean deviation of its observations.
func seedHoltWinters(series []float64, period int) hwState {
	overall := Mean(series)

	seasonal := make([]float64, period)
	counts := make([]int, period)
	for i, x := range series {
		phase := i % period
		seasonal[phase] += x - overall
		counts[phase]++
	}
	for i := range seasonal {
		if counts[i] > 0 {
			seasonal[i] /= float64(counts[i])
		}
	}

	return hwState{level: overall, trend: 0, seasonal: seasonal}
}

// fitHoltWinters runs one full additive-decomposition pass through the
// series and returns the final state.
func fitHoltWinters(series []float64, period int) hwState {
	state := seedHoltWinters(series, period)
	for i, x := range series {
		state = stepHoltWinters(state, x, i%period)
	}
	return state
}

// holtWintersResidual replays the fit with an independently seeded state,
// measuring the one-step-ahead error at every observation. The replay keeps
// its own level/trend/seasonal copies; it never reuses the fitted state.
func holtWintersResidual(series []float64, period int) float64 {
	state := seedHoltWinters(series, period)

	var sumSquaredErr float64
	for i, x := range series {
		phase := i % period
		predicted := state.level + state.trend + state.seasonal[phase]
		err := x - predicted
		sumSquaredErr += err * err
		state = stepHoltWinters(state, x, phase)
	}

	return math.Sqrt(sumSquaredErr / float64(len(series)))
}

// stepHoltWinters applies one additive update: the observation is
// deseasonalized against the current phase, then level, trend and the phase's
// seasonal component are smoothed in order.
func stepHoltWinters(state hwState, x float64, phase int) hwState {
	deseasonalized := x - state.seasonal[phase]
	newLevel := hwAlpha*deseasonalized + (1-hwAlpha)*(state.level+state.trend)
	newTrend := hwBeta*(newLevel-state.level) + (1-hwBeta)*state.trend

	seasonal := make([]float64, len(state.seasonal))
	copy(seasonal, state.seasonal)
	seasonal[phase] = hwGamma*(x-newLevel) + (1-hwGamma)*seasonal[phase]

	return hwState{level: newLevel, trend: newTrend, seasonal: seasonal}
}
