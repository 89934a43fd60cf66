// Package forecast implements the time-series models behind forecast
// generation: moving average, single exponential smoothing and additive
// Holt-Winters, plus the statistics used to choose between them. Everything
// here is pure computation over an ordered demand series; persistence and
// scoping live in the service and repository layers.
package forecast

import (
	"math"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// MinObservations is the minimum days of history a material needs before any
// model will run. Materials below it are skipped by batch generation.
const MinObservations = 7

// Model confidence scores, reflecting decreasing model uncertainty.
const (
	confidenceMovingAverage = 0.70
	confidenceExpSmoothing  = 0.75
	confidenceHoltWinters   = 0.80
)

// z-values for the two confidence intervals every model emits.
const (
	z80 = 1.28
	z95 = 1.96
)

// Point is one forecasted step with its confidence bounds. Bounds widen with
// the step number and are clamped at zero on the lower side.
type Point struct {
	Step     int
	Quantity float64
	Lower80  float64
	Upper80  float64
	Lower95  float64
	Upper95  float64
}

// Result is the output shape shared by all three models.
type Result struct {
	Algorithm  domain.Algorithm
	Points     []Point
	Confidence float64
}

// Select picks a model for a demand series. Seasonal series with at least 60
// observations get Holt-Winters; volatile series (CV >= 0.3) get exponential
// smoothing, which reacts faster to level changes; everything else gets the
// stabler moving average.
func Select(series []float64) domain.Algorithm {
	if IsSeasonal(series) && len(series) >= 60 {
		return domain.AlgorithmHoltWinters
	}
	if CoefficientOfVariation(series) >= 0.3 {
		return domain.AlgorithmExpSmoothing
	}
	return domain.AlgorithmMovingAverage
}

// Generate runs the chosen algorithm over the series for the given horizon.
// AUTO resolves via Select. Holt-Winters falls back to exponential smoothing
// when the history cannot support its seasonal period.
func Generate(series []float64, horizon int, choice domain.Algorithm) Result {
	algo := choice
	if algo == domain.AlgorithmAuto || algo == "" {
		algo = Select(series)
	}

	switch algo {
	case domain.AlgorithmHoltWinters:
		return HoltWinters(series, horizon)
	case domain.AlgorithmExpSmoothing:
		return ExponentialSmoothing(series, horizon)
	default:
		return MovingAverage(series, horizon)
	}
}

// boundsAt expands a residual deviation into the four interval bounds for
// step h. Interval width grows with the square root of the step number.
func boundsAt(qty, residualStdDev float64, step int) (l80, u80, l95, u95 float64) {
	spread := residualStdDev * math.Sqrt(float64(step))
	l80 = math.Max(0, qty-z80*spread)
	u80 = qty + z80*spread
	l95 = math.Max(0, qty-z95*spread)
	u95 = qty + z95*spread
	return
}
