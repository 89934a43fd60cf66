package forecast

import (
	"math"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// smoothingAlpha is the fixed smoothing factor for single exponential
// smoothing.
const smoothingAlpha = 0.3

// ExponentialSmoothing fits single exponential smoothing seeded at the first
// observation and forecasts the final level flat across the horizon. The
// residual deviation comes from the mean squared one-step error accumulated
// during the fit pass.
func ExponentialSmoothing(series []float64, horizon int) Result {
	level, residual := fitExponential(series, smoothingAlpha)

	points := make([]Point, 0, horizon)
	for h := 1; h <= horizon; h++ {
		qty := math.Max(0, level)
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
		Algorithm:  domain.AlgorithmExpSmoothing,
		Points:     points,
		Confidence: confidenceExpSmoothing,
	}
}

// fitExponential folds the series into a final smoothed level and the
// residual standard deviation of the one-step-ahead errors.
func fitExponential(series []float64, alpha float64) (level, residualStdDev float64) {
	if len(series) == 0 {
		return 0, 0
	}

	level = series[0]
	var sumSquaredErr float64
	for _, x := range series[1:] {
		err := x - level
		sumSquaredErr += err * err
		level = alpha*x + (1-alpha)*level
	}

	if n := len(series) - 1; n > 0 {
		residualStdDev = math.Sqrt(sumSquaredErr / float64(n))
	}
	return level, residualStdDev
}
