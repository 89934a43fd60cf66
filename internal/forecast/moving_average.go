package forecast

import (
	"math"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// movingAverageWindow caps how many trailing observations feed the average.
const movingAverageWindow = 30

// MovingAverage forecasts a flat quantity equal to the mean of the most
// recent min(30, n) observations. The interval deviation is the population
// standard deviation over that same window.
func MovingAverage(series []float64, horizon int) Result {
	window := len(series)
	if window > movingAverageWindow {
		window = movingAverageWindow
	}

	recent := series[len(series)-window:]
	level := Mean(recent)
	residual := StdDev(recent)

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
		Algorithm:  domain.AlgorithmMovingAverage,
		Points:     points,
		Confidence: confidenceMovingAverage,
	}
}
