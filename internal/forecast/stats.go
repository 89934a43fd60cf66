package forecast

import "math"

// Mean returns the arithmetic mean, 0 for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation. Demand series are the
// full population of observed days, not a sample.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// CoefficientOfVariation returns StdDev/Mean, or 0 when the mean is zero.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / mean
}

// Autocorrelation computes the lag-k autocorrelation of a series: the sum of
// (x_t-mu)(x_{t+lag}-mu) over valid pairs divided by the sum of (x_t-mu)^2
// over the full series.
func Autocorrelation(values []float64, lag int) float64 {
	n := len(values)
	if lag <= 0 || lag >= n {
		return 0
	}

	mean := Mean(values)
	var numerator, denominator float64
	for i := 0; i < n-lag; i++ {
		numerator += (values[i] - mean) * (values[i+lag] - mean)
	}
	for _, v := range values {
		d := v - mean
		denominator += d * d
	}

	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
