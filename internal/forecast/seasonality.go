package forecast

// seasonalityThreshold is the autocorrelation level above which a lag is
// treated as a seasonal signal.
const seasonalityThreshold = 0.3

// candidatePeriods are the cycle lengths tested when Holt-Winters picks its
// seasonal period: weekly, monthly, quarterly, half-yearly, yearly.
var candidatePeriods = []int{7, 30, 90, 180, 365}

// IsSeasonal reports whether the series shows weekly or monthly seasonality.
func IsSeasonal(series []float64) bool {
	return Autocorrelation(series, 7) > seasonalityThreshold ||
		Autocorrelation(series, 30) > seasonalityThreshold
}

// DetectSeasonalPeriod tests the candidate periods and returns the one with
// the strongest autocorrelation, provided it clears the threshold. Series
// with no qualifying period default to weekly.
func DetectSeasonalPeriod(series []float64) int {
	best := 7
	bestCorr := seasonalityThreshold
	for _, period := range candidatePeriods {
		if period >= len(series) {
			continue
		}
		if corr := Autocorrelation(series, period); corr > bestCorr {
			best = period
			bestCorr = corr
		}
	}
	return best
}
