package domain

import "strings"

// ForecastStatus tracks whether a forecast row is the current one for its date.
type ForecastStatus string

const (
	ForecastActive     ForecastStatus = "ACTIVE"
	ForecastSuperseded ForecastStatus = "SUPERSEDED"
)

// Algorithm identifies the forecasting model used for a run.
type Algorithm string

const (
	AlgorithmAuto          Algorithm = "AUTO"
	AlgorithmMovingAverage Algorithm = "MOVING_AVERAGE"
	AlgorithmExpSmoothing  Algorithm = "EXPONENTIAL_SMOOTHING"
	AlgorithmHoltWinters   Algorithm = "HOLT_WINTERS"
)

var algorithmNames = map[string]Algorithm{
	"auto":                  AlgorithmAuto,
	"moving_average":        AlgorithmMovingAverage,
	"exponential_smoothing": AlgorithmExpSmoothing,
	"holt_winters":          AlgorithmHoltWinters,
}

// ParseAlgorithm returns the algorithm for a label (case-insensitive).
func ParseAlgorithm(label string) (Algorithm, bool) {
	a, ok := algorithmNames[strings.ToLower(strings.TrimSpace(label))]
	return a, ok
}

// HorizonClass buckets a forecast run by how far out it reaches.
type HorizonClass string

const (
	HorizonShortTerm  HorizonClass = "SHORT_TERM"
	HorizonMediumTerm HorizonClass = "MEDIUM_TERM"
	HorizonLongTerm   HorizonClass = "LONG_TERM"
)

// ClassifyHorizon maps a horizon length in days to its bucket.
func ClassifyHorizon(days int) HorizonClass {
	switch {
	case days <= 30:
		return HorizonShortTerm
	case days <= 90:
		return HorizonMediumTerm
	default:
		return HorizonLongTerm
	}
}

// SafetyStockMethod names the formula selected for a calculation.
type SafetyStockMethod string

const (
	MethodBasic               SafetyStockMethod = "BASIC"
	MethodDemandVariability   SafetyStockMethod = "DEMAND_VARIABILITY"
	MethodLeadTimeVariability SafetyStockMethod = "LEAD_TIME_VARIABILITY"
	MethodCombined            SafetyStockMethod = "COMBINED"
)

// Urgency ranks a replenishment recommendation.
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
)

// RecommendationPending is the status new recommendations are created with;
// later transitions belong to the purchasing workflow, not this engine.
const RecommendationPending = "PENDING"

// Transaction types that count as consumption during backfill.
const (
	TxnIssue    = "ISSUE"
	TxnScrap    = "SCRAP"
	TxnTransfer = "TRANSFER"
)
