package domain

import "time"

// Scope identifies the (tenant, facility, material) slice every engine
// operation works on. MaterialID may be empty for multi-material batch calls.
type Scope struct {
	TenantID   string `json:"tenant_id" db:"tenant_id"`
	FacilityID string `json:"facility_id" db:"facility_id"`
	MaterialID string `json:"material_id" db:"material_id"`
}

// Validate checks the required scope identifiers.
func (s Scope) Validate(requireMaterial bool) error {
	if s.TenantID == "" || s.FacilityID == "" {
		return ErrMissingScope
	}
	if requireMaterial && s.MaterialID == "" {
		return ErrMissingScope
	}
	return nil
}

// DemandHistoryRecord is one day of consumption for a material at a facility.
// Quantity components accumulate additively when the same day is recorded
// twice; ForecastedQty and the error fields stay nil until a forecast for the
// day resolves.
type DemandHistoryRecord struct {
	ID         int64     `json:"id" db:"id"`
	TenantID   string    `json:"tenant_id" db:"tenant_id"`
	FacilityID string    `json:"facility_id" db:"facility_id"`
	MaterialID string    `json:"material_id" db:"material_id"`
	DemandDate time.Time `json:"demand_date" db:"demand_date"`

	Year       int `json:"year" db:"year"`
	Month      int `json:"month" db:"month"`
	WeekOfYear int `json:"week_of_year" db:"week_of_year"`
	DayOfWeek  int `json:"day_of_week" db:"day_of_week"`
	Quarter    int `json:"quarter" db:"quarter"`

	ActualQty     float64 `json:"actual_qty" db:"actual_qty"`
	UnitOfMeasure string  `json:"unit_of_measure" db:"unit_of_measure"`

	SalesOrderQty      float64 `json:"sales_order_qty" db:"sales_order_qty"`
	ProductionOrderQty float64 `json:"production_order_qty" db:"production_order_qty"`
	TransferQty        float64 `json:"transfer_qty" db:"transfer_qty"`
	ScrapQty           float64 `json:"scrap_qty" db:"scrap_qty"`

	ForecastedQty *float64 `json:"forecasted_qty,omitempty" db:"forecasted_qty"`
	ForecastError *float64 `json:"forecast_error,omitempty" db:"forecast_error"`
	AbsPctError   *float64 `json:"abs_pct_error,omitempty" db:"abs_pct_error"`

	IsHoliday     bool `json:"is_holiday" db:"is_holiday"`
	IsPromotional bool `json:"is_promotional" db:"is_promotional"`
	HasCampaign   bool `json:"has_campaign" db:"has_campaign"`

	UnitPrice   *float64 `json:"unit_price,omitempty" db:"unit_price"`
	DiscountPct *float64 `json:"discount_pct,omitempty" db:"discount_pct"`

	Deleted   bool      `json:"-" db:"deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DemandInput is the payload for recording one day of demand.
type DemandInput struct {
	Scope
	DemandDate    time.Time `json:"demand_date"`
	Quantity      float64   `json:"quantity"`
	UnitOfMeasure string    `json:"unit_of_measure"`

	SalesOrderQty      float64 `json:"sales_order_qty"`
	ProductionOrderQty float64 `json:"production_order_qty"`
	TransferQty        float64 `json:"transfer_qty"`
	ScrapQty           float64 `json:"scrap_qty"`

	IsHoliday     bool     `json:"is_holiday"`
	IsPromotional bool     `json:"is_promotional"`
	HasCampaign   bool     `json:"has_campaign"`
	UnitPrice     *float64 `json:"unit_price,omitempty"`
	DiscountPct   *float64 `json:"discount_pct,omitempty"`
}

// DemandStatistics is the sufficient-statistics summary over a date range.
type DemandStatistics struct {
	Mean   float64 `json:"mean" db:"mean"`
	StdDev float64 `json:"std_dev" db:"std_dev"`
	Sum    float64 `json:"sum" db:"sum"`
	Count  int     `json:"count" db:"count"`
	Min    float64 `json:"min" db:"min"`
	Max    float64 `json:"max" db:"max"`
}

// MaterialForecast is one forecasted day for a material, at a given version.
type MaterialForecast struct {
	ID           int64     `json:"id" db:"id"`
	TenantID     string    `json:"tenant_id" db:"tenant_id"`
	FacilityID   string    `json:"facility_id" db:"facility_id"`
	MaterialID   string    `json:"material_id" db:"material_id"`
	ForecastDate time.Time `json:"forecast_date" db:"forecast_date"`

	GeneratedAt time.Time      `json:"generated_at" db:"generated_at"`
	Version     int            `json:"version" db:"version"`
	Horizon     HorizonClass   `json:"horizon" db:"horizon"`
	Algorithm   Algorithm      `json:"algorithm" db:"algorithm"`
	Status      ForecastStatus `json:"status" db:"status"`

	Quantity   float64 `json:"quantity" db:"quantity"`
	Lower80    float64 `json:"lower_80" db:"lower_80"`
	Upper80    float64 `json:"upper_80" db:"upper_80"`
	Lower95    float64 `json:"lower_95" db:"lower_95"`
	Upper95    float64 `json:"upper_95" db:"upper_95"`
	Confidence float64 `json:"confidence" db:"confidence"`

	ManualOverrideQty *float64 `json:"manual_override_qty,omitempty" db:"manual_override_qty"`
	OverrideReason    *string  `json:"override_reason,omitempty" db:"override_reason"`
}

// ForecastAccuracyMetrics aggregates forecast error over a measurement period.
type ForecastAccuracyMetrics struct {
	ID          int64     `json:"id" db:"id"`
	TenantID    string    `json:"tenant_id" db:"tenant_id"`
	FacilityID  string    `json:"facility_id" db:"facility_id"`
	MaterialID  string    `json:"material_id" db:"material_id"`
	PeriodStart time.Time `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time `json:"period_end" db:"period_end"`
	Aggregation string    `json:"aggregation" db:"aggregation"`

	MAPE           float64 `json:"mape" db:"mape"`
	RMSE           float64 `json:"rmse" db:"rmse"`
	MAE            float64 `json:"mae" db:"mae"`
	Bias           float64 `json:"bias" db:"bias"`
	TrackingSignal float64 `json:"tracking_signal" db:"tracking_signal"`

	SampleSize      int     `json:"sample_size" db:"sample_size"`
	TotalActual     float64 `json:"total_actual" db:"total_actual"`
	TotalForecasted float64 `json:"total_forecasted" db:"total_forecasted"`

	TargetMAPE      float64 `json:"target_mape" db:"target_mape"`
	WithinTolerance bool    `json:"within_tolerance" db:"within_tolerance"`

	CalculatedAt time.Time `json:"calculated_at" db:"calculated_at"`
}

// AlgorithmPerformance ranks one algorithm's trailing accuracy.
type AlgorithmPerformance struct {
	Algorithm  Algorithm `json:"algorithm" db:"algorithm"`
	MAPE       float64   `json:"mape" db:"mape"`
	Bias       float64   `json:"bias" db:"bias"`
	SampleSize int       `json:"sample_size" db:"sample_size"`
}

// SafetyStockCalculation is ephemeral; recomputed on every call, never stored.
type SafetyStockCalculation struct {
	MaterialID   string            `json:"material_id"`
	Method       SafetyStockMethod `json:"method"`
	ServiceLevel float64           `json:"service_level"`
	ZScore       float64           `json:"z_score"`

	SafetyStock  float64 `json:"safety_stock"`
	ReorderPoint float64 `json:"reorder_point"`
	EOQ          float64 `json:"eoq"`

	AvgDailyDemand  float64 `json:"avg_daily_demand"`
	DemandStdDev    float64 `json:"demand_std_dev"`
	DemandCV        float64 `json:"demand_cv"`
	AvgLeadTimeDays float64 `json:"avg_lead_time_days"`
	LeadTimeStdDev  float64 `json:"lead_time_std_dev"`
	LeadTimeCV      float64 `json:"lead_time_cv"`
}

// LeadTimeStats summarizes actual order-to-receipt durations.
type LeadTimeStats struct {
	MeanDays   float64 `json:"mean_days" db:"mean_days"`
	StdDevDays float64 `json:"std_dev_days" db:"std_dev_days"`
	SampleSize int     `json:"sample_size" db:"sample_size"`
}

// InventoryPosition is the live stock snapshot consumed read-only from the
// inventory subsystem.
type InventoryPosition struct {
	MaterialID string  `json:"material_id" db:"material_id"`
	OnHand     float64 `json:"on_hand" db:"on_hand"`
	Allocated  float64 `json:"allocated" db:"allocated"`
	Available  float64 `json:"available" db:"available"`
	OnOrder    float64 `json:"on_order" db:"on_order"`
}

// MaterialPlanning carries the material-master planning parameters the engine
// reads (and, via the planning-parameters update, writes).
type MaterialPlanning struct {
	MaterialID         string   `json:"material_id" db:"material_id"`
	UnitOfMeasure      string   `json:"unit_of_measure" db:"unit_of_measure"`
	MinOrderQty        float64  `json:"min_order_qty" db:"min_order_qty"`
	OrderMultiple      float64  `json:"order_multiple" db:"order_multiple"`
	LeadTimeDays       int      `json:"lead_time_days" db:"lead_time_days"`
	StandardCost       float64  `json:"standard_cost" db:"standard_cost"`
	LastCost           float64  `json:"last_cost" db:"last_cost"`
	PreferredVendorID  *string  `json:"preferred_vendor_id,omitempty" db:"preferred_vendor_id"`
	TargetAccuracyPct  *float64 `json:"target_accuracy_pct,omitempty" db:"target_accuracy_pct"`
	ServiceLevel       *float64 `json:"service_level,omitempty" db:"service_level"`
	ForecastingEnabled bool     `json:"forecasting_enabled" db:"forecasting_enabled"`
}

// PlanningParametersUpdate is the writable subset of MaterialPlanning.
// Nil fields are left untouched.
type PlanningParametersUpdate struct {
	MinOrderQty        *float64 `json:"min_order_qty,omitempty"`
	OrderMultiple      *float64 `json:"order_multiple,omitempty"`
	LeadTimeDays       *int     `json:"lead_time_days,omitempty"`
	ServiceLevel       *float64 `json:"service_level,omitempty"`
	TargetAccuracyPct  *float64 `json:"target_accuracy_pct,omitempty"`
	ForecastingEnabled *bool    `json:"forecasting_enabled,omitempty"`
}

// ReplenishmentRecommendation is one actionable purchase suggestion.
type ReplenishmentRecommendation struct {
	ID         int64  `json:"id" db:"id"`
	TenantID   string `json:"tenant_id" db:"tenant_id"`
	FacilityID string `json:"facility_id" db:"facility_id"`
	MaterialID string `json:"material_id" db:"material_id"`

	OnHand    float64 `json:"on_hand" db:"on_hand"`
	Allocated float64 `json:"allocated" db:"allocated"`
	Available float64 `json:"available" db:"available"`
	OnOrder   float64 `json:"on_order" db:"on_order"`

	SafetyStock  float64 `json:"safety_stock" db:"safety_stock"`
	ReorderPoint float64 `json:"reorder_point" db:"reorder_point"`
	EOQ          float64 `json:"eoq" db:"eoq"`

	Forecast30 float64 `json:"forecast_30" db:"forecast_30"`
	Forecast60 float64 `json:"forecast_60" db:"forecast_60"`
	Forecast90 float64 `json:"forecast_90" db:"forecast_90"`

	ProjectedStockoutDate *time.Time `json:"projected_stockout_date,omitempty" db:"projected_stockout_date"`

	RecommendedQty       float64   `json:"recommended_qty" db:"recommended_qty"`
	RecommendedOrderDate time.Time `json:"recommended_order_date" db:"recommended_order_date"`
	ExpectedDeliveryDate time.Time `json:"expected_delivery_date" db:"expected_delivery_date"`
	EstimatedCost        float64   `json:"estimated_cost" db:"estimated_cost"`

	Justification string            `json:"justification" db:"justification"`
	Method        SafetyStockMethod `json:"method" db:"method"`
	Urgency       Urgency           `json:"urgency" db:"urgency"`
	Status        string            `json:"status" db:"status"`

	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
}

// RecommendationFilter narrows recommendation reads.
type RecommendationFilter struct {
	TenantID   string
	FacilityID string
	MaterialID string
	Urgency    string
	Status     string
	Page       int
	PageSize   int
}

// InventoryTransaction is a raw consumption row, consumed read-only for
// backfill and loaded by the ingest pipeline.
type InventoryTransaction struct {
	ID              int64     `json:"id" db:"id"`
	TenantID        string    `json:"tenant_id" db:"tenant_id"`
	FacilityID      string    `json:"facility_id" db:"facility_id"`
	MaterialID      string    `json:"material_id" db:"material_id"`
	TransactionType string    `json:"transaction_type" db:"transaction_type"`
	Quantity        float64   `json:"quantity" db:"quantity"`
	UnitOfMeasure   string    `json:"unit_of_measure" db:"unit_of_measure"`
	OccurredAt      time.Time `json:"occurred_at" db:"occurred_at"`

	// SourceRef is the exporting system's transaction identifier, used to
	// deduplicate re-ingested files.
	SourceRef string `json:"source_ref" db:"source_ref"`

	SalesOrderID      *string `json:"sales_order_id,omitempty" db:"sales_order_id"`
	ProductionOrderID *string `json:"production_order_id,omitempty" db:"production_order_id"`
	TransferOrderID   *string `json:"transfer_order_id,omitempty" db:"transfer_order_id"`
}
