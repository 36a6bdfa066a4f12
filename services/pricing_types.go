package services

// CustomRates is the rate-override object sent with every pricing request.
// Multipliers and percentages are fractions; InsurancePer1000 and
// MinimumCharge are dollar amounts.
type CustomRates struct {
	SelfPack         float64 `json:"self_pack"`
	PartialPack      float64 `json:"partial_pack"`
	FullPack         float64 `json:"full_pack"`
	NoStorage        float64 `json:"no_storage"`
	Storage30Days    float64 `json:"storage_30days"`
	Storage60Days    float64 `json:"storage_60days"`
	InsurancePer1000 float64 `json:"insurance_per_1000"`
	FuelSurcharge    float64 `json:"fuel_surcharge"`
	MinimumCharge    float64 `json:"minimum_charge"`
	Discount         float64 `json:"discount"`
}

// CalculateRequest is the body of POST /calculate.
type CalculateRequest struct {
	Origin           string      `json:"origin"`
	Destination      string      `json:"destination"`
	Weight           float64     `json:"weight"`
	PackingService   string      `json:"packing_service"`
	StorageOption    string      `json:"storage_option"`
	IncludeInsurance bool        `json:"include_insurance"`
	DistanceMiles    *float64    `json:"distance_miles,omitempty"`
	CustomRates      CustomRates `json:"custom_rates"`
}

// Breakdown lists the cost components returned by the pricing engine. Every
// field is optional; renderers must fall back when one is absent.
type Breakdown struct {
	MaterialBaseCost         float64 `json:"material_base_cost,omitempty"`
	MaterialWeightAdjustment float64 `json:"material_weight_adjustment,omitempty"`
	MaterialAdjustedCost     float64 `json:"material_adjusted_cost,omitempty"`

	TransportationCost            float64 `json:"transportation_cost,omitempty"`
	TransportationWeightBracket   string  `json:"transportation_weight_bracket,omitempty"`
	TransportationDistanceBracket string  `json:"transportation_distance_bracket,omitempty"`
	TransportationMatrixNote      string  `json:"transportation_matrix_note,omitempty"`

	PackingService    string  `json:"packing_service,omitempty"`
	PackingMultiplier float64 `json:"packing_multiplier,omitempty"`
	PackingCost       float64 `json:"packing_cost,omitempty"`
	StorageOption     string  `json:"storage_option,omitempty"`
	StorageMultiplier float64 `json:"storage_multiplier,omitempty"`
	StorageCost       float64 `json:"storage_cost,omitempty"`
	ServiceAdjusted   float64 `json:"service_adjusted_cost,omitempty"`

	OriginRegion           string  `json:"origin_region,omitempty"`
	DestinationRegion      string  `json:"destination_region,omitempty"`
	RegionalAdjustment     float64 `json:"regional_adjustment,omitempty"`
	RegionalCost           float64 `json:"regional_cost,omitempty"`
	RegionalCostAdjustment float64 `json:"regional_cost_adjustment,omitempty"`
	FuelSurchargeRate      float64 `json:"fuel_surcharge_rate,omitempty"`
	FuelCharge             float64 `json:"fuel_charge,omitempty"`
	InsuranceCost          float64 `json:"insurance_cost,omitempty"`

	Subtotal              float64 `json:"subtotal,omitempty"`
	DiscountRate          float64 `json:"discount_rate,omitempty"`
	DiscountAmount        float64 `json:"discount_amount,omitempty"`
	SubtotalAfterDiscount float64 `json:"subtotal_after_discount,omitempty"`

	SubtotalBeforeTariffs float64 `json:"subtotal_before_tariffs,omitempty"`
	InterstateTariff      float64 `json:"interstate_tariff,omitempty"`
	StateTax              float64 `json:"state_tax,omitempty"`
	TotalTariffsAndTaxes  float64 `json:"total_tariffs_and_taxes,omitempty"`
	TariffType            string  `json:"tariff_type,omitempty"`
	TariffDescription     string  `json:"tariff_description,omitempty"`
	OriginState           string  `json:"origin_state,omitempty"`
	DestinationState      string  `json:"destination_state,omitempty"`
	MoveType              string  `json:"move_type,omitempty"`
	MoveDescription       string  `json:"move_description,omitempty"`

	AppliedMinimumCharge bool `json:"applied_minimum_charge,omitempty"`
}

// EstimateResult is a successful single-shipment calculation.
type EstimateResult struct {
	Origin          string     `json:"origin"`
	Destination     string     `json:"destination"`
	DistanceMiles   float64    `json:"distance_miles"`
	WeightPounds    float64    `json:"weight_pounds"`
	TotalShouldCost float64    `json:"total_should_cost"`
	Breakdown       *Breakdown `json:"breakdown,omitempty"`
}

type calculateResponse struct {
	Success bool            `json:"success"`
	Result  *EstimateResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// BulkValidation is the outcome of POST /bulk/validate.
type BulkValidation struct {
	Valid    bool     `json:"valid"`
	RowCount int      `json:"row_count"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

type validateResponse struct {
	Success    bool            `json:"success"`
	Validation *BulkValidation `json:"validation,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// BulkSummary aggregates a processed batch. SuccessRate is preformatted by
// the pricing API (e.g. "93.3%").
type BulkSummary struct {
	TotalRows   int    `json:"total_rows"`
	Successful  int    `json:"successful"`
	Failed      int    `json:"failed"`
	SuccessRate string `json:"success_rate"`
}

// Row statuses reported by the pricing API.
const (
	RowStatusSuccess = "success"
	RowStatusFailed  = "failed"
)

// RowResult is one processed spreadsheet row, successful or failed.
type RowResult struct {
	RowNumber       int        `json:"row_number"`
	Status          string     `json:"status"`
	Origin          string     `json:"origin"`
	Destination     string     `json:"destination"`
	DistanceMiles   float64    `json:"distance_miles,omitempty"`
	WeightPounds    float64    `json:"weight_pounds,omitempty"`
	TotalShouldCost float64    `json:"total_should_cost,omitempty"`
	Breakdown       *Breakdown `json:"breakdown,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// Failed reports whether the row could not be priced.
func (r RowResult) Failed() bool {
	return r.Status == RowStatusFailed
}

// BulkOutcome is a successful POST /bulk/process response.
type BulkOutcome struct {
	Summary BulkSummary `json:"summary"`
	Results []RowResult `json:"results"`
	Errors  []string    `json:"errors"`
}

type processResponse struct {
	Success bool        `json:"success"`
	Summary BulkSummary `json:"summary"`
	Results []RowResult `json:"results"`
	Errors  []string    `json:"errors"`
	Error   string      `json:"error,omitempty"`
}
