package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// RateField describes one of the advanced-settings inputs shared by the
// single-shipment and bulk pages.
type RateField struct {
	ID       string // form field id / name
	Key      string // custom_rates JSON key
	Label    string
	Unit     string
	Default  float64
	Percent  bool // entered as a whole-number percentage, sent as a fraction
	Decimals int
	Step     string
}

// RateFields is the fixed, ordered default table.
var RateFields = []RateField{
	{ID: "selfPackRate", Key: "self_pack", Label: "Self Pack", Unit: "%", Default: 100, Percent: true, Step: "1"},
	{ID: "partialPackRate", Key: "partial_pack", Label: "Partial Pack", Unit: "%", Default: 115, Percent: true, Step: "1"},
	{ID: "fullPackRate", Key: "full_pack", Label: "Full Pack", Unit: "%", Default: 135, Percent: true, Step: "1"},
	{ID: "noStorageRate", Key: "no_storage", Label: "No Storage", Unit: "%", Default: 100, Percent: true, Step: "1"},
	{ID: "storage30Rate", Key: "storage_30days", Label: "Storage 30 Days", Unit: "%", Default: 120, Percent: true, Step: "1"},
	{ID: "storage60Rate", Key: "storage_60days", Label: "Storage 60 Days", Unit: "%", Default: 135, Percent: true, Step: "1"},
	{ID: "insuranceRate", Key: "insurance_per_1000", Label: "Insurance per 1000 lbs", Unit: "$", Default: 5.00, Decimals: 2, Step: "0.01"},
	{ID: "fuelSurcharge", Key: "fuel_surcharge", Label: "Fuel Surcharge", Unit: "%", Default: 12, Percent: true, Step: "0.1"},
	{ID: "minimumCharge", Key: "minimum_charge", Label: "Minimum Charge", Unit: "$", Default: 500, Step: "1"},
	{ID: "discountRate", Key: "discount", Label: "Discount", Unit: "%", Default: 0, Percent: true, Step: "0.1"},
}

// LookupRateField finds a field by its form id.
func LookupRateField(id string) (RateField, bool) {
	for _, f := range RateFields {
		if f.ID == id {
			return f, true
		}
	}
	return RateField{}, false
}

// IsOverridden reports whether v differs from the field default.
func (f RateField) IsOverridden(v float64) bool {
	return v != f.Default
}

// FormatValue renders v the way the settings input displays it.
func (f RateField) FormatValue(v float64) string {
	if f.Decimals > 0 {
		return strconv.FormatFloat(v, 'f', f.Decimals, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// wire converts an entered value into the value sent to the pricing API.
func (f RateField) wire(v float64) float64 {
	if f.Percent {
		return v / 100
	}
	return v
}

// RateSettings holds entered (display-unit) values keyed by field id.
type RateSettings map[string]float64

// DefaultRateSettings returns all ten fields at their defaults. Calling it any
// number of times yields the same values, which is what reset relies on.
func DefaultRateSettings() RateSettings {
	s := make(RateSettings, len(RateFields))
	for _, f := range RateFields {
		s[f.ID] = f.Default
	}
	return s
}

// ParseRateSettings reads the ten inputs from submitted form values. Missing,
// blank or non-numeric inputs fall back to the field default.
func ParseRateSettings(values url.Values) RateSettings {
	s := DefaultRateSettings()
	for _, f := range RateFields {
		if v, ok := parseRateValue(values.Get(f.ID)); ok {
			s[f.ID] = v
		}
	}
	return s
}

func parseRateValue(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Value returns the entered value for id, or its default when unset.
func (s RateSettings) Value(id string) float64 {
	if v, ok := s[id]; ok {
		return v
	}
	if f, ok := LookupRateField(id); ok {
		return f.Default
	}
	return 0
}

// CustomRates converts entered values into the wire representation.
func (s RateSettings) CustomRates() CustomRates {
	v := func(id string) float64 {
		f, _ := LookupRateField(id)
		return f.wire(s.Value(id))
	}
	return CustomRates{
		SelfPack:         v("selfPackRate"),
		PartialPack:      v("partialPackRate"),
		FullPack:         v("fullPackRate"),
		NoStorage:        v("noStorageRate"),
		Storage30Days:    v("storage30Rate"),
		Storage60Days:    v("storage60Rate"),
		InsurancePer1000: v("insuranceRate"),
		FuelSurcharge:    v("fuelSurcharge"),
		MinimumCharge:    v("minimumCharge"),
		Discount:         v("discountRate"),
	}
}

// RateInput is the view model for one settings input.
type RateInput struct {
	Field      RateField
	Value      string
	Overridden bool
}

// BuildRateInput renders a single field at value v.
func BuildRateInput(f RateField, v float64) RateInput {
	return RateInput{
		Field:      f,
		Value:      f.FormatValue(v),
		Overridden: f.IsOverridden(v),
	}
}

// BuildRateInputs renders all ten fields in table order.
func BuildRateInputs(s RateSettings) []RateInput {
	inputs := make([]RateInput, 0, len(RateFields))
	for _, f := range RateFields {
		inputs = append(inputs, BuildRateInput(f, s.Value(f.ID)))
	}
	return inputs
}
