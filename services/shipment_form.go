package services

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
)

// ShipmentForm is the single-shipment form, bound once from the submitted
// values. The raw strings are kept so the form re-renders exactly as typed.
type ShipmentForm struct {
	Origin           string
	Destination      string
	WeightRaw        string
	PackingService   string
	StorageOption    string
	IncludeInsurance bool
	DistanceRaw      string
	Rates            RateSettings
}

// NewShipmentForm returns an empty form with default service tiers and rates.
func NewShipmentForm() ShipmentForm {
	return ShipmentForm{
		PackingService: PackingServices[0].Value,
		StorageOption:  StorageOptions[0].Value,
		Rates:          DefaultRateSettings(),
	}
}

// BindShipmentForm reads the shipment form inputs (origin, destination,
// weight, packing, storage, insurance, distance) plus the ten rate inputs.
func BindShipmentForm(values url.Values) ShipmentForm {
	f := NewShipmentForm()
	f.Origin = strings.TrimSpace(values.Get("origin"))
	f.Destination = strings.TrimSpace(values.Get("destination"))
	f.WeightRaw = strings.TrimSpace(values.Get("weight"))
	if v := values.Get("packing"); HasOption(PackingServices, v) {
		f.PackingService = v
	}
	if v := values.Get("storage"); HasOption(StorageOptions, v) {
		f.StorageOption = v
	}
	f.IncludeInsurance = values.Has("insurance")
	f.DistanceRaw = strings.TrimSpace(values.Get("distance"))
	f.Rates = ParseRateSettings(values)
	return f
}

// Weight returns the parsed weight, 0 when missing or invalid.
func (f ShipmentForm) Weight() float64 {
	return cast.ToFloat64(f.WeightRaw)
}

// HasManualDistance reports whether the distance override field is non-empty.
func (f ShipmentForm) HasManualDistance() bool {
	return f.DistanceRaw != ""
}

// Distance returns the parsed distance override, 0 when absent.
func (f ShipmentForm) Distance() float64 {
	return cast.ToFloat64(f.DistanceRaw)
}

// FormError is a client-side form rejection. No request is sent.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

// Validate checks the form before any network call: origin and destination
// are required, weight must be a number above zero and a manual distance,
// when given, must be a non-negative number. The first failing field in form
// order is reported.
func (f ShipmentForm) Validate() error {
	weight := f.Weight()
	err := validation.Errors{
		"origin": validation.Validate(f.Origin,
			validation.Required.Error("Origin is required")),
		"destination": validation.Validate(f.Destination,
			validation.Required.Error("Destination is required")),
		"weight": validation.Validate(weight,
			validation.Required.Error("Weight must be greater than 0"),
			validation.Min(0.0).Exclusive().Error("Weight must be greater than 0")),
		"distance": validation.Validate(f.DistanceRaw,
			validation.When(f.HasManualDistance(), validation.By(nonNegativeNumber))),
	}.Filter()
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	for _, field := range []string{"origin", "destination", "weight", "distance"} {
		if fieldErr, ok := errs[field]; ok {
			return &FormError{Field: field, Message: fieldErr.Error()}
		}
	}
	return err
}

func nonNegativeNumber(value any) error {
	s, _ := value.(string)
	v, err := cast.ToFloat64E(s)
	if err != nil || v < 0 {
		return errors.New("Distance must be a number of miles, 0 or more")
	}
	return nil
}

// ToRequest assembles the /calculate payload. Percent rates are converted to
// fractions and distance_miles is attached only for a manual override.
func (f ShipmentForm) ToRequest() CalculateRequest {
	req := CalculateRequest{
		Origin:           f.Origin,
		Destination:      f.Destination,
		Weight:           f.Weight(),
		PackingService:   f.PackingService,
		StorageOption:    f.StorageOption,
		IncludeInsurance: f.IncludeInsurance,
		CustomRates:      f.Rates.CustomRates(),
	}
	if f.HasManualDistance() {
		d := f.Distance()
		req.DistanceMiles = &d
	}
	return req
}
