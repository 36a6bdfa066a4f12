package services

// Option is a value/label pair for a select input.
type Option struct {
	Value string
	Label string
}

// PackingServices lists the packing tiers offered on the shipment form.
var PackingServices = []Option{
	{Value: "self_pack", Label: "Self Pack"},
	{Value: "partial_pack", Label: "Partial Pack"},
	{Value: "full_pack", Label: "Full Pack"},
}

// StorageOptions lists the storage tiers offered on the shipment form.
var StorageOptions = []Option{
	{Value: "no_storage", Label: "No Storage"},
	{Value: "storage_30days", Label: "Storage 30 Days"},
	{Value: "storage_60days", Label: "Storage 60 Days"},
}

// HasOption reports whether value is one of options.
func HasOption(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
