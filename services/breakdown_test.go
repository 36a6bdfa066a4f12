package services

import (
	"strings"
	"testing"
)

func sectionKeys(v BreakdownView) []string {
	var keys []string
	for _, s := range v.Sections {
		keys = append(keys, s.Key)
	}
	return keys
}

func findSection(t *testing.T, v BreakdownView, key string) BreakdownSection {
	t.Helper()
	for _, s := range v.Sections {
		if s.Key == key {
			return s
		}
	}
	t.Fatalf("section %q not found in %v", key, sectionKeys(v))
	return BreakdownSection{}
}

func TestBuildBreakdown_NilBreakdownUsesFallbacks(t *testing.T) {
	v := BuildBreakdown(0, nil)

	if got := strings.Join(sectionKeys(v), ","); got != "material,transportation,services,other,tariffs" {
		t.Errorf("unexpected sections %s", got)
	}

	transport := findSection(t, v, "transportation")
	if transport.Lines[1].Label != "Weight Bracket: N/A" || transport.Lines[2].Label != "Distance Bracket: N/A" {
		t.Errorf("expected N/A brackets, got %+v", transport.Lines)
	}

	svc := findSection(t, v, "services")
	if svc.Lines[0].Label != "Packing Service: Self Pack" || svc.Lines[0].Value != "Included" {
		t.Errorf("unexpected packing line %+v", svc.Lines[0])
	}
	if svc.Lines[1].Label != "Storage: No Storage" || svc.Lines[1].Note != "Multiplier: 100%" {
		t.Errorf("unexpected storage line %+v", svc.Lines[1])
	}

	other := findSection(t, v, "other")
	if other.Lines[0].Label != "Regional Adjustment (default → default)" {
		t.Errorf("unexpected regional label %q", other.Lines[0].Label)
	}
	if other.Lines[2].Value != "Not Included" {
		t.Errorf("expected insurance Not Included, got %q", other.Lines[2].Value)
	}

	tariffs := findSection(t, v, "tariffs")
	if tariffs.Tariff != nil {
		t.Error("expected no tariff detail when tariffs are zero")
	}
	if tariffs.Lines[0].Label != "No tariffs or taxes apply" || tariffs.Lines[0].Value != "$0.00" {
		t.Errorf("unexpected zero-tariff line %+v", tariffs.Lines[0])
	}
	if v.MinimumChargeApplied {
		t.Error("minimum charge flag should default to false")
	}
}

func TestBuildBreakdown_Full(t *testing.T) {
	b := &Breakdown{
		MaterialBaseCost:              2500,
		MaterialWeightAdjustment:      0.95,
		MaterialAdjustedCost:          2375,
		TransportationCost:            1800,
		TransportationWeightBracket:   "4001-6000",
		TransportationDistanceBracket: "501-1000",
		PackingService:                "full_pack",
		PackingMultiplier:             1.35,
		PackingCost:                   831.25,
		StorageOption:                 "storage_30days",
		StorageMultiplier:             1.2,
		StorageCost:                   475,
		OriginRegion:                  "southwest",
		DestinationRegion:             "mountain",
		RegionalCostAdjustment:        -120.5,
		FuelSurchargeRate:             0.12,
		FuelCharge:                    216,
		InsuranceCost:                 25,
		DiscountRate:                  0.105,
		DiscountAmount:                300,
		SubtotalAfterDiscount:         5306.75,
		SubtotalBeforeTariffs:         5306.75,
		InterstateTariff:              159.20,
		StateTax:                      0,
		TotalTariffsAndTaxes:          159.20,
		TariffType:                    "interstate",
		TariffDescription:             "Interstate",
		DestinationState:              "CO",
		AppliedMinimumCharge:          true,
	}

	v := BuildBreakdown(5000, b)

	if got := strings.Join(sectionKeys(v), ","); got != "material,transportation,services,other,discount,tariffs" {
		t.Errorf("unexpected sections %s", got)
	}
	if !v.MinimumChargeApplied {
		t.Error("expected minimum charge notice")
	}

	material := findSection(t, v, "material")
	if material.Lines[0].Label != "Base Material Cost (5,000 lbs @ $0.50 per lb)" {
		t.Errorf("unexpected base label %q", material.Lines[0].Label)
	}
	if material.Lines[1].Label != "Weight Tier Adjustment (95%)" || material.Lines[1].Value != "Discount" {
		t.Errorf("unexpected tier line %+v", material.Lines[1])
	}
	if material.Total.Value != "$2,375.00" {
		t.Errorf("unexpected material total %q", material.Total.Value)
	}

	svc := findSection(t, v, "services")
	if svc.Lines[0].Label != "Packing Service: Full Pack" || svc.Lines[0].Note != "Multiplier: 135%" {
		t.Errorf("unexpected packing line %+v", svc.Lines[0])
	}
	if svc.Total.Value != "$1,306.25" {
		t.Errorf("unexpected services total %q", svc.Total.Value)
	}

	other := findSection(t, v, "other")
	if other.Lines[0].Value != "-$120.50" {
		t.Errorf("expected signed regional adjustment, got %q", other.Lines[0].Value)
	}
	if other.Lines[1].Label != "Fuel Surcharge (12%)" {
		t.Errorf("unexpected fuel label %q", other.Lines[1].Label)
	}
	if other.Lines[2].Note != "Rate: 5.0K lbs @ $5.00 per 1000 lbs" {
		t.Errorf("unexpected insurance note %q", other.Lines[2].Note)
	}

	discount := findSection(t, v, "discount")
	if discount.Lines[0].Label != "Discount (10.5% off subtotal)" || discount.Lines[0].Value != "-$300.00" {
		t.Errorf("unexpected discount line %+v", discount.Lines[0])
	}

	tariffs := findSection(t, v, "tariffs")
	if tariffs.Tariff == nil {
		t.Fatal("expected tariff detail")
	}
	if tariffs.Tariff.Lines[0].Label != "Interstate Commerce Fee" || tariffs.Tariff.Lines[0].Value != "$159.20" {
		t.Errorf("unexpected interstate line %+v", tariffs.Tariff.Lines[0])
	}
	if tariffs.Tariff.Lines[1].Note != "No state tax configured for this state" {
		t.Errorf("unexpected state tax line %+v", tariffs.Tariff.Lines[1])
	}
	if tariffs.Tariff.EffectiveRate != "3.00% of subtotal" {
		t.Errorf("unexpected effective rate %q", tariffs.Tariff.EffectiveRate)
	}
	if tariffs.Tariff.TariffType != "Interstate" {
		t.Errorf("unexpected tariff type %q", tariffs.Tariff.TariffType)
	}
}

func TestBuildBreakdown_StateTaxRate(t *testing.T) {
	b := &Breakdown{
		SubtotalBeforeTariffs: 1000,
		StateTax:              72.5,
		TotalTariffsAndTaxes:  72.5,
		TariffType:            "intrastate",
		DestinationState:      "CA",
	}
	tariffs := findSection(t, BuildBreakdown(2000, b), "tariffs")
	if tariffs.Tariff.Lines[0].Note != "Not applicable (intrastate move)" {
		t.Errorf("unexpected interstate line %+v", tariffs.Tariff.Lines[0])
	}
	if tariffs.Tariff.Lines[1].Label != "State Moving Tax (CA)" || tariffs.Tariff.Lines[1].Note != "Rate: 7.25% of subtotal ($1,000.00)" {
		t.Errorf("unexpected state tax line %+v", tariffs.Tariff.Lines[1])
	}
}

func TestStateTaxRate(t *testing.T) {
	tests := map[string]string{"CA": "7.25%", "NC": "4.75%", "WA": "0%", "": "0%"}
	for state, want := range tests {
		if got := StateTaxRate(state); got != want {
			t.Errorf("StateTaxRate(%q) = %q, want %q", state, got, want)
		}
	}
}

func TestBuildEstimateView_TotalAndDistanceFlag(t *testing.T) {
	result := &EstimateResult{
		Origin:          "Austin, TX",
		Destination:     "Denver, CO",
		DistanceMiles:   920.4,
		WeightPounds:    5000,
		TotalShouldCost: 1234567.8,
	}

	auto := BuildEstimateView(result, false)
	if auto.Summary.Total != "$1,234,567.80" {
		t.Errorf("unexpected total %q", auto.Summary.Total)
	}
	if !auto.Summary.DistanceAuto {
		t.Error("expected auto-calculated distance without manual override")
	}
	if auto.Summary.Route != "Austin, TX → Denver, CO" {
		t.Errorf("unexpected route %q", auto.Summary.Route)
	}

	manual := BuildEstimateView(result, true)
	if manual.Summary.DistanceAuto {
		t.Error("manual distance must not be flagged auto-calculated")
	}
}
