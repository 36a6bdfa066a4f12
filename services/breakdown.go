package services

import "fmt"

// BreakdownLine is one label/value row of a cost section.
type BreakdownLine struct {
	Label string
	Note  string
	Value string
}

// TariffDetail is the collapsible sub-breakdown shown when tariffs apply.
type TariffDetail struct {
	Total         string
	Lines         []BreakdownLine
	EffectiveRate string
	TariffType    string
}

// BreakdownSection is one grouped block of the cost breakdown panel.
type BreakdownSection struct {
	Key    string
	Icon   string
	Title  string
	Lines  []BreakdownLine
	Total  *BreakdownLine
	Tariff *TariffDetail
}

// BreakdownView is the full structured breakdown, ready for a template.
type BreakdownView struct {
	Sections             []BreakdownSection
	MinimumChargeApplied bool
}

// EstimateSummary is the headline block above the breakdown.
type EstimateSummary struct {
	Route        string
	Distance     string
	DistanceAuto bool
	Weight       string
	Total        string
}

// EstimateView is everything rendered for a successful calculation.
type EstimateView struct {
	Summary   EstimateSummary
	Breakdown BreakdownView
}

// stateTaxRates mirrors the moving-tax table of the pricing engine, for display only.
var stateTaxRates = map[string]string{
	"CA": "7.25%",
	"TX": "6.25%",
	"NY": "4.00%",
	"FL": "6.00%",
	"IL": "6.25%",
	"PA": "6.00%",
	"OH": "5.75%",
	"GA": "4.00%",
	"NC": "4.75%",
	"MI": "6.00%",
}

// StateTaxRate returns the display rate for a destination state, or "0%".
func StateTaxRate(state string) string {
	if r, ok := stateTaxRates[state]; ok {
		return r
	}
	return "0%"
}

// BuildEstimateView assembles the summary and breakdown for a result.
// manualDistance reports whether the user typed a distance override.
func BuildEstimateView(result *EstimateResult, manualDistance bool) EstimateView {
	if result == nil {
		result = &EstimateResult{}
	}
	return EstimateView{
		Summary: EstimateSummary{
			Route:        result.Origin + " → " + result.Destination,
			Distance:     FormatNumber(result.DistanceMiles),
			DistanceAuto: !manualDistance,
			Weight:       FormatNumber(result.WeightPounds),
			Total:        FormatUSD(result.TotalShouldCost),
		},
		Breakdown: BuildBreakdown(result.WeightPounds, result.Breakdown),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func includedOr(v float64, absent string) string {
	if v > 0 {
		return FormatUSD(v)
	}
	return absent
}

// BuildBreakdown groups the breakdown into Material, Transportation,
// Services, Other, an optional Discount block and Tariffs. A nil breakdown
// renders with zero / placeholder values throughout.
func BuildBreakdown(weight float64, b *Breakdown) BreakdownView {
	if b == nil {
		b = &Breakdown{}
	}

	view := BreakdownView{MinimumChargeApplied: b.AppliedMinimumCharge}
	view.Sections = append(view.Sections,
		materialSection(weight, b),
		transportationSection(b),
		servicesSection(b),
		otherSection(weight, b),
	)
	if b.DiscountAmount > 0 {
		view.Sections = append(view.Sections, discountSection(b))
	}
	view.Sections = append(view.Sections, tariffSection(b))
	return view
}

func materialSection(weight float64, b *Breakdown) BreakdownSection {
	perPound := 0.0
	if weight > 0 {
		perPound = b.MaterialBaseCost / weight
	}
	adjustment := orOne(b.MaterialWeightAdjustment)
	tier := "Premium"
	if adjustment < 1 {
		tier = "Discount"
	}

	return BreakdownSection{
		Key:   "material",
		Icon:  "📦",
		Title: "Material Costs (Household Goods)",
		Lines: []BreakdownLine{
			{
				Label: fmt.Sprintf("Base Material Cost (%s lbs @ %s per lb)", FormatNumber(weight), FormatUSD(perPound)),
				Value: FormatUSD(b.MaterialBaseCost),
			},
			{
				Label: fmt.Sprintf("Weight Tier Adjustment (%s)", FormatPercent(adjustment, 0)),
				Value: tier,
			},
		},
		Total: &BreakdownLine{Label: "Total Material Cost", Value: FormatUSD(b.MaterialAdjustedCost)},
	}
}

func transportationSection(b *Breakdown) BreakdownSection {
	return BreakdownSection{
		Key:   "transportation",
		Icon:  "🚚",
		Title: "Transportation Costs",
		Lines: []BreakdownLine{
			{Label: "Matrix-Based Transportation Cost", Note: b.TransportationMatrixNote, Value: FormatUSD(b.TransportationCost)},
			{Label: "Weight Bracket: " + orDefault(b.TransportationWeightBracket, "N/A")},
			{Label: "Distance Bracket: " + orDefault(b.TransportationDistanceBracket, "N/A")},
		},
		Total: &BreakdownLine{Label: "Total Transportation Cost", Value: FormatUSD(b.TransportationCost)},
	}
}

func servicesSection(b *Breakdown) BreakdownSection {
	return BreakdownSection{
		Key:   "services",
		Icon:  "🛠️",
		Title: "Service Costs",
		Lines: []BreakdownLine{
			{
				Label: "Packing Service: " + Titleize(orDefault(b.PackingService, "self_pack")),
				Note:  "Multiplier: " + FormatPercent(orOne(b.PackingMultiplier), 0),
				Value: includedOr(b.PackingCost, "Included"),
			},
			{
				Label: "Storage: " + Titleize(orDefault(b.StorageOption, "no_storage")),
				Note:  "Multiplier: " + FormatPercent(orOne(b.StorageMultiplier), 0),
				Value: includedOr(b.StorageCost, "Included"),
			},
		},
		Total: &BreakdownLine{Label: "Total Service Cost", Value: FormatUSD(b.PackingCost + b.StorageCost)},
	}
}

func otherSection(weight float64, b *Breakdown) BreakdownSection {
	insurance := BreakdownLine{Label: "Insurance Coverage", Value: includedOr(b.InsuranceCost, "Not Included")}
	if b.InsuranceCost > 0 && weight > 0 {
		thousands := weight / 1000
		insurance.Note = fmt.Sprintf("Rate: %sK lbs @ %s per 1000 lbs", FormatFixed(thousands, 1), FormatUSD(b.InsuranceCost/thousands))
	}

	return BreakdownSection{
		Key:   "other",
		Icon:  "💰",
		Title: "Other Costs",
		Lines: []BreakdownLine{
			{
				Label: fmt.Sprintf("Regional Adjustment (%s → %s)", orDefault(b.OriginRegion, "default"), orDefault(b.DestinationRegion, "default")),
				Value: FormatUSD(b.RegionalCostAdjustment),
			},
			{
				Label: fmt.Sprintf("Fuel Surcharge (%s)", FormatPercent(b.FuelSurchargeRate, 0)),
				Value: FormatUSD(b.FuelCharge),
			},
			insurance,
		},
		Total: &BreakdownLine{
			Label: "Total Other Costs",
			Value: FormatUSD(b.RegionalCostAdjustment + b.FuelCharge + b.InsuranceCost),
		},
	}
}

func discountSection(b *Breakdown) BreakdownSection {
	return BreakdownSection{
		Key:   "discount",
		Icon:  "✂️",
		Title: "Discount Applied",
		Lines: []BreakdownLine{
			{
				Label: fmt.Sprintf("Discount (%s off subtotal)", FormatPercent(b.DiscountRate, 1)),
				Note:  "Applied to: Material + Transportation + Services + Regional + Insurance",
				Value: "-" + FormatUSD(b.DiscountAmount),
			},
		},
		Total: &BreakdownLine{Label: "Subtotal After Discount", Value: FormatUSD(b.SubtotalAfterDiscount)},
	}
}

func tariffSection(b *Breakdown) BreakdownSection {
	if b.TotalTariffsAndTaxes <= 0 {
		return BreakdownSection{
			Key:   "tariffs",
			Icon:  "✅",
			Title: "Tariffs & Taxes",
			Lines: []BreakdownLine{{Label: "No tariffs or taxes apply", Value: FormatUSD(0)}},
		}
	}

	subtotal := FormatUSD(b.SubtotalBeforeTariffs)
	var lines []BreakdownLine

	if b.InterstateTariff > 0 {
		rate := "3.00%"
		if b.SubtotalBeforeTariffs > 0 {
			rate = FormatPercent(b.InterstateTariff/b.SubtotalBeforeTariffs, 2)
		}
		lines = append(lines, BreakdownLine{
			Label: orDefault(b.TariffDescription, "Interstate") + " Commerce Fee",
			Note:  fmt.Sprintf("Rate: %s of subtotal (%s)", rate, subtotal),
			Value: FormatUSD(b.InterstateTariff),
		})
	} else {
		lines = append(lines, BreakdownLine{
			Label: "Interstate Commerce Fee",
			Note:  "Not applicable (intrastate move)",
			Value: FormatUSD(0),
		})
	}

	if b.StateTax > 0 {
		lines = append(lines, BreakdownLine{
			Label: fmt.Sprintf("State Moving Tax (%s)", b.DestinationState),
			Note:  fmt.Sprintf("Rate: %s of subtotal (%s)", StateTaxRate(b.DestinationState), subtotal),
			Value: FormatUSD(b.StateTax),
		})
	} else {
		lines = append(lines, BreakdownLine{
			Label: fmt.Sprintf("State Moving Tax (%s)", orDefault(b.DestinationState, "N/A")),
			Note:  "No state tax configured for this state",
			Value: FormatUSD(0),
		})
	}

	base := b.SubtotalBeforeTariffs
	if base == 0 {
		base = 1
	}

	return BreakdownSection{
		Key:   "tariffs",
		Icon:  "📊",
		Title: "Tariffs & Taxes",
		Total: &BreakdownLine{Label: "Total Tariffs & Taxes", Value: FormatUSD(b.TotalTariffsAndTaxes)},
		Tariff: &TariffDetail{
			Total:         FormatUSD(b.TotalTariffsAndTaxes),
			Lines:         lines,
			EffectiveRate: FormatPercent(b.TotalTariffsAndTaxes/base, 2) + " of subtotal",
			TariffType:    Capitalize(orDefault(b.TariffType, "none")),
		},
	}
}
