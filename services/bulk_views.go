package services

import (
	"fmt"
	"strconv"
)

// MaxListedErrors is how many processing errors are listed before the rest
// are summarised.
const MaxListedErrors = 10

// SummaryCard is one stat tile above the results table.
type SummaryCard struct {
	Label string
	Value string
	Tone  string // "", "success" or "error"
}

// BuildSummaryCards renders total / successful / failed / success rate.
func BuildSummaryCards(s BulkSummary) []SummaryCard {
	failedTone := ""
	if s.Failed > 0 {
		failedTone = "error"
	}
	return []SummaryCard{
		{Label: "Total Rows", Value: strconv.Itoa(s.TotalRows)},
		{Label: "Successful", Value: strconv.Itoa(s.Successful), Tone: "success"},
		{Label: "Failed", Value: strconv.Itoa(s.Failed), Tone: failedTone},
		{Label: "Success Rate", Value: s.SuccessRate},
	}
}

// ErrorList is the capped processing-error list.
type ErrorList struct {
	Items []string
	More  string // e.g. "... and 5 more errors", empty when nothing was cut
}

// Empty reports whether there is nothing to show.
func (l ErrorList) Empty() bool {
	return len(l.Items) == 0
}

// BuildErrorList keeps the first MaxListedErrors entries and summarises the rest.
func BuildErrorList(errs []string) ErrorList {
	if len(errs) <= MaxListedErrors {
		return ErrorList{Items: errs}
	}
	return ErrorList{
		Items: errs[:MaxListedErrors],
		More:  fmt.Sprintf("... and %d more errors", len(errs)-MaxListedErrors),
	}
}

// ResultRow is one rendered row of the results table.
type ResultRow struct {
	RowNumber   int
	Failed      bool
	Status      string
	Origin      string
	Destination string
	Distance    string
	Weight      string
	Cost        string
	Error       string
}

// BuildResultRows renders one table row per processed row. Failed rows carry
// dash placeholders and the error text; successful rows carry formatted
// distance, weight and cost and can be opened in the detail modal.
func BuildResultRows(results []RowResult) []ResultRow {
	rows := make([]ResultRow, 0, len(results))
	for _, r := range results {
		row := ResultRow{
			RowNumber:   r.RowNumber,
			Origin:      r.Origin,
			Destination: r.Destination,
		}
		if r.Failed() {
			row.Failed = true
			row.Status = "✗ FAILED"
			row.Distance, row.Weight, row.Cost = "-", "-", "-"
			row.Error = r.Error
		} else {
			row.Status = "✓ SUCCESS"
			row.Distance = FormatNumber(r.DistanceMiles) + " mi"
			row.Weight = FormatNumber(r.WeightPounds) + " lbs"
			row.Cost = FormatUSD(r.TotalShouldCost)
		}
		rows = append(rows, row)
	}
	return rows
}

// RowDetail is the content of the row detail modal.
type RowDetail struct {
	RowNumber   int
	Title       string
	Origin      string
	Destination string
	Distance    string
	Weight      string
	Costs       []BreakdownLine
	Total       string
	Breakdown   BreakdownView
}

// BuildRowDetail renders the modal for one successful row: route info, the
// summary cost table and the full sectioned breakdown.
func BuildRowDetail(r RowResult) RowDetail {
	b := r.Breakdown
	if b == nil {
		b = &Breakdown{}
	}
	return RowDetail{
		RowNumber:   r.RowNumber,
		Title:       fmt.Sprintf("Row %d - Detailed Breakdown", r.RowNumber),
		Origin:      fmt.Sprintf("%s (%s)", r.Origin, orDefault(b.OriginRegion, "default")),
		Destination: fmt.Sprintf("%s (%s)", r.Destination, orDefault(b.DestinationRegion, "default")),
		Distance:    FormatNumber(r.DistanceMiles) + " miles",
		Weight:      FormatNumber(r.WeightPounds) + " lbs",
		Costs: []BreakdownLine{
			{Label: "Material Cost", Value: FormatUSD(b.MaterialAdjustedCost)},
			{Label: "Transportation Cost", Value: FormatUSD(b.TransportationCost)},
			{Label: fmt.Sprintf("Packing (%s)", orDefault(b.PackingService, "N/A")), Value: FormatUSD(b.PackingCost)},
			{Label: fmt.Sprintf("Storage (%s)", orDefault(b.StorageOption, "N/A")), Value: FormatUSD(b.StorageCost)},
			{Label: "Fuel Surcharge", Value: FormatUSD(b.FuelCharge)},
			{Label: "Insurance", Value: FormatUSD(b.InsuranceCost)},
			{Label: "Tariffs & Taxes", Value: FormatUSD(b.TotalTariffsAndTaxes)},
		},
		Total:     FormatUSD(r.TotalShouldCost),
		Breakdown: BuildBreakdown(r.WeightPounds, r.Breakdown),
	}
}

// ValidationView is the rendered outcome of a validation call.
type ValidationView struct {
	Valid    bool
	Headline string
	Detail   string
	Warnings []string
	Errors   []string
}

// BuildValidationView renders a validation result. Warnings are only listed
// for valid files; invalid files list every blocking error.
func BuildValidationView(v *BulkValidation) ValidationView {
	if v == nil {
		return ValidationView{}
	}
	if v.Valid {
		return ValidationView{
			Valid:    true,
			Headline: "File is valid and ready to process!",
			Detail:   fmt.Sprintf("Found %d row(s) of data", v.RowCount),
			Warnings: v.Warnings,
		}
	}
	return ValidationView{
		Headline: "File validation failed",
		Errors:   v.Errors,
	}
}
