package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfMuted    = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfHeaderBg = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfTotalBg  = &props.Color{Red: 240, Green: 240, Blue: 240}
	pdfWhite    = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// The built-in PDF fonts are Latin-1 only.
var pdfReplacer = strings.NewReplacer("→", "->", "✓", "", "⚠️", "", "❌", "")

func pdfText(s string) string {
	return strings.TrimSpace(pdfReplacer.Replace(s))
}

// GenerateEstimatePDF renders a single-shipment estimate: route summary, each
// breakdown section as a table and the total should-cost.
func GenerateEstimatePDF(view EstimateView, generated time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addEstimateHeader(m, view.Summary, generated)
	for _, s := range view.Breakdown.Sections {
		addBreakdownSection(m, s)
	}
	if view.Breakdown.MinimumChargeApplied {
		m.AddRows(text.NewRow(8, "Minimum Charge Applied: the calculated cost was below the minimum charge.", props.Text{
			Size:  8,
			Style: fontstyle.Italic,
			Color: pdfMuted,
		}))
	}
	addEstimateTotal(m, view.Summary.Total)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addEstimateHeader(m core.Maroto, s EstimateSummary, generated time.Time) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("Household Goods Should-Cost Estimate", props.Text{
					Size:  15,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	distance := s.Distance + " miles"
	if s.DistanceAuto {
		distance += " (auto-calculated)"
	}
	muted := props.Text{Size: 9, Color: pdfMuted}
	mutedRight := muted
	mutedRight.Align = align.Right

	m.AddRows(
		row.New(6).Add(
			col.New(8).Add(text.New("Route: "+pdfText(s.Route), muted)),
			col.New(4).Add(text.New("Date: "+generated.Format("02 Jan 2006"), mutedRight)),
		),
		row.New(6).Add(
			col.New(6).Add(text.New("Distance: "+distance, muted)),
			col.New(6).Add(text.New("Weight: "+s.Weight+" lbs", mutedRight)),
		),
		row.New(4),
	)
}

func addBreakdownSection(m core.Maroto, s BreakdownSection) {
	header := props.Text{Size: 9, Style: fontstyle.Bold, Color: pdfWhite, Left: 2, Top: 1}
	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(text.New(s.Title, header)),
		).WithStyle(&props.Cell{BackgroundColor: pdfHeaderBg}),
	)

	for _, l := range s.Lines {
		addBreakdownLine(m, l, false)
	}
	if s.Tariff != nil {
		for _, l := range s.Tariff.Lines {
			addBreakdownLine(m, l, false)
		}
		addBreakdownLine(m, BreakdownLine{Label: "Effective Tariff Rate", Value: s.Tariff.EffectiveRate}, false)
		addBreakdownLine(m, BreakdownLine{Label: "Tariff Type", Value: s.Tariff.TariffType}, false)
	}
	if s.Total != nil {
		addBreakdownLine(m, *s.Total, true)
	}
	m.AddRows(row.New(3))
}

func addBreakdownLine(m core.Maroto, l BreakdownLine, total bool) {
	style := fontstyle.Normal
	if total {
		style = fontstyle.Bold
	}
	left := props.Text{Size: 8, Style: style, Left: 2, Top: 1}
	right := props.Text{Size: 8, Style: style, Align: align.Right, Right: 2, Top: 1}

	label := pdfText(l.Label)
	if l.Note != "" {
		label += "  (" + pdfText(l.Note) + ")"
	}

	r := row.New(6).Add(
		col.New(9).Add(text.New(label, left)),
		col.New(3).Add(text.New(pdfText(l.Value), right)),
	)
	if total {
		r = r.WithStyle(&props.Cell{BackgroundColor: pdfTotalBg})
	}
	m.AddRows(r)
}

func addEstimateTotal(m core.Maroto, total string) {
	m.AddRows(
		row.New(4),
		row.New(10).Add(
			col.New(8).Add(text.New("Total Should Cost", props.Text{Size: 11, Style: fontstyle.Bold, Top: 2, Left: 2})),
			col.New(4).Add(text.New(total, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 2, Right: 2})),
		).WithStyle(&props.Cell{BackgroundColor: pdfTotalBg}),
	)
}
