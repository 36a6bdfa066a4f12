// Package templates renders the estimator pages and HTMX partials. The markup
// lives in embedded html/template files; every exported function returns a
// templ.Component so handlers render pages and fragments the same way.
package templates

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"shouldcost/services"
)

//go:embed html/*.gohtml
var files embed.FS

var views = template.Must(template.ParseFS(files, "html/*.gohtml"))

func component(name string, data any) templ.Component {
	return templ.FromGoHTML(views.Lookup(name), data)
}

// Nav identifies the active navigation tab.
type Nav string

const (
	NavCalculator Nav = "calculator"
	NavBulk       Nav = "bulk"
)

// CalculatorPageData is the single-shipment page.
type CalculatorPageData struct {
	Nav             Nav
	Form            services.ShipmentForm
	Rates           []services.RateInput
	PackingServices []services.Option
	StorageOptions  []services.Option
	Busy            bool
	Result          *services.EstimateView
	Error           string
}

// BulkWorkspaceData is the dynamic part of the bulk page. Poll is the htmx
// polling trigger used while the progress bar is visible.
type BulkWorkspaceData struct {
	Snapshot services.BulkSnapshot
	Poll     string
}

// BulkPageData is the bulk upload page.
type BulkPageData struct {
	Nav       Nav
	Rates     []services.RateInput
	MaxUpload string
	Workspace BulkWorkspaceData
}

// CalculatorPage renders the full single-shipment page.
func CalculatorPage(data CalculatorPageData) templ.Component {
	data.Nav = NavCalculator
	return component("calculator_page", data)
}

// EstimateResult renders the result panel of a successful calculation.
func EstimateResult(view services.EstimateView) templ.Component {
	return component("estimate_result", view)
}

// EstimateError renders the dismissible error region.
func EstimateError(message string) templ.Component {
	return component("estimate_error", message)
}

// RateSettingsFields renders the ten rate inputs.
func RateSettingsFields(inputs []services.RateInput) templ.Component {
	return component("rate_fields", inputs)
}

// RateInput renders one rate input, flagged when overridden.
func RateInput(input services.RateInput) templ.Component {
	return component("rate_input", input)
}

// BulkPage renders the full bulk upload page.
func BulkPage(data BulkPageData) templ.Component {
	data.Nav = NavBulk
	return component("bulk_page", data)
}

// BulkWorkspace renders the selection, validation, progress and results area.
func BulkWorkspace(data BulkWorkspaceData) templ.Component {
	return component("bulk_workspace", data)
}

// RowModal renders the row detail overlay.
func RowModal(detail services.RowDetail) templ.Component {
	return component("row_modal", detail)
}
