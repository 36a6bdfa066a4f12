package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"shouldcost/logger"
	"shouldcost/services"
	"shouldcost/templates"
)

// responseView collects what the estimate controller shows so the handler
// can render it once the call returns.
type responseView struct {
	result *services.EstimateView
	err    string
}

func (v *responseView) SetBusy(bool) {}

func (v *responseView) ShowResult(view services.EstimateView) {
	v.result = &view
	v.err = ""
}

func (v *responseView) ShowError(message string) {
	v.err = message
	v.result = nil
}

func (v *responseView) component() templ.Component {
	if v.result != nil {
		return templates.EstimateResult(*v.result)
	}
	return templates.EstimateError(v.err)
}

func calculatorPageData(page *services.EstimatePage) templates.CalculatorPageData {
	form := page.Form()
	data := templates.CalculatorPageData{
		Form:            form,
		Rates:           services.BuildRateInputs(form.Rates),
		PackingServices: services.PackingServices,
		StorageOptions:  services.StorageOptions,
		Busy:            page.Busy(),
	}
	if view, ok := page.LastEstimate(); ok {
		data.Result = &view
	}
	return data
}

// HandleCalculatorPage renders the single-shipment page with the session's
// last form and result.
func HandleCalculatorPage() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}
		component := templates.CalculatorPage(calculatorPageData(sess.Estimate))
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleEstimate submits the shipment form to the pricing API and renders the
// result panel or the error region into #estimate-output.
func HandleEstimate(api services.PricingAPI) func(*core.RequestEvent) error {
	controller := services.NewEstimateController(api)

	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}
		if sess.Estimate.Busy() {
			return ErrorToast(e, http.StatusConflict, services.ErrBusy.Error())
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form submission")
		}

		form := services.BindShipmentForm(e.Request.PostForm)
		view := &responseView{}
		result, _ := controller.Submit(e.Request.Context(), form, sess.Estimate.TrackBusy(view))
		sess.Estimate.Remember(form, result)

		if result != nil {
			logger.Info(e.Request.Context(), "Estimate calculated",
				zap.String("origin", result.Origin),
				zap.String("destination", result.Destination),
				zap.Float64("total", result.TotalShouldCost))
		}
		return view.component().Render(e.Request.Context(), e.Response)
	}
}

// HandleEstimatePDF downloads the session's last estimate as a PDF.
func HandleEstimatePDF() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sess, err := currentSession(e)
		if sess == nil {
			return err
		}

		view, ok := sess.Estimate.LastEstimate()
		if !ok {
			return failDownload(e, http.StatusNotFound, "No estimate to export. Calculate one first.")
		}

		now := time.Now()
		pdfBytes, err := services.GenerateEstimatePDF(view, now)
		if err != nil {
			logger.Error(e.Request.Context(), "Failed to generate estimate PDF", err)
			return failDownload(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("should-cost-estimate_%s.pdf", now.Format("2006-01-02"))
		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		_, err = e.Response.Write(pdfBytes)
		return err
	}
}

// HandleSettingsReset renders all ten rate inputs at their defaults.
func HandleSettingsReset() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		component := templates.RateSettingsFields(services.BuildRateInputs(services.DefaultRateSettings()))
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleSettingsField re-renders one rate input so its modified flag tracks
// the entered value.
func HandleSettingsField() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		field, ok := services.LookupRateField(e.Request.PathValue("field"))
		if !ok {
			return ErrorToast(e, http.StatusNotFound, "Unknown rate setting")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form submission")
		}

		value := services.ParseRateSettings(e.Request.PostForm).Value(field.ID)
		component := templates.RateInput(services.BuildRateInput(field, value))
		return component.Render(e.Request.Context(), e.Response)
	}
}
