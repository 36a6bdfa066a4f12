package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"shouldcost/logger"
)

// ShipmentView is what the single-shipment controller drives. Handlers
// implement it over a response; tests substitute a recording fake.
type ShipmentView interface {
	SetBusy(busy bool)
	ShowResult(view EstimateView)
	ShowError(message string)
}

// EstimateController submits shipment forms to the pricing API.
type EstimateController struct {
	api PricingAPI
}

// NewEstimateController returns a controller calling api.
func NewEstimateController(api PricingAPI) *EstimateController {
	return &EstimateController{api: api}
}

// Submit validates the form, calls /calculate and renders the outcome into
// view. The busy state is released on every return path. The form itself is
// never cleared.
func (c *EstimateController) Submit(ctx context.Context, form ShipmentForm, view ShipmentView) (*EstimateResult, error) {
	view.SetBusy(true)
	defer view.SetBusy(false)

	if err := form.Validate(); err != nil {
		view.ShowError(ErrorText(err))
		return nil, err
	}

	result, err := c.api.Calculate(ctx, form.ToRequest())
	if err != nil {
		logger.Warn(ctx, "Calculation failed",
			zap.String("origin", form.Origin),
			zap.String("destination", form.Destination),
			zap.Error(err))
		view.ShowError(ErrorText(err))
		return nil, err
	}

	view.ShowResult(BuildEstimateView(result, form.HasManualDistance()))
	return result, nil
}

// EstimatePage is the single-shipment page state of one browser session.
type EstimatePage struct {
	mu         sync.Mutex
	busy       bool
	form       ShipmentForm
	lastResult *EstimateResult
	lastManual bool
}

// NewEstimatePage returns a page showing an empty form.
func NewEstimatePage() *EstimatePage {
	return &EstimatePage{form: NewShipmentForm()}
}

// Busy reports whether a calculation is in flight.
func (p *EstimatePage) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

func (p *EstimatePage) setBusy(busy bool) {
	p.mu.Lock()
	p.busy = busy
	p.mu.Unlock()
}

// Form returns the form as last submitted.
func (p *EstimatePage) Form() ShipmentForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Remember stores the submitted form and, on success, the result.
func (p *EstimatePage) Remember(form ShipmentForm, result *EstimateResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = form
	if result != nil {
		p.lastResult = result
		p.lastManual = form.HasManualDistance()
	}
}

// LastEstimate returns the view of the last successful calculation.
func (p *EstimatePage) LastEstimate() (EstimateView, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastResult == nil {
		return EstimateView{}, false
	}
	return BuildEstimateView(p.lastResult, p.lastManual), true
}

// TrackBusy wraps view so busy transitions are also recorded on the page.
func (p *EstimatePage) TrackBusy(view ShipmentView) ShipmentView {
	return &trackedView{ShipmentView: view, page: p}
}

type trackedView struct {
	ShipmentView
	page *EstimatePage
}

func (v *trackedView) SetBusy(busy bool) {
	v.page.setBusy(busy)
	v.ShipmentView.SetBusy(busy)
}
