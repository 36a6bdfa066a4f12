package services

import (
	"context"
	"sync"
)

// fakePricingAPI is an in-memory PricingAPI. Nil funcs fail the call.
type fakePricingAPI struct {
	mu sync.Mutex

	calculate func(CalculateRequest) (*EstimateResult, error)
	validate  func(UploadFile) (*BulkValidation, error)
	process   func(UploadFile, CustomRates) (*BulkOutcome, error)

	// release, when set, holds ProcessBulk until it is closed.
	release chan struct{}

	calculateCalls []CalculateRequest
	validateCalls  int
	processCalls   int
	processRates   CustomRates
}

func (f *fakePricingAPI) Calculate(_ context.Context, req CalculateRequest) (*EstimateResult, error) {
	f.mu.Lock()
	f.calculateCalls = append(f.calculateCalls, req)
	fn := f.calculate
	f.mu.Unlock()
	if fn == nil {
		return nil, &APIError{Op: OpCalculate}
	}
	return fn(req)
}

func (f *fakePricingAPI) ValidateBulk(_ context.Context, file UploadFile) (*BulkValidation, error) {
	f.mu.Lock()
	f.validateCalls++
	fn := f.validate
	f.mu.Unlock()
	if fn == nil {
		return nil, &APIError{Op: OpValidate}
	}
	return fn(file)
}

func (f *fakePricingAPI) ProcessBulk(_ context.Context, file UploadFile, rates CustomRates) (*BulkOutcome, error) {
	f.mu.Lock()
	f.processCalls++
	f.processRates = rates
	fn := f.process
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	if fn == nil {
		return nil, &APIError{Op: OpProcess}
	}
	return fn(file, rates)
}

func (f *fakePricingAPI) counts() (calculate, validate, process int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calculateCalls), f.validateCalls, f.processCalls
}

// recordingView captures what a controller rendered.
type recordingView struct {
	busyTransitions []bool
	result          *EstimateView
	errText         string
}

func (v *recordingView) SetBusy(busy bool) {
	v.busyTransitions = append(v.busyTransitions, busy)
}

func (v *recordingView) ShowResult(view EstimateView) {
	v.result = &view
}

func (v *recordingView) ShowError(message string) {
	v.errText = message
}
