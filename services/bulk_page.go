package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"shouldcost/logger"
)

// BulkState is the position of the bulk page in its upload workflow.
type BulkState string

const (
	BulkEmpty      BulkState = "empty"
	BulkSelected   BulkState = "selected"
	BulkValidating BulkState = "validating"
	BulkValid      BulkState = "valid"
	BulkInvalid    BulkState = "invalid"
	BulkProcessing BulkState = "processing"
	BulkSuccess    BulkState = "success"
	BulkFailed     BulkState = "failed"
)

// DownloadAction is the local route the results download form targets.
const DownloadAction = "/bulk/download/excel"

// DownloadForm describes the hidden-field form that asks for a results
// workbook. Value is the JSON of the cached results.
type DownloadForm struct {
	Action string
	Method string
	Target string
	Field  string
	Value  string
}

// FileInfo describes the selected file.
type FileInfo struct {
	Name    string
	Size    string
	Preview WorkbookPreview
}

// BulkResultsView is the revealed results section.
type BulkResultsView struct {
	Cards    []SummaryCard
	Errors   ErrorList
	Rows     []ResultRow
	Download DownloadForm
}

// BulkSnapshot is a consistent, render-ready copy of the page state.
type BulkSnapshot struct {
	State      BulkState
	File       *FileInfo
	Validation *ValidationView
	CanProcess bool
	Processing bool
	Error      string
	Progress   Progress
	Results    *BulkResultsView
	Modal      *RowDetail
}

// BulkPage owns the bulk upload workflow of one browser session: the current
// file, its validation, one processing run at a time, the cached results and
// the open row modal.
type BulkPage struct {
	api         PricingAPI
	tick        time.Duration
	revealDelay time.Duration

	mu  sync.Mutex
	wg  sync.WaitGroup
	gen int

	state      BulkState
	file       *UploadFile
	preview    WorkbookPreview
	validation *BulkValidation
	errText    string
	rates      RateSettings

	ticker   *ProgressTicker
	complete bool
	revealed bool
	outcome  *BulkOutcome

	modalOpen bool
	modalRow  RowResult
}

// NewBulkPage returns an empty page. tick is the progress bar cadence and
// revealDelay the pause between "Complete!" and showing the results.
func NewBulkPage(api PricingAPI, tick, revealDelay time.Duration) *BulkPage {
	return &BulkPage{
		api:         api,
		tick:        tick,
		revealDelay: revealDelay,
		state:       BulkEmpty,
		rates:       DefaultRateSettings(),
	}
}

// State returns the current workflow state.
func (p *BulkPage) State() BulkState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Rates returns the rate settings used by the last processing run.
func (p *BulkPage) Rates() RateSettings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rates
}

// Select checks and stores a newly chosen file, then validates it right away.
// A rejected file leaves the previous selection untouched and makes no
// request. Selection is refused while a batch is processing.
func (p *BulkPage) Select(ctx context.Context, name string, size int64, r io.Reader) error {
	if p.State() == BulkProcessing {
		return ErrBusy
	}

	file, err := ReadUpload(name, size, r)
	if err != nil {
		p.setError(err)
		return err
	}
	preview := PreviewWorkbook(file)

	p.mu.Lock()
	if p.state == BulkProcessing {
		p.mu.Unlock()
		return ErrBusy
	}
	p.gen++
	gen := p.gen
	p.resetLocked()
	p.file = &file
	p.preview = preview
	p.state = BulkValidating
	p.mu.Unlock()

	logger.Info(ctx, "Validating bulk file",
		zap.String("file", file.Name),
		zap.Int64("size", file.Size),
		zap.String("content_type", preview.ContentType))

	validation, err := p.api.ValidateBulk(ctx, file)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		// Superseded by a newer selection or a clear.
		return nil
	}
	if err != nil {
		logger.Warn(ctx, "Bulk validation failed", zap.String("file", file.Name), zap.Error(err))
		p.state = BulkSelected
		p.errText = ErrorText(err)
		return err
	}

	p.validation = validation
	if validation.Valid {
		p.state = BulkValid
	} else {
		p.state = BulkInvalid
	}
	return nil
}

// Clear drops the selection and everything derived from it.
func (p *BulkPage) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == BulkProcessing {
		return ErrBusy
	}
	p.gen++
	p.resetLocked()
	p.state = BulkEmpty
	return nil
}

func (p *BulkPage) resetLocked() {
	p.file = nil
	p.preview = WorkbookPreview{}
	p.validation = nil
	p.errText = ""
	p.complete = false
	p.revealed = false
	p.outcome = nil
	p.modalOpen = false
}

func (p *BulkPage) setError(err error) {
	p.mu.Lock()
	p.errText = ErrorText(err)
	p.mu.Unlock()
}

// Start begins processing the validated file with the given rate settings.
// It returns at once; the request, the progress ticker and the delayed
// reveal run in the background. Only one run may be active.
func (p *BulkPage) Start(ctx context.Context, rates RateSettings) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.state == BulkProcessing:
		return ErrBusy
	case p.file == nil:
		p.errText = ErrorText(ErrNoFile)
		return ErrNoFile
	case p.validation == nil || !p.validation.Valid:
		p.errText = ErrorText(ErrNotValidated)
		return ErrNotValidated
	}

	p.gen++
	gen := p.gen
	p.state = BulkProcessing
	p.errText = ""
	p.complete = false
	p.revealed = false
	p.outcome = nil
	p.modalOpen = false
	p.rates = rates
	p.ticker = StartProgressTicker(p.tick)

	p.wg.Add(1)
	go p.process(context.WithoutCancel(ctx), gen, *p.file, rates, p.ticker)
	return nil
}

func (p *BulkPage) process(ctx context.Context, gen int, file UploadFile, rates RateSettings, ticker *ProgressTicker) {
	defer p.wg.Done()

	started := time.Now()
	outcome, err := p.api.ProcessBulk(ctx, file, rates.CustomRates())
	ticker.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticker = nil
	if gen != p.gen {
		return
	}

	if err != nil {
		logger.Warn(ctx, "Bulk processing failed", zap.String("file", file.Name), zap.Error(err))
		p.state = BulkFailed
		p.errText = ErrorText(err)
		return
	}

	logger.Info(ctx, "Bulk processing complete",
		zap.String("file", file.Name),
		zap.Int("total_rows", outcome.Summary.TotalRows),
		zap.Int("failed", outcome.Summary.Failed),
		zap.Duration("elapsed", time.Since(started)))

	p.state = BulkSuccess
	p.complete = true
	p.outcome = outcome

	p.wg.Add(1)
	time.AfterFunc(p.revealDelay, func() {
		defer p.wg.Done()
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen == p.gen {
			p.revealed = true
		}
	})
}

// Wait blocks until any background processing and reveal have finished.
func (p *BulkPage) Wait() {
	p.wg.Wait()
}

// Results returns a copy of the cached results array.
func (p *BulkPage) Results() []RowResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.outcome == nil {
		return nil
	}
	out := make([]RowResult, len(p.outcome.Results))
	copy(out, p.outcome.Results)
	return out
}

// OpenRow opens the detail modal for a successful row, replacing any modal
// already open.
func (p *BulkPage) OpenRow(rowNumber int) (RowDetail, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.outcome == nil || !p.revealed {
		return RowDetail{}, ErrRowNotFound
	}
	for _, r := range p.outcome.Results {
		if r.RowNumber == rowNumber && !r.Failed() {
			p.modalOpen = true
			p.modalRow = r
			return BuildRowDetail(r), nil
		}
	}
	return RowDetail{}, ErrRowNotFound
}

// CloseModal closes the open modal and reports whether one was open. With no
// modal open it does nothing.
func (p *BulkPage) CloseModal() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	wasOpen := p.modalOpen
	p.modalOpen = false
	return wasOpen
}

// DownloadForm serialises the cached results into the download form.
func (p *BulkPage) DownloadForm() (DownloadForm, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.downloadFormLocked()
}

func (p *BulkPage) downloadFormLocked() (DownloadForm, error) {
	if p.outcome == nil || len(p.outcome.Results) == 0 {
		return DownloadForm{}, ErrNoResults
	}
	data, err := json.Marshal(p.outcome.Results)
	if err != nil {
		return DownloadForm{}, fmt.Errorf("marshal results: %w", err)
	}
	return DownloadForm{
		Action: DownloadAction,
		Method: "get",
		Target: "_blank",
		Field:  "results",
		Value:  string(data),
	}, nil
}

// ShowError replaces the page error with err's display text.
func (p *BulkPage) ShowError(err error) {
	p.setError(err)
}

// Snapshot returns the state needed to render the page.
func (p *BulkPage) Snapshot() BulkSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := BulkSnapshot{
		State:      p.state,
		Processing: p.state == BulkProcessing,
		Error:      p.errText,
		Progress:   p.progressLocked(),
	}
	if p.file != nil {
		snap.File = &FileInfo{
			Name:    p.file.Name,
			Size:    humanize.Bytes(uint64(p.file.Size)),
			Preview: p.preview,
		}
	}
	if p.validation != nil {
		v := BuildValidationView(p.validation)
		snap.Validation = &v
		snap.CanProcess = p.validation.Valid
	}
	if p.revealed && p.outcome != nil {
		results := &BulkResultsView{
			Cards:  BuildSummaryCards(p.outcome.Summary),
			Errors: BuildErrorList(p.outcome.Errors),
			Rows:   BuildResultRows(p.outcome.Results),
		}
		if form, err := p.downloadFormLocked(); err == nil {
			results.Download = form
		}
		snap.Results = results
	}
	if p.modalOpen {
		detail := BuildRowDetail(p.modalRow)
		snap.Modal = &detail
	}
	return snap
}

func (p *BulkPage) progressLocked() Progress {
	switch {
	case p.state == BulkProcessing && p.ticker != nil:
		return processingProgress(p.ticker.Shown())
	case p.complete && !p.revealed:
		return completeProgress()
	}
	return Progress{}
}
