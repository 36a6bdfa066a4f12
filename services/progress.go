package services

import (
	"fmt"
	"sync"
	"time"
)

const (
	progressStep    = 5
	progressCeiling = 90
)

// Progress is what the bulk progress bar shows.
type Progress struct {
	Visible bool
	Percent int
	Label   string
}

// Text is the bar caption, e.g. "Processing calculations... (35%)".
func (p Progress) Text() string {
	return fmt.Sprintf("%s (%d%%)", p.Label, p.Percent)
}

func processingProgress(percent int) Progress {
	return Progress{Visible: true, Percent: percent, Label: "Processing calculations..."}
}

func completeProgress() Progress {
	return Progress{Visible: true, Percent: 100, Label: "Complete!"}
}

// ProgressTicker drives the cosmetic progress bar: it advances by a fixed
// step on every tick and only publishes values up to 90%. It knows nothing
// about the real request.
type ProgressTicker struct {
	mu      sync.Mutex
	counter int
	shown   int

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartProgressTicker starts ticking every interval until Stop is called.
func StartProgressTicker(interval time.Duration) *ProgressTicker {
	t := &ProgressTicker{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.run(interval)
	return t
}

func (t *ProgressTicker) run(interval time.Duration) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.advance()
		}
	}
}

func (t *ProgressTicker) advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counter += progressStep
	if t.counter <= progressCeiling {
		t.shown = t.counter
	}
}

// Shown returns the last published percentage.
func (t *ProgressTicker) Shown() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shown
}

// Stop cancels the ticker and waits for its goroutine to exit. Safe to call
// more than once.
func (t *ProgressTicker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}
