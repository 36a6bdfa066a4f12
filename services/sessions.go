package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/tools/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shouldcost/logger"
)

// Session is the page state of one browser: the single-shipment page and the
// bulk page. Nothing is shared between sessions.
type Session struct {
	ID       string
	Estimate *EstimatePage
	Bulk     *BulkPage

	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// Allow reports whether the session may issue another pricing request now.
func (s *Session) Allow() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionRegistry maps session ids to sessions and expires idle ones.
type SessionRegistry struct {
	api         PricingAPI
	ttl         time.Duration
	tick        time.Duration
	revealDelay time.Duration
	limit       rate.Limit
	burst       int

	sessions *store.Store[string, *Session]
	createMu sync.Mutex
	now      func() time.Time
}

// NewSessionRegistry returns an empty registry. Sessions idle longer than ttl
// are dropped by Sweep.
func NewSessionRegistry(api PricingAPI, ttl, tick, revealDelay time.Duration) *SessionRegistry {
	return &SessionRegistry{
		api:         api,
		ttl:         ttl,
		tick:        tick,
		revealDelay: revealDelay,
		limit:       rate.Inf,
		sessions:    store.New[string, *Session](nil),
		now:         time.Now,
	}
}

// WithRateLimit caps how fast each new session may call the pricing API.
// perMinute <= 0 disables the cap.
func (r *SessionRegistry) WithRateLimit(perMinute, burst int) *SessionRegistry {
	if perMinute <= 0 {
		r.limit = rate.Inf
		return r
	}
	r.limit = rate.Every(time.Minute / time.Duration(perMinute))
	r.burst = burst
	return r
}

// Resolve returns the session for id, creating a fresh one when id is empty,
// unknown or expired. created reports whether a new id was issued.
func (r *SessionRegistry) Resolve(id string) (sess *Session, created bool) {
	if id != "" {
		if s, ok := r.sessions.GetOk(id); ok {
			s.touch(r.now())
			return s, false
		}
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	s := &Session{
		ID:       uuid.NewString(),
		Estimate: NewEstimatePage(),
		Bulk:     NewBulkPage(r.api, r.tick, r.revealDelay),
		limiter:  rate.NewLimiter(r.limit, r.burst),
		lastSeen: r.now(),
	}
	r.sessions.Set(s.ID, s)
	return s, true
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	return r.sessions.Length()
}

// Sweep removes sessions idle for longer than the TTL. Sessions with a batch
// still processing are kept until it finishes.
func (r *SessionRegistry) Sweep() int {
	now := r.now()
	removed := 0
	for id, s := range r.sessions.GetAll() {
		if s.idleSince(now) <= r.ttl || s.Bulk.State() == BulkProcessing {
			continue
		}
		r.sessions.Remove(id)
		removed++
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is cancelled.
func (r *SessionRegistry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Log.Info("Expired idle sessions", zap.Int("removed", n), zap.Int("live", r.Len()))
			}
		}
	}
}
