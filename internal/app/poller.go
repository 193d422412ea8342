package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/five82/mmwdash/internal/request"
	"github.com/five82/mmwdash/internal/router"
	"github.com/five82/mmwdash/internal/state"
	"github.com/five82/mmwdash/internal/vitals"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultWarnings     = 10

	// Manual refreshes are limited to one per second with a burst of two.
	triggerRate  = rate.Limit(1)
	triggerBurst = 2
)

// Poller refreshes the store for whichever view is showing. Automatic
// polling pauses after the backend reports an expired session and resumes
// on Resume or a manual Trigger.
type Poller struct {
	api      vitals.Fetcher
	store    *state.Store
	interval time.Duration
	warnings int
	log      zerolog.Logger

	view      atomic.Int32
	suspended atomic.Bool
	trigger   chan struct{}
	limiter   *rate.Limiter

	// mu serializes refresh rounds.
	mu sync.Mutex
}

// PollerOptions tune a Poller.
type PollerOptions struct {
	Interval time.Duration
	Warnings int // rows requested for the big-screen warning list
	Logger   *zerolog.Logger
}

// NewPoller returns a Poller watching the monitor view.
func NewPoller(api vitals.Fetcher, store *state.Store, opts PollerOptions) *Poller {
	p := &Poller{
		api:      api,
		store:    store,
		interval: opts.Interval,
		warnings: opts.Warnings,
		log:      zerolog.Nop(),
		trigger:  make(chan struct{}, 1),
		limiter:  rate.NewLimiter(triggerRate, triggerBurst),
	}
	if p.interval <= 0 {
		p.interval = defaultPollInterval
	}
	if p.warnings <= 0 {
		p.warnings = defaultWarnings
	}
	if opts.Logger != nil {
		p.log = opts.Logger.With().Str("component", "poller").Logger()
	}
	p.view.Store(int32(router.ViewMonitor))
	return p
}

// Watch selects the data set to poll.
func (p *Poller) Watch(v router.View) {
	p.view.Store(int32(v))
}

// Trigger asks for an immediate refresh. It reports false when the request
// was rate limited.
func (p *Poller) Trigger() bool {
	if !p.limiter.Allow() {
		return false
	}
	p.suspended.Store(false)
	select {
	case p.trigger <- struct{}{}:
	default:
	}
	return true
}

// Resume re-enables automatic polling after a session expiry.
func (p *Poller) Resume() {
	p.suspended.Store(false)
}

// Suspended reports whether automatic polling is paused.
func (p *Poller) Suspended() bool {
	return p.suspended.Load()
}

// Start launches the polling goroutine. It returns immediately.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if p.suspended.Load() {
					continue
				}
			case <-p.trigger:
			}
			p.Refresh(ctx)
		}
	}()
}

// Refresh runs one poll round for the watched view.
func (p *Poller) Refresh(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	switch view := router.View(p.view.Load()); view {
	case router.ViewMonitor:
		uid := p.store.UID()
		var m vitals.Monitor
		m, err = p.api.Monitor(ctx, uid)
		p.store.UpdateMonitor(m, err)
		if err != nil {
			p.log.Warn().Err(err).Str("uid", uid).Msg("monitor poll failed")
		}
	case router.ViewBigScreen:
		var b vitals.BigScreen
		b, err = p.api.BigScreen(ctx, p.warnings)
		p.store.UpdateBigScreen(b, err)
		if err != nil {
			p.log.Warn().Err(err).Msg("big screen poll failed")
		}
	default:
		return
	}

	if request.IsSessionExpired(err) {
		p.suspended.Store(true)
		p.log.Info().Msg("session expired, automatic polling paused")
	}
}
