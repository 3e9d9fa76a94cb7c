// Package poller implements the client-side notification polling loop: a
// timer-driven fetch of the current user's notifications that raises local
// alerts for new ones. Polling approximates real-time delivery without a
// persistent connection; the WebSocket channel is an optional supplement.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultInterval is the standard polling cadence.
	DefaultInterval = 10 * time.Second

	// AppointmentsViewInterval is the tighter cadence used while the
	// appointments list is on screen.
	AppointmentsViewInterval = 5 * time.Second
)

// Notice is one notification as returned by the server.
type Notice struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Fetcher retrieves the current user's notifications.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Notice, error)
}

// Alerter reacts to a newly arrived notification, e.g. by playing a sound
// and raising a system alert.
type Alerter interface {
	Alert(n Notice)
}

// alertedTypes are the notification types that trigger a local alert.
var alertedTypes = map[string]bool{"video": true, "appointment": true}

// Poller periodically fetches notifications and alerts on ones that are
// unread and created after the previous fetch. The watermark advances on
// every successful fetch whether or not anything new arrived, so a
// notification is never alerted twice.
type Poller struct {
	fetcher      Fetcher
	alerter      Alerter
	interval     time.Duration
	fetchTimeout time.Duration
	logger       zerolog.Logger

	inFlight  atomic.Bool
	watermark time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the polling cadence.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithFetchTimeout bounds each fetch so a hanging request cannot stack up
// behind the next tick.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Poller) { p.fetchTimeout = d }
}

// New creates a stopped Poller.
func New(fetcher Fetcher, alerter Alerter, logger zerolog.Logger, opts ...Option) *Poller {
	p := &Poller{
		fetcher:      fetcher,
		alerter:      alerter,
		interval:     DefaultInterval,
		fetchTimeout: 8 * time.Second,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling until Stop is called or ctx is cancelled. The
// watermark starts at the current time, so only notifications created after
// the session began can alert. Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.watermark = time.Now()

	go p.run(ctx)
}

// Stop cancels polling immediately and waits for the loop to exit. No fetch
// is issued after Stop returns. Safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce runs a single fetch cycle. If the previous fetch has not finished
// the cycle is skipped rather than stacked.
func (p *Poller) pollOnce(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug().Msg("previous fetch still in flight, skipping cycle")
		return
	}
	defer p.inFlight.Store(false)

	fetchedAt := time.Now()
	fctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	notices, err := p.fetcher.Fetch(fctx)
	if err != nil {
		// Silent retry on the next tick.
		p.logger.Debug().Err(err).Msg("notification fetch failed")
		return
	}

	for _, n := range notices {
		if n.Read || !n.CreatedAt.After(p.watermark) {
			continue
		}
		if alertedTypes[n.Type] && p.alerter != nil {
			p.alerter.Alert(n)
		}
	}

	p.watermark = fetchedAt
}
