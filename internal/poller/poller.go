package poller

import (
	"context"
	"sync"
	"time"

	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/observability"
)

type FetchFunc func(ctx context.Context) ([]domain.AdminNotice, error)

type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
)

// Poller wraps a periodic fetch with bounded retry. After maxRetries
// failed attempts with a fixed delay between them, it degrades silently
// to an empty snapshot instead of surfacing an error; the next tick
// restarts the cycle.
type Poller struct {
	fetch      FetchFunc
	maxRetries int
	delay      time.Duration
	logger     observability.Logger

	mu       sync.RWMutex
	state    State
	snapshot []domain.AdminNotice
	degraded bool
}

func New(fetch FetchFunc, maxRetries int, delay time.Duration, logger observability.Logger) *Poller {
	return &Poller{
		fetch:      fetch,
		maxRetries: maxRetries,
		delay:      delay,
		logger:     logger,
		state:      StateIdle,
	}
}

func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	p.Poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs one fetch cycle: Idle -> Fetching -> Idle, retrying on
// failure up to maxRetries before degrading.
func (p *Poller) Poll(ctx context.Context) {
	p.setState(StateFetching)
	defer p.setState(StateIdle)

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.delay):
			}
		}

		notices, err := p.fetch(ctx)
		if err == nil {
			p.mu.Lock()
			p.snapshot = notices
			p.degraded = false
			p.mu.Unlock()
			return
		}
		p.logger.WithField("attempt", attempt+1).Warn("notice fetch failed: ", err)
	}

	// Exhausted: empty result, no error to the caller.
	p.mu.Lock()
	p.snapshot = nil
	p.degraded = true
	p.mu.Unlock()
	p.logger.Debug("notice poller degraded to empty state")
}

// Snapshot returns the last result and whether the poller is degraded.
func (p *Poller) Snapshot() ([]domain.AdminNotice, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.AdminNotice, len(p.snapshot))
	copy(out, p.snapshot)
	return out, p.degraded
}

func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
