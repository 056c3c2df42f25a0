package stats

import (
	"context"
	"sync"
	"time"

	"github.com/robertarktes/tourinfo/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Source is one independent dashboard query.
type Source struct {
	Name  string
	Fetch func(ctx context.Context) (int64, error)
}

// Snapshot is always producible: every source has a value, zero when it
// failed or had not resolved by the deadline.
type Snapshot struct {
	Values      map[string]int64
	Failed      []string
	TimedOut    bool
	GeneratedAt time.Time
}

// Aggregator runs all sources concurrently and joins them settle-all
// style: one source failing or hanging never cancels the others. A global
// deadline races the join; when it fires first the snapshot holds whatever
// had resolved, flagged TimedOut. The deadline bounds waiting only — it
// does not abort in-flight queries.
type Aggregator struct {
	sources  []Source
	deadline time.Duration
	logger   observability.Logger
}

func New(logger observability.Logger, deadline time.Duration, sources ...Source) *Aggregator {
	return &Aggregator{sources: sources, deadline: deadline, logger: logger}
}

func (a *Aggregator) Aggregate(ctx context.Context) Snapshot {
	var mu sync.Mutex
	values := make(map[string]int64, len(a.sources))
	for _, src := range a.sources {
		values[src.Name] = 0
	}
	var failed []string

	// Plain errgroup.Group, not WithContext: a failing source must not
	// cancel its siblings, so Go funcs always return nil.
	var g errgroup.Group
	for _, src := range a.sources {
		src := src
		g.Go(func() error {
			v, err := src.Fetch(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, src.Name)
				a.logger.WithField("source", src.Name).Warn("stats source failed: ", err)
				return nil
			}
			values[src.Name] = v
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	timer := time.NewTimer(a.deadline)
	defer timer.Stop()

	timedOut := false
	select {
	case <-done:
	case <-timer.C:
		timedOut = true
		observability.StatsTimeouts.Inc()
		a.logger.Warn("stats aggregation hit deadline, returning partial data")
	}

	mu.Lock()
	out := make(map[string]int64, len(values))
	for k, v := range values {
		out[k] = v
	}
	failedCopy := append([]string(nil), failed...)
	mu.Unlock()

	return Snapshot{
		Values:      out,
		Failed:      failedCopy,
		TimedOut:    timedOut,
		GeneratedAt: time.Now(),
	}
}
