package rpcpool

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

// Tracker probes every endpoint on a fixed interval. A failed or timed-out
// probe marks the endpoint unhealthy immediately; a later successful probe
// restores it, without hysteresis.
type Tracker struct {
	sel      *Selector
	interval time.Duration
	timeout  time.Duration
}

func NewTracker(sel *Selector, interval, timeout time.Duration) *Tracker {
	return &Tracker{
		sel:      sel,
		interval: interval,
		timeout:  timeout,
	}
}

// Run blocks until ctx is cancelled. Probes within one tick run
// concurrently; a slow endpoint only degrades itself.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.probeAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.probeAll(ctx)
		}
	}
}

func (t *Tracker) probeAll(ctx context.Context) {
	t.sel.mu.RLock()
	entries := make([]*entry, len(t.sel.entries))
	copy(entries, t.sel.entries)
	t.sel.mu.RUnlock()

	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(e *entry) {
			defer wg.Done()
			t.probeOne(ctx, e)
		}(e)
	}
	wg.Wait()
}

func (t *Tracker) probeOne(ctx context.Context, e *entry) {
	probeCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := e.client.Health(probeCtx); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"URL": e.url, "ErrMsg": err}).Warn("Tracker endpoint health probe failed")

		t.sel.setHealth(e.url, false, math.Inf(1))
		return
	}

	latencyCtx, cancelLatency := context.WithTimeout(ctx, t.timeout)
	defer cancelLatency()

	start := time.Now()
	if _, err := e.client.Slot(latencyCtx); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"URL": e.url, "ErrMsg": err}).Warn("Tracker endpoint latency probe failed")

		t.sel.setHealth(e.url, false, math.Inf(1))
		return
	}

	t.sel.setHealth(e.url, true, float64(time.Since(start).Microseconds())/1000.0)
}
