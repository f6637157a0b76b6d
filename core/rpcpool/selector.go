package rpcpool

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/config"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

type entry struct {
	url          string
	websocketURL string
	client       NodeClient

	healthy   bool
	latencyMs float64
}

// Selector owns the endpoint pool. It is created once per process and
// passed explicitly to the components that need connections.
type Selector struct {
	mu      sync.RWMutex
	entries []*entry
	current *entry

	probeTimeout time.Duration
}

func NewSelector(endpoints []config.EndpointConfig, factory ClientFactory, probeTimeout time.Duration) *Selector {
	entries := make([]*entry, 0, len(endpoints))
	for _, ep := range endpoints {
		if ep.URL == "" {
			continue
		}

		entries = append(entries, &entry{
			url:          ep.URL,
			websocketURL: ep.WebsocketURL,
			client:       factory(ep.URL),
			healthy:      true,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].url < entries[j].url })

	s := &Selector{
		entries:      entries,
		probeTimeout: probeTimeout,
	}
	if len(entries) > 0 {
		s.current = entries[0]
	}
	return s
}

// SelectOptimal races the height query across all currently healthy
// endpoints and returns the fastest one. Selection is recomputed on every
// call; health and latency are the freshest signal available. If nothing is
// healthy the previous selection is returned as a degraded fallback.
func (s *Selector) SelectOptimal(ctx context.Context) (Endpoint, NodeClient) {
	s.mu.RLock()
	candidates := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.healthy {
			candidates = append(candidates, e)
		}
	}
	s.mu.RUnlock()

	if len(candidates) == 0 {
		return s.fallback()
	}

	type raceResult struct {
		ep        *entry
		latencyMs float64
	}

	results := make([]raceResult, len(candidates))
	var wg sync.WaitGroup
	for i, e := range candidates {
		wg.Add(1)
		go func(idx int, e *entry) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
			defer cancel()

			start := time.Now()
			_, err := e.client.Slot(probeCtx)
			if err != nil {
				results[idx] = raceResult{ep: e, latencyMs: math.Inf(1)}
				return
			}

			results[idx] = raceResult{ep: e, latencyMs: float64(time.Since(start).Microseconds()) / 1000.0}
		}(i, e)
	}
	wg.Wait()

	best := results[0]
	for _, r := range results[1:] {
		if r.latencyMs < best.latencyMs {
			best = r
			continue
		}
		// deterministic tie-break on endpoint url
		if r.latencyMs == best.latencyMs && r.ep.url < best.ep.url {
			best = r
		}
	}

	if math.IsInf(best.latencyMs, 1) {
		return s.fallback()
	}

	s.mu.Lock()
	best.ep.latencyMs = best.latencyMs
	s.current = best.ep
	snapshot := snapshotOf(best.ep)
	client := best.ep.client
	s.mu.Unlock()

	return snapshot, client
}

// fallback returns the previously selected endpoint rather than failing
// outright when every endpoint is unhealthy.
func (s *Selector) fallback() (Endpoint, NodeClient) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur := s.current
	if cur == nil && len(s.entries) > 0 {
		cur = s.entries[0]
	}
	if cur == nil {
		return Endpoint{}, nil
	}

	logger.Logrus.WithFields(logrus.Fields{"URL": cur.url}).Warn("SelectOptimal no healthy endpoint, fall back to previous selection")

	return snapshotOf(cur), cur.client
}

// Snapshot reports the health view of the whole pool.
func (s *Selector) Snapshot() []Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Endpoint, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, snapshotOf(e))
	}
	return out
}

func (s *Selector) setHealth(url string, healthy bool, latencyMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.url == url {
			e.healthy = healthy
			e.latencyMs = latencyMs
			return
		}
	}
}

func snapshotOf(e *entry) Endpoint {
	return Endpoint{
		URL:          e.url,
		WebsocketURL: e.websocketURL,
		Healthy:      e.healthy,
		LatencyMs:    e.latencyMs,
	}
}
