package rpcpool

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerMarksFailedEndpointUnhealthy(t *testing.T) {
	bad := &mockNode{healthErr: fmt.Errorf("node is behind")}
	good := &mockNode{}
	nodes := map[string]*mockNode{
		"http://bad.example":  bad,
		"http://good.example": good,
	}
	sel := newTestSelector(nodes, time.Second)
	tracker := NewTracker(sel, time.Second, time.Second)

	tracker.probeAll(context.Background())

	snap := sel.Snapshot()
	require.Len(t, snap, 2)
	assert.False(t, snap[0].Healthy)
	assert.True(t, snap[1].Healthy)
}

func TestTrackerRestoresRecoveredEndpoint(t *testing.T) {
	node := &mockNode{healthErr: fmt.Errorf("node is behind")}
	nodes := map[string]*mockNode{"http://a.example": node}
	sel := newTestSelector(nodes, time.Second)
	tracker := NewTracker(sel, time.Second, time.Second)

	tracker.probeAll(context.Background())
	require.False(t, sel.Snapshot()[0].Healthy)

	node.setHealthErr(nil)
	tracker.probeAll(context.Background())

	snap := sel.Snapshot()[0]
	assert.True(t, snap.Healthy)
	assert.False(t, snap.LatencyMs < 0)
}

func TestTrackerLatencyProbeFailureMarksUnhealthy(t *testing.T) {
	node := &mockNode{slotErr: fmt.Errorf("timeout")}
	nodes := map[string]*mockNode{"http://a.example": node}
	sel := newTestSelector(nodes, time.Second)
	tracker := NewTracker(sel, time.Second, time.Second)

	tracker.probeAll(context.Background())

	assert.False(t, sel.Snapshot()[0].Healthy)
}

func TestTrackerRunStopsOnCancel(t *testing.T) {
	nodes := map[string]*mockNode{"http://a.example": {}}
	sel := newTestSelector(nodes, time.Second)
	tracker := NewTracker(sel, 10*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tracker.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop after cancel")
	}
}
