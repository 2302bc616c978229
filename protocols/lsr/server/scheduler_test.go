package server

import (
	"context"
	"net/netip"
	"testing"

	"github.com/lsrouted/lsrouted/kernel"
	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
	"github.com/lsrouted/lsrouted/protocols/lsr/types"
	"github.com/stretchr/testify/assert"
)

// recordingRM counts how many times each verb was invoked, so tests can
// assert on the number of kernel operations a recompute produced without
// caring about goroutine interleaving.
type recordingRM struct {
	adds, replaces, dels int
}

func (r *recordingRM) Show(ctx context.Context) ([]kernel.KernelRoute, error) { return nil, nil }
func (r *recordingRM) Add(ctx context.Context, dest, via string) error {
	r.adds++
	return nil
}
func (r *recordingRM) Replace(ctx context.Context, dest, via string) error {
	r.replaces++
	return nil
}
func (r *recordingRM) Del(ctx context.Context, dest string) error {
	r.dels++
	return nil
}

func newSchedulerTestServer(rm kernel.RouteManipulator) *Server {
	s := New(Config{
		Name: "r1",
		IP:   "172.20.1.3",
		Neighbors: []types.Neighbor{
			{Name: "r2", IP: "172.20.2.3", Cost: 1, Configured: true, Active: true},
		},
	}, alwaysUpPinger{}, rm, nil)

	s.connectedFn = func() (map[netip.Prefix]struct{}, error) {
		return map[netip.Prefix]struct{}{
			netip.MustParsePrefix("172.20.1.0/24"): {},
		}, nil
	}

	return s
}

// TestRecomputeSkipsWhenSnapshotHashUnchanged covers the short-circuit
// described in §4.8: a second recompute over an identical LSDB snapshot
// must not touch the kernel at all.
func TestRecomputeSkipsWhenSnapshotHashUnchanged(t *testing.T) {
	rm := &recordingRM{}
	s := newSchedulerTestServer(rm)

	_, err := s.originate(context.Background())
	assert.NoError(t, err)

	s.recompute(context.Background())
	firstOps := rm.adds + rm.replaces + rm.dels

	s.recompute(context.Background())
	secondOps := rm.adds + rm.replaces + rm.dels

	assert.Equal(t, firstOps, secondOps, "identical snapshot must not re-touch the kernel")
}

// TestRecomputeRunsAgainAfterLSDBChanges ensures the hash short-circuit
// does not also suppress legitimate re-runs once the LSDB actually
// changes (a higher-sequence LSA arriving from r2).
func TestRecomputeRunsAgainAfterLSDBChanges(t *testing.T) {
	rm := &recordingRM{}
	s := newSchedulerTestServer(rm)

	_, err := s.originate(context.Background())
	assert.NoError(t, err)
	s.recompute(context.Background())

	lsa := &packet.LSA{
		ID:        "172.20.2.3",
		Seq:       1,
		Neighbors: map[string]packet.NeighborRef{"r1": {IP: "172.20.1.3", Cost: 1}},
		Subnets:   []string{"172.20.2.0/24"},
	}
	changed := s.db.merge(lsa)
	assert.True(t, changed)

	before := rm.adds + rm.replaces
	s.recompute(context.Background())
	after := rm.adds + rm.replaces
	assert.Greater(t, after, before, "new LSDB content must trigger a fresh reconcile")
}

// TestTriggerRecomputeCollapsesConcurrentSignals covers §5: multiple
// triggers arriving while a recompute is running collapse into exactly
// one further run rather than one per trigger.
func TestTriggerRecomputeCollapsesConcurrentSignals(t *testing.T) {
	rm := &recordingRM{}
	s := newSchedulerTestServer(rm)

	_, err := s.originate(context.Background())
	assert.NoError(t, err)

	s.recomputeMu.Lock()
	s.recomputeRunning = true
	s.recomputeMu.Unlock()

	for i := 0; i < 5; i++ {
		s.triggerRecompute(context.Background())
	}

	s.recomputeMu.Lock()
	pending := s.recomputePending
	s.recomputeMu.Unlock()
	assert.True(t, pending, "concurrent triggers must collapse into a single pending re-run")

	s.recomputeMu.Lock()
	s.recomputeRunning = false
	s.recomputePending = false
	s.recomputeMu.Unlock()
}

// TestRecomputeIsOrderIndependent covers scenario S6: merging the same
// set of LSAs in a different order must still converge to the same
// kernel operation counts.
func TestRecomputeIsOrderIndependent(t *testing.T) {
	build := func(order []*packet.LSA) *recordingRM {
		rm := &recordingRM{}
		s := newSchedulerTestServer(rm)

		for _, lsa := range order {
			s.db.merge(lsa)
		}
		s.recompute(context.Background())
		return rm
	}

	r2 := &packet.LSA{ID: "172.20.2.3", Seq: 1, Neighbors: map[string]packet.NeighborRef{"r1": {IP: "172.20.1.3", Cost: 1}}, Subnets: []string{"172.20.2.0/24"}}
	r3 := &packet.LSA{ID: "172.20.3.3", Seq: 1, Neighbors: map[string]packet.NeighborRef{"r2": {IP: "172.20.2.3", Cost: 1}}, Subnets: []string{"172.20.3.0/24"}}

	forward := build([]*packet.LSA{r2, r3})
	reversed := build([]*packet.LSA{r3, r2})

	assert.Equal(t, forward.adds+forward.replaces, reversed.adds+reversed.replaces)
}
