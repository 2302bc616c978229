package server

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/lsrouted/lsrouted/kernel"
	"github.com/lsrouted/lsrouted/metrics"
	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
	"github.com/lsrouted/lsrouted/protocols/lsr/types"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

// floodedCount reads the re-flood counter, i.e. how many per-neighbor
// forwards handleDatagram has issued so far.
func floodedCount(t *testing.T, s *Server) float64 {
	t.Helper()
	var m dto.Metric
	assert.NoError(t, s.metrics.LSAsFlooded.Write(&m))
	return m.GetCounter().GetValue()
}

type alwaysUpPinger struct{}

func (alwaysUpPinger) Ping(ctx context.Context, ip string) (time.Duration, error) {
	return time.Millisecond, nil
}

type noopRM struct{}

func (noopRM) Show(ctx context.Context) ([]kernel.KernelRoute, error) { return nil, nil }
func (noopRM) Add(ctx context.Context, dest, via string) error        { return nil }
func (noopRM) Replace(ctx context.Context, dest, via string) error    { return nil }
func (noopRM) Del(ctx context.Context, dest string) error             { return nil }

func newTestServer(neighbors []types.Neighbor) *Server {
	s := New(Config{
		Name:      "r1",
		IP:        "172.20.1.3",
		Neighbors: neighbors,
	}, alwaysUpPinger{}, noopRM{}, nil)

	s.connectedFn = func() (map[netip.Prefix]struct{}, error) {
		return map[netip.Prefix]struct{}{
			netip.MustParsePrefix("172.20.1.0/24"): {},
		}, nil
	}

	return s
}

func TestOriginateBumpsSequenceAndMergesLocally(t *testing.T) {
	s := newTestServer(nil)

	changed, err := s.originate(context.Background())
	assert.NoError(t, err)
	assert.True(t, changed)

	stored, ok := s.db.get("172.20.1.3")
	assert.True(t, ok)
	assert.Equal(t, uint32(1), stored.Seq)

	changed, err = s.originate(context.Background())
	assert.NoError(t, err)
	assert.True(t, changed) // sequence always strictly increases

	stored, _ = s.db.get("172.20.1.3")
	assert.Equal(t, uint32(2), stored.Seq)
}

// TestHandleDatagramDropsOnFailedMerge covers invariant 2: a datagram
// whose merge returns false causes no forwarding.
func TestHandleDatagramDropsOnFailedMerge(t *testing.T) {
	s := newTestServer([]types.Neighbor{
		{Name: "r2", IP: "127.0.0.1", Cost: 1, Configured: true, Active: true},
	})
	s.metrics = metrics.New(prometheus.NewRegistry())
	// Bind so sendTo has a live socket if it were (wrongly) called.
	err := s.Bind()
	assert.NoError(t, err)
	defer s.Close()

	lsa := &packet.LSA{ID: "172.20.3.3", Seq: 5, Neighbors: map[string]packet.NeighborRef{}, Subnets: []string{}}
	data, _ := lsa.Encode()

	merged := s.handleDatagram(data, &net.UDPAddr{IP: net.ParseIP("172.20.3.3")})
	assert.True(t, merged)
	assert.Equal(t, float64(1), floodedCount(t, s))

	// Same sequence again: merge returns false, no further forward.
	merged = s.handleDatagram(data, &net.UDPAddr{IP: net.ParseIP("172.20.3.3")})
	assert.False(t, merged)
	assert.Equal(t, float64(1), floodedCount(t, s))
}

func TestHandleDatagramDropsUndecodableInput(t *testing.T) {
	s := newTestServer(nil)
	merged := s.handleDatagram([]byte(`not json`), &net.UDPAddr{IP: net.ParseIP("10.0.0.9")})
	assert.False(t, merged)
}

// TestHandleDatagramSplitHorizonExcludesSender covers the split-horizon
// rule: the sender of a re-flooded LSA never receives it back.
func TestHandleDatagramSplitHorizonExcludesSender(t *testing.T) {
	s := newTestServer([]types.Neighbor{
		{Name: "sender", IP: "172.20.9.9", Cost: 1, Configured: true, Active: true},
		{Name: "other", IP: "172.20.9.10", Cost: 1, Configured: true, Active: true},
	})
	s.metrics = metrics.New(prometheus.NewRegistry())
	err := s.Bind()
	assert.NoError(t, err)
	defer s.Close()

	lsa := &packet.LSA{ID: "172.20.3.3", Seq: 1, Neighbors: map[string]packet.NeighborRef{}, Subnets: []string{}}
	data, _ := lsa.Encode()

	// Should not panic or block even though 172.20.9.10 isn't reachable;
	// sendTo logs and swallows send errors.
	merged := s.handleDatagram(data, &net.UDPAddr{IP: net.ParseIP("172.20.9.9")})
	assert.True(t, merged)

	// Two active neighbors, one of them the sender: exactly one forward.
	assert.Equal(t, float64(1), floodedCount(t, s))
}
