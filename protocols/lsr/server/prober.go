package server

import (
	"context"

	"github.com/lsrouted/lsrouted/kernel"
	"github.com/lsrouted/lsrouted/protocols/lsr/types"
	"github.com/lsrouted/lsrouted/util/log"
)

// prober performs one reachability pass over a set of configured
// neighbors. It carries no state of its own beyond its Pinger
// collaborator: failure is never fatal, the neighbor simply stays
// inactive for this cycle.
type prober struct {
	pinger kernel.Pinger
}

func newProber(p kernel.Pinger) *prober {
	return &prober{pinger: p}
}

// probeAll returns a copy of neighbors with Active and, for those that
// responded, Cost updated to the measured round-trip time in whole
// milliseconds. The wire format's cost field is an integer, so RTT is
// truncated to milliseconds rather than carried as fractional seconds.
func (p *prober) probeAll(ctx context.Context, neighbors []types.Neighbor) []types.Neighbor {
	out := make([]types.Neighbor, len(neighbors))
	for i, n := range neighbors {
		rtt, err := p.pinger.Ping(ctx, n.IP)
		if err != nil {
			log.WithFields(log.Fields{"neighbor": n.Name, "ip": n.IP}).Debugf("probe failed: %v", err)
			n.Active = false
			out[i] = n
			continue
		}

		n.Active = true
		n.Cost = int(rtt.Milliseconds())
		if n.Cost < 1 {
			n.Cost = 1
		}
		out[i] = n
	}

	return out
}
