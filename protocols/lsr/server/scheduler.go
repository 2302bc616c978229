package server

import (
	"context"
	"hash/fnv"
	"net"
	"net/netip"
	"sort"

	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
	"github.com/lsrouted/lsrouted/route"
	"github.com/lsrouted/lsrouted/util/log"
	btime "github.com/lsrouted/lsrouted/util/time"
)

// Start launches the two long-lived tasks (§4.8): a periodic originator
// and the UDP listener. It returns immediately; both tasks run until ctx
// is canceled.
func (s *Server) Start(ctx context.Context, originateTicker btime.Ticker) {
	go s.runOriginator(ctx, originateTicker)
	go s.runListener(ctx)
}

func (s *Server) runOriginator(ctx context.Context, t btime.Ticker) {
	defer t.Stop()

	// Send the initial LSA immediately rather than waiting a full
	// period for the first tick.
	s.runOriginationCycle(ctx)

	for {
		select {
		case <-t.C():
			s.runOriginationCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) runOriginationCycle(ctx context.Context) {
	changed, err := s.originate(ctx)
	if err != nil {
		log.Errorf("origination failed: %v", err)
		return
	}

	if changed {
		s.triggerRecompute(ctx)
	}
}

// runListener reads one datagram at a time and dispatches each to a
// short-lived goroutine, so a slow recompute never blocks the socket.
func (s *Server) runListener(ctx context.Context) {
	buf := make([]byte, 65536)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Warnf("UDP read failed: %v", err)
				continue
			}
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		go func(data []byte, from *net.UDPAddr) {
			if s.handleDatagram(data, from) {
				s.triggerRecompute(ctx)
			}
		}(data, addr)
	}
}

// triggerRecompute starts a recompute run if none is in flight, or marks
// the running one to repeat once more if one already is. Two triggers
// arriving while a run is in progress collapse into exactly one further
// run (§5).
func (s *Server) triggerRecompute(ctx context.Context) {
	s.recomputeMu.Lock()
	if s.recomputeRunning {
		s.recomputePending = true
		s.recomputeMu.Unlock()
		return
	}
	s.recomputeRunning = true
	s.recomputeMu.Unlock()

	go s.recomputeLoop(ctx)
}

func (s *Server) recomputeLoop(ctx context.Context) {
	for {
		s.recompute(ctx)

		s.recomputeMu.Lock()
		if s.recomputePending {
			s.recomputePending = false
			s.recomputeMu.Unlock()
			continue
		}
		s.recomputeRunning = false
		s.recomputeMu.Unlock()
		return
	}
}

// recompute runs SPF over a fresh LSDB snapshot, filters the result to
// routes whose first hop is a currently active neighbor (invariant 3),
// and reconciles the kernel table to match. A snapshot whose hash
// matches the last completed run is skipped entirely.
func (s *Server) recompute(ctx context.Context) {
	snapshot := s.db.snapshot()

	h := hashSnapshot(snapshot)
	if h == s.lastHash {
		if s.metrics != nil {
			s.metrics.RecomputesSkipped.Inc()
		}
		return
	}

	routes, err := computeRoutes(snapshot, s.cfg.IP)
	if err != nil {
		log.Errorf("recompute aborted: %v", err)
		return
	}

	active := s.activeNeighborIPs()
	filtered := make(map[string]string, len(routes))
	for dest, hop := range routes {
		if _, ok := active[hop]; ok {
			filtered[dest] = hop
		}
	}

	computedTable := route.NewTable()
	for dest, hop := range filtered {
		pfx, err := netip.ParsePrefix(dest)
		if err != nil {
			continue
		}
		nh, err := netip.ParseAddr(hop)
		if err != nil {
			continue
		}
		computedTable.Set(pfx, nh)
	}

	connected, err := s.connectedFn()
	if err != nil {
		log.Warnf("enumerating connected subnets for reconcile: %v", err)
		connected = map[netip.Prefix]struct{}{}
	}

	d, err := s.reconciler.Apply(ctx, computedTable, connected)
	if err != nil {
		log.Errorf("kernel reconcile failed: %v", err)
	}
	if s.metrics != nil {
		s.metrics.KernelOpsTotal.WithLabelValues("add").Add(float64(len(d.Add)))
		s.metrics.KernelOpsTotal.WithLabelValues("replace").Add(float64(len(d.Replace)))
		s.metrics.KernelOpsTotal.WithLabelValues("delete").Add(float64(len(d.Delete)))
		s.metrics.RecomputesRun.Inc()
		s.metrics.LSDBSize.Set(float64(len(snapshot)))
	}

	s.writeArtifacts(snapshot, filtered)
	s.lastHash = h
}

// hashSnapshot computes a stable FNV-1a hash of an LSDB snapshot over a
// canonical (sorted-key) encoding, used for the optional recompute
// short-circuit (§4.8).
func hashSnapshot(snapshot map[string]*packet.LSA) uint64 {
	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := fnv.New64a()
	for _, id := range ids {
		lsa := snapshot[id]
		h.Write([]byte(id))

		names := make([]string, 0, len(lsa.Neighbors))
		for name := range lsa.Neighbors {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			nb := lsa.Neighbors[name]
			h.Write([]byte(name))
			h.Write([]byte(nb.IP))
		}

		subnets := append([]string(nil), lsa.Subnets...)
		sort.Strings(subnets)
		for _, s := range subnets {
			h.Write([]byte(s))
		}

		// sequence bytes written directly, avoiding a binary.Write
		// dependency for one fixed-width field.
		h.Write([]byte{byte(lsa.Seq), byte(lsa.Seq >> 8), byte(lsa.Seq >> 16), byte(lsa.Seq >> 24)})
	}

	return h.Sum64()
}
