// Package server implements the routing daemon's core: neighbor
// probing, LSA origination and flooding, the LSDB, SPF, and the
// recompute/reconcile loop that drives the kernel routing table.
package server

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/lsrouted/lsrouted/artifacts"
	"github.com/lsrouted/lsrouted/kernel"
	"github.com/lsrouted/lsrouted/metrics"
	"github.com/lsrouted/lsrouted/netutil"
	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
	"github.com/lsrouted/lsrouted/protocols/lsr/types"
	"github.com/lsrouted/lsrouted/route"
	"github.com/lsrouted/lsrouted/util/log"
)

// Port is the well-known UDP port LSA traffic is exchanged on.
const Port = 5000

// Config is the daemon's resolved startup configuration (§6).
type Config struct {
	Name              string
	IP                string
	Neighbors         []types.Neighbor
	OriginateInterval time.Duration
	ArtifactDir       string
}

// Server owns every piece of router state: the neighbor table, the
// local sequence counter, the LSDB, the UDP socket, and the
// collaborators used for probing and kernel reconciliation. It is
// constructed once per process and never copied.
type Server struct {
	cfg Config

	stateMu   sync.Mutex // guards neighbors and seq (router-state lock)
	neighbors []types.Neighbor
	seq       uint32

	db *lsdb

	conn   *net.UDPConn
	sendMu sync.Mutex

	prober       *prober
	reconciler   *route.Reconciler
	connectedFn  func() (map[netip.Prefix]struct{}, error)
	metrics      *metrics.Metrics

	recomputeMu      sync.Mutex
	recomputeRunning bool
	recomputePending bool
	lastHash         uint64
}

// New constructs a Server. It does not bind the socket or start any
// goroutines; call Bind and then Start for that.
func New(cfg Config, pinger kernel.Pinger, rm kernel.RouteManipulator, m *metrics.Metrics) *Server {
	neighbors := make([]types.Neighbor, len(cfg.Neighbors))
	copy(neighbors, cfg.Neighbors)

	return &Server{
		cfg:         cfg,
		neighbors:   neighbors,
		db:          newLSDB(),
		prober:      newProber(pinger),
		reconciler:  route.NewReconciler(rm),
		connectedFn: netutil.ConnectedSubnets,
		metrics:     m,
	}
}

// Bind opens the shared UDP socket on 0.0.0.0:Port. Failure here is a
// fatal BindError per §7.
func (s *Server) Bind() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: Port})
	if err != nil {
		return errors.Wrap(err, "binding LSA socket")
	}

	s.conn = conn
	log.WithFields(log.Fields{"name": s.cfg.Name, "ip": s.cfg.IP}).Infof("listening on UDP/%d", Port)
	return nil
}

// Close releases the UDP socket.
func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// activeNeighborIPs returns the set of IPs whose most recent probe
// succeeded, used to validate SPF output against invariant 3.
func (s *Server) activeNeighborIPs() map[string]struct{} {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	out := make(map[string]struct{}, len(s.neighbors))
	for _, n := range s.neighbors {
		if n.Active {
			out[n.IP] = struct{}{}
		}
	}

	return out
}

// configuredNeighbors returns a copy of the full neighbor table,
// including those currently down.
func (s *Server) configuredNeighbors() []types.Neighbor {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	out := make([]types.Neighbor, len(s.neighbors))
	copy(out, s.neighbors)
	return out
}

// writeArtifacts persists the advisory debug files described in §6.
func (s *Server) writeArtifacts(lsdbSnapshot map[string]*packet.LSA, routes map[string]string) {
	if s.cfg.ArtifactDir == "" {
		return
	}

	if err := artifacts.WriteLSDB(s.cfg.ArtifactDir, lsdbSnapshot); err != nil {
		log.Warnf("writing lsdb debug artifact: %v", err)
	}
	if err := artifacts.WriteRoutes(s.cfg.ArtifactDir, routes); err != nil {
		log.Warnf("writing routes debug artifact: %v", err)
	}
}
