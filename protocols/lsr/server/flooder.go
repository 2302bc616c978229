package server

import (
	"context"
	"net"

	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
	"github.com/lsrouted/lsrouted/util/log"
)

// originate runs one full origination cycle (§4.4 Origination): probe,
// enumerate subnets, bump sequence, build and store a local LSA, then
// send it to every configured neighbor (up or down) so a returning
// neighbor resynchronizes on its next successful receipt. Returns
// whether the LSDB actually changed, which is the caller's trigger to
// recompute.
func (s *Server) originate(ctx context.Context) (bool, error) {
	s.stateMu.Lock()
	probed := s.prober.probeAll(ctx, s.neighbors)
	s.neighbors = probed
	s.seq++
	seq := s.seq
	s.stateMu.Unlock()

	connected, err := s.connectedFn()
	if err != nil {
		log.Warnf("enumerating connected subnets: %v", err)
		connected = nil
	}

	subnets := make([]string, 0, len(connected))
	for pfx := range connected {
		subnets = append(subnets, pfx.String())
	}

	neighborRefs := make(map[string]packet.NeighborRef)
	for _, n := range probed {
		if !n.Active {
			continue
		}
		neighborRefs[n.Name] = packet.NeighborRef{IP: n.IP, Cost: n.Cost}
	}

	lsa := &packet.LSA{
		ID:        s.cfg.IP,
		Seq:       seq,
		Neighbors: neighborRefs,
		Subnets:   subnets,
	}

	changed := s.db.merge(lsa)
	if s.metrics != nil {
		s.metrics.LSAsOriginated.Inc()
	}

	data, err := lsa.Encode()
	if err != nil {
		return changed, err
	}

	s.sendToConfigured(data)

	return changed, nil
}

// sendToConfigured sends data to every configured neighbor, including
// those currently inactive, so a neighbor that just came back up
// resynchronizes on its next receipt.
func (s *Server) sendToConfigured(data []byte) {
	for _, n := range s.configuredNeighbors() {
		s.sendTo(data, n.IP)
	}
}

// sendTo writes data to ip:Port under the shared send lock, keeping
// origination and re-flood sends serialized on the one UDP socket.
func (s *Server) sendTo(data []byte, ip string) {
	addr := &net.UDPAddr{IP: net.ParseIP(ip), Port: Port}

	s.sendMu.Lock()
	_, err := s.conn.WriteToUDP(data, addr)
	s.sendMu.Unlock()

	if err != nil {
		log.WithFields(log.Fields{"to": ip}).Warnf("send failed: %v", err)
	}
}

// handleDatagram implements §4.4 Reception and re-flooding: decode,
// merge, and on a successful merge forward the exact received bytes to
// every active neighbor except the sender. Decode failures are logged
// and dropped; they never abort the listener.
func (s *Server) handleDatagram(data []byte, from *net.UDPAddr) (merged bool) {
	lsa, err := packet.Decode(data)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LSAsDecodeErrors.Inc()
		}
		log.WithFields(log.Fields{"from": from}).Warnf("dropping undecodable LSA: %v", err)
		return false
	}

	if s.metrics != nil {
		s.metrics.LSAsReceived.Inc()
	}

	if !s.db.merge(lsa) {
		return false
	}

	s.floodExceptSender(data, from)
	return true
}

// floodExceptSender forwards the exact received bytes to every active
// neighbor except the one matching from's IP (split-horizon by sender).
func (s *Server) floodExceptSender(data []byte, from *net.UDPAddr) {
	senderIP := ""
	if from != nil {
		senderIP = from.IP.String()
	}

	for _, n := range s.configuredNeighbors() {
		if !n.Active || n.IP == senderIP {
			continue
		}

		s.sendTo(data, n.IP)
		if s.metrics != nil {
			s.metrics.LSAsFlooded.Inc()
		}
	}
}
