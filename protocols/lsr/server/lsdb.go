package server

import (
	"sync"

	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
	"github.com/lsrouted/lsrouted/util/log"
)

// lsdb holds the newest LSA per originator. The merge rule below is its
// only mutation path; everything else is a read.
type lsdb struct {
	mu   sync.RWMutex
	lsas map[string]*packet.LSA
}

func newLSDB() *lsdb {
	return &lsdb{
		lsas: make(map[string]*packet.LSA),
	}
}

// merge inserts the LSA if its originator is unseen, or replaces the
// stored entry iff the incoming sequence is strictly greater. Equal or
// lower sequence is discarded silently. The return value is the sole
// trigger for re-flooding and recompute.
func (l *lsdb) merge(in *packet.LSA) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.lsas[in.ID]
	if !ok {
		l.lsas[in.ID] = in.Clone()
		log.WithFields(log.Fields{"originator": in.ID, "seq": in.Seq}).Debug("LSA inserted")
		return true
	}

	if in.Seq <= existing.Seq {
		return false
	}

	l.lsas[in.ID] = in.Clone()
	log.WithFields(log.Fields{"originator": in.ID, "seq": in.Seq}).Debug("LSA updated")
	return true
}

// get returns the stored LSA for an originator, if any.
func (l *lsdb) get(originator string) (*packet.LSA, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lsa, ok := l.lsas[originator]
	if !ok {
		return nil, false
	}

	return lsa.Clone(), true
}

// snapshot returns a defensive copy of the whole LSDB. Callers must never
// hold the LSDB lock across I/O, so every consumer (SPF, the admin API,
// the debug-artifact writer) works from a snapshot instead of the live
// map.
func (l *lsdb) snapshot() map[string]*packet.LSA {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]*packet.LSA, len(l.lsas))
	for id, lsa := range l.lsas {
		out[id] = lsa.Clone()
	}

	return out
}
