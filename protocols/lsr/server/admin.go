package server

import (
	"encoding/json"
	"net/http"

	"github.com/lsrouted/lsrouted/metrics"
	"github.com/lsrouted/lsrouted/util/log"
)

// ServeAdmin starts the debug HTTP surface described in §6 on addr
// (ADMIN_ADDR, default 127.0.0.1:8080); addr is used as given, so the
// surface is loopback-only only when addr is a loopback address. It
// exposes the live LSDB and the SPF route set computed from it (not yet
// filtered to active neighbors) as JSON, plus the Prometheus collectors
// at /metrics, replacing the richer RPC admin surface a cluster-facing
// daemon would offer with something a single bound port can serve with
// no generated stubs. ServeAdmin blocks until the listener fails or the
// process exits; callers run it in its own goroutine.
func (s *Server) ServeAdmin(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/lsdb", s.handleLSDB)
	mux.HandleFunc("/routes", s.handleRoutes)
	mux.Handle("/metrics", metrics.Handler())

	log.Infof("admin API listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleLSDB(w http.ResponseWriter, r *http.Request) {
	snapshot := s.db.snapshot()
	writeJSONResponse(w, snapshot)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	snapshot := s.db.snapshot()

	routes, err := computeRoutes(snapshot, s.cfg.IP)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, routes)
}

func writeJSONResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("encoding admin response: %v", err)
	}
}
