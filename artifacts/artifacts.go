// Package artifacts writes the two advisory debug files the daemon
// leaves in its log directory: the current LSDB and the current route
// set. Neither is read back by the daemon; they exist purely for
// operator inspection, per §6.
package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
)

const (
	lsdbFile  = "lsdb_latest.json"
	routeFile = "rotas_latest.json"
)

// WriteLSDB writes the originator→LSA mapping as JSON to dir/lsdb_latest.json.
func WriteLSDB(dir string, lsdb map[string]*packet.LSA) error {
	return writeJSON(filepath.Join(dir, lsdbFile), lsdb)
}

// WriteRoutes writes the destination→next-hop mapping as JSON to
// dir/rotas_latest.json.
func WriteRoutes(dir string, routes map[string]string) error {
	return writeJSON(filepath.Join(dir, routeFile), routes)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
