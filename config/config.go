// Package config resolves the daemon's startup configuration from
// environment variables (§6).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lsrouted/lsrouted/protocols/lsr/types"
	"github.com/lsrouted/lsrouted/util/log"
)

// defaultRouterLinkCost is the neighbor weight `router_links` assigns
// when a deployment resolves neighbors by symbolic name rather than by
// an inline [name,ip,cost] entry, which carries no cost of its own.
const defaultRouterLinkCost = 1

// Defaults for the optional knobs.
const (
	DefaultOriginateInterval = 10 * time.Second
	DefaultAdminAddr         = "127.0.0.1:8080"
)

// Error is a fatal configuration problem, raised before the daemon ever
// binds a socket (§7's ConfigError kind).
type Error struct {
	Var string
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Var, e.Msg)
}

// Config is the fully resolved set of values the daemon needs to start.
type Config struct {
	Name              string
	IP                string
	Neighbors         []types.Neighbor
	OriginateInterval time.Duration
	ArtifactDir       string
	AdminAddr         string
}

// Load reads and validates the process environment. my_name and my_ip
// are mandatory; everything else has a sane default.
func Load() (Config, error) {
	name := os.Getenv("my_name")
	if name == "" {
		return Config{}, &Error{Var: "my_name", Msg: "must be set"}
	}

	ip := os.Getenv("my_ip")
	if ip == "" {
		return Config{}, &Error{Var: "my_ip", Msg: "must be set"}
	}

	neighbors, err := parseNeighbors(os.Getenv("vizinhos"))
	if err != nil {
		return Config{}, err
	}

	neighbors = applyRouterLinks(neighbors, os.Getenv("router_links"))

	cfg := Config{
		Name:              name,
		IP:                ip,
		Neighbors:         neighbors,
		OriginateInterval: DefaultOriginateInterval,
		ArtifactDir:       os.Getenv("ARTIFACT_DIR"),
		AdminAddr:         DefaultAdminAddr,
	}

	if v := os.Getenv("ORIGINATE_INTERVAL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, &Error{Var: "ORIGINATE_INTERVAL_SECONDS", Msg: "must be a positive integer"}
		}
		cfg.OriginateInterval = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("ADMIN_ADDR"); v != "" {
		cfg.AdminAddr = v
	}

	return cfg, nil
}

// parseNeighbors parses the "vizinhos" variable's bracketed list format:
// "[name,ip,cost],[name,ip,cost],...". An empty string is a router with
// no configured neighbors, which is valid (an isolated node still
// originates an LSA advertising only its own subnets).
func parseNeighbors(raw string) ([]types.Neighbor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var out []types.Neighbor
	for _, entry := range splitEntries(raw) {
		n, err := parseNeighborEntry(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}

	return out, nil
}

// splitEntries splits "[a,b,c],[d,e,f]" into its bracketed entries
// without a regexp dependency: the format never nests brackets.
func splitEntries(raw string) []string {
	var entries []string
	var cur strings.Builder
	depth := 0

	for _, r := range raw {
		switch r {
		case '[':
			depth++
			continue
		case ']':
			depth--
			if depth == 0 {
				entries = append(entries, cur.String())
				cur.Reset()
			}
			continue
		case ',':
			if depth == 0 {
				continue
			}
		}
		cur.WriteRune(r)
	}

	return entries
}

// applyRouterLinks implements the discovery-by-symbolic-name mechanism
// original_source/router/router.py uses as its sole neighbor source:
// "router_links" is a comma-separated list of neighbor names, and each
// name's IP comes from a separate "<name>_ip" variable rather than
// being inline. A name with no matching "<name>_ip" is logged and
// skipped, exactly as the original does, rather than failing startup.
//
// Names already present via "vizinhos" have their IP overridden by the
// router_links resolution (the override behavior spec.md §6
// describes); names not already present are appended as new neighbors
// at defaultRouterLinkCost, so router_links also works as the sole
// neighbor source when "vizinhos" is unset.
func applyRouterLinks(neighbors []types.Neighbor, raw string) []types.Neighbor {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return neighbors
	}

	byName := make(map[int]string, len(neighbors))
	for i, n := range neighbors {
		byName[i] = n.Name
	}

	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		ip := os.Getenv(name + "_ip")
		if ip == "" {
			log.Warnf("router_links: no %s_ip set for neighbor %q, skipping", name, name)
			continue
		}

		overridden := false
		for i, existingName := range byName {
			if existingName == name {
				neighbors[i].IP = ip
				neighbors[i].Configured = true
				overridden = true
				break
			}
		}

		if !overridden {
			neighbors = append(neighbors, types.Neighbor{
				Name:       name,
				IP:         ip,
				Cost:       defaultRouterLinkCost,
				Configured: true,
			})
		}
	}

	return neighbors
}

func parseNeighborEntry(entry string) (types.Neighbor, error) {
	fields := strings.Split(entry, ",")
	if len(fields) != 3 {
		return types.Neighbor{}, &Error{Var: "vizinhos", Msg: fmt.Sprintf("malformed neighbor entry %q", entry)}
	}

	name := strings.TrimSpace(fields[0])
	ip := strings.TrimSpace(fields[1])
	cost, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil || name == "" || ip == "" {
		return types.Neighbor{}, &Error{Var: "vizinhos", Msg: fmt.Sprintf("malformed neighbor entry %q", entry)}
	}

	return types.Neighbor{
		Name:       name,
		IP:         ip,
		Cost:       cost,
		Configured: true,
	}, nil
}
