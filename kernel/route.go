package kernel

import (
	"bufio"
	"context"
	"fmt"
	"net/netip"
	"os/exec"
	"strings"

	"github.com/lsrouted/lsrouted/netutil"
)

// KernelRoute is one non-default route line as reported by `ip route show`.
type KernelRoute struct {
	Dest string // CIDR
	Via  string // next-hop IP
}

// absentErrorSubstrings are the ip-route error fragments that mean "the
// rule is already gone" rather than a real failure, per §4.7/§7: a
// delete of an already-absent route is folded into success.
var absentErrorSubstrings = []string{
	"No such process",
	"Network is unreachable",
	"Cannot find device",
}

// RouteManipulator is the injectable collaborator wrapping the host's
// route table manipulation tool.
type RouteManipulator interface {
	// Show enumerates the kernel's current routing table.
	Show(ctx context.Context) ([]KernelRoute, error)
	// Add installs a new route. The destination must not already exist.
	Add(ctx context.Context, dest, via string) error
	// Replace installs or overwrites a route for dest.
	Replace(ctx context.Context, dest, via string) error
	// Del removes the route for dest. Deleting an absent route is not
	// an error.
	Del(ctx context.Context, dest string) error
}

// ExecRouteManipulator shells out to the host `ip route` command.
type ExecRouteManipulator struct{}

// Show runs `ip route show` and parses each non-default line as
// "<cidr> via <ip> ...". Per §4.7 only non-default, non-link-local
// entries are returned; the kernel's own link-local routes are never
// candidates for reconciler deletion.
func (ExecRouteManipulator) Show(ctx context.Context) ([]KernelRoute, error) {
	cmd := exec.CommandContext(ctx, "ip", "route", "show")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ip route show: %w", err)
	}

	var routes []KernelRoute
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] == "default" {
			continue
		}

		route := KernelRoute{Dest: fields[0]}
		for i := 1; i < len(fields)-1; i++ {
			if fields[i] == "via" {
				route.Via = fields[i+1]
				break
			}
		}
		if route.Via == "" {
			continue
		}

		if pfx, err := netip.ParsePrefix(route.Dest); err == nil && netutil.IsLinkLocal(pfx) {
			continue
		}

		routes = append(routes, route)
	}

	return routes, nil
}

// Add runs `ip route add <dest> via <via>`.
func (ExecRouteManipulator) Add(ctx context.Context, dest, via string) error {
	return run(ctx, "add", dest, "via", via)
}

// Replace runs `ip route replace <dest> via <via>`.
func (ExecRouteManipulator) Replace(ctx context.Context, dest, via string) error {
	return run(ctx, "replace", dest, "via", via)
}

// Del runs `ip route del <dest>`, folding "already absent" failures
// into success.
func (ExecRouteManipulator) Del(ctx context.Context, dest string) error {
	err := run(ctx, "del", dest)
	if err == nil {
		return nil
	}

	msg := err.Error()
	for _, substr := range absentErrorSubstrings {
		if strings.Contains(msg, substr) {
			return nil
		}
	}

	return err
}

func run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ip", append([]string{"route"}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ip route %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}

	return nil
}
