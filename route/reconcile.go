package route

import (
	"context"
	"net/netip"

	"github.com/lsrouted/lsrouted/kernel"
	"github.com/lsrouted/lsrouted/netutil"
	"github.com/lsrouted/lsrouted/util/log"
)

// Reconciler brings the kernel forwarding table into agreement with a
// computed route set via minimal add/replace/delete operations.
type Reconciler struct {
	rm kernel.RouteManipulator
}

// NewReconciler returns a Reconciler that manipulates the kernel table
// through rm.
func NewReconciler(rm kernel.RouteManipulator) *Reconciler {
	return &Reconciler{rm: rm}
}

// Snapshot reads the current kernel routing table into a Table, for
// diffing against a freshly computed route set. Per §4.7 only
// non-default entries outside the link-local range are kept; a
// link-local route is never a candidate for deletion or replacement.
func (r *Reconciler) Snapshot(ctx context.Context) (*Table, error) {
	kernelRoutes, err := r.rm.Show(ctx)
	if err != nil {
		return nil, err
	}

	t := NewTable()
	for _, kr := range kernelRoutes {
		dest, err := netip.ParsePrefix(kr.Dest)
		if err != nil {
			continue
		}
		if netutil.IsLinkLocal(dest) {
			continue
		}
		via, err := netip.ParseAddr(kr.Via)
		if err != nil {
			continue
		}

		t.Set(dest, via)
	}

	return t, nil
}

// Apply computes the diff between computed and the live kernel table and
// applies it in the order §4.7 mandates: deletes, then adds, then
// replaces. A failed add/replace/delete is logged and does not abort the
// remaining operations; the next recompute will retry. The applied Diff
// is returned so callers can account for it (e.g. metrics).
func (r *Reconciler) Apply(ctx context.Context, computed *Table, connected map[netip.Prefix]struct{}) (Diff, error) {
	kernelSnapshot, err := r.Snapshot(ctx)
	if err != nil {
		return Diff{}, err
	}

	d := ComputeDiff(computed, kernelSnapshot, connected)

	for _, e := range d.Delete {
		if err := r.rm.Del(ctx, e.Dest.String()); err != nil {
			log.WithFields(log.Fields{"dest": e.Dest}).Errorf("kernel route delete failed: %v", err)
		}
	}

	for _, e := range d.Add {
		if err := r.rm.Add(ctx, e.Dest.String(), e.NextHop.String()); err != nil {
			log.WithFields(log.Fields{"dest": e.Dest, "via": e.NextHop}).Errorf("kernel route add failed: %v", err)
		}
	}

	for _, e := range d.Replace {
		if err := r.rm.Replace(ctx, e.Dest.String(), e.NextHop.String()); err != nil {
			log.WithFields(log.Fields{"dest": e.Dest, "via": e.NextHop}).Errorf("kernel route replace failed: %v", err)
		}
	}

	return d, nil
}
