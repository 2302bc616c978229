// Package route holds the computed and kernel-observed route sets and
// the diff between them that the reconciler applies.
package route

import (
	"net/netip"

	"github.com/gaissmai/bart"
)

// Entry is one (destination, next hop) pair.
type Entry struct {
	Dest    netip.Prefix
	NextHop netip.Addr
}

// Table is a CIDR-keyed set of next hops. It is backed by the pack's own
// BART longest-prefix-match library, used here purely as a fast
// CIDR→next-hop store so the computed-route set and the kernel snapshot
// share one storage type and one diff walk.
type Table struct {
	t bart.Table[netip.Addr]
	n int
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{}
}

// Set installs or overwrites the next hop for dest.
func (t *Table) Set(dest netip.Prefix, nextHop netip.Addr) {
	if _, existed := t.t.Get(dest); !existed {
		t.n++
	}
	t.t.Insert(dest, nextHop)
}

// Get returns the next hop for dest, if present.
func (t *Table) Get(dest netip.Prefix) (netip.Addr, bool) {
	return t.t.Get(dest)
}

// Delete removes dest.
func (t *Table) Delete(dest netip.Prefix) {
	if _, existed := t.t.Get(dest); existed {
		t.n--
	}
	t.t.Delete(dest)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return t.n
}

// Entries returns every (dest, next hop) pair. Order is not significant;
// callers that need determinism sort the result themselves.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, t.n)
	for pfx, nh := range t.t.All() {
		entries = append(entries, Entry{Dest: pfx, NextHop: nh})
	}

	return entries
}

// Diff is the reconciler's minimum edit set: destinations to delete
// (present in the kernel snapshot, absent from the computed set),
// destinations to add (in the computed set, absent from the kernel
// snapshot), and destinations to replace (present in both with a
// different next hop). No-ops (same next hop in both) are simply omitted.
type Diff struct {
	Add     []Entry
	Replace []Entry
	Delete  []Entry
}

// ComputeDiff classifies every destination in 'computed' (the desired
// state) against 'kernel' (the observed state), plus every kernel entry
// with no counterpart in computed. connected is consulted so directly
// attached subnets are never deleted or added by the reconciler — they
// are the kernel's own business, per §4.7.
func ComputeDiff(computed, kernelSnapshot *Table, connected map[netip.Prefix]struct{}) Diff {
	var d Diff

	for _, entry := range computed.Entries() {
		if _, isConnected := connected[entry.Dest]; isConnected {
			continue
		}

		existingNextHop, ok := kernelSnapshot.Get(entry.Dest)
		switch {
		case !ok:
			d.Add = append(d.Add, entry)
		case existingNextHop != entry.NextHop:
			d.Replace = append(d.Replace, entry)
		}
	}

	for _, entry := range kernelSnapshot.Entries() {
		if _, isConnected := connected[entry.Dest]; isConnected {
			continue
		}

		if _, ok := computed.Get(entry.Dest); !ok {
			d.Delete = append(d.Delete, entry)
		}
	}

	return d
}
