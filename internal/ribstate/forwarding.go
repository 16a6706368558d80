// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ribstate

import (
	"sort"

	"grimm.is/flywall/internal/routegraph"
)

// ForwardingTable is the selected-per-destination view derived from a
// RouteTable snapshot.
type ForwardingTable struct {
	entries map[routegraph.RouterID]ForwardingEntry
}

// NewForwardingTable returns an empty table.
func NewForwardingTable() *ForwardingTable {
	return &ForwardingTable{entries: map[routegraph.RouterID]ForwardingEntry{}}
}

// SyncFromRoutes recomputes the destination->entry mapping from routes:
// for first-wins protocols (ddr, dgr, octopus) the earliest entry per
// destination (in the order given) wins; otherwise the lowest metric,
// then lowest next_hop, then lexicographically smallest protocol name.
// Returns true iff the resulting table differs from the previous one.
func (f *ForwardingTable) SyncFromRoutes(routes []Route) bool {
	next := map[routegraph.RouterID]ForwardingEntry{}
	firstWinsSeen := map[routegraph.RouterID]bool{}

	for _, r := range routes {
		_, isFirstWins := firstWinsProtocols[r.Protocol]
		cand := ForwardingEntry{Destination: r.Destination, NextHop: r.NextHop, Metric: r.Metric, Protocol: r.Protocol}

		if isFirstWins {
			if firstWinsSeen[r.Destination] {
				continue
			}
			next[r.Destination] = cand
			firstWinsSeen[r.Destination] = true
			continue
		}
		if firstWinsSeen[r.Destination] {
			// A first-wins protocol already claimed this destination in an
			// earlier pass; first-wins entries are never displaced.
			continue
		}

		cur, ok := next[r.Destination]
		if !ok || better(cand, cur) {
			next[r.Destination] = cand
		}
	}

	changed := !equalTables(f.entries, next)
	f.entries = next
	return changed
}

func better(a, b ForwardingEntry) bool {
	if a.Metric != b.Metric {
		return a.Metric < b.Metric
	}
	if a.NextHop != b.NextHop {
		return a.NextHop < b.NextHop
	}
	return a.Protocol < b.Protocol
}

func equalTables(a, b map[routegraph.RouterID]ForwardingEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Get returns the selected entry for dst, if any.
func (f *ForwardingTable) Get(dst routegraph.RouterID) (ForwardingEntry, bool) {
	e, ok := f.entries[dst]
	return e, ok
}

// All returns every entry sorted by destination.
func (f *ForwardingTable) All() []ForwardingEntry {
	out := make([]ForwardingEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Destination < out[j].Destination })
	return out
}
