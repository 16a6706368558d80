// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ribstate

import (
	"math"
	"sort"

	"grimm.is/flywall/internal/routegraph"
)

// Route is one protocol-originated candidate route.
type Route struct {
	Destination routegraph.RouterID
	NextHop     routegraph.RouterID
	Metric      routegraph.Cost
	Protocol    string
}

// ForwardingEntry is the FIB's selected-per-destination view; same shape
// as Route but named distinctly since only one exists per destination.
type ForwardingEntry struct {
	Destination routegraph.RouterID
	NextHop     routegraph.RouterID
	Metric      routegraph.Cost
	Protocol    string
}

// firstWinsProtocols retain the earliest-inserted entry per destination
// in the FIB instead of the lowest-metric one.
var firstWinsProtocols = map[string]struct{}{
	"ddr":     {},
	"dgr":     {},
	"octopus": {},
}

func routeKey(r Route) [4]uint64 {
	return [4]uint64{uint64(r.Destination), uint64(r.NextHop), math.Float64bits(r.Metric), stringHash(r.Protocol)}
}

func stringHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// RouteTable holds every protocol's routes, keyed by
// (protocol, destination, next_hop, metric-bits).
type RouteTable struct {
	routes map[[4]uint64]Route
}

// NewRouteTable returns an empty table.
func NewRouteTable() *RouteTable {
	return &RouteTable{routes: map[[4]uint64]Route{}}
}

// ReplaceProtocolRoutes atomically drops every route tagged protocol and
// installs routes in their place, deduplicating by bitwise-equal metric.
// Returns true iff the table's contents changed.
func (t *RouteTable) ReplaceProtocolRoutes(protocol string, routes []Route) bool {
	before := map[[4]uint64]Route{}
	for k, r := range t.routes {
		if r.Protocol == protocol {
			before[k] = r
		}
		if r.Protocol != protocol {
			continue
		}
		delete(t.routes, k)
	}

	after := map[[4]uint64]Route{}
	for _, r := range routes {
		r.Protocol = protocol
		after[routeKey(r)] = r
	}
	for k, r := range after {
		t.routes[k] = r
	}

	if len(before) != len(after) {
		return true
	}
	for k := range after {
		if _, ok := before[k]; !ok {
			return true
		}
	}
	return false
}

// All returns every route across every protocol, sorted for determinism.
func (t *RouteTable) All() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, r)
	}
	sortRoutes(out)
	return out
}

// ForDestination returns every route to dst across all protocols.
func (t *RouteTable) ForDestination(dst routegraph.RouterID) []Route {
	var out []Route
	for _, r := range t.routes {
		if r.Destination == dst {
			out = append(out, r)
		}
	}
	sortRoutes(out)
	return out
}

func sortRoutes(rs []Route) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.Destination != b.Destination {
			return a.Destination < b.Destination
		}
		if a.NextHop != b.NextHop {
			return a.NextHop < b.NextHop
		}
		if a.Metric != b.Metric {
			return a.Metric < b.Metric
		}
		return a.Protocol < b.Protocol
	})
}
