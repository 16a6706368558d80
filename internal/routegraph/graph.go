// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package routegraph holds the algorithm-side-effect-free route-computation
// primitives: Dijkstra (tree/ECMP/partial), incremental SPF, Loop-Free
// Alternates, Bellman-Ford, Yen k-shortest-paths, CSPF, weighted-sum and
// Pareto multimetric search, and neighbor-rooted forest construction. Every
// function here consumes a graph snapshot and returns a result; none of them
// hold state between calls, so the per-protocol engines that call them stay
// thin.
package routegraph

import "math"

// RouterID identifies a router node.
type RouterID uint32

// Cost is a link or path metric. Finite and non-negative unless noted.
type Cost = float64

// Epsilon is the tolerance used for all metric-equality comparisons during
// SPF relaxation, Yen dedup, and Pareto domination checks.
const Epsilon = 1e-9

// Graph is an adjacency map: Graph[u][v] is the cost of the edge u->v.
type Graph map[RouterID]map[RouterID]Cost

// Nodes returns the set of all node IDs mentioned anywhere in g, either as a
// source or as a neighbor.
func (g Graph) Nodes() map[RouterID]struct{} {
	nodes := make(map[RouterID]struct{}, len(g))
	for u, nbrs := range g {
		nodes[u] = struct{}{}
		for v := range nbrs {
			nodes[v] = struct{}{}
		}
	}
	return nodes
}

// usable reports whether a cost value may be used by the non-negative
// algorithms (everything except Bellman-Ford, which allows finite negative
// edges).
func usable(c Cost) bool {
	return !math.IsNaN(c) && !math.IsInf(c, 0) && c >= 0
}

func almostEqual(a, b Cost) bool {
	return math.Abs(a-b) <= Epsilon
}

// cloneRouterSet makes a copy of a router set, used whenever a result must not alias
// caller-visible mutable state.
func cloneRouterSet(in map[RouterID]struct{}) map[RouterID]struct{} {
	out := make(map[RouterID]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
