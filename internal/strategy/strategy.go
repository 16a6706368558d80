// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package strategy is the uniform routing-strategy facade: it dispatches
// on a scalar or multimetric algorithm selector and a next-hop selection
// policy, producing StrategyRouteEntry values the per-protocol engines
// (or callers wanting a second opinion) can use directly.
package strategy

import (
	"sort"

	"grimm.is/flywall/internal/routegraph"
)

// Algorithm selects the scalar shortest-path computation.
type Algorithm int

const (
	AlgoDijkstra Algorithm = iota
	AlgoECMP
	AlgoBellmanFord
	AlgoYenKShortest
)

// MultiMetricAlgorithm selects the multimetric computation.
type MultiMetricAlgorithm int

const (
	AlgoCSPF MultiMetricAlgorithm = iota
	AlgoWeightedSum
	AlgoPareto
)

// SelectionKind picks how a single next hop is chosen out of candidates.
type SelectionKind int

const (
	SelectLowest SelectionKind = iota
	SelectHash
)

// Selection configures next-hop selection.
type Selection struct {
	Kind SelectionKind
	Seed uint64 // used when Kind == SelectHash
}

// Config parameterizes a scalar strategy computation.
type Config struct {
	Algorithm  Algorithm
	YenK       int // used when Algorithm == AlgoYenKShortest
	Selection  Selection
}

// MultiMetricConfig parameterizes a multimetric strategy computation.
type MultiMetricConfig struct {
	Algorithm   MultiMetricAlgorithm
	Constraints routegraph.Constraints   // used when Algorithm == AlgoCSPF
	Coeffs      routegraph.WeightedSumCoefficients // used when Algorithm == AlgoWeightedSum
	MaxParetoPaths int                  // used when Algorithm == AlgoPareto
}

// StrategyRouteEntry is one computed destination's candidate next hops
// and the policy-selected winner among them.
type StrategyRouteEntry struct {
	Destination     routegraph.RouterID
	Metric          routegraph.Cost
	NextHops        []routegraph.RouterID // sorted ascending
	SelectedNextHop routegraph.RouterID
}

// hashMix is the specification's fixed mixing function for ECMP and
// hash-based next-hop selection. It must not be substituted with a
// stdlib general-purpose hash: identical inputs must produce identical
// outputs across independent implementations.
func hashMix(src, dst routegraph.RouterID, seed uint64) uint64 {
	x := uint64(src)*0x9E3779B97F4A7C15 + uint64(dst)*0xC2B2AE3D27D4EB4F + seed
	x ^= x >> 33
	x *= 0xFF51AFD7ED558CCD
	x ^= x >> 33
	x *= 0xC4CEB9FE1A85EC53
	x ^= x >> 33
	return x
}

func selectNextHop(src, dst routegraph.RouterID, hops []routegraph.RouterID, sel Selection) routegraph.RouterID {
	sorted := append([]routegraph.RouterID{}, hops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if len(sorted) == 0 {
		return 0
	}
	switch sel.Kind {
	case SelectHash:
		idx := hashMix(src, dst, sel.Seed) % uint64(len(sorted))
		return sorted[idx]
	default:
		return sorted[0]
	}
}

// ComputeScalarRouteEntries dispatches on cfg.Algorithm and produces one
// entry per reachable destination (excluding src itself).
func ComputeScalarRouteEntries(g routegraph.Graph, src routegraph.RouterID, cfg Config) []StrategyRouteEntry {
	var out []StrategyRouteEntry

	switch cfg.Algorithm {
	case AlgoECMP:
		tree := routegraph.ComputeSPFECMP(g, src)
		for dst, dist := range tree.Dist {
			if dst == src {
				continue
			}
			hops := setToSlice(tree.FirstHops[dst])
			out = append(out, StrategyRouteEntry{
				Destination:     dst,
				Metric:          dist,
				NextHops:        hops,
				SelectedNextHop: selectNextHop(src, dst, hops, cfg.Selection),
			})
		}
	case AlgoBellmanFord:
		res := routegraph.ComputeBellmanFord(g, src)
		for dst, dist := range res.Dist {
			if dst == src {
				continue
			}
			if _, neg := res.NegativeCycleNodes[dst]; neg {
				continue
			}
			fh := firstHopFromParent(res.Parent, src, dst)
			hops := []routegraph.RouterID{fh}
			out = append(out, StrategyRouteEntry{
				Destination:     dst,
				Metric:          dist,
				NextHops:        hops,
				SelectedNextHop: selectNextHop(src, dst, hops, cfg.Selection),
			})
		}
	case AlgoYenKShortest:
		k := cfg.YenK
		if k <= 0 {
			k = 1
		}
		for dst := range g.Nodes() {
			if dst == src {
				continue
			}
			paths := routegraph.ComputeYenKSP(g, src, dst, k)
			if len(paths) == 0 {
				continue
			}
			best := paths[0]
			hopSet := map[routegraph.RouterID]struct{}{}
			for _, p := range paths {
				if len(p.Nodes) > 1 {
					hopSet[p.Nodes[1]] = struct{}{}
				}
			}
			hops := setToSlice(hopSet)
			out = append(out, StrategyRouteEntry{
				Destination:     dst,
				Metric:          best.Cost,
				NextHops:        hops,
				SelectedNextHop: selectNextHop(src, dst, hops, cfg.Selection),
			})
		}
	default: // AlgoDijkstra
		tree := routegraph.ComputeSPFTree(g, src)
		for dst, dist := range tree.Dist {
			if dst == src {
				continue
			}
			hops := []routegraph.RouterID{tree.FirstHop[dst]}
			out = append(out, StrategyRouteEntry{
				Destination:     dst,
				Metric:          dist,
				NextHops:        hops,
				SelectedNextHop: selectNextHop(src, dst, hops, cfg.Selection),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Destination < out[j].Destination })
	return out
}

// ComputeMultiMetricRouteEntries dispatches on cfg.Algorithm over a
// MultiMetricGraph.
func ComputeMultiMetricRouteEntries(mg routegraph.MultiMetricGraph, src routegraph.RouterID, cfg MultiMetricConfig) []StrategyRouteEntry {
	var out []StrategyRouteEntry

	switch cfg.Algorithm {
	case AlgoCSPF:
		tree := routegraph.ComputeCSPF(mg, src, cfg.Constraints)
		for dst, dist := range tree.Dist {
			if dst == src {
				continue
			}
			hops := []routegraph.RouterID{tree.FirstHop[dst]}
			out = append(out, StrategyRouteEntry{
				Destination:     dst,
				Metric:          dist,
				NextHops:        hops,
				SelectedNextHop: hops[0],
			})
		}
	case AlgoWeightedSum:
		tree := routegraph.ComputeWeightedSum(mg, src, cfg.Coeffs)
		for dst, dist := range tree.Dist {
			if dst == src {
				continue
			}
			hops := []routegraph.RouterID{tree.FirstHop[dst]}
			out = append(out, StrategyRouteEntry{
				Destination:     dst,
				Metric:          dist,
				NextHops:        hops,
				SelectedNextHop: hops[0],
			})
		}
	case AlgoPareto:
		maxPaths := cfg.MaxParetoPaths
		if maxPaths <= 0 {
			maxPaths = 1
		}
		for dst := range nodeSet(mg) {
			if dst == src {
				continue
			}
			front := routegraph.ComputeParetoFront(mg, src, dst, maxPaths)
			if len(front) == 0 {
				continue
			}
			best := front[0]
			var nh routegraph.RouterID
			if len(best.Path) > 1 {
				nh = best.Path[1]
			}
			out = append(out, StrategyRouteEntry{
				Destination:     dst,
				Metric:          best.Delay,
				NextHops:        []routegraph.RouterID{nh},
				SelectedNextHop: nh,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Destination < out[j].Destination })
	return out
}

func firstHopFromParent(parent map[routegraph.RouterID]routegraph.RouterID, src, dst routegraph.RouterID) routegraph.RouterID {
	cur := dst
	for {
		p, ok := parent[cur]
		if !ok {
			return 0
		}
		if p == src {
			return cur
		}
		cur = p
	}
}

func setToSlice(s map[routegraph.RouterID]struct{}) []routegraph.RouterID {
	out := make([]routegraph.RouterID, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func nodeSet(mg routegraph.MultiMetricGraph) map[routegraph.RouterID]struct{} {
	out := map[routegraph.RouterID]struct{}{}
	for u, nbrs := range mg {
		out[u] = struct{}{}
		for v := range nbrs {
			out[v] = struct{}{}
		}
	}
	return out
}
