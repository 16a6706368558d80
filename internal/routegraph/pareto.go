// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"sort"
)

// ParetoLabel is one non-dominated (delay, loss, utilization) path to a node.
type ParetoLabel struct {
	Node        RouterID
	Path        []RouterID
	Delay       Cost
	Loss        Cost
	Utilization Cost
}

// dominates reports whether l is at least as good as o on every objective
// and strictly better on at least one, using Epsilon tolerance.
func (l ParetoLabel) dominates(o ParetoLabel) bool {
	leOnAll := l.Delay <= o.Delay+Epsilon && l.Loss <= o.Loss+Epsilon && l.Utilization <= o.Utilization+Epsilon
	if !leOnAll {
		return false
	}
	strictlyBetter := l.Delay < o.Delay-Epsilon || l.Loss < o.Loss-Epsilon || l.Utilization < o.Utilization-Epsilon
	return strictlyBetter
}

// costEqual reports whether l and o match on every objective within
// Epsilon, treating equal-cost labels as duplicates rather than as
// mutually non-dominating.
func (l ParetoLabel) costEqual(o ParetoLabel) bool {
	return almostEqual(l.Delay, o.Delay) && almostEqual(l.Loss, o.Loss) && almostEqual(l.Utilization, o.Utilization)
}

// ComputeParetoFront enumerates non-dominated simple paths from src to dst
// over the three objectives (delay, loss, utilization) via label-setting
// search. Expansion is capped at len(nodes)^2 * max(maxPaths, 2) labels to
// bound the combinatorial blowup; results are sorted lexicographically by
// (Delay, Loss, Utilization) and truncated to maxPaths.
func ComputeParetoFront(mg MultiMetricGraph, src, dst RouterID, maxPaths int) []ParetoLabel {
	if src == dst {
		return []ParetoLabel{{Node: src, Path: []RouterID{src}}}
	}

	nodeCount := len(nodeSetOf(mg))
	capWidth := maxPaths
	if capWidth < 2 {
		capWidth = 2
	}
	expansionCap := nodeCount * nodeCount * capWidth
	if expansionCap <= 0 {
		expansionCap = capWidth
	}

	frontier := map[RouterID][]ParetoLabel{src: {{Node: src, Path: []RouterID{src}}}}
	queue := []ParetoLabel{{Node: src, Path: []RouterID{src}}}
	expansions := 0

	inPath := func(p []RouterID, n RouterID) bool {
		for _, x := range p {
			if x == n {
				return true
			}
		}
		return false
	}

	for len(queue) > 0 && expansions < expansionCap {
		cur := queue[0]
		queue = queue[1:]
		expansions++

		for next, m := range mg[cur.Node] {
			if !m.finite() || inPath(cur.Path, next) {
				continue
			}
			cand := ParetoLabel{
				Node:        next,
				Path:        append(append([]RouterID{}, cur.Path...), next),
				Delay:       cur.Delay + m.Delay,
				Loss:        cur.Loss + m.Loss,
				Utilization: cur.Utilization + m.Utilization,
			}

			existing := frontier[next]
			dominated := false
			kept := existing[:0:0]
			for _, e := range existing {
				if e.dominates(cand) || e.costEqual(cand) {
					dominated = true
					kept = existing
					break
				}
				if !cand.dominates(e) {
					kept = append(kept, e)
				}
			}
			if dominated {
				continue
			}
			kept = append(kept, cand)
			frontier[next] = kept
			queue = append(queue, cand)
		}
	}

	results := frontier[dst]
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !almostEqual(a.Delay, b.Delay) {
			return a.Delay < b.Delay
		}
		if !almostEqual(a.Loss, b.Loss) {
			return a.Loss < b.Loss
		}
		if !almostEqual(a.Utilization, b.Utilization) {
			return a.Utilization < b.Utilization
		}
		return pathKey(a.Path) < pathKey(b.Path)
	})
	if maxPaths > 0 && len(results) > maxPaths {
		results = results[:maxPaths]
	}
	return results
}

func nodeSetOf(mg MultiMetricGraph) map[RouterID]struct{} {
	nodes := map[RouterID]struct{}{}
	for u, nbrs := range mg {
		nodes[u] = struct{}{}
		for v := range nbrs {
			nodes[v] = struct{}{}
		}
	}
	return nodes
}
