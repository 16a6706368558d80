// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import "sort"

// LFACandidate is a loop-free alternate backup next hop for a destination.
type LFACandidate struct {
	NextHop   RouterID
	TotalCost Cost
}

// ComputeLFA returns the loop-free alternates for (src, dst) given the
// primary next hops already in use: a neighbor N of src is accepted if
// dist(N->dst) < dist(N->src) + dist(src->dst), the strict loop-free
// condition that guarantees traffic rerouted via N cannot loop back through
// src. Results are sorted by total cost then next hop.
func ComputeLFA(g Graph, src, dst RouterID, primaryNextHops map[RouterID]struct{}) []LFACandidate {
	refTree := ComputeSPFTree(g, src)
	refDist, ok := refTree.Dist[dst]
	if !ok {
		return nil
	}

	var out []LFACandidate
	for n, c := range g[src] {
		if !usable(c) {
			continue
		}
		if _, isPrimary := primaryNextHops[n]; isPrimary {
			continue
		}
		nTree := ComputeSPFTree(g, n)
		distNToDst, ok := nTree.Dist[dst]
		if !ok {
			continue
		}
		distNToSrc, ok := nTree.Dist[src]
		if !ok {
			continue
		}
		if distNToDst < distNToSrc+refDist-Epsilon {
			out = append(out, LFACandidate{NextHop: n, TotalCost: c + distNToDst})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !almostEqual(out[i].TotalCost, out[j].TotalCost) {
			return out[i].TotalCost < out[j].TotalCost
		}
		return out[i].NextHop < out[j].NextHop
	})
	return out
}
