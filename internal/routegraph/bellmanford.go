// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import "math"

// BellmanFordResult is the outcome of ComputeBellmanFord.
type BellmanFordResult struct {
	Dist              map[RouterID]Cost
	Parent            map[RouterID]RouterID
	NegativeCycleNodes map[RouterID]struct{}
}

// ComputeBellmanFord runs V-1 relaxation rounds from src, allowing finite
// negative edges (unlike every other algorithm in this package). A final
// relaxation pass identifies "cycle roots" - nodes whose distance can still
// be improved - and NegativeCycleNodes is the forward-reachable closure
// from those roots. Edges with infinite or NaN weight are skipped.
func ComputeBellmanFord(g Graph, src RouterID) BellmanFordResult {
	nodes := g.Nodes()
	nodes[src] = struct{}{}

	dist := map[RouterID]Cost{src: 0}
	parent := map[RouterID]RouterID{}

	type edge struct {
		from, to RouterID
		cost     Cost
	}
	var edges []edge
	for u, nbrs := range g {
		for v, c := range nbrs {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				continue
			}
			edges = append(edges, edge{u, v, c})
		}
	}

	n := len(nodes)
	for i := 0; i < n-1; i++ {
		changed := false
		for _, e := range edges {
			ud, ok := dist[e.from]
			if !ok {
				continue
			}
			nd := ud + e.cost
			if vd, ok := dist[e.to]; !ok || nd < vd-Epsilon {
				dist[e.to] = nd
				parent[e.to] = e.from
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	cycleRoots := map[RouterID]struct{}{}
	for _, e := range edges {
		ud, ok := dist[e.from]
		if !ok {
			continue
		}
		nd := ud + e.cost
		if vd, ok := dist[e.to]; !ok || nd < vd-Epsilon {
			cycleRoots[e.to] = struct{}{}
		}
	}

	adj := make(map[RouterID][]RouterID, len(g))
	for u, nbrs := range g {
		for v, c := range nbrs {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				continue
			}
			adj[u] = append(adj[u], v)
		}
	}

	negNodes := map[RouterID]struct{}{}
	var stack []RouterID
	for r := range cycleRoots {
		stack = append(stack, r)
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := negNodes[u]; seen {
			continue
		}
		negNodes[u] = struct{}{}
		for _, v := range adj[u] {
			if _, seen := negNodes[v]; !seen {
				stack = append(stack, v)
			}
		}
	}

	return BellmanFordResult{Dist: dist, Parent: parent, NegativeCycleNodes: negNodes}
}
