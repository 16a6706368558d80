// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import "math"

// SPFTree is the result of a single-path Dijkstra computation: for every
// reachable node, its distance from Source, its first-hop neighbor on the
// (tie-break-selected) shortest path, and its predecessor in the tree.
type SPFTree struct {
	Source   RouterID
	Dist     map[RouterID]Cost
	FirstHop map[RouterID]RouterID
	Parent   map[RouterID]RouterID
}

func newSPFTree(src RouterID) *SPFTree {
	return &SPFTree{
		Source:   src,
		Dist:     map[RouterID]Cost{src: 0},
		FirstHop: map[RouterID]RouterID{},
		Parent:   map[RouterID]RouterID{},
	}
}

// Equal reports whether two trees have identical dist/first_hop/parent
// maps, used to check the incremental-SPF-equals-full-recompute invariant.
func (t *SPFTree) Equal(o *SPFTree) bool {
	if t.Source != o.Source {
		return false
	}
	if len(t.Dist) != len(o.Dist) {
		return false
	}
	for n, d := range t.Dist {
		od, ok := o.Dist[n]
		if !ok || !almostEqual(d, od) {
			return false
		}
	}
	for n, fh := range t.FirstHop {
		if o.FirstHop[n] != fh {
			return false
		}
	}
	for n, p := range t.Parent {
		if o.Parent[n] != p {
			return false
		}
	}
	return true
}

// candidate is the (metric, first_hop, parent) tuple the spec's tie-break
// rule orders over: smaller metric first (within Epsilon), then smaller
// first_hop, then smaller parent.
type candidate struct {
	dist     Cost
	firstHop RouterID
	parent   RouterID
}

// less reports whether c is preferred over o under the spec's tie-break.
func (c candidate) less(o candidate) bool {
	if !almostEqual(c.dist, o.dist) {
		return c.dist < o.dist
	}
	if c.firstHop != o.firstHop {
		return c.firstHop < o.firstHop
	}
	return c.parent < o.parent
}

// ComputeSPFTree runs single-path Dijkstra from src over g.
func ComputeSPFTree(g Graph, src RouterID) *SPFTree {
	return runDijkstraTree(g, src, nil)
}

// ComputePartialSPF runs Dijkstra from src but stops as soon as every node
// in targets has been settled (popped from the heap with a final,
// non-stale distance). The returned tree only contains the nodes visited up
// to that point.
func ComputePartialSPF(g Graph, src RouterID, targets []RouterID) *SPFTree {
	pending := make(map[RouterID]struct{}, len(targets))
	for _, t := range targets {
		if t != src {
			pending[t] = struct{}{}
		}
	}
	return runDijkstraTree(g, src, pending)
}

// runDijkstraTree is the shared engine behind ComputeSPFTree and
// ComputePartialSPF. If pending is non-nil, the search stops once it is
// empty (partial SPF); otherwise it runs to exhaustion.
func runDijkstraTree(g Graph, src RouterID, pending map[RouterID]struct{}) *SPFTree {
	tree := newSPFTree(src)
	f := newFrontier()
	f.push(src, 0)

	for !f.empty() {
		if pending != nil && len(pending) == 0 {
			break
		}
		item := f.pop()
		u := item.node
		if best, ok := tree.Dist[u]; !ok || item.dist > best+Epsilon {
			continue // stale heap entry
		}
		if pending != nil {
			delete(pending, u)
		}

		for v, c := range g[u] {
			if !usable(c) {
				continue
			}
			nd := tree.Dist[u] + c
			var fh RouterID
			if u == src {
				fh = v
			} else {
				fh = tree.FirstHop[u]
			}
			cand := candidate{dist: nd, firstHop: fh, parent: u}

			curDist, known := tree.Dist[v]
			if !known {
				tree.Dist[v] = nd
				tree.FirstHop[v] = fh
				tree.Parent[v] = u
				f.push(v, nd)
				continue
			}
			cur := candidate{dist: curDist, firstHop: tree.FirstHop[v], parent: tree.Parent[v]}
			if cand.less(cur) {
				tree.Dist[v] = nd
				tree.FirstHop[v] = fh
				tree.Parent[v] = u
				f.push(v, nd)
			}
		}
	}
	return tree
}

// ECMPTree is the result of equal-cost multipath Dijkstra: for every
// reachable node, its distance and the full set of first-hop neighbors that
// lie on some shortest path to it.
type ECMPTree struct {
	Source    RouterID
	Dist      map[RouterID]Cost
	FirstHops map[RouterID]map[RouterID]struct{}
}

// ComputeSPFECMP runs the same traversal as ComputeSPFTree, but unions the
// first-hop set on equal-cost relaxation instead of picking one winner.
func ComputeSPFECMP(g Graph, src RouterID) *ECMPTree {
	tree := &ECMPTree{
		Source:    src,
		Dist:      map[RouterID]Cost{src: 0},
		FirstHops: map[RouterID]map[RouterID]struct{}{},
	}
	f := newFrontier()
	f.push(src, 0)

	for !f.empty() {
		item := f.pop()
		u := item.node
		if best, ok := tree.Dist[u]; !ok || item.dist > best+Epsilon {
			continue
		}

		for v, c := range g[u] {
			if !usable(c) {
				continue
			}
			nd := tree.Dist[u] + c

			var candidateHops map[RouterID]struct{}
			if u == src {
				candidateHops = map[RouterID]struct{}{v: {}}
			} else {
				candidateHops = tree.FirstHops[u]
			}

			curDist, known := tree.Dist[v]
			switch {
			case !known || nd < curDist-Epsilon:
				tree.Dist[v] = nd
				tree.FirstHops[v] = cloneRouterSet(candidateHops)
				f.push(v, nd)
			case almostEqual(nd, curDist):
				if tree.FirstHops[v] == nil {
					tree.FirstHops[v] = map[RouterID]struct{}{}
				}
				for h := range candidateHops {
					tree.FirstHops[v][h] = struct{}{}
				}
				f.push(v, nd)
			}
		}
	}
	return tree
}

// Reachable reports whether v has a recorded finite distance.
func (t *SPFTree) Reachable(v RouterID) bool {
	d, ok := t.Dist[v]
	return ok && !math.IsInf(d, 0)
}
