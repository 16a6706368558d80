// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

// EdgeUpdate describes one edge change to apply to a graph before an
// incremental SPF recompute. OldCost/NewCost are nil when the edge did not
// exist before/does not exist after, respectively (insertion/removal).
type EdgeUpdate struct {
	From, To RouterID
	OldCost  *Cost
	NewCost  *Cost
}

func (u EdgeUpdate) isIncreaseOrRemoval() bool {
	if u.NewCost == nil {
		return true // removal
	}
	if u.OldCost == nil {
		return false // pure insertion can only ever help
	}
	return *u.NewCost > *u.OldCost
}

// IncrementalResult is the outcome of ComputeIncrementalSPF.
type IncrementalResult struct {
	Tree              *SPFTree
	UsedFullRecompute bool
}

// ComputeIncrementalSPF updates prev (computed over the graph before
// updates were applied) to reflect newGraph, which already has the updates
// baked in. The resulting tree is guaranteed identical to
// ComputeSPFTree(newGraph, src).
func ComputeIncrementalSPF(newGraph Graph, src RouterID, prev *SPFTree, updates []EdgeUpdate) IncrementalResult {
	affected := markAffected(prev, updates)

	totalNodes := len(newGraph.Nodes())
	if totalNodes == 0 {
		totalNodes = len(prev.Dist)
	}
	if len(affected)*2 >= totalNodes {
		return IncrementalResult{Tree: ComputeSPFTree(newGraph, src), UsedFullRecompute: true}
	}

	dist := make(map[RouterID]Cost, len(prev.Dist))
	firstHop := make(map[RouterID]RouterID, len(prev.FirstHop))
	parent := make(map[RouterID]RouterID, len(prev.Parent))
	for k, v := range prev.Dist {
		dist[k] = v
	}
	for k, v := range prev.FirstHop {
		firstHop[k] = v
	}
	for k, v := range prev.Parent {
		parent[k] = v
	}

	for n := range affected {
		if n == src {
			continue
		}
		delete(dist, n)
		delete(firstHop, n)
		delete(parent, n)
	}

	tree := &SPFTree{Source: src, Dist: dist, FirstHop: firstHop, Parent: parent}
	f := newFrontier()

	// Seed each affected node from the best predecessor whose distance is
	// already known and finite in the (partially reset) map.
	for n := range affected {
		if n == src {
			continue
		}
		var best Cost
		var bestParent RouterID
		haveBest := false
		for u, nbrs := range newGraph {
			c, ok := nbrs[n]
			if !ok || !usable(c) {
				continue
			}
			ud, ok := dist[u]
			if !ok {
				continue
			}
			cand := ud + c
			if !haveBest || cand < best {
				best = cand
				bestParent = u
				haveBest = true
			}
		}
		if haveBest {
			dist[n] = best
			parent[n] = bestParent
			if bestParent == src {
				firstHop[n] = n
			} else {
				firstHop[n] = firstHop[bestParent]
			}
			f.push(n, best)
		}
	}

	// Standard relax-to-quiescence from the seeded frontier. Nodes whose
	// distance did not change (unaffected nodes) are never pushed, but
	// remain visible in the maps so relaxation can still improve them if a
	// cheaper path emerges through a reseeded node.
	for !f.empty() {
		item := f.pop()
		u := item.node
		if best, ok := dist[u]; !ok || item.dist > best+Epsilon {
			continue
		}
		for v, c := range newGraph[u] {
			if !usable(c) {
				continue
			}
			nd := dist[u] + c
			var fh RouterID
			if u == src {
				fh = v
			} else {
				fh = firstHop[u]
			}
			cand := candidate{dist: nd, firstHop: fh, parent: u}

			curDist, known := dist[v]
			if !known {
				dist[v] = nd
				firstHop[v] = fh
				parent[v] = u
				f.push(v, nd)
				continue
			}
			cur := candidate{dist: curDist, firstHop: firstHop[v], parent: parent[v]}
			if cand.less(cur) {
				dist[v] = nd
				firstHop[v] = fh
				parent[v] = u
				f.push(v, nd)
			}
		}
	}

	return IncrementalResult{Tree: tree, UsedFullRecompute: false}
}

// markAffected computes the initial affected set per spec: every update's
// endpoints, plus, for increases/removals whose edge lay on the old tree
// (one endpoint was the other's parent), the full descendant subtree.
func markAffected(prev *SPFTree, updates []EdgeUpdate) map[RouterID]struct{} {
	children := make(map[RouterID][]RouterID, len(prev.Parent))
	for node, p := range prev.Parent {
		children[p] = append(children[p], node)
	}

	affected := map[RouterID]struct{}{}
	var markSubtree func(root RouterID)
	markSubtree = func(root RouterID) {
		if _, already := affected[root]; already {
			return
		}
		affected[root] = struct{}{}
		for _, c := range children[root] {
			markSubtree(c)
		}
	}

	for _, u := range updates {
		affected[u.From] = struct{}{}
		affected[u.To] = struct{}{}
		if !u.isIncreaseOrRemoval() {
			continue
		}
		if prev.Parent[u.To] == u.From {
			markSubtree(u.To)
		}
		if prev.Parent[u.From] == u.To {
			markSubtree(u.From)
		}
	}
	return affected
}
