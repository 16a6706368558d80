// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import "sort"

// SimplePath is one loop-free path with its total cost.
type SimplePath struct {
	Nodes []RouterID
	Cost  Cost
}

// filteredDijkstra runs Dijkstra from src to dst over g, skipping any edge
// whose (from,to) pair is in blockedEdges and any node in blockedNodes
// (other than src and dst themselves). Returns nil if dst is unreached.
func filteredDijkstra(g Graph, src, dst RouterID, blockedNodes map[RouterID]struct{}, blockedEdges map[[2]RouterID]struct{}) *SimplePath {
	dist := map[RouterID]Cost{src: 0}
	parent := map[RouterID]RouterID{}
	f := newFrontier()
	f.push(src, 0)

	for !f.empty() {
		item := f.pop()
		u := item.node
		if best, ok := dist[u]; !ok || item.dist > best+Epsilon {
			continue
		}
		if u == dst {
			break
		}
		for v, c := range g[u] {
			if !usable(c) {
				continue
			}
			if v != src && v != dst {
				if _, blocked := blockedNodes[v]; blocked {
					continue
				}
			}
			if _, blocked := blockedEdges[[2]RouterID{u, v}]; blocked {
				continue
			}
			nd := dist[u] + c
			if curDist, ok := dist[v]; !ok || nd < curDist-Epsilon {
				dist[v] = nd
				parent[v] = u
				f.push(v, nd)
			}
		}
	}

	finalDist, ok := dist[dst]
	if !ok {
		return nil
	}
	var nodes []RouterID
	cur := dst
	for {
		nodes = append([]RouterID{cur}, nodes...)
		if cur == src {
			break
		}
		p, ok := parent[cur]
		if !ok {
			return nil
		}
		cur = p
	}
	return &SimplePath{Nodes: nodes, Cost: finalDist}
}

func sharesPrefix(a, b []RouterID) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pathKey(p []RouterID) string {
	// Node IDs are bounded uint32s; a simple separated string is a cheap,
	// collision-free dedup key without pulling in a hashing dependency.
	b := make([]byte, 0, len(p)*6)
	for i, n := range p {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendUint(b, uint32(n))
	}
	return string(b)
}

func appendUint(b []byte, n uint32) []byte {
	if n == 0 {
		return append(b, '0')
	}
	var tmp [10]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(b, tmp[i:]...)
}

// ComputeYenKSP returns up to maxResults loop-free simple paths from src to
// dst, ordered by (cost, node-sequence lexicographic), with no duplicates.
// src == dst returns a single zero-cost path holding only src.
func ComputeYenKSP(g Graph, src, dst RouterID, maxResults int) []SimplePath {
	if src == dst {
		return []SimplePath{{Nodes: []RouterID{src}, Cost: 0}}
	}

	first := filteredDijkstra(g, src, dst, nil, nil)
	if first == nil {
		return nil
	}

	results := []SimplePath{*first}
	seen := map[string]struct{}{pathKey(first.Nodes): {}}

	type candidateEntry struct {
		path SimplePath
	}
	var pool []candidateEntry

	for len(results) < maxResults {
		prev := results[len(results)-1]
		for spurIdx := 0; spurIdx < len(prev.Nodes)-1; spurIdx++ {
			spurNode := prev.Nodes[spurIdx]
			rootPath := prev.Nodes[:spurIdx+1]

			blockedEdges := map[[2]RouterID]struct{}{}
			for _, p := range results {
				if len(p.Nodes) > spurIdx && sharesPrefix(rootPath, p.Nodes[:spurIdx+1]) {
					blockedEdges[[2]RouterID{p.Nodes[spurIdx], p.Nodes[spurIdx+1]}] = struct{}{}
				}
			}
			blockedNodes := map[RouterID]struct{}{}
			for _, n := range rootPath[:len(rootPath)-1] {
				blockedNodes[n] = struct{}{}
			}

			spur := filteredDijkstra(g, spurNode, dst, blockedNodes, blockedEdges)
			if spur == nil {
				continue
			}

			var rootCost Cost
			for i := 0; i < len(rootPath)-1; i++ {
				rootCost += g[rootPath[i]][rootPath[i+1]]
			}

			combined := make([]RouterID, 0, len(rootPath)-1+len(spur.Nodes))
			combined = append(combined, rootPath[:len(rootPath)-1]...)
			combined = append(combined, spur.Nodes...)

			cand := SimplePath{Nodes: combined, Cost: rootCost + spur.Cost}
			key := pathKey(cand.Nodes)
			if _, dup := seen[key]; dup {
				continue
			}
			dupInPool := false
			for _, p := range pool {
				if pathKey(p.path.Nodes) == key {
					dupInPool = true
					break
				}
			}
			if !dupInPool {
				pool = append(pool, candidateEntry{path: cand})
			}
		}

		if len(pool) == 0 {
			break
		}
		sort.Slice(pool, func(i, j int) bool {
			return yenLess(pool[i].path, pool[j].path)
		})
		best := pool[0]
		pool = pool[1:]
		seen[pathKey(best.path.Nodes)] = struct{}{}
		results = append(results, best.path)
	}

	sort.Slice(results, func(i, j int) bool { return yenLess(results[i], results[j]) })
	return results
}

func yenLess(a, b SimplePath) bool {
	if !almostEqual(a.Cost, b.Cost) {
		return a.Cost < b.Cost
	}
	for i := 0; i < len(a.Nodes) && i < len(b.Nodes); i++ {
		if a.Nodes[i] != b.Nodes[i] {
			return a.Nodes[i] < b.Nodes[i]
		}
	}
	return len(a.Nodes) < len(b.Nodes)
}
