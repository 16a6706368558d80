// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import "container/heap"

// spfItem is one entry in the Dijkstra frontier. Nodes are pushed again on
// every relaxation rather than updated in place ("decrease-key"); stale
// entries are filtered out at pop time by comparing against the best known
// distance recorded for that node.
type spfItem struct {
	node RouterID
	dist Cost
}

type spfHeap []spfItem

func (h spfHeap) Len() int { return len(h) }
func (h spfHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].node < h[j].node
}
func (h spfHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *spfHeap) Push(x any)   { *h = append(*h, x.(spfItem)) }
func (h *spfHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// frontier wraps container/heap for the spfItem type.
type frontier struct {
	h spfHeap
}

func newFrontier() *frontier {
	f := &frontier{}
	heap.Init(&f.h)
	return f
}

func (f *frontier) push(node RouterID, dist Cost) {
	heap.Push(&f.h, spfItem{node: node, dist: dist})
}

func (f *frontier) empty() bool { return f.h.Len() == 0 }

func (f *frontier) pop() spfItem {
	return heap.Pop(&f.h).(spfItem)
}
