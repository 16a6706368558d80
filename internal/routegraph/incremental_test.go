// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func chainGraph() Graph {
	return Graph{
		1: {2: 1},
		2: {3: 1},
		3: {4: 1},
		4: {5: 1},
	}
}

func TestComputeIncrementalSPF_EdgeIncreaseMatchesFullRecompute(t *testing.T) {
	old := chainGraph()
	prev := ComputeSPFTree(old, 1)

	newG := chainGraph()
	newG[2][3] = 10
	oldCost := Cost(1)
	newCost := Cost(10)

	got := ComputeIncrementalSPF(newG, 1, prev, []EdgeUpdate{{From: 2, To: 3, OldCost: &oldCost, NewCost: &newCost}})
	want := ComputeSPFTree(newG, 1)
	assert.True(t, got.Tree.Equal(want))
}

func TestComputeIncrementalSPF_EdgeRemovalMatchesFullRecompute(t *testing.T) {
	old := diamondGraph()
	prev := ComputeSPFTree(old, 1)

	newG := diamondGraph()
	delete(newG[2], 4)
	oldCost := Cost(1)

	got := ComputeIncrementalSPF(newG, 1, prev, []EdgeUpdate{{From: 2, To: 4, OldCost: &oldCost, NewCost: nil}})
	want := ComputeSPFTree(newG, 1)
	assert.True(t, got.Tree.Equal(want))
	assert.Equal(t, Cost(2), got.Tree.Dist[4])
	assert.Equal(t, RouterID(3), got.Tree.FirstHop[4])
}

func TestComputeIncrementalSPF_EdgeDecreaseMatchesFullRecompute(t *testing.T) {
	old := diamondGraph()
	old[3][4] = 5
	prev := ComputeSPFTree(old, 1)
	assert.Equal(t, RouterID(2), prev.FirstHop[4])

	newG := diamondGraph()
	newG[3][4] = 0.1
	oldCost := Cost(5)
	newCost := Cost(0.1)

	got := ComputeIncrementalSPF(newG, 1, prev, []EdgeUpdate{{From: 3, To: 4, OldCost: &oldCost, NewCost: &newCost}})
	want := ComputeSPFTree(newG, 1)
	assert.True(t, got.Tree.Equal(want))
	assert.Equal(t, RouterID(3), got.Tree.FirstHop[4])
}

func TestComputeIncrementalSPF_InsertionMatchesFullRecompute(t *testing.T) {
	old := Graph{1: {2: 1}, 2: {3: 1}}
	prev := ComputeSPFTree(old, 1)

	newG := Graph{1: {2: 1, 3: 2}, 2: {3: 1}}
	newCost := Cost(2)

	got := ComputeIncrementalSPF(newG, 1, prev, []EdgeUpdate{{From: 1, To: 3, OldCost: nil, NewCost: &newCost}})
	want := ComputeSPFTree(newG, 1)
	assert.True(t, got.Tree.Equal(want))
}

func TestComputeIncrementalSPF_FallsBackWhenMajorityAffected(t *testing.T) {
	old := Graph{1: {2: 1}}
	prev := ComputeSPFTree(old, 1)

	newG := Graph{1: {2: 50}}
	oldCost := Cost(1)
	newCost := Cost(50)

	got := ComputeIncrementalSPF(newG, 1, prev, []EdgeUpdate{{From: 1, To: 2, OldCost: &oldCost, NewCost: &newCost}})
	assert.True(t, got.UsedFullRecompute)
}
