// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diamondGraph() Graph {
	return Graph{
		1: {2: 1, 3: 1},
		2: {4: 1},
		3: {4: 1},
		4: {},
	}
}

func TestComputeSPFTree_Diamond(t *testing.T) {
	tree := ComputeSPFTree(diamondGraph(), 1)
	assert.Equal(t, Cost(0), tree.Dist[1])
	assert.Equal(t, Cost(1), tree.Dist[2])
	assert.Equal(t, Cost(1), tree.Dist[3])
	assert.Equal(t, Cost(2), tree.Dist[4])
	// Tie between via-2 and via-3 at equal cost 2 is broken by smaller
	// first hop (2 < 3).
	assert.Equal(t, RouterID(2), tree.FirstHop[4])
}

func TestComputeSPFTree_TieBreakIsDeterministic(t *testing.T) {
	g := diamondGraph()
	var prev *SPFTree
	for i := 0; i < 20; i++ {
		tree := ComputeSPFTree(g, 1)
		if prev != nil {
			assert.True(t, tree.Equal(prev))
		}
		prev = tree
	}
}

func TestComputeSPFECMP_Diamond(t *testing.T) {
	tree := ComputeSPFECMP(diamondGraph(), 1)
	assert.Equal(t, Cost(2), tree.Dist[4])
	assert.Len(t, tree.FirstHops[4], 2)
	assert.Contains(t, tree.FirstHops[4], RouterID(2))
	assert.Contains(t, tree.FirstHops[4], RouterID(3))
}

func TestComputeSPFTree_Unreachable(t *testing.T) {
	g := Graph{1: {2: 1}, 3: {4: 1}}
	tree := ComputeSPFTree(g, 1)
	assert.False(t, tree.Reachable(3))
	assert.False(t, tree.Reachable(4))
	assert.True(t, tree.Reachable(2))
}

func TestComputePartialSPF_StopsEarly(t *testing.T) {
	g := Graph{
		1: {2: 1},
		2: {3: 1},
		3: {4: 1},
		4: {5: 1},
	}
	tree := ComputePartialSPF(g, 1, []RouterID{3})
	require.Contains(t, tree.Dist, RouterID(3))
	assert.Equal(t, Cost(2), tree.Dist[3])
}

func TestComputeSPFTree_IgnoresNegativeAndNonFiniteEdges(t *testing.T) {
	g := Graph{
		1: {2: -1, 3: 1},
		3: {4: 1},
	}
	tree := ComputeSPFTree(g, 1)
	assert.False(t, tree.Reachable(2))
	assert.True(t, tree.Reachable(4))
}
