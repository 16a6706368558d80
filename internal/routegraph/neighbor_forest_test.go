// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNeighborForest_ExcludesSource(t *testing.T) {
	g := Graph{
		1: {2: 1, 3: 1},
		2: {4: 1, 1: 1},
		3: {4: 1},
		4: {},
	}
	forest := BuildNeighborForest(g, 1)
	require.Contains(t, forest.Trees, RouterID(2))
	require.Contains(t, forest.Trees, RouterID(3))

	tree2 := forest.Trees[2]
	_, hasSrc := tree2.Dist[1]
	assert.False(t, hasSrc, "source must be excluded from neighbor-rooted trees")
	assert.Equal(t, Cost(1), tree2.Dist[4])
}

func TestBuildPathViaNeighborRoot(t *testing.T) {
	g := Graph{
		1: {2: 1, 3: 1},
		2: {4: 1},
		3: {4: 1},
		4: {},
	}
	forest := BuildNeighborForest(g, 1)
	path := BuildPathViaNeighborRoot(forest, g, 2, 4)
	assert.Equal(t, []RouterID{1, 2, 4}, path)
}

func TestBuildPathViaNeighborRoot_Unreachable(t *testing.T) {
	g := Graph{
		1: {2: 1, 3: 1},
		2: {},
		3: {4: 1},
		4: {},
	}
	forest := BuildNeighborForest(g, 1)
	path := BuildPathViaNeighborRoot(forest, g, 2, 4)
	assert.Nil(t, path)
}
