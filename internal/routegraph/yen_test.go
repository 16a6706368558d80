// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bridgeGraph() Graph {
	return Graph{
		1: {2: 1, 3: 1},
		2: {4: 1, 3: 0.5},
		3: {4: 1},
		4: {},
	}
}

func TestComputeYenKSP_BridgeDiamond(t *testing.T) {
	paths := ComputeYenKSP(bridgeGraph(), 1, 4, 3)
	require.Len(t, paths, 3)

	assert.Equal(t, []RouterID{1, 2, 4}, paths[0].Nodes)
	assert.InDelta(t, 2.0, paths[0].Cost, Epsilon)

	assert.Equal(t, []RouterID{1, 3, 4}, paths[1].Nodes)
	assert.InDelta(t, 2.0, paths[1].Cost, Epsilon)

	assert.Equal(t, []RouterID{1, 2, 3, 4}, paths[2].Nodes)
	assert.InDelta(t, 2.5, paths[2].Cost, Epsilon)
}

func TestComputeYenKSP_FewerThanKAvailable(t *testing.T) {
	g := Graph{1: {2: 1}, 2: {3: 1}}
	paths := ComputeYenKSP(g, 1, 3, 5)
	assert.Len(t, paths, 1)
}

func TestComputeYenKSP_SameSourceAndDest(t *testing.T) {
	paths := ComputeYenKSP(diamondGraph(), 1, 1, 3)
	require.Len(t, paths, 1)
	assert.Equal(t, []RouterID{1}, paths[0].Nodes)
	assert.Equal(t, Cost(0), paths[0].Cost)
}

func TestComputeYenKSP_Unreachable(t *testing.T) {
	g := Graph{1: {2: 1}, 3: {4: 1}}
	paths := ComputeYenKSP(g, 1, 4, 3)
	assert.Nil(t, paths)
}
