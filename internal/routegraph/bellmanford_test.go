// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBellmanFord_NegativeEdgeImprovesPath(t *testing.T) {
	g := Graph{
		1: {2: 2, 3: 1},
		3: {2: -2},
	}
	res := ComputeBellmanFord(g, 1)
	assert.Equal(t, Cost(-1), res.Dist[2])
	assert.Equal(t, RouterID(3), res.Parent[2])
	assert.Empty(t, res.NegativeCycleNodes)
}

func TestComputeBellmanFord_DetectsNegativeCycle(t *testing.T) {
	g := Graph{
		1: {2: 1},
		2: {3: -1},
		3: {2: -1},
	}
	res := ComputeBellmanFord(g, 1)
	assert.Contains(t, res.NegativeCycleNodes, RouterID(2))
	assert.Contains(t, res.NegativeCycleNodes, RouterID(3))
}

func TestComputeBellmanFord_SkipsNonFiniteEdges(t *testing.T) {
	g := Graph{
		1: {2: math.Inf(1), 3: 1},
	}
	res := ComputeBellmanFord(g, 1)
	_, ok := res.Dist[2]
	assert.False(t, ok)
	assert.Equal(t, Cost(1), res.Dist[3])
}
