// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grimm.is/flywall/internal/routegraph"
)

func diamond() routegraph.Graph {
	return routegraph.Graph{
		1: {2: 1, 3: 1},
		2: {4: 1},
		3: {4: 1},
		4: {},
	}
}

func TestComputeScalarRouteEntries_Dijkstra(t *testing.T) {
	entries := ComputeScalarRouteEntries(diamond(), 1, Config{Algorithm: AlgoDijkstra})
	var dst4 *StrategyRouteEntry
	for i := range entries {
		if entries[i].Destination == 4 {
			dst4 = &entries[i]
		}
	}
	require.NotNil(t, dst4)
	assert.Equal(t, routegraph.Cost(2), dst4.Metric)
	assert.Equal(t, routegraph.RouterID(2), dst4.SelectedNextHop)
}

func TestComputeScalarRouteEntries_ECMPHashSelectionStable(t *testing.T) {
	sel := Selection{Kind: SelectHash, Seed: 2026}
	e1 := ComputeScalarRouteEntries(diamond(), 1, Config{Algorithm: AlgoECMP, Selection: sel})
	e2 := ComputeScalarRouteEntries(diamond(), 1, Config{Algorithm: AlgoECMP, Selection: sel})

	var first, second *StrategyRouteEntry
	for i := range e1 {
		if e1[i].Destination == 4 {
			first = &e1[i]
		}
	}
	for i := range e2 {
		if e2[i].Destination == 4 {
			second = &e2[i]
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.ElementsMatch(t, []routegraph.RouterID{2, 3}, first.NextHops)
	assert.Equal(t, first.SelectedNextHop, second.SelectedNextHop)
}

func TestComputeScalarRouteEntries_BellmanFordExcludesNegativeCycleNodes(t *testing.T) {
	g := routegraph.Graph{
		1: {2: 1},
		2: {3: -1},
		3: {2: -1},
	}
	entries := ComputeScalarRouteEntries(g, 1, Config{Algorithm: AlgoBellmanFord})
	for _, e := range entries {
		assert.NotEqual(t, routegraph.RouterID(2), e.Destination)
		assert.NotEqual(t, routegraph.RouterID(3), e.Destination)
	}
}

func TestComputeMultiMetricRouteEntries_CSPF(t *testing.T) {
	mg := routegraph.MultiMetricGraph{
		1: {2: {Bandwidth: 100, Delay: 1}},
		2: {4: {Bandwidth: 100, Delay: 1}},
	}
	entries := ComputeMultiMetricRouteEntries(mg, 1, MultiMetricConfig{Algorithm: AlgoCSPF})
	require.Len(t, entries, 2)
}
