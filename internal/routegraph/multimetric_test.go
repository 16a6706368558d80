// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCSPF_DropsViolatingEdges(t *testing.T) {
	mg := MultiMetricGraph{
		1: {
			2: {Bandwidth: 100, Delay: 5},
			3: {Bandwidth: 10, Delay: 1},
		},
		2: {4: {Bandwidth: 100, Delay: 5}},
		3: {4: {Bandwidth: 100, Delay: 5}},
	}
	minBW := Cost(50)
	tree := ComputeCSPF(mg, 1, Constraints{MinBandwidth: &minBW})
	// edge 1->3 has bandwidth 10 < 50, so it's dropped; only the 1->2->4
	// path (delay 10) survives.
	assert.InDelta(t, 10.0, tree.Dist[4], Epsilon)
	assert.Equal(t, RouterID(2), tree.FirstHop[4])
}

func TestComputeCSPF_DropsNonFiniteOrNegativeMetrics(t *testing.T) {
	mg := MultiMetricGraph{
		1: {2: {Bandwidth: -1, Delay: 1}},
	}
	tree := ComputeCSPF(mg, 1, Constraints{})
	assert.False(t, tree.Reachable(2))
}

func TestComputeWeightedSum_CombinesMetrics(t *testing.T) {
	mg := MultiMetricGraph{
		1: {
			2: {Delay: 10, Loss: 0},
			3: {Delay: 1, Loss: 1},
		},
		2: {4: {Delay: 1, Loss: 0}},
		3: {4: {Delay: 1, Loss: 0}},
	}
	coeffs := WeightedSumCoefficients{Delay: 1, Loss: 100}
	tree := ComputeWeightedSum(mg, 1, coeffs)
	// 1->2->4: 10+1 + 0 = 11. 1->3->4: 1+1 + 100 = 102. Cheaper via 2.
	assert.InDelta(t, 11.0, tree.Dist[4], Epsilon)
	assert.Equal(t, RouterID(2), tree.FirstHop[4])
}
