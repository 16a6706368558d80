// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeParetoFront_NonDominatedSet(t *testing.T) {
	// Path via 2 is faster but lossier; path via 3 is slower but
	// loss-free. Neither dominates the other, so both survive.
	mg := MultiMetricGraph{
		1: {
			2: {Delay: 1, Loss: 0.1},
			3: {Delay: 5, Loss: 0},
		},
		2: {4: {Delay: 1, Loss: 0}},
		3: {4: {Delay: 1, Loss: 0}},
	}
	front := ComputeParetoFront(mg, 1, 4, 10)
	require.Len(t, front, 2)
	assert.Equal(t, []RouterID{1, 2, 4}, front[0].Path)
	assert.Equal(t, []RouterID{1, 3, 4}, front[1].Path)
}

func TestComputeParetoFront_DominatedPathExcluded(t *testing.T) {
	// Via 3 is strictly worse on every objective than via 2, so it must
	// not appear in the front.
	mg := MultiMetricGraph{
		1: {
			2: {Delay: 1, Loss: 0},
			3: {Delay: 5, Loss: 0.2},
		},
		2: {4: {Delay: 1, Loss: 0}},
		3: {4: {Delay: 1, Loss: 0}},
	}
	front := ComputeParetoFront(mg, 1, 4, 10)
	require.Len(t, front, 1)
	assert.Equal(t, []RouterID{1, 2, 4}, front[0].Path)
}

func TestComputeParetoFront_SameSourceAndDest(t *testing.T) {
	front := ComputeParetoFront(MultiMetricGraph{}, 1, 1, 5)
	require.Len(t, front, 1)
	assert.Equal(t, []RouterID{1}, front[0].Path)
}

func TestComputeParetoFront_TruncatesToMaxPaths(t *testing.T) {
	mg := MultiMetricGraph{
		1: {
			2: {Delay: 1, Loss: 0.9},
			3: {Delay: 2, Loss: 0.5},
			5: {Delay: 3, Loss: 0.1},
		},
		2: {4: {Delay: 1, Loss: 0}},
		3: {4: {Delay: 1, Loss: 0}},
		5: {4: {Delay: 1, Loss: 0}},
	}
	front := ComputeParetoFront(mg, 1, 4, 2)
	assert.Len(t, front, 2)
}
