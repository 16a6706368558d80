// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import "math"

// EdgeMetrics carries the per-link multimetric attributes CSPF and
// weighted-sum routing select over.
type EdgeMetrics struct {
	Bandwidth   Cost // usable capacity, higher is better
	Delay       Cost
	Loss        Cost // fraction [0,1]
	Utilization Cost // fraction [0,1]
}

// MultiMetricGraph is the multimetric analog of Graph.
type MultiMetricGraph map[RouterID]map[RouterID]EdgeMetrics

func (m EdgeMetrics) finite() bool {
	vals := []Cost{m.Bandwidth, m.Delay, m.Loss, m.Utilization}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Constraints gates which edges a CSPF computation may traverse.
type Constraints struct {
	MinBandwidth   *Cost
	MaxDelay       *Cost
	MaxLoss        *Cost
	MaxUtilization *Cost
}

func (c Constraints) violated(m EdgeMetrics) bool {
	if !m.finite() {
		return true
	}
	if c.MinBandwidth != nil && m.Bandwidth < *c.MinBandwidth {
		return true
	}
	if c.MaxDelay != nil && m.Delay > *c.MaxDelay {
		return true
	}
	if c.MaxLoss != nil && m.Loss > *c.MaxLoss {
		return true
	}
	if c.MaxUtilization != nil && m.Utilization > *c.MaxUtilization {
		return true
	}
	return false
}

// filterToScalar projects a MultiMetricGraph down to a scalar Graph using
// weigh, dropping any edge weigh or the constraint check rejects.
func filterToScalar(mg MultiMetricGraph, keep func(EdgeMetrics) bool, weigh func(EdgeMetrics) Cost) Graph {
	g := make(Graph, len(mg))
	for u, nbrs := range mg {
		for v, m := range nbrs {
			if !keep(m) {
				continue
			}
			if g[u] == nil {
				g[u] = map[RouterID]Cost{}
			}
			g[u][v] = weigh(m)
		}
	}
	return g
}

// ComputeCSPF filters mg by the given constraints (an edge is dropped if any
// constraint is violated or any metric is non-finite/negative), then runs
// scalar Dijkstra over the remaining edges weighted by Delay.
func ComputeCSPF(mg MultiMetricGraph, src RouterID, c Constraints) *SPFTree {
	g := filterToScalar(mg, func(m EdgeMetrics) bool { return !c.violated(m) }, func(m EdgeMetrics) Cost { return m.Delay })
	return ComputeSPFTree(g, src)
}

// WeightedSumCoefficients are the linear-combination weights applied to
// each edge metric (w*Bandwidth + d*Delay + l*Loss + u*Utilization).
type WeightedSumCoefficients struct {
	Weight      Cost
	Delay       Cost
	Loss        Cost
	Utilization Cost
}

// ComputeWeightedSum filters invalid edges, combines the remaining metrics
// linearly per coeffs (w*weight + d*delay + l*loss + u*utilization, using
// Bandwidth as the generic "weight" term), and runs scalar Dijkstra.
func ComputeWeightedSum(mg MultiMetricGraph, src RouterID, coeffs WeightedSumCoefficients) *SPFTree {
	g := filterToScalar(mg, func(m EdgeMetrics) bool { return m.finite() }, func(m EdgeMetrics) Cost {
		return coeffs.Weight*m.Bandwidth + coeffs.Delay*m.Delay + coeffs.Loss*m.Loss + coeffs.Utilization*m.Utilization
	})
	return ComputeSPFTree(g, src)
}
