// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package routegraph

import (
	"math/rand"
	"testing"
)

// synthGraph builds a connected random graph of n nodes with degree
// roughly equal to fanout, deterministic for a given seed.
func synthGraph(n, fanout int, seed int64) Graph {
	rng := rand.New(rand.NewSource(seed))
	g := make(Graph, n)
	for i := 0; i < n; i++ {
		g[RouterID(i)] = map[RouterID]Cost{}
	}
	// ring backbone guarantees connectivity regardless of fanout.
	for i := 0; i < n; i++ {
		next := RouterID((i + 1) % n)
		cost := Cost(1 + rng.Intn(10))
		g[RouterID(i)][next] = cost
		g[next][RouterID(i)] = cost
	}
	for i := 0; i < n; i++ {
		for f := 0; f < fanout; f++ {
			j := RouterID(rng.Intn(n))
			if j == RouterID(i) {
				continue
			}
			cost := Cost(1 + rng.Intn(10))
			g[RouterID(i)][j] = cost
		}
	}
	return g
}

func BenchmarkComputeSPFTree(b *testing.B) {
	g := synthGraph(500, 4, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeSPFTree(g, RouterID(0))
	}
}

func BenchmarkComputeSPFECMP(b *testing.B) {
	g := synthGraph(500, 4, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeSPFECMP(g, RouterID(0))
	}
}

func BenchmarkComputeYenKSP(b *testing.B) {
	g := synthGraph(200, 4, 2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeYenKSP(g, RouterID(0), RouterID(100), 5)
	}
}

func BenchmarkBellmanFord(b *testing.B) {
	g := synthGraph(300, 4, 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeBellmanFord(g, RouterID(0))
	}
}
