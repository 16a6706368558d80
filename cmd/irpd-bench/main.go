// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command irpd-bench times route computation over synthetic graphs of
// configurable size, standing in for the benchmark harness the original
// daemon treated as an external collaborator rather than core logic.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"grimm.is/flywall/internal/routegraph"
)

func synthGraph(n, fanout int, seed int64) routegraph.Graph {
	rng := rand.New(rand.NewSource(seed))
	g := make(routegraph.Graph, n)
	for i := 0; i < n; i++ {
		g[routegraph.RouterID(i)] = map[routegraph.RouterID]routegraph.Cost{}
	}
	for i := 0; i < n; i++ {
		next := routegraph.RouterID((i + 1) % n)
		cost := routegraph.Cost(1 + rng.Intn(10))
		g[routegraph.RouterID(i)][next] = cost
		g[next][routegraph.RouterID(i)] = cost
	}
	for i := 0; i < n; i++ {
		for f := 0; f < fanout; f++ {
			j := routegraph.RouterID(rng.Intn(n))
			if j == routegraph.RouterID(i) {
				continue
			}
			g[routegraph.RouterID(i)][j] = routegraph.Cost(1 + rng.Intn(10))
		}
	}
	return g
}

func timeit(name string, iters int, fn func()) {
	start := time.Now()
	for i := 0; i < iters; i++ {
		fn()
	}
	elapsed := time.Since(start)
	fmt.Printf("%-20s %8d iters  %v total  %v/iter\n", name, iters, elapsed, elapsed/time.Duration(iters))
}

func main() {
	nodes := flag.Int("nodes", 500, "synthetic graph node count")
	fanout := flag.Int("fanout", 4, "average extra edges per node")
	iters := flag.Int("iters", 50, "iterations per algorithm")
	yenK := flag.Int("yen-k", 5, "k for Yen's algorithm")
	seed := flag.Int64("seed", 1, "graph generator seed")
	flag.Parse()

	g := synthGraph(*nodes, *fanout, *seed)
	src := routegraph.RouterID(0)
	dst := routegraph.RouterID(*nodes / 2)

	fmt.Printf("graph: %d nodes, fanout %d, seed %d\n", *nodes, *fanout, *seed)
	timeit("dijkstra-tree", *iters, func() { routegraph.ComputeSPFTree(g, src) })
	timeit("dijkstra-ecmp", *iters, func() { routegraph.ComputeSPFECMP(g, src) })
	timeit("bellman-ford", *iters, func() { routegraph.ComputeBellmanFord(g, src) })
	timeit("yen-ksp", *iters, func() { routegraph.ComputeYenKSP(g, src, dst, *yenK) })
}
