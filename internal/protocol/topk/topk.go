// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package topk implements Yen k-shortest-paths exploration with sticky
// next-hop selection: a chosen next hop is kept across recomputes until
// its hold time expires, at which point the engine either explores a
// random alternative or falls back to the best-metric candidate.
package topk

import (
	"sort"
	"time"

	"grimm.is/flywall/internal/exchange"
	"grimm.is/flywall/internal/protocol"
	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/wire"
)

// Config parameterizes one Top-K engine instance.
type Config struct {
	HelloInterval       time.Duration
	LSAInterval         time.Duration
	LSAMaxAge           time.Duration
	TriggeredMinSpacing time.Duration
	K                   int
	SelectionHoldTime   time.Duration
	ExploreProbability  float64
	RNGSeed             uint64
}

type selection struct {
	nextHop    routegraph.RouterID
	selectedAt time.Time
}

// Engine is the Top-K exploration protocol engine.
type Engine struct {
	cfg       Config
	scheduler *exchange.Scheduler
	lsdb      *ribstate.LinkStateDb
	memory    map[routegraph.RouterID]selection
	rngState  uint64
}

// New builds a Top-K engine.
func New(cfg Config) *Engine {
	if cfg.K <= 0 {
		cfg.K = 3
	}
	seed := cfg.RNGSeed
	if seed == 0 {
		seed = 1
	}
	return &Engine{
		cfg:       cfg,
		scheduler: exchange.NewScheduler(cfg.HelloInterval, cfg.LSAInterval, cfg.LSAMaxAge, cfg.TriggeredMinSpacing),
		lsdb:      ribstate.NewLinkStateDb(),
		memory:    map[routegraph.RouterID]selection{},
		rngState:  seed,
	}
}

func (e *Engine) Name() string { return "topk" }

func (e *Engine) Start(ctx protocol.Context) protocol.Outputs   { return e.tick(ctx, true) }
func (e *Engine) OnTimer(ctx protocol.Context) protocol.Outputs { return e.tick(ctx, false) }

func (e *Engine) tick(ctx protocol.Context, force bool) protocol.Outputs {
	neighbors := protocol.NeighborInfosFromLinks(ctx.Links)
	res := e.scheduler.Tick(ctx.Now, neighbors, force, e.lsdb)

	var out protocol.Outputs
	ts := float64(ctx.Now.Unix())

	if res.HelloDue {
		hello := exchange.NewHelloMessage("topk", ctx.RouterID, e.scheduler.NextMsgSeq(), ts, nil)
		for _, n := range neighbors {
			out.Outbound = append(out.Outbound, protocol.Outbound{Neighbor: n.RouterID, Message: hello})
		}
	}

	if res.LSAOriginated {
		e.lsdb.Upsert(ctx.RouterID, res.LSASeq, res.LocalLinks, ctx.Now)
		lsa := exchange.NewLSAMessage("topk", wire.KindOspfLsa, ctx.RouterID, uint64(res.LSASeq), ts, protocol.LSAPayload(res.LocalLinks))
		for _, n := range neighbors {
			out.Outbound = append(out.Outbound, protocol.Outbound{Neighbor: n.RouterID, Message: lsa})
		}
	}

	if res.TopologyChanged {
		out.Routes = e.computeRoutes(ctx)
	}
	return out
}

func (e *Engine) OnMessage(ctx protocol.Context, msg wire.Message) protocol.Outputs {
	if msg.Kind != wire.KindOspfLsa {
		return protocol.Outputs{}
	}
	origin := routegraph.RouterID(msg.SrcRouterID)
	links := protocol.ParseLSAPayload(msg.Payload)
	changed := e.lsdb.Upsert(origin, int64(msg.Seq), links, ctx.Now)
	if !changed {
		return protocol.Outputs{}
	}

	neighbors := protocol.NeighborInfosFromLinks(ctx.Links)
	var out protocol.Outputs
	for _, n := range exchange.Flood(neighbors, origin) {
		out.Outbound = append(out.Outbound, protocol.Outbound{Neighbor: n.RouterID, Message: msg})
	}
	out.Routes = e.computeRoutes(ctx)
	return out
}

// nextRand01 is the shared queue-aware/top-k LCG: deterministic given seed.
func (e *Engine) nextRand01() float64 {
	e.rngState = e.rngState*6364136223846793005 + 1
	return float64(e.rngState>>11) / float64(uint64(1)<<53)
}

type candidate struct {
	nextHop routegraph.RouterID
	cost    routegraph.Cost
}

func (e *Engine) computeRoutes(ctx protocol.Context) []ribstate.Route {
	g := e.lsdb.Graph()
	nodes := g.Nodes()

	active := map[routegraph.RouterID]struct{}{}
	var out []ribstate.Route

	dests := make([]routegraph.RouterID, 0, len(nodes))
	for dst := range nodes {
		if dst != ctx.RouterID {
			dests = append(dests, dst)
		}
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })

	for _, dst := range dests {
		paths := routegraph.ComputeYenKSP(g, ctx.RouterID, dst, e.cfg.K)
		if len(paths) == 0 {
			continue
		}
		active[dst] = struct{}{}

		byHop := map[routegraph.RouterID]routegraph.Cost{}
		for _, p := range paths {
			if len(p.Nodes) < 2 {
				continue
			}
			hop := p.Nodes[1]
			if cur, ok := byHop[hop]; !ok || p.Cost < cur {
				byHop[hop] = p.Cost
			}
		}
		if len(byHop) == 0 {
			continue
		}
		cands := make([]candidate, 0, len(byHop))
		for hop, cost := range byHop {
			cands = append(cands, candidate{nextHop: hop, cost: cost})
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].cost != cands[j].cost {
				return cands[i].cost < cands[j].cost
			}
			return cands[i].nextHop < cands[j].nextHop
		})

		selected := e.selectNextHop(dst, ctx.Now, cands)
		metric := cands[0].cost
		for _, c := range cands {
			if c.nextHop == selected {
				metric = c.cost
				break
			}
		}
		out = append(out, ribstate.Route{Destination: dst, NextHop: selected, Metric: metric, Protocol: "topk"})
	}

	for dst := range e.memory {
		if _, ok := active[dst]; !ok {
			delete(e.memory, dst)
		}
	}
	return out
}

func (e *Engine) selectNextHop(dst routegraph.RouterID, now time.Time, cands []candidate) routegraph.RouterID {
	if mem, ok := e.memory[dst]; ok && now.Sub(mem.selectedAt) < e.cfg.SelectionHoldTime {
		for _, c := range cands {
			if c.nextHop == mem.nextHop {
				return mem.nextHop
			}
		}
	}

	var chosen routegraph.RouterID
	if e.cfg.ExploreProbability > 0 && e.nextRand01() < e.cfg.ExploreProbability && len(cands) > 1 {
		idx := int(e.nextRand01() * float64(len(cands)))
		if idx >= len(cands) {
			idx = len(cands) - 1
		}
		chosen = cands[idx].nextHop
	} else {
		chosen = cands[0].nextHop
	}

	e.memory[dst] = selection{nextHop: chosen, selectedAt: now}
	return chosen
}
