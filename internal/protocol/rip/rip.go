// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package rip implements the distance-vector engine: per-neighbor
// advertised vectors with split-horizon or poison-reverse, periodic
// origination, and expiry of stale neighbor vectors.
package rip

import (
	"sort"
	"time"

	"grimm.is/flywall/internal/protocol"
	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/wire"
)

// Config parameterizes one RIP engine instance.
type Config struct {
	UpdateInterval   time.Duration
	NeighborTimeout  time.Duration
	InfinityMetric   routegraph.Cost
	PoisonReverse    bool
}

type advertised struct {
	entries  map[routegraph.RouterID]routegraph.Cost
	lastSeen time.Time
}

// Engine is the RIP distance-vector protocol engine.
type Engine struct {
	cfg            Config
	fromNeighbor   map[routegraph.RouterID]advertised
	lastOriginated time.Time
	msgSeq         uint64
}

// New builds a RIP engine.
func New(cfg Config) *Engine {
	if cfg.InfinityMetric == 0 {
		cfg.InfinityMetric = 16
	}
	return &Engine{cfg: cfg, fromNeighbor: map[routegraph.RouterID]advertised{}}
}

func (e *Engine) Name() string { return "rip" }

func (e *Engine) Start(ctx protocol.Context) protocol.Outputs {
	return e.originate(ctx)
}

func (e *Engine) OnTimer(ctx protocol.Context) protocol.Outputs {
	e.expireStale(ctx)

	var out protocol.Outputs
	if ctx.Now.Sub(e.lastOriginated) >= e.cfg.UpdateInterval {
		out = e.originate(ctx)
	} else {
		out.Routes = e.computeRoutes(ctx)
	}
	return out
}

func (e *Engine) expireStale(ctx protocol.Context) {
	for id, adv := range e.fromNeighbor {
		_, up := ctx.Links[id]
		if !up || ctx.Now.Sub(adv.lastSeen) > e.cfg.NeighborTimeout {
			delete(e.fromNeighbor, id)
		}
	}
}

func (e *Engine) OnMessage(ctx protocol.Context, msg wire.Message) protocol.Outputs {
	if msg.Kind != wire.KindRipUpdate {
		return protocol.Outputs{}
	}
	sender := routegraph.RouterID(msg.SrcRouterID)
	if _, up := ctx.Links[sender]; !up {
		return protocol.Outputs{}
	}

	entries := map[routegraph.RouterID]routegraph.Cost{}
	raw, _ := msg.Payload["entries"].([]interface{})
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		dst, ok1 := m["destination"].(float64)
		metric, ok2 := m["metric"].(float64)
		if !ok1 || !ok2 {
			continue
		}
		entries[routegraph.RouterID(dst)] = routegraph.Cost(metric)
	}
	e.fromNeighbor[sender] = advertised{entries: entries, lastSeen: ctx.Now}

	return protocol.Outputs{Routes: e.computeRoutes(ctx)}
}

// computeRoutes recomputes the best (metric, next_hop) candidate for
// every destination reachable either directly or via an up neighbor's
// advertised vector.
func (e *Engine) computeRoutes(ctx protocol.Context) []ribstate.Route {
	best := map[routegraph.RouterID]ribstate.Route{}

	consider := func(dst, nextHop routegraph.RouterID, metric routegraph.Cost) {
		if dst == ctx.RouterID {
			return
		}
		if metric > e.cfg.InfinityMetric {
			metric = e.cfg.InfinityMetric
		}
		cur, ok := best[dst]
		if !ok || metric < cur.Metric || (metric == cur.Metric && nextHop < cur.NextHop) {
			best[dst] = ribstate.Route{Destination: dst, NextHop: nextHop, Metric: metric, Protocol: "rip"}
		}
	}

	for id, link := range ctx.Links {
		consider(id, id, link.Cost)
	}
	for neighbor, adv := range e.fromNeighbor {
		link, up := ctx.Links[neighbor]
		if !up {
			continue
		}
		for dst, metric := range adv.entries {
			if dst == ctx.RouterID {
				continue
			}
			consider(dst, neighbor, metric+link.Cost)
		}
	}

	out := make([]ribstate.Route, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Destination < out[j].Destination })
	return out
}

func (e *Engine) originate(ctx protocol.Context) protocol.Outputs {
	e.lastOriginated = ctx.Now
	routes := e.computeRoutes(ctx)
	routesByDst := map[routegraph.RouterID]ribstate.Route{}
	for _, r := range routes {
		routesByDst[r.Destination] = r
	}

	var out protocol.Outputs
	out.Routes = routes
	ts := float64(ctx.Now.Unix())

	for neighborID := range ctx.Links {
		entries := make([]interface{}, 0, len(routes)+1)
		for dst, r := range routesByDst {
			metric := r.Metric
			if r.NextHop == neighborID {
				if !e.cfg.PoisonReverse {
					continue // split horizon: omit
				}
				metric = e.cfg.InfinityMetric // poison reverse
			}
			entries = append(entries, map[string]interface{}{"destination": float64(dst), "metric": float64(metric)})
		}
		e.msgSeq++
		msg := wire.NewMessage("rip", wire.KindRipUpdate, ctx.RouterID, e.msgSeq, map[string]interface{}{"entries": entries}, ts, nil)
		out.Outbound = append(out.Outbound, protocol.Outbound{Neighbor: neighborID, Message: msg})
	}
	return out
}
