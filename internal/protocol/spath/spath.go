// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package spath implements a single routing engine parameterized over
// which scalar strategy algorithm computes its routes. It shares the
// same LSDB/flooding machinery as ospf/ecmp; only BellmanFord accepts
// negative-cost edges, every other algorithm rejects them during LSA
// ingestion.
package spath

import (
	"time"

	"grimm.is/flywall/internal/exchange"
	"grimm.is/flywall/internal/protocol"
	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/strategy"
	"grimm.is/flywall/internal/wire"
)

// Config parameterizes one SPath engine instance.
type Config struct {
	HelloInterval       time.Duration
	LSAInterval         time.Duration
	LSAMaxAge           time.Duration
	TriggeredMinSpacing time.Duration
	Algorithm           strategy.Algorithm
	YenK                int
	HashSeed            uint64
}

// Engine is the SPath protocol engine.
type Engine struct {
	cfg       Config
	scheduler *exchange.Scheduler
	lsdb      *ribstate.LinkStateDb
}

// New builds an SPath engine.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:       cfg,
		scheduler: exchange.NewScheduler(cfg.HelloInterval, cfg.LSAInterval, cfg.LSAMaxAge, cfg.TriggeredMinSpacing),
		lsdb:      ribstate.NewLinkStateDb(),
	}
}

func (e *Engine) Name() string { return "spath" }

func (e *Engine) Start(ctx protocol.Context) protocol.Outputs   { return e.tick(ctx, true) }
func (e *Engine) OnTimer(ctx protocol.Context) protocol.Outputs { return e.tick(ctx, false) }

func (e *Engine) acceptsNegative() bool {
	return e.cfg.Algorithm == strategy.AlgoBellmanFord
}

func (e *Engine) tick(ctx protocol.Context, force bool) protocol.Outputs {
	neighbors := protocol.NeighborInfosFromLinks(ctx.Links)
	res := e.scheduler.Tick(ctx.Now, neighbors, force, e.lsdb)

	var out protocol.Outputs
	ts := float64(ctx.Now.Unix())

	if res.HelloDue {
		hello := exchange.NewHelloMessage("spath", ctx.RouterID, e.scheduler.NextMsgSeq(), ts, nil)
		for _, n := range neighbors {
			out.Outbound = append(out.Outbound, protocol.Outbound{Neighbor: n.RouterID, Message: hello})
		}
	}

	if res.LSAOriginated {
		e.lsdb.Upsert(ctx.RouterID, res.LSASeq, res.LocalLinks, ctx.Now)
		lsa := exchange.NewLSAMessage("spath", wire.KindOspfLsa, ctx.RouterID, uint64(res.LSASeq), ts, protocol.LSAPayload(res.LocalLinks))
		for _, n := range neighbors {
			out.Outbound = append(out.Outbound, protocol.Outbound{Neighbor: n.RouterID, Message: lsa})
		}
	}

	if res.TopologyChanged {
		out.Routes = e.computeRoutes(ctx.RouterID)
	}
	return out
}

func (e *Engine) OnMessage(ctx protocol.Context, msg wire.Message) protocol.Outputs {
	if msg.Kind != wire.KindOspfLsa {
		return protocol.Outputs{}
	}
	origin := routegraph.RouterID(msg.SrcRouterID)
	links := protocol.ParseLSAPayload(msg.Payload)

	if !e.acceptsNegative() {
		for neighbor, cost := range links {
			if cost < 0 {
				delete(links, neighbor)
			}
		}
	}

	changed := e.lsdb.Upsert(origin, int64(msg.Seq), links, ctx.Now)
	if !changed {
		return protocol.Outputs{}
	}

	neighbors := protocol.NeighborInfosFromLinks(ctx.Links)
	var out protocol.Outputs
	for _, n := range exchange.Flood(neighbors, origin) {
		out.Outbound = append(out.Outbound, protocol.Outbound{Neighbor: n.RouterID, Message: msg})
	}
	out.Routes = e.computeRoutes(ctx.RouterID)
	return out
}

func (e *Engine) computeRoutes(src routegraph.RouterID) []ribstate.Route {
	g := e.lsdb.Graph()
	entries := strategy.ComputeScalarRouteEntries(g, src, strategy.Config{
		Algorithm: e.cfg.Algorithm,
		YenK:      e.cfg.YenK,
		Selection: strategy.Selection{Kind: strategy.SelectHash, Seed: e.cfg.HashSeed},
	})
	routes := make([]ribstate.Route, 0, len(entries))
	for _, en := range entries {
		routes = append(routes, ribstate.Route{
			Destination: en.Destination,
			NextHop:     en.SelectedNextHop,
			Metric:      en.Metric,
			Protocol:    "spath",
		})
	}
	return routes
}
