// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package queueaware implements the three queue-delay-sensitive routing
// engines (DDR, DGR, Octopus): each merges a neighbor's fast state
// (queue level, interface utilization, delay, loss) on Hello receipt,
// samples per-neighbor queue delay on a timer (preferring a kernel
// backlog reading, falling back to a local token-bucket model), and
// picks among neighbor-rooted candidate paths by estimated completion
// time, deadline, and congestion pressure. The three variants differ
// only in their deadline, pressure threshold and whether the final pick
// among equally-preferred next hops is randomized.
package queueaware

import (
	"sort"
	"time"

	"grimm.is/flywall/internal/exchange"
	"grimm.is/flywall/internal/protocol"
	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/wire"
)

// controlArrivalBytes is the synthetic byte cost charged to the local
// token-bucket queue model for each Hello/LSA transmitted, standing in
// for the wire bytes a control message would actually occupy on the
// outgoing interface.
const controlArrivalBytes = 256.0

// fallbackPacketSizeBytes converts a kernel packet-count backlog into an
// estimated byte count when the byte count itself isn't reported.
const fallbackPacketSizeBytes = 1200.0

// Tunables are the deployment-specific knobs every queue-aware variant
// accepts; the parameters that distinguish DDR/DGR/Octopus from one
// another are fixed by their respective constructors below.
type Tunables struct {
	HelloInterval       time.Duration
	LSAInterval         time.Duration
	LSAMaxAge           time.Duration
	TriggeredMinSpacing time.Duration
	QueueSampleInterval time.Duration
	NeighborStateMaxAge time.Duration // 0 => derive from hello/sample interval
	FlowSizeBytes       float64
	LinkBandwidthBps    float64
	RNGSeed             uint64
}

type algoParams struct {
	deadlineMs           float64
	queueLevels          int
	pressureThreshold    int
	queueLevelScaleMs    float64
	randomizeSelection   bool
}

// Config is the fully-resolved configuration an Engine runs with.
type Config struct {
	Tunables
	algoParams
}

func (t Tunables) resolve() Tunables {
	if t.FlowSizeBytes <= 0 {
		t.FlowSizeBytes = 64_000.0
	}
	if t.LinkBandwidthBps <= 0 {
		t.LinkBandwidthBps = 9_600_000.0
	}
	if t.QueueSampleInterval <= 0 {
		t.QueueSampleInterval = time.Second
	}
	if t.RNGSeed == 0 {
		t.RNGSeed = 1
	}
	return t
}

// NewDDR builds the DDR variant: a 100ms deadline, pressure filtering at
// level 2, deterministic (non-randomized) selection among the preferred
// next hops.
func NewDDR(t Tunables) *Engine {
	return newEngine("ddr", t, algoParams{
		deadlineMs: 100.0, queueLevels: 4, pressureThreshold: 2,
		queueLevelScaleMs: 8.0, randomizeSelection: false,
	})
}

// NewDGR builds the DGR variant: identical to DDR except the final pick
// among equally-preferred next hops is randomized.
func NewDGR(t Tunables) *Engine {
	return newEngine("dgr", t, algoParams{
		deadlineMs: 100.0, queueLevels: 4, pressureThreshold: 2,
		queueLevelScaleMs: 8.0, randomizeSelection: true,
	})
}

// NewOctopus builds the Octopus variant: an effectively unbounded
// deadline and a pressure threshold pinned to the top queue level, so
// neither filter excludes any candidate; selection is randomized.
func NewOctopus(t Tunables) *Engine {
	const queueLevels = 4
	return newEngine("octopus", t, algoParams{
		deadlineMs: 1_000_000_000.0, queueLevels: queueLevels, pressureThreshold: queueLevels - 1,
		queueLevelScaleMs: 8.0, randomizeSelection: true,
	})
}

type routeChoice struct {
	nextHop       routegraph.RouterID
	distance      routegraph.Cost
	completionMs  float64
	pressureLevel int
}

// Engine is one queue-aware routing engine instance (DDR, DGR, or
// Octopus, depending on which constructor built it).
type Engine struct {
	name string
	cfg  Config

	scheduler *exchange.Scheduler
	lsdb      *ribstate.LinkStateDb

	lastQueueSampleAt    *time.Time
	queueDepthBytes      map[routegraph.RouterID]float64
	arrivalsSinceSample  map[routegraph.RouterID]float64
	estimatedQueueDelay  map[routegraph.RouterID]float64
	queueSampleSource    map[routegraph.RouterID]string
	neighborStates       *ribstate.NeighborStateDb

	rngState uint64
}

func newEngine(name string, t Tunables, ap algoParams) *Engine {
	t = t.resolve()
	return &Engine{
		name:                name,
		cfg:                 Config{Tunables: t, algoParams: ap},
		scheduler:           exchange.NewScheduler(t.HelloInterval, t.LSAInterval, t.LSAMaxAge, t.TriggeredMinSpacing),
		lsdb:                ribstate.NewLinkStateDb(),
		queueDepthBytes:     map[routegraph.RouterID]float64{},
		arrivalsSinceSample: map[routegraph.RouterID]float64{},
		estimatedQueueDelay: map[routegraph.RouterID]float64{},
		queueSampleSource:   map[routegraph.RouterID]string{},
		neighborStates:      ribstate.NewNeighborStateDb(),
		rngState:            t.RNGSeed,
	}
}

func (e *Engine) Name() string { return e.name }

func (e *Engine) Start(ctx protocol.Context) protocol.Outputs   { return e.drive(ctx, true) }
func (e *Engine) OnTimer(ctx protocol.Context) protocol.Outputs { return e.drive(ctx, false) }

func (e *Engine) neighborStateMaxAge() time.Duration {
	if e.cfg.NeighborStateMaxAge > 0 {
		return e.cfg.NeighborStateMaxAge
	}
	d := e.cfg.HelloInterval
	if e.cfg.QueueSampleInterval > d {
		d = e.cfg.QueueSampleInterval
	}
	d *= 3
	if d < time.Second {
		d = time.Second
	}
	return d
}

func (e *Engine) drive(ctx protocol.Context, force bool) protocol.Outputs {
	var out protocol.Outputs
	shouldRecompute := false

	if e.sampleQueueDelay(ctx) {
		shouldRecompute = true
	}

	neighbors := protocol.NeighborInfosFromLinks(ctx.Links)
	res := e.scheduler.Tick(ctx.Now, neighbors, force, e.lsdb)

	if res.HelloDue {
		out.Outbound = append(out.Outbound, e.sendHello(ctx, neighbors)...)
	}

	if res.LSAOriginated {
		e.lsdb.Upsert(ctx.RouterID, res.LSASeq, res.LocalLinks, ctx.Now)
		payload := protocol.LSAPayload(res.LocalLinks)
		lsa := exchange.NewLSAMessage(e.name, wire.KindDdrLsa, ctx.RouterID, e.scheduler.NextMsgSeq(), float64(ctx.Now.Unix()), payload)
		for _, n := range neighbors {
			out.Outbound = append(out.Outbound, protocol.Outbound{Neighbor: n.RouterID, Message: lsa})
			e.noteArrivalBytes(n.RouterID, controlArrivalBytes)
		}
		shouldRecompute = true
	}

	if res.TopologyChanged {
		shouldRecompute = true
	}
	if shouldRecompute {
		out.Routes = e.computeRoutes(ctx)
	}
	return out
}

func (e *Engine) sendHello(ctx protocol.Context, neighbors []ribstate.NeighborInfo) []protocol.Outbound {
	out := make([]protocol.Outbound, 0, len(neighbors))
	for _, n := range neighbors {
		payload := map[string]interface{}{
			"router_id":   float64(ctx.RouterID),
			"queue_level": float64(e.queueLevelForNeighbor(n.RouterID)),
		}
		msg := exchange.NewHelloMessage(e.name, ctx.RouterID, e.scheduler.NextMsgSeq(), float64(ctx.Now.Unix()), payload)
		out = append(out, protocol.Outbound{Neighbor: n.RouterID, Message: msg})
		e.noteArrivalBytes(n.RouterID, controlArrivalBytes)
	}
	return out
}

func (e *Engine) noteArrivalBytes(neighbor routegraph.RouterID, bytes float64) {
	if bytes <= 0 {
		return
	}
	e.arrivalsSinceSample[neighbor] += bytes
}

func (e *Engine) effectiveBandwidthBps() float64 {
	if e.cfg.LinkBandwidthBps <= 0 {
		return 1e-9
	}
	return e.cfg.LinkBandwidthBps
}

func (e *Engine) bytesToDelayMs(bytes float64) float64 {
	if bytes < 0 {
		bytes = 0
	}
	return 1000.0 * 8.0 * bytes / e.effectiveBandwidthBps()
}

func (e *Engine) transferDelayMs() float64 {
	flow := e.cfg.FlowSizeBytes
	if flow < 1 {
		flow = 1
	}
	return e.bytesToDelayMs(flow)
}

// sampleQueueDelay refreshes the per-neighbor queue depth/delay estimate
// at most once per QueueSampleInterval. It prefers the kernel backlog
// reading from ctx.QdiscByNeighbor; lacking one, it evolves a local
// token-bucket model: q_next = max(0, q_prev + arrivals - serviced),
// where serviced is bounded by the link's nominal byte service rate
// over the elapsed interval.
func (e *Engine) sampleQueueDelay(ctx protocol.Context) bool {
	sampleInterval := e.cfg.QueueSampleInterval
	if sampleInterval < 50*time.Millisecond {
		sampleInterval = 50 * time.Millisecond
	}
	var elapsed time.Duration
	if e.lastQueueSampleAt != nil {
		elapsed = ctx.Now.Sub(*e.lastQueueSampleAt)
		if elapsed < sampleInterval {
			return false
		}
	} else {
		elapsed = sampleInterval
	}

	changed := false
	effectiveElapsed := elapsed
	if effectiveElapsed < sampleInterval {
		effectiveElapsed = sampleInterval
	}
	linkServiceBytes := effectiveElapsed.Seconds() * e.effectiveBandwidthBps() / 8.0
	if linkServiceBytes < 1e-9 {
		linkServiceBytes = 1e-9
	}

	present := map[routegraph.RouterID]struct{}{}
	for id := range ctx.Links {
		present[id] = struct{}{}
	}
	for id := range e.queueDepthBytes {
		if _, ok := present[id]; !ok {
			delete(e.queueDepthBytes, id)
			delete(e.estimatedQueueDelay, id)
			delete(e.queueSampleSource, id)
			delete(e.arrivalsSinceSample, id)
			changed = true
		}
	}

	ids := make([]routegraph.RouterID, 0, len(ctx.Links))
	for id := range ctx.Links {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, neighborID := range ids {
		if backlog, ok := ctx.QdiscByNeighbor[neighborID]; ok {
			if bytes, known := backlog.EstimatedBytes(); known {
				delete(e.arrivalsSinceSample, neighborID)
				delay := e.bytesToDelayMs(float64(bytes))
				oldBytes, hadBytes := e.queueDepthBytes[neighborID]
				oldDelay, hadDelay := e.estimatedQueueDelay[neighborID]
				e.queueDepthBytes[neighborID] = float64(bytes)
				e.estimatedQueueDelay[neighborID] = delay
				if backlog.BytesKnown {
					e.queueSampleSource[neighborID] = "kernel_tc_bytes"
				} else {
					e.queueSampleSource[neighborID] = "kernel_tc_packets_est_bytes"
				}
				if !hadBytes || !hadDelay || absf(oldBytes-float64(bytes)) > 1e-6 || absf(oldDelay-delay) > 1e-6 {
					changed = true
				}
				continue
			}
		}

		qPrev := e.queueDepthBytes[neighborID]
		arrivals := e.arrivalsSinceSample[neighborID]
		delete(e.arrivalsSinceSample, neighborID)
		serviced := qPrev + arrivals
		if serviced > linkServiceBytes {
			serviced = linkServiceBytes
		}
		qNext := qPrev + arrivals - serviced
		if qNext < 0 {
			qNext = 0
		}
		delay := e.bytesToDelayMs(qNext)
		oldBytes, hadBytes := e.queueDepthBytes[neighborID]
		oldDelay, hadDelay := e.estimatedQueueDelay[neighborID]
		e.queueDepthBytes[neighborID] = qNext
		e.estimatedQueueDelay[neighborID] = delay
		e.queueSampleSource[neighborID] = "local_model_bytes"
		if !hadBytes || !hadDelay || absf(oldBytes-qNext) > 1e-6 || absf(oldDelay-delay) > 1e-6 {
			changed = true
		}
	}

	e.lastQueueSampleAt = &ctx.Now
	return changed
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (e *Engine) quantizeQueueDelayMs(delayMs float64) int {
	levels := e.cfg.queueLevels
	if levels <= 1 {
		return 0
	}
	scale := e.cfg.queueLevelScaleMs
	if scale < 1e-6 {
		scale = 1e-6
	}
	if delayMs < 0 {
		delayMs = 0
	}
	normalized := delayMs / scale
	if normalized > 1 {
		normalized = 1
	}
	level := int(normalized * float64(levels))
	if level >= levels {
		level = levels - 1
	}
	return level
}

func (e *Engine) queueLevelForNeighbor(neighbor routegraph.RouterID) int {
	return e.quantizeQueueDelayMs(e.estimatedQueueDelay[neighbor])
}

func (e *Engine) isHighPressure(level int) bool {
	return level > e.cfg.pressureThreshold
}

func (e *Engine) nextRandomU64() uint64 {
	e.rngState = e.rngState*6364136223846793005 + 1
	return e.rngState
}

// OnMessage merges Hello fast-state and ingests/floods DdrLsa-kind
// topology updates.
func (e *Engine) OnMessage(ctx protocol.Context, msg wire.Message) protocol.Outputs {
	if msg.Kind == wire.KindHello {
		return e.onHello(ctx, msg)
	}
	if msg.Kind != wire.KindDdrLsa {
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
		e.noteArrivalBytes(n.RouterID, controlArrivalBytes)
	}
	out.Routes = e.computeRoutes(ctx)
	return out
}

func (e *Engine) onHello(ctx protocol.Context, msg wire.Message) protocol.Outputs {
	level := 0
	if raw, ok := msg.Payload["queue_level"]; ok {
		if f, ok := raw.(float64); ok {
			level = int(f)
		}
	}
	maxLevel := e.cfg.queueLevels - 1
	if maxLevel < 0 {
		maxLevel = 0
	}
	if level > maxLevel {
		level = maxLevel
	}
	if level < 0 {
		level = 0
	}
	patch := ribstate.NeighborFastStatePatch{QueueLevel: &level}
	if v, ok := unitIntervalFromPayload(msg.Payload, "interface_utilization"); ok {
		patch.InterfaceUtilization = &v
	}
	if v, ok := nonNegativeFromPayload(msg.Payload, "delay_ms"); ok {
		patch.DelayMs = &v
	} else if v, ok := nonNegativeFromPayload(msg.Payload, "queue_delay_ms"); ok {
		patch.DelayMs = &v
	}
	if v, ok := unitIntervalFromPayload(msg.Payload, "loss_rate"); ok {
		patch.LossRate = &v
	} else if v, ok := unitIntervalFromPayload(msg.Payload, "drop_rate"); ok {
		patch.LossRate = &v
	}

	changed := e.neighborStates.Merge(routegraph.RouterID(msg.SrcRouterID), patch, ctx.Now)
	var out protocol.Outputs
	if changed {
		out.Routes = e.computeRoutes(ctx)
	}
	return out
}

func nonNegativeFromPayload(payload map[string]interface{}, key string) (float64, bool) {
	raw, ok := payload[key]
	if !ok {
		return 0, false
	}
	f, ok := raw.(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return f, true
}

func unitIntervalFromPayload(payload map[string]interface{}, key string) (float64, bool) {
	v, ok := nonNegativeFromPayload(payload, key)
	if !ok {
		return 0, false
	}
	if v > 1 {
		v = 1
	}
	return v, true
}

// computeRoutes builds a neighbor-rooted SPF forest over the flooded
// topology, evaluates each neighbor's candidate path to every
// destination by estimated completion time (path cost + that neighbor's
// queue delay + flow transfer delay), filters by deadline and by
// congestion pressure, then either deterministically picks the
// cheapest-metric survivor or randomizes uniformly among the survivors.
// Every candidate is still emitted, sorted with the selected hop first,
// so the FIB's first-wins rule for queue-aware protocols keeps exactly
// the chosen one.
func (e *Engine) computeRoutes(ctx protocol.Context) []ribstate.Route {
	g := e.lsdb.Graph()
	forest := routegraph.BuildNeighborForest(g, ctx.RouterID)
	if len(forest.Trees) == 0 {
		return nil
	}

	rootCost := map[routegraph.RouterID]routegraph.Cost{}
	for id, link := range ctx.Links {
		if _, ok := forest.Trees[id]; ok {
			rootCost[id] = link.Cost
		}
	}

	nodes := g.Nodes()
	dests := make([]routegraph.RouterID, 0, len(nodes))
	for id := range nodes {
		if id != ctx.RouterID {
			dests = append(dests, id)
		}
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })

	neighborIDs := make([]routegraph.RouterID, 0, len(forest.Trees))
	for id := range forest.Trees {
		neighborIDs = append(neighborIDs, id)
	}
	sort.Slice(neighborIDs, func(i, j int) bool { return neighborIDs[i] < neighborIDs[j] })

	var routes []ribstate.Route
	maxAge := e.neighborStateMaxAge()

	for _, dest := range dests {
		var candidates []routeChoice
		for _, neighbor := range neighborIDs {
			tree := forest.Trees[neighbor]
			nodesPath := routegraph.BuildPathViaNeighborRoot(forest, g, neighbor, dest)
			if nodesPath == nil {
				continue
			}
			var distFromNeighbor routegraph.Cost
			if neighbor == dest {
				distFromNeighbor = 0
			} else {
				d, ok := tree.Dist[dest]
				if !ok {
					continue
				}
				distFromNeighbor = d
			}
			pathCost := rootCost[neighbor] + distFromNeighbor

			pressureLevel := e.queueLevelForNeighbor(neighbor)
			if st, ok := e.neighborStates.GetFresh(neighbor, ctx.Now, maxAge); ok && st.QueueLevel != nil {
				pressureLevel = *st.QueueLevel
			}
			queueDelay := e.estimatedQueueDelay[neighbor]
			completion := pathCost + queueDelay + e.transferDelayMs()

			candidates = append(candidates, routeChoice{
				nextHop: neighbor, distance: pathCost, completionMs: completion, pressureLevel: pressureLevel,
			})
		}
		if len(candidates) == 0 {
			continue
		}

		var withinDeadline []routeChoice
		for _, c := range candidates {
			if c.completionMs <= e.cfg.deadlineMs {
				withinDeadline = append(withinDeadline, c)
			}
		}
		base := withinDeadline
		if len(base) == 0 {
			base = candidates
		}

		var lowPressure []routeChoice
		for _, c := range base {
			if !e.isHighPressure(c.pressureLevel) {
				lowPressure = append(lowPressure, c)
			}
		}
		pool := lowPressure
		if len(pool) == 0 {
			pool = base
		}

		preferred := map[routegraph.RouterID]struct{}{}
		var preferredHops []routegraph.RouterID
		for _, c := range pool {
			if _, seen := preferred[c.nextHop]; !seen {
				preferred[c.nextHop] = struct{}{}
				preferredHops = append(preferredHops, c.nextHop)
			}
		}
		sort.Slice(preferredHops, func(i, j int) bool { return preferredHops[i] < preferredHops[j] })

		var selected routegraph.RouterID
		hasSelected := false
		if e.cfg.randomizeSelection && len(preferredHops) > 1 {
			idx := int(e.nextRandomU64() % uint64(len(preferredHops)))
			selected = preferredHops[idx]
			hasSelected = true
		}

		sort.Slice(candidates, func(i, j int) bool {
			left, right := candidates[i], candidates[j]
			leftPref := rankFor(left.nextHop, selected, hasSelected, preferred)
			rightPref := rankFor(right.nextHop, selected, hasSelected, preferred)
			if leftPref != rightPref {
				return leftPref < rightPref
			}
			if left.completionMs != right.completionMs {
				return left.completionMs < right.completionMs
			}
			return left.nextHop < right.nextHop
		})

		for _, c := range candidates {
			routes = append(routes, ribstate.Route{
				Destination: dest, NextHop: c.nextHop, Metric: c.completionMs, Protocol: e.name,
			})
		}
	}

	return routes
}

func rankFor(hop, selected routegraph.RouterID, hasSelected bool, preferred map[routegraph.RouterID]struct{}) int {
	if hasSelected && hop == selected {
		return 0
	}
	if _, ok := preferred[hop]; ok {
		return 1
	}
	return 2
}

// ProtocolMetrics exposes the queue-aware engine's congestion signals
// for the management endpoint.
func (e *Engine) ProtocolMetrics() protocol.Metrics {
	m := protocol.Metrics{}
	var sum, count float64
	for _, d := range e.estimatedQueueDelay {
		sum += d
		count++
	}
	if count > 0 {
		m["mean_queue_delay_ms"] = sum / count
	}
	m["tracked_neighbors"] = count
	m["deadline_ms"] = e.cfg.deadlineMs
	m["pressure_threshold"] = float64(e.cfg.pressureThreshold)
	return m
}
