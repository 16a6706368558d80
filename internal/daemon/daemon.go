// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package daemon is the event loop that binds one protocol engine to a
// UDP socket, drives it on the tick/message cadence, and applies its
// outputs: encoding and sending outbound control messages, reconciling
// the RIB/FIB, installing kernel routes, and publishing the management
// snapshot.
package daemon

import (
	"context"
	"net"
	"sort"
	"strconv"
	"time"

	"grimm.is/flywall/internal/config"
	"grimm.is/flywall/internal/errors"
	"grimm.is/flywall/internal/forwarding"
	"grimm.is/flywall/internal/logging"
	"grimm.is/flywall/internal/mgmt"
	"grimm.is/flywall/internal/protocol"
	"grimm.is/flywall/internal/qos"
	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/telemetry"
	"grimm.is/flywall/internal/wire"
)

// readBufSize bounds a single inbound UDP datagram, matching the wire
// package's own frame cap plus its length prefix.
const readBufSize = 64*1024 + 4

// maxSelectWait bounds how long one ReadFromUDP call blocks, so the loop
// wakes up often enough to notice context cancellation even when the
// next tick is far away.
const maxSelectWait = time.Second

// Daemon owns one protocol engine's UDP socket and control-plane state
// for the lifetime of the process.
type Daemon struct {
	cfg    *config.Config
	engine protocol.Engine
	logger *logging.Logger

	conn *net.UDPConn

	neighbors   *ribstate.NeighborTable
	addrByID    map[routegraph.RouterID]*net.UDPAddr
	ifaceByID   map[routegraph.RouterID]string
	rib         *ribstate.RouteTable
	fib         *ribstate.ForwardingTable

	applier  forwarding.Applier
	resolver forwarding.Resolver

	qdiscCtl *qos.Controller
	store    *mgmt.Store
	metrics  *telemetry.Metrics

	tickInterval time.Duration
	deadInterval time.Duration
}

// New builds a Daemon bound to cfg.Bind and ready to run engine. applier
// and qdiscCtl may be nil (forwarding/qdisc disabled); store and metrics
// may be nil (no management surface).
func New(cfg *config.Config, engine protocol.Engine, applier forwarding.Applier, qdiscCtl *qos.Controller, store *mgmt.Store, metrics *telemetry.Metrics, logger *logging.Logger) (*Daemon, error) {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	logger = logger.WithComponent("daemon")

	neighborInfos := make([]ribstate.NeighborInfo, 0, len(cfg.Neighbors))
	addrByID := map[routegraph.RouterID]*net.UDPAddr{}
	ifaceByID := map[routegraph.RouterID]string{}
	for _, n := range cfg.Neighbors {
		id := routegraph.RouterID(n.RouterID)
		port := n.Port
		if port == 0 {
			port = cfg.Bind.Port
		}
		addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(n.Address, itoa(port)))
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindInvalidConfig, "resolve neighbor %d address %s:%d", n.RouterID, n.Address, port)
		}
		addrByID[id] = addr
		if n.Interface != "" {
			ifaceByID[id] = n.Interface
		}
		neighborInfos = append(neighborInfos, ribstate.NeighborInfo{
			RouterID: id, Address: n.Address, Port: port, Cost: routegraph.Cost(n.Cost), InterfaceName: n.Interface,
		})
	}

	listenAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.Bind.Address, itoa(cfg.Bind.Port)))
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindInvalidConfig, "resolve bind address %s:%d", cfg.Bind.Address, cfg.Bind.Port)
	}
	conn, err := net.ListenUDP("udp", listenAddr)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindIOFatal, "bind UDP socket on %s", listenAddr)
	}

	var resolver forwarding.Resolver
	if cfg.Forwarding.Enabled {
		resolver = forwarding.Resolver{
			DestinationPrefix: destinationPrefixLookup(cfg),
			NextHopIP:         nextHopLookup(cfg),
			Table:             cfg.Forwarding.Table,
		}
	}

	return &Daemon{
		cfg: cfg, engine: engine, logger: logger, conn: conn,
		neighbors: ribstate.NewNeighborTable(neighborInfos), addrByID: addrByID, ifaceByID: ifaceByID,
		rib: ribstate.NewRouteTable(), fib: ribstate.NewForwardingTable(),
		applier: applier, resolver: resolver, qdiscCtl: qdiscCtl, store: store, metrics: metrics,
		tickInterval: time.Duration(cfg.Timers.TickIntervalMs) * time.Millisecond,
		deadInterval: time.Duration(cfg.Timers.DeadIntervalMs) * time.Millisecond,
	}, nil
}

// Close releases the UDP socket.
func (d *Daemon) Close() error { return d.conn.Close() }

func destinationPrefixLookup(cfg *config.Config) func(routegraph.RouterID) (string, bool) {
	byID := map[routegraph.RouterID]string{}
	// Without a dedicated per-router prefix table in configuration, each
	// configured neighbor's address plus /32 is the routable unit for that
	// router; destination_prefixes is not consulted, so only configured
	// neighbors become installable destinations.
	for _, n := range cfg.Neighbors {
		byID[routegraph.RouterID(n.RouterID)] = n.Address + "/32"
	}
	return func(id routegraph.RouterID) (string, bool) {
		p, ok := byID[id]
		return p, ok
	}
}

func nextHopLookup(cfg *config.Config) func(routegraph.RouterID) (string, bool) {
	byID := map[routegraph.RouterID]string{}
	for id, ip := range cfg.Forwarding.NextHopIPs {
		byID[routegraph.RouterID(id)] = ip
	}
	for _, n := range cfg.Neighbors {
		id := routegraph.RouterID(n.RouterID)
		if _, ok := byID[id]; !ok {
			byID[id] = n.Address
		}
	}
	return func(id routegraph.RouterID) (string, bool) {
		ip, ok := byID[id]
		return ip, ok
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

// Run drives the event loop until ctx is canceled. It always issues a
// final snapshot publish before returning, even on cancellation.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.publishSnapshot(time.Now())

	now := time.Now()
	nextTick := now.Add(d.tickInterval)
	d.applyOutputs(d.engine.Start(d.buildContext(now)), now)

	buf := make([]byte, readBufSize)
	for {
		if ctx.Err() != nil {
			return nil
		}

		now = time.Now()
		wait := nextTick.Sub(now)
		if wait <= 0 {
			d.runTick(nextTick)
			nextTick = nextTick.Add(d.tickInterval)
			continue
		}
		if wait > maxSelectWait {
			wait = maxSelectWait
		}

		if err := d.conn.SetReadDeadline(now.Add(wait)); err != nil {
			return errors.Wrap(err, errors.KindIOFatal, "set UDP read deadline")
		}
		n, _, err := d.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			d.logger.Warn("UDP read failed", "error", err)
			continue
		}

		d.handleDatagram(buf[:n], time.Now())
	}
}

func (d *Daemon) handleDatagram(payload []byte, now time.Time) {
	msg, err := wire.DecodeDatagram(payload)
	if err != nil {
		d.logger.Debug("dropping undecodable datagram", "error", err)
		return
	}
	if msg.Protocol != d.cfg.Protocol {
		d.logger.Debug("dropping datagram with mismatched protocol", "got", msg.Protocol, "want", d.cfg.Protocol)
		return
	}
	srcID := routegraph.RouterID(msg.SrcRouterID)
	if _, known := d.neighbors.Get(srcID); !known {
		d.logger.Debug("dropping datagram from unknown neighbor", "src_router_id", srcID)
		return
	}

	if d.neighbors.MarkSeen(srcID, now) {
		if notifier, ok := d.engine.(protocol.InterfaceNotifier); ok {
			d.applyOutputs(notifier.NotifyInterfaceUp(d.buildContext(now), srcID), now)
		}
	}

	d.applyOutputs(d.engine.OnMessage(d.buildContext(now), msg), now)
}

func (d *Daemon) runTick(now time.Time) {
	changed := d.neighbors.RefreshLiveness(now, d.deadInterval)
	if notifier, ok := d.engine.(protocol.InterfaceNotifier); ok {
		for _, id := range changed {
			info, ok := d.neighbors.Get(id)
			if !ok {
				continue
			}
			if info.IsUp {
				d.applyOutputs(notifier.NotifyInterfaceUp(d.buildContext(now), id), now)
			} else {
				d.applyOutputs(notifier.NotifyInterfaceDown(d.buildContext(now), id), now)
			}
		}
	}
	d.applyOutputs(d.engine.OnTimer(d.buildContext(now)), now)
}

func (d *Daemon) buildContext(now time.Time) protocol.Context {
	links := map[routegraph.RouterID]protocol.RouterLink{}
	for _, n := range d.neighbors.All() {
		if n.IsUp {
			links[n.RouterID] = protocol.RouterLink{NeighborID: n.RouterID, Cost: n.Cost}
		}
	}

	var backlogs map[routegraph.RouterID]qos.Backlog
	if d.qdiscCtl != nil {
		backlogs = map[routegraph.RouterID]qos.Backlog{}
		for id, iface := range d.ifaceByID {
			if b, err := d.qdiscCtl.StatsForInterface(iface); err == nil {
				backlogs[id] = b
			}
		}
	}

	var routerID routegraph.RouterID = routegraph.RouterID(d.cfg.RouterID)
	return protocol.Context{RouterID: routerID, Now: now, Links: links, QdiscByNeighbor: backlogs}
}

// applyOutputs implements apply_outputs: send messages, apply qdisc
// actions, reconcile RIB/FIB and install routes, then publish the
// snapshot.
func (d *Daemon) applyOutputs(out protocol.Outputs, now time.Time) {
	for _, ob := range out.Outbound {
		addr, ok := d.addrByID[ob.Neighbor]
		if !ok {
			continue
		}
		datagram, err := wire.EncodeDatagram(ob.Message)
		if err != nil {
			d.logger.Warn("encode outbound message failed", "neighbor", ob.Neighbor, "error", err)
			continue
		}
		if _, err := d.conn.WriteToUDP(datagram, addr); err != nil {
			d.logger.Warn("send to neighbor failed", "neighbor", ob.Neighbor, "error", err)
		}
	}

	if d.qdiscCtl != nil {
		ifaces := map[string]struct{}{}
		for _, action := range out.QdiscActions {
			if action.Interface != "" {
				ifaces[action.Interface] = struct{}{}
			}
		}
		if len(ifaces) > 0 {
			names := make([]string, 0, len(ifaces))
			for iface := range ifaces {
				names = append(names, iface)
			}
			sort.Strings(names)
			if err := d.qdiscCtl.ApplyToInterfaces(names); err != nil {
				d.logger.Warn("apply qdisc actions failed", "error", err)
			}
		}
	}

	if out.Routes != nil {
		d.rib.ReplaceProtocolRoutes(d.engine.Name(), out.Routes)
		// Sync the FIB from the engine's own ordered output, not
		// d.rib.All(): RouteTable.All() re-sorts by
		// (destination, next_hop, metric, protocol) for stable snapshot
		// display, which would discard the selected-first ordering the
		// queue-aware engines rely on for first-wins FIB selection.
		fibChanged := d.fib.SyncFromRoutes(out.Routes)
		if fibChanged && d.applier != nil && d.cfg.Forwarding.Enabled {
			d.installFIB()
		}
	}

	d.publishSnapshot(now)
}

func (d *Daemon) installFIB() {
	for _, entry := range d.fib.All() {
		e, ok := d.resolver.Resolve(entry.Destination, entry.NextHop)
		if !ok {
			continue
		}
		if err := d.applier.Replace(e); err != nil {
			d.logger.Warn("install FIB entry failed", "destination", entry.Destination, "error", err)
			if d.metrics != nil {
				d.metrics.ApplyFailures.Inc()
			}
			continue
		}
		if d.metrics != nil {
			d.metrics.RoutesInstalled.Inc()
		}
	}
}

func (d *Daemon) publishSnapshot(now time.Time) {
	metricsMap := map[string]float64{}
	if provider, ok := d.engine.(protocol.MetricsProvider); ok {
		for k, v := range provider.ProtocolMetrics() {
			metricsMap[k] = v
		}
	}

	if d.store != nil {
		d.store.Publish(mgmt.Snapshot{
			RouterID: routegraph.RouterID(d.cfg.RouterID), Protocol: d.cfg.Protocol, Now: now,
			Neighbors: d.neighbors.All(), Routes: d.rib.All(), FIB: d.fib.All(), ProtocolMetrics: metricsMap,
		})
	}

	if d.metrics != nil {
		up, down := 0, 0
		for _, n := range d.neighbors.All() {
			if n.IsUp {
				up++
			} else {
				down++
			}
		}
		d.metrics.NeighborsUp.Set(float64(up))
		d.metrics.NeighborsDown.Set(float64(down))
		d.metrics.RIBSize.Set(float64(len(d.rib.All())))
		d.metrics.FIBSize.Set(float64(len(d.fib.All())))
		// Per-neighbor queue delay in milliseconds is only known inside
		// the queue-aware engine (it alone holds the bandwidth used to
		// convert backlog bytes to a delay estimate); surfaced via
		// ProtocolMetrics above rather than recomputed here.
	}
}
