// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grimm.is/flywall/internal/config"
	"grimm.is/flywall/internal/forwarding"
	"grimm.is/flywall/internal/logging"
	"grimm.is/flywall/internal/mgmt"
	"grimm.is/flywall/internal/protocol"
	"grimm.is/flywall/internal/protocol/ospf"
	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/wire"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		RouterID: 1,
		Protocol: "ospf",
		Bind:     config.Bind{Address: "127.0.0.1", Port: 0},
		Timers:   config.Timers{TickIntervalMs: 50, DeadIntervalMs: 200},
		Neighbors: []config.Neighbor{
			{RouterID: 2, Address: "127.0.0.1", Port: 19999, Cost: 1},
		},
		Forwarding: config.Forwarding{
			Enabled: true, DryRun: true,
			NextHopIPs: map[uint32]string{2: "127.0.0.1"},
		},
	}
}

func newTestDaemon(t *testing.T) (*Daemon, *forwarding.DryRunApplier, *mgmt.Store) {
	t.Helper()
	cfg := testConfig(t)
	engine := ospf.New(ospf.Config{HelloInterval: time.Second, LSAInterval: 3 * time.Second, LSAMaxAge: 15 * time.Second, TriggeredMinSpacing: time.Second})
	applier := forwarding.NewDryRunApplier(nil)
	store := mgmt.NewStore()
	logger := logging.New(logging.DefaultConfig())

	d, err := New(cfg, engine, applier, nil, store, nil, logger)
	require.NoError(t, err)
	return d, applier, store
}

func TestDaemon_DropsMessageFromUnknownNeighbor(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	defer d.Close()

	msg := wire.NewMessage("ospf", wire.KindHello, 9, 1, map[string]interface{}{"router_id": float64(9)}, 0, nil)
	body, err := wire.EncodeDatagram(msg)
	require.NoError(t, err)

	d.handleDatagram(body, time.Now())
	_, up := d.neighbors.Get(9)
	assert.False(t, up)
}

func TestDaemon_MarkSeenTransitionsNeighborUp(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	defer d.Close()

	msg := wire.NewMessage("ospf", wire.KindHello, 2, 1, map[string]interface{}{"router_id": float64(2)}, 0, nil)
	body, err := wire.EncodeDatagram(msg)
	require.NoError(t, err)

	d.handleDatagram(body, time.Now())
	info, ok := d.neighbors.Get(2)
	require.True(t, ok)
	assert.True(t, info.IsUp)
}

func TestDaemon_ApplyOutputsInstallsFIBAndPublishesSnapshot(t *testing.T) {
	d, applier, store := newTestDaemon(t)
	defer d.Close()

	now := time.Now()
	// Bring neighbor 2 up first, then start the engine: ospf.Start
	// originates this router's own LSA from ctx.Links, which at that
	// point already reflects the up neighbor. That single-hop LSA is
	// enough for Dijkstra from router 1 to find a route to router 2.
	hello := wire.NewMessage("ospf", wire.KindHello, 2, 1, map[string]interface{}{"router_id": float64(2)}, 0, nil)
	helloBody, err := wire.EncodeDatagram(hello)
	require.NoError(t, err)
	d.handleDatagram(helloBody, now)

	d.applyOutputs(d.engine.Start(d.buildContext(now)), now)

	entry, ok := d.fib.Get(2)
	require.True(t, ok)
	assert.Equal(t, routegraph.RouterID(2), entry.NextHop)

	applied, ok := applier.Applied(2)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", applied.NextHop.String())

	snap := store.Current()
	assert.Equal(t, "ospf", snap.Protocol)
	assert.NotEmpty(t, snap.FIB)
}

// TestDaemon_FIBKeepsEngineSelectedOrderForFirstWinsProtocol guards
// against syncing the FIB from the RIB's re-sorted view: RouteTable.All()
// sorts by (destination, next_hop, metric, protocol), which would pick
// next_hop=2 here even though the engine selected next_hop=3 first. The
// FIB must be synced from the engine's own ordered out.Routes.
func TestDaemon_FIBKeepsEngineSelectedOrderForFirstWinsProtocol(t *testing.T) {
	d, applier, _ := newTestDaemon(t)
	defer d.Close()
	d.cfg.Protocol = "ddr"

	routes := []ribstate.Route{
		{Destination: 4, NextHop: 3, Metric: 5, Protocol: "ddr"},
		{Destination: 4, NextHop: 2, Metric: 5, Protocol: "ddr"},
	}
	d.applyOutputs(protocol.Outputs{Routes: routes}, time.Now())

	entry, ok := d.fib.Get(4)
	require.True(t, ok)
	assert.Equal(t, routegraph.RouterID(3), entry.NextHop)
	_, applied := applier.Applied(4)
	assert.False(t, applied, "destination 4 is not a configured neighbor, so it has no prefix and install is a no-op here")
}
