// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ospf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grimm.is/flywall/internal/protocol"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/wire"
)

func cfg() Config {
	return Config{
		HelloInterval:       10 * time.Second,
		LSAInterval:         30 * time.Second,
		LSAMaxAge:           time.Hour,
		TriggeredMinSpacing: time.Second,
	}
}

func TestOSPF_StartOriginatesLSAAndHello(t *testing.T) {
	e := New(cfg())
	ctx := protocol.Context{
		RouterID: 1,
		Now:      time.Unix(1000, 0),
		Links:    map[routegraph.RouterID]protocol.RouterLink{2: {NeighborID: 2, Cost: 5}},
	}
	out := e.Start(ctx)
	require.NotEmpty(t, out.Outbound)

	var sawLSA, sawHello bool
	for _, ob := range out.Outbound {
		assert.Equal(t, routegraph.RouterID(2), ob.Neighbor)
		switch ob.Message.Kind {
		case wire.KindOspfLsa:
			sawLSA = true
		case wire.KindHello:
			sawHello = true
		}
	}
	assert.True(t, sawLSA)
	assert.True(t, sawHello)
}

func TestOSPF_OnMessageUpsertsAndRecomputesRoutes(t *testing.T) {
	e := New(cfg())
	ctx := protocol.Context{
		RouterID: 1,
		Now:      time.Unix(1000, 0),
		Links:    map[routegraph.RouterID]protocol.RouterLink{2: {NeighborID: 2, Cost: 1}},
	}

	lsaFrom2 := wire.NewMessage("ospf", wire.KindOspfLsa, 2, 1, map[string]interface{}{
		"links": []interface{}{map[string]interface{}{"neighbor": float64(3), "cost": float64(1)}},
	}, 1000, nil)

	e.Start(ctx)
	out := e.OnMessage(ctx, lsaFrom2)
	require.NotEmpty(t, out.Routes)

	found := false
	for _, r := range out.Routes {
		if r.Destination == 3 {
			found = true
			assert.Equal(t, routegraph.RouterID(2), r.NextHop)
			assert.Equal(t, routegraph.Cost(2), r.Metric)
		}
	}
	assert.True(t, found)
}

func TestOSPF_OnMessageIgnoresStaleSeq(t *testing.T) {
	e := New(cfg())
	ctx := protocol.Context{RouterID: 1, Now: time.Unix(1000, 0), Links: map[routegraph.RouterID]protocol.RouterLink{2: {NeighborID: 2, Cost: 1}}}

	msg := wire.NewMessage("ospf", wire.KindOspfLsa, 2, 5, map[string]interface{}{"links": []interface{}{}}, 1000, nil)
	e.Start(ctx)
	out := e.OnMessage(ctx, msg)
	require.NotEmpty(t, out.Routes)

	stale := wire.NewMessage("ospf", wire.KindOspfLsa, 2, 5, map[string]interface{}{"links": []interface{}{
		map[string]interface{}{"neighbor": float64(9), "cost": float64(1)},
	}}, 1001, nil)
	out2 := e.OnMessage(ctx, stale)
	assert.Empty(t, out2.Outbound)
	assert.Empty(t, out2.Routes)
}
