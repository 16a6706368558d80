// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topk

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
		HelloInterval: 10 * time.Second, LSAInterval: 30 * time.Second, LSAMaxAge: time.Hour,
		TriggeredMinSpacing: time.Second, K: 2, SelectionHoldTime: 30 * time.Second,
		ExploreProbability: 0, RNGSeed: 7,
	}
}

func buildDiamond(e *Engine, ctx protocol.Context) protocol.Outputs {
	e.Start(ctx)
	lsaFrom2 := wire.NewMessage("topk", wire.KindOspfLsa, 2, 1, protocol.LSAPayload(map[routegraph.RouterID]routegraph.Cost{4: 1}), 0, nil)
	e.OnMessage(ctx, lsaFrom2)
	lsaFrom3 := wire.NewMessage("topk", wire.KindOspfLsa, 3, 1, protocol.LSAPayload(map[routegraph.RouterID]routegraph.Cost{4: 1}), 0, nil)
	return e.OnMessage(ctx, lsaFrom3)
}

func TestTopK_StickySelectionHeldAcrossRecompute(t *testing.T) {
	e := New(cfg())
	ctx := protocol.Context{
		RouterID: 1,
		Now:      time.Unix(0, 0),
		Links:    map[routegraph.RouterID]protocol.RouterLink{2: {NeighborID: 2, Cost: 1}, 3: {NeighborID: 3, Cost: 1}},
	}
	out := buildDiamond(e, ctx)

	var first routegraph.RouterID
	for _, r := range out.Routes {
		if r.Destination == 4 {
			first = r.NextHop
		}
	}
	require.NotZero(t, first)

	ctx.Now = ctx.Now.Add(time.Second)
	out2 := e.computeRoutes(ctx)
	var second routegraph.RouterID
	for _, r := range out2 {
		if r.Destination == 4 {
			second = r.NextHop
		}
	}
	assert.Equal(t, first, second)
}

func TestTopK_PrunesMemoryForInactiveDestinations(t *testing.T) {
	e := New(cfg())
	ctx := protocol.Context{RouterID: 1, Now: time.Unix(0, 0), Links: map[routegraph.RouterID]protocol.RouterLink{2: {NeighborID: 2, Cost: 1}}}
	lsa := wire.NewMessage("topk", wire.KindOspfLsa, 2, 1, protocol.LSAPayload(map[routegraph.RouterID]routegraph.Cost{9: 1}), 0, nil)
	e.Start(ctx)
	e.OnMessage(ctx, lsa)
	assert.Contains(t, e.memory, routegraph.RouterID(9))

	withdraw := wire.NewMessage("topk", wire.KindOspfLsa, 2, 2, protocol.LSAPayload(map[routegraph.RouterID]routegraph.Cost{}), 0, nil)
	e.OnMessage(ctx, withdraw)
	assert.NotContains(t, e.memory, routegraph.RouterID(9))
}
