// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ecmp

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
	return Config{HelloInterval: 10 * time.Second, LSAInterval: 30 * time.Second, LSAMaxAge: time.Hour, TriggeredMinSpacing: time.Second, HashSeed: 42}
}

func TestECMP_SelectsAmongEqualCostFirstHops(t *testing.T) {
	e := New(cfg())
	ctx := protocol.Context{
		RouterID: 1,
		Now:      time.Unix(0, 0),
		Links: map[routegraph.RouterID]protocol.RouterLink{
			2: {NeighborID: 2, Cost: 1},
			3: {NeighborID: 3, Cost: 1},
		},
	}
	e.Start(ctx)

	lsaFrom2 := wire.NewMessage("ecmp", wire.KindOspfLsa, 2, 1, protocol.LSAPayload(map[routegraph.RouterID]routegraph.Cost{4: 1}), 0, nil)
	e.OnMessage(ctx, lsaFrom2)
	lsaFrom3 := wire.NewMessage("ecmp", wire.KindOspfLsa, 3, 1, protocol.LSAPayload(map[routegraph.RouterID]routegraph.Cost{4: 1}), 0, nil)
	out := e.OnMessage(ctx, lsaFrom3)

	var toFour *routegraph.RouterID
	for _, r := range out.Routes {
		if r.Destination == 4 {
			nh := r.NextHop
			toFour = &nh
			assert.Equal(t, routegraph.Cost(2), r.Metric)
		}
	}
	require.NotNil(t, toFour)
	assert.Contains(t, []routegraph.RouterID{2, 3}, *toFour)
}
