// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package forwarding

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grimm.is/flywall/internal/routegraph"
)

func TestResolver_ResolveBuildsEntry(t *testing.T) {
	r := Resolver{
		DestinationPrefix: func(id routegraph.RouterID) (string, bool) {
			if id == 4 {
				return "10.0.4.0/24", true
			}
			return "", false
		},
		NextHopIP: func(id routegraph.RouterID) (string, bool) {
			if id == 2 {
				return "10.0.0.2", true
			}
			return "", false
		},
		Table: 254,
	}

	e, ok := r.Resolve(4, 2)
	require.True(t, ok)
	assert.Equal(t, "10.0.4.0/24", e.Prefix.String())
	assert.Equal(t, "10.0.0.2", e.NextHop.String())
	assert.Equal(t, 254, e.Table)
}

func TestResolver_ResolveFailsOnUnknownDestination(t *testing.T) {
	r := Resolver{
		DestinationPrefix: func(routegraph.RouterID) (string, bool) { return "", false },
		NextHopIP:         func(routegraph.RouterID) (string, bool) { return "10.0.0.2", true },
	}
	_, ok := r.Resolve(9, 2)
	assert.False(t, ok)
}

func TestDryRunApplier_RecordsReplaceAndDelete(t *testing.T) {
	a := NewDryRunApplier(nil)
	_, cidr, err := net.ParseCIDR("10.0.4.0/24")
	require.NoError(t, err)
	entry := Entry{Destination: 4, Prefix: cidr, NextHop: net.ParseIP("10.0.0.2"), Table: 254}

	require.NoError(t, a.Replace(entry))
	got, ok := a.Applied(4)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	require.NoError(t, a.Delete(entry))
	_, ok = a.Applied(4)
	assert.False(t, ok)
}
