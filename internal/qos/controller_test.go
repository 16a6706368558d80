// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package qos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_ApplyToInterfacesUsesDefaultWhenNoOverride(t *testing.T) {
	driver := NewDryRunDriver(nil)
	c := NewController(driver, nil, &Profile{Kind: "fq_codel"})

	err := c.ApplyToInterfaces([]string{"eth0"})
	require.NoError(t, err)

	p, ok := driver.AppliedProfile("eth0")
	require.True(t, ok)
	assert.Equal(t, "fq_codel", p.Kind)
}

func TestController_PerInterfaceOverrideWins(t *testing.T) {
	driver := NewDryRunDriver(nil)
	c := NewController(driver, nil, &Profile{Kind: "fq_codel"})
	c.SetInterfaceProfile("eth1", 0, Profile{Kind: "pfifo_fast"})

	require.NoError(t, c.ApplyToInterfaces([]string{"eth0", "eth1"}))

	p, _ := driver.AppliedProfile("eth1")
	assert.Equal(t, "pfifo_fast", p.Kind)
}

func TestController_NoProfileIsNoOp(t *testing.T) {
	driver := NewDryRunDriver(nil)
	c := NewController(driver, nil, nil)
	require.NoError(t, c.ApplyToInterfaces([]string{"eth0"}))
	_, ok := driver.AppliedProfile("eth0")
	assert.False(t, ok)
}

func TestController_StatsForInterface(t *testing.T) {
	driver := NewDryRunDriver(nil)
	driver.SetBacklog("eth0", Backlog{BytesKnown: true, Bytes: 4096})
	c := NewController(driver, nil, nil)

	b, err := c.StatsForInterface("eth0")
	require.NoError(t, err)
	n, ok := b.EstimatedBytes()
	require.True(t, ok)
	assert.Equal(t, uint64(4096), n)
}
