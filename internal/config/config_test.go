// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
router_id: 1
protocol: ospf
bind:
  address: 0.0.0.0
  port: 9000
timers:
  tick_interval_ms: 1000
  dead_interval_ms: 4000
neighbors:
  - router_id: 2
    address: 10.0.0.2
    port: 9000
    cost: 1
forwarding:
  enabled: true
  dry_run: true
  destination_prefixes:
    - 10.0.0.0/8
management:
  http:
    enabled: true
    address: 127.0.0.1
    port: 8080
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "irpd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadFile_ValidConfig(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cfg.RouterID)
	assert.Equal(t, "ospf", cfg.Protocol)
	assert.Equal(t, 9000, cfg.Bind.Port)
	require.Len(t, cfg.Neighbors, 1)
	assert.Equal(t, uint32(2), cfg.Neighbors[0].RouterID)
}

func TestLoadFile_RejectsBadProtocol(t *testing.T) {
	path := writeTemp(t, `
router_id: 1
protocol: nonsense
bind: {address: 0.0.0.0, port: 9000}
`)
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_RejectsDuplicateNeighbor(t *testing.T) {
	path := writeTemp(t, `
router_id: 1
protocol: rip
bind: {address: 0.0.0.0, port: 9000}
neighbors:
  - {router_id: 2, address: 10.0.0.2}
  - {router_id: 2, address: 10.0.0.3}
`)
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestValidate_WarnsOnShortDeadInterval(t *testing.T) {
	c := Config{
		RouterID: 1, Protocol: "ecmp",
		Bind:   Bind{Address: "0.0.0.0", Port: 9000},
		Timers: Timers{TickIntervalMs: 1000, DeadIntervalMs: 1000},
	}
	warnings, err := c.Validate()
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
}
