// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads and validates the daemon's YAML configuration:
// router identity, bind address, timers, neighbors, per-protocol
// parameters, forwarding, management surfaces, and qdisc profiles.
package config

// Config is the root of one daemon's configuration.
type Config struct {
	RouterID       uint32                            `yaml:"router_id"`
	Protocol       string                            `yaml:"protocol"`
	Bind           Bind                               `yaml:"bind"`
	Timers         Timers                             `yaml:"timers"`
	Neighbors      []Neighbor                         `yaml:"neighbors"`
	ProtocolParams map[string]map[string]interface{} `yaml:"protocol_params"`
	Forwarding     Forwarding                         `yaml:"forwarding"`
	Management     Management                         `yaml:"management"`
	Qdisc          Qdisc                              `yaml:"qdisc"`
}

// Bind is the local UDP listen address.
type Bind struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// Timers controls the daemon's tick cadence and neighbor dead interval.
type Timers struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`
	DeadIntervalMs int `yaml:"dead_interval_ms"`
}

// Neighbor is one statically configured peer.
type Neighbor struct {
	RouterID  uint32  `yaml:"router_id"`
	Address   string  `yaml:"address"`
	Port      int     `yaml:"port"`
	Cost      float64 `yaml:"cost"`
	Interface string  `yaml:"iface"`
}

// Forwarding controls whether computed routes are installed into the
// kernel routing table.
type Forwarding struct {
	Enabled             bool     `yaml:"enabled"`
	DryRun              bool     `yaml:"dry_run"`
	Table               int      `yaml:"table"`
	DestinationPrefixes []string `yaml:"destination_prefixes"`
	NextHopIPs          map[uint32]string `yaml:"next_hop_ips"`
}

// Management configures the read-only HTTP/metrics surface. GRPC is
// accepted and validated but not yet served (see DESIGN.md).
type Management struct {
	HTTP HTTPManagement `yaml:"http"`
	GRPC GRPCManagement `yaml:"grpc"`
}

// HTTPManagement configures the mgmt HTTP listener.
type HTTPManagement struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// GRPCManagement is accepted for forward compatibility; the daemon does
// not serve gRPC (see DESIGN.md).
type GRPCManagement struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// Qdisc configures the qdisc driver (enabled, dry_run), the default and
// per-interface qdisc profiles applied at startup, and a neighbor-to-interface map.
type Qdisc struct {
	Enabled          bool                     `yaml:"enabled"`
	DryRun           bool                     `yaml:"dry_run"`
	Default          *QdiscProfile            `yaml:"default"`
	PerInterface     map[string]QdiscProfile  `yaml:"per_interface"`
	NeighborInterface map[uint32]string       `yaml:"neighbor_interface"`
}

// QdiscProfile mirrors qos.Profile in config form.
type QdiscProfile struct {
	Kind   string            `yaml:"kind"`
	Handle string            `yaml:"handle"`
	Parent string            `yaml:"parent"`
	Params map[string]string `yaml:"params"`
}
