// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package mgmt serves the daemon's read-only management surface: a JSON
// snapshot endpoint and a Prometheus /metrics endpoint. It never mutates
// daemon state; the daemon loop is the sole writer of the snapshot it
// publishes here.
package mgmt

import (
	"sync"
	"time"

	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
)

// Snapshot is the full point-in-time view published by the daemon loop
// after every apply_outputs pass, per the persisted-state schema.
type Snapshot struct {
	RouterID        routegraph.RouterID             `json:"router_id"`
	Protocol        string                          `json:"protocol"`
	Now             time.Time                       `json:"now"`
	Neighbors       []ribstate.NeighborInfo          `json:"neighbors"`
	Routes          []ribstate.Route                `json:"routes"`
	FIB             []ribstate.ForwardingEntry       `json:"fib"`
	ProtocolMetrics map[string]float64               `json:"protocol_metrics"`
}

// Store holds the single most recently published Snapshot behind a
// sync.RWMutex: the daemon loop is the single writer, management
// threads are multi-readers that each get a cloned value.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore returns an empty Store.
func NewStore() *Store { return &Store{} }

// Publish atomically replaces the stored snapshot.
func (s *Store) Publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Current returns a copy of the most recently published snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
