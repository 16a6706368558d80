// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ribstate

import (
	"time"

	"grimm.is/flywall/internal/routegraph"
)

// Freshness classifies how recently a NeighborFastState record was updated.
type Freshness int

const (
	Expired Freshness = iota
	Stale
	Fresh
)

// NeighborFastStatePatch carries the subset of fast-state fields present
// on an inbound Hello; nil fields are left untouched by Merge.
type NeighborFastStatePatch struct {
	QueueLevel            *int
	InterfaceUtilization  *float64
	DelayMs               *float64
	LossRate              *float64
}

// NeighborFastState is the last-known fast-state signals for one neighbor.
type NeighborFastState struct {
	QueueLevel           *int
	InterfaceUtilization *float64
	DelayMs              *float64
	LossRate             *float64
	LearnedAt            time.Time
}

func (s NeighborFastState) age(now time.Time) time.Duration {
	if s.LearnedAt.IsZero() {
		return time.Duration(1<<62 - 1)
	}
	return now.Sub(s.LearnedAt)
}

// Classify returns this record's freshness at now given the two windows.
func (s NeighborFastState) Classify(now time.Time, freshFor, staleFor time.Duration) Freshness {
	age := s.age(now)
	switch {
	case age <= freshFor:
		return Fresh
	case age <= freshFor+staleFor:
		return Stale
	default:
		return Expired
	}
}

// NeighborStateDb holds the latest NeighborFastState per neighbor.
type NeighborStateDb struct {
	states map[routegraph.RouterID]NeighborFastState
}

// NewNeighborStateDb returns an empty database.
func NewNeighborStateDb() *NeighborStateDb {
	return &NeighborStateDb{states: map[routegraph.RouterID]NeighborFastState{}}
}

// Merge applies patch to the record for id at now, overwriting only the
// fields present in patch. Returns true iff any field actually differed.
func (db *NeighborStateDb) Merge(id routegraph.RouterID, patch NeighborFastStatePatch, now time.Time) bool {
	cur := db.states[id]
	changed := false

	if patch.QueueLevel != nil && (cur.QueueLevel == nil || *cur.QueueLevel != *patch.QueueLevel) {
		cur.QueueLevel = patch.QueueLevel
		changed = true
	}
	if patch.InterfaceUtilization != nil && (cur.InterfaceUtilization == nil || *cur.InterfaceUtilization != *patch.InterfaceUtilization) {
		cur.InterfaceUtilization = patch.InterfaceUtilization
		changed = true
	}
	if patch.DelayMs != nil && (cur.DelayMs == nil || *cur.DelayMs != *patch.DelayMs) {
		cur.DelayMs = patch.DelayMs
		changed = true
	}
	if patch.LossRate != nil && (cur.LossRate == nil || *cur.LossRate != *patch.LossRate) {
		cur.LossRate = patch.LossRate
		changed = true
	}
	cur.LearnedAt = now
	db.states[id] = cur
	return changed
}

// Get returns the raw record regardless of freshness.
func (db *NeighborStateDb) Get(id routegraph.RouterID) (NeighborFastState, bool) {
	s, ok := db.states[id]
	return s, ok
}

// GetFresh returns the record for id only if Classify(now, maxAge, 0) is
// at least Fresh (i.e. age <= maxAge).
func (db *NeighborStateDb) GetFresh(id routegraph.RouterID, now time.Time, maxAge time.Duration) (NeighborFastState, bool) {
	s, ok := db.states[id]
	if !ok {
		return NeighborFastState{}, false
	}
	if s.Classify(now, maxAge, 0) != Fresh {
		return NeighborFastState{}, false
	}
	return s, true
}
