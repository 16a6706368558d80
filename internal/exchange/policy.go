// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package exchange implements the control-plane exchange scheduler: Hello
// and LSA origination timing, and flood replication. It holds its own
// sequence counters and per-channel Hello/LSA policy state, and is driven once
// per daemon tick by the active protocol engine.
package exchange

import "time"

// Policy decides whether an event is due at a given instant.
type Policy interface {
	// Due reports whether the policy fires at now, and if so records the
	// firing time as its new baseline.
	Due(now time.Time) bool
}

// periodicPolicy fires whenever at least Interval has elapsed since the
// last firing.
type periodicPolicy struct {
	interval time.Duration
	last     time.Time
}

// NewPeriodic returns a policy that fires every interval.
func NewPeriodic(interval time.Duration) Policy {
	return &periodicPolicy{interval: interval}
}

func (p *periodicPolicy) Due(now time.Time) bool {
	if !p.last.IsZero() && now.Sub(p.last) < p.interval {
		return false
	}
	p.last = now
	return true
}

// NewHybrid returns a policy usable for both the periodic check (Due) and
// the triggered check (TriggerAllowed).
func NewHybrid(interval, minSpacing time.Duration) *HybridPolicy {
	return &HybridPolicy{periodic: &periodicPolicy{interval: interval}, minSpacing: minSpacing}
}

// HybridPolicy exposes both the periodic and triggered sub-policies.
type HybridPolicy struct {
	periodic    *periodicPolicy
	minSpacing  time.Duration
	lastTrigger time.Time
}

// Due reports whether the periodic cadence is due.
func (h *HybridPolicy) Due(now time.Time) bool {
	return h.periodic.Due(now)
}

// TriggerAllowed reports whether a triggered firing is allowed at now
// (i.e. at least minSpacing has elapsed since the last triggered firing),
// and if so records now as the new baseline.
func (h *HybridPolicy) TriggerAllowed(now time.Time) bool {
	if !h.lastTrigger.IsZero() && now.Sub(h.lastTrigger) < h.minSpacing {
		return false
	}
	h.lastTrigger = now
	return true
}
