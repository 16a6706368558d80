// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package exchange

import (
	"reflect"
	"time"

	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/wire"
)

// TickResult is what one scheduler tick produces for the caller to
// originate and flood.
type TickResult struct {
	HelloDue         bool
	LocalLinks       map[routegraph.RouterID]routegraph.Cost
	LSAOriginated    bool
	LSASeq           int64
	TopologyChanged  bool
}

// Scheduler is the LinkStateControlPlane exchange scheduler: it tracks
// origination cadence and sequence counters shared across the Hello/LSA
// channels of one protocol instance.
type Scheduler struct {
	helloInterval time.Duration
	lsaInterval   time.Duration
	lsaMaxAge     time.Duration
	minSpacing    time.Duration

	helloPolicy *periodicPolicy
	lsaHybrid   *HybridPolicy

	lsaSeq int64
	msgSeq uint64

	lastLinksSnapshot map[routegraph.RouterID]routegraph.Cost
}

// NewScheduler builds a scheduler with the given cadences.
func NewScheduler(helloInterval, lsaInterval, lsaMaxAge, triggeredMinSpacing time.Duration) *Scheduler {
	return &Scheduler{
		helloInterval: helloInterval,
		lsaInterval:   lsaInterval,
		lsaMaxAge:     lsaMaxAge,
		minSpacing:    triggeredMinSpacing,
		helloPolicy:   &periodicPolicy{interval: helloInterval},
		lsaHybrid:     NewHybrid(lsaInterval, triggeredMinSpacing),
	}
}

// NextMsgSeq returns the next monotonic per-sender message sequence.
func (s *Scheduler) NextMsgSeq() uint64 {
	s.msgSeq++
	return s.msgSeq
}

// NextLSASeq returns the next strictly-increasing LSA sequence.
func (s *Scheduler) NextLSASeq() int64 {
	s.lsaSeq++
	return s.lsaSeq
}

// LSASeq returns the current LSA sequence without advancing it.
func (s *Scheduler) LSASeq() int64 { return s.lsaSeq }

// Tick runs one scheduler pass: computes whether Hello is due, derives
// the local-links snapshot from neighbors filtered by IsUp, and decides
// whether an LSA should originate per the force/periodic/triggered rules.
// lsdb is age-out checked as part of computing TopologyChanged. Returns
// the decision; callers are responsible for building payloads, calling
// NextLSASeq/NextMsgSeq, and upserting the LSDB when LSAOriginated.
func (s *Scheduler) Tick(now time.Time, neighbors []ribstate.NeighborInfo, forceLSA bool, lsdb *ribstate.LinkStateDb) TickResult {
	res := TickResult{}

	res.HelloDue = s.helloPolicy.Due(now)

	links := map[routegraph.RouterID]routegraph.Cost{}
	for _, n := range neighbors {
		if n.IsUp {
			links[n.RouterID] = n.Cost
		}
	}
	res.LocalLinks = links

	periodicDue := s.lsaHybrid.Due(now)
	triggeredDue := !reflect.DeepEqual(links, s.lastLinksSnapshot) && s.lsaHybrid.TriggerAllowed(now)

	originate := forceLSA || periodicDue || triggeredDue
	if originate {
		res.LSAOriginated = true
		res.LSASeq = s.NextLSASeq()
		s.lastLinksSnapshot = cloneLinks(links)
	}

	agedOut := false
	if lsdb != nil {
		agedOut = lsdb.AgeOut(now, s.lsaMaxAge)
	}
	res.TopologyChanged = originate || agedOut

	return res
}

func cloneLinks(in map[routegraph.RouterID]routegraph.Cost) map[routegraph.RouterID]routegraph.Cost {
	out := make(map[routegraph.RouterID]routegraph.Cost, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// NewHelloMessage builds a Hello wire message for this router.
func NewHelloMessage(protocol string, src routegraph.RouterID, seq uint64, ts float64, payload map[string]interface{}) wire.Message {
	return wire.NewMessage(protocol, wire.KindHello, src, seq, payload, ts, nil)
}

// NewLSAMessage builds an LSA wire message of the given kind (OspfLsa or
// DdrLsa) for this router.
func NewLSAMessage(protocol string, kind wire.Kind, src routegraph.RouterID, seq uint64, ts float64, payload map[string]interface{}) wire.Message {
	return wire.NewMessage(protocol, kind, src, seq, payload, ts, nil)
}

// NewRipUpdateMessage builds a RIP update wire message.
func NewRipUpdateMessage(protocol string, src routegraph.RouterID, seq uint64, ts float64, payload map[string]interface{}) wire.Message {
	return wire.NewMessage(protocol, wire.KindRipUpdate, src, seq, payload, ts, nil)
}

// Flood returns the set of neighbors a message should be replicated to,
// excluding the ingress neighbor it arrived from (ingress == 0 meaning
// locally originated, nothing to exclude beyond the zero value which is
// never a valid router id).
func Flood(neighbors []ribstate.NeighborInfo, ingress routegraph.RouterID) []ribstate.NeighborInfo {
	out := make([]ribstate.NeighborInfo, 0, len(neighbors))
	for _, n := range neighbors {
		if n.RouterID == ingress {
			continue
		}
		if !n.IsUp {
			continue
		}
		out = append(out, n)
	}
	return out
}
