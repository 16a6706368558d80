// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package simqdisc

import "strings"

const (
	RedRandomDrop = "RED random early drop"
	RedForcedDrop = "RED forced drop"
	RedEcnMark    = "RED ECN mark"
)

// Red is a Random Early Detection queue: it tracks an EWMA of queue
// occupancy and starts probabilistically dropping (or ECN-marking, if the
// packet is capable) once that average crosses minTh, forcing every
// packet above maxTh.
type Red struct {
	base       Base
	queue      []Item
	minTh      Size
	maxTh      Size
	maxP       float64
	ecnEnabled bool
	avgQ       float64
	wQ         float64
	rngState   uint64
}

// NewDefaultRed mirrors the reference defaults: 1000-packet hard limit,
// 64/256-packet RED thresholds, 10% max drop probability, ECN disabled.
func NewDefaultRed() *Red {
	return NewRed(Packets(1000), Packets(64), Packets(256), 0.1, false, 0x9E3779B97F4A7C15)
}

// NewRed constructs a RED queue with explicit thresholds and a PRNG seed.
func NewRed(limit, minTh, maxTh Size, maxP float64, ecnEnabled bool, seed uint64) *Red {
	if maxP < 0 {
		maxP = 0
	} else if maxP > 1 {
		maxP = 1
	}
	if seed == 0 {
		seed = 1
	}
	return &Red{
		base:       NewBase(SizePolicySingleInternalQueue, &limit),
		minTh:      minTh,
		maxTh:      maxTh,
		maxP:       maxP,
		ecnEnabled: ecnEnabled,
		wQ:         0.002,
		rngState:   seed,
	}
}

func (r *Red) Name() string { return "red" }
func (r *Red) Base() *Base  { return &r.base }

func (r *Red) currentSizeAsFloat(unit SizeUnit) float64 {
	if unit == SizeUnitBytes {
		return float64(r.base.ByteCount())
	}
	return float64(r.base.PacketCount())
}

func (r *Red) wouldExceedLimit(item Item) bool {
	limit := r.base.MaxSize()
	if limit == nil {
		return false
	}
	switch limit.Unit {
	case SizeUnitPackets:
		return r.base.PacketCount()+1 > limit.Value
	case SizeUnitBytes:
		return r.base.ByteCount()+item.LenBytes > limit.Value
	}
	return false
}

func (r *Red) updateAverageQueue() {
	q := r.currentSizeAsFloat(r.minTh.Unit)
	r.avgQ = (1-r.wQ)*r.avgQ + r.wQ*q
}

// nextRand01 is a linear-congruential generator; not cryptographic, only
// needs to be deterministic and cheap for simulation.
func (r *Red) nextRand01() float64 {
	r.rngState = r.rngState*6364136223846793005 + 1
	v := r.rngState >> 11
	return float64(v) / float64(uint64(1)<<53)
}

func isECNCapable(item Item) bool {
	for _, key := range []string{"ecn_capable", "ecn"} {
		raw, ok := item.Metadata[key]
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes", "ect0", "ect1", "ce":
			return true
		}
	}
	return false
}

func markECN(item *Item) {
	if item.Metadata == nil {
		item.Metadata = map[string]string{}
	}
	item.Metadata["ecn_marked"] = "1"
	item.Metadata["ecn"] = "ce"
}

func (r *Red) DoEnqueue(item Item) bool {
	if r.wouldExceedLimit(item) {
		DropBeforeEnqueue(r, item, LimitExceededDrop)
		return false
	}

	r.updateAverageQueue()
	instantQ := r.currentSizeAsFloat(r.minTh.Unit)
	qMetric := r.avgQ
	if instantQ > qMetric {
		qMetric = instantQ
	}
	minTh := float64(r.minTh.Value)
	maxTh := float64(r.maxTh.Value)

	if qMetric >= maxTh {
		if r.ecnEnabled && isECNCapable(item) {
			markECN(&item)
			MarkPacket(r, item, RedEcnMark)
			AcceptEnqueue(r, item)
			r.queue = append(r.queue, item)
			return true
		}
		DropBeforeEnqueue(r, item, RedForcedDrop)
		return false
	}

	if qMetric > minTh {
		span := maxTh - minTh
		if span < 1e-9 {
			span = 1e-9
		}
		p := r.maxP * (qMetric - minTh) / span
		if r.nextRand01() < p {
			if r.ecnEnabled && isECNCapable(item) {
				markECN(&item)
				MarkPacket(r, item, RedEcnMark)
				AcceptEnqueue(r, item)
				r.queue = append(r.queue, item)
				return true
			}
			DropBeforeEnqueue(r, item, RedRandomDrop)
			return false
		}
	}

	AcceptEnqueue(r, item)
	r.queue = append(r.queue, item)
	return true
}

func (r *Red) DoDequeue() (Item, bool) {
	if len(r.queue) == 0 {
		return Item{}, false
	}
	item := r.queue[0]
	r.queue = r.queue[1:]
	return item, true
}

func (r *Red) DoPeek() (Item, bool) {
	if len(r.queue) == 0 {
		return Item{}, false
	}
	return r.queue[0], true
}

func (r *Red) CheckConfig() error {
	if r.minTh.Unit != r.maxTh.Unit {
		return errConfig("RED requires min_th and max_th using the same unit")
	}
	if r.minTh.Value >= r.maxTh.Value {
		return errConfig("RED requires min_th < max_th")
	}
	if r.maxP < 0 || r.maxP > 1 {
		return errConfig("RED requires max_p in [0, 1]")
	}
	return nil
}

func (r *Red) InitializeParams() error {
	r.avgQ = 0
	return nil
}
