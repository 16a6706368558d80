// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package simqdisc

const (
	NonECNDrop = "ECN required above mark threshold"
	ECNMark    = "ECN mark"
)

// Ecn is a threshold-marking queue: below mark_threshold it behaves like a
// plain FIFO, at or above it ECN-capable packets get marked and kept while
// non-capable packets are dropped.
type Ecn struct {
	base          Base
	queue         []Item
	markThreshold Size
}

// NewDefaultEcn mirrors the reference defaults: 1000-packet limit,
// 200-packet mark threshold.
func NewDefaultEcn() *Ecn {
	return NewEcn(Packets(1000), Packets(200))
}

// NewEcn constructs an Ecn queue with an explicit limit and threshold.
func NewEcn(limit, markThreshold Size) *Ecn {
	return &Ecn{base: NewBase(SizePolicySingleInternalQueue, &limit), markThreshold: markThreshold}
}

func (e *Ecn) Name() string { return "ecn" }
func (e *Ecn) Base() *Base  { return &e.base }

func (e *Ecn) wouldExceedLimit(item Item) bool {
	limit := e.base.MaxSize()
	if limit == nil {
		return false
	}
	switch limit.Unit {
	case SizeUnitPackets:
		return e.base.PacketCount()+1 > limit.Value
	case SizeUnitBytes:
		return e.base.ByteCount()+item.LenBytes > limit.Value
	}
	return false
}

func (e *Ecn) aboveMarkThreshold() bool {
	switch e.markThreshold.Unit {
	case SizeUnitPackets:
		return e.base.PacketCount() >= e.markThreshold.Value
	case SizeUnitBytes:
		return e.base.ByteCount() >= e.markThreshold.Value
	}
	return false
}

func (e *Ecn) DoEnqueue(item Item) bool {
	if e.wouldExceedLimit(item) {
		DropBeforeEnqueue(e, item, LimitExceededDrop)
		return false
	}
	if e.aboveMarkThreshold() {
		if isECNCapable(item) {
			markECN(&item)
			MarkPacket(e, item, ECNMark)
			AcceptEnqueue(e, item)
			e.queue = append(e.queue, item)
			return true
		}
		DropBeforeEnqueue(e, item, NonECNDrop)
		return false
	}
	AcceptEnqueue(e, item)
	e.queue = append(e.queue, item)
	return true
}

func (e *Ecn) DoDequeue() (Item, bool) {
	if len(e.queue) == 0 {
		return Item{}, false
	}
	item := e.queue[0]
	e.queue = e.queue[1:]
	return item, true
}

func (e *Ecn) DoPeek() (Item, bool) {
	if len(e.queue) == 0 {
		return Item{}, false
	}
	return e.queue[0], true
}

func (e *Ecn) CheckConfig() error {
	limit := e.base.MaxSize()
	if limit == nil {
		return errConfig("ECN queue requires max_size")
	}
	if limit.Unit != e.markThreshold.Unit {
		return errConfig("ECN queue requires threshold unit matching max_size unit")
	}
	if e.markThreshold.Value > limit.Value {
		return errConfig("ECN queue requires mark_threshold <= max_size")
	}
	return nil
}

func (e *Ecn) InitializeParams() error { return nil }
