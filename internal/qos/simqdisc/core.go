// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package simqdisc implements the simulator-side queueing disciplines used
// to model per-interface backlog and drop/mark behavior for the
// queue-aware routing protocols (DDR, DGR, Octopus) without touching the
// host kernel. Every discipline satisfies QueueDisc and shares one stats
// accumulator so callers can read backlog/drop/mark counters uniformly
// regardless of which discipline is installed on a simulated interface.
package simqdisc

import "sort"

// SizeUnit distinguishes packet-counted from byte-counted limits.
type SizeUnit int

const (
	SizeUnitPackets SizeUnit = iota
	SizeUnitBytes
)

// Size is a queue limit or threshold expressed in one unit.
type Size struct {
	Unit  SizeUnit
	Value uint64
}

func Packets(n uint64) Size { return Size{Unit: SizeUnitPackets, Value: n} }
func Bytes(n uint64) Size   { return Size{Unit: SizeUnitBytes, Value: n} }

// SizePolicy describes how a discipline wants its size limit interpreted.
type SizePolicy int

const (
	SizePolicySingleInternalQueue SizePolicy = iota
	SizePolicySingleChildQueueDisc
	SizePolicyMultipleQueues
	SizePolicyNoLimits
)

// DropPhase distinguishes a drop applied before enqueue from one applied
// after a dequeue (the latter unused by the disciplines implemented here
// but kept so Stats stays symmetrical with the original accounting).
type DropPhase int

const (
	PhaseBeforeEnqueue DropPhase = iota
	PhaseAfterDequeue
)

// Item is one simulated packet moving through a discipline.
type Item struct {
	LenBytes uint64
	FlowID   *uint32
	ClassID  *uint32
	Metadata map[string]string
}

// Stats accumulates lifetime counters for one discipline instance, broken
// down per drop/mark reason the way the control plane's telemetry wants
// to report it.
type Stats struct {
	ReceivedPackets, ReceivedBytes             uint64
	EnqueuedPackets, EnqueuedBytes             uint64
	DequeuedPackets, DequeuedBytes             uint64
	RequeuedPackets, RequeuedBytes             uint64
	MarkedPackets                              uint64
	DroppedPacketsBeforeEnqueue                map[string]uint64
	DroppedBytesBeforeEnqueue                  map[string]uint64
	DroppedPacketsAfterDequeue                 map[string]uint64
	DroppedBytesAfterDequeue                   map[string]uint64
	MarkedPacketsByReason                      map[string]uint64
}

func newStats() Stats {
	return Stats{
		DroppedPacketsBeforeEnqueue: map[string]uint64{},
		DroppedBytesBeforeEnqueue:   map[string]uint64{},
		DroppedPacketsAfterDequeue:  map[string]uint64{},
		DroppedBytesAfterDequeue:    map[string]uint64{},
		MarkedPacketsByReason:       map[string]uint64{},
	}
}

func (s *Stats) recordReceived(item Item) {
	s.ReceivedPackets++
	s.ReceivedBytes += item.LenBytes
}

func (s *Stats) recordEnqueued(item Item) {
	s.EnqueuedPackets++
	s.EnqueuedBytes += item.LenBytes
}

func (s *Stats) recordDequeued(item Item) {
	s.DequeuedPackets++
	s.DequeuedBytes += item.LenBytes
}

func (s *Stats) recordRequeued(item Item) {
	s.RequeuedPackets++
	s.RequeuedBytes += item.LenBytes
}

func (s *Stats) recordMarked(item Item, reason string) {
	s.MarkedPackets++
	s.MarkedPacketsByReason[reason]++
}

func (s *Stats) recordDrop(phase DropPhase, item Item, reason string) {
	switch phase {
	case PhaseBeforeEnqueue:
		s.DroppedPacketsBeforeEnqueue[reason]++
		s.DroppedBytesBeforeEnqueue[reason] += item.LenBytes
	case PhaseAfterDequeue:
		s.DroppedPacketsAfterDequeue[reason]++
		s.DroppedBytesAfterDequeue[reason] += item.LenBytes
	}
}

// TotalDroppedPackets sums both drop phases across every reason.
func (s Stats) TotalDroppedPackets() uint64 {
	return sumValues(s.DroppedPacketsBeforeEnqueue) + sumValues(s.DroppedPacketsAfterDequeue)
}

// TotalDroppedBytes sums both drop phases across every reason.
func (s Stats) TotalDroppedBytes() uint64 {
	return sumValues(s.DroppedBytesBeforeEnqueue) + sumValues(s.DroppedBytesAfterDequeue)
}

func sumValues(m map[string]uint64) uint64 {
	var total uint64
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		total += m[k]
	}
	return total
}

// Base holds the bookkeeping shared by every discipline: its size policy,
// optional limit, current occupancy and accumulated stats.
type Base struct {
	sizePolicy SizePolicy
	maxSize    *Size
	nPackets   uint64
	nBytes     uint64
	stats      Stats
}

// NewBase constructs a Base with the given policy and optional limit.
func NewBase(policy SizePolicy, limit *Size) Base {
	return Base{sizePolicy: policy, maxSize: limit, stats: newStats()}
}

func (b *Base) SizePolicy() SizePolicy { return b.sizePolicy }
func (b *Base) MaxSize() *Size         { return b.maxSize }
func (b *Base) SetMaxSize(s Size)      { b.maxSize = &s }
func (b *Base) PacketCount() uint64    { return b.nPackets }
func (b *Base) ByteCount() uint64      { return b.nBytes }
func (b *Base) Stats() Stats           { return b.stats }

func (b *Base) onPacketEnqueued(item Item) {
	b.nPackets++
	b.nBytes += item.LenBytes
	b.stats.recordEnqueued(item)
}

func (b *Base) onPacketDequeued(item Item) {
	if b.nPackets > 0 {
		b.nPackets--
	}
	if b.nBytes >= item.LenBytes {
		b.nBytes -= item.LenBytes
	} else {
		b.nBytes = 0
	}
	b.stats.recordDequeued(item)
}

// QueueDisc is the uniform discipline contract every simulated qdisc
// implements. Enqueue/Dequeue/Peek are thin wrappers (defined below) over
// the do* methods disciplines actually implement, so stats bookkeeping
// never has to be repeated per discipline.
type QueueDisc interface {
	Name() string
	Base() *Base
	DoEnqueue(item Item) bool
	DoDequeue() (Item, bool)
	DoPeek() (Item, bool)
	CheckConfig() error
	InitializeParams() error
}

// Enqueue records the receive, delegates to DoEnqueue and lets the
// discipline's own drop/mark bookkeeping (via DropBeforeEnqueue/MarkPacket
// below) account for anything that doesn't make it onto the queue.
func Enqueue(q QueueDisc, item Item) bool {
	q.Base().stats.recordReceived(item)
	ok := q.DoEnqueue(item)
	return ok
}

// Dequeue pops one item and updates base occupancy/stats.
func Dequeue(q QueueDisc) (Item, bool) {
	item, ok := q.DoDequeue()
	if !ok {
		return Item{}, false
	}
	q.Base().onPacketDequeued(item)
	return item, true
}

// Peek returns the next item without removing it.
func Peek(q QueueDisc) (Item, bool) {
	return q.DoPeek()
}

// DropBeforeEnqueue records a drop that happened instead of an enqueue.
// Disciplines call this directly (mirroring the base onPacketEnqueued
// path being skipped) rather than going through Enqueue's return value.
func DropBeforeEnqueue(q QueueDisc, item Item, reason string) {
	q.Base().stats.recordDrop(PhaseBeforeEnqueue, item, reason)
}

// DropAfterDequeue records a drop applied to an already-dequeued item.
func DropAfterDequeue(q QueueDisc, item Item, reason string) {
	q.Base().stats.recordDrop(PhaseAfterDequeue, item, reason)
}

// MarkPacket records an ECN/RED mark without dropping the packet.
func MarkPacket(q QueueDisc, item Item, reason string) {
	q.Base().stats.recordMarked(item, reason)
}

// AcceptEnqueue is the bookkeeping an individual discipline calls once it
// has decided to keep an item, mirroring the Rust base's on_packet_enqueued.
func AcceptEnqueue(q QueueDisc, item Item) {
	q.Base().onPacketEnqueued(item)
}
