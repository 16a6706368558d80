// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package simqdisc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32(v uint32) *uint32 { return &v }

func itemWithPriority(flowID uint32, priority uint8) Item {
	return Item{
		LenBytes: 100,
		FlowID:   u32(flowID),
		Metadata: map[string]string{"priority": itoa(priority)},
	}
}

func itoa(v uint8) string {
	return string(rune('0' + v%10))
}

func TestFifo_KeepsOrder(t *testing.T) {
	q := NewFifo(Packets(8))
	require.True(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(1)}))
	require.True(t, Enqueue(q, Item{LenBytes: 120, FlowID: u32(2)}))

	first, ok := Dequeue(q)
	require.True(t, ok)
	second, ok := Dequeue(q)
	require.True(t, ok)
	assert.Equal(t, uint32(1), *first.FlowID)
	assert.Equal(t, uint32(2), *second.FlowID)
}

func TestFifo_DropsWhenLimitExceeded(t *testing.T) {
	q := NewFifo(Packets(1))
	require.True(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(1)}))
	require.False(t, Enqueue(q, Item{LenBytes: 120, FlowID: u32(2)}))
	assert.EqualValues(t, 1, q.Base().Stats().DroppedPacketsBeforeEnqueue[LimitExceededDrop])
}

func TestPfifoFast_PrefersHigherBandPriority(t *testing.T) {
	q := NewPfifoFastWithLimit(Packets(10))
	require.True(t, Enqueue(q, itemWithPriority(10, 0))) // band 1
	require.True(t, Enqueue(q, itemWithPriority(11, 1))) // band 2
	require.True(t, Enqueue(q, itemWithPriority(12, 6))) // band 0

	first, _ := Dequeue(q)
	second, _ := Dequeue(q)
	third, _ := Dequeue(q)
	assert.Equal(t, uint32(12), *first.FlowID)
	assert.Equal(t, uint32(10), *second.FlowID)
	assert.Equal(t, uint32(11), *third.FlowID)
}

func TestPfifoFast_DropsWhenLimitExceeded(t *testing.T) {
	q := NewPfifoFastWithLimit(Packets(1))
	require.True(t, Enqueue(q, itemWithPriority(1, 0)))
	require.False(t, Enqueue(q, itemWithPriority(2, 6)))
	assert.EqualValues(t, 1, q.Base().Stats().DroppedPacketsBeforeEnqueue[LimitExceededDrop])
}

func TestPfifoFast_RequiresPacketModeLimit(t *testing.T) {
	q := NewPfifoFastWithLimit(Bytes(2048))
	assert.Error(t, q.CheckConfig())
}

func TestPrio_DequeuePrefersLowerBandIndex(t *testing.T) {
	q := NewDefaultPrio()
	require.True(t, Enqueue(q, itemWithPriority(1, 1))) // band 2
	require.True(t, Enqueue(q, itemWithPriority(2, 0))) // band 1
	require.True(t, Enqueue(q, itemWithPriority(3, 6))) // band 0

	a, _ := Dequeue(q)
	b, _ := Dequeue(q)
	c, _ := Dequeue(q)
	assert.Equal(t, uint32(3), *a.FlowID)
	assert.Equal(t, uint32(2), *b.FlowID)
	assert.Equal(t, uint32(1), *c.FlowID)
}

func TestPrio_ClassIDOverridesPriomap(t *testing.T) {
	q := NewDefaultPrio()
	item := itemWithPriority(9, 6) // would map to band 0
	item.ClassID = u32(2)
	require.True(t, Enqueue(q, item))
	out, ok := Dequeue(q)
	require.True(t, ok)
	assert.Equal(t, uint32(9), *out.FlowID)
}

func TestRed_DropsOnHardLimit(t *testing.T) {
	q := NewRed(Packets(1), Packets(1), Packets(2), 0.5, false, 7)
	require.True(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(1)}))
	require.False(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(2)}))
	assert.EqualValues(t, 1, q.Base().Stats().TotalDroppedPackets())
}

func TestRed_MarksECNWhenEnabled(t *testing.T) {
	q := NewRed(Packets(1000), Packets(0), Packets(1), 1.0, true, 11)
	require.True(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(1)}))
	require.True(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(2), Metadata: map[string]string{"ecn_capable": "1"}}))
	_, _ = Dequeue(q)
	marked, ok := Dequeue(q)
	require.True(t, ok)
	assert.Equal(t, "1", marked.Metadata["ecn_marked"])
	assert.GreaterOrEqual(t, q.Base().Stats().MarkedPackets, uint64(1))
}

func TestEcn_MarksWhenAboveThreshold(t *testing.T) {
	q := NewEcn(Packets(10), Packets(1))
	require.True(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(1)}))
	require.True(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(2), Metadata: map[string]string{"ecn_capable": "true"}}))
	_, _ = Dequeue(q)
	marked, ok := Dequeue(q)
	require.True(t, ok)
	assert.Equal(t, "1", marked.Metadata["ecn_marked"])
}

func TestEcn_DropsNonECNWhenAboveThreshold(t *testing.T) {
	q := NewEcn(Packets(10), Packets(1))
	require.True(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(1)}))
	require.False(t, Enqueue(q, Item{LenBytes: 100, FlowID: u32(2)}))
	assert.EqualValues(t, 1, q.Base().Stats().DroppedPacketsBeforeEnqueue[NonECNDrop])
}
