// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package simqdisc

const (
	minPrioClasses     = 2
	defaultPrioClasses = 3
)

// Prio fans packets out to one Fifo child per class, strictly draining
// lower-indexed classes first. Unlike PfifoFast its priomap is mutable and
// its class children are independently sized FIFOs rather than fixed
// internal bands.
type Prio struct {
	base      Base
	classes   []*Fifo
	prio2Band [16]int
}

// NewDefaultPrio returns a 3-class Prio queue with the Linux priomap.
func NewDefaultPrio() *Prio {
	return NewPrioWithClasses(defaultPrioClasses)
}

// NewPrioWithClasses returns a Prio queue with nClasses FIFO children
// (clamped to at least 2).
func NewPrioWithClasses(nClasses int) *Prio {
	if nClasses < minPrioClasses {
		nClasses = minPrioClasses
	}
	classes := make([]*Fifo, nClasses)
	for i := range classes {
		classes[i] = NewDefaultFifo()
	}
	return &Prio{
		base:      NewBase(SizePolicyNoLimits, nil),
		classes:   classes,
		prio2Band: defaultPrio2Band(nClasses),
	}
}

func defaultPrio2Band(nClasses int) [16]int {
	maxBand := nClasses - 1
	out := prio2Band
	for i, band := range out {
		if band > maxBand {
			out[i] = maxBand
		}
	}
	return out
}

func (p *Prio) Name() string { return "prio" }
func (p *Prio) Base() *Base  { return &p.base }

func (p *Prio) classifyBand(item Item) int {
	if item.ClassID != nil {
		band := int(*item.ClassID)
		if band < len(p.classes) {
			return band
		}
	}
	return p.prio2Band[itemPriority(item)&0x0f]
}

// SetBandForPriority overrides which band a given 4-bit priority value
// maps to.
func (p *Prio) SetBandForPriority(prio uint8, band int) error {
	if prio >= 16 {
		return errConfig("priority must be in [0, 15]")
	}
	if band >= len(p.classes) {
		return errConfig("band out of range")
	}
	p.prio2Band[prio] = band
	return nil
}

// BandForPriority returns the currently mapped band for prio.
func (p *Prio) BandForPriority(prio uint8) (int, error) {
	if prio >= 16 {
		return 0, errConfig("priority must be in [0, 15]")
	}
	return p.prio2Band[prio], nil
}

// ClassCount returns the number of FIFO children.
func (p *Prio) ClassCount() int { return len(p.classes) }

func (p *Prio) DoEnqueue(item Item) bool {
	band := p.classifyBand(item)
	if band >= len(p.classes) {
		DropBeforeEnqueue(p, item, "selected band out of range")
		return false
	}
	return p.classes[band].DoEnqueue(item)
}

func (p *Prio) DoDequeue() (Item, bool) {
	for _, class := range p.classes {
		if item, ok := class.DoDequeue(); ok {
			class.Base().onPacketDequeued(item)
			return item, true
		}
	}
	return Item{}, false
}

func (p *Prio) DoPeek() (Item, bool) {
	for _, class := range p.classes {
		if item, ok := class.DoPeek(); ok {
			return item, true
		}
	}
	return Item{}, false
}

func (p *Prio) CheckConfig() error {
	if len(p.classes) < minPrioClasses {
		return errConfig("prio queue disc requires at least 2 classes")
	}
	return nil
}

func (p *Prio) InitializeParams() error { return nil }
