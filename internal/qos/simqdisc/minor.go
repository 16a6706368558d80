// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package simqdisc

// Drr, Netem and Tbf satisfy the QueueDisc contract with single-queue
// FIFO semantics. The routing daemon never schedules by flow weight
// (Drr), injects synthetic loss/delay (Netem) or token-bucket shapes
// (Tbf) — those are traffic-shaping concerns of the firewall's qdisc
// layer, not of route computation — so only enough behavior to appear
// on an interface profile and report backlog is implemented here.

// Drr is a deficit-round-robin stand-in with a single round-robin class,
// i.e. plain FIFO ordering until per-flow quanta are needed.
type Drr struct{ Fifo }

func NewDefaultDrr() *Drr { return &Drr{Fifo: *NewDefaultFifo()} }
func (d *Drr) Name() string { return "drr" }

// Netem is a network-emulation stand-in that passes packets through
// unmodified; synthetic delay/loss/reorder is not modeled.
type Netem struct{ Fifo }

func NewDefaultNetem() *Netem { return &Netem{Fifo: *NewDefaultFifo()} }
func (n *Netem) Name() string { return "netem" }

// Tbf is a token-bucket-filter stand-in with no rate limiting; it only
// provides the FIFO ordering and stats every discipline needs.
type Tbf struct{ Fifo }

func NewDefaultTbf() *Tbf { return &Tbf{Fifo: *NewDefaultFifo()} }
func (t *Tbf) Name() string { return "tbf" }
