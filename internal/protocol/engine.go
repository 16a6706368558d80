// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package protocol defines the small capability contract every routing
// engine (OSPF-like, RIP, ECMP, Top-K, SPath, queue-aware) implements,
// and the context/output shapes the daemon loop passes through it. Each
// concrete engine lives in its own subpackage; the daemon holds exactly
// one instance, chosen by configured protocol name.
package protocol

import (
	"time"

	"grimm.is/flywall/internal/qos"
	"grimm.is/flywall/internal/ribstate"
	"grimm.is/flywall/internal/routegraph"
	"grimm.is/flywall/internal/wire"
)

// RouterLink is one usable outgoing link from the local router.
type RouterLink struct {
	NeighborID routegraph.RouterID
	Cost       routegraph.Cost
}

// Context is passed to every engine call.
type Context struct {
	RouterID routegraph.RouterID
	Now      time.Time
	Links    map[routegraph.RouterID]RouterLink
	// QdiscByNeighbor gives the queue-aware engine access to kernel
	// backlog readings, keyed by the neighbor reached over that link.
	QdiscByNeighbor map[routegraph.RouterID]qos.Backlog
}

// Outbound is one message addressed to one neighbor.
type Outbound struct {
	Neighbor routegraph.RouterID
	Message  wire.Message
}

// QdiscAction requests a qdisc profile change on an interface.
type QdiscAction struct {
	Interface string
	Kind      string // "apply_default" | "apply_profile" | "clear"
	Profile   string
}

// Outputs is what every engine call returns.
type Outputs struct {
	Outbound     []Outbound
	Routes       []ribstate.Route
	QdiscActions []QdiscAction
}

// Metrics is the optional free-form metrics an engine may expose.
type Metrics map[string]float64

// Engine is the capability set every per-protocol engine implements.
type Engine interface {
	Name() string
	Start(ctx Context) Outputs
	OnTimer(ctx Context) Outputs
	OnMessage(ctx Context, msg wire.Message) Outputs
}

// MetricsProvider is implemented by engines that expose metrics.
type MetricsProvider interface {
	ProtocolMetrics() Metrics
}

// InterfaceNotifier is implemented by engines that react to link
// transitions independently of the normal timer/message flow.
type InterfaceNotifier interface {
	NotifyInterfaceUp(ctx Context, neighbor routegraph.RouterID) Outputs
	NotifyInterfaceDown(ctx Context, neighbor routegraph.RouterID) Outputs
}
