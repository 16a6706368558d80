// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package forwarding installs the computed FIB into the host kernel
// routing table. Route installation only touches destinations for which the
// Resolver yields both a destination prefix and a next-hop IP; everything
// else is a daemon-local computation with no host effect.
package forwarding

import (
	"net"

	"grimm.is/flywall/internal/routegraph"
)

// Entry is one FIB entry to install or withdraw.
type Entry struct {
	Destination routegraph.RouterID
	Prefix      *net.IPNet
	NextHop     net.IP
	Table       int
}

// Applier installs and withdraws kernel routes for the resolved FIB.
// Production deployments use the netlink-backed implementation; dry-run
// and non-Linux builds use the logging stub.
type Applier interface {
	Replace(e Entry) error
	Delete(e Entry) error
}

// Resolver maps a RouterID pair (FIB destination, next-hop) to the
// kernel-installable CIDR/IP pair, per configuration.
type Resolver struct {
	// DestinationPrefix returns the CIDR owned by a destination router,
	// or ok=false if that router has no routable prefix configured.
	DestinationPrefix func(routegraph.RouterID) (string, bool)
	// NextHopIP returns the next-hop IP address to use for a neighbor
	// RouterID, or ok=false if unconfigured (the route is skipped).
	NextHopIP func(routegraph.RouterID) (string, bool)
	Table     int
}

// Resolve turns a RIB destination/next-hop pair into an installable
// Entry, or returns ok=false if either side of the mapping is missing
// or malformed.
func (r Resolver) Resolve(dest, nextHop routegraph.RouterID) (Entry, bool) {
	prefix, ok := r.DestinationPrefix(dest)
	if !ok {
		return Entry{}, false
	}
	_, cidr, err := net.ParseCIDR(prefix)
	if err != nil {
		return Entry{}, false
	}
	hopIP, ok := r.NextHopIP(nextHop)
	if !ok {
		return Entry{}, false
	}
	ip := net.ParseIP(hopIP)
	if ip == nil {
		return Entry{}, false
	}
	return Entry{Destination: dest, Prefix: cidr, NextHop: ip, Table: r.Table}, true
}
