// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package forwarding

import (
	"github.com/vishvananda/netlink"
	"grimm.is/flywall/internal/errors"
)

// NetlinkApplier installs routes via vishvananda/netlink. It is the
// production Applier on Linux.
type NetlinkApplier struct{}

// NewNetlinkApplier returns the production Applier.
func NewNetlinkApplier() *NetlinkApplier { return &NetlinkApplier{} }

// Replace installs or overwrites e via RouteReplace.
func (a *NetlinkApplier) Replace(e Entry) error {
	route := &netlink.Route{
		Dst:   e.Prefix,
		Gw:    e.NextHop,
		Table: e.Table,
	}
	if err := netlink.RouteReplace(route); err != nil {
		return errors.Wrapf(err, errors.KindIOFatal, "replace route to %s via %s", e.Prefix, e.NextHop)
	}
	return nil
}

// Delete withdraws e via RouteDel.
func (a *NetlinkApplier) Delete(e Entry) error {
	route := &netlink.Route{
		Dst:   e.Prefix,
		Gw:    e.NextHop,
		Table: e.Table,
	}
	if err := netlink.RouteDel(route); err != nil {
		return errors.Wrapf(err, errors.KindIOTransient, "delete route to %s via %s", e.Prefix, e.NextHop)
	}
	return nil
}
