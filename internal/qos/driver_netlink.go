// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package qos

import (
	"github.com/vishvananda/netlink"
	"grimm.is/flywall/internal/errors"
)

// NetlinkDriver installs qdiscs via vishvananda/netlink and reads back
// their statistics the same way.
type NetlinkDriver struct{}

// NewNetlinkDriver returns the production Driver.
func NewNetlinkDriver() *NetlinkDriver { return &NetlinkDriver{} }

// ReplaceRoot clears the existing root qdisc on iface and installs the
// one described by profile. fq_codel (also used for an empty kind) and
// pfifo_fast (installed as a single pfifo queue) are handled; any other
// kind, htb included, is rejected with an invalid-config error.
func (d *NetlinkDriver) ReplaceRoot(iface string, profile Profile) error {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		return errors.Wrapf(err, errors.KindIOTransient, "interface %s not found", iface)
	}

	existing, err := netlink.QdiscList(link)
	if err != nil {
		return errors.Wrapf(err, errors.KindIOTransient, "list qdiscs on %s", iface)
	}
	for _, q := range existing {
		if q.Attrs().Parent == netlink.HANDLE_ROOT {
			if err := netlink.QdiscDel(q); err != nil {
				return errors.Wrapf(err, errors.KindIOTransient, "clear root qdisc on %s", iface)
			}
		}
	}

	switch profile.Kind {
	case "fq_codel", "":
		q := netlink.NewFqCodel(netlink.QdiscAttrs{
			LinkIndex: link.Attrs().Index,
			Parent:    netlink.HANDLE_ROOT,
			Handle:    netlink.MakeHandle(1, 0),
		})
		if err := netlink.QdiscAdd(q); err != nil {
			return errors.Wrapf(err, errors.KindIOTransient, "add fq_codel qdisc on %s", iface)
		}
	case "pfifo_fast":
		q := &netlink.Pfifo{
			QdiscAttrs: netlink.QdiscAttrs{
				LinkIndex: link.Attrs().Index,
				Parent:    netlink.HANDLE_ROOT,
				Handle:    netlink.MakeHandle(1, 0),
			},
		}
		if err := netlink.QdiscAdd(q); err != nil {
			return errors.Wrapf(err, errors.KindIOTransient, "add pfifo qdisc on %s", iface)
		}
	default:
		return errors.Errorf(errors.KindInvalidConfig, "unsupported qdisc kind %q", profile.Kind)
	}
	return nil
}

// Stats reads QdiscList and converts the first root qdisc's statistics
// into a Backlog.
func (d *NetlinkDriver) Stats(iface string) (Backlog, error) {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		return Backlog{}, errors.Wrapf(err, errors.KindIOTransient, "interface %s not found", iface)
	}
	qdiscs, err := netlink.QdiscList(link)
	if err != nil {
		return Backlog{}, errors.Wrapf(err, errors.KindIOTransient, "list qdiscs on %s", iface)
	}
	for _, q := range qdiscs {
		if q.Attrs().Parent != netlink.HANDLE_ROOT {
			continue
		}
		stats := q.Attrs().Statistics
		if stats == nil {
			return Backlog{}, nil
		}
		return Backlog{
			BytesKnown:   true,
			Bytes:        uint64(stats.Basic.Bytes),
			PacketsKnown: true,
			Packets:      uint64(stats.Basic.Packets),
			Drops:        uint64(stats.Queue.Drops),
			Overlimits:   uint64(stats.Queue.Overlimits),
			Requeues:     uint64(stats.Queue.Requeues),
		}, nil
	}
	return Backlog{}, errors.Errorf(errors.KindIOTransient, "no root qdisc on %s", iface)
}
