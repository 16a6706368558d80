// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package qos

import (
	"sort"

	"grimm.is/flywall/internal/errors"
	"grimm.is/flywall/internal/logging"
)

// Controller owns one default profile plus per-interface overrides and
// drives a Driver to apply them.
type Controller struct {
	driver   Driver
	logger   *logging.Logger
	defaultP *Profile
	perIface map[string]Profile
}

// NewController builds a controller around driver, optionally seeded
// with a default profile used whenever an interface has no override.
func NewController(driver Driver, logger *logging.Logger, defaultProfile *Profile) *Controller {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &Controller{driver: driver, logger: logger.WithComponent("qos"), defaultP: defaultProfile, perIface: map[string]Profile{}}
}

// SetInterfaceProfile installs (in-memory) a per-interface override,
// keyed by interface name; a synthetic fwmark derived from idx is logged
// so multiple overrides on one controller stay distinguishable in logs.
func (c *Controller) SetInterfaceProfile(iface string, idx int, profile Profile) {
	c.perIface[iface] = profile
	c.logger.Debug("registered interface qdisc override", "iface", iface, "fwmark", CalculateFWMark(0, idx), "kind", profile.Kind)
}

// resolve picks the override for iface, else the default, else nil
// (meaning no-op).
func (c *Controller) resolve(iface string) *Profile {
	if p, ok := c.perIface[iface]; ok {
		return &p
	}
	return c.defaultP
}

// ApplyToInterfaces calls driver.ReplaceRoot for every interface using
// its resolved profile, skipping interfaces that resolve to nil
// (no-op). Errors are collected per interface rather than aborting the
// whole batch, since a clogged interface should not block the others.
func (c *Controller) ApplyToInterfaces(ifaces []string) error {
	sorted := append([]string{}, ifaces...)
	sort.Strings(sorted)

	var firstErr error
	for _, iface := range sorted {
		profile := c.resolve(iface)
		if profile == nil {
			continue
		}
		if err := c.driver.ReplaceRoot(iface, *profile); err != nil {
			c.logger.Warn("qdisc apply failed", "iface", iface, "error", err)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, errors.KindIOTransient, "apply qdisc profile to %s", iface)
			}
			continue
		}
	}
	return firstErr
}

// StatsForInterface reads back backlog/drops/overlimits/requeues for
// iface, used to feed the queue-aware protocol's delay estimator.
func (c *Controller) StatsForInterface(iface string) (Backlog, error) {
	b, err := c.driver.Stats(iface)
	if err != nil {
		return Backlog{}, errors.Wrapf(err, errors.KindIOTransient, "read qdisc stats for %s", iface)
	}
	return b, nil
}
