// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package main

import (
	"grimm.is/flywall/internal/config"
	"grimm.is/flywall/internal/forwarding"
	"grimm.is/flywall/internal/logging"
	"grimm.is/flywall/internal/qos"
)

func newPlatformApplier(logger *logging.Logger) (forwarding.Applier, func()) {
	return forwarding.NewNetlinkApplier(), func() {}
}

func newPlatformQdiscDriver(cfg *config.Config, logger *logging.Logger) qos.Driver {
	if cfg.Qdisc.DryRun {
		return qos.NewDryRunDriver(logger)
	}
	return qos.NewNetlinkDriver()
}
