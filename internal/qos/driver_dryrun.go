// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package qos

import (
	"sync"

	"grimm.is/flywall/internal/logging"
)

// DryRunDriver logs what it would do instead of touching the kernel.
// Used when qdisc.dry_run is set, on non-Linux builds, and in
// tests.
type DryRunDriver struct {
	logger *logging.Logger

	mu       sync.Mutex
	applied  map[string]Profile
	backlogs map[string]Backlog
}

// NewDryRunDriver returns a driver that only logs and records intent.
func NewDryRunDriver(logger *logging.Logger) *DryRunDriver {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &DryRunDriver{
		logger:   logger.WithComponent("qos.dryrun"),
		applied:  map[string]Profile{},
		backlogs: map[string]Backlog{},
	}
}

// ReplaceRoot records the intended profile and logs it.
func (d *DryRunDriver) ReplaceRoot(iface string, profile Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied[iface] = profile
	d.logger.Info("dry-run qdisc apply", "iface", iface, "kind", profile.Kind)
	return nil
}

// Stats returns whatever backlog SetBacklog last recorded for iface,
// zero-value if none.
func (d *DryRunDriver) Stats(iface string) (Backlog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backlogs[iface], nil
}

// SetBacklog lets tests and the simulator feed synthetic backlog
// readings into the dry-run driver.
func (d *DryRunDriver) SetBacklog(iface string, b Backlog) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.backlogs[iface] = b
}

// AppliedProfile returns what was last applied to iface, for assertions.
func (d *DryRunDriver) AppliedProfile(iface string) (Profile, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.applied[iface]
	return p, ok
}
