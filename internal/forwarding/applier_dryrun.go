// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package forwarding

import (
	"sync"

	"grimm.is/flywall/internal/logging"
	"grimm.is/flywall/internal/routegraph"
)

// DryRunApplier logs intended route changes instead of touching the
// kernel. Used when forwarding.dry_run is set, on non-Linux builds, and
// in tests.
type DryRunApplier struct {
	logger *logging.Logger

	mu      sync.Mutex
	applied map[routegraph.RouterID]Entry
}

// NewDryRunApplier returns an Applier that only logs and records intent.
func NewDryRunApplier(logger *logging.Logger) *DryRunApplier {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &DryRunApplier{logger: logger.WithComponent("forwarding.dryrun"), applied: map[routegraph.RouterID]Entry{}}
}

// Replace records the intended entry and logs it.
func (d *DryRunApplier) Replace(e Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied[e.Destination] = e
	d.logger.Info("dry-run route replace", "destination", e.Destination, "prefix", e.Prefix, "next_hop", e.NextHop)
	return nil
}

// Delete removes the recorded intent and logs it.
func (d *DryRunApplier) Delete(e Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.applied, e.Destination)
	d.logger.Info("dry-run route delete", "destination", e.Destination, "prefix", e.Prefix)
	return nil
}

// Applied returns what was last applied for dest, for assertions.
func (d *DryRunApplier) Applied(dest routegraph.RouterID) (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.applied[dest]
	return e, ok
}
