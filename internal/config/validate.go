// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"fmt"
	"net"
	"strings"

	"grimm.is/flywall/internal/errors"
)

// ValidationError is one structural or semantic problem found in a
// Config. Severity "error" fails the load; "warning" is surfaced to the
// caller but does not block startup.
type ValidationError struct {
	Field    string
	Message  string
	Severity string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors reports whether any entry has severity "error".
func (e ValidationErrors) HasErrors() bool {
	for _, v := range e {
		if v.Severity != "warning" {
			return true
		}
	}
	return false
}

var validProtocols = map[string]struct{}{
	"ospf": {}, "rip": {}, "ecmp": {}, "spath": {}, "topk": {},
	"ddr": {}, "dgr": {}, "octopus": {},
}

// Validate checks c for structural problems. It returns the warning
// messages alongside a fatal error if any entry is severity "error".
func (c *Config) Validate() ([]string, error) {
	var issues ValidationErrors

	if c.RouterID == 0 {
		issues = append(issues, ValidationError{"router_id", "must be nonzero", "error"})
	}
	if _, ok := validProtocols[c.Protocol]; !ok {
		issues = append(issues, ValidationError{"protocol", fmt.Sprintf("unrecognized protocol %q", c.Protocol), "error"})
	}
	if c.Bind.Port <= 0 || c.Bind.Port > 65535 {
		issues = append(issues, ValidationError{"bind.port", "must be in 1..65535", "error"})
	}
	if net.ParseIP(c.Bind.Address) == nil && c.Bind.Address != "0.0.0.0" && c.Bind.Address != "::" {
		issues = append(issues, ValidationError{"bind.address", fmt.Sprintf("not a valid IP: %q", c.Bind.Address), "warning"})
	}
	if c.Timers.DeadIntervalMs <= c.Timers.TickIntervalMs {
		issues = append(issues, ValidationError{"timers.dead_interval_ms", "should exceed tick_interval_ms or neighbors will flap", "warning"})
	}

	seen := map[uint32]struct{}{}
	for i, n := range c.Neighbors {
		field := fmt.Sprintf("neighbors[%d]", i)
		if n.RouterID == 0 {
			issues = append(issues, ValidationError{field + ".router_id", "must be nonzero", "error"})
		}
		if _, dup := seen[n.RouterID]; dup {
			issues = append(issues, ValidationError{field + ".router_id", "duplicate neighbor router_id", "error"})
		}
		seen[n.RouterID] = struct{}{}
		if net.ParseIP(n.Address) == nil {
			issues = append(issues, ValidationError{field + ".address", fmt.Sprintf("not a valid IP: %q", n.Address), "error"})
		}
		if n.Cost < 0 {
			issues = append(issues, ValidationError{field + ".cost", "must be non-negative", "error"})
		}
	}

	if c.Forwarding.Enabled {
		for _, p := range c.Forwarding.DestinationPrefixes {
			if _, _, err := net.ParseCIDR(p); err != nil {
				issues = append(issues, ValidationError{"forwarding.destination_prefixes", fmt.Sprintf("invalid CIDR %q", p), "error"})
			}
		}
	}
	if c.Management.HTTP.Enabled && (c.Management.HTTP.Port <= 0 || c.Management.HTTP.Port > 65535) {
		issues = append(issues, ValidationError{"management.http.port", "must be in 1..65535", "error"})
	}
	if c.Management.GRPC.Enabled {
		issues = append(issues, ValidationError{"management.grpc", "grpc management is accepted but not served by this daemon", "warning"})
	}

	var warnings []string
	for _, v := range issues {
		if v.Severity == "warning" {
			warnings = append(warnings, v.Error())
		}
	}
	if issues.HasErrors() {
		return warnings, errors.Wrap(issues, errors.KindInvalidConfig, "invalid configuration")
	}
	return warnings, nil
}
