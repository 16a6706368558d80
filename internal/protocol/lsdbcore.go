// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package protocol

import "grimm.is/flywall/internal/ribstate"
import "grimm.is/flywall/internal/routegraph"

// NeighborInfosFromLinks derives the up-neighbor list an exchange
// scheduler and flood need, directly from the links ctx already carries.
// ctx.Links only ever contains currently-up neighbors, so every entry is
// marked up.
func NeighborInfosFromLinks(links map[routegraph.RouterID]RouterLink) []ribstate.NeighborInfo {
	out := make([]ribstate.NeighborInfo, 0, len(links))
	for id, l := range links {
		out = append(out, ribstate.NeighborInfo{RouterID: id, Cost: l.Cost, IsUp: true})
	}
	return out
}

// LSAPayload encodes a local-links snapshot as an OspfLsa/DdrLsa payload.
func LSAPayload(links map[routegraph.RouterID]routegraph.Cost) map[string]interface{} {
	entries := make([]interface{}, 0, len(links))
	for id, cost := range links {
		entries = append(entries, map[string]interface{}{"neighbor": float64(id), "cost": float64(cost)})
	}
	return map[string]interface{}{"links": entries}
}

// ParseLSAPayload decodes what LSAPayload produced.
func ParseLSAPayload(payload map[string]interface{}) map[routegraph.RouterID]routegraph.Cost {
	out := map[routegraph.RouterID]routegraph.Cost{}
	raw, ok := payload["links"].([]interface{})
	if !ok {
		return out
	}
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		neighbor, ok1 := m["neighbor"].(float64)
		cost, ok2 := m["cost"].(float64)
		if !ok1 || !ok2 {
			continue
		}
		out[routegraph.RouterID(neighbor)] = routegraph.Cost(cost)
	}
	return out
}
