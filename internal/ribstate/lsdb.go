// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ribstate

import (
	"time"

	"grimm.is/flywall/internal/routegraph"
)

// LinkStateRecord is the latest LSA received from one origin.
type LinkStateRecord struct {
	OriginRouterID routegraph.RouterID
	Seq            int64
	Links          map[routegraph.RouterID]routegraph.Cost
	LearnedAt      time.Time
}

// LinkStateDb is the set of latest link-state records, one per origin.
type LinkStateDb struct {
	records map[routegraph.RouterID]LinkStateRecord
}

// NewLinkStateDb returns an empty database.
func NewLinkStateDb() *LinkStateDb {
	return &LinkStateDb{records: map[routegraph.RouterID]LinkStateRecord{}}
}

// Upsert replaces the record for origin iff seq is strictly greater than
// the stored seq (or there is no stored record). Returns true iff the
// database changed.
func (db *LinkStateDb) Upsert(origin routegraph.RouterID, seq int64, links map[routegraph.RouterID]routegraph.Cost, now time.Time) bool {
	cur, ok := db.records[origin]
	if ok && seq <= cur.Seq {
		return false
	}
	linksCopy := make(map[routegraph.RouterID]routegraph.Cost, len(links))
	for k, v := range links {
		linksCopy[k] = v
	}
	db.records[origin] = LinkStateRecord{OriginRouterID: origin, Seq: seq, Links: linksCopy, LearnedAt: now}
	return true
}

// Get returns the record for origin, if present.
func (db *LinkStateDb) Get(origin routegraph.RouterID) (LinkStateRecord, bool) {
	r, ok := db.records[origin]
	return r, ok
}

// All returns every current record, unordered.
func (db *LinkStateDb) All() []LinkStateRecord {
	out := make([]LinkStateRecord, 0, len(db.records))
	for _, r := range db.records {
		out = append(out, r)
	}
	return out
}

// AgeOut removes every record older than maxAge, returning whether the
// database changed.
func (db *LinkStateDb) AgeOut(now time.Time, maxAge time.Duration) bool {
	changed := false
	for origin, r := range db.records {
		if now.Sub(r.LearnedAt) > maxAge {
			delete(db.records, origin)
			changed = true
		}
	}
	return changed
}

// Graph builds the directed routegraph.Graph implied by the current LSDB
// contents: every origin's advertised links become outgoing edges.
func (db *LinkStateDb) Graph() routegraph.Graph {
	g := make(routegraph.Graph, len(db.records))
	for origin, r := range db.records {
		edges := make(map[routegraph.RouterID]routegraph.Cost, len(r.Links))
		for to, cost := range r.Links {
			edges[to] = cost
		}
		g[origin] = edges
	}
	return g
}
