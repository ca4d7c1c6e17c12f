// Package lookup implements the RID ACL and TG rule tables the call
// state precondition chain (C6) consults, backed by gorm/sqlite and
// read through a concurrent in-memory map that a background reload
// refreshes without blocking readers, grounded on the teacher's
// internal/lookup/dmr_lookup.go background-reload pattern generalized
// from a flat ID-file to a protocol-tagged database-backed table.
package lookup

import (
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/dvmgo/trunkcore/internal/database"
)

type ridKey struct {
	Protocol string
	RadioID  uint32
}

type tgKey struct {
	Protocol string
	DstID    uint32
}

// store is the concurrent read-mostly view reloads mutate in place: a
// reload upserts changed rows and deletes rows no longer present in the
// database, so lookups never block behind a full-table rebuild.
type store struct {
	rids *xsync.Map[ridKey, database.RadioUser]
	tgs  *xsync.Map[tgKey, database.TGRule]
}

func newStore() *store {
	return &store{
		rids: xsync.NewMap[ridKey, database.RadioUser](),
		tgs:  xsync.NewMap[tgKey, database.TGRule](),
	}
}

// syncRIDs reconciles the live map with the authoritative row set from
// the most recent database read, keyed by protocol+radio_id.
func (s *store) syncRIDs(rows []database.RadioUser) {
	seen := make(map[ridKey]struct{}, len(rows))
	for _, u := range rows {
		key := ridKey{Protocol: u.Protocol, RadioID: u.RadioID}
		seen[key] = struct{}{}
		s.rids.Store(key, u)
	}
	s.rids.Range(func(key ridKey, _ database.RadioUser) bool {
		if _, ok := seen[key]; !ok {
			s.rids.Delete(key)
		}
		return true
	})
}

// syncTGs reconciles the live map with the authoritative TG rule set.
func (s *store) syncTGs(rows []database.TGRule) {
	seen := make(map[tgKey]struct{}, len(rows))
	for _, r := range rows {
		key := tgKey{Protocol: r.Protocol, DstID: r.DstID}
		seen[key] = struct{}{}
		s.tgs.Store(key, r)
	}
	s.tgs.Range(func(key tgKey, _ database.TGRule) bool {
		if _, ok := seen[key]; !ok {
			s.tgs.Delete(key)
		}
		return true
	})
}

// ridAllowed reports whether rid is permitted to key up at all. An RID
// absent from the table is allowed by default — the table enumerates
// exceptions (explicit denials, e.g. a radio reported stolen), not a
// whitelist of every valid subscriber on the network.
func (s *store) ridAllowed(protocol string, rid uint32) bool {
	u, ok := s.rids.Load(ridKey{Protocol: protocol, RadioID: rid})
	if !ok {
		return true
	}
	return u.Allowed
}

// tgAllowed reports whether dstID may be used at all. Like ridAllowed,
// an unlisted destination is permitted; the table only needs entries
// for denied or affiliation-gated destinations.
func (s *store) tgAllowed(protocol string, dstID uint32) bool {
	r, ok := s.tgs.Load(tgKey{Protocol: protocol, DstID: dstID})
	if !ok {
		return true
	}
	return r.Allowed
}

// requireAffiliation reports whether dstID requires the source to be
// group-affiliated before transmitting.
func (s *store) requireAffiliation(protocol string, dstID uint32) bool {
	r, ok := s.tgs.Load(tgKey{Protocol: protocol, DstID: dstID})
	return ok && r.RequireAffiliation
}

// callsign returns the RID's registered callsign, or empty if
// unregistered.
func (s *store) callsign(protocol string, rid uint32) string {
	u, ok := s.rids.Load(ridKey{Protocol: protocol, RadioID: rid})
	if !ok {
		return ""
	}
	return u.Callsign
}

// counts reports the number of RID and TG entries currently held, for
// diagnostics.
func (s *store) counts() (rids, tgs int) {
	return s.rids.Size(), s.tgs.Size()
}
