// Package afftable implements the per-protocol affiliation and grant
// table: unit registration, group affiliation, and channel grant
// bookkeeping, grounded on original_source's
// src/host/dmr/lookups/DMRAffiliationLookup.h. It is single-owner mutable
// state (owned exclusively by one protocol controller, per the
// concurrency model), so no internal locking is needed.
package afftable

import "github.com/dvmgo/trunkcore/internal/timing"

// ReleaseFunc is invoked when a grant's timer expires or is explicitly
// released, letting the owning controller emit a protocol-level release
// message and clear any call state tied to the channel.
type ReleaseFunc func(channel uint32, dst uint32, slot byte)

// Table tracks unit registrations, group affiliations, and channel grants
// for one protocol controller.
type Table struct {
	unitReg   map[uint32]struct{}
	groupAff  map[uint32]uint32 // src -> dst
	grantCh   map[uint32]uint32 // dst -> channel
	grantSrc  map[uint32]uint32 // dst -> src
	grantNet  map[uint32]bool   // dst -> is_net_granted
	grantSlot map[uint32]byte   // dst -> slot (DMR two-slot channels)
	timers    map[uint32]*timing.Timer

	rfChPool map[uint32]struct{}
	rfChFree map[uint32]struct{}

	ticksPerSec int
	onRelease   ReleaseFunc
}

// New builds an affiliation table over the given physical channel pool.
func New(ticksPerSec int, pool []uint32, onRelease ReleaseFunc) *Table {
	t := &Table{
		unitReg:     make(map[uint32]struct{}),
		groupAff:    make(map[uint32]uint32),
		grantCh:     make(map[uint32]uint32),
		grantSrc:    make(map[uint32]uint32),
		grantNet:    make(map[uint32]bool),
		grantSlot:   make(map[uint32]byte),
		timers:      make(map[uint32]*timing.Timer),
		rfChPool:    make(map[uint32]struct{}, len(pool)),
		rfChFree:    make(map[uint32]struct{}, len(pool)),
		ticksPerSec: ticksPerSec,
		onRelease:   onRelease,
	}
	for _, ch := range pool {
		t.rfChPool[ch] = struct{}{}
		t.rfChFree[ch] = struct{}{}
	}
	return t
}

// UnitReg idempotently registers a unit.
func (t *Table) UnitReg(src uint32) { t.unitReg[src] = struct{}{} }

// IsUnitReg reports whether src is currently registered.
func (t *Table) IsUnitReg(src uint32) bool {
	_, ok := t.unitReg[src]
	return ok
}

// UnitDereg removes a unit's registration, returning whether it was
// present.
func (t *Table) UnitDereg(src uint32) bool {
	_, ok := t.unitReg[src]
	delete(t.unitReg, src)
	return ok
}

// GroupAff affiliates src with dst, overwriting any prior affiliation.
func (t *Table) GroupAff(src, dst uint32) { t.groupAff[src] = dst }

// GroupUnaff clears src's affiliation.
func (t *Table) GroupUnaff(src uint32) { delete(t.groupAff, src) }

// IsAffiliated reports whether src is affiliated with dst.
func (t *Table) IsAffiliated(src, dst uint32) bool {
	aff, ok := t.groupAff[src]
	return ok && aff == dst
}

// ClearGroupAff removes every unit affiliated to dst (when releaseAll) or
// is a no-op otherwise, returning the list of cleared unit IDs.
func (t *Table) ClearGroupAff(dst uint32, releaseAll bool) []uint32 {
	if !releaseAll {
		return nil
	}
	var cleared []uint32
	for src, aff := range t.groupAff {
		if aff == dst {
			cleared = append(cleared, src)
			delete(t.groupAff, src)
		}
	}
	return cleared
}

// GrantCh grants dst the first (lowest-numbered) free channel in the pool, recording src
// and the caller-supplied flags and arming a countdown timer. Returns
// false (no state mutated) if no channel is free.
func (t *Table) GrantCh(dst, src uint32, timeoutMS int, isNetGranted bool, slot byte) bool {
	if _, already := t.grantCh[dst]; already {
		return true
	}
	var free uint32
	found := false
	for ch := range t.rfChFree {
		if !found || ch < free {
			free = ch
		}
		found = true
	}
	if !found {
		return false
	}
	delete(t.rfChFree, free)
	t.grantCh[dst] = free
	t.grantSrc[dst] = src
	t.grantNet[dst] = isNetGranted
	t.grantSlot[dst] = slot

	tm := timing.New(t.ticksPerSec, 0, timeoutMS)
	tm.Start(0, 0)
	t.timers[dst] = tm
	return true
}

// TouchGrant restarts dst's grant timer with the given timeoutMS.
func (t *Table) TouchGrant(dst uint32, timeoutMS int) {
	if _, ok := t.grantCh[dst]; !ok {
		return
	}
	tm := timing.New(t.ticksPerSec, 0, timeoutMS)
	tm.Start(0, 0)
	t.timers[dst] = tm
}

// ReleaseGrant releases dst's channel grant. When releaseAll, every other
// grant sharing the same physical channel (DMR two-slot channels) is
// released too.
func (t *Table) ReleaseGrant(dst uint32, releaseAll bool) bool {
	ch, ok := t.grantCh[dst]
	if !ok {
		return false
	}
	t.releaseOne(dst, ch)
	if releaseAll {
		for otherDst, otherCh := range t.grantCh {
			if otherCh == ch {
				t.releaseOne(otherDst, otherCh)
			}
		}
	}
	return true
}

func (t *Table) releaseOne(dst, ch uint32) {
	slot := t.grantSlot[dst]
	delete(t.grantCh, dst)
	delete(t.grantSrc, dst)
	delete(t.grantNet, dst)
	delete(t.grantSlot, dst)
	delete(t.timers, dst)

	stillUsed := false
	for _, otherCh := range t.grantCh {
		if otherCh == ch {
			stillUsed = true
			break
		}
	}
	if !stillUsed {
		t.rfChFree[ch] = struct{}{}
	}
	if t.onRelease != nil {
		t.onRelease(ch, dst, slot)
	}
}

// IsChBusy reports whether ch is currently assigned to any grant.
func (t *Table) IsChBusy(ch uint32) bool {
	_, free := t.rfChFree[ch]
	return !free
}

// GrantedSrc returns the source RID granted to dst, if any.
func (t *Table) GrantedSrc(dst uint32) (uint32, bool) {
	src, ok := t.grantSrc[dst]
	return src, ok
}

// GrantedCh returns the channel granted to dst, if any.
func (t *Table) GrantedCh(dst uint32) (uint32, bool) {
	ch, ok := t.grantCh[dst]
	return ch, ok
}

// ClockGrants advances every active grant timer by elapsed ticks and
// releases any that expire, invoking onRelease for each.
func (t *Table) ClockGrants(ticks int) {
	for dst, tm := range t.timers {
		tm.Clock(ticks)
		if tm.HasExpired() {
			if ch, ok := t.grantCh[dst]; ok {
				t.releaseOne(dst, ch)
			}
		}
	}
}

// PoolSize returns the total and free channel counts, satisfying the
// invariant |grant_ch| + |rf_ch_free| == |rf_ch_pool| at quiescence.
func (t *Table) PoolSize() (total, free int) {
	return len(t.rfChPool), len(t.rfChFree)
}

// GrantInfo is one destination's current channel grant, as reported to
// the REST admin surface's per-protocol grant report.
type GrantInfo struct {
	Channel uint32
	Src     uint32
	Net     bool
	Slot    byte
}

// Grants returns a snapshot of every active grant, keyed by destination.
func (t *Table) Grants() map[uint32]GrantInfo {
	out := make(map[uint32]GrantInfo, len(t.grantCh))
	for dst, ch := range t.grantCh {
		out[dst] = GrantInfo{Channel: ch, Src: t.grantSrc[dst], Net: t.grantNet[dst], Slot: t.grantSlot[dst]}
	}
	return out
}

// Affiliations returns a snapshot of every group affiliation, keyed by
// source unit ID.
func (t *Table) Affiliations() map[uint32]uint32 {
	out := make(map[uint32]uint32, len(t.groupAff))
	for src, dst := range t.groupAff {
		out[src] = dst
	}
	return out
}
