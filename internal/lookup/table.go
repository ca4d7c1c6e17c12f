package lookup

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dvmgo/trunkcore/internal/database"
)

// Table is the RID ACL and TG rule table consulted by every protocol
// controller's precondition chain. It owns the gorm-backed repositories
// and the live concurrent store those repositories reload into.
type Table struct {
	users  *database.RadioUserRepository
	rules  *database.TGRuleRepository
	store  *store
	logger *slog.Logger

	generation atomic.Uint64
}

// New builds a lookup table over the given repositories. Callers must
// call Reload at least once (directly or via a scheduler) before the
// table reflects the database.
func New(users *database.RadioUserRepository, rules *database.TGRuleRepository, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{users: users, rules: rules, store: newStore(), logger: logger}
}

// Reload re-reads both tables from the database and reconciles the live
// store, bumping the reload generation counter on success.
func (t *Table) Reload() error {
	userRows, err := t.users.All()
	if err != nil {
		return fmt.Errorf("lookup: reload radio users: %w", err)
	}
	ruleRows, err := t.rules.All()
	if err != nil {
		return fmt.Errorf("lookup: reload tg rules: %w", err)
	}

	t.store.syncRIDs(userRows)
	t.store.syncTGs(ruleRows)
	gen := t.generation.Add(1)

	rids, tgs := t.store.counts()
	t.logger.Info("lookup: reload complete", "generation", gen, "rids", rids, "tgs", tgs)
	return nil
}

// Generation returns the current reload generation, incremented once
// per successful Reload.
func (t *Table) Generation() uint64 { return t.generation.Load() }

// ForProtocol returns an ACLChecker view of this table scoped to one
// protocol, satisfying callstate.ACLChecker.
func (t *Table) ForProtocol(protocol string) *ProtocolView {
	return &ProtocolView{table: t, protocol: protocol}
}

// ProtocolView adapts Table to callstate.ACLChecker for one protocol tag.
type ProtocolView struct {
	table    *Table
	protocol string
}

func (v *ProtocolView) RIDAllowed(rid uint32) bool {
	return v.table.store.ridAllowed(v.protocol, rid)
}

func (v *ProtocolView) TGAllowed(dstID uint32) bool {
	return v.table.store.tgAllowed(v.protocol, dstID)
}

func (v *ProtocolView) RequireAffiliation(dstID uint32) bool {
	return v.table.store.requireAffiliation(v.protocol, dstID)
}

// Callsign returns the registered callsign for rid under this view's
// protocol, or empty if unregistered.
func (v *ProtocolView) Callsign(rid uint32) string {
	return v.table.store.callsign(v.protocol, rid)
}
