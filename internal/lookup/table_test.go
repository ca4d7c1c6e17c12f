package lookup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dvmgo/trunkcore/internal/database"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	db, err := database.NewDB(database.Config{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := database.NewRadioUserRepository(db.GetDB())
	rules := database.NewTGRuleRepository(db.GetDB())
	return New(users, rules, nil)
}

func TestReloadPopulatesACLFromDatabase(t *testing.T) {
	table := newTestTable(t)

	require.NoError(t, table.users.Upsert(&database.RadioUser{RadioID: 100, Protocol: "DMR", Callsign: "KJ4ABC", Allowed: false}))
	require.NoError(t, table.rules.Upsert(&database.TGRule{DstID: 9, Protocol: "DMR", Allowed: true, RequireAffiliation: true}))

	require.NoError(t, table.Reload())
	require.EqualValues(t, 1, table.Generation())

	view := table.ForProtocol("DMR")
	require.False(t, view.RIDAllowed(100))
	require.True(t, view.RIDAllowed(999)) // unlisted RID defaults allowed
	require.True(t, view.TGAllowed(9))
	require.True(t, view.RequireAffiliation(9))
	require.False(t, view.RequireAffiliation(10)) // unlisted TG has no affiliation gate
	require.Equal(t, "KJ4ABC", view.Callsign(100))
}

func TestReloadAppliesUpdatedRows(t *testing.T) {
	table := newTestTable(t)

	require.NoError(t, table.users.Upsert(&database.RadioUser{RadioID: 200, Protocol: "P25", Callsign: "N0CALL", Allowed: false}))
	require.NoError(t, table.Reload())
	require.False(t, table.ForProtocol("P25").RIDAllowed(200))

	require.NoError(t, table.users.Upsert(&database.RadioUser{RadioID: 200, Protocol: "P25", Callsign: "N0CALL", Allowed: true}))
	require.NoError(t, table.Reload())
	require.True(t, table.ForProtocol("P25").RIDAllowed(200))
}

func TestProtocolViewsAreIsolated(t *testing.T) {
	table := newTestTable(t)
	require.NoError(t, table.users.Upsert(&database.RadioUser{RadioID: 300, Protocol: "DMR", Callsign: "KJ4XYZ", Allowed: false}))
	require.NoError(t, table.Reload())

	require.False(t, table.ForProtocol("DMR").RIDAllowed(300))
	require.True(t, table.ForProtocol("P25").RIDAllowed(300))
}
