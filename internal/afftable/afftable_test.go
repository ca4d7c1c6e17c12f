package afftable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantReleaseCyclePreservesPoolInvariant(t *testing.T) {
	var released []uint32
	tbl := New(1000, []uint32{1, 2, 3}, func(ch, dst uint32, slot byte) {
		released = append(released, dst)
	})

	ok := tbl.GrantCh(100, 7, 5000, false, 0)
	require.True(t, ok)
	ch, ok := tbl.GrantedCh(100)
	require.True(t, ok)
	assert.Contains(t, []uint32{1, 2, 3}, ch)

	total, free := tbl.PoolSize()
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, free)

	ok = tbl.ReleaseGrant(100, false)
	assert.True(t, ok)
	assert.Equal(t, []uint32{100}, released)

	_, free2 := tbl.PoolSize()
	assert.Equal(t, 3, free2)
}

func TestGrantChFailsWhenPoolExhausted(t *testing.T) {
	tbl := New(1000, []uint32{1}, nil)
	assert.True(t, tbl.GrantCh(100, 1, 1000, false, 0))
	assert.False(t, tbl.GrantCh(200, 2, 1000, false, 0))
}

func TestReleaseAllReleasesSharedChannel(t *testing.T) {
	tbl := New(1000, []uint32{1}, nil)
	tbl.grantCh[100] = 1
	tbl.grantCh[200] = 1
	delete(tbl.rfChFree, 1)

	ok := tbl.ReleaseGrant(100, true)
	assert.True(t, ok)
	_, ok = tbl.GrantedCh(200)
	assert.False(t, ok)
}

func TestClearGroupAffReturnsOnlyMatchingDst(t *testing.T) {
	tbl := New(1000, nil, nil)
	tbl.GroupAff(1, 500)
	tbl.GroupAff(2, 500)
	tbl.GroupAff(3, 600)

	cleared := tbl.ClearGroupAff(500, true)
	assert.ElementsMatch(t, []uint32{1, 2}, cleared)
	assert.True(t, tbl.IsAffiliated(3, 600))
}
