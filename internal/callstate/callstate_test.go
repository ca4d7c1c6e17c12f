package callstate

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvmgo/trunkcore/internal/afftable"
)

type fakeACL struct {
	deniedRIDs map[uint32]bool
	deniedTGs  map[uint32]bool
}

func (f fakeACL) RIDAllowed(rid uint32) bool { return !f.deniedRIDs[rid] }
func (f fakeACL) TGAllowed(tg uint32) bool   { return !f.deniedTGs[tg] }
func (f fakeACL) RequireAffiliation(tg uint32) bool { return false }

func TestAdmitRFGrantsWhenAllowed(t *testing.T) {
	grants := afftable.New(1000, []uint32{1, 2}, nil)
	acl := fakeACL{deniedRIDs: map[uint32]bool{}, deniedTGs: map[uint32]bool{}}
	ctrl := NewController("dmr", acl, grants, NewMetrics(prometheus.NewRegistry(), "dmr"), nil)

	call, reason := ctrl.AdmitRF(100, 200, true, 1000)
	require.Equal(t, DenyNone, reason)
	require.NotNil(t, call)
	assert.Equal(t, RFCallStart, call.RFState)
}

func TestAdmitRFDeniedByRIDACL(t *testing.T) {
	grants := afftable.New(1000, []uint32{1}, nil)
	acl := fakeACL{deniedRIDs: map[uint32]bool{100: true}, deniedTGs: map[uint32]bool{}}
	ctrl := NewController("dmr", acl, grants, NewMetrics(prometheus.NewRegistry(), "dmr"), nil)

	_, reason := ctrl.AdmitRF(100, 200, true, 1000)
	assert.Equal(t, DenyRIDACL, reason)
}

func TestAdmitRFDeniedWhenPoolExhausted(t *testing.T) {
	grants := afftable.New(1000, nil, nil) // empty pool
	acl := fakeACL{deniedRIDs: map[uint32]bool{}, deniedTGs: map[uint32]bool{}}
	ctrl := NewController("dmr", acl, grants, NewMetrics(prometheus.NewRegistry(), "dmr"), nil)

	_, reason := ctrl.AdmitRF(100, 200, true, 1000)
	assert.Equal(t, DenyChnResourceNotAvail, reason)
}

func TestMismatchedRFPreemptsMatchingNetCall(t *testing.T) {
	grants := afftable.New(1000, []uint32{1, 2, 3}, nil)
	acl := fakeACL{deniedRIDs: map[uint32]bool{}, deniedTGs: map[uint32]bool{}}
	ctrl := NewController("dmr", acl, grants, NewMetrics(prometheus.NewRegistry(), "dmr"), nil)

	_, reason := ctrl.AdmitNet(1, 500, true, 1000)
	require.Equal(t, DenyNone, reason)
	ctrl.Net().NetState = NetAudio

	_, reason = ctrl.AdmitRF(2, 500, true, 1000)
	assert.Equal(t, DenyNone, reason)
	assert.Equal(t, NetEnd, ctrl.Net().NetState)
}
