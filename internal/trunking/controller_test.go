package trunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvmgo/trunkcore/internal/afftable"
	"github.com/dvmgo/trunkcore/internal/lc/nxdn"
	"github.com/dvmgo/trunkcore/internal/lc/p25"
	"github.com/dvmgo/trunkcore/internal/txqueue"
)

type fakeModem struct {
	written []txqueue.Frame
}

func (m *fakeModem) WriteFrame(f txqueue.Frame) error {
	m.written = append(m.written, f)
	return nil
}

type countingRX struct{ drains int }

func (r *countingRX) Drain() bool {
	r.drains++
	return false
}

func TestTickDrainsQueuesAndEmitsBeacon(t *testing.T) {
	tx := txqueue.New(4096, "p25-cc", nil)
	modem := &fakeModem{}
	modemRX := &countingRX{}
	netRX := &countingRX{}

	ctrl := NewController("p25", 0, nil)
	ctrl.ModemRX = modemRX
	ctrl.NetRX = netRX
	ctrl.TX = tx
	ctrl.Modem = modem

	cfg := SiteConfig{SiteID: 1, RFSSID: 1, SysID: 0x123, Channel: 5}
	ctrl.Beacons = NewP25Beacons(cfg, QueueEnqueue(tx))

	ctrl.Tick()

	assert.Equal(t, 1, modemRX.drains)
	assert.Equal(t, 1, netRX.drains)
	require.Len(t, modem.written, 1)

	decoded, err := p25.Decode(modem.written[0].Payload)
	require.NoError(t, err)
	rfss, ok := decoded.(*p25.RFSSStsBcast)
	require.True(t, ok)
	assert.EqualValues(t, 1, rfss.SiteID)
}

func TestTickServicesGrantTimers(t *testing.T) {
	grants := afftable.New(1000, []uint32{1}, nil)
	ok := grants.GrantCh(500, 100, 1, false, 0) // 1ms timeout, expires almost immediately
	require.True(t, ok)

	ctrl := NewController("dmr", 0, nil)
	ctrl.Grants = grants

	ctrl.Tick()
	ctrl.Tick()
	ctrl.Tick()

	_, stillGranted := grants.GrantedCh(500)
	assert.False(t, stillGranted)
}

func TestNXDNBeaconCyclesSiteAndServiceInfo(t *testing.T) {
	tx := txqueue.New(4096, "nxdn-cc", nil)
	cadence := nxdn.NewSiteCadence(nxdn.SiteInfo{BcchCount: 2})

	ctrl := NewController("nxdn", 0, nil)
	ctrl.TX = tx
	ctrl.Beacons = NewNXDNBeacons(cadence,
		func() nxdn.SiteInfo { return nxdn.SiteInfo{LocationID: 7} },
		func() nxdn.SrvInfo { return nxdn.SrvInfo{VoiceSvc: true} },
		QueueEnqueue(tx))

	ctrl.Tick() // bcchTick=1 < 2 -> srv info (pageTick/multiTick both 0, no counts configured)
	_, ok := tx.GetFrame()
	require.True(t, ok)

	ctrl.Tick() // bcchTick=2 >= 2 -> site info
	frame, ok := tx.GetFrame()
	require.True(t, ok)
	decoded, err := nxdn.Decode(frame.Payload)
	require.NoError(t, err)
	site, ok := decoded.(*nxdn.SiteInfo)
	require.True(t, ok)
	assert.EqualValues(t, 7, site.LocationID)
}
