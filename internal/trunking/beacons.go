package trunking

import (
	"github.com/dvmgo/trunkcore/internal/lc/nxdn"
	"github.com/dvmgo/trunkcore/internal/lc/p25"
	"github.com/dvmgo/trunkcore/internal/txqueue"
)

// SiteConfig carries the static broadcast content a control channel
// repeats: site/system identifiers, the channel-identifier bandplan
// entry, and the adjacent-site list, grounded on
// original_source/src/host/p25/packet/Trunk.cpp's site-broadcast fields.
type SiteConfig struct {
	SiteID  uint16
	RFSSID  byte
	SysID   uint16
	LRAID   byte
	Channel uint16

	IdenID    byte
	BaseFreq  uint32
	ChBWKHz   uint16
	SpacingKH uint16

	Adjacent []p25.AdjStsBcast
}

// NewP25Beacons builds the round-robin control-channel beacon set: RFSS
// status every tick, one adjacent-site status every 2nd tick (cycling
// through the adjacent list), and an iden-up every 4th tick, matching
// HostFNE.cpp's broadcast cadence of "always site status, occasionally
// everything else."
func NewP25Beacons(cfg SiteConfig, enqueue func(payload []byte) error) []*Beacon {
	adjIdx := 0
	beacons := []*Beacon{
		{
			Name:  "rfss_sts_bcast",
			Every: 1,
			Fire: func() error {
				b := &p25.RFSSStsBcast{SiteID: cfg.SiteID, RFSSID: cfg.RFSSID, Channel: cfg.Channel, SysID: cfg.SysID, LRAID: cfg.LRAID}
				return enqueue(b.Encode())
			},
		},
		{
			Name:  "iden_up",
			Every: 4,
			Fire: func() error {
				b := &p25.IdenUp{IdenID: cfg.IdenID, BaseFreq: cfg.BaseFreq, ChBWKHz: cfg.ChBWKHz, SpacingKH: cfg.SpacingKH}
				return enqueue(b.Encode())
			},
		},
	}
	if len(cfg.Adjacent) > 0 {
		beacons = append(beacons, &Beacon{
			Name:  "adj_sts_bcast",
			Every: 2,
			Fire: func() error {
				b := cfg.Adjacent[adjIdx%len(cfg.Adjacent)]
				adjIdx++
				return enqueue(b.Encode())
			},
		})
	}
	return beacons
}

// NewNXDNBeacons wires the nxdn.SiteCadence scheduler into a single
// beacon that fires every tick, letting the cadence's own counters
// (rather than the Beacon.Every round-robin) decide what goes out: a
// site-info when the cadence says so, and a srv-info for every other
// broadcast kind it returns.
func NewNXDNBeacons(cadence *nxdn.SiteCadence, siteInfo func() nxdn.SiteInfo, srvInfo func() nxdn.SrvInfo, enqueue func(payload []byte) error) []*Beacon {
	return []*Beacon{
		{
			Name:  "site_cadence",
			Every: 1,
			Fire: func() error {
				switch cadence.Next() {
				case nxdn.BroadcastSiteInfo:
					si := siteInfo()
					return enqueue(si.Encode())
				default:
					sv := srvInfo()
					return enqueue(sv.Encode())
				}
			},
		},
	}
}

// QueueEnqueue adapts a *txqueue.Queue into the enqueue func Beacon.Fire
// callbacks expect, tagging every beacon frame as control data at normal
// (non-immediate) priority so voice grants still jump ahead of it.
func QueueEnqueue(q *txqueue.Queue) func([]byte) error {
	return func(payload []byte) error {
		return q.AddFrame(txqueue.TagData, 0, payload, false)
	}
}
