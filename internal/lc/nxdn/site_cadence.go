package nxdn

// BroadcastKind names which cadence slot the site scheduler is about to
// fire, mirroring the counters decoded off SiteInfo (bcch_cnt,
// rcch_grouping_cnt, ccch_paging_cnt, ccch_multi_cnt, rcch_iterate_cnt).
type BroadcastKind int

const (
	BroadcastSiteInfo BroadcastKind = iota
	BroadcastSrvInfo
	BroadcastAdjacentSite
	BroadcastPaging
)

// SiteCadence reproduces the NXDN site controller's broadcast-channel
// cadence counters, supplementing the distilled spec's SiteInfo fields
// with the scheduling behavior those fields exist to drive.
type SiteCadence struct {
	BcchCount      byte
	RcchGrouping   byte
	CcchPagingCnt  byte
	CcchMultiCnt   byte
	RcchIterateCnt byte

	bcchTick  byte
	rcchTick  byte
	pageTick  byte
	multiTick byte
}

// NewSiteCadence builds a cadence scheduler from a decoded SiteInfo's
// counters.
func NewSiteCadence(info SiteInfo) *SiteCadence {
	return &SiteCadence{
		BcchCount:      info.BcchCount,
		RcchGrouping:   info.RcchGrouping,
		CcchPagingCnt:  info.CcchPagingCnt,
		CcchMultiCnt:   info.CcchMultiCnt,
		RcchIterateCnt: info.RcchIterateCnt,
	}
}

// Next advances the cadence by one superframe slot and reports which
// broadcast the scheduler should fire, round-robining BCCH (site info)
// against the RCCH paging/multi-frame slots per the counters.
func (c *SiteCadence) Next() BroadcastKind {
	c.bcchTick++
	if c.BcchCount == 0 || c.bcchTick >= c.BcchCount {
		c.bcchTick = 0
		return BroadcastSiteInfo
	}

	c.pageTick++
	if c.CcchPagingCnt != 0 && c.pageTick >= c.CcchPagingCnt {
		c.pageTick = 0
		return BroadcastPaging
	}

	c.multiTick++
	if c.CcchMultiCnt != 0 && c.multiTick >= c.CcchMultiCnt {
		c.multiTick = 0
		return BroadcastAdjacentSite
	}

	return BroadcastSrvInfo
}
