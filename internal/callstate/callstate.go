// Package callstate implements the RF and network call state machines
// shared by every protocol controller: an ordered, short-circuiting
// precondition chain followed by grant emission and call-progress
// tracking, grounded on the teacher gateway's CallState/hang-timer
// pattern (cmd/ysf2dmr/main.go) and original_source's
// src/host/dmr/packet/Voice.h.
package callstate

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dvmgo/trunkcore/internal/afftable"
	"github.com/dvmgo/trunkcore/internal/timing"
)

// RFState is the state of the RF (air interface) side of a call.
type RFState int

const (
	RFIdle RFState = iota
	RFCallStart
	RFAudio
	RFRejected
	RFEnd
)

// NetState is the state of the network (FNE) side of a call.
type NetState int

const (
	NetIdle NetState = iota
	NetCallStart
	NetAudio
	NetRejected
	NetEnd
)

// DenyReason enumerates why a precondition rejected a call, surfaced in
// the protocol-specific Deny/Queue response the controller emits.
type DenyReason int

const (
	DenyNone DenyReason = iota
	DenyFeatureDisabled
	DenyRIDACL
	DenyTGACL
	DenyNotAffiliated
	DenyTrafficCollision
	DenyChnResourceNotAvail
)

// ACLChecker answers the RID/TG/affiliation precondition questions; the
// lookup package's snapshot satisfies this.
type ACLChecker interface {
	RIDAllowed(rid uint32) bool
	TGAllowed(tgid uint32) bool
	RequireAffiliation(tgid uint32) bool
}

// Call tracks one active (or just-denied) call on either the RF or the
// network side.
type Call struct {
	SrcID   uint32
	DstID   uint32
	IsGroup bool

	RFState  RFState
	NetState NetState

	CallTimeout   *timing.Timer
	RFTGHang      *timing.Timer
	NetTGHang     *timing.Timer
	RejectionHang *timing.Timer
	GrantTimer    *timing.Timer

	Frames uint64
	Bits   uint64
	Errors uint64
}

// Metrics are the prometheus counters shared across all protocol
// controllers, grounded on USA-RedDragon-DMRHub's metric-per-event style.
type Metrics struct {
	CallsGranted  prometheus.Counter
	CallsDenied   *prometheus.CounterVec
	CallsPreempted prometheus.Counter
}

// NewMetrics registers the call-state counters against reg.
func NewMetrics(reg prometheus.Registerer, protocol string) *Metrics {
	m := &Metrics{
		CallsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "trunkcore_calls_granted_total",
			Help:        "Total calls granted a channel.",
			ConstLabels: prometheus.Labels{"protocol": protocol},
		}),
		CallsDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "trunkcore_calls_denied_total",
			Help:        "Total calls denied, labeled by reason.",
			ConstLabels: prometheus.Labels{"protocol": protocol},
		}, []string{"reason"}),
		CallsPreempted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "trunkcore_calls_preempted_total",
			Help:        "Total calls preempted by the opposing RF/net side.",
			ConstLabels: prometheus.Labels{"protocol": protocol},
		}),
	}
	reg.MustRegister(m.CallsGranted, m.CallsDenied, m.CallsPreempted)
	return m
}

func denyReasonLabel(r DenyReason) string {
	switch r {
	case DenyFeatureDisabled:
		return "feature_disabled"
	case DenyRIDACL:
		return "rid_acl"
	case DenyTGACL:
		return "tg_acl"
	case DenyNotAffiliated:
		return "not_affiliated"
	case DenyTrafficCollision:
		return "traffic_collision"
	case DenyChnResourceNotAvail:
		return "chn_resource_not_avail"
	default:
		return "none"
	}
}

// Authority selects how the controller treats network traffic that
// doesn't match an in-progress RF call's destination.
type Authority int

const (
	Authoritative Authority = iota
	NonAuthoritative
)

// Controller evaluates the shared precondition chain and drives one
// protocol's call state machines. It owns no lookup or grant state
// itself — those are injected so the same controller shape serves DMR,
// P25 and NXDN.
type Controller struct {
	Protocol        string
	FeatureEnabled  bool
	Authority       Authority
	RequireAffil    bool
	ACL             ACLChecker
	Grants          *afftable.Table
	Metrics         *Metrics
	Logger          *slog.Logger

	DefaultCallTimeoutSec   int
	DefaultTGHangSec        int
	DefaultRejectionHangSec int
	DefaultGrantTimeoutSec  int

	rf  *Call
	net *Call
}

// NewController builds a call-state controller with the spec's default
// timeouts (call 180s, TG hang 5s, rejection hang 1s, grant 15s).
func NewController(protocol string, acl ACLChecker, grants *afftable.Table, metrics *Metrics, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		Protocol:                protocol,
		FeatureEnabled:          true,
		ACL:                     acl,
		Grants:                  grants,
		Metrics:                 metrics,
		Logger:                  logger,
		DefaultCallTimeoutSec:   180,
		DefaultTGHangSec:        5,
		DefaultRejectionHangSec: 1,
		DefaultGrantTimeoutSec:  15,
	}
}

// checkPreconditions runs the ordered, short-circuiting precondition
// chain for a new call request. It does not itself emit any deny
// response — callers translate the DenyReason into the protocol-specific
// opcode.
func (c *Controller) checkPreconditions(srcID, dstID uint32, isRF bool) DenyReason {
	if !c.FeatureEnabled {
		return DenyFeatureDisabled
	}
	if c.ACL != nil && !c.ACL.RIDAllowed(srcID) {
		return DenyRIDACL
	}
	if c.ACL != nil && !c.ACL.TGAllowed(dstID) {
		return DenyTGACL
	}
	if c.RequireAffil && c.ACL != nil && c.ACL.RequireAffiliation(dstID) {
		if c.Grants != nil && !c.Grants.IsAffiliated(srcID, dstID) {
			return DenyNotAffiliated
		}
	}
	if reason := c.checkCollision(srcID, dstID, isRF); reason != DenyNone {
		return reason
	}
	return DenyNone
}

// checkCollision implements the RF-vs-net traffic collision precedence:
// a new RF call preempts a matching-destination network call, but a new
// network call never preempts a mismatched RF call (and under
// Authoritative mode, never even a mismatched one without an explicit
// permit).
func (c *Controller) checkCollision(srcID, dstID uint32, isRF bool) DenyReason {
	if isRF {
		if c.net != nil && c.net.NetState == NetAudio && c.net.DstID == dstID {
			c.preemptNet()
		}
		return DenyNone
	}
	if c.rf != nil && c.rf.RFState == RFAudio {
		if c.rf.DstID != dstID {
			if c.Authority == Authoritative {
				return DenyTrafficCollision
			}
			// Non-authoritative: caller must wait for an explicit FNE
			// PERMIT naming the destination before admitting this call.
			return DenyTrafficCollision
		}
	}
	return DenyNone
}

func (c *Controller) preemptNet() {
	if c.net == nil {
		return
	}
	c.net.NetState = NetEnd
	if c.Metrics != nil {
		c.Metrics.CallsPreempted.Inc()
	}
}

// AdmitRF evaluates preconditions for an RF-originated call and, on
// success, transitions into RFCallStart and requests a channel grant.
func (c *Controller) AdmitRF(srcID, dstID uint32, isGroup bool, ticksPerSec int) (*Call, DenyReason) {
	reason := c.checkPreconditions(srcID, dstID, true)
	if reason != DenyNone {
		c.deny(reason)
		return nil, reason
	}
	if c.Grants != nil {
		ok := c.Grants.GrantCh(dstID, srcID, c.DefaultGrantTimeoutSec*1000, false, 0)
		if !ok {
			c.deny(DenyChnResourceNotAvail)
			return nil, DenyChnResourceNotAvail
		}
	}
	call := c.newCall(srcID, dstID, isGroup, ticksPerSec)
	call.RFState = RFCallStart
	c.rf = call
	if c.Metrics != nil {
		c.Metrics.CallsGranted.Inc()
	}
	return call, DenyNone
}

// AdmitNet mirrors AdmitRF for a network-originated call.
func (c *Controller) AdmitNet(srcID, dstID uint32, isGroup bool, ticksPerSec int) (*Call, DenyReason) {
	reason := c.checkPreconditions(srcID, dstID, false)
	if reason != DenyNone {
		c.deny(reason)
		return nil, reason
	}
	if c.Grants != nil {
		ok := c.Grants.GrantCh(dstID, srcID, c.DefaultGrantTimeoutSec*1000, true, 0)
		if !ok {
			c.deny(DenyChnResourceNotAvail)
			return nil, DenyChnResourceNotAvail
		}
	}
	call := c.newCall(srcID, dstID, isGroup, ticksPerSec)
	call.NetState = NetCallStart
	c.net = call
	if c.Metrics != nil {
		c.Metrics.CallsGranted.Inc()
	}
	return call, DenyNone
}

func (c *Controller) deny(reason DenyReason) {
	if c.Metrics != nil {
		c.Metrics.CallsDenied.WithLabelValues(denyReasonLabel(reason)).Inc()
	}
	c.Logger.Info("call denied", "protocol", c.Protocol, "reason", denyReasonLabel(reason))
}

func (c *Controller) newCall(srcID, dstID uint32, isGroup bool, ticksPerSec int) *Call {
	call := &Call{SrcID: srcID, DstID: dstID, IsGroup: isGroup}
	call.CallTimeout = timing.New(ticksPerSec, c.DefaultCallTimeoutSec, 0)
	call.CallTimeout.Start(0, 0)
	call.RFTGHang = timing.New(ticksPerSec, c.DefaultTGHangSec, 0)
	call.NetTGHang = timing.New(ticksPerSec, c.DefaultTGHangSec, 0)
	call.RejectionHang = timing.New(ticksPerSec, c.DefaultRejectionHangSec, 0)
	call.GrantTimer = timing.New(ticksPerSec, c.DefaultGrantTimeoutSec, 0)
	return call
}

// RecordRFFrame advances the RF call's audio-progress counters and
// refreshes its TG hang timer; call on every RF voice frame.
func (c *Controller) RecordRFFrame(bits, errors uint64) {
	if c.rf == nil {
		return
	}
	c.rf.RFState = RFAudio
	c.rf.Frames++
	c.rf.Bits += bits
	c.rf.Errors += errors
	c.rf.RFTGHang.Start(0, 0)
}

// EndRF terminates the RF call on EOT, logging the frames/bits/errors
// rate.
func (c *Controller) EndRF() {
	if c.rf == nil {
		return
	}
	c.rf.RFState = RFEnd
	c.Logger.Info("rf call ended", "protocol", c.Protocol,
		"src", c.rf.SrcID, "dst", c.rf.DstID,
		"frames", c.rf.Frames, "bits", c.rf.Bits, "errors", c.rf.Errors)
	if c.Grants != nil {
		c.Grants.ReleaseGrant(c.rf.DstID, false)
	}
	c.rf = nil
}

// RF returns the currently active RF call, if any.
func (c *Controller) RF() *Call { return c.rf }

// Net returns the currently active network call, if any.
func (c *Controller) Net() *Call { return c.net }
