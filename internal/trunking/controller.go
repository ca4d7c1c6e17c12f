// Package trunking implements the single-threaded cooperative trunking
// controller tick, grounded on the teacher gateway's ticker-driven select
// loop (cmd/ysf2dmr/main.go's Gateway.Run) and original_source's
// src/host/fne/HostFNE.cpp round-robin broadcast scheduler.
package trunking

import (
	"context"
	"log/slog"
	"time"

	"github.com/dvmgo/trunkcore/internal/txqueue"
)

// Beacon is one scheduled control-channel broadcast (site info, service
// info, adjacent sites, iden-up, sync-bcast, time-date-ann, ...). Fire
// builds and enqueues the beacon's frame onto the TX queue.
type Beacon struct {
	Name     string
	Every    int // fire every Nth tick of the round-robin
	Fire     func() error
	tickSeen int
}

// GrantTimerService is serviced once per tick to expire and release
// stale channel grants.
type GrantTimerService interface {
	ClockGrants(ticks int)
}

// RXQueue is the minimal contract the controller needs from the modem
// and FNE receive queues: drain one item per tick.
type RXQueue interface {
	// Drain processes at most one pending item, returning false when
	// nothing was pending.
	Drain() bool
}

// Controller drives one protocol's cooperative tick: drain RF, drain
// net, fire beacons, service grant timers, emit queued frames.
type Controller struct {
	Protocol string
	Logger   *slog.Logger

	ModemRX RXQueue
	NetRX   RXQueue
	Grants  GrantTimerService
	TX      *txqueue.Queue
	Modem   interface{ WriteFrame(txqueue.Frame) error }

	Beacons []*Beacon

	TickPeriod time.Duration
	tickCount  int

	// ccEnabled gates the whole tick (REST admin's set-mode/cc-enable):
	// false means this protocol's control channel is fully down.
	// ccBroadcast gates only fireBeacons (cc-broadcast): RX drain and
	// grant servicing still run while broadcasts are paused.
	ccEnabled   bool
	ccBroadcast bool
}

// NewController builds a trunking controller. tickPeriod is the cadence
// of the cooperative tick (e.g. 1ms, bounded by the concurrency model's
// end-of-tick sleep ceiling). The control channel starts enabled and
// broadcasting; REST admin's set-mode/cc-enable/cc-broadcast toggle
// these at runtime.
func NewController(protocol string, tickPeriod time.Duration, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{Protocol: protocol, TickPeriod: tickPeriod, Logger: logger, ccEnabled: true, ccBroadcast: true}
}

// SetCCEnabled toggles the control channel fully on or off, per the REST
// admin surface's set-mode/cc-enable verbs. A disabled controller's Tick
// is a no-op: nothing is drained, no beacons fire, no grants are
// serviced, and the mode decision is applied atomically with the next
// tick rather than mid-tick.
func (c *Controller) SetCCEnabled(enabled bool) { c.ccEnabled = enabled }

// CCEnabled reports whether the control channel is currently enabled.
func (c *Controller) CCEnabled() bool { return c.ccEnabled }

// SetCCBroadcast toggles beacon transmission (cc-broadcast) without
// affecting RX draining or grant servicing.
func (c *Controller) SetCCBroadcast(broadcasting bool) { c.ccBroadcast = broadcasting }

// CCBroadcasting reports whether beacons are currently firing.
func (c *Controller) CCBroadcasting() bool { return c.ccBroadcast }

// Ticks returns the number of Tick calls served so far, for status
// reporting.
func (c *Controller) Ticks() int { return c.tickCount }

// Tick performs one cooperative scheduling round:
//  1. Drain the modem RX queue into the RF path.
//  2. Drain the FNE RX queue into the network path.
//  3. Fire any beacons whose round-robin counter elapsed.
//  4. Service expiring grant timers.
//  5. Emit one queued frame, respecting immediate-vs-normal ordering
//     (txqueue.Queue already orders insertion; Tick only pops one frame
//     per call, matching the modem's one-frame-per-tick contract).
func (c *Controller) Tick() {
	if !c.ccEnabled {
		return
	}
	if c.ModemRX != nil {
		c.ModemRX.Drain()
	}
	if c.NetRX != nil {
		c.NetRX.Drain()
	}

	c.fireBeacons()

	if c.Grants != nil {
		c.Grants.ClockGrants(1)
	}

	if c.TX != nil && c.Modem != nil {
		if frame, ok := c.TX.GetFrame(); ok {
			if err := c.Modem.WriteFrame(frame); err != nil {
				c.Logger.Warn("trunking: modem write failed", "protocol", c.Protocol, "error", err)
			}
		}
	}
	c.tickCount++
}

func (c *Controller) fireBeacons() {
	if !c.ccBroadcast {
		return
	}
	for _, b := range c.Beacons {
		b.tickSeen++
		if b.Every <= 0 || b.tickSeen < b.Every {
			continue
		}
		b.tickSeen = 0
		if err := b.Fire(); err != nil {
			c.Logger.Warn("trunking: beacon failed", "protocol", c.Protocol, "beacon", b.Name, "error", err)
		}
	}
}

// Run drives Tick on TickPeriod until ctx is cancelled, the cooperative
// main loop every host process runs one instance of per protocol.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}
