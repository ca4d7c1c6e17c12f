package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dvmgo/trunkcore/internal/afftable"
	"github.com/dvmgo/trunkcore/internal/config"
	"github.com/dvmgo/trunkcore/internal/database"
	"github.com/dvmgo/trunkcore/internal/fnenet"
	"github.com/dvmgo/trunkcore/internal/lc/nxdn"
	"github.com/dvmgo/trunkcore/internal/lookup"
	"github.com/dvmgo/trunkcore/internal/modemio"
	"github.com/dvmgo/trunkcore/internal/radioid"
	"github.com/dvmgo/trunkcore/internal/restadmin"
	"github.com/dvmgo/trunkcore/internal/trunking"
	"github.com/dvmgo/trunkcore/internal/txqueue"
)

// tickPeriod is the cooperative scheduling cadence every protocol
// controller's Tick runs at, matching the modem's own framing cadence
// rather than the coarser, site-info-only beacon intervals in
// config.Timeouts.
const tickPeriod = 20 * time.Millisecond

// protocolNames enumerates the trunking controllers a Host can run, in
// the fixed order status reports and route registration use.
var protocolNames = []string{"DMR", "P25", "NXDN"}

// Host owns every long-lived collaborator a single dvmhostd process
// wires together: the lookup table, one trunking.Controller per enabled
// protocol, the shared modem transport, the FNE transport, and the REST
// admin surface, following cmd/ysf2dmr/main.go's Gateway as the "one
// struct holds everything this process runs" shape, generalized from a
// single cross-protocol gateway to a multi-controller trunking host.
type Host struct {
	cfg    config.Host
	logger *slog.Logger

	db          *database.DB
	users       *database.RadioUserRepository
	rules       *database.TGRuleRepository
	lookupTable *lookup.Table
	scheduler   *lookup.Scheduler

	registry *prometheus.Registry

	modemPort    modemio.Port
	modemWriter  *sharedModemWriter
	modemRawChan chan txqueue.Frame
	modemChans   map[string]chan txqueue.Frame

	fneSocket *fnenet.Socket
	peerTable *fnenet.PeerTable
	netChans  map[string]chan netDatagram

	controllers map[string]*trunking.Controller
	grants      map[string]*afftable.Table

	restServer *restadmin.Server
	httpServer *http.Server
}

// NewHost loads configuration from configPath and builds every
// collaborator a Host needs, including opening the modem port through
// buildModem; the FNE socket is bound and controllers start ticking only
// once Run is called.
func NewHost(configPath string) (*Host, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Logging)

	h := &Host{
		cfg:         cfg,
		logger:      logger,
		registry:    prometheus.NewRegistry(),
		modemChans:  make(map[string]chan txqueue.Frame),
		netChans:    make(map[string]chan netDatagram),
		controllers: make(map[string]*trunking.Controller),
		grants:      make(map[string]*afftable.Table),
	}

	db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	h.db = db
	h.users = database.NewRadioUserRepository(db.GetDB())
	h.rules = database.NewTGRuleRepository(db.GetDB())

	h.lookupTable = lookup.New(h.users, h.rules, logger)
	if err := h.lookupTable.Reload(); err != nil {
		logger.Warn("dvmhostd: initial lookup reload failed", "error", err)
	}

	var syncer *radioid.Syncer
	if cfg.RadioID.Enabled {
		syncer = radioid.NewSyncer(h.users, nil)
	}
	scheduler, err := lookup.NewScheduler(h.lookupTable, syncer, logger)
	if err != nil {
		return nil, fmt.Errorf("build lookup scheduler: %w", err)
	}
	h.scheduler = scheduler

	h.peerTable = fnenet.NewPeerTable()
	h.fneSocket = fnenet.NewSocket(int(cfg.FNE.LocalPort), logger)

	if err := h.buildControllers(); err != nil {
		return nil, err
	}

	if err := h.buildModem(); err != nil {
		return nil, err
	}

	if cfg.REST.Enabled {
		h.buildRESTServer()
	}

	return h, nil
}

// buildControllers constructs one trunking.Controller, TX queue and
// affiliation table per protocol toggled on in config.Protocols, wiring
// each controller's beacon set from internal/trunking's per-protocol
// builders.
func (h *Host) buildControllers() error {
	enabled := map[string]bool{"DMR": h.cfg.Protocols.DMR, "P25": h.cfg.Protocols.P25, "NXDN": h.cfg.Protocols.NXDN}
	channelPool := []uint32{uint32(h.cfg.Site.Channel)}
	ticksPerSec := int(time.Second / tickPeriod)

	for _, proto := range protocolNames {
		if !enabled[proto] {
			continue
		}

		depthGauge := promauto.With(h.registry).NewGauge(prometheus.GaugeOpts{
			Namespace:   "trunkcore",
			Subsystem:   "txqueue",
			Name:        "depth_bytes",
			Help:        "Current TX queue occupancy in bytes.",
			ConstLabels: prometheus.Labels{"protocol": proto},
		})
		txq := txqueue.New(8192, strings.ToLower(proto)+"-cc", depthGauge)

		releaseLogger := h.logger
		grants := afftable.New(ticksPerSec, channelPool, func(channel, dst uint32, slot byte) {
			releaseLogger.Info("dvmhostd: grant released", "protocol", proto, "channel", channel, "dst", dst, "slot", slot)
		})

		ctrl := trunking.NewController(proto, tickPeriod, h.logger)
		ctrl.TX = txq
		ctrl.Grants = grants

		modemCh := make(chan txqueue.Frame, 64)
		netCh := make(chan netDatagram, 64)
		h.modemChans[proto] = modemCh
		h.netChans[proto] = netCh
		ctrl.ModemRX = &modemRXQueue{protocol: proto, ch: modemCh, logger: h.logger}
		ctrl.NetRX = &netRXQueue{protocol: proto, ch: netCh, logger: h.logger}

		switch proto {
		case "P25":
			ctrl.Beacons = trunking.NewP25Beacons(h.cfg.Site.TrunkingSite(), trunking.QueueEnqueue(txq))
		case "NXDN":
			cadence := nxdn.NewSiteCadence(nxdn.SiteInfo{BcchCount: 4})
			siteID := h.cfg.Site.SiteID
			ctrl.Beacons = trunking.NewNXDNBeacons(cadence,
				func() nxdn.SiteInfo { return nxdn.SiteInfo{LocationID: siteID} },
				func() nxdn.SrvInfo { return nxdn.SrvInfo{VoiceSvc: true, DataSvc: false} },
				trunking.QueueEnqueue(txq))
		case "DMR":
			// No control-channel beacon builder exists yet: DMR still
			// services RX, grant timers and queued TX via Tick.
		}

		h.controllers[proto] = ctrl
		h.grants[proto] = grants
	}
	return nil
}

// buildModem opens the configured modem transport (or an in-memory
// FakePort when no device path is configured, so the host can run
// without hardware attached), wraps it in a write-serializing adapter
// every controller shares, and assigns that adapter as each
// controller's Modem.
func (h *Host) buildModem() error {
	var port modemio.Port
	if h.cfg.Modem.Port == "" {
		h.logger.Warn("dvmhostd: no modem.port configured, running against an in-memory fake modem")
		port = modemio.NewFakePort()
	} else {
		p, err := modemio.OpenSerial(h.cfg.Modem.Port)
		if err != nil {
			return fmt.Errorf("open modem port: %w", err)
		}
		port = p
	}
	h.modemPort = port
	h.modemWriter = &sharedModemWriter{port: port}
	h.modemRawChan = make(chan txqueue.Frame, 256)

	for _, ctrl := range h.controllers {
		ctrl.Modem = h.modemWriter
	}
	return nil
}

// buildRESTServer assembles the admin HTTP surface over every enabled
// protocol's controller and affiliation table, plus a Prometheus
// scrape endpoint served alongside it.
func (h *Host) buildRESTServer() {
	targets := make(map[string]*restadmin.ProtocolTarget, len(h.controllers))
	for proto, ctrl := range h.controllers {
		targets[proto] = &restadmin.ProtocolTarget{Controller: ctrl, Grants: h.grants[proto]}
	}
	h.restServer = restadmin.NewServer("dvmhostd "+version, h.cfg.REST.JWTSecret, targets, h.users, h.rules)

	mux := http.NewServeMux()
	mux.Handle("/", h.restServer.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	h.httpServer = &http.Server{Addr: h.cfg.REST.Listen, Handler: mux}
}

// sharedModemWriter serializes WriteFrame calls from every protocol
// controller's goroutine onto the one physical modem connection: Port
// implementations aren't expected to tolerate concurrent callers, but
// one modem multiplexes frames for every protocol this host runs.
type sharedModemWriter struct {
	port modemio.Port
	mu   sync.Mutex
}

func (w *sharedModemWriter) WriteFrame(f txqueue.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.port.WriteFrame(f)
}

// Run opens the FNE socket, starts the lookup scheduler,
// and supervises the modem pump, FNE pump, per-protocol controller
// ticks and REST admin server under one errgroup until ctx is
// cancelled (main cancels it on SIGINT/SIGTERM), following
// USA-RedDragon-DMRHub/main.go's flat errgroup supervisor (a better fit
// here than cmd/root.go's heavier server-manager, since this host's
// collaborators only talk to each other over channels).
func (h *Host) Run(ctx context.Context) error {
	defer h.db.Close()

	if err := h.fneSocket.Open(); err != nil {
		return fmt.Errorf("open fne socket: %w", err)
	}

	if err := h.scheduler.Start(ctx, h.cfg.RadioID.ReloadEvery, h.cfg.RadioID.SyncEvery); err != nil {
		return fmt.Errorf("start lookup scheduler: %w", err)
	}
	defer func() {
		if err := h.scheduler.Stop(); err != nil {
			h.logger.Warn("dvmhostd: scheduler stop failed", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	// Closing the modem and FNE sockets on cancellation unblocks their
	// blocking reads, the same pattern modemio.Pump's doc comment
	// describes: ctx only gates channel handoffs, not the reads
	// themselves.
	g.Go(func() error {
		<-gctx.Done()
		_ = h.modemPort.Close()
		_ = h.fneSocket.Close()
		return nil
	})

	g.Go(func() error { return modemio.Pump(gctx, h.modemPort, h.modemRawChan) })
	g.Go(func() error { return h.fanoutModem(gctx) })
	g.Go(func() error { return h.pumpAndFanoutFNE(gctx) })

	for proto, ctrl := range h.controllers {
		ctrl := ctrl
		proto := proto
		g.Go(func() error {
			h.logger.Info("dvmhostd: controller started", "protocol", proto)
			return ctrl.Run(gctx)
		})
	}

	if h.httpServer != nil {
		g.Go(func() error {
			h.logger.Info("dvmhostd: rest admin listening", "addr", h.cfg.REST.Listen)
			if err := h.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return h.httpServer.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// fanoutModem distributes every frame the modem pump delivers to each
// enabled protocol's modem RX channel. One modem carries frames for
// every protocol this host runs; a slow consumer drops rather than
// blocking the others, logged so a stuck protocol controller is
// observable instead of silently starving its siblings.
func (h *Host) fanoutModem(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-h.modemRawChan:
			if !ok {
				return nil
			}
			for proto, ch := range h.modemChans {
				select {
				case ch <- frame:
				default:
					h.logger.Warn("dvmhostd: modem rx queue full, dropping frame", "protocol", proto)
				}
			}
		}
	}
}

// pumpAndFanoutFNE reads datagrams from the FNE socket and distributes
// them to every enabled protocol's net RX channel, mirroring
// fanoutModem on the network side. The socket's blocking read is
// unblocked by Host.Run's shutdown watcher closing it on cancellation.
func (h *Host) pumpAndFanoutFNE(ctx context.Context) error {
	buf := make([]byte, 2048)
	for {
		dg, addr, err := h.fneSocket.ReadDatagram(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}
		pkt := netDatagram{dg: dg, addr: addr}
		for proto, ch := range h.netChans {
			select {
			case ch <- pkt:
			default:
				h.logger.Warn("dvmhostd: fne rx queue full, dropping datagram", "protocol", proto)
			}
		}
	}
}
