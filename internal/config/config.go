// Package config loads the trunking core's process configuration from
// YAML, replacing the teacher's ad hoc INI parser. Load returns a plain
// Host value; nothing in the core packages imports this package back —
// the outer shell (cmd/dvmhostd) is the only consumer.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dvmgo/trunkcore/internal/lc/p25"
	"github.com/dvmgo/trunkcore/internal/trunking"
)

// Host is the top-level process configuration. Every field maps to one
// collaborator named in SPEC_FULL.md §2: the core packages themselves
// never parse YAML, they just accept the plain values this struct
// unmarshals into.
type Host struct {
	Site      Site      `yaml:"site"`
	Protocols Protocols `yaml:"protocols"`
	Modem     Modem     `yaml:"modem"`
	FNE       FNE       `yaml:"fne"`
	Database  Database  `yaml:"database"`
	RadioID   RadioID   `yaml:"radioid"`
	REST      REST      `yaml:"rest"`
	Logging   Logging   `yaml:"logging"`
	Timeouts  Timeouts  `yaml:"timeouts"`
}

// Site carries the immutable site identity from spec §3 plus the P25
// broadcast fields internal/trunking.SiteConfig needs to build beacons.
type Site struct {
	NetworkID       uint32 `yaml:"network_id"`
	SystemID        uint16 `yaml:"system_id"`
	RFSSID          uint8  `yaml:"rfss_id"`
	SiteID          uint16 `yaml:"site_id"`
	ChannelID       uint8  `yaml:"channel_id"`
	ChannelNo       uint16 `yaml:"channel_no"`
	ServiceClass    uint8  `yaml:"service_class"`
	LocationRegArea uint8  `yaml:"location_reg_area"`
	LTOHalfHours    int8   `yaml:"lto_half_hours"`
	NetActive       bool   `yaml:"net_active"`
	Callsign        string `yaml:"callsign"`

	LRAID        uint8          `yaml:"lra_id"`
	Channel      uint16         `yaml:"channel"`
	IdenID       uint8          `yaml:"iden_id"`
	BaseFreqHz   uint32         `yaml:"base_freq_hz"`
	ChannelBWKHz uint16         `yaml:"channel_bw_khz"`
	SpacingKHz   uint16         `yaml:"spacing_khz"`
	Adjacent     []AdjacentSite `yaml:"adjacent_sites"`
}

// AdjacentSite is one entry of the control channel's adjacent-site
// broadcast rotation.
type AdjacentSite struct {
	SiteID  uint16 `yaml:"site_id"`
	RFSSID  uint8  `yaml:"rfss_id"`
	SysID   uint16 `yaml:"sys_id"`
	Channel uint16 `yaml:"channel"`
}

// TrunkingSite adapts the YAML site block into the trunking.SiteConfig
// that internal/trunking.NewP25Beacons consumes.
func (s Site) TrunkingSite() trunking.SiteConfig {
	adjacent := make([]p25.AdjStsBcast, 0, len(s.Adjacent))
	for _, a := range s.Adjacent {
		adjacent = append(adjacent, p25.AdjStsBcast{
			SiteID:  a.SiteID,
			RFSSID:  a.RFSSID,
			Channel: a.Channel,
			SysID:   a.SysID,
		})
	}
	return trunking.SiteConfig{
		SiteID:    s.SiteID,
		RFSSID:    s.RFSSID,
		SysID:     s.SystemID,
		LRAID:     s.LRAID,
		Channel:   s.Channel,
		IdenID:    s.IdenID,
		BaseFreq:  s.BaseFreqHz,
		ChBWKHz:   s.ChannelBWKHz,
		SpacingKH: s.SpacingKHz,
		Adjacent:  adjacent,
	}
}

// Protocols toggles which of DMR, P25 and NXDN the host runs a
// trunking.Controller for. At least one must be enabled.
type Protocols struct {
	DMR  bool `yaml:"dmr"`
	P25  bool `yaml:"p25"`
	NXDN bool `yaml:"nxdn"`
}

// Modem describes the serial/PTY transport internal/modemio dials.
type Modem struct {
	Port     string        `yaml:"port"`
	BaudRate int           `yaml:"baud_rate"`
	RXTimeout time.Duration `yaml:"rx_timeout"`
}

// FNE describes the UDP peer this host registers with.
type FNE struct {
	Address    string `yaml:"address"`
	Port       uint16 `yaml:"port"`
	LocalPort  uint16 `yaml:"local_port"`
	PeerID     uint32 `yaml:"peer_id"`
	Password   string `yaml:"password"`
}

// Database points the RID/TG lookup table at its sqlite file.
type Database struct {
	Path  string `yaml:"path"`
	Debug bool   `yaml:"debug"`
}

// RadioID configures the optional RadioID.net CSV sync.
type RadioID struct {
	Enabled    bool          `yaml:"enabled"`
	SyncEvery  time.Duration `yaml:"sync_every"`
	ReloadEvery time.Duration `yaml:"reload_every"`
}

// REST configures the admin HTTP surface.
type REST struct {
	Enabled   bool   `yaml:"enabled"`
	Listen    string `yaml:"listen"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Logging configures the slog/tint console handler and the optional
// lumberjack-rotated file sink.
type Logging struct {
	Level      string `yaml:"level"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Timeouts carries the tunable durations from spec §4 ("Timeouts
// (tunable, defaults cited)"); fields absent from the YAML keep Default's
// values.
type Timeouts struct {
	Call         time.Duration `yaml:"call"`
	RFHang       time.Duration `yaml:"rf_hang"`
	NetHang      time.Duration `yaml:"net_hang"`
	RejectHang   time.Duration `yaml:"reject_hang"`
	Grant        time.Duration `yaml:"grant"`
	BeaconDMR    time.Duration `yaml:"beacon_dmr"`
	BeaconP25    time.Duration `yaml:"beacon_p25"`
	BeaconNXDN   time.Duration `yaml:"beacon_nxdn"`
}

// Default returns the configuration defaults cited in spec §4: call
// timeout 180s, RF/net TG hang 5s, reject-hang 1s, grant 15s, and the
// per-protocol control-channel beacon cadence (DMR 4.5s, P25 4s, NXDN 3s).
func Default() Host {
	return Host{
		Modem: Modem{
			BaudRate:  115200,
			RXTimeout: 100 * time.Millisecond,
		},
		Database: Database{
			Path: "data/trunkcore.db",
		},
		RadioID: RadioID{
			Enabled:     false,
			SyncEvery:   24 * time.Hour,
			ReloadEvery: time.Minute,
		},
		REST: REST{
			Listen: ":8080",
		},
		Logging: Logging{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Timeouts: Timeouts{
			Call:       180 * time.Second,
			RFHang:     5 * time.Second,
			NetHang:    5 * time.Second,
			RejectHang: 1 * time.Second,
			Grant:      15 * time.Second,
			BeaconDMR:  4500 * time.Millisecond,
			BeaconP25:  4 * time.Second,
			BeaconNXDN: 3 * time.Second,
		},
	}
}

// Load reads and parses the YAML file at path; fields absent from the
// file keep Default's values.
func Load(path string) (Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Host{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML bytes directly, useful for tests that don't want a
// temp file on disk.
func Parse(data []byte) (Host, error) {
	host := Default()
	if err := yaml.Unmarshal(data, &host); err != nil {
		return Host{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := host.Validate(); err != nil {
		return Host{}, err
	}
	return host, nil
}

// Validate checks the invariants the core packages assume hold by the
// time Host reaches them: at least one protocol enabled, a database
// path set, and a positive radioid.sync_every when radioid is enabled.
func (h Host) Validate() error {
	if !h.Protocols.DMR && !h.Protocols.P25 && !h.Protocols.NXDN {
		return fmt.Errorf("config: no protocols enabled")
	}
	if h.Database.Path == "" {
		return fmt.Errorf("config: database.path is required")
	}
	if h.RadioID.Enabled && h.RadioID.SyncEvery <= 0 {
		return fmt.Errorf("config: radioid.sync_every must be positive when radioid.enabled")
	}
	return nil
}
