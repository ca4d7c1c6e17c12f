package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testYAML = `
site:
  network_id: 1
  system_id: 100
  rfss_id: 1
  site_id: 1
  callsign: KJ4ABC
  lra_id: 1
  channel: 1
  iden_id: 0
  base_freq_hz: 851006250
  channel_bw_khz: 12500
  spacing_khz: 12500
  adjacent_sites:
    - site_id: 2
      rfss_id: 1
      sys_id: 100
      channel: 2

protocols:
  p25: true

modem:
  port: /dev/ttyUSB0
  baud_rate: 460800

fne:
  address: 44.131.4.1
  port: 62031
  peer_id: 123456

database:
  path: data/test.db

radioid:
  enabled: true
  sync_every: 12h

rest:
  enabled: true
  listen: 127.0.0.1:8080
  jwt_secret: changeme

logging:
  level: debug
`

func TestLoadFromYAML(t *testing.T) {
	host, err := Parse([]byte(testYAML))
	require.NoError(t, err)

	require.EqualValues(t, 1, host.Site.NetworkID)
	require.Equal(t, "KJ4ABC", host.Site.Callsign)
	require.Len(t, host.Site.Adjacent, 1)
	require.EqualValues(t, 2, host.Site.Adjacent[0].SiteID)

	require.True(t, host.Protocols.P25)
	require.False(t, host.Protocols.DMR)

	require.Equal(t, "/dev/ttyUSB0", host.Modem.Port)
	require.Equal(t, "44.131.4.1", host.FNE.Address)
	require.EqualValues(t, 62031, host.FNE.Port)

	require.True(t, host.RadioID.Enabled)
	require.Equal(t, 12*time.Hour, host.RadioID.SyncEvery)
	// reload_every wasn't set in the YAML, so the default applies.
	require.Equal(t, time.Minute, host.RadioID.ReloadEvery)

	require.Equal(t, "debug", host.Logging.Level)

	// Timeouts weren't present in the YAML at all, so every default holds.
	require.Equal(t, 180*time.Second, host.Timeouts.Call)
	require.Equal(t, 4500*time.Millisecond, host.Timeouts.BeaconDMR)
}

func TestValidateRejectsNoProtocols(t *testing.T) {
	host := Default()
	host.Database.Path = "data/test.db"
	require.Error(t, host.Validate())
}

func TestValidateRejectsMissingDatabasePath(t *testing.T) {
	host := Default()
	host.Protocols.DMR = true
	host.Database.Path = ""
	require.Error(t, host.Validate())
}

func TestValidateRejectsRadioIDSyncWithoutInterval(t *testing.T) {
	host := Default()
	host.Protocols.DMR = true
	host.Database.Path = "data/test.db"
	host.RadioID.Enabled = true
	host.RadioID.SyncEvery = 0
	require.Error(t, host.Validate())
}

func TestTrunkingSiteAdaptsAdjacentSites(t *testing.T) {
	host, err := Parse([]byte(testYAML))
	require.NoError(t, err)

	site := host.Site.TrunkingSite()
	require.EqualValues(t, host.Site.SiteID, site.SiteID)
	require.Len(t, site.Adjacent, 1)
	require.EqualValues(t, 2, site.Adjacent[0].SiteID)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	require.Error(t, err)
}
