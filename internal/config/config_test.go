package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and required-field validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Empty config picks up every default.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultScanInterval, cfg.ScanInterval)
	require.InDelta(t, DefaultStopMargin, cfg.StopMargin, 1e-9)
	require.Equal(t, "info", cfg.LogLevel)

	// Broker section without an address.
	cfg = &Config{Broker: &Broker{}}
	require.Error(t, Validate(cfg))

	// Broker defaults.
	cfg = &Config{Broker: &Broker{Address: "tcp://localhost:1883"}}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultClientID, cfg.Broker.ClientID)
	require.Equal(t, DefaultTopicPrefix, cfg.Broker.TopicPrefix)

	// Nameless seed property.
	cfg = &Config{Properties: []SeedProperty{{X: 1}}}
	require.Error(t, Validate(cfg))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		ScanInterval: 3 * time.Second,
		StopMargin:   7,
		LogLevel:     "debug",
		Broker: &Broker{
			Address:       "tcp://localhost:1883",
			DispatchTopic: "alarm/dispatch",
		},
		Properties: []SeedProperty{
			{Name: "Vinewood Hills Villa", X: 1394.7, Y: 1128.6, Z: 114.3, Owner: "alice"},
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ScanInterval, loaded.ScanInterval)
	require.InDelta(t, cfg.StopMargin, loaded.StopMargin, 1e-9)
	require.Equal(t, cfg.Broker.Address, loaded.Broker.Address)
	require.Equal(t, cfg.Broker.DispatchTopic, loaded.Broker.DispatchTopic)
	require.Len(t, loaded.Properties, 1)
	require.Equal(t, "alice", loaded.Properties[0].Owner)
}

// TestLoadMissingFile returns a wrapped read error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

// TestParseScanInterval checks duration parsing and positivity.
func TestParseScanInterval(t *testing.T) {
	t.Parallel()

	interval, err := ParseScanInterval("500ms")
	require.NoError(t, err)
	require.Equal(t, 500*time.Millisecond, interval)

	_, err = ParseScanInterval("banana")
	require.Error(t, err)

	_, err = ParseScanInterval("-1s")
	require.ErrorIs(t, err, errScanIntervalNotPositive)
}
