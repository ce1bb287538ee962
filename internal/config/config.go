package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the alarm service settings.
type Config struct {
	// ScanInterval is the detection engine tick period.
	ScanInterval time.Duration `yaml:"scan_interval"`
	// StopMargin widens the detection radius for stop-alarm proximity checks.
	StopMargin float64 `yaml:"stop_margin"`
	// LogLevel is the minimum log level (debug, info, warn, error, fatal).
	LogLevel string `yaml:"log_level"`
	// Broker configures the optional MQTT transport for messaging,
	// presence and dispatch. When nil, the service logs deliveries instead.
	Broker *Broker `yaml:"broker,omitempty"`
	// Properties are registered at startup, in order.
	Properties []SeedProperty `yaml:"properties,omitempty"`
}

// Broker holds MQTT connection settings.
type Broker struct {
	// Address is the broker URL, e.g. tcp://localhost:1883.
	Address string `yaml:"address"`
	// ClientID is the MQTT client identifier base.
	ClientID string `yaml:"client_id"`
	// Username is the optional broker username.
	Username string `yaml:"username,omitempty"`
	// Password is the optional broker password.
	Password string `yaml:"password,omitempty"`
	// TopicPrefix is the root of the per-actor topic tree.
	TopicPrefix string `yaml:"topic_prefix"`
	// DispatchTopic, when set, additionally mirrors security dispatches
	// to an external console feed.
	DispatchTopic string `yaml:"dispatch_topic,omitempty"`
}

// SeedProperty describes one property registered at startup.
type SeedProperty struct {
	// Name is the property display name.
	Name string `yaml:"name"`
	// X, Y, Z position the property in world space.
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
	// Owner is the owning actor id; empty means unassigned.
	Owner string `yaml:"owner,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for service settings.
	DefaultConfigFilename = "alarm-sentry-settings.yaml"

	// DefaultScanInterval is the default detection engine tick period.
	DefaultScanInterval = 2 * time.Second

	// DefaultStopMargin is the default stop-alarm proximity margin in world units.
	DefaultStopMargin = 5.0

	// DefaultClientID is the default MQTT client identifier base.
	DefaultClientID = "property-alarm"

	// DefaultTopicPrefix is the default root of the per-actor topic tree.
	DefaultTopicPrefix = "alarm"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBrokerAddressRequired is returned when a broker section lacks an address.
	errBrokerAddressRequired = errors.New("broker address must be provided")
	// errSeedNameRequired is returned when a seed property has no name.
	errSeedNameRequired = errors.New("seed property name must be provided")
	// errScanIntervalNotPositive is returned for zero or negative scan intervals.
	errScanIntervalNotPositive = errors.New("scan interval must be positive")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: broker credentials may be present.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings, filling defaults for absent fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultScanInterval
	}

	if cfg.StopMargin <= 0 {
		cfg.StopMargin = DefaultStopMargin
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	for i := range cfg.Properties {
		if cfg.Properties[i].Name == "" {
			return fmt.Errorf("property %d: %w", i, errSeedNameRequired)
		}
	}

	if cfg.Broker == nil {
		return nil
	}

	if cfg.Broker.Address == "" {
		return errBrokerAddressRequired
	}

	if cfg.Broker.ClientID == "" {
		cfg.Broker.ClientID = DefaultClientID
	}

	if cfg.Broker.TopicPrefix == "" {
		cfg.Broker.TopicPrefix = DefaultTopicPrefix
	}

	return nil
}

// ParseScanInterval parses a scan interval override such as "500ms" or "2s".
func ParseScanInterval(s string) (time.Duration, error) {
	interval, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	if interval <= 0 {
		return 0, fmt.Errorf("duration %q: %w", s, errScanIntervalNotPositive)
	}

	return interval, nil
}
