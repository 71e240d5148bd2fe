package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ProbeConfig holds the capture settings for the monitored interface.
type ProbeConfig struct {
	Interface   string `yaml:"interface"`
	LocalMAC    string `yaml:"local_mac"` // overrides the MAC resolved from the interface, needed for pcap replay
	PcapFile    string `yaml:"pcap_file"` // replay a capture file instead of opening the interface
	SnapshotLen int32  `yaml:"snapshot_len"`
	Promiscuous bool   `yaml:"promiscuous"`
	ReadTimeout string `yaml:"read_timeout"`
}

// SamplerConfig holds the periods of the sampler and the sent-packet simulator.
type SamplerConfig struct {
	Period     string `yaml:"period"`
	SentPeriod string `yaml:"sent_period"`
}

// DispatcherConfig holds the dispatch cadence and the pending queue policy.
type DispatcherConfig struct {
	Period        string `yaml:"period"`
	QueueCapacity int    `yaml:"queue_capacity"` // 0 means unbounded
	OnError       string `yaml:"on_error"`       // drop, retry_once or requeue
	WarnDepth     int    `yaml:"warn_depth"`
}

// NATSConfig holds the connection details for the NATS transport.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the connection details for the Redis pub/sub transport.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TransportConfig selects where readings are published and how they are encoded.
type TransportConfig struct {
	Type    string      `yaml:"type"`
	Channel string      `yaml:"channel"`
	Codec   string      `yaml:"codec"`
	NATS    NATSConfig  `yaml:"nats"`
	Redis   RedisConfig `yaml:"redis"`
}

// APIConfig holds the listen addresses of the status API and the gRPC health endpoint.
type APIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ListenAddr     string `yaml:"listen_addr"`
	GRPCListenAddr string `yaml:"grpc_listen_addr"`
}

// LogFileConfig enables a rotating log file next to stderr.
type LogFileConfig struct {
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
	Compress   bool   `yaml:"compress"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	File   LogFileConfig `yaml:"file"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Probe      ProbeConfig      `yaml:"probe"`
	Sampler    SamplerConfig    `yaml:"sampler"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Transport  TransportConfig  `yaml:"transport"`
	API        APIConfig        `yaml:"api"`
	Log        LogConfig        `yaml:"log"`
}

// Defaults mirror the fixed constants of the monitor.
const (
	DefaultSnapshotLen   int32 = 65535
	DefaultReadTimeout         = "50ms"
	DefaultSamplerPeriod       = "1s"
	DefaultSentPeriod          = "1s"
	DefaultDispatchPeriod      = "500ms"
	DefaultWarnDepth           = 100
	DefaultChannel             = "/main/test1"
	DefaultNATSURL             = "nats://127.0.0.1:4222"
	DefaultRedisAddr           = "127.0.0.1:6379"
	DefaultListenAddr          = ":8080"
	DefaultGRPCListenAddr      = ":9090"
)

// Error policies of the dispatcher.
const (
	OnErrorDrop      = "drop"
	OnErrorRetryOnce = "retry_once"
	OnErrorRequeue   = "requeue"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
// An empty path yields the defaults.
func LoadConfig(filePath string) (*Config, error) {
	var cfg Config
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Probe.SnapshotLen <= 0 {
		c.Probe.SnapshotLen = DefaultSnapshotLen
	}
	if c.Probe.ReadTimeout == "" {
		c.Probe.ReadTimeout = DefaultReadTimeout
	}
	if c.Sampler.Period == "" {
		c.Sampler.Period = DefaultSamplerPeriod
	}
	if c.Sampler.SentPeriod == "" {
		c.Sampler.SentPeriod = DefaultSentPeriod
	}
	if c.Dispatcher.Period == "" {
		c.Dispatcher.Period = DefaultDispatchPeriod
	}
	if c.Dispatcher.OnError == "" {
		c.Dispatcher.OnError = OnErrorDrop
	}
	if c.Dispatcher.WarnDepth <= 0 {
		c.Dispatcher.WarnDepth = DefaultWarnDepth
	}
	if c.Transport.Type == "" {
		c.Transport.Type = "nats"
	}
	if c.Transport.Channel == "" {
		c.Transport.Channel = DefaultChannel
	}
	if c.Transport.Codec == "" {
		c.Transport.Codec = "json"
	}
	if c.Transport.NATS.URL == "" {
		c.Transport.NATS.URL = DefaultNATSURL
	}
	if c.Transport.Redis.Addr == "" {
		c.Transport.Redis.Addr = DefaultRedisAddr
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = DefaultListenAddr
	}
	if c.API.GRPCListenAddr == "" {
		c.API.GRPCListenAddr = DefaultGRPCListenAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks durations and enumerations.
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"probe.read_timeout":  c.Probe.ReadTimeout,
		"sampler.period":      c.Sampler.Period,
		"sampler.sent_period": c.Sampler.SentPeriod,
		"dispatcher.period":   c.Dispatcher.Period,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration", name)
		}
	}

	if c.Dispatcher.QueueCapacity < 0 {
		return fmt.Errorf("dispatcher.queue_capacity must not be negative")
	}

	switch c.Dispatcher.OnError {
	case OnErrorDrop, OnErrorRetryOnce, OnErrorRequeue:
	default:
		return fmt.Errorf("unknown dispatcher.on_error policy: '%s'", c.Dispatcher.OnError)
	}

	// transport.type is checked against the registered transports when the publisher
	// is created.
	switch c.Transport.Codec {
	case "json", "proto", "text":
	default:
		return fmt.Errorf("unknown transport codec: '%s'", c.Transport.Codec)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: '%s'", c.Log.Format)
	}
	return nil
}

// ReadTimeoutDuration returns the parsed capture read timeout.
func (p ProbeConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(p.ReadTimeout)
}

// PeriodDuration returns the parsed sampling period.
func (s SamplerConfig) PeriodDuration() time.Duration {
	return mustDuration(s.Period)
}

// SentPeriodDuration returns the parsed simulator period.
func (s SamplerConfig) SentPeriodDuration() time.Duration {
	return mustDuration(s.SentPeriod)
}

// PeriodDuration returns the parsed dispatch period.
func (d DispatcherConfig) PeriodDuration() time.Duration {
	return mustDuration(d.Period)
}

// mustDuration is only called on validated values.
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("unvalidated duration %q: %v", s, err))
	}
	return d
}
