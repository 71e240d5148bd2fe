package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultSnapshotLen, cfg.Probe.SnapshotLen)
	assert.False(t, cfg.Probe.Promiscuous)
	assert.Equal(t, 50*time.Millisecond, cfg.Probe.ReadTimeoutDuration())
	assert.Equal(t, time.Second, cfg.Sampler.PeriodDuration())
	assert.Equal(t, time.Second, cfg.Sampler.SentPeriodDuration())
	assert.Equal(t, 500*time.Millisecond, cfg.Dispatcher.PeriodDuration())
	assert.Equal(t, 0, cfg.Dispatcher.QueueCapacity)
	assert.Equal(t, OnErrorDrop, cfg.Dispatcher.OnError)
	assert.Equal(t, "nats", cfg.Transport.Type)
	assert.Equal(t, "json", cfg.Transport.Codec)
	assert.Equal(t, DefaultChannel, cfg.Transport.Channel)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
probe:
  interface: eth1
  local_mac: "00:11:22:33:44:55"
sampler:
  period: 2s
dispatcher:
  period: 250ms
  queue_capacity: 10
  on_error: requeue
transport:
  type: redis
  channel: readings
  codec: proto
  redis:
    addr: redis:6379
log:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "eth1", cfg.Probe.Interface)
	assert.Equal(t, "00:11:22:33:44:55", cfg.Probe.LocalMAC)
	assert.Equal(t, 2*time.Second, cfg.Sampler.PeriodDuration())
	assert.Equal(t, time.Second, cfg.Sampler.SentPeriodDuration(), "unset sent_period keeps its default")
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatcher.PeriodDuration())
	assert.Equal(t, 10, cfg.Dispatcher.QueueCapacity)
	assert.Equal(t, OnErrorRequeue, cfg.Dispatcher.OnError)
	assert.Equal(t, "redis", cfg.Transport.Type)
	assert.Equal(t, "readings", cfg.Transport.Channel)
	assert.Equal(t, "proto", cfg.Transport.Codec)
	assert.Equal(t, "redis:6379", cfg.Transport.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad duration":      "sampler:\n  period: soon\n",
		"negative duration": "dispatcher:\n  period: -1s\n",
		"negative capacity": "dispatcher:\n  queue_capacity: -1\n",
		"unknown policy":    "dispatcher:\n  on_error: panic\n",
		"unknown codec":     "transport:\n  codec: xml\n",
		"unknown log":       "log:\n  format: xml\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_TransportTypeLeftToRegistry(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "transport:\n  type: kafka\n"))
	require.NoError(t, err)
	assert.Equal(t, "kafka", cfg.Transport.Type)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_ShippedFile(t *testing.T) {
	cfg, err := LoadConfig("../../configs/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "nats", cfg.Transport.Type)
	assert.True(t, cfg.API.Enabled)
}
