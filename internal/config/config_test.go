package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hightide.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://example.com", cfg.Scenario.Host)
	assert.Equal(t, "/", cfg.Scenario.Path)
	assert.Equal(t, ProtocolHTTP, cfg.Scenario.Protocol)
	assert.Equal(t, "GET", cfg.Scenario.Method)
	assert.Equal(t, time.Second, cfg.Scenario.WaitMin.Std())
	assert.Equal(t, 5*time.Second, cfg.Scenario.WaitMax.Std())

	assert.Equal(t, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), cfg.Shape.ReferenceTime)
	assert.Equal(t, 60*time.Hour, cfg.Shape.RunDuration.Std())
	assert.Equal(t, 10.0, cfg.Shape.Baseline)
	assert.Equal(t, 5.0, cfg.Shape.DailyGrowth)
	assert.Equal(t, 10.0, cfg.Shape.WaveAmplitude)
	assert.Equal(t, []int{12, 13, 18, 19}, cfg.Shape.PeakHours)
	assert.Equal(t, 15.0, cfg.Shape.PeakBonus)
	assert.Equal(t, 100.0, cfg.Shape.SpawnRate)

	assert.Greater(t, cfg.Pool.MaxUsers, 0)
	require.NoError(t, validate(cfg))
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
scenario:
  host: http://localhost:8080
  path: /api/v1/ping
  protocol: http2
  method: POST
  headers:
    X-Env: staging
  wait_min: 500ms
  wait_max: 2s
shape:
  reference_time: 2025-06-15T12:00:00Z
  run_duration: 60h
  baseline: 20
  daily_growth: 2.5
  peak_hours: [9, 17]
  spawn_rate: 50
pool:
  max_users: 500
  drain_timeout: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Scenario.Host)
	assert.Equal(t, "/api/v1/ping", cfg.Scenario.Path)
	assert.Equal(t, ProtocolHTTP2, cfg.Scenario.Protocol)
	assert.Equal(t, "POST", cfg.Scenario.Method)
	assert.Equal(t, "staging", cfg.Scenario.Headers["X-Env"])
	assert.Equal(t, 500*time.Millisecond, cfg.Scenario.WaitMin.Std())
	assert.Equal(t, 2*time.Second, cfg.Scenario.WaitMax.Std())

	assert.Equal(t, 60*time.Hour, cfg.Shape.RunDuration.Std())
	assert.Equal(t, 20.0, cfg.Shape.Baseline)
	assert.Equal(t, 2.5, cfg.Shape.DailyGrowth)
	assert.Equal(t, []int{9, 17}, cfg.Shape.PeakHours)
	assert.Equal(t, 50.0, cfg.Shape.SpawnRate)

	// Unset fields keep their defaults.
	assert.Equal(t, 15.0, cfg.Shape.PeakBonus)
	assert.Equal(t, 500, cfg.Pool.MaxUsers)
	assert.Equal(t, 10*time.Second, cfg.Pool.DrainTimeout.Std())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "scenario: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"missing host",
			func(c *Config) { c.Scenario.Host = "" },
			"scenario.host",
		},
		{
			"bad protocol",
			func(c *Config) { c.Scenario.Protocol = "quic" },
			"scenario.protocol",
		},
		{
			"negative wait_min",
			func(c *Config) { c.Scenario.WaitMin = Duration(-time.Second) },
			"wait_min",
		},
		{
			"wait_max below wait_min",
			func(c *Config) {
				c.Scenario.WaitMin = Duration(5 * time.Second)
				c.Scenario.WaitMax = Duration(time.Second)
			},
			"wait_max",
		},
		{
			"zero run_duration",
			func(c *Config) { c.Shape.RunDuration = 0 },
			"run_duration",
		},
		{
			"zero spawn_rate",
			func(c *Config) { c.Shape.SpawnRate = 0 },
			"spawn_rate",
		},
		{
			"negative wave_amplitude",
			func(c *Config) { c.Shape.WaveAmplitude = -1 },
			"wave_amplitude",
		},
		{
			"peak hour out of range",
			func(c *Config) { c.Shape.PeakHours = []int{12, 24} },
			"peak_hours",
		},
		{
			"missing script file",
			func(c *Config) { c.Shape.Script = "/nonexistent/shape.js" },
			"shape.script",
		},
		{
			"zero max_users",
			func(c *Config) { c.Pool.MaxUsers = 0 },
			"max_users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateBackfillsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scenario.Protocol = ""
	cfg.Scenario.Method = ""
	cfg.Scenario.Path = ""
	cfg.Scenario.Timeout = 0
	cfg.Shape.ReferenceTime = time.Time{}

	require.NoError(t, validate(cfg))
	assert.Equal(t, ProtocolHTTP, cfg.Scenario.Protocol)
	assert.Equal(t, "GET", cfg.Scenario.Method)
	assert.Equal(t, "/", cfg.Scenario.Path)
	assert.Equal(t, DefaultConfig().Scenario.Timeout, cfg.Scenario.Timeout)
	assert.Equal(t, DefaultConfig().Shape.ReferenceTime, cfg.Shape.ReferenceTime)
}

func TestDurationUnmarshal(t *testing.T) {
	var doc struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
		C Duration `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 90m\nb: 2.5\nc: \"\"\n"), &doc))
	assert.Equal(t, 90*time.Minute, doc.A.Std())
	assert.Equal(t, 2500*time.Millisecond, doc.B.Std())
	assert.Equal(t, time.Duration(0), doc.C.Std())

	assert.Error(t, yaml.Unmarshal([]byte("a: tomorrow\n"), &doc))
	assert.Error(t, yaml.Unmarshal([]byte("a: [1, 2]\n"), &doc))
}

func TestDurationMarshal(t *testing.T) {
	out, err := yaml.Marshal(Duration(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "1h30m0s\n", string(out))
}
