package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Scenario Scenario `yaml:"scenario"`
	Shape    Shape    `yaml:"shape"`
	Pool     Pool     `yaml:"pool"`
	Health   Health   `yaml:"health"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Scenario describes the behavior of a single virtual user: one request per
// iteration against Host+Path, then a uniform wait in [WaitMin, WaitMax].
type Scenario struct {
	Host     string            `yaml:"host"`
	Path     string            `yaml:"path"`
	Protocol Protocol          `yaml:"protocol"`
	Method   string            `yaml:"method"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Body     string            `yaml:"body,omitempty"`
	Timeout  Duration          `yaml:"timeout"`
	WaitMin  Duration          `yaml:"wait_min"`
	WaitMax  Duration          `yaml:"wait_max"`
}

// Protocol represents the supported protocols.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTP2 Protocol = "http2"
	ProtocolGRPC  Protocol = "grpc"
)

// Shape configures the multi-day load shape.
//
// The run plays out in virtual calendar time: it starts at ReferenceTime and
// advances in lockstep with real elapsed time for RunDuration. The target user
// count at any instant is
//
//	DailyGrowth*days + WaveAmplitude*sin(frac(days)*pi) + Baseline + bonus
//
// where bonus is PeakBonus while the virtual hour of day is in PeakHours and
// 0 otherwise.
type Shape struct {
	ReferenceTime time.Time `yaml:"reference_time"`
	RunDuration   Duration  `yaml:"run_duration"`
	Baseline      float64   `yaml:"baseline"`
	DailyGrowth   float64   `yaml:"daily_growth"`
	WaveAmplitude float64   `yaml:"wave_amplitude"`
	PeakHours     []int     `yaml:"peak_hours"`
	PeakBonus     float64   `yaml:"peak_bonus"`
	SpawnRate     float64   `yaml:"spawn_rate"`
	Script        string    `yaml:"script,omitempty"` // path to a JS tick() override
}

// Pool configures the virtual user pool.
type Pool struct {
	MaxUsers        int      `yaml:"max_users"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	IdleConnTimeout Duration `yaml:"idle_conn_timeout"`
	DrainTimeout    Duration `yaml:"drain_timeout"`
}

// Health configures the target health checker.
type Health struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
	Timeout  Duration `yaml:"timeout"`
}

// Metrics configures Prometheus metrics.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
// Shape defaults reproduce the stock multi-day curve: 10 baseline users,
// +5 per day, a 10-user half-sine bump peaking at virtual noon, and 15 extra
// users during the lunch and evening peak hours.
func DefaultConfig() *Config {
	return &Config{
		Scenario: Scenario{
			Host:     "https://example.com",
			Path:     "/",
			Protocol: ProtocolHTTP,
			Method:   "GET",
			Timeout:  Duration(30 * time.Second),
			WaitMin:  Duration(1 * time.Second),
			WaitMax:  Duration(5 * time.Second),
		},
		Shape: Shape{
			ReferenceTime: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			RunDuration:   Duration(60 * time.Hour),
			Baseline:      10,
			DailyGrowth:   5,
			WaveAmplitude: 10,
			PeakHours:     []int{12, 13, 18, 19},
			PeakBonus:     15,
			SpawnRate:     100,
		},
		Pool: Pool{
			MaxUsers:        10000,
			MaxIdleConns:    100,
			IdleConnTimeout: Duration(90 * time.Second),
			DrainTimeout:    Duration(30 * time.Second),
		},
		Health: Health{
			Enabled:  true,
			Interval: Duration(10 * time.Second),
			Timeout:  Duration(5 * time.Second),
		},
		Metrics: Metrics{
			Enabled: true,
			Address: ":9090",
			Path:    "/metrics",
		},
	}
}
