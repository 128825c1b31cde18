// Package daemon runs hightide in the background and exposes a unix socket
// command surface for the CLI.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hightide/internal/config"
	"github.com/hightide/internal/controller"
	"github.com/hightide/internal/health"
	"github.com/hightide/internal/shape"
	"github.com/hightide/internal/user"
)

const (
	SocketName = "hightide.sock"
	PidFile    = "hightide.pid"
	LogFile    = "hightide.log"
)

// Status represents the current daemon status.
type Status struct {
	Running     bool      `json:"running"`
	Begun       bool      `json:"begun"`
	Done        bool      `json:"done"`
	StartTime   time.Time `json:"start_time"`
	Uptime      string    `json:"uptime"`
	VirtualTime string    `json:"virtual_time"`
	VirtualDay  int       `json:"virtual_day"`
	VirtualHour int       `json:"virtual_hour"`
	PeakHour    bool      `json:"peak_hour"`
	TargetUsers int       `json:"target_users"`
	ActiveUsers int       `json:"active_users"`
	Requests    int64     `json:"requests"`
	Errors      int64     `json:"errors"`
	MeanLatency float64   `json:"mean_latency_ms"`
	P95Latency  float64   `json:"p95_latency_ms"`
	Host        string    `json:"host"`
	Protocol    string    `json:"protocol"`
}

// Command represents a command sent to the daemon.
type Command struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response represents a response from the daemon.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Daemon wires the run together: shape, clock, pool, controller, health.
type Daemon struct {
	cfg           *config.Config
	shp           shape.Shape
	clock         *shape.VirtualClock
	pool          *user.Pool
	ctrl          *controller.Controller
	checker       *health.Checker
	metrics       *health.Metrics
	latency       *health.LatencyRecorder
	metricsServer *health.Server

	status     Status
	started    bool
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	listener   net.Listener
	socketPath string
	logFile    *os.File
}

// GetRuntimeDir returns the runtime directory for hightide.
func GetRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "hightide")
	}
	return filepath.Join(os.TempDir(), "hightide")
}

// GetSocketPath returns the full path to the socket file.
func GetSocketPath() string {
	return filepath.Join(GetRuntimeDir(), SocketName)
}

// GetPidPath returns the full path to the pid file.
func GetPidPath() string {
	return filepath.Join(GetRuntimeDir(), PidFile)
}

// GetLogPath returns the full path to the log file.
func GetLogPath() string {
	return filepath.Join(GetRuntimeDir(), LogFile)
}

// BuildShape constructs the configured shape: the scripted one when
// shape.script is set, the built-in multi-day curve otherwise.
func BuildShape(cfg config.Shape) (shape.Shape, error) {
	if cfg.Script == "" {
		return shape.NewMultiDayShape(cfg), nil
	}

	src, err := os.ReadFile(cfg.Script)
	if err != nil {
		return nil, fmt.Errorf("failed to read shape script: %w", err)
	}

	return shape.NewScriptShape(cfg.ReferenceTime, cfg.SpawnRate, filepath.Base(cfg.Script), string(src))
}

// New creates a new daemon instance.
func New(cfg *config.Config) (*Daemon, error) {
	runtimeDir := GetRuntimeDir()
	if err := os.MkdirAll(runtimeDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	logFile, err := os.OpenFile(GetLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	shp, err := BuildShape(cfg.Shape)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		cfg:        cfg,
		shp:        shp,
		ctx:        ctx,
		cancel:     cancel,
		socketPath: GetSocketPath(),
		logFile:    logFile,
		status: Status{
			Running:  true,
			Host:     cfg.Scenario.Host,
			Protocol: string(cfg.Scenario.Protocol),
		},
	}

	return d, nil
}

// Start starts the daemon.
func (d *Daemon) Start() error {
	d.log("Starting hightide daemon...")

	if err := os.WriteFile(GetPidPath(), []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}

	os.Remove(d.socketPath)

	var err error
	d.listener, err = net.Listen("unix", d.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket: %w", err)
	}

	d.metrics = health.NewMetrics()
	d.latency = health.NewLatencyRecorder()
	d.pool = user.NewPool(d.cfg.Pool, d.cfg.Scenario, d.metrics, d.latency)
	d.checker = health.NewChecker(d.cfg.Health, d.cfg.Scenario, d.metrics)

	if d.cfg.Metrics.Enabled {
		d.metricsServer = health.NewServer(d.cfg.Metrics)
		go func() {
			if err := d.metricsServer.Start(); err != nil {
				d.log("Metrics server error: %v", err)
			}
		}()
	}

	d.status.StartTime = time.Now()

	d.log("Daemon started, waiting for begin...")

	go d.acceptConnections()

	return nil
}

// Begin starts the run: the virtual clock begins at the reference instant
// and the controller takes over.
func (d *Daemon) Begin() {
	d.mu.Lock()
	if d.status.Begun {
		d.mu.Unlock()
		return
	}
	d.status.Begun = true

	// The clock survives pause/resume so virtual time keeps advancing.
	if d.clock == nil {
		d.clock = shape.NewVirtualClock(d.cfg.Shape.ReferenceTime)
	}
	d.ctrl = controller.New(d.shp, d.clock, d.pool, d.checker, d.metrics)
	first := !d.started
	d.started = true
	d.mu.Unlock()

	d.log("Run begun: virtual time %s, duration %s",
		d.cfg.Shape.ReferenceTime.Format(time.RFC3339), d.cfg.Shape.RunDuration)

	if first {
		d.pool.Start(d.ctx)
		d.checker.Start(d.ctx)
	}
	d.ctrl.Start(d.ctx)

	go d.watchDone()
}

// watchDone waits for the shape to complete, then winds the run down.
func (d *Daemon) watchDone() {
	select {
	case <-d.ctx.Done():
		return
	case <-d.ctrl.Done():
	}

	d.log("Shape complete, draining users...")
	d.pool.Drain(d.cfg.Pool.DrainTimeout.Std())
	d.log("Run finished")
}

// Pause holds the pool at zero without stopping the daemon. The virtual
// clock keeps advancing.
func (d *Daemon) Pause() {
	d.mu.Lock()
	paused := d.status.Begun
	d.mu.Unlock()

	if !paused {
		return
	}

	if d.ctrl != nil {
		d.ctrl.Stop()
	}
	d.pool.SetTarget(0)

	d.mu.Lock()
	d.status.Begun = false
	d.mu.Unlock()

	d.log("Run paused")
}

// GetStatus returns the current status.
func (d *Daemon) GetStatus() Status {
	d.mu.RLock()
	status := d.status
	ctrl := d.ctrl
	d.mu.RUnlock()

	if !status.StartTime.IsZero() {
		status.Uptime = time.Since(status.StartTime).Round(time.Second).String()
	}

	if ctrl != nil {
		cs := ctrl.GetStatus()
		status.VirtualTime = cs.VirtualTime.Format("2006-01-02 15:04:05")
		status.VirtualDay = cs.VirtualDay
		status.VirtualHour = cs.VirtualHour
		status.PeakHour = cs.PeakHour
		status.TargetUsers = cs.TargetUsers
		status.ActiveUsers = cs.ActiveUsers
		status.Done = cs.Done
	}

	if d.latency != nil {
		snap := d.latency.Snapshot()
		status.Requests = snap.Requests
		status.Errors = snap.Errors
		status.MeanLatency = float64(snap.Mean) / float64(time.Millisecond)
		status.P95Latency = float64(snap.P95) / float64(time.Millisecond)
	}

	return status
}

// Stop stops the daemon.
func (d *Daemon) Stop() {
	d.log("Stopping daemon...")

	d.cancel()

	if d.ctrl != nil {
		d.ctrl.Stop()
	}
	if d.checker != nil {
		d.checker.Stop()
	}
	if d.pool != nil {
		d.pool.Drain(d.cfg.Pool.DrainTimeout.Std())
		d.pool.Stop()
	}
	if d.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		d.metricsServer.Stop(ctx)
	}
	if d.listener != nil {
		d.listener.Close()
	}

	os.Remove(d.socketPath)
	os.Remove(GetPidPath())

	if d.logFile != nil {
		d.logFile.Close()
	}

	d.log("Daemon stopped")
}

func (d *Daemon) acceptConnections() {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.ctx.Done():
				return
			default:
				d.log("Accept error: %v", err)
				continue
			}
		}
		go d.handleConnection(conn)
	}
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer conn.Close()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	var cmd Command
	if err := decoder.Decode(&cmd); err != nil {
		encoder.Encode(Response{Success: false, Message: err.Error()})
		return
	}

	var resp Response

	switch cmd.Type {
	case "status":
		resp = Response{Success: true, Data: d.GetStatus()}

	case "begin":
		d.Begin()
		resp = Response{Success: true, Message: "Run begun"}

	case "pause":
		d.Pause()
		resp = Response{Success: true, Message: "Run paused"}

	case "stop":
		resp = Response{Success: true, Message: "Stopping daemon..."}
		encoder.Encode(resp)
		go func() {
			time.Sleep(100 * time.Millisecond)
			d.Stop()
			os.Exit(0)
		}()
		return

	default:
		resp = Response{Success: false, Message: "Unknown command: " + cmd.Type}
	}

	encoder.Encode(resp)
}

func (d *Daemon) log(format string, args ...interface{}) {
	msg := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
	if d.logFile != nil {
		d.logFile.WriteString(msg)
	}
}

// IsRunning checks if a daemon is already running.
func IsRunning() bool {
	conn, err := net.Dial("unix", GetSocketPath())
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// SendCommand sends a command to the running daemon.
func SendCommand(cmd Command) (*Response, error) {
	conn, err := net.Dial("unix", GetSocketPath())
	if err != nil {
		return nil, fmt.Errorf("daemon not running: %w", err)
	}
	defer conn.Close()

	encoder := json.NewEncoder(conn)
	decoder := json.NewDecoder(conn)

	if err := encoder.Encode(cmd); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	var resp Response
	if err := decoder.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &resp, nil
}
