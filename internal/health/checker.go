package health

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/hightide/internal/config"
	"github.com/hightide/pkg/protocol"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checker performs periodic health checks on the scenario host. While the
// host is unhealthy the controller holds the user pool at zero instead of
// piling load onto a struggling target.
type Checker struct {
	cfg      config.Health
	scenario config.Scenario
	metrics  *Metrics
	client   protocol.Client
	healthy  bool
	mu       sync.RWMutex
	cancel   context.CancelFunc
}

// NewChecker creates a new health checker for the scenario host.
func NewChecker(cfg config.Health, scenario config.Scenario, metrics *Metrics) *Checker {
	return &Checker{
		cfg:      cfg,
		scenario: scenario,
		metrics:  metrics,
		healthy:  true,
	}
}

// Start begins periodic health checking.
func (c *Checker) Start(ctx context.Context) {
	if !c.cfg.Enabled {
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)

	clientCfg := protocol.ClientConfig{
		MaxIdleConns:    10,
		IdleConnTimeout: 30 * time.Second,
		TLSInsecure:     true,
	}

	switch c.scenario.Protocol {
	case config.ProtocolGRPC:
		c.client = protocol.NewGRPCClient(clientCfg)
	case config.ProtocolHTTP2:
		c.client = protocol.NewHTTP2Client(clientCfg)
	default:
		c.client = protocol.NewHTTPClient(clientCfg)
	}

	c.metrics.SetTargetHealth(true)

	go c.run(ctx)
}

// run is the main health check loop.
func (c *Checker) run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Interval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

// check performs a single health probe against the scenario host.
func (c *Checker) check(ctx context.Context) {
	req := &protocol.Request{
		URL:     protocol.JoinURL(c.scenario.Host, c.scenario.Path),
		Method:  "GET", // Health checks always use GET
		Headers: c.scenario.Headers,
		Timeout: c.cfg.Timeout.Std(),
	}
	if c.scenario.Protocol == config.ProtocolGRPC {
		req.URL = c.scenario.Host
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout.Std())
	defer cancel()

	resp := c.client.Do(checkCtx, req)
	healthy := resp.OK()

	c.mu.Lock()
	prev := c.healthy
	c.healthy = healthy
	c.mu.Unlock()

	c.metrics.SetTargetHealth(healthy)

	if prev != healthy {
		if healthy {
			log.Printf("[health] target is healthy again")
		} else {
			log.Printf("[health] target is unhealthy: status=%d err=%v", resp.StatusCode, resp.Error)
		}
	}
}

// IsHealthy returns whether the scenario host is currently healthy.
// When the checker is disabled the host is assumed healthy.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// Stop stops the health checker.
func (c *Checker) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.client != nil {
		c.client.Close()
	}
}

// Server serves Prometheus metrics and health endpoints.
type Server struct {
	server *http.Server
}

// NewServer creates a new metrics/health HTTP server.
func NewServer(cfg config.Metrics) *Server {
	mux := http.NewServeMux()

	mux.Handle(cfg.Path, promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &Server{
		server: &http.Server{
			Addr:    cfg.Address,
			Handler: mux,
		},
	}
}

// Start begins serving metrics.
func (s *Server) Start() error {
	log.Printf("[metrics] starting server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
