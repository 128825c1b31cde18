package user

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hightide/internal/config"
	"github.com/hightide/internal/health"
	"github.com/hightide/pkg/protocol"
	"golang.org/x/time/rate"
)

// Pool owns the running virtual users and moves their count toward the
// current target. Both spawning and stopping go through a rate limiter so
// actual concurrency ramps at no more than the shape's spawn rate per
// second.
type Pool struct {
	cfg      config.Pool
	scenario config.Scenario
	metrics  *health.Metrics
	latency  *health.LatencyRecorder

	clients map[config.Protocol]protocol.Client
	limiter *rate.Limiter

	mu      sync.Mutex
	users   []*handle
	target  int64
	nextID  int64
	changed chan struct{}

	wg     sync.WaitGroup
	userWG sync.WaitGroup
	cancel context.CancelFunc
}

// handle tracks one running user.
type handle struct {
	user   *User
	cancel context.CancelFunc
}

// NewPool creates a new user pool.
func NewPool(cfg config.Pool, scenario config.Scenario, metrics *health.Metrics, latency *health.LatencyRecorder) *Pool {
	clientCfg := protocol.ClientConfig{
		MaxIdleConns:    cfg.MaxIdleConns,
		IdleConnTimeout: cfg.IdleConnTimeout.Std(),
		TLSInsecure:     true,
	}

	clients := map[config.Protocol]protocol.Client{
		config.ProtocolHTTP:  protocol.NewHTTPClient(clientCfg),
		config.ProtocolHTTP2: protocol.NewHTTP2Client(clientCfg),
		config.ProtocolGRPC:  protocol.NewGRPCClient(clientCfg),
	}

	return &Pool{
		cfg:      cfg,
		scenario: scenario,
		metrics:  metrics,
		latency:  latency,
		clients:  clients,
		limiter:  rate.NewLimiter(rate.Limit(100), 1), // Initial rate, shape overrides it
		changed:  make(chan struct{}, 1),
	}
}

// Start launches the reconcile loop.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.reconcile(ctx)

	log.Printf("[pool] started, max users %d", p.cfg.MaxUsers)
}

// SetTarget sets the desired user count. The reconcile loop moves actual
// concurrency toward it at the configured spawn rate.
func (p *Pool) SetTarget(n int) {
	if n < 0 {
		n = 0
	}
	if n > p.cfg.MaxUsers {
		n = p.cfg.MaxUsers
	}
	atomic.StoreInt64(&p.target, int64(n))

	select {
	case p.changed <- struct{}{}:
	default:
	}
}

// SetSpawnRate updates how fast the pool may change its user count, in
// users per second.
func (p *Pool) SetSpawnRate(perSecond float64) {
	if perSecond <= 0 {
		return
	}
	p.limiter.SetLimit(rate.Limit(perSecond))
	burst := int(perSecond / 10)
	if burst < 1 {
		burst = 1
	}
	p.limiter.SetBurst(burst)
}

// Target returns the current desired user count.
func (p *Pool) Target() int {
	return int(atomic.LoadInt64(&p.target))
}

// Active returns the number of running users.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}

// reconcile spawns and stops users until actual matches target.
func (p *Pool) reconcile(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		target := p.Target()
		active := p.Active()

		switch {
		case active < target:
			if err := p.limiter.Wait(ctx); err != nil {
				return
			}
			p.spawnOne(ctx)
			continue
		case active > target:
			if err := p.limiter.Wait(ctx); err != nil {
				return
			}
			p.stopOne()
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-p.changed:
		case <-ticker.C:
		}
	}
}

// spawnOne starts a single new user.
func (p *Pool) spawnOne(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	u := newUser(p.nextID, p.scenario, p.client(), p.metrics, p.latency)

	userCtx, cancel := context.WithCancel(ctx)
	p.users = append(p.users, &handle{user: u, cancel: cancel})

	p.userWG.Add(1)
	go func() {
		defer p.userWG.Done()
		u.Run(userCtx)
	}()

	if p.metrics != nil {
		p.metrics.SpawnedUsersTotal.Inc()
	}
}

// stopOne cancels the most recently spawned user.
func (p *Pool) stopOne() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.users) == 0 {
		return
	}

	last := p.users[len(p.users)-1]
	p.users = p.users[:len(p.users)-1]
	last.cancel()

	if p.metrics != nil {
		p.metrics.StoppedUsersTotal.Inc()
	}
}

// client returns the protocol client for the scenario.
func (p *Pool) client() protocol.Client {
	if c, ok := p.clients[p.scenario.Protocol]; ok {
		return c
	}
	return p.clients[config.ProtocolHTTP]
}

// Drain stops all users and waits up to timeout for them to finish their
// current iteration.
func (p *Pool) Drain(timeout time.Duration) {
	p.mu.Lock()
	for _, h := range p.users {
		h.cancel()
	}
	remaining := len(p.users)
	p.users = nil
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.userWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Printf("[pool] drain timeout with users still in-flight")
	}

	if remaining > 0 {
		log.Printf("[pool] drained %d users", remaining)
	}
}

// Stop shuts the pool down.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}

	p.wg.Wait()

	for _, c := range p.clients {
		c.Close()
	}

	log.Printf("[pool] stopped")
}
