// Package controller runs the control loop that applies the load shape to
// the user pool.
package controller

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/hightide/internal/health"
	"github.com/hightide/internal/shape"
	"github.com/hightide/internal/user"
)

// DefaultInterval is how often the shape is evaluated.
const DefaultInterval = time.Second

// Controller polls the shape once per interval and steers the pool toward
// the returned target. When the shape signals completion it drains the run
// and closes Done.
type Controller struct {
	shp      shape.Shape
	clock    *shape.VirtualClock
	pool     *user.Pool
	checker  *health.Checker
	metrics  *health.Metrics
	interval time.Duration

	done     chan struct{}
	doneOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a controller. checker may be nil.
func New(shp shape.Shape, clock *shape.VirtualClock, pool *user.Pool, checker *health.Checker, metrics *health.Metrics) *Controller {
	return &Controller{
		shp:      shp,
		clock:    clock,
		pool:     pool,
		checker:  checker,
		metrics:  metrics,
		interval: DefaultInterval,
		done:     make(chan struct{}),
	}
}

// SetInterval overrides the evaluation cadence. Intended for tests and the
// preview surface; the shape itself is cadence-agnostic.
func (c *Controller) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Start begins the control loop.
func (c *Controller) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.loop(ctx)

	log.Printf("[controller] started, virtual time begins at %s", c.clock.Reference().Format(time.RFC3339))
}

// Done is closed once the shape signals run completion.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) loop(ctx context.Context) {
	defer c.wg.Done()

	// Evaluate immediately so the run does not idle for a full interval.
	c.tick()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick performs one shape evaluation and applies the result.
func (c *Controller) tick() {
	elapsed := c.clock.Elapsed()

	step, ok := c.shp.Evaluate(elapsed)
	if !ok {
		c.finish()
		return
	}

	c.pool.SetSpawnRate(step.SpawnRate)

	target := step.Users
	if c.checker != nil && !c.checker.IsHealthy() {
		// Hold off while the target is down; the shape keeps advancing in
		// virtual time and the pool ramps back once the host recovers.
		target = 0
	}
	c.pool.SetTarget(target)

	c.observe(elapsed, target)
}

// observe updates the virtual-time and user-count gauges.
func (c *Controller) observe(elapsed time.Duration, target int) {
	days := elapsed.Seconds() / 86400
	dayFraction := days - math.Floor(days)
	hour := c.clock.At(elapsed).Hour()

	peak := false
	if p, ok := c.shp.(interface{ IsPeakHour(int) bool }); ok {
		peak = p.IsPeakHour(hour)
	}

	c.metrics.SetVirtualTime(hour, dayFraction, peak)
	c.metrics.SetUserCounts(target, c.pool.Active())
}

// finish marks the run complete and winds the pool down to zero.
func (c *Controller) finish() {
	c.doneOnce.Do(func() {
		log.Printf("[controller] shape complete after %s, stopping users", c.clock.Elapsed().Round(time.Second))
		c.metrics.SetShapeDone(true)
		c.pool.SetTarget(0)
		close(c.done)
	})
}

// Stop halts the control loop.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Status is a point-in-time view of the run.
type Status struct {
	Elapsed     time.Duration
	VirtualTime time.Time
	VirtualDay  int
	VirtualHour int
	DayFraction float64
	TargetUsers int
	ActiveUsers int
	PeakHour    bool
	Done        bool
}

// GetStatus returns the current run status.
func (c *Controller) GetStatus() Status {
	elapsed := c.clock.Elapsed()
	days := elapsed.Seconds() / 86400
	now := c.clock.At(elapsed)

	peak := false
	if p, ok := c.shp.(interface{ IsPeakHour(int) bool }); ok {
		peak = p.IsPeakHour(now.Hour())
	}

	done := false
	select {
	case <-c.done:
		done = true
	default:
	}

	return Status{
		Elapsed:     elapsed,
		VirtualTime: now,
		VirtualDay:  int(math.Floor(days)),
		VirtualHour: now.Hour(),
		DayFraction: days - math.Floor(days),
		TargetUsers: c.pool.Target(),
		ActiveUsers: c.pool.Active(),
		PeakHour:    peak,
		Done:        done,
	}
}
