// Package user implements virtual users and the pool that ramps their count
// toward the load shape's target.
package user

import (
	"context"
	"math/rand"
	"time"

	"github.com/hightide/internal/config"
	"github.com/hightide/internal/health"
	"github.com/hightide/pkg/protocol"
)

// User is a single simulated client. Each iteration issues one request to
// the scenario endpoint, then thinks for a uniformly random duration in
// [WaitMin, WaitMax].
type User struct {
	id       int64
	scenario config.Scenario
	client   protocol.Client
	metrics  *health.Metrics
	latency  *health.LatencyRecorder
	rng      *rand.Rand
}

func newUser(id int64, scenario config.Scenario, client protocol.Client, metrics *health.Metrics, latency *health.LatencyRecorder) *User {
	return &User{
		id:       id,
		scenario: scenario,
		client:   client,
		metrics:  metrics,
		latency:  latency,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano() + id)),
	}
}

// Run loops until ctx is cancelled.
func (u *User) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		u.iteration(ctx)

		if !u.wait(ctx) {
			return
		}
	}
}

// iteration performs one request and records its outcome.
func (u *User) iteration(ctx context.Context) {
	url := protocol.JoinURL(u.scenario.Host, u.scenario.Path)
	if u.scenario.Protocol == config.ProtocolGRPC {
		url = u.scenario.Host
	}

	req := &protocol.Request{
		URL:     url,
		Method:  u.scenario.Method,
		Headers: u.scenario.Headers,
		Body:    []byte(u.scenario.Body),
		Timeout: u.scenario.Timeout.Std(),
	}

	resp := u.client.Do(ctx, req)

	if u.metrics != nil {
		u.metrics.RecordRequest(string(u.scenario.Protocol), resp.StatusCode, resp.Duration.Seconds())
	}
	if u.latency != nil {
		u.latency.Record(resp.Duration, !resp.OK())
	}
}

// wait sleeps for the think time, returning false if ctx was cancelled.
func (u *User) wait(ctx context.Context) bool {
	d := u.scenario.WaitMin.Std()
	if span := (u.scenario.WaitMax - u.scenario.WaitMin).Std(); span > 0 {
		d += time.Duration(u.rng.Int63n(int64(span) + 1))
	}
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
