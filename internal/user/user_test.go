package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hightide/internal/config"
	"github.com/hightide/internal/health"
	"github.com/hightide/pkg/protocol"
)

func TestUserIteration(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		assert.Equal(t, "/ping", r.URL.Path)
		assert.Equal(t, "yes", r.Header.Get("X-Load-Test"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	scenario := config.Scenario{
		Host:     srv.URL,
		Path:     "/ping",
		Protocol: config.ProtocolHTTP,
		Method:   "GET",
		Headers:  map[string]string{"X-Load-Test": "yes"},
		Timeout:  config.Duration(time.Second),
	}

	metrics := health.NewMetricsWith(prometheus.NewRegistry())
	latency := health.NewLatencyRecorder()

	client := protocol.NewHTTPClient(protocol.ClientConfig{})
	defer client.Close()

	u := newUser(1, scenario, client, metrics, latency)
	u.iteration(context.Background())

	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))

	snap := latency.Snapshot()
	assert.Equal(t, int64(1), snap.Requests)
	assert.Equal(t, int64(0), snap.Errors)

	count := health.CounterValue(metrics.RequestsTotal.WithLabelValues("success", "http"))
	assert.Equal(t, 1.0, count)
}

func TestUserIterationRecordsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	scenario := config.Scenario{
		Host:     srv.URL,
		Protocol: config.ProtocolHTTP,
		Method:   "GET",
		Path:     "/",
		Timeout:  config.Duration(time.Second),
	}

	latency := health.NewLatencyRecorder()
	client := protocol.NewHTTPClient(protocol.ClientConfig{})
	defer client.Close()

	u := newUser(1, scenario, client, nil, latency)
	u.iteration(context.Background())

	snap := latency.Snapshot()
	assert.Equal(t, int64(1), snap.Requests)
	assert.Equal(t, int64(1), snap.Errors)
}

func TestUserRunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	scenario := config.Scenario{
		Host:     srv.URL,
		Protocol: config.ProtocolHTTP,
		Method:   "GET",
		Path:     "/",
		Timeout:  config.Duration(time.Second),
		WaitMin:  config.Duration(10 * time.Millisecond),
		WaitMax:  config.Duration(10 * time.Millisecond),
	}

	client := protocol.NewHTTPClient(protocol.ClientConfig{})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	u := newUser(1, scenario, client, nil, nil)

	done := make(chan struct{})
	go func() {
		u.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "user did not stop after cancel")
	}
}

func TestUserWaitRange(t *testing.T) {
	scenario := config.Scenario{
		WaitMin: config.Duration(time.Millisecond),
		WaitMax: config.Duration(5 * time.Millisecond),
	}
	u := newUser(1, scenario, nil, nil, nil)

	start := time.Now()
	ok := u.wait(context.Background())
	elapsed := time.Since(start)

	assert.True(t, ok)
	assert.GreaterOrEqual(t, elapsed, time.Millisecond)

	// Zero think time returns immediately without arming a timer.
	u.scenario.WaitMin = 0
	u.scenario.WaitMax = 0
	assert.True(t, u.wait(context.Background()))
}
