package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/hightide/internal/config"
)

func TestCheckerTracksTargetHealth(t *testing.T) {
	var status int64 = http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(atomic.LoadInt64(&status)))
	}))
	defer srv.Close()

	m := NewMetricsWith(prometheus.NewRegistry())
	c := NewChecker(
		config.Health{
			Enabled:  true,
			Interval: config.Duration(20 * time.Millisecond),
			Timeout:  config.Duration(time.Second),
		},
		config.Scenario{
			Host:     srv.URL,
			Path:     "/",
			Protocol: config.ProtocolHTTP,
		},
		m,
	)
	defer c.Stop()

	c.Start(context.Background())
	assert.True(t, c.IsHealthy())

	atomic.StoreInt64(&status, http.StatusServiceUnavailable)
	assert.Eventually(t, func() bool { return !c.IsHealthy() },
		2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0.0, GaugeValue(m.TargetHealth))

	atomic.StoreInt64(&status, http.StatusOK)
	assert.Eventually(t, c.IsHealthy,
		2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, GaugeValue(m.TargetHealth))
}

func TestCheckerDisabled(t *testing.T) {
	c := NewChecker(config.Health{Enabled: false}, config.Scenario{}, nil)
	c.Start(context.Background())
	defer c.Stop()

	// A disabled checker never probes and always reports healthy.
	assert.True(t, c.IsHealthy())
}
