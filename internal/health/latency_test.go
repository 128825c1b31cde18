package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyRecorder(t *testing.T) {
	r := NewLatencyRecorder()

	for i := 0; i < 90; i++ {
		r.Record(10*time.Millisecond, false)
	}
	for i := 0; i < 10; i++ {
		r.Record(400*time.Millisecond, true)
	}

	snap := r.Snapshot()
	assert.Equal(t, int64(100), snap.Requests)
	assert.Equal(t, int64(10), snap.Errors)

	// The histogram keeps 3 significant figures, so allow small error.
	assert.InDelta(t, (10 * time.Millisecond).Seconds(), snap.P50.Seconds(), 0.001)
	assert.InDelta(t, (400 * time.Millisecond).Seconds(), snap.Max.Seconds(), 0.005)
	assert.Greater(t, snap.P99.Seconds(), snap.P50.Seconds())
}

func TestLatencyRecorderEmpty(t *testing.T) {
	snap := NewLatencyRecorder().Snapshot()
	assert.Equal(t, int64(0), snap.Requests)
	assert.Equal(t, int64(0), snap.Errors)
	assert.Equal(t, time.Duration(0), snap.Max)
}
