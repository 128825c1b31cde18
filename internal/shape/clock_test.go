package shape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clockAt(reference time.Time, elapsed time.Duration) *VirtualClock {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewVirtualClock(reference)
	c.start = start
	c.now = func() time.Time { return start.Add(elapsed) }
	return c
}

func TestVirtualClock(t *testing.T) {
	// A Sunday noon reference.
	ref := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	c := clockAt(ref, 0)
	assert.Equal(t, ref, c.Reference())
	assert.Equal(t, time.Duration(0), c.Elapsed())
	assert.Equal(t, ref, c.Now())
	assert.Equal(t, 12, c.Hour())
	assert.Equal(t, 0, c.Minute())
	assert.Equal(t, 7, c.ISOWeekday())

	// A day and a half in: Tuesday midnight.
	c = clockAt(ref, 36 * time.Hour)
	assert.Equal(t, ref.Add(36*time.Hour), c.Now())
	assert.Equal(t, 0, c.Hour())
	assert.Equal(t, 2, c.ISOWeekday())
	assert.InDelta(t, 1.5, c.DaysSinceRef(), 1e-9)
	assert.InDelta(t, 36, c.HoursSinceRef(), 1e-9)
	assert.InDelta(t, 36*60, c.MinutesSinceRef(), 1e-9)

	c = clockAt(ref, 90 * time.Minute)
	assert.Equal(t, 13, c.Hour())
	assert.Equal(t, 30, c.Minute())
}

func TestVirtualClockNegativeElapsed(t *testing.T) {
	ref := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// A wall clock stepping backwards must not produce negative elapsed.
	c := clockAt(ref, -10 * time.Second)
	assert.Equal(t, time.Duration(0), c.Elapsed())
	assert.Equal(t, ref, c.Now())
}

func TestVirtualClockAt(t *testing.T) {
	ref := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewVirtualClock(ref)

	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), c.At(12*time.Hour))
}

func TestISOWeekday(t *testing.T) {
	tests := []struct {
		day  int // June 2025
		want int
	}{
		{16, 1}, // Monday
		{17, 2},
		{18, 3},
		{19, 4},
		{20, 5},
		{21, 6},
		{15, 7}, // Sunday
	}
	for _, tt := range tests {
		got := ISOWeekday(time.Date(2025, 6, tt.day, 9, 0, 0, 0, time.UTC))
		assert.Equal(t, tt.want, got, "June %d 2025", tt.day)
	}
}
