package shape

import "time"

// VirtualClock maps real elapsed run time onto virtual calendar time.
//
// The run is assumed to begin at the reference instant: after e.g. 36 real
// hours the virtual time is reference+36h, regardless of the machine's wall
// clock. Elapsed readings use the monotonic clock carried by the start
// timestamp, so calendar adjustments during a run do not skew the shape.
type VirtualClock struct {
	reference time.Time
	start     time.Time
	now       func() time.Time
}

// NewVirtualClock creates a clock whose virtual time starts at reference.
func NewVirtualClock(reference time.Time) *VirtualClock {
	return &VirtualClock{
		reference: reference,
		start:     time.Now(),
		now:       time.Now,
	}
}

// Reference returns the virtual start instant.
func (c *VirtualClock) Reference() time.Time {
	return c.reference
}

// Elapsed returns the real time since the run started.
func (c *VirtualClock) Elapsed() time.Duration {
	d := c.now().Sub(c.start)
	if d < 0 {
		return 0
	}
	return d
}

// At returns the virtual instant for a given elapsed duration.
func (c *VirtualClock) At(elapsed time.Duration) time.Time {
	return c.reference.Add(elapsed)
}

// Now returns the current virtual instant.
func (c *VirtualClock) Now() time.Time {
	return c.At(c.Elapsed())
}

// Hour returns the hour component (0-23) of the current virtual time.
func (c *VirtualClock) Hour() int {
	return c.Now().Hour()
}

// Minute returns the minute component (0-59) of the current virtual time.
func (c *VirtualClock) Minute() int {
	return c.Now().Minute()
}

// ISOWeekday returns the ISO weekday of the current virtual date,
// 1 for Monday through 7 for Sunday.
func (c *VirtualClock) ISOWeekday() int {
	return ISOWeekday(c.Now())
}

// MinutesSinceRef returns fractional minutes elapsed since the reference.
func (c *VirtualClock) MinutesSinceRef() float64 {
	return c.Elapsed().Seconds() / 60
}

// HoursSinceRef returns fractional hours elapsed since the reference.
func (c *VirtualClock) HoursSinceRef() float64 {
	return c.MinutesSinceRef() / 60
}

// DaysSinceRef returns fractional days elapsed since the reference.
func (c *VirtualClock) DaysSinceRef() float64 {
	return c.HoursSinceRef() / 24
}

// ISOWeekday converts a time to its ISO weekday, 1=Monday .. 7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday()) // Sunday=0
	if wd == 0 {
		return 7
	}
	return wd
}
