package shape

import (
	"math"
	"time"

	"github.com/hightide/internal/config"
)

// Step is a single load-shape evaluation result: how many virtual users
// should be active and how fast the pool may move toward that count.
type Step struct {
	Users     int
	SpawnRate float64
}

// Shape maps elapsed run time to a target user count. The second return
// value is false once the run is over; from then on every call keeps
// returning false.
type Shape interface {
	Evaluate(elapsed time.Duration) (Step, bool)
}

// MultiDayShape is the built-in shape spanning multiple virtual days.
//
// Starting from Baseline users it grows linearly by DailyGrowth per virtual
// day, modulates within each day by a half-sine bump of WaveAmplitude users
// peaking at virtual noon (sin(0)=sin(pi)=0, so the wave contributes nothing
// at day boundaries), and adds PeakBonus users while the virtual hour of day
// is in the peak set.
//
// Evaluate is pure: the same elapsed value always yields the same Step, so
// the shape can be replayed and tested without any clock mocking.
type MultiDayShape struct {
	Reference     time.Time
	RunDuration   time.Duration
	Baseline      float64
	DailyGrowth   float64
	WaveAmplitude float64
	PeakBonus     float64
	SpawnRate     float64

	peakHours [24]bool
}

// NewMultiDayShape builds a shape from configuration.
func NewMultiDayShape(cfg config.Shape) *MultiDayShape {
	s := &MultiDayShape{
		Reference:     cfg.ReferenceTime,
		RunDuration:   cfg.RunDuration.Std(),
		Baseline:      cfg.Baseline,
		DailyGrowth:   cfg.DailyGrowth,
		WaveAmplitude: cfg.WaveAmplitude,
		PeakBonus:     cfg.PeakBonus,
		SpawnRate:     cfg.SpawnRate,
	}
	for _, h := range cfg.PeakHours {
		if h >= 0 && h < 24 {
			s.peakHours[h] = true
		}
	}
	return s
}

// Evaluate returns the target user count for the given elapsed run time.
// Negative elapsed is clamped to zero. Once elapsed exceeds RunDuration the
// shape is done and keeps returning ok=false.
func (s *MultiDayShape) Evaluate(elapsed time.Duration) (Step, bool) {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > s.RunDuration {
		return Step{}, false
	}

	virtualNow := s.Reference.Add(elapsed)
	days := elapsed.Seconds() / 86400
	dayFraction := days - math.Floor(days)

	extra := 0.0
	if s.peakHours[virtualNow.Hour()] {
		extra = s.PeakBonus
	}

	desired := s.DailyGrowth*days + s.WaveAmplitude*math.Sin(dayFraction*math.Pi) + s.Baseline + extra

	// Round half away from zero, then clamp. Fractional or negative user
	// counts are meaningless to the pool.
	users := int(math.Round(desired))
	if users < 0 {
		users = 0
	}

	return Step{Users: users, SpawnRate: s.SpawnRate}, true
}

// IsPeakHour reports whether the given virtual hour of day carries the bonus.
func (s *MultiDayShape) IsPeakHour(hour int) bool {
	hour = ((hour % 24) + 24) % 24
	return s.peakHours[hour]
}
