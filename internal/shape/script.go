package shape

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// tickState is the snapshot of virtual time handed to a script tick().
type tickState struct {
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	Hour           int     `json:"hour"`
	Minute         int     `json:"minute"`
	ISOWeekday     int     `json:"isoWeekday"`
	DaysSinceRef   float64 `json:"daysSinceRef"`
	DayFraction    float64 `json:"dayFraction"`
}

// tickResult is what a script tick() may return.
type tickResult struct {
	Users     float64 `json:"users"`
	SpawnRate float64 `json:"spawnRate"`
}

// ScriptShape evaluates a user-supplied JavaScript formula instead of the
// built-in curve. The script must define a global function
//
//	function tick(state) { ... }
//
// that returns {users, spawnRate} for an active run or null once the run
// should end. state carries elapsedSeconds, hour, minute, isoWeekday,
// daysSinceRef and dayFraction, the same accessors the built-in shape derives.
// A missing or non-positive spawnRate falls back to the configured default.
type ScriptShape struct {
	reference        time.Time
	defaultSpawnRate float64

	vm   *goja.Runtime
	tick goja.Callable
	mu   sync.Mutex

	err  error
	done bool
}

// NewScriptShape compiles src and resolves its tick function. The script is
// evaluated once at construction so syntax errors and a missing tick surface
// immediately rather than on the first control tick.
func NewScriptShape(reference time.Time, defaultSpawnRate float64, name, src string) (*ScriptShape, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	if _, err := vm.RunScript(name, src); err != nil {
		return nil, fmt.Errorf("failed to evaluate shape script: %w", err)
	}

	tick, ok := goja.AssertFunction(vm.Get("tick"))
	if !ok {
		return nil, fmt.Errorf("shape script must define a global tick(state) function")
	}

	return &ScriptShape{
		reference:        reference,
		defaultSpawnRate: defaultSpawnRate,
		vm:               vm,
		tick:             tick,
	}, nil
}

// Evaluate calls the script's tick function for the given elapsed run time.
// A script runtime error ends the run; the error is kept and available via
// Err.
func (s *ScriptShape) Evaluate(elapsed time.Duration) (Step, bool) {
	if elapsed < 0 {
		elapsed = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return Step{}, false
	}

	virtualNow := s.reference.Add(elapsed)
	days := elapsed.Seconds() / 86400

	state := tickState{
		ElapsedSeconds: elapsed.Seconds(),
		Hour:           virtualNow.Hour(),
		Minute:         virtualNow.Minute(),
		ISOWeekday:     ISOWeekday(virtualNow),
		DaysSinceRef:   days,
		DayFraction:    days - math.Floor(days),
	}

	value, err := s.tick(goja.Undefined(), s.vm.ToValue(state))
	if err != nil {
		s.err = fmt.Errorf("shape script tick failed: %w", err)
		s.done = true
		return Step{}, false
	}

	if value == nil || goja.IsNull(value) || goja.IsUndefined(value) {
		s.done = true
		return Step{}, false
	}

	var result tickResult
	if err := s.vm.ExportTo(value, &result); err != nil {
		s.err = fmt.Errorf("shape script tick returned an unusable value: %w", err)
		s.done = true
		return Step{}, false
	}

	users := int(math.Round(result.Users))
	if users < 0 {
		users = 0
	}
	rate := result.SpawnRate
	if rate <= 0 {
		rate = s.defaultSpawnRate
	}

	return Step{Users: users, SpawnRate: rate}, true
}

// Err returns the script error that ended the run, if any.
func (s *ScriptShape) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
