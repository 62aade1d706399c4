// Package sim hosts the behavior engine: a layered tick loop plus the
// orchestrator that feeds the needs tracker, idle-task manager,
// decision engine, and work assignment in the required order.
package sim

import (
	"fmt"
	"log/slog"
	"time"
)

// Tick layering. One tick is one simulation second.
const (
	TicksPerSimMinute = 60
	TicksPerSimHour   = 3600
)

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // current tick counter (monotonic)
	Speed    float64       // multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // base tick interval
	Running  bool

	// Callbacks for each tick layer — populated during setup.
	OnTick   func(tick uint64) // every tick (sim-second)
	OnMinute func(tick uint64) // every 60 ticks
	OnHour   func(tick uint64) // every 3600 ticks
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run starts the simulation loop. Blocks until Stop is called or, when
// maxTicks > 0, that many ticks have elapsed.
func (e *Engine) Run(maxTicks uint64) {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	start := e.Tick
	for e.Running {
		if maxTicks > 0 && e.Tick-start >= maxTicks {
			break
		}
		if e.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		began := time.Now()
		e.Step()

		elapsed := time.Since(began)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	e.Running = false
	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.Running = false
}

// Step advances the simulation by one tick. Exposed so hosts can run
// the loop themselves (and tests can step without sleeping).
func (e *Engine) Step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.Tick%TicksPerSimMinute == 0 && e.OnMinute != nil {
		e.OnMinute(e.Tick)
	}
	if e.Tick%TicksPerSimHour == 0 && e.OnHour != nil {
		e.OnHour(e.Tick)
	}
}

// SimTime renders a tick as a human-readable sim clock.
func SimTime(tick uint64) string {
	seconds := tick % 60
	minutes := (tick / 60) % 60
	hours := (tick / 3600) % 24
	days := tick/(24*3600) + 1
	return fmt.Sprintf("Day %d, %02d:%02d:%02d", days, hours, minutes, seconds)
}
