// Package idletask manages the timed, low-stakes activities agents fall
// back to when nothing urgent demands them: wandering, socializing,
// resting, and inspecting buildings.
package idletask

import (
	"github.com/google/uuid"

	"github.com/selwood/villagefolk/internal/decision"
	"github.com/selwood/villagefolk/internal/entropy"
	"github.com/selwood/villagefolk/internal/npc"
)

// Type enumerates the idle activities.
type Type uint8

const (
	Wander    Type = iota
	Socialize
	Rest
	Inspect

	numTypes = 4
)

// String returns the canonical name of a task type.
func (t Type) String() string {
	switch t {
	case Wander:
		return "WANDER"
	case Socialize:
		return "SOCIALIZE"
	case Rest:
		return "REST"
	case Inspect:
		return "INSPECT"
	default:
		return "UNKNOWN"
	}
}

// Rewards are the deltas applied when a task completes. Positive values
// refill needs/happiness; Fatigue is negative for restful tasks.
type Rewards struct {
	Happiness  float64 `json:"happiness,omitempty"`
	RestNeed   float64 `json:"rest_need,omitempty"`
	SocialNeed float64 `json:"social_need,omitempty"`
	Fatigue    float64 `json:"fatigue,omitempty"`
}

// rewardTable holds the fixed per-type reward deltas.
var rewardTable = [numTypes]Rewards{
	Wander:    {Happiness: 0.5, RestNeed: 2},
	Socialize: {Happiness: 1, SocialNeed: 10},
	Rest:      {Fatigue: -20, RestNeed: 15},
	Inspect:   {Happiness: 0.5},
}

// Duration windows per type, in simulation milliseconds.
var durationWindow = [numTypes]struct{ min, max int64 }{
	Wander:    {5000, 15000},
	Socialize: {10000, 20000},
	Rest:      {15000, 30000},
	Inspect:   {5000, 10000},
}

// rollDuration picks a duration uniformly inside the type's window.
func rollDuration(t Type, rng entropy.Source) int64 {
	w := durationWindow[t]
	return w.min + int64(rng.Float64()*float64(w.max-w.min))
}

// priorityFor computes a task's contextual priority from the agent's
// state at assignment time.
func priorityFor(t Type, agent *npc.Agent) decision.Priority {
	switch t {
	case Socialize:
		if agent != nil && agent.SocialNeed < 30 {
			return decision.PriorityHigh
		}
		return decision.PriorityMedium
	case Rest:
		switch {
		case agent != nil && agent.Fatigue > 70:
			return decision.PriorityHigh
		case agent != nil && agent.Fatigue > 40:
			return decision.PriorityMedium
		default:
			return decision.PriorityLow
		}
	default:
		return decision.PriorityLow
	}
}

// Payload carries the type-specific target data. Unused fields stay
// zero; spatial queries may legitimately find nothing, so every target
// is optional.
type Payload struct {
	Target         *npc.Position  `json:"target,omitempty"`          // WANDER destination
	TargetAgent    npc.AgentID    `json:"target_agent,omitempty"`    // SOCIALIZE partner
	TargetBuilding npc.BuildingID `json:"target_building,omitempty"` // INSPECT subject
}

// Task is one timed idle activity. State machine:
//
//	(unstarted) → active → completed | cancelled
//
// Terminal states are final; Start, Complete, and Cancel are no-ops
// outside their valid source state.
type Task struct {
	ID          string            `json:"id"`
	Type        Type              `json:"type"`
	Data        Payload           `json:"data"`
	StartTime   int64             `json:"start_time"`
	Duration    int64             `json:"duration"`
	CompletedAt int64             `json:"completed_at,omitempty"`
	Active      bool              `json:"is_active"`
	Completed   bool              `json:"is_complete"`
	Cancelled   bool              `json:"is_cancelled"`
	Priority    decision.Priority `json:"priority"`
	Rewards     Rewards           `json:"rewards"`
}

// New creates an unstarted task of the given type.
func New(t Type, agent *npc.Agent, data Payload, rng entropy.Source) *Task {
	return &Task{
		ID:       uuid.NewString(),
		Type:     t,
		Data:     data,
		Duration: rollDuration(t, rng),
		Priority: priorityFor(t, agent),
		Rewards:  rewardTable[t],
	}
}

// Start activates the task at the given simulation time. No-op if the
// task is already active or terminal.
func (t *Task) Start(now int64) {
	if t.Active || t.Completed || t.Cancelled {
		return
	}
	t.Active = true
	t.StartTime = now
}

// Update advances the task against the simulation clock. Returns true
// once the task has run its full duration; the first true transition
// completes it, later calls keep returning true without further effect.
func (t *Task) Update(now int64) bool {
	if t.Completed {
		return true
	}
	if !t.Active || t.Cancelled {
		return false
	}
	if now-t.StartTime >= t.Duration {
		t.Complete(now)
		return true
	}
	return false
}

// Complete marks the task finished. Valid only from the active state.
func (t *Task) Complete(now int64) {
	if !t.Active || t.Completed || t.Cancelled {
		return
	}
	t.Active = false
	t.Completed = true
	t.CompletedAt = now
}

// Cancel aborts the task. Valid only from the active state; cancelling
// a completed or already-cancelled task is a safe no-op.
func (t *Task) Cancel() {
	if !t.Active || t.Completed || t.Cancelled {
		return
	}
	t.Active = false
	t.Cancelled = true
}

// Terminal reports whether the task has reached a final state.
func (t *Task) Terminal() bool {
	return t.Completed || t.Cancelled
}

// Progress returns completion in [0, 1] at the given simulation time.
func (t *Task) Progress(now int64) float64 {
	if t.Completed {
		return 1
	}
	if !t.Active || t.Duration <= 0 {
		return 0
	}
	p := float64(now-t.StartTime) / float64(t.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Remaining returns the simulation milliseconds left, never negative.
func (t *Task) Remaining(now int64) int64 {
	if !t.Active || t.Completed {
		return 0
	}
	rem := t.Duration - (now - t.StartTime)
	if rem < 0 {
		return 0
	}
	return rem
}

// Summary is a read-only snapshot of a task for reporting.
type Summary struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Active    bool              `json:"active"`
	Completed bool              `json:"completed"`
	Cancelled bool              `json:"cancelled"`
	Duration  int64             `json:"duration"`
	Priority  decision.Priority `json:"priority"`
}

// GetSummary returns a snapshot of the task.
func (t *Task) GetSummary() Summary {
	return Summary{
		ID:        t.ID,
		Type:      t.Type.String(),
		Active:    t.Active,
		Completed: t.Completed,
		Cancelled: t.Cancelled,
		Duration:  t.Duration,
		Priority:  t.Priority,
	}
}
