// Package decision arbitrates, once per tick per agent, the single best
// action: emergency interrupts first, then work offers, then urgent
// needs, then continuing or starting idle activity.
package decision

import "github.com/selwood/villagefolk/internal/needs"

// Priority is the closed, ordered set of decision priorities. Only these
// five values ever enter the system.
type Priority int

const (
	PriorityLow       Priority = 10
	PriorityMedium    Priority = 25
	PriorityHigh      Priority = 50
	PriorityCritical  Priority = 75
	PriorityEmergency Priority = 100
)

// String returns the canonical name of a priority level.
func (p Priority) String() string {
	switch p {
	case PriorityEmergency:
		return "EMERGENCY"
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// Kind classifies a decision.
type Kind uint8

const (
	KindEmergency   Kind = iota
	KindSatisfyNeed
	KindWork
	KindIdleTask
	KindContinue
)

// String returns the canonical name of a decision kind.
func (k Kind) String() string {
	switch k {
	case KindEmergency:
		return "EMERGENCY"
	case KindSatisfyNeed:
		return "SATISFY_NEED"
	case KindWork:
		return "WORK"
	case KindIdleTask:
		return "IDLE_TASK"
	case KindContinue:
		return "CONTINUE"
	default:
		return "UNKNOWN"
	}
}

// Action names what the agent should attempt. The host maps these onto
// movement and animation; the engine only chooses them.
type Action string

const (
	ActionSeekFood     Action = "SEEK_FOOD"
	ActionSeekShelter  Action = "SEEK_SHELTER"
	ActionSeekHealing  Action = "SEEK_HEALING"
	ActionRest         Action = "REST"
	ActionSocialize    Action = "SOCIALIZE"
	ActionWander       Action = "WANDER"
	ActionInspect      Action = "INSPECT"
	ActionAcceptWork   Action = "ACCEPT_WORK"
	ActionKeepWorking  Action = "KEEP_WORKING"
	ActionContinueTask Action = "CONTINUE_TASK"
)

// Decision is the ephemeral result of one arbitration cycle. Recomputed
// every tick, never persisted by the engine.
type Decision struct {
	Kind      Kind     `json:"kind"`
	Action    Action   `json:"action"`
	Priority  Priority `json:"priority"`
	Reason    string   `json:"reason"`
	Timestamp int64    `json:"timestamp"` // unix milliseconds
}

// actionForNeed maps a deprived need to the action that addresses it.
// Unmapped types fall back to wandering.
func actionForNeed(t needs.NeedType) Action {
	switch t {
	case needs.NeedFood:
		return ActionSeekFood
	case needs.NeedRest:
		return ActionRest
	case needs.NeedSocial:
		return ActionSocialize
	case needs.NeedShelter:
		return ActionSeekShelter
	default:
		return ActionWander
	}
}
