package decision

import (
	"fmt"
	"time"

	"github.com/selwood/villagefolk/internal/entropy"
	"github.com/selwood/villagefolk/internal/needs"
	"github.com/selwood/villagefolk/internal/npc"
)

// Arbitration thresholds. EmergencyNeedFloor is deliberately stricter
// than the need model's own critical floor: the tracker alerts early,
// the engine interrupts late.
const (
	EmergencyHealthFloor = 20.0
	EmergencyNeedFloor   = 10.0
	CriticalNeedFloor    = 20.0
	LowNeedFloor         = 30.0
	WorkRefusalRestFloor = 15.0

	idleRestFloor   = 50.0
	idleSocialFloor = 50.0
	wanderWeight    = 0.6 // remainder goes to INSPECT
)

// TaskQuery is the slice of the idle-task manager the engine needs:
// whether an agent is already occupied by an activity.
type TaskQuery interface {
	HasActiveTask(id npc.AgentID) bool
}

// Context carries per-cycle inputs from the orchestrator.
type Context struct {
	HasWorkOffer bool
}

// Statistics tracks arbitration outcomes since the last reset.
type Statistics struct {
	Total               int            `json:"total"`
	ByKind              map[string]int `json:"by_kind"`
	EmergencyInterrupts int            `json:"emergency_interrupts"`
	WorkRefusals        int            `json:"work_refusals"`
	EmergencyRate       float64        `json:"emergency_rate"` // percent of total
	WorkRefusalRate     float64        `json:"work_refusal_rate"`
}

// Engine decides what each agent should attempt. It reads the needs
// tracker and the idle-task manager; it never mutates either.
type Engine struct {
	tracker *needs.Tracker
	tasks   TaskQuery
	rng     entropy.Source
	now     func() int64

	total      int
	byKind     map[Kind]int
	emergency  int
	refusals   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandom replaces the engine's random source (tests supply a fixed
// sequence).
func WithRandom(src entropy.Source) Option {
	return func(e *Engine) { e.rng = src }
}

// WithClock replaces the timestamp source for decisions.
func WithClock(now func() int64) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a decision engine. Both collaborators are required;
// constructing without them is a programming error and panics.
func NewEngine(tracker *needs.Tracker, tasks TaskQuery, opts ...Option) *Engine {
	if tracker == nil {
		panic("decision: NewEngine requires a needs tracker")
	}
	if tasks == nil {
		panic("decision: NewEngine requires an idle-task query")
	}
	e := &Engine{
		tracker: tracker,
		tasks:   tasks,
		rng:     entropy.NewCrypto(),
		now:     func() int64 { return time.Now().UnixMilli() },
		byKind:  make(map[Kind]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DecideAction arbitrates the single best action for an agent this
// cycle. Returns nil for an agent without an id — the caller treats nil
// as "no decision made this tick".
func (e *Engine) DecideAction(agent *npc.Agent, ctx Context) *Decision {
	if agent == nil || agent.ID == "" {
		return nil
	}

	summary := e.tracker.GetNeedsSummary(agent.ID)
	if summary == nil {
		// Unregistered agents have no needs to weigh: take work when
		// offered, wander otherwise.
		if ctx.HasWorkOffer {
			return e.record(&Decision{
				Kind: KindWork, Action: ActionAcceptWork, Priority: PriorityMedium,
				Reason: "no needs registered, accepting offered work",
			})
		}
		return e.record(&Decision{
			Kind: KindIdleTask, Action: ActionWander, Priority: PriorityLow,
			Reason: "no needs registered, wandering",
		})
	}

	// 1. Emergencies override everything, work offers included.
	if d := e.checkEmergency(agent, summary); d != nil {
		return e.record(d)
	}

	// 2. Work offer on the table.
	if ctx.HasWorkOffer {
		return e.record(e.evaluateWorkOffer(summary))
	}

	// 3. Urgent (but non-critical) need while idle.
	if summary.Lowest.Value < LowNeedFloor {
		return e.record(&Decision{
			Kind:     KindSatisfyNeed,
			Action:   actionForNeed(summary.Lowest.Type),
			Priority: PriorityHigh,
			Reason:   fmt.Sprintf("%s need low at %.0f", summary.Lowest.Type, summary.Lowest.Value),
		})
	}

	// 4. Already employed: keep at it.
	if agent.IsWorking || agent.AssignedBuilding != "" {
		return e.record(&Decision{
			Kind: KindContinue, Action: ActionKeepWorking, Priority: PriorityMedium,
			Reason: "assigned to a workplace",
		})
	}

	// 5. Mid-activity: finish it.
	if e.tasks.HasActiveTask(agent.ID) {
		return e.record(&Decision{
			Kind: KindContinue, Action: ActionContinueTask, Priority: PriorityLow,
			Reason: "idle task in progress",
		})
	}

	// 6. Nothing pressing: pick a new idle activity.
	return e.record(&Decision{
		Kind:     KindIdleTask,
		Action:   e.selectIdleAction(summary),
		Priority: PriorityLow,
		Reason:   "idle, starting a new activity",
	})
}

func (e *Engine) checkEmergency(agent *npc.Agent, summary *needs.Summary) *Decision {
	if agent.Health < EmergencyHealthFloor {
		return &Decision{
			Kind: KindEmergency, Action: ActionSeekHealing, Priority: PriorityEmergency,
			Reason: fmt.Sprintf("health critical at %.0f", agent.Health),
		}
	}
	// Check in axis order so the response is deterministic when several
	// needs collapse at once.
	for t := needs.NeedType(0); t < needs.NumNeedTypes; t++ {
		if summary.Values[t] < EmergencyNeedFloor {
			return &Decision{
				Kind: KindEmergency, Action: actionForNeed(t), Priority: PriorityEmergency,
				Reason: fmt.Sprintf("%s collapsed to %.0f", t, summary.Values[t]),
			}
		}
	}
	return nil
}

func (e *Engine) evaluateWorkOffer(summary *needs.Summary) *Decision {
	if rest := summary.Values[needs.NeedRest]; rest < WorkRefusalRestFloor {
		e.refusals++
		return &Decision{
			Kind: KindSatisfyNeed, Action: ActionRest, Priority: PriorityHigh,
			Reason: fmt.Sprintf("too exhausted to work, rest at %.0f", rest),
		}
	}
	for t := needs.NeedType(0); t < needs.NumNeedTypes; t++ {
		if summary.Values[t] < CriticalNeedFloor {
			e.refusals++
			return &Decision{
				Kind: KindSatisfyNeed, Action: actionForNeed(t), Priority: PriorityCritical,
				Reason: fmt.Sprintf("%s critical at %.0f, refusing work", t, summary.Values[t]),
			}
		}
	}
	return &Decision{
		Kind: KindWork, Action: ActionAcceptWork, Priority: PriorityMedium,
		Reason: "needs are met, accepting offered work",
	}
}

// selectIdleAction picks the idle activity: rest or socialize when the
// matching need sags, else a weighted wander/inspect split.
func (e *Engine) selectIdleAction(summary *needs.Summary) Action {
	if summary.Values[needs.NeedRest] < idleRestFloor {
		return ActionRest
	}
	if summary.Values[needs.NeedSocial] < idleSocialFloor {
		return ActionSocialize
	}
	if e.rng.Float64() < wanderWeight {
		return ActionWander
	}
	return ActionInspect
}

// ShouldInterrupt reports whether a freshly-made decision justifies
// interrupting the agent's current activity. Emergencies always do;
// idle agents have nothing worth protecting; working agents yield only
// to critical-or-higher decisions.
func (e *Engine) ShouldInterrupt(d *Decision, agent *npc.Agent) bool {
	if d == nil || agent == nil {
		return false
	}
	if d.Kind == KindEmergency {
		return true
	}
	working := agent.IsWorking || agent.AssignedBuilding != ""
	if !working {
		return false
	}
	return d.Priority >= PriorityCritical
}

func (e *Engine) record(d *Decision) *Decision {
	d.Timestamp = e.now()
	e.total++
	e.byKind[d.Kind]++
	if d.Kind == KindEmergency {
		e.emergency++
	}
	return d
}

// GetStatistics returns running arbitration statistics, with emergency
// and refusal rates as percentages of total decisions.
func (e *Engine) GetStatistics() Statistics {
	stats := Statistics{
		Total:               e.total,
		ByKind:              make(map[string]int, len(e.byKind)),
		EmergencyInterrupts: e.emergency,
		WorkRefusals:        e.refusals,
	}
	for k, n := range e.byKind {
		stats.ByKind[k.String()] = n
	}
	if e.total > 0 {
		stats.EmergencyRate = float64(e.emergency) / float64(e.total) * 100
		stats.WorkRefusalRate = float64(e.refusals) / float64(e.total) * 100
	}
	return stats
}

// ResetStatistics zeroes the running counters.
func (e *Engine) ResetStatistics() {
	e.total = 0
	e.emergency = 0
	e.refusals = 0
	e.byKind = make(map[Kind]int)
}
