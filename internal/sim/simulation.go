package sim

import (
	"log/slog"

	"github.com/selwood/villagefolk/internal/decision"
	"github.com/selwood/villagefolk/internal/idletask"
	"github.com/selwood/villagefolk/internal/needs"
	"github.com/selwood/villagefolk/internal/npc"
	"github.com/selwood/villagefolk/internal/village"
	"github.com/selwood/villagefolk/internal/work"
)

// tickDeltaMS is the simulation time advanced per tick.
const tickDeltaMS = 1000

// Fatigue drift on the host-owned agent record, per sim-second.
const (
	fatigueWorkPerSec = 0.35
	fatigueIdlePerSec = -0.10
)

// DecisionRecord is one applied decision, kept for telemetry.
type DecisionRecord struct {
	Tick     uint64 `db:"tick"`
	AgentID  string `db:"agent_id"`
	Kind     string `db:"kind"`
	Action   string `db:"action"`
	Priority int    `db:"priority"`
	Reason   string `db:"reason"`
}

// TickStats aggregates one tick's population state.
type TickStats struct {
	Tick       uint64  `db:"tick"`
	Population int     `db:"population"`
	Working    int     `db:"working"`
	Critical   int     `db:"critical"`
	AvgFood    float64 `db:"avg_food"`
	AvgRest    float64 `db:"avg_rest"`
	AvgSocial  float64 `db:"avg_social"`
	AvgShelter float64 `db:"avg_shelter"`
}

// Simulation wires the behavior components to a demo world and runs the
// per-tick update in the required order: needs, then tasks (with reward
// application), then decisions, then decision application.
type Simulation struct {
	World   *village.World
	Tracker *needs.Tracker
	Tasks   *idletask.Manager
	Decider *decision.Engine
	Work    *work.Assignment

	Stats     TickStats
	Happiness map[npc.AgentID]float64 // accumulated task-reward happiness

	pending []DecisionRecord
}

// NewSimulation registers every villager with the behavior components
// and returns the wired simulation.
func NewSimulation(w *village.World, tracker *needs.Tracker, tasks *idletask.Manager,
	decider *decision.Engine, assignment *work.Assignment) *Simulation {

	s := &Simulation{
		World:     w,
		Tracker:   tracker,
		Tasks:     tasks,
		Decider:   decider,
		Work:      assignment,
		Happiness: make(map[npc.AgentID]float64),
	}
	for _, a := range w.Agents() {
		tracker.RegisterNPC(a.ID, nil)
		assignment.EnrollNPC(a.ID)
	}
	return s
}

// TickSecond advances the whole simulation by one sim-second.
func (s *Simulation) TickSecond(tick uint64) {
	agents := s.World.Agents()

	// 1. Needs decay/recovery, driven by what each agent is doing now.
	states := make(map[npc.AgentID]npc.StateFlags, len(agents))
	for _, a := range agents {
		if !a.Alive {
			continue
		}
		flags := npc.StateFlags{
			IsWorking:         a.IsWorking,
			IsInsideTerritory: s.World.InsideTerritory(a.Position),
		}
		if task := s.Tasks.GetCurrentTask(a.ID); task != nil && task.Active {
			flags.IsResting = task.Type == idletask.Rest
			flags.IsSocializing = task.Type == idletask.Socialize
		}
		states[a.ID] = flags
	}
	s.Tracker.UpdateAllNeeds(tickDeltaMS, states)

	// 2. Idle-task clocks; completions pay out before anyone decides.
	for _, done := range s.Tasks.UpdateTasks(tickDeltaMS) {
		s.applyRewards(done)
	}

	// 3–4. Decide and apply, one agent at a time.
	for _, a := range agents {
		if !a.Alive {
			continue
		}
		s.driftFatigue(a)
		s.syncMirrors(a)

		ctx := decision.Context{HasWorkOffer: s.hasWorkOffer(a)}
		d := s.Decider.DecideAction(a, ctx)
		if d == nil {
			continue
		}
		s.applyDecision(tick, a, d)
	}

	s.collectStats(tick, agents)
}

// applyRewards pushes a completed task's payouts back into the tracker
// and the host record.
func (s *Simulation) applyRewards(done idletask.Completion) {
	r := done.Task.Rewards
	if r.RestNeed != 0 {
		s.Tracker.SatisfyNeed(done.AgentID, needs.NeedRest, r.RestNeed)
	}
	if r.SocialNeed != 0 {
		s.Tracker.SatisfyNeed(done.AgentID, needs.NeedSocial, r.SocialNeed)
	}
	if r.Happiness != 0 {
		s.Happiness[done.AgentID] += r.Happiness
	}
	if a := s.World.Agent(done.AgentID); a != nil && r.Fatigue != 0 {
		a.Fatigue += r.Fatigue
		a.Normalize()
	}
}

func (s *Simulation) driftFatigue(a *npc.Agent) {
	if a.IsWorking {
		a.Fatigue += fatigueWorkPerSec
	} else {
		a.Fatigue += fatigueIdlePerSec
	}
	a.Normalize()
}

// syncMirrors copies tracker values onto the host record fields the
// idle-task heuristics read.
func (s *Simulation) syncMirrors(a *npc.Agent) {
	if v, ok := s.Tracker.NeedValue(a.ID, needs.NeedRest); ok {
		a.RestNeed = v
	}
	if v, ok := s.Tracker.NeedValue(a.ID, needs.NeedSocial); ok {
		a.SocialNeed = v
	}
}

// hasWorkOffer: the village offers work to unemployed villagers while
// any completed workplace still has a free slot.
func (s *Simulation) hasWorkOffer(a *npc.Agent) bool {
	if a.IsWorking || a.AssignedBuilding != "" {
		return false
	}
	for _, b := range s.World.Buildings() {
		if b.State != npc.StateComplete || b.Properties.NPCCapacity <= 0 {
			continue
		}
		info := s.Work.BuildingAssignmentInfo(b.ID)
		if info != nil && info.Current < info.Capacity {
			return true
		}
	}
	return false
}

// applyDecision turns a Decision into engine calls. The demo host
// resolves SEEK_* actions instantly; a real host would path the agent
// to a food store, shelter, or healer first.
func (s *Simulation) applyDecision(tick uint64, a *npc.Agent, d *decision.Decision) {
	s.pending = append(s.pending, DecisionRecord{
		Tick:     tick,
		AgentID:  string(a.ID),
		Kind:     d.Kind.String(),
		Action:   string(d.Action),
		Priority: int(d.Priority),
		Reason:   d.Reason,
	})

	interrupt := s.Decider.ShouldInterrupt(d, a)
	if interrupt {
		s.Tasks.CancelTask(a.ID)
		if d.Kind == decision.KindEmergency && a.AssignedBuilding != "" {
			s.Work.UnassignNPC(a.ID)
			slog.Debug("work abandoned for emergency", "agent", a.ID, "reason", d.Reason)
		}
	}

	switch d.Kind {
	case decision.KindEmergency:
		s.resolveUrgentAction(a, d.Action, 60)
	case decision.KindSatisfyNeed:
		s.resolveUrgentAction(a, d.Action, 40)
	case decision.KindWork:
		s.acceptWork(a)
	case decision.KindIdleTask:
		s.startIdleTask(a, d.Action)
	case decision.KindContinue:
		// Nothing to do — the agent stays on task.
	}
}

func (s *Simulation) resolveUrgentAction(a *npc.Agent, action decision.Action, amount float64) {
	switch action {
	case decision.ActionSeekFood:
		s.Tracker.SatisfyNeed(a.ID, needs.NeedFood, amount)
	case decision.ActionSeekShelter:
		s.Tracker.SatisfyNeed(a.ID, needs.NeedShelter, amount)
	case decision.ActionSeekHealing:
		a.Health += amount
		a.Normalize()
	case decision.ActionRest:
		kind := idletask.Rest
		s.Tasks.AssignTask(a, &idletask.AssignOptions{Type: &kind})
	case decision.ActionSocialize:
		kind := idletask.Socialize
		s.Tasks.AssignTask(a, &idletask.AssignOptions{Type: &kind})
	}
}

func (s *Simulation) acceptWork(a *npc.Agent) {
	for _, b := range s.World.Buildings() {
		res := s.Work.AssignNPCToBuilding(a.ID, b.ID)
		if res.Success {
			slog.Debug("work accepted", "agent", a.ID, "building", b.ID, "type", b.Type.String())
			return
		}
		if res.Error == work.ErrNPCNotFound {
			return
		}
	}
}

func (s *Simulation) startIdleTask(a *npc.Agent, action decision.Action) {
	var forced *idletask.Type
	switch action {
	case decision.ActionRest:
		t := idletask.Rest
		forced = &t
	case decision.ActionSocialize:
		t := idletask.Socialize
		forced = &t
	case decision.ActionWander:
		t := idletask.Wander
		forced = &t
	case decision.ActionInspect:
		t := idletask.Inspect
		forced = &t
	}
	s.Tasks.AssignTask(a, &idletask.AssignOptions{Type: forced})
}

func (s *Simulation) collectStats(tick uint64, agents []*npc.Agent) {
	stats := TickStats{Tick: tick}
	tracked := 0
	for _, a := range agents {
		if !a.Alive {
			continue
		}
		stats.Population++
		if a.IsWorking {
			stats.Working++
		}
		if s.Tracker.HasCriticalNeeds(a.ID) {
			stats.Critical++
		}
		if summary := s.Tracker.GetNeedsSummary(a.ID); summary != nil {
			stats.AvgFood += summary.Values[needs.NeedFood]
			stats.AvgRest += summary.Values[needs.NeedRest]
			stats.AvgSocial += summary.Values[needs.NeedSocial]
			stats.AvgShelter += summary.Values[needs.NeedShelter]
			tracked++
		}
	}
	if tracked > 0 {
		stats.AvgFood /= float64(tracked)
		stats.AvgRest /= float64(tracked)
		stats.AvgSocial /= float64(tracked)
		stats.AvgShelter /= float64(tracked)
	}
	s.Stats = stats
}

// TickMinute emits the periodic report.
func (s *Simulation) TickMinute(tick uint64) {
	dstats := s.Decider.GetStatistics()
	tstats := s.Tasks.GetStatistics()
	wstats := s.Work.GetStatistics()
	slog.Info("minute report",
		"time", SimTime(tick),
		"population", s.Stats.Population,
		"working", s.Stats.Working,
		"critical", s.Stats.Critical,
		"avg_food", int(s.Stats.AvgFood),
		"avg_rest", int(s.Stats.AvgRest),
		"avg_social", int(s.Stats.AvgSocial),
		"avg_shelter", int(s.Stats.AvgShelter),
		"decisions", dstats.Total,
		"emergency_rate", dstats.EmergencyRate,
		"refusal_rate", dstats.WorkRefusalRate,
		"tasks_active", tstats.Active,
		"tasks_completed", tstats.Completed,
		"idle_agents", wstats.IdleAgents,
	)
}

// TickHour prunes idle-task history older than an hour of sim time.
func (s *Simulation) TickHour(tick uint64) {
	dropped := s.Tasks.CleanupHistory(int64(TicksPerSimHour) * tickDeltaMS)
	slog.Info("hourly housekeeping",
		"time", SimTime(tick),
		"history_pruned", dropped,
	)
}

// DrainDecisions returns and clears the decision records accumulated
// since the last drain.
func (s *Simulation) DrainDecisions() []DecisionRecord {
	out := s.pending
	s.pending = nil
	return out
}
