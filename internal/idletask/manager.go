package idletask

import (
	"math"

	"github.com/selwood/villagefolk/internal/entropy"
	"github.com/selwood/villagefolk/internal/npc"
)

// Selection heuristic thresholds.
const (
	fatigueRestFloor  = 70.0
	lowSocialFloor    = 40.0
	wanderWeight      = 0.6 // remainder goes to INSPECT
	wanderMinDistance = 5.0 // cells
	wanderMaxDistance = 10.0
)

// Config holds manager tuning. Zero values fall back to defaults.
type Config struct {
	HistoryCapacity int     // retained completions (default 128)
	InspectRadius   float64 // nearest-building search radius in cells (default 20)
}

// DefaultConfig returns the standard manager tuning.
func DefaultConfig() Config {
	return Config{
		HistoryCapacity: 128,
		InspectRadius:   20,
	}
}

// Manager owns the single active idle task per agent, advances task
// clocks, and keeps a bounded completion history. It holds its own
// monotonic simulation clock, advanced only by UpdateTasks.
type Manager struct {
	active  map[npc.AgentID]*Task
	history *historyRing
	clock   int64
	rng     entropy.Source
	spatial npc.SpatialIndex // may be nil; targets degrade to none
	cfg     Config

	completedCount int
	cancelledCount int
	byType         [numTypes]int
}

// NewManager creates an idle-task manager. spatial may be nil, in which
// case socialize/inspect tasks start without targets.
func NewManager(cfg Config, rng entropy.Source, spatial npc.SpatialIndex) *Manager {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultConfig().HistoryCapacity
	}
	if cfg.InspectRadius <= 0 {
		cfg.InspectRadius = DefaultConfig().InspectRadius
	}
	if rng == nil {
		rng = entropy.NewCrypto()
	}
	return &Manager{
		active:  make(map[npc.AgentID]*Task),
		history: newHistoryRing(cfg.HistoryCapacity),
		rng:     rng,
		spatial: spatial,
		cfg:     cfg,
	}
}

// AssignOptions tweaks task assignment. A non-nil Type forces that
// activity instead of the heuristic pick.
type AssignOptions struct {
	Type *Type
}

// AssignTask gives the agent an idle task and starts it. Idempotent: if
// the agent already has an active task it is returned unchanged. Returns
// nil for nil agents or empty ids.
func (m *Manager) AssignTask(agent *npc.Agent, opts *AssignOptions) *Task {
	if agent == nil || agent.ID == "" {
		return nil
	}
	if existing, ok := m.active[agent.ID]; ok && existing.Active {
		return existing
	}

	var kind Type
	if opts != nil && opts.Type != nil {
		kind = *opts.Type
	} else {
		kind = m.selectType(agent)
	}

	task := New(kind, agent, m.buildPayload(kind, agent), m.rng)
	task.Start(m.clock)
	m.active[agent.ID] = task
	m.byType[kind]++
	return task
}

// selectType picks an activity: exhaustion wins, then loneliness when a
// partner is actually around, else a weighted wander/inspect split.
func (m *Manager) selectType(agent *npc.Agent) Type {
	if agent.Fatigue > fatigueRestFloor {
		return Rest
	}
	if agent.SocialNeed < lowSocialFloor && m.spatial != nil &&
		m.spatial.NearestSociableAgent(agent) != nil {
		return Socialize
	}
	if m.rng.Float64() < wanderWeight {
		return Wander
	}
	return Inspect
}

// buildPayload resolves the type-specific target. Spatial misses leave
// the payload empty — the host treats a targetless task as "in place".
func (m *Manager) buildPayload(kind Type, agent *npc.Agent) Payload {
	switch kind {
	case Wander:
		// Polar sampling: 5–10 cells out in a uniform random direction.
		angle := m.rng.Float64() * 2 * math.Pi
		dist := wanderMinDistance + m.rng.Float64()*(wanderMaxDistance-wanderMinDistance)
		return Payload{Target: &npc.Position{
			X: agent.Position.X + math.Cos(angle)*dist,
			Y: agent.Position.Y + math.Sin(angle)*dist,
		}}
	case Socialize:
		if m.spatial != nil {
			if partner := m.spatial.NearestSociableAgent(agent); partner != nil {
				return Payload{TargetAgent: partner.ID}
			}
		}
		return Payload{}
	case Inspect:
		if m.spatial != nil {
			if b := m.spatial.NearestBuilding(agent.Position, m.cfg.InspectRadius); b != nil {
				return Payload{TargetBuilding: b.ID}
			}
		}
		return Payload{}
	default:
		return Payload{}
	}
}

// UpdateTasks advances the task clock by deltaMS and returns the tasks
// that completed this step, already moved into the history ring. The
// caller applies the rewards.
func (m *Manager) UpdateTasks(deltaMS int64) []Completion {
	if deltaMS > 0 {
		m.clock += deltaMS
	}
	var done []Completion
	for id, task := range m.active {
		if !task.Update(m.clock) {
			continue
		}
		c := Completion{AgentID: id, Task: task, CompletedAt: task.CompletedAt}
		m.history.push(c)
		done = append(done, c)
		delete(m.active, id)
		m.completedCount++
	}
	return done
}

// CancelTask aborts the agent's active task. Returns false when there
// is nothing to cancel; safe to call repeatedly.
func (m *Manager) CancelTask(id npc.AgentID) bool {
	task, ok := m.active[id]
	if !ok || !task.Active {
		return false
	}
	task.Cancel()
	delete(m.active, id)
	m.cancelledCount++
	return true
}

// GetCurrentTask returns the agent's active task, or nil.
func (m *Manager) GetCurrentTask(id npc.AgentID) *Task {
	return m.active[id]
}

// HasActiveTask reports whether the agent is mid-activity.
func (m *Manager) HasActiveTask(id npc.AgentID) bool {
	task, ok := m.active[id]
	return ok && task.Active
}

// TaskRewards returns the fixed reward deltas for a task type.
func TaskRewards(t Type) Rewards {
	if int(t) >= numTypes {
		return Rewards{}
	}
	return rewardTable[t]
}

// RemoveNPC cancels and purges all tracking for an agent leaving the
// simulation.
func (m *Manager) RemoveNPC(id npc.AgentID) {
	if task, ok := m.active[id]; ok {
		task.Cancel()
		delete(m.active, id)
		m.cancelledCount++
	}
}

// History returns the retained completions, oldest first.
func (m *Manager) History() []Completion {
	return m.history.items()
}

// CleanupHistory prunes completions older than maxAgeMS against the
// manager's clock. Returns the number dropped.
func (m *Manager) CleanupHistory(maxAgeMS int64) int {
	return m.history.pruneOlderThan(m.clock - maxAgeMS)
}

// ClearAllTasks cancels every active task and empties the history.
func (m *Manager) ClearAllTasks() {
	for id, task := range m.active {
		task.Cancel()
		delete(m.active, id)
	}
	m.history.clear()
}

// Clock returns the manager's current simulation time in milliseconds.
func (m *Manager) Clock() int64 {
	return m.clock
}

// Statistics aggregates manager activity for reporting.
type Statistics struct {
	Active    int            `json:"active"`
	Completed int            `json:"completed"`
	Cancelled int            `json:"cancelled"`
	Retained  int            `json:"retained"`
	ByType    map[string]int `json:"by_type"`
}

// GetStatistics returns running task statistics.
func (m *Manager) GetStatistics() Statistics {
	stats := Statistics{
		Active:    len(m.active),
		Completed: m.completedCount,
		Cancelled: m.cancelledCount,
		Retained:  m.history.size,
		ByType:    make(map[string]int, numTypes),
	}
	for t := Type(0); t < numTypes; t++ {
		if m.byType[t] > 0 {
			stats.ByType[t.String()] = m.byType[t]
		}
	}
	return stats
}
