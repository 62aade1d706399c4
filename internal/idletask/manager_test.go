package idletask_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selwood/villagefolk/internal/entropy"
	"github.com/selwood/villagefolk/internal/idletask"
	"github.com/selwood/villagefolk/internal/npc"
)

// spatialStub answers the manager's proximity queries with fixed results.
type spatialStub struct {
	agent    *npc.Agent
	building *npc.Building
}

func (s *spatialStub) NearestSociableAgent(from *npc.Agent) *npc.Agent { return s.agent }
func (s *spatialStub) NearestBuilding(pos npc.Position, radius float64) *npc.Building {
	return s.building
}

func newManager(spatial npc.SpatialIndex, seq ...float64) *idletask.Manager {
	if len(seq) == 0 {
		seq = []float64{0.1}
	}
	return idletask.NewManager(idletask.DefaultConfig(), &entropy.Sequence{Values: seq}, spatial)
}

func forced(t idletask.Type) *idletask.AssignOptions {
	return &idletask.AssignOptions{Type: &t}
}

func TestAssignTaskIdempotent(t *testing.T) {
	m := newManager(nil)
	agent := &npc.Agent{ID: "n1"}

	first := m.AssignTask(agent, forced(idletask.Wander))
	require.NotNil(t, first)
	assert.True(t, first.Active)

	second := m.AssignTask(agent, forced(idletask.Rest))
	assert.Same(t, first, second, "existing active task is returned unchanged")
	assert.Equal(t, idletask.Wander, second.Type)

	assert.Nil(t, m.AssignTask(nil, nil))
	assert.Nil(t, m.AssignTask(&npc.Agent{}, nil))
}

func TestSelectionHeuristic(t *testing.T) {
	partner := &npc.Agent{ID: "buddy"}

	cases := []struct {
		name    string
		agent   *npc.Agent
		spatial npc.SpatialIndex
		seq     []float64
		want    idletask.Type
	}{
		{"exhausted rests", &npc.Agent{ID: "n1", Fatigue: 80}, nil, nil, idletask.Rest},
		{"lonely with company socializes", &npc.Agent{ID: "n1", SocialNeed: 20}, &spatialStub{agent: partner}, nil, idletask.Socialize},
		{"lonely but alone wanders", &npc.Agent{ID: "n1", SocialNeed: 20}, &spatialStub{}, []float64{0.1, 0.1}, idletask.Wander},
		{"low roll wanders", &npc.Agent{ID: "n1", SocialNeed: 90}, nil, []float64{0.1, 0.1, 0.1, 0.1}, idletask.Wander},
		{"high roll inspects", &npc.Agent{ID: "n1", SocialNeed: 90}, nil, []float64{0.9, 0.1}, idletask.Inspect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newManager(tc.spatial, tc.seq...)
			task := m.AssignTask(tc.agent, nil)
			require.NotNil(t, task)
			assert.Equal(t, tc.want, task.Type)
		})
	}
}

func TestWanderPayloadPolarSampling(t *testing.T) {
	// angle roll, distance roll, duration roll
	m := newManager(nil, 0.25, 0.5, 0.5)
	agent := &npc.Agent{ID: "n1", Position: npc.Position{X: 10, Y: 10}}

	task := m.AssignTask(agent, forced(idletask.Wander))
	require.NotNil(t, task)
	require.NotNil(t, task.Data.Target)

	dx := task.Data.Target.X - agent.Position.X
	dy := task.Data.Target.Y - agent.Position.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	assert.InDelta(t, 7.5, dist, 0.001, "0.5 roll lands mid-window")
	assert.GreaterOrEqual(t, dist, 5.0)
	assert.LessOrEqual(t, dist, 10.0)
}

func TestSocializeAndInspectTargets(t *testing.T) {
	partner := &npc.Agent{ID: "buddy"}
	hall := &npc.Building{ID: "b1"}

	m := newManager(&spatialStub{agent: partner, building: hall})
	social := m.AssignTask(&npc.Agent{ID: "n1"}, forced(idletask.Socialize))
	require.NotNil(t, social)
	assert.Equal(t, npc.AgentID("buddy"), social.Data.TargetAgent)

	inspect := m.AssignTask(&npc.Agent{ID: "n2"}, forced(idletask.Inspect))
	require.NotNil(t, inspect)
	assert.Equal(t, npc.BuildingID("b1"), inspect.Data.TargetBuilding)

	// Spatial misses leave the payload empty rather than failing.
	bare := newManager(nil)
	social = bare.AssignTask(&npc.Agent{ID: "n3"}, forced(idletask.Socialize))
	require.NotNil(t, social)
	assert.Empty(t, social.Data.TargetAgent)
}

func TestUpdateTasksCompletion(t *testing.T) {
	m := newManager(nil, 0.0, 0.0) // wander durations roll the 5000ms minimum
	agent := &npc.Agent{ID: "n1"}
	task := m.AssignTask(agent, forced(idletask.Wander))
	require.Equal(t, int64(5000), task.Duration)

	assert.Empty(t, m.UpdateTasks(4999))
	assert.True(t, m.HasActiveTask("n1"))

	done := m.UpdateTasks(1)
	require.Len(t, done, 1)
	assert.Equal(t, npc.AgentID("n1"), done[0].AgentID)
	assert.True(t, done[0].Task.Completed)
	assert.False(t, m.HasActiveTask("n1"))
	assert.Nil(t, m.GetCurrentTask("n1"))

	// Completion lands in history; nothing new on later updates.
	assert.Len(t, m.History(), 1)
	assert.Empty(t, m.UpdateTasks(1000))
}

func TestCancelTask(t *testing.T) {
	m := newManager(nil)
	agent := &npc.Agent{ID: "n1"}
	m.AssignTask(agent, forced(idletask.Wander))

	assert.True(t, m.CancelTask("n1"))
	assert.False(t, m.CancelTask("n1"), "second cancel is a safe no-op")
	assert.False(t, m.CancelTask("ghost"))
	assert.False(t, m.HasActiveTask("n1"))
}

func TestRemoveNPC(t *testing.T) {
	m := newManager(nil)
	m.AssignTask(&npc.Agent{ID: "n1"}, forced(idletask.Rest))

	m.RemoveNPC("n1")
	assert.False(t, m.HasActiveTask("n1"))
	assert.Equal(t, 1, m.GetStatistics().Cancelled)

	m.RemoveNPC("n1") // already gone
	assert.Equal(t, 1, m.GetStatistics().Cancelled)
}

func TestHistoryRingEviction(t *testing.T) {
	cfg := idletask.DefaultConfig()
	cfg.HistoryCapacity = 2
	m := idletask.NewManager(cfg, &entropy.Sequence{Values: []float64{0}}, nil)

	for i, id := range []npc.AgentID{"n1", "n2", "n3"} {
		task := m.AssignTask(&npc.Agent{ID: id}, forced(idletask.Wander))
		require.NotNil(t, task, "agent %d", i)
		require.Len(t, m.UpdateTasks(task.Remaining(m.Clock())), 1)
	}

	history := m.History()
	require.Len(t, history, 2, "oldest entry evicted at capacity")
	assert.Equal(t, npc.AgentID("n2"), history[0].AgentID)
	assert.Equal(t, npc.AgentID("n3"), history[1].AgentID)
	assert.Equal(t, 3, m.GetStatistics().Completed)
}

func TestCleanupHistory(t *testing.T) {
	m := newManager(nil, 0.0)

	first := m.AssignTask(&npc.Agent{ID: "n1"}, forced(idletask.Wander))
	m.UpdateTasks(first.Duration) // completes at clock=5000

	second := m.AssignTask(&npc.Agent{ID: "n2"}, forced(idletask.Wander))
	m.UpdateTasks(second.Duration) // completes at clock=10000
	require.Len(t, m.History(), 2)

	// Prune anything older than 4000ms: only the first completion goes.
	dropped := m.CleanupHistory(4000)
	assert.Equal(t, 1, dropped)
	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, npc.AgentID("n2"), history[0].AgentID)
}

func TestClearAllTasks(t *testing.T) {
	m := newManager(nil)
	m.AssignTask(&npc.Agent{ID: "n1"}, forced(idletask.Wander))
	m.AssignTask(&npc.Agent{ID: "n2"}, forced(idletask.Rest))

	m.ClearAllTasks()
	assert.False(t, m.HasActiveTask("n1"))
	assert.False(t, m.HasActiveTask("n2"))
	assert.Empty(t, m.History())
}

func TestStatistics(t *testing.T) {
	m := newManager(nil, 0.0)
	wander := m.AssignTask(&npc.Agent{ID: "n1"}, forced(idletask.Wander))
	m.AssignTask(&npc.Agent{ID: "n2"}, forced(idletask.Rest))

	m.UpdateTasks(wander.Duration)
	m.CancelTask("n2")

	stats := m.GetStatistics()
	assert.Equal(t, 0, stats.Active)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 1, stats.Retained)
	assert.Equal(t, 1, stats.ByType["WANDER"])
	assert.Equal(t, 1, stats.ByType["REST"])
}
