package idletask_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selwood/villagefolk/internal/decision"
	"github.com/selwood/villagefolk/internal/entropy"
	"github.com/selwood/villagefolk/internal/idletask"
	"github.com/selwood/villagefolk/internal/npc"
)

// Scenario: a WANDER task started at t0 with an 8000ms duration
// completes exactly once the clock passes t0+8000, and stays completed.
func TestTaskLifecycle(t *testing.T) {
	// 0.3 into the 5000–15000 window rolls exactly 8000ms.
	rng := &entropy.Sequence{Values: []float64{0.3}}
	task := idletask.New(idletask.Wander, nil, idletask.Payload{}, rng)
	require.Equal(t, int64(8000), task.Duration)
	assert.NotEmpty(t, task.ID)

	const t0 = int64(1000)
	assert.False(t, task.Update(t0), "unstarted task never completes")

	task.Start(t0)
	assert.True(t, task.Active)
	assert.False(t, task.Update(t0+7999))
	assert.True(t, task.Update(t0+8001))
	assert.True(t, task.Completed)
	assert.False(t, task.Active)
	firstCompletion := task.CompletedAt

	// A later update still reports done without re-completing.
	assert.True(t, task.Update(t0+20000))
	assert.Equal(t, firstCompletion, task.CompletedAt)
}

func TestTaskStartIdempotent(t *testing.T) {
	rng := &entropy.Sequence{Values: []float64{0.5}}
	task := idletask.New(idletask.Inspect, nil, idletask.Payload{}, rng)

	task.Start(100)
	task.Start(9999) // no second effect
	assert.Equal(t, int64(100), task.StartTime)
}

func TestTaskTerminalStatesAreFinal(t *testing.T) {
	rng := &entropy.Sequence{Values: []float64{0}}

	completed := idletask.New(idletask.Wander, nil, idletask.Payload{}, rng)
	completed.Start(0)
	require.True(t, completed.Update(completed.Duration))
	completed.Cancel()
	assert.True(t, completed.Completed, "cancel after complete is a no-op")
	assert.False(t, completed.Cancelled)

	cancelled := idletask.New(idletask.Wander, nil, idletask.Payload{}, rng)
	cancelled.Start(0)
	cancelled.Cancel()
	cancelled.Complete(500)
	assert.True(t, cancelled.Cancelled, "complete after cancel is a no-op")
	assert.False(t, cancelled.Completed)
	assert.False(t, cancelled.Update(99999), "cancelled task never completes")

	unstarted := idletask.New(idletask.Wander, nil, idletask.Payload{}, rng)
	unstarted.Cancel()
	assert.False(t, unstarted.Cancelled, "cancel is only valid from active")
}

func TestTaskProgressAndRemaining(t *testing.T) {
	rng := &entropy.Sequence{Values: []float64{0.5}} // 10000ms wander
	task := idletask.New(idletask.Wander, nil, idletask.Payload{}, rng)
	require.Equal(t, int64(10000), task.Duration)

	assert.Equal(t, 0.0, task.Progress(0))
	task.Start(0)
	assert.InDelta(t, 0.25, task.Progress(2500), 0.001)
	assert.Equal(t, int64(7500), task.Remaining(2500))
	task.Update(10000)
	assert.Equal(t, 1.0, task.Progress(999999))
	assert.Equal(t, int64(0), task.Remaining(999999))
}

func TestContextualPriority(t *testing.T) {
	cases := []struct {
		name  string
		kind  idletask.Type
		agent *npc.Agent
		want  decision.Priority
	}{
		{"socialize lonely", idletask.Socialize, &npc.Agent{SocialNeed: 20}, decision.PriorityHigh},
		{"socialize content", idletask.Socialize, &npc.Agent{SocialNeed: 60}, decision.PriorityMedium},
		{"rest exhausted", idletask.Rest, &npc.Agent{Fatigue: 80}, decision.PriorityHigh},
		{"rest weary", idletask.Rest, &npc.Agent{Fatigue: 50}, decision.PriorityMedium},
		{"rest fresh", idletask.Rest, &npc.Agent{Fatigue: 10}, decision.PriorityLow},
		{"wander", idletask.Wander, &npc.Agent{}, decision.PriorityLow},
		{"inspect", idletask.Inspect, &npc.Agent{}, decision.PriorityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := &entropy.Sequence{Values: []float64{0}}
			task := idletask.New(tc.kind, tc.agent, idletask.Payload{}, rng)
			assert.Equal(t, tc.want, task.Priority)
		})
	}
}

func TestRewardTable(t *testing.T) {
	assert.Equal(t, idletask.Rewards{Happiness: 0.5, RestNeed: 2}, idletask.TaskRewards(idletask.Wander))
	assert.Equal(t, idletask.Rewards{Happiness: 1, SocialNeed: 10}, idletask.TaskRewards(idletask.Socialize))
	assert.Equal(t, idletask.Rewards{Fatigue: -20, RestNeed: 15}, idletask.TaskRewards(idletask.Rest))
	assert.Equal(t, idletask.Rewards{Happiness: 0.5}, idletask.TaskRewards(idletask.Inspect))
}

func TestDurationWindows(t *testing.T) {
	windows := map[idletask.Type][2]int64{
		idletask.Wander:    {5000, 15000},
		idletask.Socialize: {10000, 20000},
		idletask.Rest:      {15000, 30000},
		idletask.Inspect:   {5000, 10000},
	}
	rng := entropy.NewSeeded(3)
	for kind, window := range windows {
		for i := 0; i < 50; i++ {
			task := idletask.New(kind, nil, idletask.Payload{}, rng)
			assert.GreaterOrEqual(t, task.Duration, window[0], "%s run %d", kind, i)
			assert.LessOrEqual(t, task.Duration, window[1], "%s run %d", kind, i)
		}
	}
}
