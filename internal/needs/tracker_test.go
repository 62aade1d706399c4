package needs_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selwood/villagefolk/internal/needs"
	"github.com/selwood/villagefolk/internal/npc"
)

func TestRegisterDefaults(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", nil))

	s := tr.GetNeedsSummary("a1")
	require.NotNil(t, s)
	assert.Equal(t, 100.0, s.Values[needs.NeedFood])
	assert.Equal(t, 100.0, s.Values[needs.NeedRest])
	assert.Equal(t, 50.0, s.Values[needs.NeedSocial])
	assert.Equal(t, 100.0, s.Values[needs.NeedShelter])
	assert.Equal(t, needs.NeedSocial, s.Lowest.Type)
	assert.False(t, s.AllSatisfied)
}

func TestRegisterOverridesClamped(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", map[needs.NeedType]float64{
		needs.NeedFood: 150,
		needs.NeedRest: -10,
	}))

	s := tr.GetNeedsSummary("a1")
	require.NotNil(t, s)
	assert.Equal(t, 100.0, s.Values[needs.NeedFood])
	assert.Equal(t, 0.0, s.Values[needs.NeedRest])
}

func TestRegisterUnregisterIdempotence(t *testing.T) {
	tr := needs.NewTracker()
	assert.True(t, tr.RegisterNPC("a1", nil))
	assert.False(t, tr.RegisterNPC("a1", nil), "second register is a no-op")
	assert.True(t, tr.UnregisterNPC("a1"))
	assert.False(t, tr.UnregisterNPC("a1"), "second unregister returns false")
	assert.False(t, tr.RegisterNPC("", nil))
}

// Values must stay in [0,100] under any sequence of updates and satisfies.
func TestClampInvariant(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", map[needs.NeedType]float64{needs.NeedFood: 30}))

	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		flags := npc.StateFlags{
			IsWorking:         rng.IntN(2) == 0,
			IsResting:         rng.IntN(2) == 0,
			IsSocializing:     rng.IntN(2) == 0,
			IsInsideTerritory: rng.IntN(2) == 0,
		}
		tr.UpdateAllNeeds(float64(rng.IntN(60000)), map[npc.AgentID]npc.StateFlags{"a1": flags})
		tr.SatisfyNeed("a1", needs.NeedType(rng.IntN(4)), float64(rng.IntN(300))-100)

		s := tr.GetNeedsSummary("a1")
		require.NotNil(t, s)
		for nt, v := range s.Values {
			assert.GreaterOrEqual(t, v, 0.0, "need %s below 0", nt)
			assert.LessOrEqual(t, v, 100.0, "need %s above 100", nt)
		}
	}
}

func TestShelterDecaysOnlyOutsideTerritory(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", nil))

	inside := map[npc.AgentID]npc.StateFlags{"a1": {IsInsideTerritory: true}}
	tr.UpdateAllNeeds(10000, inside)
	v, ok := tr.NeedValue("a1", needs.NeedShelter)
	require.True(t, ok)
	assert.Equal(t, 100.0, v, "shelter holds while inside")

	outside := map[npc.AgentID]npc.StateFlags{"a1": {}}
	tr.UpdateAllNeeds(10000, outside)
	v, _ = tr.NeedValue("a1", needs.NeedShelter)
	assert.Less(t, v, 100.0, "shelter decays while outside")
}

func TestRestRecoversWhileResting(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", map[needs.NeedType]float64{needs.NeedRest: 40}))

	tr.UpdateAllNeeds(5000, map[npc.AgentID]npc.StateFlags{"a1": {IsResting: true}})
	v, _ := tr.NeedValue("a1", needs.NeedRest)
	assert.Equal(t, 50.0, v, "+2/s for 5s")
}

func TestWorkingAcceleratesDecay(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("idle", nil))
	require.True(t, tr.RegisterNPC("busy", nil))

	tr.UpdateAllNeeds(60000, map[npc.AgentID]npc.StateFlags{
		"idle": {IsInsideTerritory: true},
		"busy": {IsWorking: true, IsInsideTerritory: true},
	})

	idleFood, _ := tr.NeedValue("idle", needs.NeedFood)
	busyFood, _ := tr.NeedValue("busy", needs.NeedFood)
	assert.Less(t, busyFood, idleFood, "working burns food faster")

	idleRest, _ := tr.NeedValue("idle", needs.NeedRest)
	busyRest, _ := tr.NeedValue("busy", needs.NeedRest)
	assert.Less(t, busyRest, idleRest, "working drains rest faster")
}

func TestSatisfyNeed(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", map[needs.NeedType]float64{needs.NeedFood: 50}))

	assert.True(t, tr.SatisfyNeed("a1", needs.NeedFood, 30))
	v, _ := tr.NeedValue("a1", needs.NeedFood)
	assert.Equal(t, 80.0, v)

	assert.True(t, tr.SatisfyNeed("a1", needs.NeedFood, 999), "overshoot clamps")
	v, _ = tr.NeedValue("a1", needs.NeedFood)
	assert.Equal(t, 100.0, v)

	assert.False(t, tr.SatisfyNeed("ghost", needs.NeedFood, 10))
	assert.False(t, tr.SatisfyNeed("a1", needs.NeedType(9), 10))
}

func TestCriticalAlerts(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", map[needs.NeedType]float64{needs.NeedFood: 5}))
	require.True(t, tr.RegisterNPC("a2", nil))

	assert.True(t, tr.HasCriticalNeeds("a1"))
	assert.Equal(t, []needs.NeedType{needs.NeedFood}, tr.GetCriticalNeeds("a1"))
	assert.False(t, tr.HasCriticalNeeds("a2"))
	assert.Nil(t, tr.GetCriticalNeeds("a2"))

	crit := tr.GetAllCriticalNPCs()
	require.Len(t, crit, 1)
	assert.Equal(t, npc.AgentID("a1"), crit[0])

	// Feeding the agent clears the alert.
	tr.SatisfyNeed("a1", needs.NeedFood, 95)
	assert.False(t, tr.HasCriticalNeeds("a1"))
	assert.Empty(t, tr.GetAllCriticalNPCs())
}

func TestLowestNeed(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", map[needs.NeedType]float64{
		needs.NeedFood:    80,
		needs.NeedRest:    20,
		needs.NeedSocial:  60,
		needs.NeedShelter: 90,
	}))

	lowest, ok := tr.GetLowestNeed("a1")
	require.True(t, ok)
	assert.Equal(t, needs.NeedRest, lowest.Type)
	assert.Equal(t, 20.0, lowest.Value)

	_, ok = tr.GetLowestNeed("ghost")
	assert.False(t, ok)
}

func TestHappinessImpact(t *testing.T) {
	tr := needs.NewTracker()

	// Everything full: +1 per need above 80, +5 all-satisfied bonus.
	require.True(t, tr.RegisterNPC("content", map[needs.NeedType]float64{
		needs.NeedFood: 100, needs.NeedRest: 100, needs.NeedSocial: 100, needs.NeedShelter: 100,
	}))
	assert.Equal(t, 9.0, tr.CalculateHappinessImpact("content"))

	// Defaults: social at 50 blocks the bonus.
	require.True(t, tr.RegisterNPC("fresh", nil))
	assert.Equal(t, 3.0, tr.CalculateHappinessImpact("fresh"))

	// Starving: -4 for the critical need.
	require.True(t, tr.RegisterNPC("starving", map[needs.NeedType]float64{
		needs.NeedFood: 5, needs.NeedRest: 100, needs.NeedSocial: 100, needs.NeedShelter: 100,
	}))
	assert.Equal(t, -1.0, tr.CalculateHappinessImpact("starving"))

	assert.Equal(t, 0.0, tr.CalculateHappinessImpact("ghost"))
}

// Reset followed by summary reflects exactly the supplied values after clamping.
func TestResetRoundTrip(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", nil))
	tr.UpdateAllNeeds(30000, nil)

	require.True(t, tr.ResetNPCNeeds("a1", map[needs.NeedType]float64{
		needs.NeedFood:    33,
		needs.NeedRest:    120, // clamps to 100
		needs.NeedSocial:  -5,  // clamps to 0
		needs.NeedShelter: 75,
	}))

	s := tr.GetNeedsSummary("a1")
	require.NotNil(t, s)
	assert.Equal(t, 33.0, s.Values[needs.NeedFood])
	assert.Equal(t, 100.0, s.Values[needs.NeedRest])
	assert.Equal(t, 0.0, s.Values[needs.NeedSocial])
	assert.Equal(t, 75.0, s.Values[needs.NeedShelter])

	assert.False(t, tr.ResetNPCNeeds("ghost", nil))
}

func TestStatisticsAndClearAll(t *testing.T) {
	tr := needs.NewTracker()
	require.True(t, tr.RegisterNPC("a1", map[needs.NeedType]float64{needs.NeedFood: 10}))
	require.True(t, tr.RegisterNPC("a2", map[needs.NeedType]float64{needs.NeedFood: 90}))

	stats := tr.GetStatistics()
	assert.Equal(t, 2, stats.Registered)
	assert.Equal(t, 1, stats.CriticalAgents)
	assert.Equal(t, 50.0, stats.Averages[needs.NeedFood])

	tr.ClearAll()
	stats = tr.GetStatistics()
	assert.Equal(t, 0, stats.Registered)
	assert.Nil(t, tr.GetNeedsSummary("a1"))
}
