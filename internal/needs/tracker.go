package needs

import "github.com/selwood/villagefolk/internal/npc"

// needSet is the fixed per-agent collection, one Need per axis.
// A fixed-size array keeps the set inline and allocation-free.
type needSet [NumNeedTypes]Need

// Tracker owns every registered agent's needs. It is the single writer:
// hosts read summaries and call SatisfyNeed, never mutate values directly.
type Tracker struct {
	sets     map[npc.AgentID]*needSet
	critical map[npc.AgentID][]NeedType // refreshed by UpdateAllNeeds
}

// NewTracker creates an empty needs tracker.
func NewTracker() *Tracker {
	return &Tracker{
		sets:     make(map[npc.AgentID]*needSet),
		critical: make(map[npc.AgentID][]NeedType),
	}
}

// RegisterNPC creates the four-need set for an agent. Overrides replace
// the defaults for the named types and are clamped, never rejected.
// Returns false without touching anything if the agent is already known.
func (tr *Tracker) RegisterNPC(id npc.AgentID, overrides map[NeedType]float64) bool {
	if id == "" {
		return false
	}
	if _, ok := tr.sets[id]; ok {
		return false
	}
	set := &needSet{}
	for t := NeedType(0); t < NumNeedTypes; t++ {
		set[t] = Need{Type: t}
		set[t].Apply(defaultValues[t])
	}
	for t, v := range overrides {
		if int(t) >= NumNeedTypes {
			continue
		}
		set[t].Value = 0
		set[t].Apply(v)
	}
	tr.sets[id] = set
	tr.refreshCritical(id, set)
	return true
}

// UnregisterNPC removes an agent's needs and any critical-alert record.
// Returns false if the agent was not registered.
func (tr *Tracker) UnregisterNPC(id npc.AgentID) bool {
	if _, ok := tr.sets[id]; !ok {
		return false
	}
	delete(tr.sets, id)
	delete(tr.critical, id)
	return true
}

// IsRegistered reports whether the agent has a needs set.
func (tr *Tracker) IsRegistered(id npc.AgentID) bool {
	_, ok := tr.sets[id]
	return ok
}

// UpdateAllNeeds advances every registered agent's needs by deltaMS of
// simulation time, driven by that agent's state flags (zero flags when
// absent), then recomputes the critical-alert set. Must run before
// decisions are taken in the same tick.
func (tr *Tracker) UpdateAllNeeds(deltaMS float64, states map[npc.AgentID]npc.StateFlags) {
	if deltaMS <= 0 {
		return
	}
	seconds := deltaMS / 1000.0
	for id, set := range tr.sets {
		flags := states[id]
		for t := NeedType(0); t < NumNeedTypes; t++ {
			set[t].Apply(ratePerSecond(t, flags) * seconds)
		}
		tr.refreshCritical(id, set)
	}
}

func (tr *Tracker) refreshCritical(id npc.AgentID, set *needSet) {
	var crit []NeedType
	for t := NeedType(0); t < NumNeedTypes; t++ {
		if set[t].IsCritical() {
			crit = append(crit, t)
		}
	}
	if crit == nil {
		delete(tr.critical, id)
		return
	}
	tr.critical[id] = crit
}

// SatisfyNeed adds amount to the named need, clamped at 100. Returns
// false for an unknown agent or need type.
func (tr *Tracker) SatisfyNeed(id npc.AgentID, t NeedType, amount float64) bool {
	set, ok := tr.sets[id]
	if !ok || int(t) >= NumNeedTypes {
		return false
	}
	set[t].Apply(amount)
	tr.refreshCritical(id, set)
	return true
}

// NeedValue returns one need's current value. ok is false for unknown
// agents or types.
func (tr *Tracker) NeedValue(id npc.AgentID, t NeedType) (value float64, ok bool) {
	set, found := tr.sets[id]
	if !found || int(t) >= NumNeedTypes {
		return 0, false
	}
	return set[t].Value, true
}

// GetLowestNeed returns the agent's most deprived need. ok is false for
// unknown agents.
func (tr *Tracker) GetLowestNeed(id npc.AgentID) (Need, bool) {
	set, found := tr.sets[id]
	if !found {
		return Need{}, false
	}
	lowest := set[0]
	for t := NeedType(1); t < NumNeedTypes; t++ {
		if set[t].Value < lowest.Value {
			lowest = set[t]
		}
	}
	return lowest, true
}

// GetCriticalNeeds returns the agent's needs currently below the
// critical floor, in axis order. Nil for unknown or fully-safe agents.
func (tr *Tracker) GetCriticalNeeds(id npc.AgentID) []NeedType {
	crit := tr.critical[id]
	if crit == nil {
		return nil
	}
	out := make([]NeedType, len(crit))
	copy(out, crit)
	return out
}

// HasCriticalNeeds reports whether any need is below the critical floor.
func (tr *Tracker) HasCriticalNeeds(id npc.AgentID) bool {
	return len(tr.critical[id]) > 0
}

// GetAllCriticalNPCs returns the ids of every agent with at least one
// critical need.
func (tr *Tracker) GetAllCriticalNPCs() []npc.AgentID {
	out := make([]npc.AgentID, 0, len(tr.critical))
	for id := range tr.critical {
		out = append(out, id)
	}
	return out
}

// Summary is a read-only snapshot of one agent's needs.
type Summary struct {
	Values          map[NeedType]float64 `json:"values"`
	Lowest          Need                 `json:"lowest"`
	HappinessImpact float64              `json:"happiness_impact"`
	AllSatisfied    bool                 `json:"all_satisfied"`
}

// GetNeedsSummary returns a snapshot of the agent's needs, or nil for an
// unknown agent.
func (tr *Tracker) GetNeedsSummary(id npc.AgentID) *Summary {
	set, ok := tr.sets[id]
	if !ok {
		return nil
	}
	s := &Summary{
		Values:       make(map[NeedType]float64, NumNeedTypes),
		Lowest:       set[0],
		AllSatisfied: true,
	}
	for t := NeedType(0); t < NumNeedTypes; t++ {
		s.Values[t] = set[t].Value
		if set[t].Value < s.Lowest.Value {
			s.Lowest = set[t]
		}
		if !set[t].IsSatisfied() {
			s.AllSatisfied = false
		}
	}
	s.HappinessImpact = tr.CalculateHappinessImpact(id)
	return s
}

// CalculateHappinessImpact sums each need's hourly happiness delta, with
// a +5 bonus when all four needs are above the satisfied threshold.
// Returns 0 for unknown agents.
func (tr *Tracker) CalculateHappinessImpact(id npc.AgentID) float64 {
	set, ok := tr.sets[id]
	if !ok {
		return 0
	}
	total := 0.0
	allSatisfied := true
	for t := NeedType(0); t < NumNeedTypes; t++ {
		total += set[t].HappinessDelta()
		if !set[t].IsSatisfied() {
			allSatisfied = false
		}
	}
	if allSatisfied {
		total += 5
	}
	return total
}

// Statistics aggregates the tracker's population for reporting.
type Statistics struct {
	Registered     int                  `json:"registered"`
	CriticalAgents int                  `json:"critical_agents"`
	Averages       map[NeedType]float64 `json:"averages"`
}

// GetStatistics returns population-wide aggregates.
func (tr *Tracker) GetStatistics() Statistics {
	stats := Statistics{
		Registered:     len(tr.sets),
		CriticalAgents: len(tr.critical),
		Averages:       make(map[NeedType]float64, NumNeedTypes),
	}
	if len(tr.sets) == 0 {
		return stats
	}
	var totals [NumNeedTypes]float64
	for _, set := range tr.sets {
		for t := NeedType(0); t < NumNeedTypes; t++ {
			totals[t] += set[t].Value
		}
	}
	for t := NeedType(0); t < NumNeedTypes; t++ {
		stats.Averages[t] = totals[t] / float64(len(tr.sets))
	}
	return stats
}

// ResetNPCNeeds overwrites an agent's needs with the supplied values
// (clamped; unnamed types reset to their defaults). Returns false for
// unknown agents.
func (tr *Tracker) ResetNPCNeeds(id npc.AgentID, values map[NeedType]float64) bool {
	set, ok := tr.sets[id]
	if !ok {
		return false
	}
	for t := NeedType(0); t < NumNeedTypes; t++ {
		v, supplied := values[t]
		if !supplied {
			v = defaultValues[t]
		}
		set[t].Value = 0
		set[t].Apply(v)
	}
	tr.refreshCritical(id, set)
	return true
}

// ClearAll drops every registration. Used on world reset.
func (tr *Tracker) ClearAll() {
	tr.sets = make(map[npc.AgentID]*needSet)
	tr.critical = make(map[npc.AgentID][]NeedType)
}
