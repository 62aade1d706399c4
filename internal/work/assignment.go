// Package work maps agents to workplaces under per-building capacity
// limits. Assignment is exclusive and validate-then-mutate: a rejected
// call leaves no partial state behind.
package work

import (
	"sort"

	"github.com/selwood/villagefolk/internal/npc"
)

// ErrorCode is the closed set of assignment failure reasons. Failures
// are returned, never panicked — the caller decides remediation.
type ErrorCode string

const (
	ErrNPCNotFound         ErrorCode = "NPC_NOT_FOUND"
	ErrBuildingNotFound    ErrorCode = "BUILDING_NOT_FOUND"
	ErrBuildingNotComplete ErrorCode = "BUILDING_NOT_COMPLETE"
	ErrNoCapacity          ErrorCode = "NO_CAPACITY"
	ErrAtCapacity          ErrorCode = "AT_CAPACITY"
)

// Result reports one assignment attempt.
type Result struct {
	Success bool      `json:"success"`
	Error   ErrorCode `json:"error,omitempty"`
}

func failure(code ErrorCode) Result { return Result{Error: code} }

// typePriority orders buildings for bulk assignment: food first, then
// raw materials, then processing, then trade.
func typePriority(t npc.BuildingType) int {
	switch t {
	case npc.BuildingFarm:
		return 0
	case npc.BuildingMine:
		return 1
	case npc.BuildingLumberMill:
		return 2
	case npc.BuildingCraftingStation:
		return 3
	case npc.BuildingMarketplace:
		return 4
	default:
		return 5
	}
}

// Assignment owns the building→workers mapping plus the idle/working
// pools. Agent and building records stay host-owned; only the work
// flags on agent records are mutated here.
type Assignment struct {
	agents    npc.AgentDirectory
	buildings npc.BuildingDirectory

	workers  map[npc.BuildingID]map[npc.AgentID]struct{}
	assigned map[npc.AgentID]npc.BuildingID
	idle     []npc.AgentID // FIFO queue for AutoAssign
	enrolled map[npc.AgentID]struct{}
}

// NewAssignment creates an assignment system over the host's
// directories. Both are required; nil directories are a programming
// error and panic.
func NewAssignment(agents npc.AgentDirectory, buildings npc.BuildingDirectory) *Assignment {
	if agents == nil || buildings == nil {
		panic("work: NewAssignment requires agent and building directories")
	}
	return &Assignment{
		agents:    agents,
		buildings: buildings,
		workers:   make(map[npc.BuildingID]map[npc.AgentID]struct{}),
		assigned:  make(map[npc.AgentID]npc.BuildingID),
		enrolled:  make(map[npc.AgentID]struct{}),
	}
}

// EnrollNPC adds an agent to the idle pool so AutoAssign can place it.
// Returns false if already enrolled or unknown to the directory.
func (as *Assignment) EnrollNPC(id npc.AgentID) bool {
	if _, ok := as.enrolled[id]; ok {
		return false
	}
	if as.agents.Agent(id) == nil {
		return false
	}
	as.enrolled[id] = struct{}{}
	as.idle = append(as.idle, id)
	return true
}

// RemoveNPC unassigns and forgets an agent leaving the simulation.
func (as *Assignment) RemoveNPC(id npc.AgentID) {
	as.UnassignNPC(id)
	delete(as.enrolled, id)
	as.dropFromIdle(id)
}

// AssignNPCToBuilding places an agent at a workplace. Validation order:
// agent exists → building exists → building complete → capacity > 0 →
// below capacity. An agent already working elsewhere is unassigned
// first; that only happens after every check passes.
func (as *Assignment) AssignNPCToBuilding(agentID npc.AgentID, buildingID npc.BuildingID) Result {
	agent := as.agents.Agent(agentID)
	if agent == nil {
		return failure(ErrNPCNotFound)
	}
	building := as.buildings.Building(buildingID)
	if building == nil {
		return failure(ErrBuildingNotFound)
	}
	if building.State != npc.StateComplete {
		return failure(ErrBuildingNotComplete)
	}
	capacity := building.Properties.NPCCapacity
	if capacity <= 0 {
		return failure(ErrNoCapacity)
	}
	if prior, ok := as.assigned[agentID]; ok && prior == buildingID {
		return Result{Success: true} // already working here
	}
	if len(as.workers[buildingID]) >= capacity {
		return failure(ErrAtCapacity)
	}

	// All checks passed — mutate.
	if prior, ok := as.assigned[agentID]; ok && prior != buildingID {
		as.detach(agentID, prior, agent)
	}
	if as.workers[buildingID] == nil {
		as.workers[buildingID] = make(map[npc.AgentID]struct{})
	}
	as.workers[buildingID][agentID] = struct{}{}
	as.assigned[agentID] = buildingID
	as.dropFromIdle(agentID)

	agent.IsWorking = true
	agent.AssignedBuilding = buildingID
	return Result{Success: true}
}

// UnassignNPC clears an agent's assignment and returns it to the idle
// pool. Returns false when the agent was not assigned.
func (as *Assignment) UnassignNPC(agentID npc.AgentID) bool {
	buildingID, ok := as.assigned[agentID]
	if !ok {
		return false
	}
	as.detach(agentID, buildingID, as.agents.Agent(agentID))
	return true
}

// detach removes the agent from a building's worker set and re-idles it.
func (as *Assignment) detach(agentID npc.AgentID, buildingID npc.BuildingID, agent *npc.Agent) {
	if set, ok := as.workers[buildingID]; ok {
		delete(set, agentID)
		if len(set) == 0 {
			delete(as.workers, buildingID)
		}
	}
	delete(as.assigned, agentID)
	if _, enrolled := as.enrolled[agentID]; enrolled {
		as.idle = append(as.idle, agentID)
	}
	if agent != nil {
		agent.IsWorking = false
		agent.AssignedBuilding = ""
	}
}

// AutoAssign greedily staffs buildings in fixed type-priority order
// (farms first), pulling agents FIFO from the idle queue. Returns the
// number of agents placed.
func (as *Assignment) AutoAssign() int {
	buildings := as.buildings.Buildings()
	sorted := make([]*npc.Building, len(buildings))
	copy(sorted, buildings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return typePriority(sorted[i].Type) < typePriority(sorted[j].Type)
	})

	placed := 0
	for _, b := range sorted {
		if b.State != npc.StateComplete || b.Properties.NPCCapacity <= 0 {
			continue
		}
		for len(as.workers[b.ID]) < b.Properties.NPCCapacity {
			agentID, ok := as.nextIdle()
			if !ok {
				return placed
			}
			if as.AssignNPCToBuilding(agentID, b.ID).Success {
				placed++
			}
		}
	}
	return placed
}

// nextIdle pops the oldest idle agent still eligible for work.
func (as *Assignment) nextIdle() (npc.AgentID, bool) {
	for len(as.idle) > 0 {
		id := as.idle[0]
		as.idle = as.idle[1:]
		if _, enrolled := as.enrolled[id]; !enrolled {
			continue
		}
		if _, busy := as.assigned[id]; busy {
			continue
		}
		return id, true
	}
	return "", false
}

func (as *Assignment) dropFromIdle(id npc.AgentID) {
	for i, queued := range as.idle {
		if queued == id {
			as.idle = append(as.idle[:i], as.idle[i+1:]...)
			return
		}
	}
}

// WorkersForBuilding returns the agents currently staffing a building.
func (as *Assignment) WorkersForBuilding(buildingID npc.BuildingID) []npc.AgentID {
	set := as.workers[buildingID]
	out := make([]npc.AgentID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildingInfo summarizes one building's staffing.
type BuildingInfo struct {
	BuildingID npc.BuildingID `json:"building_id"`
	Capacity   int            `json:"capacity"`
	Current    int            `json:"current"`
	Workers    []npc.AgentID  `json:"workers"`
}

// BuildingAssignmentInfo returns capacity and staffing for a building,
// or nil when the building is unknown.
func (as *Assignment) BuildingAssignmentInfo(buildingID npc.BuildingID) *BuildingInfo {
	building := as.buildings.Building(buildingID)
	if building == nil {
		return nil
	}
	return &BuildingInfo{
		BuildingID: buildingID,
		Capacity:   building.Properties.NPCCapacity,
		Current:    len(as.workers[buildingID]),
		Workers:    as.WorkersForBuilding(buildingID),
	}
}

// AssignedBuilding returns where an agent works, if anywhere.
func (as *Assignment) AssignedBuilding(agentID npc.AgentID) (npc.BuildingID, bool) {
	b, ok := as.assigned[agentID]
	return b, ok
}

// Statistics aggregates assignment state for reporting.
type Statistics struct {
	AssignedWorkers  int `json:"assigned_workers"`
	BuildingsStaffed int `json:"buildings_staffed"`
	IdleAgents       int `json:"idle_agents"`
}

// GetStatistics returns filled slots, staffed buildings, and idle count.
func (as *Assignment) GetStatistics() Statistics {
	idle := 0
	for _, id := range as.idle {
		if _, enrolled := as.enrolled[id]; !enrolled {
			continue
		}
		if _, busy := as.assigned[id]; busy {
			continue
		}
		idle++
	}
	return Statistics{
		AssignedWorkers:  len(as.assigned),
		BuildingsStaffed: len(as.workers),
		IdleAgents:       idle,
	}
}

// ClearBuildingAssignments bulk-unassigns a building's workers and
// returns them to the idle pool. Used when a building is destroyed.
// Returns the number of workers released.
func (as *Assignment) ClearBuildingAssignments(buildingID npc.BuildingID) int {
	set := as.workers[buildingID]
	released := 0
	for agentID := range set {
		as.detach(agentID, buildingID, as.agents.Agent(agentID))
		released++
	}
	return released
}
