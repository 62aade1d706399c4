// Package npc declares the records exchanged with the host simulation:
// agents, buildings, and the spatial queries the behavior engine consumes.
// The engine never owns these records — it reads them and flips the work
// flags through the directory handles the host provides.
package npc

// AgentID uniquely identifies an agent within one simulation.
type AgentID string

// BuildingID uniquely identifies a building within one simulation.
type BuildingID string

// Position is a location in world cells.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Agent is the host-owned record for one villager. Optional gameplay
// fields (Fatigue, SocialNeed, RestNeed) default to zero and are clamped
// at the boundary by Normalize.
type Agent struct {
	ID       AgentID  `json:"id"`
	Name     string   `json:"name,omitempty"`
	Position Position `json:"position"`

	Health float64 `json:"health"` // 0–100
	Alive  bool    `json:"alive"`

	IsWorking        bool       `json:"is_working"`
	AssignedBuilding BuildingID `json:"assigned_building,omitempty"` // empty = unassigned

	// Mirrors maintained by the host for quick heuristic checks.
	Fatigue    float64 `json:"fatigue,omitempty"`     // 0–100
	SocialNeed float64 `json:"social_need,omitempty"` // 0–100
	RestNeed   float64 `json:"rest_need,omitempty"`   // 0–100
}

// Normalize clamps boundary-supplied values into their legal ranges.
// Called once when a record enters the engine, so downstream code can
// assume well-formed numbers.
func (a *Agent) Normalize() {
	a.Health = clamp100(a.Health)
	a.Fatigue = clamp100(a.Fatigue)
	a.SocialNeed = clamp100(a.SocialNeed)
	a.RestNeed = clamp100(a.RestNeed)
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// StateFlags describes what an agent is doing this tick. The host derives
// these and hands them to the needs tracker; they drive per-need decay
// and recovery.
type StateFlags struct {
	IsWorking         bool
	IsResting         bool
	IsSocializing     bool
	IsInsideTerritory bool
}

// BuildingType enumerates the workplace kinds the assignment system
// distinguishes. Anything else is BuildingOther — the engine does not
// carry the full building catalog.
type BuildingType uint8

const (
	BuildingFarm            BuildingType = iota
	BuildingMine
	BuildingLumberMill
	BuildingCraftingStation
	BuildingMarketplace
	BuildingHouse
	BuildingOther
)

// String returns the canonical name of a building type.
func (t BuildingType) String() string {
	switch t {
	case BuildingFarm:
		return "FARM"
	case BuildingMine:
		return "MINE"
	case BuildingLumberMill:
		return "LUMBER_MILL"
	case BuildingCraftingStation:
		return "CRAFTING_STATION"
	case BuildingMarketplace:
		return "MARKETPLACE"
	case BuildingHouse:
		return "HOUSE"
	default:
		return "OTHER"
	}
}

// BuildingState tracks construction progress. Only complete buildings
// accept workers.
type BuildingState uint8

const (
	StatePlanned           BuildingState = iota
	StateUnderConstruction
	StateComplete
)

// String returns the canonical name of a building state.
func (s BuildingState) String() string {
	switch s {
	case StatePlanned:
		return "PLANNED"
	case StateUnderConstruction:
		return "UNDER_CONSTRUCTION"
	case StateComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// BuildingProperties holds the per-building numbers the engine reads.
type BuildingProperties struct {
	NPCCapacity int `json:"npc_capacity"`
}

// Building is the host-owned record for one structure.
type Building struct {
	ID         BuildingID         `json:"id"`
	Type       BuildingType       `json:"type"`
	State      BuildingState      `json:"state"`
	Position   Position           `json:"position"`
	Properties BuildingProperties `json:"properties"`
}

// AgentDirectory resolves agent ids to live records. Returned pointers
// are the host's records; the engine mutates only the work flags.
type AgentDirectory interface {
	Agent(id AgentID) *Agent
}

// BuildingDirectory resolves building ids and enumerates buildings for
// bulk assignment.
type BuildingDirectory interface {
	Building(id BuildingID) *Building
	Buildings() []*Building
}

// SpatialIndex answers the two proximity questions idle-task target
// selection needs. Either query may return nil — no suitable target is a
// legitimate answer and task payloads tolerate it.
type SpatialIndex interface {
	NearestSociableAgent(from *Agent) *Agent
	NearestBuilding(pos Position, radius float64) *Building
}
