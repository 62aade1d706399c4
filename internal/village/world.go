// Package village supplies the demo host world: a deterministic scatter
// of buildings and villagers on a flat grid, plus the spatial queries
// the behavior engine consumes. Real hosts replace this with their own
// world and pathfinding.
package village

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/selwood/villagefolk/internal/entropy"
	"github.com/selwood/villagefolk/internal/npc"
)

// GenConfig holds demo world generation parameters.
type GenConfig struct {
	Seed            int64
	Width, Height   int     // grid size in cells
	BuildingCount   int
	AgentCount      int
	TerritoryRadius float64 // cells from any building that count as "inside"
}

// DefaultGenConfig returns a small village suitable for demo runs.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:            42,
		Width:           64,
		Height:          64,
		BuildingCount:   8,
		AgentCount:      24,
		TerritoryRadius: 12,
	}
}

// World is the host-owned collection of agents and buildings. It
// implements the directory and spatial interfaces the engine consumes.
type World struct {
	agents    []*npc.Agent
	buildings []*npc.Building

	agentIndex    map[npc.AgentID]*npc.Agent
	buildingIndex map[npc.BuildingID]*npc.Building

	territoryRadius float64
}

// workplaceTypes cycles through the staffable building kinds during
// generation, with capacities roughly matching each kind's crew size.
var workplaceTypes = []struct {
	kind     npc.BuildingType
	capacity int
}{
	{npc.BuildingFarm, 4},
	{npc.BuildingMine, 3},
	{npc.BuildingLumberMill, 3},
	{npc.BuildingCraftingStation, 2},
	{npc.BuildingMarketplace, 2},
}

// Generate creates a deterministic demo world from the config seed.
// Building sites are the local maxima of a simplex "desirability" field,
// so placement looks organic rather than gridded.
func Generate(cfg GenConfig, rng entropy.Source) *World {
	noise := opensimplex.NewNormalized(cfg.Seed)

	w := &World{
		agentIndex:      make(map[npc.AgentID]*npc.Agent),
		buildingIndex:   make(map[npc.BuildingID]*npc.Building),
		territoryRadius: cfg.TerritoryRadius,
	}

	// Score every candidate cell, then take the best-scoring cells that
	// keep a minimum spacing from already-placed buildings.
	const freq = 0.08
	const minSpacing = 6.0
	type site struct {
		pos   npc.Position
		score float64
	}
	var best []site
	for y := 2; y < cfg.Height-2; y += 2 {
		for x := 2; x < cfg.Width-2; x += 2 {
			best = append(best, site{
				pos:   npc.Position{X: float64(x), Y: float64(y)},
				score: noise.Eval2(float64(x)*freq, float64(y)*freq),
			})
		}
	}
	// Selection sort over the handful of buildings we need — the
	// candidate list is small.
	for i := 0; i < cfg.BuildingCount && len(best) > 0; i++ {
		top := 0
		for j := range best {
			if best[j].score > best[top].score {
				top = j
			}
		}
		pos := best[top].pos
		best = append(best[:top], best[top+1:]...)

		tooClose := false
		for _, b := range w.buildings {
			if dist(b.Position, pos) < minSpacing {
				tooClose = true
				break
			}
		}
		if tooClose {
			i--
			continue
		}

		wt := workplaceTypes[len(w.buildings)%len(workplaceTypes)]
		b := &npc.Building{
			ID:       npc.BuildingID(fmt.Sprintf("b%d", len(w.buildings)+1)),
			Type:     wt.kind,
			State:    npc.StateComplete,
			Position: pos,
			Properties: npc.BuildingProperties{
				NPCCapacity: wt.capacity,
			},
		}
		w.buildings = append(w.buildings, b)
		w.buildingIndex[b.ID] = b
	}

	// Villagers spawn jittered around the buildings.
	for i := 0; i < cfg.AgentCount; i++ {
		anchor := npc.Position{X: float64(cfg.Width) / 2, Y: float64(cfg.Height) / 2}
		if len(w.buildings) > 0 {
			anchor = w.buildings[i%len(w.buildings)].Position
		}
		a := &npc.Agent{
			ID:   npc.AgentID(fmt.Sprintf("n%d", i+1)),
			Name: fmt.Sprintf("Villager %d", i+1),
			Position: npc.Position{
				X: anchor.X + (rng.Float64()-0.5)*8,
				Y: anchor.Y + (rng.Float64()-0.5)*8,
			},
			Health:     100,
			Alive:      true,
			SocialNeed: 50,
			RestNeed:   100,
		}
		a.Normalize()
		w.agents = append(w.agents, a)
		w.agentIndex[a.ID] = a
	}

	return w
}

// Agent implements npc.AgentDirectory.
func (w *World) Agent(id npc.AgentID) *npc.Agent {
	return w.agentIndex[id]
}

// Agents returns all villagers.
func (w *World) Agents() []*npc.Agent {
	return w.agents
}

// Building implements npc.BuildingDirectory.
func (w *World) Building(id npc.BuildingID) *npc.Building {
	return w.buildingIndex[id]
}

// Buildings implements npc.BuildingDirectory.
func (w *World) Buildings() []*npc.Building {
	return w.buildings
}

// NearestSociableAgent implements npc.SpatialIndex: the closest other
// living agent that is not at work.
func (w *World) NearestSociableAgent(from *npc.Agent) *npc.Agent {
	var nearest *npc.Agent
	bestDist := math.MaxFloat64
	for _, a := range w.agents {
		if a.ID == from.ID || !a.Alive || a.IsWorking {
			continue
		}
		if d := dist(a.Position, from.Position); d < bestDist {
			bestDist = d
			nearest = a
		}
	}
	return nearest
}

// NearestBuilding implements npc.SpatialIndex: the closest building
// within radius, or nil when none is near enough.
func (w *World) NearestBuilding(pos npc.Position, radius float64) *npc.Building {
	var nearest *npc.Building
	bestDist := radius
	for _, b := range w.buildings {
		if d := dist(b.Position, pos); d <= bestDist {
			bestDist = d
			nearest = b
		}
	}
	return nearest
}

// InsideTerritory reports whether a position lies within the village
// territory (near any building).
func (w *World) InsideTerritory(pos npc.Position) bool {
	for _, b := range w.buildings {
		if dist(b.Position, pos) <= w.territoryRadius {
			return true
		}
	}
	return false
}

func dist(a, b npc.Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
