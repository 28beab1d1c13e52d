// Package world generates the block grid for a session and owns the
// world.generate command
package world

import "github.com/kode4food/bedrock/terrain"

type (
	// Plan is a grid of terrain IDs indexed as plan[y][x]
	Plan [][]terrain.ID

	// PlanProvider produces the plan for a new world
	PlanProvider func() (Plan, error)

	deposit struct{ x, y int }
)

const (
	Width  = 10
	Height = 10

	AirLayers  = 4
	DirtLayers = 4
	GrassLayer = AirLayers

	// PlayerSurfaceRow is the row players stand on, just above the grass
	PlayerSurfaceRow = AirLayers - 1
)

// goldDeposits are placed at fixed fractions of the world size
var goldDeposits = []deposit{
	{x: Width * 25 / 100, y: Height * 60 / 100},
	{x: Width * 45 / 100, y: Height * 70 / 100},
	{x: Width * 60 / 100, y: Height * 75 / 100},
	{x: Width * 80 / 100, y: Height * 85 / 100},
}

var planTerrain = []terrain.ID{
	terrain.Air, terrain.Grass, terrain.Dirt, terrain.Stone, terrain.Gold,
}

// DefaultPlan layers air, a grass surface, dirt, and stone, then seeds the
// gold deposits. Every base terrain must be registered
func DefaultPlan(reg *terrain.Registry) (Plan, error) {
	for _, id := range planTerrain {
		if _, err := reg.Require(id); err != nil {
			return nil, err
		}
	}

	stoneStart := GrassLayer + 1 + DirtLayers
	plan := make(Plan, Height)
	for y := range Height {
		row := make([]terrain.ID, Width)
		for x := range Width {
			switch {
			case y < AirLayers:
				row[x] = terrain.Air
			case y == GrassLayer:
				row[x] = terrain.Grass
			case y < stoneStart:
				row[x] = terrain.Dirt
			default:
				row[x] = terrain.Stone
			}
		}
		plan[y] = row
	}

	for _, d := range goldDeposits {
		if d.y < len(plan) && d.x < len(plan[d.y]) {
			plan[d.y][d.x] = terrain.Gold
		}
	}
	return plan, nil
}

// DefaultPlanProvider binds DefaultPlan to a registry
func DefaultPlanProvider(reg *terrain.Registry) PlanProvider {
	return func() (Plan, error) {
		return DefaultPlan(reg)
	}
}
