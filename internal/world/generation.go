// Settlement map generation.
// Each cell of an N×N grid draws its terrain independently from a weighted
// table, then open ground may spawn one finite resource node.
package world

import (
	"slices"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/entropy"
)

// TerrainWeight is one entry of the terrain probability table.
type TerrainWeight struct {
	Terrain Terrain `yaml:"terrain"`
	Weight  float64 `yaml:"weight"`
}

// NodeArchetype describes a kind of resource node that may spawn on a tile.
type NodeArchetype struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Resource    Resource `yaml:"resource"`
	Probability float64  `yaml:"probability"` // Independent spawn chance per eligible tile
	Quantity    int      `yaml:"quantity"`
	MaxQuantity int      `yaml:"max_quantity"`
	RegenRate   int      `yaml:"regen_rate"`
	Lore        string   `yaml:"lore"`
}

// GenConfig holds map generation parameters.
type GenConfig struct {
	GridSize   int
	Terrain    []TerrainWeight
	SpawnOn    []Terrain       // Terrain eligible for node spawning
	Archetypes []NodeArchetype // Tried in order; first success wins
}

// Plot is a generated tile and the node spawned on it, if any.
type Plot struct {
	Tile *MapTile
	Node *ResourceNode
}

// Generate produces GridSize×GridSize plots in row-major order (x outer, y inner).
func Generate(cfg GenConfig, src entropy.Source) []Plot {
	plots := make([]Plot, 0, cfg.GridSize*cfg.GridSize)

	for x := 0; x < cfg.GridSize; x++ {
		for y := 0; y < cfg.GridSize; y++ {
			tile := &MapTile{X: x, Y: y, Terrain: pickTerrain(cfg.Terrain, src)}
			plot := Plot{Tile: tile}

			if slices.Contains(cfg.SpawnOn, tile.Terrain) {
				plot.Node = spawnNode(cfg.Archetypes, src)
			}
			plots = append(plots, plot)
		}
	}

	return plots
}

// pickTerrain performs one weighted draw over the terrain table.
func pickTerrain(table []TerrainWeight, src entropy.Source) Terrain {
	total := 0.0
	for _, tw := range table {
		if tw.Weight > 0 {
			total += tw.Weight
		}
	}
	if total <= 0 {
		return TerrainGrass
	}

	roll := src.Float64() * total
	last := TerrainGrass
	for _, tw := range table {
		if tw.Weight <= 0 {
			continue
		}
		if roll < tw.Weight {
			return tw.Terrain
		}
		roll -= tw.Weight
		last = tw.Terrain
	}
	return last
}

// spawnNode tries each archetype in priority order and returns the first
// that passes its probability check.
func spawnNode(archetypes []NodeArchetype, src entropy.Source) *ResourceNode {
	for _, a := range archetypes {
		if src.Float64() < a.Probability {
			return &ResourceNode{
				Archetype:   a.Key,
				Name:        a.Name,
				Resource:    a.Resource,
				Quantity:    a.Quantity,
				MaxQuantity: a.MaxQuantity,
				RegenRate:   a.RegenRate,
				Lore:        a.Lore,
			}
		}
	}
	return nil
}

// TerrainCounts tallies the terrain of a generated map.
func TerrainCounts(plots []Plot) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, p := range plots {
		counts[p.Tile.Terrain]++
	}
	return counts
}
