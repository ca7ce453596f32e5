package world

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/entropy"
)

func testGenConfig() GenConfig {
	return GenConfig{
		GridSize: 10,
		Terrain: []TerrainWeight{
			{Terrain: TerrainGrass, Weight: 0.5},
			{Terrain: TerrainForest, Weight: 0.3},
			{Terrain: TerrainMountain, Weight: 0.2},
		},
		SpawnOn: []Terrain{TerrainGrass},
		Archetypes: []NodeArchetype{
			{Key: "berries", Name: "Berries", Resource: Food, Probability: 0.3, Quantity: 50, MaxQuantity: 50},
			{Key: "boulders", Name: "Boulders", Resource: Stone, Probability: 0.3, Quantity: 80, MaxQuantity: 80},
		},
	}
}

func TestGenerate_GridShape(t *testing.T) {
	plots := Generate(testGenConfig(), entropy.Seeded(42))

	testutil.AssertEqual(t, "plot count", len(plots), 100)

	seen := make(map[[2]int]bool)
	for _, p := range plots {
		key := [2]int{p.Tile.X, p.Tile.Y}
		if seen[key] {
			t.Fatalf("duplicate tile at %v", key)
		}
		seen[key] = true
		if p.Tile.X < 0 || p.Tile.X >= 10 || p.Tile.Y < 0 || p.Tile.Y >= 10 {
			t.Fatalf("tile out of bounds: %v", key)
		}
	}
}

func TestGenerate_NodesOnlyOnEligibleTerrain(t *testing.T) {
	plots := Generate(testGenConfig(), entropy.Seeded(7))

	nodes := 0
	for _, p := range plots {
		if p.Node == nil {
			continue
		}
		nodes++
		if p.Tile.Terrain != TerrainGrass {
			t.Errorf("node spawned on %s at (%d, %d)", p.Tile.Terrain, p.Tile.X, p.Tile.Y)
		}
	}
	if nodes == 0 {
		t.Error("expected at least one node on a 10x10 grid")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(testGenConfig(), entropy.Seeded(99))
	b := Generate(testGenConfig(), entropy.Seeded(99))

	for i := range a {
		testutil.AssertEqual(t, "terrain", a[i].Tile.Terrain, b[i].Tile.Terrain)
		testutil.AssertEqual(t, "has node", a[i].Node != nil, b[i].Node != nil)
	}
}

func TestGenerate_FirstArchetypeWins(t *testing.T) {
	cfg := testGenConfig()
	cfg.Terrain = []TerrainWeight{{Terrain: TerrainGrass, Weight: 1}}
	cfg.Archetypes[0].Probability = 1
	cfg.Archetypes[1].Probability = 1

	for _, p := range Generate(cfg, entropy.Seeded(3)) {
		if p.Node == nil {
			t.Fatal("expected a node on every tile")
		}
		testutil.AssertEqual(t, "archetype", p.Node.Archetype, "berries")
	}
}

func TestGenerate_ZeroWeightTerrainNeverDrawn(t *testing.T) {
	cfg := testGenConfig()
	cfg.Terrain = []TerrainWeight{
		{Terrain: TerrainLake, Weight: 0},
		{Terrain: TerrainForest, Weight: 1},
	}

	counts := TerrainCounts(Generate(cfg, entropy.Seeded(5)))
	testutil.AssertEqual(t, "lake tiles", counts[TerrainLake], 0)
	testutil.AssertEqual(t, "forest tiles", counts[TerrainForest], 100)
}
