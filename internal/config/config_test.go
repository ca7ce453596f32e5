package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aurora.yaml")
	data := `
server:
  database: /tmp/test.db
  tick_interval: 2s
rules:
  house_capacity: 6
  gather_rates:
    magic: 3
  seasons:
    - name: Dry
      production: 0.5
      consumption: 2
      construction: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "database", cfg.Server.Database, "/tmp/test.db")
	testutil.AssertEqual(t, "tick interval", cfg.Server.TickInterval, 2*time.Second)
	testutil.AssertEqual(t, "house capacity", cfg.Rules.HouseCapacity, 6)
	testutil.AssertEqual(t, "magic gather", cfg.Rules.GatherRate(world.Magic), 3)
	testutil.AssertEqual(t, "food gather kept", cfg.Rules.GatherRate(world.Food), 5)
	testutil.AssertEqual(t, "seasons", len(cfg.Rules.Seasons), 1)
	testutil.AssertEqual(t, "listen kept", cfg.Server.Listen, ":8080")
}

func TestLoad_RejectsUnknownBuildingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aurora.yaml")
	data := "rules:\n  buildings:\n    castel:\n      rate: 1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := Load(path)
	testutil.AssertErrorContains(t, err, "castel")
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aurora.yaml")
	data := "server:
  tick_intervall: 2s
"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := Load(path)
	testutil.AssertErrorContains(t, err, "tick_intervall")
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aurora.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "house capacity", cfg.Rules.HouseCapacity, DefaultRules().HouseCapacity)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AURORA_DB":            "env.db",
		"AURORA_SEED":          "1234",
		"AURORA_TICK_INTERVAL": "250ms",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	s := DefaultSettings()
	if err := applyEnv(&s, lookup); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "database", s.Database, "env.db")
	testutil.AssertEqual(t, "seed", s.Seed, int64(1234))
	testutil.AssertEqual(t, "interval", s.TickInterval, 250*time.Millisecond)

	env["AURORA_SEED"] = "not-a-number"
	testutil.AssertErrorContains(t, applyEnv(&s, lookup), "AURORA_SEED")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Workers = 0
	cfg.Rules.GridSize = 0
	cfg.Rules.HouseCapacity = 0

	err := cfg.Validate()
	testutil.AssertErrorContains(t, err, "workers must be at least 1")
	testutil.AssertErrorContains(t, err, "grid_size must be positive")
	testutil.AssertErrorContains(t, err, "house_capacity must be positive")
}

func TestValidate_StartingResourcesWithinCap(t *testing.T) {
	cfg := Default()
	cfg.Rules.ResourceCap = 200
	cfg.Rules.StartingResources = map[world.Resource]int{world.Food: 500}

	testutil.AssertErrorContains(t, cfg.Validate(), "starting_resources.food: 500 is outside [0, resource_cap 200]")
}

func TestRules_Lookups(t *testing.T) {
	r := DefaultRules()

	res, rate := r.ProductionRate(world.BuildingFarmhouse)
	testutil.AssertEqual(t, "farm resource", res, world.Food)
	testutil.AssertEqual(t, "farm rate", rate, 10)

	_, rate = r.ProductionRate(world.BuildingHouse)
	testutil.AssertEqual(t, "house rate", rate, 0)

	_, rate = r.ProductionRate(world.BuildingType(200))
	testutil.AssertEqual(t, "unknown rate", rate, 0)

	testutil.AssertEqual(t, "unknown season", r.Season("Monsoon").Production, 1.0)
	testutil.AssertEqual(t, "next season", r.NextSeason("Winter"), "Spring")
	testutil.AssertEqual(t, "unknown next", r.NextSeason("Monsoon"), "Spring")
	testutil.AssertEqual(t, "unknown gather", r.GatherRate(world.Resource(9)), 0)

	testutil.AssertEqual(t, "quarry cost", r.Cost(world.BuildingQuarry)[world.Stone], 10)
	testutil.AssertEqual(t, "lake house", r.TerrainAllows(world.BuildingHouse, world.TerrainLake), false)
	testutil.AssertEqual(t, "quarry mountain", r.TerrainAllows(world.BuildingQuarry, world.TerrainMountain), true)
	testutil.AssertEqual(t, "house workers", r.IsProduction(world.BuildingHouse), false)
}
