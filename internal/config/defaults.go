package config

import (
	"time"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

func resource(r world.Resource) *world.Resource { return &r }

// DefaultRules returns the stock rule tables.
func DefaultRules() Rules {
	return Rules{
		SeasonLength: 120,
		Seasons: []Season{
			{Name: "Spring", Production: 1.0, Consumption: 1.0, Construction: 1.0},
			{Name: "Summer", Production: 1.0, Consumption: 1.0, Construction: 1.0},
			{Name: "Autumn", Production: 1.0, Consumption: 1.0, Construction: 1.0},
			{Name: "Winter", Production: 1.0, Consumption: 1.0, Construction: 1.0},
		},
		StartingResources: map[world.Resource]int{
			world.Food:  50,
			world.Wood:  50,
			world.Stone: 50,
		},
		StartingVillagers:     2,
		VillagerNames:         world.DefaultVillagerNames,
		GridSize:              10,
		ProductionInterval:    1,
		FeedingInterval:       1,
		ConsumptionRate:       1,
		StarvationThreshold:   20,
		ConstructionIncrement: 10,
		MaxAge:                200,
		ExperiencePerTick:     1,
		HouseCapacity:         4,
		ResourceCap:           200,
		WarehouseBonus:        100,
		Buildings: map[world.BuildingType]BuildingSpec{
			world.BuildingHouse: {
				Description: "Shelter for up to four villagers.",
				Cost:        map[world.Resource]int{world.Wood: 10, world.Stone: 10},
				Terrain:     []world.Terrain{world.TerrainGrass, world.TerrainBush, world.TerrainForest},
			},
			world.BuildingFarmhouse: {
				Description: "Workers tend skyberry rows and bring in food.",
				Cost:        map[world.Resource]int{world.Wood: 10, world.Stone: 10},
				Produces:    resource(world.Food),
				Rate:        10,
				Terrain:     []world.Terrain{world.TerrainGrass, world.TerrainBush},
				Instant:     true,
			},
			world.BuildingLumberMill: {
				Description: "Workers fell cloudwood and produce timber.",
				Cost:        map[world.Resource]int{world.Wood: 10},
				Produces:    resource(world.Wood),
				Rate:        10,
				Terrain:     []world.Terrain{world.TerrainForest, world.TerrainGrass},
				Instant:     true,
			},
			world.BuildingQuarry: {
				Description: "Workers cut stone from the floating rock.",
				Cost:        map[world.Resource]int{world.Stone: 10},
				Produces:    resource(world.Stone),
				Rate:        10,
				Terrain:     []world.Terrain{world.TerrainStoneDeposit, world.TerrainMountain},
				Instant:     true,
			},
			world.BuildingWarehouse: {
				Description: "Raises the storage cap of every resource.",
				Cost:        map[world.Resource]int{world.Wood: 20, world.Stone: 20},
				Terrain:     []world.Terrain{world.TerrainGrass, world.TerrainBush, world.TerrainStoneDeposit},
			},
			world.BuildingPark: {
				Description: "A quiet green that lifts the mood of the settlement.",
				Cost:        map[world.Resource]int{world.Wood: 15, world.Stone: 5},
				Terrain:     []world.Terrain{world.TerrainGrass, world.TerrainBush, world.TerrainForest, world.TerrainLeyLine},
				Happiness:   true,
			},
			world.BuildingStatue: {
				Description: "A monument to the founders.",
				Cost:        map[world.Resource]int{world.Stone: 25},
				Terrain:     []world.Terrain{world.TerrainGrass, world.TerrainStoneDeposit, world.TerrainLeyLine},
				Happiness:   true,
			},
		},
		GatherRates: map[world.Resource]int{
			world.Food:  5,
			world.Wood:  5,
			world.Stone: 5,
			world.Magic: 2,
		},
		Terrain: []world.TerrainWeight{
			{Terrain: world.TerrainGrass, Weight: 0.40},
			{Terrain: world.TerrainForest, Weight: 0.20},
			{Terrain: world.TerrainBush, Weight: 0.10},
			{Terrain: world.TerrainStoneDeposit, Weight: 0.10},
			{Terrain: world.TerrainMountain, Weight: 0.10},
			{Terrain: world.TerrainLake, Weight: 0.05},
			{Terrain: world.TerrainLeyLine, Weight: 0.05},
		},
		SpawnOn: []world.Terrain{world.TerrainGrass, world.TerrainBush, world.TerrainLeyLine},
		Nodes: []world.NodeArchetype{
			{
				Key: "skyberry_bush", Name: "Skyberry Bush", Resource: world.Food,
				Probability: 0.08, Quantity: 60, MaxQuantity: 60, RegenRate: 1,
				Lore: "Berries that ripen only where the clouds part.",
			},
			{
				Key: "skyfish_pool", Name: "Skyfish Pool", Resource: world.Food,
				Probability: 0.04, Quantity: 80, MaxQuantity: 80, RegenRate: 1,
				Lore: "A pool of condensed mist where silver skyfish drift.",
			},
			{
				Key: "cloudroot_fungus", Name: "Cloudroot Fungus", Resource: world.Food,
				Probability: 0.05, Quantity: 40, MaxQuantity: 40, RegenRate: 1,
				Lore: "Pale caps that grow on damp cloudroot.",
			},
			{
				Key: "driftwood_tangle", Name: "Driftwood Tangle", Resource: world.Wood,
				Probability: 0.06, Quantity: 70, MaxQuantity: 70, RegenRate: 1,
				Lore: "Branches carried up by the wind and knotted together.",
			},
			{
				Key: "windroot_cluster", Name: "Windroot Cluster", Resource: world.Wood,
				Probability: 0.05, Quantity: 90, MaxQuantity: 90, RegenRate: 1,
				Lore: "Roots that anchor the island against the gales.",
			},
			{
				Key: "drifting_boulders", Name: "Drifting Boulders", Resource: world.Stone,
				Probability: 0.05, Quantity: 100, MaxQuantity: 100, RegenRate: 0,
				Lore: "Stones that float just above the ground.",
			},
			{
				Key: "hollowed_cliffside", Name: "Hollowed Cliffside", Resource: world.Stone,
				Probability: 0.03, Quantity: 150, MaxQuantity: 150, RegenRate: 0,
				Lore: "An overhang riddled with old quarry cuts.",
			},
			{
				Key: "ley_crystal_formation", Name: "Ley Crystal Formation", Resource: world.Magic,
				Probability: 0.03, Quantity: 30, MaxQuantity: 30, RegenRate: 0,
				Lore: "Crystals that hum where ley lines cross.",
			},
			{
				Key: "aurora_bloom", Name: "Aurora Bloom", Resource: world.Magic,
				Probability: 0.02, Quantity: 20, MaxQuantity: 20, RegenRate: 0,
				Lore: "A flower that glows with the colours of the aurora.",
			},
		},
		Population: PopulationRules{
			MaxHungerForMood:       100,
			WeightMood:             0.6,
			WeightFood:             0.2,
			WeightHousing:          0.2,
			FoodBaseline:           50,
			NetFoodFactor:          10,
			SickPenalty:            0.8,
			RecruitmentThreshold:   0.7,
			RecruitmentMinFood:     100,
			HappyThreshold:         0.7,
			DurationFactor:         0.01,
			HappinessBuildingBonus: 0.05,
			BoostThreshold:         0.8,
			PenaltyThreshold:       0.4,
			Boost:                  1.1,
			Penalty:                0.9,
		},
	}
}

// DefaultSettings returns runtime settings for a local single-node server.
func DefaultSettings() Settings {
	return Settings{
		Database:     "data/aurora.db",
		TickInterval: 5 * time.Second,
		Speed:        1,
		Workers:      4,
		Listen:       ":8080",
		LogLevel:     "info",
		CORSOrigin:   "*",
		RateLimit: RateLimitSettings{
			PerSecond:   2,
			Burst:       5,
			IPPerSecond: 10,
			IPBurst:     20,
		},
		NATS: NATSSettings{
			Subject: "aurora.events",
		},
		Retry: RetrySettings{
			Attempts: 5,
			Backoff:  10 * time.Millisecond,
		},
	}
}

// Default returns a complete configuration with stock values.
func Default() *Config {
	return &Config{
		Server: DefaultSettings(),
		Rules:  DefaultRules(),
	}
}
