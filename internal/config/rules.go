package config

import (
	"slices"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Season is one regime of the seasonal cycle.
type Season struct {
	Name         string  `yaml:"name"`
	Production   float64 `yaml:"production"`
	Consumption  float64 `yaml:"consumption"`
	Construction float64 `yaml:"construction"`
}

// BuildingSpec is the static description of a building type.
type BuildingSpec struct {
	Description string                 `yaml:"description"`
	Cost        map[world.Resource]int `yaml:"cost"`
	Produces    *world.Resource        `yaml:"produces,omitempty"` // nil for non-production types
	Rate        int                    `yaml:"rate"`               // Output per production tick per worker
	Terrain     []world.Terrain        `yaml:"terrain"`            // Terrain the building may be placed on
	Happiness   bool                   `yaml:"happiness"`          // Counts toward the popularity bonus
	Instant     bool                   `yaml:"instant"`            // Created already constructed
}

// PopulationRules tunes the popularity index and recruitment.
type PopulationRules struct {
	MaxHungerForMood       float64 `yaml:"max_hunger_for_mood"`
	WeightMood             float64 `yaml:"weight_mood"`
	WeightFood             float64 `yaml:"weight_food"`
	WeightHousing          float64 `yaml:"weight_housing"`
	FoodBaseline           float64 `yaml:"food_baseline"`
	NetFoodFactor          float64 `yaml:"net_food_factor"`
	SickPenalty            float64 `yaml:"sick_penalty"`
	RecruitmentThreshold   float64 `yaml:"recruitment_threshold"`
	RecruitmentMinFood     float64 `yaml:"recruitment_min_food"`
	HappyThreshold         float64 `yaml:"happy_threshold"`
	DurationFactor         float64 `yaml:"duration_factor"`
	HappinessBuildingBonus float64 `yaml:"happiness_building_bonus"`
	BoostThreshold         float64 `yaml:"boost_threshold"`
	PenaltyThreshold       float64 `yaml:"penalty_threshold"`
	Boost                  float64 `yaml:"boost"`
	Penalty                float64 `yaml:"penalty"`
}

// Rules are the read-only tables consulted by the engine, the population
// module and the action handlers.
type Rules struct {
	SeasonLength          uint64                              `yaml:"season_length"`
	Seasons               []Season                            `yaml:"seasons"`
	StartingResources     map[world.Resource]int              `yaml:"starting_resources"`
	StartingVillagers     int                                 `yaml:"starting_villagers"`
	VillagerNames         []string                            `yaml:"villager_names"`
	GridSize              int                                 `yaml:"grid_size"`
	ProductionInterval    uint64                              `yaml:"production_interval"`
	FeedingInterval       int                                 `yaml:"feeding_interval"`
	ConsumptionRate       int                                 `yaml:"consumption_rate"`
	StarvationThreshold   int                                 `yaml:"starvation_threshold"`
	ConstructionIncrement int                                 `yaml:"construction_increment"`
	MaxAge                uint64                              `yaml:"max_age"`
	ExperiencePerTick     int                                 `yaml:"experience_per_tick"`
	HouseCapacity         int                                 `yaml:"house_capacity"`
	ResourceCap           int                                 `yaml:"resource_cap"`
	WarehouseBonus        int                                 `yaml:"warehouse_bonus"`
	Buildings             map[world.BuildingType]BuildingSpec `yaml:"buildings"`
	GatherRates           map[world.Resource]int              `yaml:"gather_rates"`
	Terrain               []world.TerrainWeight               `yaml:"terrain"`
	SpawnOn               []world.Terrain                     `yaml:"spawn_on"`
	Nodes                 []world.NodeArchetype               `yaml:"nodes"`
	Population            PopulationRules                     `yaml:"population"`
}

// neutralSeason is returned for unknown season names.
func neutralSeason(name string) Season {
	return Season{Name: name, Production: 1, Consumption: 1, Construction: 1}
}

// Season returns the modifiers for a season name. Unknown names are neutral.
func (r *Rules) Season(name string) Season {
	for _, s := range r.Seasons {
		if s.Name == name {
			return s
		}
	}
	return neutralSeason(name)
}

// FirstSeason is the season a fresh world starts in.
func (r *Rules) FirstSeason() string {
	if len(r.Seasons) == 0 {
		return ""
	}
	return r.Seasons[0].Name
}

// NextSeason returns the season following name, wrapping around. An unknown
// name restarts the cycle.
func (r *Rules) NextSeason(name string) string {
	if len(r.Seasons) == 0 {
		return name
	}
	i := slices.IndexFunc(r.Seasons, func(s Season) bool { return s.Name == name })
	return r.Seasons[(i+1)%len(r.Seasons)].Name
}

// Building returns the definition of a building type.
func (r *Rules) Building(bt world.BuildingType) (BuildingSpec, bool) {
	def, ok := r.Buildings[bt]
	return def, ok
}

// IsProduction reports whether a building type accepts workers.
func (r *Rules) IsProduction(bt world.BuildingType) bool {
	def, ok := r.Buildings[bt]
	return ok && def.Produces != nil
}

// ProductionRate returns the produced resource and per-worker base rate of a
// building type. Unknown or non-production types have rate 0.
func (r *Rules) ProductionRate(bt world.BuildingType) (world.Resource, int) {
	def, ok := r.Buildings[bt]
	if !ok || def.Produces == nil {
		return 0, 0
	}
	return *def.Produces, def.Rate
}

// Cost returns the resources required to place a building type.
func (r *Rules) Cost(bt world.BuildingType) world.Stocks {
	var cost world.Stocks
	for res, n := range r.Buildings[bt].Cost {
		if int(res) < world.ResourceCount {
			cost[res] = n
		}
	}
	return cost
}

// TerrainAllows reports whether a building type may be placed on a terrain.
func (r *Rules) TerrainAllows(bt world.BuildingType, t world.Terrain) bool {
	return slices.Contains(r.Buildings[bt].Terrain, t)
}

// Limits returns the capacities colonies are verified against.
func (r *Rules) Limits() world.Limits {
	return world.Limits{
		HouseCapacity:  r.HouseCapacity,
		ResourceCap:    r.ResourceCap,
		WarehouseBonus: r.WarehouseBonus,
	}
}

// GatherRate returns how much a gatherer extracts per tick. Unknown is 0.
func (r *Rules) GatherRate(res world.Resource) int {
	return r.GatherRates[res]
}

// GenConfig returns the map generator parameters.
func (r *Rules) GenConfig() world.GenConfig {
	return world.GenConfig{
		GridSize:   r.GridSize,
		Terrain:    r.Terrain,
		SpawnOn:    r.SpawnOn,
		Archetypes: r.Nodes,
	}
}

// Names returns the villager name pool.
func (r *Rules) Names() []string {
	if len(r.VillagerNames) == 0 {
		return world.DefaultVillagerNames
	}
	return r.VillagerNames
}
