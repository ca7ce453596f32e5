// Package world defines the persistent entities of a settlement simulation:
// settlements, buildings, settlers, terrain tiles and finite resource nodes.
package world

import (
	"fmt"
	"time"
)

// Resource is a stockpiled good held by a settlement.
type Resource uint8

const (
	Food Resource = iota
	Wood
	Stone
	Magic

	ResourceCount = 4
)

var resourceNames = [ResourceCount]string{"food", "wood", "stone", "magic"}

// Resources lists every resource in stable order.
func Resources() []Resource {
	return []Resource{Food, Wood, Stone, Magic}
}

func (r Resource) String() string {
	if int(r) < len(resourceNames) {
		return resourceNames[r]
	}
	return fmt.Sprintf("resource#%d", r)
}

func (r Resource) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Resource) UnmarshalText(text []byte) error {
	for i, n := range resourceNames {
		if n == string(text) {
			*r = Resource(i)
			return nil
		}
	}
	return fmt.Errorf("unknown resource %q", text)
}

// Terrain is the ground type of a map tile.
type Terrain uint8

const (
	TerrainGrass Terrain = iota
	TerrainForest
	TerrainBush
	TerrainStoneDeposit
	TerrainMountain
	TerrainLake
	TerrainLeyLine
)

var terrainNames = []string{"grass", "forest", "bush", "stone_deposit", "mountain", "lake", "ley_line"}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("terrain#%d", t)
}

func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Terrain) UnmarshalText(text []byte) error {
	for i, n := range terrainNames {
		if n == string(text) {
			*t = Terrain(i)
			return nil
		}
	}
	return fmt.Errorf("unknown terrain %q", text)
}

// BuildingType identifies what a building does.
type BuildingType uint8

const (
	BuildingHouse BuildingType = iota
	BuildingFarmhouse
	BuildingLumberMill
	BuildingQuarry
	BuildingWarehouse
	BuildingPark
	BuildingStatue
)

var buildingNames = []string{"house", "farmhouse", "lumber_mill", "quarry", "warehouse", "park", "statue"}

func (b BuildingType) String() string {
	if int(b) < len(buildingNames) {
		return buildingNames[b]
	}
	return fmt.Sprintf("building#%d", b)
}

func (b BuildingType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BuildingType) UnmarshalText(text []byte) error {
	bt, err := ParseBuildingType(string(text))
	if err != nil {
		return err
	}
	*b = bt
	return nil
}

// SettlerStatus is the activity state of a settler. Dead is terminal.
type SettlerStatus uint8

const (
	StatusIdle SettlerStatus = iota
	StatusWorking
	StatusGathering
	StatusDead
)

var statusNames = []string{"idle", "working", "gathering", "dead"}

func (s SettlerStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

func (s SettlerStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SettlerStatus) UnmarshalText(text []byte) error {
	for i, n := range statusNames {
		if n == string(text) {
			*s = SettlerStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown settler status %q", text)
}

// Mood is the coarse wellbeing label of a settler.
type Mood uint8

const (
	MoodContent Mood = iota
	MoodHungry
	MoodSick
)

var moodNames = []string{"content", "hungry", "sick"}

func (m Mood) String() string {
	if int(m) < len(moodNames) {
		return moodNames[m]
	}
	return "unknown"
}

func (m Mood) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mood) UnmarshalText(text []byte) error {
	for i, n := range moodNames {
		if n == string(text) {
			*m = Mood(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mood %q", text)
}

// GameStateID is the fixed primary key of the singleton game state.
const GameStateID = 1

// GameState is the global clock. Only the engine's clock phase writes it.
type GameState struct {
	TickCount     uint64 `json:"tick_count"`
	CurrentSeason string `json:"current_season"`
}

// Stocks holds one amount per resource, indexed by Resource.
type Stocks [ResourceCount]int

// Settlement is a player-owned colony and its stockpile.
type Settlement struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	Name           string    `json:"name"`
	Stocks         Stocks    `json:"-"`
	HappyDuration  int       `json:"happy_duration"`  // Ticks of sustained high popularity
	HappinessBoost float64   `json:"happiness_boost"` // Production multiplier derived from popularity
	CreatedAt      time.Time `json:"created_at"`
}

// MapTile is one cell of a settlement's grid. Immutable after generation.
type MapTile struct {
	ID           int64   `json:"id"`
	SettlementID int64   `json:"settlement_id"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Terrain      Terrain `json:"terrain"`
}

// Building is a structure placed on one tile.
type Building struct {
	ID           int64        `json:"id"`
	SettlementID int64        `json:"settlement_id"`
	Type         BuildingType `json:"building_type"`
	X            int          `json:"x"`
	Y            int          `json:"y"`
	Progress     int          `json:"construction_progress"` // 0–100, never decreases
	Constructed  bool         `json:"is_constructed"`        // Set once when Progress reaches 100
}

// Settler is a villager of a settlement.
type Settler struct {
	ID           int64         `json:"id"`
	SettlementID int64         `json:"settlement_id"`
	Name         string        `json:"name"`
	Status       SettlerStatus `json:"status"`
	Mood         Mood          `json:"mood"`
	Hunger       int           `json:"hunger"`
	BuildingID   *int64        `json:"assigned_building,omitempty"` // Production work
	HouseID      *int64        `json:"housing_assigned,omitempty"`
	NodeID       *int64        `json:"gathering_resource_node,omitempty"`
	BirthTick    *uint64       `json:"birth_tick,omitempty"` // Stamped the first tick the settler is observed
	Experience   int           `json:"experience"`
}

// Alive reports whether the settler has not died.
func (s *Settler) Alive() bool {
	return s.Status != StatusDead
}

// ResourceNode is a finite deposit on a tile, worked by at most one gatherer.
type ResourceNode struct {
	ID          int64    `json:"id"`
	TileID      int64    `json:"map_tile"`
	Archetype   string   `json:"archetype"`
	Name        string   `json:"name"`
	Resource    Resource `json:"resource_type"`
	Quantity    int      `json:"quantity"`
	MaxQuantity int      `json:"max_quantity"`
	RegenRate   int      `json:"regen_rate"` // Reserved: the engine never regenerates nodes
	Lore        string   `json:"lore,omitempty"`
	GathererID  *int64   `json:"gatherer,omitempty"`
}

// Owner is an authenticated player identity.
type Owner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
