package persistence

import (
	"fmt"
	"time"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

type settlementRow struct {
	ID             int64   `db:"id"`
	OwnerID        int64   `db:"owner_id"`
	Name           string  `db:"name"`
	Food           int     `db:"food"`
	Wood           int     `db:"wood"`
	Stone          int     `db:"stone"`
	Magic          int     `db:"magic"`
	HappyDuration  int     `db:"happy_duration"`
	HappinessBoost float64 `db:"happiness_boost"`
	CreatedAt      int64   `db:"created_at"`
}

func (r settlementRow) settlement() *world.Settlement {
	return &world.Settlement{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Name:           r.Name,
		Stocks:         world.Stocks{r.Food, r.Wood, r.Stone, r.Magic},
		HappyDuration:  r.HappyDuration,
		HappinessBoost: r.HappinessBoost,
		CreatedAt:      time.Unix(r.CreatedAt, 0).UTC(),
	}
}

type tileRow struct {
	ID           int64  `db:"id"`
	SettlementID int64  `db:"settlement_id"`
	X            int    `db:"x"`
	Y            int    `db:"y"`
	Terrain      string `db:"terrain"`
}

func (r tileRow) tile() (*world.MapTile, error) {
	t := &world.MapTile{ID: r.ID, SettlementID: r.SettlementID, X: r.X, Y: r.Y}
	if err := t.Terrain.UnmarshalText([]byte(r.Terrain)); err != nil {
		return nil, fmt.Errorf("tile %d: %w", r.ID, err)
	}
	return t, nil
}

type buildingRow struct {
	ID           int64  `db:"id"`
	SettlementID int64  `db:"settlement_id"`
	Type         string `db:"building_type"`
	X            int    `db:"x"`
	Y            int    `db:"y"`
	Progress     int    `db:"progress"`
	Constructed  bool   `db:"constructed"`
}

func (r buildingRow) building() (*world.Building, error) {
	bt, err := world.ParseBuildingType(r.Type)
	if err != nil {
		return nil, fmt.Errorf("building %d: %w", r.ID, err)
	}
	return &world.Building{
		ID:           r.ID,
		SettlementID: r.SettlementID,
		Type:         bt,
		X:            r.X,
		Y:            r.Y,
		Progress:     r.Progress,
		Constructed:  r.Constructed,
	}, nil
}

type settlerRow struct {
	ID           int64  `db:"id"`
	SettlementID int64  `db:"settlement_id"`
	Name         string `db:"name"`
	Status       string `db:"status"`
	Mood         string `db:"mood"`
	Hunger       int    `db:"hunger"`
	BuildingID   *int64 `db:"building_id"`
	HouseID      *int64 `db:"house_id"`
	NodeID       *int64 `db:"node_id"`
	BirthTick    *int64 `db:"birth_tick"`
	Experience   int    `db:"experience"`
}

func (r settlerRow) settler() (*world.Settler, error) {
	s := &world.Settler{
		ID:           r.ID,
		SettlementID: r.SettlementID,
		Name:         r.Name,
		Hunger:       r.Hunger,
		BuildingID:   r.BuildingID,
		HouseID:      r.HouseID,
		NodeID:       r.NodeID,
		Experience:   r.Experience,
	}
	if err := s.Status.UnmarshalText([]byte(r.Status)); err != nil {
		return nil, fmt.Errorf("settler %d: %w", r.ID, err)
	}
	if err := s.Mood.UnmarshalText([]byte(r.Mood)); err != nil {
		return nil, fmt.Errorf("settler %d: %w", r.ID, err)
	}
	if r.BirthTick != nil {
		birth := uint64(*r.BirthTick)
		s.BirthTick = &birth
	}
	return s, nil
}

func birthTickArg(s *world.Settler) any {
	if s.BirthTick == nil {
		return nil
	}
	return int64(*s.BirthTick)
}

type nodeRow struct {
	ID           int64  `db:"id"`
	SettlementID int64  `db:"settlement_id"`
	TileID       int64  `db:"tile_id"`
	Archetype    string `db:"archetype"`
	Name         string `db:"name"`
	Resource     string `db:"resource"`
	Quantity     int    `db:"quantity"`
	MaxQuantity  int    `db:"max_quantity"`
	RegenRate    int    `db:"regen_rate"`
	Lore         string `db:"lore"`
	GathererID   *int64 `db:"gatherer_id"`
}

func (r nodeRow) node() (*world.ResourceNode, error) {
	n := &world.ResourceNode{
		ID:          r.ID,
		TileID:      r.TileID,
		Archetype:   r.Archetype,
		Name:        r.Name,
		Quantity:    r.Quantity,
		MaxQuantity: r.MaxQuantity,
		RegenRate:   r.RegenRate,
		Lore:        r.Lore,
		GathererID:  r.GathererID,
	}
	if err := n.Resource.UnmarshalText([]byte(r.Resource)); err != nil {
		return nil, fmt.Errorf("node %d: %w", r.ID, err)
	}
	return n, nil
}

type eventRow struct {
	ID           int64  `db:"id"`
	SettlementID int64  `db:"settlement_id"`
	Tick         int64  `db:"tick"`
	Kind         string `db:"kind"`
	Description  string `db:"description"`
	CreatedAt    int64  `db:"created_at"`
}

func (r eventRow) event() world.Event {
	return world.Event{
		ID:           r.ID,
		SettlementID: r.SettlementID,
		Tick:         uint64(r.Tick),
		Kind:         world.EventKind(r.Kind),
		Description:  r.Description,
		CreatedAt:    time.Unix(r.CreatedAt, 0).UTC(),
	}
}

type ownerRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	TokenHash string `db:"token_hash"`
	CreatedAt int64  `db:"created_at"`
}

func (r ownerRow) owner() *world.Owner {
	return &world.Owner{
		ID:        r.ID,
		Name:      r.Name,
		TokenHash: r.TokenHash,
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
	}
}
