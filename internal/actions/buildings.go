package actions

import (
	"context"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/economy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// PlaceBuilding pays for and places a building on an empty tile. Production
// buildings are usable at once; everything else starts at progress 0.
func (s *Service) PlaceBuilding(ctx context.Context, owner, settlementID int64, buildingType string, x, y int) (*world.Building, error) {
	bt, err := world.ParseBuildingType(buildingType)
	if err != nil {
		return nil, err
	}
	def, ok := s.rules.Building(bt)
	if !ok {
		return nil, world.Invalidf("%s cannot be built", bt)
	}

	var placed *world.Building
	err = s.update(ctx, owner, settlementID, func(c *world.Colony) error {
		if size := s.rules.GridSize; x < 0 || y < 0 || x >= size || y >= size {
			return world.Invalidf("tile (%d, %d) is outside the %dx%d grid", x, y, size, size)
		}
		if other := c.BuildingAt(x, y); other != nil {
			return world.Invalidf("tile (%d, %d) is already occupied by a %s", x, y, other.Type)
		}
		tile := c.Tile(x, y)
		if tile == nil {
			return world.NotFoundf("map tile (%d, %d)", x, y)
		}
		if !s.rules.TerrainAllows(bt, tile.Terrain) {
			return world.Invalidf("a %s cannot be built on %s", bt, tile.Terrain)
		}
		if err := economy.Debit(c, s.rules.Cost(bt)); err != nil {
			return err
		}

		placed = &world.Building{Type: bt, X: x, Y: y}
		c.AddBuilding(placed)
		c.Emit(world.EventBuildingPlaced, map[string]any{"building": bt.String(), "x": x, "y": y})

		if def.Instant {
			placed.Progress = 100
			placed.Constructed = true
			c.Emit(world.EventBuildingFinished, map[string]any{"building": bt.String(), "x": x, "y": y})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// AssignWorker puts a settler to work in a production building. Without an
// explicit settler the first idle one is chosen.
func (s *Service) AssignWorker(ctx context.Context, owner, settlementID, buildingID int64, settlerID *int64) (*world.Settler, error) {
	var assigned *world.Settler
	err := s.update(ctx, owner, settlementID, func(c *world.Colony) error {
		b := c.Building(buildingID)
		if b == nil {
			return world.NotFoundf("building %d", buildingID)
		}
		if !s.rules.IsProduction(b.Type) {
			return world.Invalidf("a %s does not take workers", b.Type)
		}

		var st *world.Settler
		if settlerID != nil {
			st = c.Settler(*settlerID)
			if st == nil {
				return world.NotFoundf("settler %d", *settlerID)
			}
			if !st.Alive() {
				return world.Invalidf("%s is dead", st.Name)
			}
			if st.Status == world.StatusGathering {
				return world.Invalidf("%s is gathering; stop gathering first", st.Name)
			}
		} else {
			idle := c.Idle()
			if len(idle) == 0 {
				return world.Invalidf("no idle villagers available")
			}
			st = idle[0]
		}

		assignWork(c, st, b)
		assigned = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

func assignWork(c *world.Colony, st *world.Settler, b *world.Building) {
	id := b.ID
	st.BuildingID = &id
	st.Status = world.StatusWorking
	c.Emit(world.EventVillagerAssigned, map[string]any{"settler": st.Name, "target": b.Type.String()})
}

func releaseWork(c *world.Colony, st *world.Settler, b *world.Building) {
	st.BuildingID = nil
	st.Status = world.StatusIdle
	c.Emit(world.EventVillagerUnassigned, map[string]any{"settler": st.Name, "target": b.Type.String()})
}
