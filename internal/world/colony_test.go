package world

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func ptr[T any](v T) *T { return &v }

func testColony() *Colony {
	return &Colony{
		Settlement: &Settlement{ID: 1, Name: "Aurora"},
		Buildings: []*Building{
			{ID: 10, Type: BuildingHouse, X: 0, Y: 0, Progress: 100, Constructed: true},
			{ID: 11, Type: BuildingFarmhouse, X: 1, Y: 0, Progress: 100, Constructed: true},
		},
		Settlers: []*Settler{
			{ID: 1, Name: "Alice", HouseID: ptr(int64(10)), BuildingID: ptr(int64(11)), Status: StatusWorking},
			{ID: 2, Name: "Bob", HouseID: ptr(int64(10))},
			{ID: 3, Name: "Charlie", Status: StatusGathering, NodeID: ptr(int64(50))},
		},
		Nodes: []*ResourceNode{
			{ID: 50, TileID: 5, Resource: Food, Quantity: 10, GathererID: ptr(int64(3))},
		},
	}
}

func TestColony_Queries(t *testing.T) {
	c := testColony()

	testutil.AssertEqual(t, "occupants", c.Occupants(10), 2)
	testutil.AssertEqual(t, "housed", c.Housed(), 2)
	testutil.AssertEqual(t, "workers", len(c.Workers(11)), 1)
	testutil.AssertEqual(t, "idle", len(c.Idle()), 1)
	testutil.AssertEqual(t, "houses", len(c.Constructed(BuildingHouse)), 1)
	testutil.AssertEqual(t, "building at", c.BuildingAt(1, 0).ID, int64(11))
	if c.BuildingAt(5, 5) != nil {
		t.Error("expected empty tile")
	}
}

func TestColony_KillReleasesAssignments(t *testing.T) {
	c := testColony()
	charlie := c.Settler(3)

	c.Kill(charlie)

	testutil.AssertEqual(t, "status", charlie.Status, StatusDead)
	testutil.AssertEqual(t, "mood", charlie.Mood, MoodSick)
	if charlie.NodeID != nil {
		t.Error("expected node assignment cleared")
	}
	if c.Node(50).GathererID != nil {
		t.Error("expected node gatherer released")
	}
	if err := c.Verify(Limits{HouseCapacity: 4, ResourceCap: 200}); err != nil {
		t.Fatalf("unexpected invariant error: %v", err)
	}
}

func TestColony_RemoveNode(t *testing.T) {
	c := testColony()
	c.RemoveNode(50)

	testutil.AssertEqual(t, "nodes", len(c.Nodes), 0)
	testutil.AssertEqual(t, "removed", len(c.RemovedNodes()), 1)
}

func TestColony_VerifyDetectsViolations(t *testing.T) {
	tests := map[string]func(c *Colony){
		"negative stock": func(c *Colony) { c.Settlement.Stocks[Wood] = -1 },
		"stock over cap": func(c *Colony) { c.Settlement.Stocks[Food] = 201 },
		"shared tile": func(c *Colony) {
			c.Buildings = append(c.Buildings, &Building{ID: 12, Type: BuildingQuarry, X: 0, Y: 0})
		},
		"house over capacity": func(c *Colony) {
			c.Settlers = append(c.Settlers, &Settler{ID: 4, HouseID: ptr(int64(10))})
		},
		"dead with assignment": func(c *Colony) {
			c.Settlers[1].Status = StatusDead
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := testColony()
			mutate(c)
			err := c.Verify(Limits{HouseCapacity: 2, ResourceCap: 200})
			if !errors.Is(err, ErrInvariant) {
				t.Fatalf("expected invariant error, got %v", err)
			}
		})
	}
}

func TestColony_VerifyCountsWarehouses(t *testing.T) {
	l := Limits{HouseCapacity: 4, ResourceCap: 200, WarehouseBonus: 100}
	c := testColony()
	c.Settlement.Stocks[Stone] = 250
	testutil.AssertEqual(t, "cap", l.Cap(c), 200)
	if err := c.Verify(l); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}

	c.Buildings = append(c.Buildings, &Building{ID: 12, Type: BuildingWarehouse, X: 2, Y: 0, Progress: 100, Constructed: true})
	testutil.AssertEqual(t, "cap", l.Cap(c), 300)
	if err := c.Verify(l); err != nil {
		t.Fatalf("unexpected invariant error: %v", err)
	}
}

func TestColony_EmitStampsTick(t *testing.T) {
	c := testColony()
	c.Tick = 42
	c.Emit(EventBuildingFinished, map[string]any{"building": "house"})

	events := c.Events()
	testutil.AssertEqual(t, "events", len(events), 1)
	testutil.AssertEqual(t, "tick", events[0].Tick, uint64(42))
	testutil.AssertEqual(t, "settlement", events[0].SettlementID, int64(1))
}
