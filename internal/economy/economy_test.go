package economy

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

func id(v int64) *int64 { return &v }

func TestOutput(t *testing.T) {
	rules := config.DefaultRules()
	normal := rules.Season("Spring")
	lean := config.Season{Name: "Lean", Production: 0.55}

	tests := map[string]struct {
		bt      world.BuildingType
		workers int
		season  config.Season
		exp     int
	}{
		"one worker":         {bt: world.BuildingFarmhouse, workers: 1, season: normal, exp: 10},
		"three workers":      {bt: world.BuildingQuarry, workers: 3, season: normal, exp: 30},
		"no workers":         {bt: world.BuildingFarmhouse, workers: 0, season: normal, exp: 0},
		"modifier truncates": {bt: world.BuildingLumberMill, workers: 1, season: lean, exp: 5},
		"non production":     {bt: world.BuildingHouse, workers: 2, season: normal, exp: 0},
		"unknown type":       {bt: world.BuildingType(99), workers: 2, season: normal, exp: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, got := Output(&rules, tt.bt, tt.workers, tt.season)
			testutil.AssertEqual(t, "output", got, tt.exp)
		})
	}
}

func TestConsumption(t *testing.T) {
	rules := config.DefaultRules()
	testutil.AssertEqual(t, "normal", Consumption(&rules, rules.Season("Winter")), 1)
	testutil.AssertEqual(t, "doubled", Consumption(&rules, config.Season{Consumption: 2.5}), 2)
}

func TestCredit_ClampsToCap(t *testing.T) {
	rules := config.DefaultRules()
	c := &world.Colony{Settlement: &world.Settlement{}}
	c.Settlement.Stocks[world.Food] = 195

	added := Credit(&rules, c, world.Food, 10)
	testutil.AssertEqual(t, "added", added, 5)
	testutil.AssertEqual(t, "stock", c.Settlement.Stocks[world.Food], 200)

	c.Buildings = append(c.Buildings, &world.Building{Type: world.BuildingWarehouse, Constructed: true})
	testutil.AssertEqual(t, "cap", EffectiveCap(&rules, c), 300)

	added = Credit(&rules, c, world.Food, 10)
	testutil.AssertEqual(t, "added with warehouse", added, 10)
}

func TestCredit_UnfinishedWarehouseIgnored(t *testing.T) {
	rules := config.DefaultRules()
	c := &world.Colony{
		Settlement: &world.Settlement{},
		Buildings:  []*world.Building{{Type: world.BuildingWarehouse, Progress: 90}},
	}
	testutil.AssertEqual(t, "cap", EffectiveCap(&rules, c), 200)
}

func TestDebit(t *testing.T) {
	c := &world.Colony{Settlement: &world.Settlement{Stocks: world.Stocks{50, 8, 50, 0}}}

	err := Debit(c, world.Stocks{world.Wood: 10, world.Stone: 10})
	if !errors.Is(err, world.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	testutil.AssertErrorContains(t, err, "insufficient wood")
	testutil.AssertEqual(t, "stone untouched", c.Settlement.Stocks[world.Stone], 50)

	if err := Debit(c, world.Stocks{world.Stone: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "stone", c.Settlement.Stocks[world.Stone], 40)
}

func TestNetRates(t *testing.T) {
	rules := config.DefaultRules()
	c := &world.Colony{
		Settlement: &world.Settlement{},
		Buildings: []*world.Building{
			{ID: 1, Type: world.BuildingFarmhouse, Constructed: true, Progress: 100},
			{ID: 2, Type: world.BuildingLumberMill, Constructed: true, Progress: 100},
		},
		Settlers: []*world.Settler{
			{ID: 1, Status: world.StatusWorking, BuildingID: id(1)},
			{ID: 2, Status: world.StatusGathering, NodeID: id(7)},
			{ID: 3, Status: world.StatusDead},
		},
		Nodes: []*world.ResourceNode{
			{ID: 7, Resource: world.Magic, Quantity: 1, GathererID: id(2)},
		},
	}

	rates := NetRates(&rules, c, rules.Season("Spring"))
	testutil.AssertEqual(t, "food", rates[world.Food], 8.0)
	testutil.AssertEqual(t, "wood", rates[world.Wood], 0.0)
	testutil.AssertEqual(t, "magic", rates[world.Magic], 2.0)
	testutil.AssertEqual(t, "map", rates.Map()["food"], 8.0)
}
