package report

import (
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

func testColony(now time.Time) *world.Colony {
	farm, house := int64(1), int64(2)
	return &world.Colony{
		Settlement: &world.Settlement{
			ID:             3,
			Name:           "Aurora",
			Stocks:         world.Stocks{1250, 40, 30, 0},
			HappinessBoost: 1,
			CreatedAt:      now.Add(-2 * time.Hour),
		},
		Buildings: []*world.Building{
			{ID: farm, Type: world.BuildingFarmhouse, X: 1, Y: 0, Progress: 100, Constructed: true},
			{ID: house, Type: world.BuildingHouse, X: 0, Y: 0, Progress: 100, Constructed: true},
			{ID: 3, Type: world.BuildingPark, X: 2, Y: 2, Progress: 40},
		},
		Settlers: []*world.Settler{
			{ID: 1, Name: "Alice", Status: world.StatusWorking, BuildingID: &farm, HouseID: &house, Experience: 1200},
			{ID: 2, Name: "Bob", Status: world.StatusDead},
		},
		Tick: 12345,
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rules := config.DefaultRules()
	rules.ResourceCap = 2000

	out := Render(Input{
		Colony: testColony(now),
		Rules:  &rules,
		Season: "Spring",
		Events: []world.Event{
			{Tick: 12345, Description: "Park placed at (2, 2)"},
			{Tick: 12000, Description: strings.Repeat("a very long description ", 8)},
		},
		Now: now,
	})

	for _, want := range []string{
		"Aurora (settlement 3), founded 2 hours ago",
		"Tick 12,345, Spring",
		"1,250",
		"worked by Alice",
		"1 residents",
		"40% built",
		"Villagers (1 living, 1 dead)",
		"1,200 xp",
		"[tick 12,345] Park placed at (2, 2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) > Width {
			t.Errorf("line longer than %d: %q", Width, line)
		}
	}

	older := strings.Index(out, "[tick 12,000]")
	newer := strings.Index(out, "[tick 12,345]")
	testutil.AssertEqual(t, "events oldest first", older < newer, true)
}
