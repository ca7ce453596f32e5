package engine

import (
	"slices"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/economy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/entropy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/population"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// construct advances unfinished buildings. Finishing a house rehouses the
// homeless right away.
func (e *Engine) construct(c *world.Colony, tc tickContext) error {
	step := max(int(float64(e.rules.ConstructionIncrement)*tc.season.Construction), 0)

	houseFinished := false
	for _, b := range c.Buildings {
		if b.Constructed {
			continue
		}
		b.Progress = world.Clamp(b.Progress+step, b.Progress, 100)
		if b.Progress < 100 {
			continue
		}
		b.Constructed = true
		c.Emit(world.EventBuildingFinished, map[string]any{
			"building": b.Type.String(), "x": b.X, "y": b.Y,
		})
		if b.Type == world.BuildingHouse {
			houseFinished = true
		}
	}

	if houseFinished {
		population.ReassignHomeless(e.rules, c)
	}
	return nil
}

func (e *Engine) rehouse(c *world.Colony, _ tickContext) error {
	population.ReassignHomeless(e.rules, c)
	return nil
}

// produce credits the output of every staffed production building.
func (e *Engine) produce(c *world.Colony, tc tickContext) error {
	for _, b := range c.Buildings {
		if !b.Constructed || !e.rules.IsProduction(b.Type) {
			continue
		}
		workers := len(c.Workers(b.ID))
		if workers == 0 {
			continue
		}
		res, out := economy.Output(e.rules, b.Type, workers, tc.season)
		economy.Credit(e.rules, c, res, out)
	}
	return nil
}

// feed lets each living settler eat in turn. A settler who cannot eat grows
// hungrier and starves once hunger reaches the threshold.
func (e *Engine) feed(c *world.Colony, tc tickContext) error {
	portion := economy.Consumption(e.rules, tc.season)
	food := &c.Settlement.Stocks[world.Food]

	for _, s := range c.Living() {
		if *food >= portion {
			*food -= portion
			s.Hunger = 0
			s.Mood = world.MoodContent
			continue
		}

		s.Hunger += portion
		s.Mood = world.MoodHungry
		if s.Hunger >= e.rules.StarvationThreshold {
			c.Kill(s)
			c.Emit(world.EventVillagerDead, map[string]any{"settler": s.Name, "cause": "starvation"})
		}
	}
	return nil
}

// lifecycle ages settlers, then updates popularity and tries to recruit.
// Birth ticks are stamped the first time a settler is seen here, so age
// counts from then and not from creation.
func (e *Engine) lifecycle(c *world.Colony, tc tickContext) error {
	for _, s := range c.Living() {
		if s.BuildingID != nil {
			s.Experience += e.rules.ExperiencePerTick
		}
		if s.BirthTick == nil {
			born := tc.tick
			s.BirthTick = &born
		}
		if tc.tick-*s.BirthTick >= e.rules.MaxAge {
			c.Kill(s)
			c.Emit(world.EventVillagerDead, map[string]any{"settler": s.Name, "cause": "old age"})
		}
	}

	population.ApplyHappinessEffects(e.rules, c, tc.season)

	src := entropy.Seeded(e.seed, tc.tick, uint64(c.Settlement.ID))
	if s := population.Recruit(e.rules, c, tc.season, src); s != nil {
		c.Emit(world.EventVillagerRecruited, map[string]any{"settler": s.Name, "housed": s.HouseID != nil})
	}
	return nil
}

// gather extracts from every worked node. A node is removed the tick it runs
// dry and its gatherer goes back to idle.
func (e *Engine) gather(c *world.Colony, _ tickContext) error {
	for _, n := range slices.Clone(c.Nodes) {
		if n.GathererID == nil {
			continue
		}
		g := c.Settler(*n.GathererID)
		if g == nil || !g.Alive() {
			n.GathererID = nil
			continue
		}

		rate := e.rules.GatherRate(n.Resource)
		n.Quantity = max(n.Quantity-rate, 0)
		economy.Credit(e.rules, c, n.Resource, rate)

		if n.Quantity > 0 {
			continue
		}
		c.Emit(world.EventResourceDepleted, map[string]any{
			"node": n.Name, "resource": n.Resource.String(), "settler": g.Name,
		})
		c.StopGathering(g)
		c.RemoveNode(n.ID)
	}
	return nil
}
