// Package population scores how content a settlement is and grows or
// rehouses its villagers accordingly.
package population

import (
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/economy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/entropy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// SettlerMood scores one settler in [0, 1] from hunger, lowered further when sick.
func SettlerMood(p *config.PopulationRules, s *world.Settler) float64 {
	mood := max(0, 1-float64(s.Hunger)/p.MaxHungerForMood)
	if s.Mood == world.MoodSick {
		mood *= p.SickPenalty
	}
	return mood
}

// EffectiveFood is the food stock projected forward by the net food rate.
func EffectiveFood(rules *config.Rules, c *world.Colony, season config.Season) float64 {
	net := economy.NetRates(rules, c, season)[world.Food]
	return float64(c.Settlement.Stocks[world.Food]) + net*rules.Population.NetFoodFactor
}

// Capacity is the number of villagers all finished houses can hold.
func Capacity(rules *config.Rules, c *world.Colony) int {
	return len(c.Constructed(world.BuildingHouse)) * rules.HouseCapacity
}

// PopularityIndex aggregates mood, food surplus, housing and bonuses into [0, 1].
func PopularityIndex(rules *config.Rules, c *world.Colony, season config.Season) float64 {
	p := &rules.Population

	avgMood := 1.0
	if living := c.Living(); len(living) > 0 {
		total := 0.0
		for _, s := range living {
			total += SettlerMood(p, s)
		}
		avgMood = total / float64(len(living))
	}

	surplus := max(EffectiveFood(rules, c, season)-p.FoodBaseline, 0) / p.FoodBaseline

	housing := 0.0
	if capacity := Capacity(rules, c); capacity > 0 {
		housed := c.Housed()
		if housed <= capacity {
			housing = 1
		} else {
			housing = float64(capacity) / float64(housed)
		}
	}

	bonus := 0.0
	for _, b := range c.Buildings {
		if def, ok := rules.Building(b.Type); ok && def.Happiness && b.Constructed {
			bonus += p.HappinessBuildingBonus
		}
	}
	bonus += float64(c.Settlement.HappyDuration) * p.DurationFactor

	score := avgMood*p.WeightMood + surplus*p.WeightFood + housing*p.WeightHousing + bonus
	return world.Clamp(score, 0, 1)
}

// ApplyHappinessEffects updates the sustained-happiness counter and the
// production boost, and returns the popularity they were derived from.
func ApplyHappinessEffects(rules *config.Rules, c *world.Colony, season config.Season) float64 {
	p := &rules.Population
	popularity := PopularityIndex(rules, c, season)

	if popularity >= p.HappyThreshold {
		c.Settlement.HappyDuration++
	} else {
		c.Settlement.HappyDuration = 0
	}

	switch {
	case popularity >= p.BoostThreshold:
		c.Settlement.HappinessBoost = p.Boost
	case popularity < p.PenaltyThreshold:
		c.Settlement.HappinessBoost = p.Penalty
	default:
		c.Settlement.HappinessBoost = 1
	}

	return popularity
}

// Recruit draws once for a new villager. It returns nil when the settlement is
// not popular enough, has no free housing, lacks food, or the draw fails.
// The new settler is added to the colony and housed if possible.
func Recruit(rules *config.Rules, c *world.Colony, season config.Season, src entropy.Source) *world.Settler {
	p := &rules.Population

	popularity := PopularityIndex(rules, c, season)
	if popularity < p.RecruitmentThreshold {
		return nil
	}
	if c.Housed() >= Capacity(rules, c) {
		return nil
	}
	if EffectiveFood(rules, c, season) <= p.RecruitmentMinFood {
		return nil
	}

	chance := (popularity - p.RecruitmentThreshold) + float64(c.Settlement.HappyDuration)*p.DurationFactor
	if src.Float64() >= world.Clamp(chance, 0, 1) {
		return nil
	}

	s := &world.Settler{
		Name:   entropy.Pick(src, rules.Names()),
		Status: world.StatusIdle,
		Mood:   world.MoodContent,
	}
	if house := LeastOccupiedHouse(rules, c); house != nil {
		id := house.ID
		s.HouseID = &id
	}
	c.AddSettler(s)
	return s
}

// LeastOccupiedHouse returns the finished house with the fewest occupants
// that still has room. Ties go to the first house in stable order.
func LeastOccupiedHouse(rules *config.Rules, c *world.Colony) *world.Building {
	var best *world.Building
	bestCount := 0
	for _, h := range c.Constructed(world.BuildingHouse) {
		n := c.Occupants(h.ID)
		if n >= rules.HouseCapacity {
			continue
		}
		if best == nil || n < bestCount {
			best, bestCount = h, n
		}
	}
	return best
}

// ReassignHomeless houses every living homeless settler, one at a time, in
// the least occupied house with room. It returns how many were housed.
func ReassignHomeless(rules *config.Rules, c *world.Colony) int {
	housed := 0
	for _, s := range c.Living() {
		if s.HouseID != nil {
			continue
		}
		house := LeastOccupiedHouse(rules, c)
		if house == nil {
			break
		}
		id := house.ID
		s.HouseID = &id
		housed++
	}
	return housed
}
