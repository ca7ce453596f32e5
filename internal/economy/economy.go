// Package economy provides the production, consumption and storage formulas
// shared by the tick engine, the population module and the action handlers.
package economy

import (
	"math"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Output returns the resource and amount a building of type bt produces in
// one production tick. A building with no workers produces nothing.
func Output(rules *config.Rules, bt world.BuildingType, workers int, season config.Season) (world.Resource, int) {
	res, rate := rules.ProductionRate(bt)
	if workers <= 0 || rate <= 0 {
		return res, 0
	}
	interval := max(rules.ProductionInterval, 1)
	out := math.Floor(float64(rate) * season.Production * float64(workers) / float64(interval))
	return res, max(int(out), 0)
}

// Consumption returns the food one settler eats per feeding.
func Consumption(rules *config.Rules, season config.Season) int {
	interval := max(rules.FeedingInterval, 1)
	c := math.Floor(float64(rules.ConsumptionRate) * season.Consumption / float64(interval))
	return max(int(c), 0)
}

// EffectiveCap is the storage limit of every resource of a colony.
func EffectiveCap(rules *config.Rules, c *world.Colony) int {
	return rules.Limits().Cap(c)
}

// Credit adds up to n of res to the colony's stock without exceeding the
// effective cap and returns the amount actually added.
func Credit(rules *config.Rules, c *world.Colony, res world.Resource, n int) int {
	if n <= 0 || int(res) >= world.ResourceCount {
		return 0
	}
	room := EffectiveCap(rules, c) - c.Settlement.Stocks[res]
	added := world.Clamp(n, 0, max(room, 0))
	c.Settlement.Stocks[res] += added
	return added
}

// CanAfford reports the first resource the stock cannot cover, if any.
func CanAfford(stocks world.Stocks, cost world.Stocks) (world.Resource, bool) {
	for _, r := range world.Resources() {
		if stocks[r] < cost[r] {
			return r, false
		}
	}
	return 0, true
}

// Debit removes cost from the colony's stock. Nothing is removed when any
// resource is insufficient.
func Debit(c *world.Colony, cost world.Stocks) error {
	stocks := &c.Settlement.Stocks
	if r, ok := CanAfford(*stocks, cost); !ok {
		return world.Invalidf("insufficient %s: need %d, have %d", r, cost[r], stocks[r])
	}
	for _, r := range world.Resources() {
		stocks[r] -= cost[r]
	}
	return nil
}
