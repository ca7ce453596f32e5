package economy

import (
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Rates is a per-tick change of each resource.
type Rates [world.ResourceCount]float64

// Map keys rates by resource name.
func (r Rates) Map() map[string]float64 {
	out := make(map[string]float64, world.ResourceCount)
	for _, res := range world.Resources() {
		out[res.String()] = r[res]
	}
	return out
}

// NetRates estimates the per-tick change of every resource from staffed
// production buildings, active gatherers and the food eaten by living
// settlers. Caps are ignored.
func NetRates(rules *config.Rules, c *world.Colony, season config.Season) Rates {
	var rates Rates
	interval := float64(max(rules.ProductionInterval, 1))

	for _, b := range c.Buildings {
		if !b.Constructed || !rules.IsProduction(b.Type) {
			continue
		}
		res, out := Output(rules, b.Type, len(c.Workers(b.ID)), season)
		rates[res] += float64(out) / interval
	}

	for _, n := range c.Nodes {
		if n.GathererID == nil {
			continue
		}
		rates[n.Resource] += float64(rules.GatherRate(n.Resource))
	}

	rates[world.Food] -= float64(Consumption(rules, season) * len(c.Living()))
	return rates
}
