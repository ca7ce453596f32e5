// Package report renders a plain-text settlement summary for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/economy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/population"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

const Width = 80

// Input is everything a report is rendered from.
type Input struct {
	Colony *world.Colony
	Rules  *config.Rules
	Season string
	Events []world.Event // Newest first, as the store returns them
	Now    time.Time
}

// Write renders the report to w.
func Write(w io.Writer, in Input) error {
	_, err := io.WriteString(w, Render(in))
	return err
}

// Render returns the report as a string.
func Render(in Input) string {
	c, rules := in.Colony, in.Rules
	mods := rules.Season(in.Season)
	var b strings.Builder

	fmt.Fprintf(&b, "%s (settlement %d), founded %s\n", c.Settlement.Name, c.Settlement.ID,
		humanize.RelTime(c.Settlement.CreatedAt, in.Now, "ago", "from now"))
	fmt.Fprintf(&b, "Tick %s, %s\n\n", humanize.Comma(int64(c.Tick)), in.Season)

	capacity := economy.EffectiveCap(rules, c)
	rates := economy.NetRates(rules, c, mods)
	b.WriteString("Stocks\n")
	for _, res := range world.Resources() {
		fmt.Fprintf(&b, "  %-6s %5s / %-5s %+.1f per tick\n", res,
			humanize.Comma(int64(c.Settlement.Stocks[res])), humanize.Comma(int64(capacity)), rates[res])
	}

	popularity := population.PopularityIndex(rules, c, mods)
	fmt.Fprintf(&b, "\nPopularity %.0f%%, production boost x%s, housing %d/%d\n",
		popularity*100, humanize.Ftoa(c.Settlement.HappinessBoost), c.Housed(), population.Capacity(rules, c))

	fmt.Fprintf(&b, "\nBuildings (%d)\n", len(c.Buildings))
	for _, bl := range c.Buildings {
		fmt.Fprintf(&b, "  %-12s (%d, %d) %s\n", bl.Type, bl.X, bl.Y, buildingState(c, bl))
	}

	living := c.Living()
	fmt.Fprintf(&b, "\nVillagers (%d living, %d dead)\n", len(living), len(c.Settlers)-len(living))
	for _, st := range c.Settlers {
		fmt.Fprintf(&b, "  %-10s %-9s %-8s hunger %-3d %s xp\n",
			st.Name, st.Status, st.Mood, st.Hunger, humanize.Comma(int64(st.Experience)))
	}

	if len(in.Events) > 0 {
		b.WriteString("\nRecent events\n")
		for i := len(in.Events) - 1; i >= 0; i-- {
			e := in.Events[i]
			line := fmt.Sprintf("[tick %s] %s", humanize.Comma(int64(e.Tick)), e.Description)
			b.WriteString(indent.String(wordwrap.String(line, Width-2), 2))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func buildingState(c *world.Colony, b *world.Building) string {
	if !b.Constructed {
		return fmt.Sprintf("%d%% built", b.Progress)
	}
	if b.Type == world.BuildingHouse {
		return fmt.Sprintf("%d residents", c.Occupants(b.ID))
	}
	workers := c.Workers(b.ID)
	if len(workers) == 0 {
		return "ready"
	}
	names := make([]string, 0, len(workers))
	for _, st := range workers {
		names = append(names, st.Name)
	}
	return fmt.Sprintf("worked by %s", strings.Join(names, ", "))
}
