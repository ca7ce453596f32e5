package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/economy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/population"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

const (
	defaultEventLimit = 10
	maxEventLimit     = 100
)

type settlementSummary struct {
	*world.Settlement
	Stocks map[string]int `json:"stocks"`
}

type buildingView struct {
	*world.Building
	Description string   `json:"description"`
	Workers     []string `json:"workers"`
}

type housingView struct {
	Capacity int `json:"capacity"`
	Housed   int `json:"housed"`
}

type settlementDetail struct {
	Settlement settlementSummary  `json:"settlement"`
	Tick       uint64             `json:"tick"`
	Season     string             `json:"season"`
	Cap        int                `json:"resource_cap"`
	NetRates   map[string]float64 `json:"net_rates"`
	Popularity float64            `json:"popularity"`
	Housing    housingView        `json:"housing"`
	Buildings  []buildingView     `json:"buildings"`
	Settlers   []*world.Settler   `json:"settlers"`
}

type tileView struct {
	*world.MapTile
	Building *world.Building     `json:"building,omitempty"`
	Node     *world.ResourceNode `json:"resource_node,omitempty"`
}

func summarize(st *world.Settlement) settlementSummary {
	stocks := make(map[string]int, world.ResourceCount)
	for _, res := range world.Resources() {
		stocks[res.String()] = st.Stocks[res]
	}
	return settlementSummary{Settlement: st, Stocks: stocks}
}

// detail derives the settlement view. Nothing here mutates c.
func (s *Server) detail(c *world.Colony, season string) settlementDetail {
	mods := s.Rules.Season(season)

	buildings := make([]buildingView, 0, len(c.Buildings))
	for _, b := range c.Buildings {
		def, _ := s.Rules.Building(b.Type)
		workers := []string{}
		for _, st := range c.Workers(b.ID) {
			workers = append(workers, st.Name)
		}
		buildings = append(buildings, buildingView{Building: b, Description: def.Description, Workers: workers})
	}

	return settlementDetail{
		Settlement: summarize(c.Settlement),
		Tick:       c.Tick,
		Season:     season,
		Cap:        economy.EffectiveCap(s.Rules, c),
		NetRates:   economy.NetRates(s.Rules, c, mods).Map(),
		Popularity: population.PopularityIndex(s.Rules, c, mods),
		Housing:    housingView{Capacity: population.Capacity(s.Rules, c), Housed: c.Housed()},
		Buildings:  buildings,
		Settlers:   c.Settlers,
	}
}

// ownedColony loads the settlement named by the {id} path value and checks
// it belongs to the caller. It writes the error response itself.
func (s *Server) ownedColony(w http.ResponseWriter, r *http.Request) (*world.Colony, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	c, err := s.Store.LoadColony(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if owner := ownerFrom(r.Context()); owner == nil || c.Settlement.OwnerID != owner.ID {
		writeError(w, r, fmt.Errorf("%w: settlement %d belongs to another owner", world.ErrForbidden, id))
		return nil, false
	}
	return c, true
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.Store.SettlementsByOwner(r.Context(), ownerFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]settlementSummary, 0, len(settlements))
	for _, st := range settlements {
		out = append(out, summarize(st))
	}
	writeJSON(w, out)
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.Actions.CreateSettlement(r.Context(), ownerFrom(r.Context()).ID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	gs, err := s.Store.GameState(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeStatus(w, http.StatusCreated, s.detail(c, gs.CurrentSeason))
}

func (s *Server) handleSettlementDetail(w http.ResponseWriter, r *http.Request) {
	c, ok := s.ownedColony(w, r)
	if !ok {
		return
	}
	gs, err := s.Store.GameState(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, s.detail(c, gs.CurrentSeason))
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	c, ok := s.ownedColony(w, r)
	if !ok {
		return
	}

	tiles := make([]tileView, 0, len(c.Tiles))
	for _, t := range c.Tiles {
		tiles = append(tiles, tileView{
			MapTile:  t,
			Building: c.BuildingAt(t.X, t.Y),
			Node:     c.NodeOnTile(t.ID),
		})
	}
	writeJSON(w, map[string]any{
		"grid_size": s.Rules.GridSize,
		"tiles":     tiles,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEventLimit {
			writeError(w, r, world.Invalidf("limit must be 1-%d", maxEventLimit))
			return
		}
		limit = n
	}

	c, ok := s.ownedColony(w, r)
	if !ok {
		return
	}
	events, err := s.Store.RecentEvents(r.Context(), c.Settlement.ID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, events)
}
