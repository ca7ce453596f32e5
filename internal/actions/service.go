// Package actions implements the player commands that mutate a settlement
// between ticks. Each command is one colony transaction, so it never
// interleaves with a tick phase of the same settlement.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/entropy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

const maxNameLength = 64

// Store is the part of the world store the handlers use.
type Store interface {
	UpdateColony(ctx context.Context, id int64, fn func(c *world.Colony) error) error
	CreateSettlement(ctx context.Context, s *world.Settlement, plots []world.Plot, settlers []*world.Settler) (*world.Colony, error)
	GameState(ctx context.Context) (world.GameState, error)
	Owner(ctx context.Context, id int64) (*world.Owner, error)
}

// Recorder receives events the store does not publish itself.
type Recorder interface {
	Record(ctx context.Context, events []world.Event)
}

// Service runs player actions against the store.
type Service struct {
	store    Store
	rules    *config.Rules
	recorder Recorder
	source   func() entropy.Source
}

type Option func(*Service)

// WithRecorder sets where settlement founding events go.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithSource sets the randomness used for map generation and villager names.
func WithSource(fn func() entropy.Source) Option {
	return func(s *Service) { s.source = fn }
}

// New creates the action service.
func New(store Store, rules *config.Rules, opts ...Option) *Service {
	s := &Service{
		store:  store,
		rules:  rules,
		source: entropy.Crypto,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// update runs fn on a settlement owned by owner.
func (s *Service) update(ctx context.Context, owner, settlementID int64, fn func(c *world.Colony) error) error {
	return s.store.UpdateColony(ctx, settlementID, func(c *world.Colony) error {
		if c.Settlement.OwnerID != owner {
			return fmt.Errorf("%w: settlement %d belongs to another owner", world.ErrForbidden, settlementID)
		}
		return fn(c)
	})
}

// CreateSettlement founds a settlement for owner with the starting stock,
// the starting villagers and a freshly generated map.
func (s *Service) CreateSettlement(ctx context.Context, owner int64, name string) (*world.Colony, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, world.Invalidf("settlement name is required")
	}
	if len(name) > maxNameLength {
		return nil, world.Invalidf("settlement name is longer than %d characters", maxNameLength)
	}
	if _, err := s.store.Owner(ctx, owner); err != nil {
		return nil, err
	}

	src := s.source()
	settlement := &world.Settlement{OwnerID: owner, Name: name, HappinessBoost: 1}
	for res, n := range s.rules.StartingResources {
		settlement.Stocks[res] = n
	}

	settlers := make([]*world.Settler, 0, s.rules.StartingVillagers)
	for range s.rules.StartingVillagers {
		settlers = append(settlers, &world.Settler{
			Name:   entropy.Pick(src, s.rules.Names()),
			Status: world.StatusIdle,
			Mood:   world.MoodContent,
		})
	}

	plots := world.Generate(s.rules.GenConfig(), src)
	slog.Debug("map generated", "name", name, "terrain", world.TerrainCounts(plots))

	c, err := s.store.CreateSettlement(ctx, settlement, plots, settlers)
	if err != nil {
		return nil, fmt.Errorf("creating settlement %q: %w", name, err)
	}

	gs, err := s.store.GameState(ctx)
	if err != nil {
		slog.Warn("reading clock for founding event", "settlement", settlement.ID, "error", err)
	}
	c.Tick = gs.TickCount
	c.Emit(world.EventSettlementFounded, map[string]any{"name": name, "settlers": len(settlers)})
	if s.recorder != nil {
		s.recorder.Record(ctx, c.Events())
	}

	slog.Info("settlement founded", "settlement", settlement.ID, "owner", owner, "name", name, "tiles", len(c.Tiles), "nodes", len(c.Nodes))
	return c, nil
}
