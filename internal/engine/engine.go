// Package engine advances the world one tick at a time.
// A tick is a fixed pipeline of phases; each phase runs once per settlement
// as its own store transaction, so a failing settlement never blocks the rest.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Store is the part of the world store the engine drives.
type Store interface {
	AdvanceClock(ctx context.Context, fn func(gs *world.GameState)) (world.GameState, error)
	SettlementIDs(ctx context.Context) ([]int64, error)
	UpdateColony(ctx context.Context, id int64, fn func(c *world.Colony) error) error
}

// Recorder receives events that are not tied to one settlement's unit.
type Recorder interface {
	Record(ctx context.Context, events []world.Event)
}

// Report summarizes one completed tick.
type Report struct {
	Tick          uint64        `json:"tick"`
	Season        string        `json:"season"`
	SeasonChanged bool          `json:"season_changed"`
	Settlements   int           `json:"settlements"`
	Failed        int           `json:"failed"` // Settlements with at least one failed phase
	Duration      time.Duration `json:"duration"`
}

// Engine runs the tick pipeline against a Store.
type Engine struct {
	store    Store
	rules    *config.Rules
	recorder Recorder
	seed     int64
	workers  int

	mu sync.Mutex // serializes Advance
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed sets the world seed recruitment draws derive from.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithWorkers bounds how many settlements a phase processes at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRecorder sets the receiver of world-wide events such as season changes.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New creates an engine.
func New(store Store, rules *config.Rules, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		rules:   rules,
		workers: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// tickContext is what every phase of one tick shares.
type tickContext struct {
	tick   uint64
	season config.Season
}

// phase mutates one settlement. It runs inside that settlement's transaction.
type phase struct {
	name  string
	apply func(c *world.Colony, tc tickContext) error
}

func (e *Engine) pipeline(tick uint64) []phase {
	phases := []phase{
		{name: "construction", apply: e.construct},
		{name: "housing", apply: e.rehouse},
	}
	if interval := max(e.rules.ProductionInterval, 1); tick%interval == 0 {
		phases = append(phases, phase{name: "production", apply: e.produce})
	}
	return append(phases,
		phase{name: "feeding", apply: e.feed},
		phase{name: "lifecycle", apply: e.lifecycle},
		phase{name: "gathering", apply: e.gather},
	)
}

// Advance runs one full tick. Only a failure of the clock phase or of
// listing settlements is returned; per-settlement failures are logged and
// counted in the report.
func (e *Engine) Advance(ctx context.Context) (Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	var previous string
	gs, err := e.store.AdvanceClock(ctx, func(gs *world.GameState) {
		previous = gs.CurrentSeason
		advanceClock(e.rules, gs)
	})
	if err != nil {
		return Report{}, fmt.Errorf("clock phase: %w", err)
	}

	report := Report{
		Tick:          gs.TickCount,
		Season:        gs.CurrentSeason,
		SeasonChanged: previous != "" && previous != gs.CurrentSeason,
	}
	if report.SeasonChanged {
		e.record(ctx, world.Event{
			SettlementID: world.WorldWide,
			Tick:         gs.TickCount,
			Kind:         world.EventSeasonChanged,
			Data:         map[string]any{"from": previous, "to": gs.CurrentSeason},
		})
	}

	ids, err := e.store.SettlementIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("listing settlements: %w", err)
	}
	report.Settlements = len(ids)

	tc := tickContext{tick: gs.TickCount, season: e.rules.Season(gs.CurrentSeason)}
	failed := make(map[int64]bool)
	for _, ph := range e.pipeline(gs.TickCount) {
		for _, id := range e.runPhase(ctx, ph, ids, tc) {
			failed[id] = true
		}
	}
	report.Failed = len(failed)
	report.Duration = time.Since(start)

	slog.Info("tick complete",
		"tick", report.Tick,
		"season", report.Season,
		"settlements", report.Settlements,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

// runPhase applies ph to every settlement on a bounded worker pool and
// returns the ids that failed.
func (e *Engine) runPhase(ctx context.Context, ph phase, ids []int64, tc tickContext) []int64 {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []int64
		sem    = make(chan struct{}, e.workers)
	)

	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(id int64) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := e.update(ctx, ph, id, tc); err != nil {
				slog.Error("phase failed", "phase", ph.name, "settlement", id, "tick", tc.tick, "error", err)
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	return failed
}

// update runs one phase for one settlement. A panic is turned into an error
// so it fails only that settlement.
func (e *Engine) update(ctx context.Context, ph phase, id int64, tc tickContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic in %s phase: %v", world.ErrInvariant, ph.name, r)
		}
	}()
	return e.store.UpdateColony(ctx, id, func(c *world.Colony) error {
		return ph.apply(c, tc)
	})
}

func (e *Engine) record(ctx context.Context, events ...world.Event) {
	if e.recorder != nil {
		e.recorder.Record(ctx, events)
	}
}

// advanceClock increments the tick and rolls the season every SeasonLength
// ticks. A fresh world starts in the first season.
func advanceClock(rules *config.Rules, gs *world.GameState) {
	gs.TickCount++
	if gs.CurrentSeason == "" {
		gs.CurrentSeason = rules.FirstSeason()
	}
	if rules.SeasonLength > 0 && gs.TickCount%rules.SeasonLength == 0 {
		gs.CurrentSeason = rules.NextSeason(gs.CurrentSeason)
	}
}
