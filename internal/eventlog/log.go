// Package eventlog stores and fans out settlement events. Recording is
// fire-and-forget: failures are logged and never reach the simulation.
package eventlog

import (
	"context"
	"log/slog"
	"maps"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Store persists events and assigns their ids.
type Store interface {
	AppendEvents(ctx context.Context, events []world.Event) error
}

// Publisher delivers stored events to consumers outside the store.
type Publisher interface {
	Publish(ctx context.Context, e world.Event) error
}

// Log records events: it describes, stores and publishes them.
type Log struct {
	store      Store
	render     renderer
	publishers []Publisher
}

type Option func(*options)

type options struct {
	templates  map[world.EventKind]string
	publishers []Publisher
}

// WithTemplates overrides the description templates of some event kinds.
func WithTemplates(t map[world.EventKind]string) Option {
	return func(o *options) { maps.Copy(o.templates, t) }
}

// WithPublisher adds a publisher every recorded event is sent to.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publishers = append(o.publishers, p) }
}

// New creates a log backed by store.
func New(store Store, opts ...Option) (*Log, error) {
	o := &options{templates: maps.Clone(DefaultTemplates)}
	for _, opt := range opts {
		opt(o)
	}

	r, err := newRenderer(o.templates)
	if err != nil {
		return nil, err
	}
	return &Log{store: store, render: r, publishers: o.publishers}, nil
}

// AddPublisher registers another publisher. It must be called before the
// log is shared between goroutines.
func (l *Log) AddPublisher(p Publisher) {
	l.publishers = append(l.publishers, p)
}

// Record describes events that have no description, stores them and
// publishes them. The caller's slice is not modified.
func (l *Log) Record(ctx context.Context, events []world.Event) {
	if len(events) == 0 {
		return
	}

	batch := make([]world.Event, len(events))
	copy(batch, events)

	for i := range batch {
		if batch[i].Description != "" {
			continue
		}
		desc, err := l.render.describe(batch[i])
		if err != nil {
			slog.Warn("event description failed", "kind", batch[i].Kind, "error", err)
		}
		batch[i].Description = desc
	}

	if err := l.store.AppendEvents(ctx, batch); err != nil {
		slog.Warn("storing events failed", "count", len(batch), "error", err)
	}

	for _, e := range batch {
		for _, p := range l.publishers {
			if err := p.Publish(ctx, e); err != nil {
				slog.Warn("publishing event failed", "kind", e.Kind, "settlement", e.SettlementID, "error", err)
			}
		}
	}
}
