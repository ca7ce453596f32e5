package eventlog

import (
	"context"
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

type memoryStore struct {
	events []world.Event
	err    error
}

func (m *memoryStore) AppendEvents(_ context.Context, events []world.Event) error {
	if m.err != nil {
		return m.err
	}
	for i := range events {
		events[i].ID = int64(len(m.events) + 1)
		m.events = append(m.events, events[i])
	}
	return nil
}

type capturePublisher struct {
	got []world.Event
	err error
}

func (c *capturePublisher) Publish(_ context.Context, e world.Event) error {
	c.got = append(c.got, e)
	return c.err
}

func TestDescribe(t *testing.T) {
	tests := map[string]struct {
		event world.Event
		exp   string
	}{
		"building finished": {
			event: world.Event{Kind: world.EventBuildingFinished, Data: map[string]any{"building": "lumber_mill", "x": 2, "y": 3}},
			exp:   "Lumber Mill at (2, 3) is finished",
		},
		"starvation": {
			event: world.Event{Kind: world.EventVillagerDead, Data: map[string]any{"settler": "Alice", "cause": "starvation"}},
			exp:   "Alice died of starvation",
		},
		"recruited homeless": {
			event: world.Event{Kind: world.EventVillagerRecruited, Data: map[string]any{"settler": "Bob", "housed": false}},
			exp:   "Bob joined the settlement but has no home yet",
		},
		"season": {
			event: world.Event{Kind: world.EventSeasonChanged, Data: map[string]any{"from": "Spring", "to": "Summer"}},
			exp:   "Summer has begun",
		},
		"unknown kind": {
			event: world.Event{Kind: "comet_sighted"},
			exp:   "comet sighted",
		},
	}

	r, err := newRenderer(DefaultTemplates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := r.describe(tt.event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "description", got, tt.exp)
		})
	}
}

func TestNew_RejectsBadTemplate(t *testing.T) {
	_, err := New(&memoryStore{}, WithTemplates(map[world.EventKind]string{
		world.EventSeasonChanged: "{{ .to ",
	}))
	testutil.AssertErrorContains(t, err, "season_changed")
}

func TestRecord_StoresAndPublishes(t *testing.T) {
	store := &memoryStore{}
	pub := &capturePublisher{}
	l, err := New(store, WithPublisher(pub))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := []world.Event{
		{SettlementID: 1, Kind: world.EventVillagerDead, Data: map[string]any{"settler": "Alice", "cause": "old age"}},
		{SettlementID: 1, Kind: world.EventBuildingPlaced, Description: "already described"},
	}
	l.Record(context.Background(), events)

	testutil.AssertEqual(t, "stored", len(store.events), 2)
	testutil.AssertEqual(t, "rendered", store.events[0].Description, "Alice died of old age")
	testutil.AssertEqual(t, "kept", store.events[1].Description, "already described")
	testutil.AssertEqual(t, "published", len(pub.got), 2)
	testutil.AssertEqual(t, "published id", pub.got[1].ID, int64(2))
	testutil.AssertEqual(t, "caller untouched", events[0].Description, "")
}

func TestRecord_SwallowsFailures(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	pub := &capturePublisher{err: errors.New("no route")}
	l, err := New(store, WithPublisher(pub))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Record(context.Background(), []world.Event{{SettlementID: 1, Kind: world.EventSeasonChanged, Data: map[string]any{"to": "Winter"}}})

	testutil.AssertEqual(t, "still published", len(pub.got), 1)
	testutil.AssertEqual(t, "description", pub.got[0].Description, "Winter has begun")
}

func TestHub(t *testing.T) {
	h := NewHub(1)
	ctx := context.Background()

	mine := h.Subscribe(1)
	other := h.Subscribe(2)
	testutil.AssertEqual(t, "subscribers", h.Len(), 2)

	_ = h.Publish(ctx, world.Event{SettlementID: 1, Kind: world.EventBuildingPlaced})
	_ = h.Publish(ctx, world.Event{SettlementID: 1, Kind: world.EventBuildingFinished})
	_ = h.Publish(ctx, world.Event{SettlementID: world.WorldWide, Kind: world.EventSeasonChanged})

	e := <-mine.Events()
	testutil.AssertEqual(t, "first", e.Kind, world.EventBuildingPlaced)
	testutil.AssertEqual(t, "dropped", mine.Dropped(), uint64(2))

	e = <-other.Events()
	testutil.AssertEqual(t, "world wide", e.Kind, world.EventSeasonChanged)

	h.Unsubscribe(mine)
	h.Unsubscribe(mine)
	_, open := <-mine.Events()
	testutil.AssertEqual(t, "closed", open, false)
	testutil.AssertEqual(t, "subscribers", h.Len(), 1)
}
