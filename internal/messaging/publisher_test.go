package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-testutil"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(WithPort(-1), WithStartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("starting server: %v", err)
	}
	t.Cleanup(s.Shutdown)
	return s
}

func TestSubject(t *testing.T) {
	testutil.AssertEqual(t, "settlement",
		Subject("aurora.events", world.Event{SettlementID: 12, Kind: world.EventVillagerDead}),
		"aurora.events.12.villager_dead")
	testutil.AssertEqual(t, "world wide",
		Subject("aurora.events", world.Event{SettlementID: world.WorldWide, Kind: world.EventSeasonChanged}),
		"aurora.events.0.season_changed")
}

func TestPublisher_DeliversJSON(t *testing.T) {
	s := startServer(t)

	sub, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer sub.Close()

	msgs, err := sub.SubscribeSync("aurora.events.7.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	if err := sub.Flush(); err != nil {
		t.Fatalf("flushing: %v", err)
	}

	pub, err := Connect(s.ClientURL(), "aurora.events")
	if err != nil {
		t.Fatalf("connecting publisher: %v", err)
	}
	defer pub.Close()

	ctx := context.Background()
	_ = pub.Publish(ctx, world.Event{SettlementID: 8, Kind: world.EventBuildingPlaced})
	err = pub.Publish(ctx, world.Event{SettlementID: 7, Tick: 3, Kind: world.EventResourceDepleted, Description: "Skyberry Bush ran out of food"})
	if err != nil {
		t.Fatalf("publishing: %v", err)
	}

	msg, err := msgs.NextMsg(2 * time.Second)
	if err != nil {
		t.Fatalf("waiting for message: %v", err)
	}
	testutil.AssertEqual(t, "subject", msg.Subject, "aurora.events.7.resource_depleted")

	var got world.Event
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	testutil.AssertEqual(t, "tick", got.Tick, uint64(3))
	testutil.AssertEqual(t, "description", got.Description, "Skyberry Bush ran out of food")
}
