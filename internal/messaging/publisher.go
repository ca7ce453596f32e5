// Package messaging publishes settlement events on NATS so that consumers
// outside the process can follow the world.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Publisher sends events to NATS as JSON.
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect dials url and returns a publisher writing under prefix.
func Connect(url, prefix string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("aurora"))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	return &Publisher{conn: conn, prefix: prefix}, nil
}

// Subject is where e is published: <prefix>.<settlement id>.<kind>.
// World-wide events use settlement id 0.
func Subject(prefix string, e world.Event) string {
	return fmt.Sprintf("%s.%d.%s", prefix, e.SettlementID, e.Kind)
}

// Publish sends e. Delivery is best effort.
func (p *Publisher) Publish(_ context.Context, e world.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return p.conn.Publish(Subject(p.prefix, e), data)
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
