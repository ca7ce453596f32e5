package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/eventlog"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/messaging"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/persistence"
)

const hubBuffer = 64

// app holds the collaborators shared by every command.
type app struct {
	cfg     *config.Config
	db      *persistence.DB
	log     *eventlog.Log
	hub     *eventlog.Hub
	closers []func()
}

// openApp opens the store and wires the event log. With publish set, events
// also go to NATS when it is configured.
func openApp(cfg *config.Config, publish bool) (*app, error) {
	s := &cfg.Server
	if err := os.MkdirAll(filepath.Dir(s.Database), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := persistence.Open(s.Database, persistence.Options{
		Retry:  s.Retry,
		Limits: cfg.Rules.Limits(),
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("database opened", "path", s.Database)

	hub := eventlog.NewHub(hubBuffer)
	log, err := eventlog.New(db, eventlog.WithPublisher(hub))
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{cfg: cfg, db: db, log: log, hub: hub}
	if publish && s.NATS.Enabled() {
		if err := a.connectNATS(); err != nil {
			a.Close()
			return nil, err
		}
	}
	db.SetSink(log)
	return a, nil
}

func (a *app) connectNATS() error {
	n := a.cfg.Server.NATS
	url := n.URL

	if n.Embedded {
		var opts []messaging.ServerOpt
		if n.Host != "" {
			opts = append(opts, messaging.WithHost(n.Host))
		}
		if n.Port != 0 {
			opts = append(opts, messaging.WithPort(n.Port))
		}
		ns, err := messaging.NewServer(opts...)
		if err != nil {
			return err
		}
		if err := ns.Start(); err != nil {
			return err
		}
		a.closers = append(a.closers, ns.Shutdown)
		url = ns.ClientURL()
	}

	pub, err := messaging.Connect(url, n.Subject)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, pub.Close)
	a.log.AddPublisher(pub)
	slog.Info("publishing events to nats", "url", url, "subject", n.Subject)
	return nil
}

// Close releases everything in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	if err := a.db.Close(); err != nil {
		slog.Warn("closing database", "error", err)
	}
}
