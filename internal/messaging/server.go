package messaging

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// Server is an in-process NATS server for single-node deployments.
type Server struct {
	ns *server.Server

	startupTimeout time.Duration
	host           string
	port           int
}

type ServerOpt func(*Server)

// WithStartTimeout sets how long Start waits for the server to accept clients.
func WithStartTimeout(d time.Duration) ServerOpt {
	return func(s *Server) {
		s.startupTimeout = d
	}
}

// WithHost sets the listen host.
func WithHost(host string) ServerOpt {
	return func(s *Server) {
		s.host = host
	}
}

// WithPort sets the listen port. -1 picks a random free port.
func WithPort(port int) ServerOpt {
	return func(s *Server) {
		s.port = port
	}
}

// NewServer configures an embedded server. It does not listen until Start.
func NewServer(opts ...ServerOpt) (*Server, error) {
	s := &Server{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
	}
	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true,
		NoLog:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	s.ns = ns
	return s, nil
}

// Start runs the server and waits until it accepts connections.
func (s *Server) Start() error {
	s.ns.Start()

	if !s.ns.ReadyForConnections(s.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}
	slog.Info("nats server listening", "addr", s.ns.Addr())
	return nil
}

// ClientURL is the address clients connect to.
func (s *Server) ClientURL() string {
	return s.ns.ClientURL()
}

// Shutdown stops the server and waits for it to exit.
func (s *Server) Shutdown() {
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
}
