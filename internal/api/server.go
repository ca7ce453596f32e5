// Package api provides the HTTP API over the world store.
// Settlement reads and actions require an owner token.
// Creating owners and changing the tick speed require the admin key.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/actions"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/eventlog"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Store is the read side of the world store plus owner management.
type Store interface {
	GameState(ctx context.Context) (world.GameState, error)
	Settlements(ctx context.Context) ([]*world.Settlement, error)
	SettlementsByOwner(ctx context.Context, ownerID int64) ([]*world.Settlement, error)
	LoadColony(ctx context.Context, id int64) (*world.Colony, error)
	RecentEvents(ctx context.Context, settlementID int64, limit int) ([]world.Event, error)
	OwnerStore
}

// Driver is the tick driver as seen by the speed and status endpoints.
type Driver interface {
	Speed() int
	SetSpeed(speed int)
	Stats() (ticks, failed uint64)
}

// Server serves the world over HTTP.
type Server struct {
	Store      Store
	Actions    *actions.Service
	Driver     Driver        // nil when no driver runs in this process
	Hub        *eventlog.Hub // nil disables the event stream
	Rules      *config.Rules
	AdminKey   string // Bearer token for admin endpoints. Empty = admin disabled.
	CORSOrigin string // Allowed origin, "*" for any. Empty = no CORS headers.
	RateLimit  config.RateLimitSettings
	TokenCost  int // bcrypt cost for new owner tokens. 0 = bcrypt.DefaultCost.
}

// Handler builds the routed handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	ipLimiter := NewRateLimiter(s.RateLimit.IPPerSecond, s.RateLimit.IPBurst)
	ownerLimiter := NewRateLimiter(s.RateLimit.PerSecond, s.RateLimit.Burst)
	byIP := func(r *http.Request) string { return "ip:" + clientIP(r, s.RateLimit.TrustProxy) }

	// Token checks cost a bcrypt compare, so the IP bucket runs first.
	owner := func(next http.HandlerFunc) http.HandlerFunc {
		return RateLimitMiddleware(ipLimiter, byIP, s.ownerOnly(next))
	}
	action := func(next http.HandlerFunc) http.HandlerFunc {
		return owner(RateLimitMiddleware(ownerLimiter, byOwner, next))
	}
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return RateLimitMiddleware(ipLimiter, byIP, s.adminOnly(next))
	}

	mux := http.NewServeMux()

	// Public.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/speed", s.handleSpeed)

	// Owner reads.
	mux.HandleFunc("GET /api/v1/settlements", owner(s.handleSettlements))
	mux.HandleFunc("GET /api/v1/settlement/{id}", owner(s.handleSettlementDetail))
	mux.HandleFunc("GET /api/v1/settlement/{id}/map", owner(s.handleMap))
	mux.HandleFunc("GET /api/v1/settlement/{id}/events", owner(s.handleEvents))
	mux.HandleFunc("GET /api/v1/settlement/{id}/stream", owner(s.handleStream))

	// Owner actions, also rate limited per owner.
	mux.HandleFunc("POST /api/v1/settlements", action(s.handleCreateSettlement))
	mux.HandleFunc("POST /api/v1/actions/place-building", action(s.handlePlaceBuilding))
	mux.HandleFunc("POST /api/v1/actions/assign", action(s.handleAssign))
	mux.HandleFunc("POST /api/v1/actions/gather", action(s.handleGather))
	mux.HandleFunc("POST /api/v1/actions/stop-gathering", action(s.handleStopGathering))
	mux.HandleFunc("POST /api/v1/actions/toggle", action(s.handleToggle))

	// Admin.
	mux.HandleFunc("POST /api/v1/owners", admin(s.handleCreateOwner))
	mux.HandleFunc("POST /api/v1/speed", admin(s.handleSpeed))

	return requestLogger(corsMiddleware(s.CORSOrigin, mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// Request contexts derive from ctx, so open event streams close with it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "stream", s.Hub != nil)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http shutdown: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}

// corsMiddleware adds CORS headers for the configured origin.
func corsMiddleware(allowed string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed != "" && origin != "" && (allowed == "*" || allowed == origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

// adminOnly wraps a handler to require the admin bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			writeStatus(w, http.StatusForbidden, errorBody{Error: "admin endpoints disabled (no admin_key set)"})
			return
		}
		if !s.checkBearerToken(r) {
			writeStatus(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	gs, err := s.Store.GameState(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	settlements, err := s.Store.Settlements(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := map[string]any{
		"name":        "Clouds of Aurora",
		"tick":        gs.TickCount,
		"season":      gs.CurrentSeason,
		"settlements": len(settlements),
	}
	if s.Driver != nil {
		ticks, failed := s.Driver.Stats()
		status["speed"] = s.Driver.Speed()
		status["ticks_run"] = ticks
		status["ticks_failed"] = failed
	}
	if s.Hub != nil {
		status["subscribers"] = s.Hub.Len()
	}
	writeJSON(w, status)
}

const maxSpeed = 1000

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Driver == nil {
		writeStatus(w, http.StatusServiceUnavailable, errorBody{Error: "no tick driver in this process"})
		return
	}

	if r.Method == http.MethodPost {
		var req struct {
			Speed *int `json:"speed"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Speed == nil || *req.Speed < 0 || *req.Speed > maxSpeed {
			writeError(w, r, world.Invalidf("speed must be 0-%d", maxSpeed))
			return
		}
		s.Driver.SetSpeed(*req.Speed)
		slog.Info("speed changed", "speed", *req.Speed)
	}

	writeJSON(w, map[string]int{"speed": s.Driver.Speed()})
}

func (s *Server) handleCreateOwner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	owner, token, err := IssueOwner(r.Context(), s.Store, req.Name, s.TokenCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("owner created", "owner", owner.ID, "name", owner.Name)
	writeStatus(w, http.StatusCreated, map[string]any{"owner": owner, "token": token})
}
