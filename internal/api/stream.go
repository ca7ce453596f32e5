package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

const (
	streamCatchUp = 10 // Recent events replayed to a new subscriber
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts same-host requests, non-browser clients and the
// configured CORS origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.CORSOrigin == "*" || origin == s.CORSOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// handleStream pushes the settlement's events over a websocket. New
// subscribers first get the most recent events, oldest first.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		writeStatus(w, http.StatusServiceUnavailable, errorBody{Error: "event streaming disabled"})
		return
	}
	c, ok := s.ownedColony(w, r)
	if !ok {
		return
	}
	id := c.Settlement.ID

	// Subscribe before reading the backlog so nothing falls in between.
	// Events already replayed are skipped by id.
	sub := s.Hub.Subscribe(id)
	defer s.Hub.Unsubscribe(sub)

	recent, err := s.Store.RecentEvents(r.Context(), id, streamCatchUp)
	if err != nil {
		writeError(w, r, err)
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "settlement", id, "error", err)
		return
	}
	defer conn.Close()
	slog.Debug("stream opened", "settlement", id, "subscribers", s.Hub.Len())

	// The read loop only watches for the client going away and keeps the
	// pong deadline fresh.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(e world.Event) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(e); err != nil {
			slog.Debug("stream write failed", "settlement", id, "error", err)
			return false
		}
		return true
	}

	var replayed int64
	for i := len(recent) - 1; i >= 0; i-- {
		if !send(recent[i]) {
			return
		}
		replayed = max(replayed, recent[i].ID)
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			slog.Debug("stream closed by client", "settlement", id, "dropped", sub.Dropped())
			return
		case <-r.Context().Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			if e.ID != 0 && e.ID <= replayed {
				continue
			}
			if !send(e) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
