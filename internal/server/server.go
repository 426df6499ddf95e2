// Package server exposes the aggregation daemon's API: REST endpoints for
// the latest telemetry and a websocket stream of live updates.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/artemisops/orbitdeck/internal/feeds"
	"github.com/artemisops/orbitdeck/internal/logging"
	"github.com/artemisops/orbitdeck/internal/state"
	"github.com/artemisops/orbitdeck/internal/store"
)

// SnapshotTTL is how old a persisted snapshot may be before responses mark
// it stale.
const SnapshotTTL = 10 * time.Minute

// Server serves the daemon API from the shared state manager, with the
// persistent store as fallback when no live data has arrived yet.
type Server struct {
	state  *state.Manager
	store  *store.Store
	hub    *Hub
	logger *logging.Logger

	upgrader websocket.Upgrader
}

// New creates a Server.
func New(st *state.Manager, db *store.Store, hub *Hub, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		state:  st,
		store:  db,
		hub:    hub,
		logger: logger.Named("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard API is same-host or trusted-LAN only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/mission", s.handleMission)
	mux.HandleFunc("/api/missions", s.handleMissions)
	mux.HandleFunc("/api/iss/position", s.handlePosition)
	mux.HandleFunc("/api/iss/crew", s.handleCrew)
	mux.HandleFunc("/api/location", s.handleLocation)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// envelope is the standard REST response shape.
type envelope struct {
	Data  interface{} `json:"data"`
	Stale bool        `json:"stale,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleMission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := s.state.Snapshot()
	if snap.Mission.Slug == "" {
		s.writeError(w, http.StatusNotFound, "no active mission")
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Data: snap.Mission})
}

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "no mission catalog")
		return
	}
	all, err := s.store.Missions()
	if err != nil {
		s.logger.Error("load mission catalog: %v", err)
		s.writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Data: all})
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.state.Snapshot()
	if snap.Position != nil {
		s.writeJSON(w, http.StatusOK, envelope{Data: snap.Position})
		return
	}

	// No live fix yet; serve the persisted snapshot with a staleness
	// marker rather than an error.
	if s.store != nil {
		var pos feeds.Position
		stale, err := s.store.Snapshot(store.KindPosition, SnapshotTTL, &pos)
		if err == nil {
			s.writeJSON(w, http.StatusOK, envelope{Data: pos, Stale: stale})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("load cached position: %v", err)
		}
	}

	s.writeError(w, http.StatusNotFound, "no position available")
}

func (s *Server) handleCrew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.state.Snapshot()
	if len(snap.Crew) > 0 {
		s.writeJSON(w, http.StatusOK, envelope{Data: snap.Crew})
		return
	}

	if s.store != nil {
		var crew []feeds.CrewMember
		stale, err := s.store.Snapshot(store.KindCrew, SnapshotTTL, &crew)
		if err == nil {
			s.writeJSON(w, http.StatusOK, envelope{Data: crew, Stale: stale})
			return
		}
	}

	s.writeJSON(w, http.StatusOK, envelope{Data: []feeds.CrewMember{}})
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := s.state.Snapshot()
	s.writeJSON(w, http.StatusOK, envelope{Data: snap.Location})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	events := s.state.RecentEvents(50)
	if events == nil {
		events = []state.Event{}
	}
	s.writeJSON(w, http.StatusOK, envelope{Data: events})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed: %v", err)
		return
	}
	// Push current state before the connection joins the broadcast set, so
	// clients render without waiting for the next poll. gorilla permits
	// only one concurrent writer per connection; once registered, all
	// writes go through the hub lock.
	snap := s.state.Snapshot()
	if snap.Position != nil {
		if err := conn.WriteJSON(Message{Type: "position", Data: snap.Position}); err != nil {
			conn.Close()
			return
		}
	}
	s.hub.Register(conn)

	// Reader loop exists only to detect closes; the API is push-only.
	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
