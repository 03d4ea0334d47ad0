package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/justinabrahms/lanchess/internal/chess"
	"github.com/justinabrahms/lanchess/internal/match"
	"github.com/rs/zerolog"
)

// Source is the read side of a running match.
type Source interface {
	ID() string
	Snapshot() (chess.Snapshot, error)
	History() ([]chess.Move, error)
}

type Service struct {
	source Source
	hub    *Hub
	player string
	logger zerolog.Logger
}

func NewService(source Source, hub *Hub, player string, logger zerolog.Logger) *Service {
	return &Service{
		source: source,
		hub:    hub,
		player: player,
		logger: logger,
	}
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"match":      s.source.ID(),
		"player":     s.player,
		"spectators": s.hub.ClientCount(),
	})
}

// BoardHandler returns the current position.
func (s *Service) BoardHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Snapshot()
	if err != nil {
		s.unavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// MovesHandler returns the accepted moves in order.
func (s *Service) MovesHandler(w http.ResponseWriter, r *http.Request) {
	moves, err := s.source.History()
	if err != nil {
		s.unavailable(w, err)
		return
	}
	if moves == nil {
		moves = []chess.Move{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"moves": moves,
		"total": len(moves),
	})
}

func (s *Service) unavailable(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, match.ErrStopped) {
		status = http.StatusServiceUnavailable
	}
	s.logger.Error().Err(err).Msg("Failed to read match state")
	http.Error(w, "Match unavailable", status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
