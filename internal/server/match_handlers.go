package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
)

type matchView struct {
	ID            string     `json:"id"`
	Users         []uint64   `json:"users"`
	LastMessage   string     `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toMatchView(m *db.Match) matchView {
	return matchView{
		ID:            m.ID,
		Users:         []uint64{m.UserAID, m.UserBID},
		LastMessage:   m.LastMessage,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
	}
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.matches.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	views := make([]matchView, 0, len(matches))
	for i := range matches {
		views = append(views, toMatchView(&matches[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": views})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.matches.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}
	// a match is only visible to its two participants
	if !m.Involves(userID(r)) {
		writeError(w, s.appCtx.Logger, svcErr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toMatchView(m))
}
