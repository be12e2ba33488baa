package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/auralabs/aura-server/internal/db"
	"github.com/auralabs/aura-server/internal/genai"
)

type messageView struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  uint64    `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageView(m *db.Message) messageView {
	return messageView{
		ID:        m.ID,
		MatchID:   m.MatchID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var token *string
	if v := r.URL.Query().Get("page_token"); v != "" {
		token = &v
	}

	messages, nextToken, err := s.chats.History(r.Context(), mux.Vars(r)["id"], userID(r), token, 0)
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	views := make([]messageView, 0, len(messages))
	for i := range messages {
		views = append(views, toMessageView(&messages[i]))
	}
	resp := map[string]any{"messages": views}
	if nextToken != nil {
		resp["next_page_token"] = *nextToken
	}
	writeJSON(w, http.StatusOK, resp)
}

type sendRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	msg, err := s.chats.Send(r.Context(), mux.Vars(r)["id"], userID(r), req.Text)
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageView(msg))
}

func (s *Server) handleSuggestOpener(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "them"
	}

	// best-effort: the suggester itself degrades to a static fallback
	line, err := s.suggester.SuggestOpener(r.Context(), name)
	if err != nil {
		s.appCtx.Logger.Warn("opener suggestion failed", "err", err)
		line = genai.FallbackOpener
	}
	writeJSON(w, http.StatusOK, map[string]string{"suggestion": line})
}

func (s *Server) handleTrialStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.trial.Status(r.Context(), userID(r))
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
