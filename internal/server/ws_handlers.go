package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/auralabs/aura-server/internal/events"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsFrame struct {
	Type     string `json:"type"` // "snapshot" or "event"
	Snapshot any    `json:"snapshot,omitempty"`
	Event    any    `json:"event,omitempty"`
}

// handleMatchFeed streams the caller's match registry: a snapshot frame,
// then one frame per add/update event until the client disconnects.
func (s *Server) handleMatchFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := s.matches.Subscribe(r.Context(), userID(r))
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		_ = feed.Close()
		return
	}

	views := make([]matchView, 0, len(feed.Snapshot))
	for i := range feed.Snapshot {
		views = append(views, toMatchView(&feed.Snapshot[i]))
	}

	s.streamEvents(conn, wsFrame{Type: "snapshot", Snapshot: views}, feed.Events(), feed.Close)
}

// handleConversationFeed streams one conversation: recent history, then
// each new message as it is appended.
func (s *Server) handleConversationFeed(w http.ResponseWriter, r *http.Request) {
	log, err := s.chats.Subscribe(r.Context(), mux.Vars(r)["id"], userID(r))
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		_ = log.Close()
		return
	}

	views := make([]messageView, 0, len(log.Snapshot))
	for i := range log.Snapshot {
		views = append(views, toMessageView(&log.Snapshot[i]))
	}

	s.streamEvents(conn, wsFrame{Type: "snapshot", Snapshot: views}, log.Events(), log.Close)
}

// streamEvents owns the connection from here on: snapshot first, then the
// event stream, with ping/pong keepalive. Returning closes both the
// socket and the subscription, releasing the server-side listener.
func (s *Server) streamEvents(conn *websocket.Conn, snapshot wsFrame, evs <-chan events.Event, closeSub func() error) {
	defer func() {
		_ = closeSub()
		_ = conn.Close()
	}()

	// read pump: we expect no client frames, but reading drives pong
	// handling and detects disconnects
	done := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snapshot); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-evs:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsFrame{Type: "event", Event: ev}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
