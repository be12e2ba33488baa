package server

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/auralabs/aura-server/internal/app"
	"github.com/auralabs/aura-server/internal/config"
	"github.com/auralabs/aura-server/internal/genai"
	"github.com/auralabs/aura-server/internal/service/auth"
	"github.com/auralabs/aura-server/internal/service/chat"
	"github.com/auralabs/aura-server/internal/service/discover"
	"github.com/auralabs/aura-server/internal/service/match"
	"github.com/auralabs/aura-server/internal/service/swipe"
	"github.com/auralabs/aura-server/internal/service/trial"
)

// Server wires every service into the HTTP surface: REST for requests,
// WebSocket for live match/message subscriptions.
type Server struct {
	appCtx    *app.AppContext
	auth      *auth.Service
	discover  *discover.Service
	swipes    *swipe.Service
	matches   *match.Service
	chats     *chat.Service
	trial     *trial.Service
	suggester genai.Suggester
}

type Services struct {
	Auth      *auth.Service
	Discover  *discover.Service
	Swipes    *swipe.Service
	Matches   *match.Service
	Chats     *chat.Service
	Trial     *trial.Service
	Suggester genai.Suggester
}

func New(appCtx *app.AppContext, svcs Services) *Server {
	return &Server{
		appCtx:    appCtx,
		auth:      svcs.Auth,
		discover:  svcs.Discover,
		swipes:    svcs.Swipes,
		matches:   svcs.Matches,
		chats:     svcs.Chats,
		trial:     svcs.Trial,
		suggester: svcs.Suggester,
	}
}

// Router builds the full route table with CORS and request logging.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/signup", s.handleSignUp).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogIn).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)
	api.HandleFunc("/profiles/me", s.handleUpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{id:[0-9]+}", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/discover", s.handleDiscover).Methods(http.MethodGet)
	api.HandleFunc("/discover/liked-you", s.handleLikedYou).Methods(http.MethodGet)
	api.HandleFunc("/discover/liked-you/count", s.handleCountLikedYou).Methods(http.MethodGet)
	api.HandleFunc("/swipes", s.handleSwipe).Methods(http.MethodPost)
	api.HandleFunc("/matches", s.handleListMatches).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", s.handleGetMatch).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}/messages", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}/messages", s.handleSend).Methods(http.MethodPost)
	api.HandleFunc("/suggestions/opener", s.handleSuggestOpener).Methods(http.MethodGet)
	api.HandleFunc("/trial", s.handleTrialStatus).Methods(http.MethodGet)

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(s.requireAuth)
	ws.HandleFunc("/matches", s.handleMatchFeed).Methods(http.MethodGet)
	ws.HandleFunc("/matches/{id}/messages", s.handleConversationFeed).Methods(http.MethodGet)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	return s.logRequests(handler)
}

// Start serves HTTP on the configured address, blocking until the
// listener fails.
func (s *Server) Start(cfg *config.Config) error {
	addr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	s.appCtx.Logger.Info("starting http server", "addr", addr)
	return http.ListenAndServe(addr, s.Router())
}
