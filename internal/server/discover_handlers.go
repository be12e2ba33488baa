package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	candidates, err := s.discover.NextCandidates(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	views := make([]profileView, 0, len(candidates))
	for i := range candidates {
		views = append(views, toProfileView(&candidates[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": views})
}

func (s *Server) handleLikedYou(w http.ResponseWriter, r *http.Request) {
	var token *string
	if v := r.URL.Query().Get("page_token"); v != "" {
		token = &v
	}

	likers, nextToken, err := s.discover.LikedYou(r.Context(), userID(r), token)
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	resp := map[string]any{"likers": likers}
	if nextToken != nil {
		resp["next_page_token"] = *nextToken
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCountLikedYou(w http.ResponseWriter, r *http.Request) {
	count, err := s.discover.CountLikedYou(r.Context(), userID(r))
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
