package server

import (
	"net/http"

	svcErr "github.com/auralabs/aura-server/internal/errors"
)

type swipeRequest struct {
	TargetID uint64 `json:"target_id"`
	Verdict  string `json:"verdict"` // "like" or "pass"
}

type swipeResponse struct {
	Mutual       bool       `json:"mutual"`
	MatchCreated bool       `json:"match_created"`
	Match        *matchView `json:"match,omitempty"`
}

// handleSwipe records the caller's verdict on a target and reports
// whether it completed a mutual like.
func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	var liked bool
	switch req.Verdict {
	case "like":
		liked = true
	case "pass":
		liked = false
	default:
		writeError(w, s.appCtx.Logger, svcErr.ErrInvalidArgument)
		return
	}

	result, err := s.swipes.Evaluate(r.Context(), userID(r), req.TargetID, liked)
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	resp := swipeResponse{Mutual: result.Mutual, MatchCreated: result.MatchCreated}
	if result.Match != nil {
		v := toMatchView(result.Match)
		resp.Match = &v
	}
	writeJSON(w, http.StatusOK, resp)
}
