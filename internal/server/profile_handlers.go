package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
	"github.com/auralabs/aura-server/internal/repository"
)

type updateProfileRequest struct {
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	Bio    string   `json:"bio"`
	Photos []string `json:"photos"`
	Tags   []string `json:"tags"`
}

// handleUpdateProfile overwrites the caller's own profile fields.
// Profiles are owner-mutated only: the target ID is always the caller.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	repo := repository.NewProfileRepository(s.appCtx.DB)
	user := &db.User{
		ID:     userID(r),
		Name:   req.Name,
		Age:    req.Age,
		Bio:    req.Bio,
		Photos: req.Photos,
		Tags:   req.Tags,
	}
	if err := repo.UpdateProfile(r.Context(), user); err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	fresh, err := repo.GetByID(r.Context(), user.ID)
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(fresh))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, s.appCtx.Logger, svcErr.ErrInvalidArgument)
		return
	}

	user, err := repository.NewProfileRepository(s.appCtx.DB).GetByID(r.Context(), id)
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(user))
}
