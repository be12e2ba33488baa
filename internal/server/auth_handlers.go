package server

import (
	"net/http"

	"github.com/auralabs/aura-server/internal/db"
	"github.com/auralabs/aura-server/internal/service/auth"
)

type profileView struct {
	ID       uint64   `json:"id"`
	Name     string   `json:"name"`
	Age      int      `json:"age"`
	Bio      string   `json:"bio"`
	Photos   []string `json:"photos"`
	Tags     []string `json:"tags"`
	Verified bool     `json:"verified"`
}

func toProfileView(u *db.User) profileView {
	return profileView{
		ID:       u.ID,
		Name:     u.Name,
		Age:      u.Age,
		Bio:      u.Bio,
		Photos:   u.Photos,
		Tags:     u.Tags,
		Verified: u.Verified,
	}
}

type signUpRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Age      int      `json:"age"`
	Bio      string   `json:"bio"`
	Photos   []string `json:"photos"`
	Tags     []string `json:"tags"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  profileView `json:"user"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	user, token, err := s.auth.SignUp(r.Context(), auth.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Age:      req.Age,
		Bio:      req.Bio,
		Photos:   req.Photos,
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: toProfileView(user)})
}

type logInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogIn(w http.ResponseWriter, r *http.Request) {
	var req logInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	user, token, err := s.auth.LogIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, s.appCtx.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: toProfileView(user)})
}
