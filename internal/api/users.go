package api

import (
	"net/http"

	"github.com/mmynk/recitals/internal/middleware"
	"github.com/mmynk/recitals/internal/respond"
	"github.com/mmynk/recitals/internal/service"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func newSessionResponse(session *service.Session) sessionResponse {
	return sessionResponse{Token: session.Token, Email: session.User.Email}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	session, err := s.deps.Auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, newSessionResponse(session))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	session, err := s.deps.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, newSessionResponse(session))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, userResponse{User: middleware.UserFromContext(r.Context())})
}
