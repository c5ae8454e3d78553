package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/respond"
)

type userResponse struct {
	User *models.User `json:"user"`
}

type userListResponse struct {
	Users []*models.User `json:"users"`
	Count int            `json:"count"`
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	users, err := s.deps.Users.List(r.Context(), page)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, userListResponse{Users: users, Count: len(users)})
}

func (s *Server) patchUser(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := s.deps.Users.SetRole(r.Context(), mux.Vars(r)["userId"], req.Role)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, userResponse{User: user})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Users.Delete(r.Context(), mux.Vars(r)["userId"]); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, nil)
}
