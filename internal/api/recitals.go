package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/recitals/internal/middleware"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/respond"
)

type recitalResponse struct {
	Recital *models.Recital `json:"recital"`
}

type recitalListResponse struct {
	Recitals []*models.Recital `json:"recitals"`
	Count    int               `json:"count"`
}

func (s *Server) createRecital(w http.ResponseWriter, r *http.Request) {
	var input models.Recital
	if err := decodeWrapped(w, r, "recital", &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	recital, err := s.deps.Recitals.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, recitalResponse{Recital: recital})
}

func (s *Server) listRecitals(w http.ResponseWriter, r *http.Request) {
	recitals, err := s.deps.Recitals.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, recitalListResponse{Recitals: recitals, Count: len(recitals)})
}

func (s *Server) getRecital(w http.ResponseWriter, r *http.Request) {
	recital, err := s.deps.Recitals.Get(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, recitalResponse{Recital: recital})
}

func (s *Server) replaceRecital(w http.ResponseWriter, r *http.Request) {
	var input models.Recital
	if err := decodeWrapped(w, r, "recital", &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	recital, err := s.deps.Recitals.Replace(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"], input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, recitalResponse{Recital: recital})
}

func (s *Server) patchRecital(w http.ResponseWriter, r *http.Request) {
	var patch models.RecitalPatch
	if err := decodeWrapped(w, r, "recital", &patch); err != nil {
		respond.Error(w, r, err)
		return
	}

	recital, err := s.deps.Recitals.Patch(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"], patch)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, recitalResponse{Recital: recital})
}

func (s *Server) deleteRecital(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Recitals.Delete(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, nil)
}

func (s *Server) listAllRecitals(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	recitals, err := s.deps.Recitals.ListAll(r.Context(), page)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, recitalListResponse{Recitals: recitals, Count: len(recitals)})
}
