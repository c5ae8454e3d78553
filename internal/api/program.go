package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/recitals/internal/middleware"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/respond"
)

type programResponse struct {
	Count int                  `json:"count"`
	Songs []models.ProgramSong `json:"songs"`
}

type reorderRequest struct {
	Songs []models.SongOrder `json:"songs"`
}

type addSongRequest struct {
	Notes string `json:"notes"`
}

func newProgramResponse(songs []models.ProgramSong) programResponse {
	if songs == nil {
		songs = []models.ProgramSong{}
	}
	return programResponse{Count: len(songs), Songs: songs}
}

func (s *Server) listProgram(w http.ResponseWriter, r *http.Request) {
	songs, err := s.deps.Recitals.ListSongs(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, newProgramResponse(songs))
}

func (s *Server) reorderProgram(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	songs, err := s.deps.Recitals.ReorderSongs(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"], req.Songs)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, newProgramResponse(songs))
}

func (s *Server) addToProgram(w http.ResponseWriter, r *http.Request) {
	var req addSongRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	vars := mux.Vars(r)
	recital, err := s.deps.Recitals.AddSong(r.Context(), middleware.GetUserID(r.Context()), vars["id"], vars["songId"], req.Notes)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, recitalResponse{Recital: recital})
}

func (s *Server) removeFromProgram(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	recital, err := s.deps.Recitals.RemoveSong(r.Context(), middleware.GetUserID(r.Context()), vars["id"], vars["songId"])
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, recitalResponse{Recital: recital})
}
