package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/recitals/internal/middleware"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/respond"
)

type songResponse struct {
	Song *models.Song `json:"song"`
}

type songListResponse struct {
	Songs []*models.Song `json:"songs"`
	Count int            `json:"count"`
}

func (s *Server) listSongs(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	songs, err := s.deps.Songs.List(r.Context(), page)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, songListResponse{Songs: songs, Count: len(songs)})
}

func (s *Server) createSong(w http.ResponseWriter, r *http.Request) {
	var input models.Song
	if err := decodeWrapped(w, r, "song", &input); err != nil {
		respond.Error(w, r, err)
		return
	}

	song, err := s.deps.Songs.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, songResponse{Song: song})
}

func (s *Server) getSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.deps.Songs.Get(r.Context(), mux.Vars(r)["songId"])
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, songResponse{Song: song})
}

func (s *Server) patchSong(w http.ResponseWriter, r *http.Request) {
	var patch models.SongPatch
	if err := decodeWrapped(w, r, "song", &patch); err != nil {
		respond.Error(w, r, err)
		return
	}

	song, err := s.deps.Songs.Update(r.Context(), mux.Vars(r)["songId"], patch)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, songResponse{Song: song})
}

func (s *Server) deleteSong(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Songs.Delete(r.Context(), mux.Vars(r)["songId"]); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, nil)
}
