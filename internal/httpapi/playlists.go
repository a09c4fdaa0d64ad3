package httpapi

import (
	"encoding/json"
	"net/http"

	"mixtape/internal/app/playlists"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type addTrackRequest struct {
	TrackID string `json:"track_id"`
}

type mixRequest struct {
	PlaylistIDs []string `json:"playlist_ids"`
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	if user := s.currentUser(w, r); user == nil {
		return
	}

	list, err := s.playlists.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleMyPlaylists(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	list, err := s.playlists.ListCreatedBy(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	if user := s.currentUser(w, r); user == nil {
		return
	}

	playlist, err := s.playlists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}
	if !user.CanUsePremiumFeatures() {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "playlist creation requires a premium subscription"})
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	created, err := s.playlists.Create(r.Context(), user.ID, playlists.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	updated, err := s.playlists.Update(r.Context(), user.ID, r.PathValue("id"), playlists.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	if err := s.playlists.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddPlaylistTrack(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	var req addTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.TrackID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "track_id is required"})
		return
	}

	updated, err := s.playlists.AddTrack(r.Context(), r.PathValue("id"), req.TrackID, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleRemovePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	updated, err := s.playlists.RemoveTrack(r.Context(), r.PathValue("id"), r.PathValue("trackID"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleMixPlaylists(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}
	if !user.CanUsePremiumFeatures() {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "mixing playlists requires a premium subscription"})
		return
	}

	var req mixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if len(req.PlaylistIDs) != 2 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "exactly two playlist ids are required"})
		return
	}

	mixed, err := s.playlists.Mix(r.Context(), req.PlaylistIDs[0], req.PlaylistIDs[1], user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mixed)
}
