package httpapi

import (
	"context"
	"net/http"

	"mixtape/internal/models"
)

// toggleLiked runs one like/unlike operation and writes the updated user.
// Repeat calls settle on the same response.
func (s *Server) toggleLiked(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, itemID string) (*models.User, error)) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	itemID := r.PathValue("id")
	if itemID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing item id"})
		return
	}

	updated, err := op(r.Context(), user.ID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleLikeTrack(w http.ResponseWriter, r *http.Request) {
	s.toggleLiked(w, r, s.library.LikeTrack)
}

func (s *Server) handleUnlikeTrack(w http.ResponseWriter, r *http.Request) {
	s.toggleLiked(w, r, s.library.UnlikeTrack)
}

func (s *Server) handleLikeAlbum(w http.ResponseWriter, r *http.Request) {
	s.toggleLiked(w, r, s.library.LikeAlbum)
}

func (s *Server) handleUnlikeAlbum(w http.ResponseWriter, r *http.Request) {
	s.toggleLiked(w, r, s.library.UnlikeAlbum)
}

func (s *Server) handleLikeArtist(w http.ResponseWriter, r *http.Request) {
	s.toggleLiked(w, r, s.library.LikeArtist)
}

func (s *Server) handleUnlikeArtist(w http.ResponseWriter, r *http.Request) {
	s.toggleLiked(w, r, s.library.UnlikeArtist)
}

func (s *Server) handleLikePlaylist(w http.ResponseWriter, r *http.Request) {
	s.toggleLiked(w, r, s.library.LikePlaylist)
}

func (s *Server) handleUnlikePlaylist(w http.ResponseWriter, r *http.Request) {
	s.toggleLiked(w, r, s.library.UnlikePlaylist)
}
