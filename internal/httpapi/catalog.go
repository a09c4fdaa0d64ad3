package httpapi

import (
	"net/http"
	"strconv"
)

const defaultSearchLimit = 20

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	if user := s.currentUser(w, r); user == nil {
		return
	}

	track, err := s.catalog.FindTrack(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	if user := s.currentUser(w, r); user == nil {
		return
	}

	album, err := s.catalog.FindAlbum(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	if user := s.currentUser(w, r); user == nil {
		return
	}

	artist, err := s.catalog.FindArtist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

// handleSearch proxies a catalog search. The type parameter selects the item
// kind; it defaults to tracks.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if user := s.currentUser(w, r); user == nil {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing q parameter"})
		return
	}

	limit := defaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 50 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit parameter"})
			return
		}
		limit = parsed
	}

	var (
		results any
		err     error
	)
	switch kind := r.URL.Query().Get("type"); kind {
	case "", "track":
		results, err = s.catalog.SearchTracks(r.Context(), query, limit)
	case "album":
		results, err = s.catalog.SearchAlbums(r.Context(), query, limit)
	case "artist":
		results, err = s.catalog.SearchArtists(r.Context(), query, limit)
	case "playlist":
		results, err = s.catalog.SearchPlaylists(r.Context(), query, limit)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid type parameter"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Results any `json:"results"`
	}{Results: results})
}
