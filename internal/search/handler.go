package search

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Handler responds to local playlist search requests backed by the Store.
type Handler struct {
	store Store
}

// NewHandler builds a handler using the provided store implementation.
func NewHandler(store Store) http.Handler {
	return &Handler{store: store}
}

// Response models the payload returned by the search handler.
type Response struct {
	Sections []Section `json:"sections"`
}

// Section groups related search results.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item represents a single search result entry.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, Response{Sections: []Section{}})
		return
	}

	limit := 10
	if rawLimit := strings.TrimSpace(r.URL.Query().Get("limit")); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.store.Search(r.Context(), query, limit)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(results))
}

func buildResponse(results Results) Response {
	var sections []Section

	if len(results.Playlists) > 0 {
		items := make([]Item, 0, len(results.Playlists))
		for _, playlist := range results.Playlists {
			items = append(items, Item{
				ID:          playlist.ID,
				Title:       playlist.Name,
				Subtitle:    subtitleFor(playlist),
				Description: playlist.Description,
				Thumbnail:   playlist.ImageURL,
			})
		}
		sections = append(sections, Section{Name: "playlists", Items: items})
	}

	if len(results.Owners) > 0 {
		items := make([]Item, 0, len(results.Owners))
		for _, owner := range results.Owners {
			items = append(items, Item{
				ID:       owner.ID,
				Title:    owner.Name,
				Subtitle: pluralize(owner.PlaylistCount, "playlist"),
			})
		}
		sections = append(sections, Section{Name: "owners", Items: items})
	}

	return Response{Sections: sections}
}

func subtitleFor(playlist PlaylistResult) string {
	tracks := pluralize(playlist.TrackCount, "track")
	if playlist.OwnerName == "" {
		return tracks
	}
	if tracks == "" {
		return playlist.OwnerName
	}
	return playlist.OwnerName + " • " + tracks
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pluralize(count int, singular string) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 " + singular
	default:
		return strconv.Itoa(count) + " " + singular + "s"
	}
}
