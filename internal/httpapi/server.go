package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	appplaylists "mixtape/internal/app/playlists"
	"mixtape/internal/app/users"
	"mixtape/internal/billing"
	"mixtape/internal/catalog"
	"mixtape/internal/identity"
	"mixtape/internal/models"
	"mixtape/internal/store"
)

// UserService captures the account-facing operations needed by the HTTP
// handlers.
type UserService interface {
	Register(ctx context.Context, params users.RegisterParams) (*models.User, error)
	Login(ctx context.Context, credential string) (*models.User, error)
	LibraryView(ctx context.Context, userID string) (*models.LibraryView, error)
}

// LibraryService toggles liked-item membership on the acting user's library.
type LibraryService interface {
	LikeTrack(ctx context.Context, userID, trackID string) (*models.User, error)
	UnlikeTrack(ctx context.Context, userID, trackID string) (*models.User, error)
	LikeAlbum(ctx context.Context, userID, albumID string) (*models.User, error)
	UnlikeAlbum(ctx context.Context, userID, albumID string) (*models.User, error)
	LikeArtist(ctx context.Context, userID, artistID string) (*models.User, error)
	UnlikeArtist(ctx context.Context, userID, artistID string) (*models.User, error)
	LikePlaylist(ctx context.Context, userID, playlistID string) (*models.User, error)
	UnlikePlaylist(ctx context.Context, userID, playlistID string) (*models.User, error)
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	ListAll(ctx context.Context) ([]*models.Playlist, error)
	ListCreatedBy(ctx context.Context, userID string) ([]*models.Playlist, error)
	Get(ctx context.Context, id string) (*models.Playlist, error)
	Create(ctx context.Context, userID string, params appplaylists.CreateParams) (*models.Playlist, error)
	Update(ctx context.Context, userID, id string, params appplaylists.CreateParams) (*models.Playlist, error)
	Delete(ctx context.Context, userID, id string) error
	AddTrack(ctx context.Context, playlistID, trackID, userID string) (*models.Playlist, error)
	RemoveTrack(ctx context.Context, playlistID, trackID, userID string) (*models.Playlist, error)
	Mix(ctx context.Context, id1, id2, requesterID string) (*models.Playlist, error)
}

// PaymentService handles checkout creation and webhook processing.
type PaymentService interface {
	Checkout(ctx context.Context, userID string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// CatalogService provides read-only lookup and search over the music catalog.
type CatalogService interface {
	FindTrack(ctx context.Context, id string) (*models.Track, error)
	FindAlbum(ctx context.Context, id string) (*models.Album, error)
	FindArtist(ctx context.Context, id string) (*models.Artist, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]models.Album, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]models.Playlist, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	library   LibraryService
	playlists PlaylistService
	payments  PaymentService
	catalog   CatalogService
}

// New configures a Server with the given service implementations.
func New(
	users UserService,
	library LibraryService,
	playlists PlaylistService,
	payments PaymentService,
	catalog CatalogService,
) *Server {
	return &Server{
		users:     users,
		library:   library,
		playlists: playlists,
		payments:  payments,
		catalog:   catalog,
	}
}

// Routes exposes the HTTP handlers for account, library, playlist, catalog,
// and billing workflows.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Account routes
	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/v1/me", s.handleProfile)
	mux.HandleFunc("GET /api/v1/me/library", s.handleLibrary)
	mux.HandleFunc("GET /api/v1/me/playlists", s.handleMyPlaylists)

	// Liked-item routes
	mux.HandleFunc("PUT /api/v1/me/tracks/{id}", s.handleLikeTrack)
	mux.HandleFunc("DELETE /api/v1/me/tracks/{id}", s.handleUnlikeTrack)
	mux.HandleFunc("PUT /api/v1/me/albums/{id}", s.handleLikeAlbum)
	mux.HandleFunc("DELETE /api/v1/me/albums/{id}", s.handleUnlikeAlbum)
	mux.HandleFunc("PUT /api/v1/me/artists/{id}", s.handleLikeArtist)
	mux.HandleFunc("DELETE /api/v1/me/artists/{id}", s.handleUnlikeArtist)
	mux.HandleFunc("PUT /api/v1/me/liked-playlists/{id}", s.handleLikePlaylist)
	mux.HandleFunc("DELETE /api/v1/me/liked-playlists/{id}", s.handleUnlikePlaylist)

	// Playlist routes
	mux.HandleFunc("GET /api/v1/playlists", s.handleListPlaylists)
	mux.HandleFunc("POST /api/v1/playlists", s.handleCreatePlaylist)
	mux.HandleFunc("POST /api/v1/playlists/mix", s.handleMixPlaylists)
	mux.HandleFunc("GET /api/v1/playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("PUT /api/v1/playlists/{id}", s.handleUpdatePlaylist)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", s.handleDeletePlaylist)
	mux.HandleFunc("POST /api/v1/playlists/{id}/tracks", s.handleAddPlaylistTrack)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/tracks/{trackID}", s.handleRemovePlaylistTrack)

	// Catalog routes
	mux.HandleFunc("GET /api/v1/tracks/{id}", s.handleGetTrack)
	mux.HandleFunc("GET /api/v1/albums/{id}", s.handleGetAlbum)
	mux.HandleFunc("GET /api/v1/artists/{id}", s.handleGetArtist)
	mux.HandleFunc("GET /api/v1/search", s.handleSearch)

	// Billing routes
	mux.HandleFunc("POST /api/v1/billing/checkout", s.handleCheckout)
	mux.HandleFunc("POST /api/v1/webhooks/payment", s.handlePaymentWebhook)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// currentUser authenticates the request from its bearer credential. On
// failure it writes the error response and returns nil.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) *models.User {
	credential := parseBearerToken(r.Header.Get("Authorization"))
	if credential == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return nil
	}

	user, err := s.users.Login(r.Context(), credential)
	if err != nil {
		writeError(w, err)
		return nil
	}
	return user
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorResponse{Error: err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, appplaylists.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrPlaylistNotFound),
		errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUserExists),
		errors.Is(err, identity.ErrAccountExists),
		errors.Is(err, appplaylists.ErrDuplicateTrack):
		return http.StatusConflict
	case errors.Is(err, billing.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrUnavailable),
		errors.Is(err, identity.ErrUnavailable),
		errors.Is(err, billing.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
