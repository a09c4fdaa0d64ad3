package catalog

import (
	"context"
	"errors"

	"mixtape/internal/models"
)

var (
	// ErrNotFound signals the catalog has no item with the requested id.
	ErrNotFound = errors.New("catalog item not found")
	// ErrUnavailable signals the catalog could not be reached or answered
	// with an unexpected failure.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Client defines the operations the application needs from the external music
// catalog. All implementations are read-only.
type Client interface {
	FindTrack(ctx context.Context, id string) (*models.Track, error)
	FindAlbum(ctx context.Context, id string) (*models.Album, error)
	FindArtist(ctx context.Context, id string) (*models.Artist, error)
	FindPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	FindPlaylistTracks(ctx context.Context, id string) ([]models.Track, error)

	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]models.Album, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]models.Playlist, error)
}
