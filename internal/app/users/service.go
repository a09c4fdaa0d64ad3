package users

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"mixtape/internal/identity"
	"mixtape/internal/models"
)

// libraryFanOutLimit bounds the concurrent catalog lookups issued while
// resolving a full library view.
const libraryFanOutLimit = 8

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
}

// Catalog captures the lookups needed to expand liked ids into display items.
type Catalog interface {
	FindTrack(ctx context.Context, id string) (*models.Track, error)
	FindAlbum(ctx context.Context, id string) (*models.Album, error)
	FindArtist(ctx context.Context, id string) (*models.Artist, error)
	FindPlaylist(ctx context.Context, id string) (*models.Playlist, error)
}

// RegisterParams carries the fields needed to open an account.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
}

// Service exposes account and profile workflows.
type Service interface {
	Register(ctx context.Context, params RegisterParams) (*models.User, error)
	Login(ctx context.Context, credential string) (*models.User, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	LibraryView(ctx context.Context, userID string) (*models.LibraryView, error)
	ActivatePremium(ctx context.Context, userID, eventID string) error
}

type service struct {
	store    Store
	catalog  Catalog
	provider identity.Provider
}

// New wires a Service backed by the provided store, catalog, and identity
// provider.
func New(store Store, catalog Catalog, provider identity.Provider) Service {
	return &service{store: store, catalog: catalog, provider: provider}
}

// Register opens an account at the identity provider and persists the matching
// user document with an empty library.
func (s *service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subjectID, err := s.provider.CreateAccount(ctx, params.Email, params.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:    subjectID,
		Name:  params.Name,
		Email: params.Email,
		Tier:  models.TierStandard,
		Library: models.Library{
			CreatedPlaylistIDs: []string{},
			LikedTrackIDs:      []string{},
			LikedPlaylistIDs:   []string{},
			LikedArtistIDs:     []string{},
			LikedAlbumIDs:      []string{},
		},
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the bearer credential and returns the user it belongs to.
func (s *service) Login(ctx context.Context, credential string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subjectID, err := s.provider.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, subjectID)
}

func (s *service) Profile(ctx context.Context, userID string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, userID)
}

// LibraryView expands every liked id into its display item. Lookups fan out
// concurrently with a bounded limit; items that fail to resolve are dropped
// rather than failing the whole view.
func (s *service) LibraryView(ctx context.Context, userID string) (*models.LibraryView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		tracks  = make([]*models.Track, len(user.Library.LikedTrackIDs))
		artists = make([]*models.Artist, len(user.Library.LikedArtistIDs))
		albums  = make([]*models.Album, len(user.Library.LikedAlbumIDs))
		liked   = make([]*models.Playlist, len(user.Library.LikedPlaylistIDs))
		created = make([]*models.Playlist, len(user.Library.CreatedPlaylistIDs))
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(libraryFanOutLimit)

	for i, id := range user.Library.LikedTrackIDs {
		group.Go(func() error {
			if track, err := s.catalog.FindTrack(groupCtx, id); err == nil {
				tracks[i] = track
			} else {
				logSkipped(userID, "track", id, err)
			}
			return nil
		})
	}
	for i, id := range user.Library.LikedArtistIDs {
		group.Go(func() error {
			if artist, err := s.catalog.FindArtist(groupCtx, id); err == nil {
				artists[i] = artist
			} else {
				logSkipped(userID, "artist", id, err)
			}
			return nil
		})
	}
	for i, id := range user.Library.LikedAlbumIDs {
		group.Go(func() error {
			if album, err := s.catalog.FindAlbum(groupCtx, id); err == nil {
				albums[i] = album
			} else {
				logSkipped(userID, "album", id, err)
			}
			return nil
		})
	}
	for i, id := range user.Library.LikedPlaylistIDs {
		group.Go(func() error {
			if playlist, err := s.catalog.FindPlaylist(groupCtx, id); err == nil {
				liked[i] = playlist
			} else {
				logSkipped(userID, "playlist", id, err)
			}
			return nil
		})
	}
	for i, id := range user.Library.CreatedPlaylistIDs {
		group.Go(func() error {
			if playlist, err := s.store.GetPlaylist(groupCtx, id); err == nil {
				created[i] = playlist
			} else {
				logSkipped(userID, "created playlist", id, err)
			}
			return nil
		})
	}

	// Workers never return errors; per-item failures are tolerated.
	_ = group.Wait()

	view := &models.LibraryView{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		FollowerCount:  user.FollowerCount,
		FollowingCount: user.FollowingCount,
		PlaylistCount:  user.PlaylistCount,
		Tracks:         compact(tracks),
		Artists:        compact(artists),
		Albums:         compact(albums),
	}

	playlists := append(compact(liked), compact(created)...)
	view.Playlists = dedupPlaylists(playlists)

	return view, nil
}

// ActivatePremium upgrades the user's tier in response to a verified payment
// event. The event id keys the side effect: redelivered events are ignored.
func (s *service) ActivatePremium(ctx context.Context, userID, eventID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.Tier == models.TierStandard {
		user.Tier = models.TierPremium
		if err := s.store.SaveUser(ctx, user); err != nil {
			return err
		}
	}

	// The ledger row is written only after the tier write lands. A failed
	// save leaves the event unrecorded, so the provider's redelivery
	// retries the upgrade.
	first, err := s.store.MarkEventProcessed(ctx, eventID)
	if err != nil {
		return err
	}
	if !first {
		log.Debug().Str("event_id", eventID).Str("user_id", userID).Msg("payment event already processed")
	}
	return nil
}

func logSkipped(userID, kind, id string, err error) {
	log.Debug().Err(err).
		Str("user_id", userID).
		Str("kind", kind).
		Str("item_id", id).
		Msg("skipping unresolvable library item")
}

func compact[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

func dedupPlaylists(playlists []models.Playlist) []models.Playlist {
	seen := make(map[string]struct{}, len(playlists))
	deduped := make([]models.Playlist, 0, len(playlists))
	for _, playlist := range playlists {
		if _, ok := seen[playlist.ID]; ok {
			continue
		}
		seen[playlist.ID] = struct{}{}
		deduped = append(deduped, playlist)
	}
	return deduped
}
