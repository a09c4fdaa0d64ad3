package library

import (
	"context"

	"mixtape/internal/models"
)

// Store describes the persistence operations required by the library service.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}

// Service toggles liked-item membership on a user's library. Every call is
// idempotent: liking an item twice, or unliking an absent item, performs no
// store write.
type Service interface {
	LikeTrack(ctx context.Context, userID, trackID string) (*models.User, error)
	UnlikeTrack(ctx context.Context, userID, trackID string) (*models.User, error)
	LikeAlbum(ctx context.Context, userID, albumID string) (*models.User, error)
	UnlikeAlbum(ctx context.Context, userID, albumID string) (*models.User, error)
	LikeArtist(ctx context.Context, userID, artistID string) (*models.User, error)
	UnlikeArtist(ctx context.Context, userID, artistID string) (*models.User, error)
	LikePlaylist(ctx context.Context, userID, playlistID string) (*models.User, error)
	UnlikePlaylist(ctx context.Context, userID, playlistID string) (*models.User, error)
}

type service struct {
	store Store
}

// New constructs a library Service backed by the given store.
func New(store Store) Service {
	return &service{store: store}
}

// likedSet selects one of the liked-id sets on a library.
type likedSet func(*models.Library) *[]string

var (
	trackSet    likedSet = func(l *models.Library) *[]string { return &l.LikedTrackIDs }
	albumSet    likedSet = func(l *models.Library) *[]string { return &l.LikedAlbumIDs }
	artistSet   likedSet = func(l *models.Library) *[]string { return &l.LikedArtistIDs }
	playlistSet likedSet = func(l *models.Library) *[]string { return &l.LikedPlaylistIDs }
)

func (s *service) LikeTrack(ctx context.Context, userID, trackID string) (*models.User, error) {
	return s.like(ctx, userID, trackID, trackSet)
}

func (s *service) UnlikeTrack(ctx context.Context, userID, trackID string) (*models.User, error) {
	return s.unlike(ctx, userID, trackID, trackSet)
}

func (s *service) LikeAlbum(ctx context.Context, userID, albumID string) (*models.User, error) {
	return s.like(ctx, userID, albumID, albumSet)
}

func (s *service) UnlikeAlbum(ctx context.Context, userID, albumID string) (*models.User, error) {
	return s.unlike(ctx, userID, albumID, albumSet)
}

func (s *service) LikeArtist(ctx context.Context, userID, artistID string) (*models.User, error) {
	return s.like(ctx, userID, artistID, artistSet)
}

func (s *service) UnlikeArtist(ctx context.Context, userID, artistID string) (*models.User, error) {
	return s.unlike(ctx, userID, artistID, artistSet)
}

func (s *service) LikePlaylist(ctx context.Context, userID, playlistID string) (*models.User, error) {
	return s.like(ctx, userID, playlistID, playlistSet)
}

func (s *service) UnlikePlaylist(ctx context.Context, userID, playlistID string) (*models.User, error) {
	return s.unlike(ctx, userID, playlistID, playlistSet)
}

func (s *service) like(ctx context.Context, userID, itemID string, set likedSet) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := set(&user.Library)
	if contains(*ids, itemID) {
		return user, nil
	}

	*ids = append(*ids, itemID)
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) unlike(ctx context.Context, userID, itemID string, set likedSet) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := set(&user.Library)
	if !contains(*ids, itemID) {
		return user, nil
	}

	*ids = remove(*ids, itemID)
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	filtered := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
