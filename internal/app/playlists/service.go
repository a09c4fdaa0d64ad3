package playlists

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"mixtape/internal/catalog"
	"mixtape/internal/models"
	"mixtape/internal/store"
)

const (
	// mixTrackCap bounds the number of tracks sampled into a mixed playlist.
	mixTrackCap = 20

	mixDescription = "Automatically generated from 2 playlists."
)

var (
	// ErrForbidden signals the acting user may not modify the playlist.
	ErrForbidden = errors.New("not allowed to modify this playlist")
	// ErrDuplicateTrack signals the track is already in the playlist.
	ErrDuplicateTrack = errors.New("track already in playlist")
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	SavePlaylist(ctx context.Context, playlist *models.Playlist) error
	DeletePlaylist(ctx context.Context, id string) error
	ListPlaylists(ctx context.Context) ([]*models.Playlist, error)
	ListPlaylistsByOwner(ctx context.Context, ownerID string) ([]*models.Playlist, error)
}

// Catalog captures the catalog lookups playlist workflows depend on.
type Catalog interface {
	FindTrack(ctx context.Context, id string) (*models.Track, error)
	FindPlaylist(ctx context.Context, id string) (*models.Playlist, error)
}

// CreateParams carries the caller-editable playlist fields.
type CreateParams struct {
	Name        string
	Description string
	ImageURL    string
}

// Service coordinates playlist-related operations.
type Service interface {
	ListAll(ctx context.Context) ([]*models.Playlist, error)
	ListCreatedBy(ctx context.Context, userID string) ([]*models.Playlist, error)
	Get(ctx context.Context, id string) (*models.Playlist, error)
	Create(ctx context.Context, userID string, params CreateParams) (*models.Playlist, error)
	Update(ctx context.Context, userID, id string, params CreateParams) (*models.Playlist, error)
	Delete(ctx context.Context, userID, id string) error
	AddTrack(ctx context.Context, playlistID, trackID, userID string) (*models.Playlist, error)
	RemoveTrack(ctx context.Context, playlistID, trackID, userID string) (*models.Playlist, error)
	Mix(ctx context.Context, id1, id2, requesterID string) (*models.Playlist, error)
}

type service struct {
	store   Store
	catalog Catalog
	shuffle func([]models.Track)
}

// New constructs a Service backed by the provided store and catalog client.
func New(st Store, cat Catalog) Service {
	return NewWithShuffle(st, cat, func(tracks []models.Track) {
		rand.Shuffle(len(tracks), func(i, j int) {
			tracks[i], tracks[j] = tracks[j], tracks[i]
		})
	})
}

// NewWithShuffle constructs a Service with a custom shuffle, so tests can pin
// the mix ordering.
func NewWithShuffle(st Store, cat Catalog, shuffle func([]models.Track)) Service {
	return &service{store: st, catalog: cat, shuffle: shuffle}
}

func (s *service) ListAll(ctx context.Context) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx)
}

func (s *service) ListCreatedBy(ctx context.Context, userID string) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylistsByOwner(ctx, userID)
}

// Get resolves a playlist locally first and falls back to the catalog, so
// liked external playlists can be displayed the same way as local ones.
func (s *service) Get(ctx context.Context, id string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playlist, err := s.store.GetPlaylist(ctx, id)
	if err == nil {
		return playlist, nil
	}
	if !errors.Is(err, store.ErrPlaylistNotFound) {
		return nil, err
	}

	playlist, err = s.catalog.FindPlaylist(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, store.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *service) Create(ctx context.Context, userID string, params CreateParams) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	playlist := &models.Playlist{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Description: params.Description,
		OwnerID:     user.ID,
		OwnerName:   user.Name,
		ImageURL:    params.ImageURL,
		Tracks:      []models.Track{},
	}

	if err := s.attachToOwner(ctx, user, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// attachToOwner persists a new playlist and records it in the owner's
// library. The two writes are not transactional: if the library update fails,
// the playlist is deleted again on a best-effort basis.
func (s *service) attachToOwner(ctx context.Context, user *models.User, playlist *models.Playlist) error {
	if err := s.store.CreatePlaylist(ctx, playlist); err != nil {
		return err
	}

	user.Library.CreatedPlaylistIDs = append(user.Library.CreatedPlaylistIDs, playlist.ID)
	user.PlaylistCount = len(user.Library.CreatedPlaylistIDs)

	if err := s.store.SaveUser(ctx, user); err != nil {
		if rbErr := s.store.DeletePlaylist(ctx, playlist.ID); rbErr != nil {
			log.Error().Err(rbErr).
				Str("playlist_id", playlist.ID).
				Str("owner_id", user.ID).
				Msg("orphan playlist left behind after failed library update")
		}
		return fmt.Errorf("update owner library: %w", err)
	}
	return nil
}

func (s *service) Update(ctx context.Context, userID, id string, params CreateParams) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeManage(ctx, userID, playlist); err != nil {
		return nil, err
	}

	playlist.Name = params.Name
	playlist.Description = params.Description
	playlist.ImageURL = params.ImageURL

	if err := s.store.SavePlaylist(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorizeManage(ctx, userID, playlist); err != nil {
		return err
	}

	// The library entry lives on the playlist owner, who is not necessarily
	// the acting user when an admin deletes someone else's playlist.
	owner, err := s.store.GetUser(ctx, playlist.OwnerID)
	if err == nil {
		owner.Library.CreatedPlaylistIDs = removeID(owner.Library.CreatedPlaylistIDs, id)
		owner.PlaylistCount = len(owner.Library.CreatedPlaylistIDs)
		if err := s.store.SaveUser(ctx, owner); err != nil {
			return err
		}
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}

	return s.store.DeletePlaylist(ctx, id)
}

// authorizeManage enforces the edit/delete rule: the owner may always manage
// a playlist, and an admin may manage anyone's.
func (s *service) authorizeManage(ctx context.Context, userID string, playlist *models.Playlist) error {
	if playlist.OwnerID == userID {
		return nil
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *service) AddTrack(ctx context.Context, playlistID, trackID, userID string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playlist, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	// Track edits are owner-only; the admin override does not apply here.
	if playlist.OwnerID != userID {
		return nil, ErrForbidden
	}

	track, err := s.catalog.FindTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}

	if playlist.ContainsTrack(track.ID) {
		return nil, ErrDuplicateTrack
	}

	playlist.Tracks = append(append([]models.Track{}, playlist.Tracks...), *track)
	if err := s.store.SavePlaylist(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *service) RemoveTrack(ctx context.Context, playlistID, trackID, userID string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playlist, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if playlist.OwnerID != userID {
		return nil, ErrForbidden
	}

	// Removing an absent track is a safe no-op filter.
	filtered := make([]models.Track, 0, len(playlist.Tracks))
	for _, track := range playlist.Tracks {
		if track.ID != trackID {
			filtered = append(filtered, track)
		}
	}
	playlist.Tracks = filtered

	if err := s.store.SavePlaylist(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Mix merges two playlists into a fresh one owned by the requester: tracks
// are concatenated, deduplicated by id (first occurrence wins), shuffled, and
// capped. The shuffle makes the result intentionally non-deterministic.
func (s *service) Mix(ctx context.Context, id1, id2, requesterID string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requester, err := s.store.GetUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	playlist1, err := s.resolveForMix(ctx, requester, id1)
	if err != nil {
		return nil, err
	}
	playlist2, err := s.resolveForMix(ctx, requester, id2)
	if err != nil {
		return nil, err
	}

	merged := dedupTracks(append(append([]models.Track{}, playlist1.Tracks...), playlist2.Tracks...))
	s.shuffle(merged)
	if len(merged) > mixTrackCap {
		merged = merged[:mixTrackCap]
	}

	imageURL := playlist1.ImageURL
	if imageURL == "" {
		imageURL = playlist2.ImageURL
	}

	mixed := &models.Playlist{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("Mix of %s and %s", playlist1.Name, playlist2.Name),
		Description: mixDescription,
		OwnerID:     requester.ID,
		OwnerName:   requester.Name,
		ImageURL:    imageURL,
		Tracks:      merged,
	}

	if err := s.attachToOwner(ctx, requester, mixed); err != nil {
		return nil, err
	}
	return mixed, nil
}

// resolveForMix resolves a mix input: a locally stored playlist is always
// usable; an external one only if the requester has liked it.
func (s *service) resolveForMix(ctx context.Context, requester *models.User, id string) (*models.Playlist, error) {
	playlist, err := s.store.GetPlaylist(ctx, id)
	if err == nil {
		return playlist, nil
	}
	if !errors.Is(err, store.ErrPlaylistNotFound) {
		return nil, err
	}

	if !containsID(requester.Library.LikedPlaylistIDs, id) {
		return nil, ErrForbidden
	}

	playlist, err = s.catalog.FindPlaylist(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, store.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

func dedupTracks(tracks []models.Track) []models.Track {
	seen := make(map[string]struct{}, len(tracks))
	deduped := make([]models.Track, 0, len(tracks))
	for _, track := range tracks {
		if _, ok := seen[track.ID]; ok {
			continue
		}
		seen[track.ID] = struct{}{}
		deduped = append(deduped, track)
	}
	return deduped
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	filtered := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
