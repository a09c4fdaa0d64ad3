package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mixtape/internal/models"
)

// CreatePlaylist persists a new playlist. Tracks are stored as a single JSON
// document so the write is atomic per playlist.
func (s *Store) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	if playlist == nil || playlist.ID == "" {
		return errors.New("playlist with id is required")
	}

	tracks, err := marshalTracks(playlist.Tracks)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, owner_id, owner_name, image_url, tracks)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
	`,
		playlist.ID, playlist.Name, nullIfEmpty(playlist.Description),
		playlist.OwnerID, playlist.OwnerName, nullIfEmpty(playlist.ImageURL), tracks,
	); err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}
	return nil
}

// GetPlaylist returns a single playlist by id.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	var (
		playlist    models.Playlist
		description sql.NullString
		imageURL    sql.NullString
		tracks      []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, owner_name, image_url, tracks
		FROM playlists
		WHERE id = $1
	`, id).Scan(&playlist.ID, &playlist.Name, &description,
		&playlist.OwnerID, &playlist.OwnerName, &imageURL, &tracks)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}

	playlist.Description = description.String
	playlist.ImageURL = imageURL.String
	if playlist.Tracks, err = unmarshalTracks(tracks); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// SavePlaylist replaces the stored playlist document with the given state.
func (s *Store) SavePlaylist(ctx context.Context, playlist *models.Playlist) error {
	if playlist == nil || playlist.ID == "" {
		return errors.New("playlist with id is required")
	}

	tracks, err := marshalTracks(playlist.Tracks)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET name = $2, description = $3, owner_id = $4, owner_name = $5,
			image_url = $6, tracks = $7::jsonb
		WHERE id = $1
	`,
		playlist.ID, playlist.Name, nullIfEmpty(playlist.Description),
		playlist.OwnerID, playlist.OwnerName, nullIfEmpty(playlist.ImageURL), tracks,
	)
	if err != nil {
		return fmt.Errorf("save playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// DeletePlaylist removes a playlist.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// ListPlaylists returns every playlist in the store.
func (s *Store) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	return s.scanPlaylists(ctx, `
		SELECT id, name, description, owner_id, owner_name, image_url, tracks
		FROM playlists
		ORDER BY name ASC, id ASC`)
}

// ListPlaylistsByOwner returns the playlists created by the given user.
func (s *Store) ListPlaylistsByOwner(ctx context.Context, ownerID string) ([]*models.Playlist, error) {
	return s.scanPlaylists(ctx, `
		SELECT id, name, description, owner_id, owner_name, image_url, tracks
		FROM playlists
		WHERE owner_id = $1
		ORDER BY name ASC, id ASC`, ownerID)
}

func (s *Store) scanPlaylists(ctx context.Context, query string, args ...any) ([]*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]*models.Playlist, 0)
	for rows.Next() {
		var (
			playlist    models.Playlist
			description sql.NullString
			imageURL    sql.NullString
			tracks      []byte
		)
		if err := rows.Scan(&playlist.ID, &playlist.Name, &description,
			&playlist.OwnerID, &playlist.OwnerName, &imageURL, &tracks); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlist.Description = description.String
		playlist.ImageURL = imageURL.String
		if playlist.Tracks, err = unmarshalTracks(tracks); err != nil {
			return nil, err
		}
		playlists = append(playlists, &playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

func marshalTracks(tracks []models.Track) (string, error) {
	if tracks == nil {
		tracks = []models.Track{}
	}
	raw, err := json.Marshal(tracks)
	if err != nil {
		return "", fmt.Errorf("marshal tracks: %w", err)
	}
	return string(raw), nil
}

func unmarshalTracks(raw []byte) ([]models.Track, error) {
	tracks := make([]models.Track, 0)
	if len(raw) == 0 {
		return tracks, nil
	}
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("unmarshal tracks: %w", err)
	}
	return tracks, nil
}
