package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mixtape/internal/models"
)

// CreateUser inserts a new user row. The id must be the subject issued by the
// identity provider; a duplicate id fails with ErrUserExists.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return errors.New("user with id is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, email, follower_count, following_count, playlist_count, tier,
			created_playlist_ids, liked_track_ids, liked_playlist_ids, liked_artist_ids, liked_album_ids
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		user.ID, user.Name, user.Email,
		user.FollowerCount, user.FollowingCount, user.PlaylistCount, string(user.Tier),
		pq.Array(user.Library.CreatedPlaylistIDs),
		pq.Array(user.Library.LikedTrackIDs),
		pq.Array(user.Library.LikedPlaylistIDs),
		pq.Array(user.Library.LikedArtistIDs),
		pq.Array(user.Library.LikedAlbumIDs),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given subject id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var (
		user models.User
		tier string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, follower_count, following_count, playlist_count, tier,
			created_playlist_ids, liked_track_ids, liked_playlist_ids, liked_artist_ids, liked_album_ids
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Name, &user.Email,
		&user.FollowerCount, &user.FollowingCount, &user.PlaylistCount, &tier,
		pq.Array(&user.Library.CreatedPlaylistIDs),
		pq.Array(&user.Library.LikedTrackIDs),
		pq.Array(&user.Library.LikedPlaylistIDs),
		pq.Array(&user.Library.LikedArtistIDs),
		pq.Array(&user.Library.LikedAlbumIDs),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Tier = models.Tier(tier)
	return &user, nil
}

// SaveUser replaces the stored user document with the given state.
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return errors.New("user with id is required")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, follower_count = $4, following_count = $5,
			playlist_count = $6, tier = $7,
			created_playlist_ids = $8, liked_track_ids = $9, liked_playlist_ids = $10,
			liked_artist_ids = $11, liked_album_ids = $12
		WHERE id = $1
	`,
		user.ID, user.Name, user.Email,
		user.FollowerCount, user.FollowingCount, user.PlaylistCount, string(user.Tier),
		pq.Array(user.Library.CreatedPlaylistIDs),
		pq.Array(user.Library.LikedTrackIDs),
		pq.Array(user.Library.LikedPlaylistIDs),
		pq.Array(user.Library.LikedArtistIDs),
		pq.Array(user.Library.LikedAlbumIDs),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
