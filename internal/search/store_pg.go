package search

import (
	"context"
	"database/sql"
	"fmt"
)

// Store defines the persistence operations required by the search handler.
type Store interface {
	Search(ctx context.Context, query string, limit int) (Results, error)
}

// Results captures the result buckets surfaced by the handler.
type Results struct {
	Playlists []PlaylistResult
	Owners    []OwnerResult
}

// PlaylistResult summarises a playlist match.
type PlaylistResult struct {
	ID          string
	Name        string
	Description string
	OwnerName   string
	ImageURL    string
	TrackCount  int
}

// OwnerResult summarises a playlist creator match.
type OwnerResult struct {
	ID            string
	Name          string
	PlaylistCount int
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// NewPGStore creates a Store backed by the supplied database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Search performs a fan-out query across playlists and their creators.
func (s *PGStore) Search(ctx context.Context, query string, limit int) (Results, error) {
	if limit <= 0 {
		limit = 10
	}
	like := "%" + query + "%"

	playlists, err := s.fetchPlaylists(ctx, like, limit)
	if err != nil {
		return Results{}, err
	}

	owners, err := s.fetchOwners(ctx, like, limit)
	if err != nil {
		return Results{}, err
	}

	return Results{Playlists: playlists, Owners: owners}, nil
}

func (s *PGStore) fetchPlaylists(ctx context.Context, like string, limit int) ([]PlaylistResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), owner_name, COALESCE(image_url, ''),
			jsonb_array_length(tracks)
		FROM playlists
		WHERE name ILIKE $1 OR COALESCE(description, '') ILIKE $1
		ORDER BY name ASC, id ASC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search playlists: %w", err)
	}
	defer rows.Close()

	var results []PlaylistResult
	for rows.Next() {
		var p PlaylistResult
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerName, &p.ImageURL, &p.TrackCount); err != nil {
			return nil, fmt.Errorf("scan playlist result: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func (s *PGStore) fetchOwners(ctx context.Context, like string, limit int) ([]OwnerResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id, owner_name, COUNT(*)
		FROM playlists
		WHERE owner_name ILIKE $1
		GROUP BY owner_id, owner_name
		ORDER BY owner_name ASC, owner_id ASC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search owners: %w", err)
	}
	defer rows.Close()

	var results []OwnerResult
	for rows.Next() {
		var o OwnerResult
		if err := rows.Scan(&o.ID, &o.Name, &o.PlaylistCount); err != nil {
			return nil, fmt.Errorf("scan owner result: %w", err)
		}
		results = append(results, o)
	}
	return results, rows.Err()
}
