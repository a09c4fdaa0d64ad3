package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserNotFound signals the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists signals the subject id is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrPlaylistNotFound signals the referenced playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")
)

// Store provides persistence backed by Postgres. Users and playlists are each
// a single row keyed by an opaque string id; every write replaces the whole
// document, so each call is atomic at the row level. There is no optimistic
// locking: concurrent writers to the same row are last-writer-wins.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
