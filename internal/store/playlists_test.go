package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"mixtape/internal/models"
)

func playlistRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "owner_id", "owner_name", "image_url", "tracks",
	})
}

func TestGetPlaylist(t *testing.T) {
	st, mock := newMockStore(t)

	tracks := []byte(`[{"id":"t1","name":"One"},{"id":"t2","name":"Two"}]`)
	mock.ExpectQuery("SELECT (.+) FROM playlists").
		WithArgs("p1").
		WillReturnRows(playlistRows().AddRow("p1", "Road Trip", "for driving", "sub-1", "Ada", nil, tracks))

	playlist, err := st.GetPlaylist(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if playlist.Name != "Road Trip" || playlist.Description != "for driving" {
		t.Fatalf("playlist = %+v", playlist)
	}
	if playlist.ImageURL != "" {
		t.Fatalf("image = %q, want empty for NULL", playlist.ImageURL)
	}
	if len(playlist.Tracks) != 2 || playlist.Tracks[1].ID != "t2" {
		t.Fatalf("tracks = %v", playlist.Tracks)
	}
}

func TestGetPlaylistEmptyTracks(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM playlists").
		WithArgs("p1").
		WillReturnRows(playlistRows().AddRow("p1", "Empty", nil, "sub-1", "Ada", nil, []byte(`[]`)))

	playlist, err := st.GetPlaylist(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if playlist.Tracks == nil || len(playlist.Tracks) != 0 {
		t.Fatalf("tracks = %#v, want empty non-nil slice", playlist.Tracks)
	}
}

func TestGetPlaylistNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM playlists").
		WithArgs("missing").
		WillReturnRows(playlistRows())

	_, err := st.GetPlaylist(context.Background(), "missing")
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("err = %v, want ErrPlaylistNotFound", err)
	}
}

func TestCreatePlaylist(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO playlists").
		WillReturnResult(sqlmock.NewResult(0, 1))

	playlist := &models.Playlist{
		ID:      "p1",
		Name:    "Road Trip",
		OwnerID: "sub-1",
		Tracks:  []models.Track{{ID: "t1"}},
	}
	if err := st.CreatePlaylist(context.Background(), playlist); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSavePlaylistNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE playlists").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.SavePlaylist(context.Background(), &models.Playlist{ID: "ghost", Name: "Ghost"})
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("err = %v, want ErrPlaylistNotFound", err)
	}
}

func TestListPlaylistsByOwner(t *testing.T) {
	st, mock := newMockStore(t)

	rows := playlistRows().
		AddRow("p1", "A", nil, "sub-1", "Ada", nil, []byte(`[]`)).
		AddRow("p2", "B", nil, "sub-1", "Ada", "https://img/p2", []byte(`[{"id":"t1"}]`))
	mock.ExpectQuery("SELECT (.+) FROM playlists").
		WithArgs("sub-1").
		WillReturnRows(rows)

	playlists, err := st.ListPlaylistsByOwner(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("ListPlaylistsByOwner: %v", err)
	}
	if len(playlists) != 2 {
		t.Fatalf("playlists = %v, want 2", playlists)
	}
	if playlists[1].ImageURL != "https://img/p2" || len(playlists[1].Tracks) != 1 {
		t.Fatalf("playlist = %+v", playlists[1])
	}
}

func TestDeletePlaylist(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM playlists").
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.DeletePlaylist(context.Background(), "p1"); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}
}
