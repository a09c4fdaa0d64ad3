package playlists

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mixtape/internal/catalog"
	"mixtape/internal/models"
	"mixtape/internal/store"
)

type fakeStore struct {
	users     map[string]*models.User
	playlists map[string]*models.Playlist

	saveUserErr error
	userSaves   int
	deletes     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*models.User),
		playlists: make(map[string]*models.Playlist),
	}
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) SaveUser(_ context.Context, user *models.User) error {
	if f.saveUserErr != nil {
		return f.saveUserErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	f.userSaves++
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetPlaylist(_ context.Context, id string) (*models.Playlist, error) {
	playlist, ok := f.playlists[id]
	if !ok {
		return nil, store.ErrPlaylistNotFound
	}
	copied := *playlist
	return &copied, nil
}

func (f *fakeStore) CreatePlaylist(_ context.Context, playlist *models.Playlist) error {
	f.playlists[playlist.ID] = playlist
	return nil
}

func (f *fakeStore) SavePlaylist(_ context.Context, playlist *models.Playlist) error {
	if _, ok := f.playlists[playlist.ID]; !ok {
		return store.ErrPlaylistNotFound
	}
	f.playlists[playlist.ID] = playlist
	return nil
}

func (f *fakeStore) DeletePlaylist(_ context.Context, id string) error {
	if _, ok := f.playlists[id]; !ok {
		return store.ErrPlaylistNotFound
	}
	delete(f.playlists, id)
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeStore) ListPlaylists(_ context.Context) ([]*models.Playlist, error) {
	var all []*models.Playlist
	for _, p := range f.playlists {
		copied := *p
		all = append(all, &copied)
	}
	return all, nil
}

func (f *fakeStore) ListPlaylistsByOwner(_ context.Context, ownerID string) ([]*models.Playlist, error) {
	var owned []*models.Playlist
	for _, p := range f.playlists {
		if p.OwnerID == ownerID {
			copied := *p
			owned = append(owned, &copied)
		}
	}
	return owned, nil
}

type fakeCatalog struct {
	tracks    map[string]models.Track
	playlists map[string]models.Playlist
}

func (f *fakeCatalog) FindTrack(_ context.Context, id string) (*models.Track, error) {
	track, ok := f.tracks[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &track, nil
}

func (f *fakeCatalog) FindPlaylist(_ context.Context, id string) (*models.Playlist, error) {
	playlist, ok := f.playlists[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &playlist, nil
}

func tracks(ids ...string) []models.Track {
	out := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Track{ID: id, Name: "track " + id})
	}
	return out
}

func identityShuffle([]models.Track) {}

func newTestService(fs *fakeStore, fc *fakeCatalog) Service {
	if fc == nil {
		fc = &fakeCatalog{}
	}
	return NewWithShuffle(fs, fc, identityShuffle)
}

func seedUser(fs *fakeStore, id string, tier models.Tier) *models.User {
	user := &models.User{ID: id, Name: "user " + id, Tier: tier}
	fs.users[id] = user
	return user
}

func seedPlaylist(fs *fakeStore, id, ownerID string, trackIDs ...string) *models.Playlist {
	playlist := &models.Playlist{
		ID:      id,
		Name:    "playlist " + id,
		OwnerID: ownerID,
		Tracks:  tracks(trackIDs...),
	}
	fs.playlists[id] = playlist
	return playlist
}

func TestCreateAttachesToOwnerLibrary(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierPremium)
	svc := newTestService(fs, nil)

	created, err := svc.Create(context.Background(), "u1", CreateParams{Name: "Road Trip"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.OwnerID != "u1" {
		t.Fatalf("owner = %q, want u1", created.OwnerID)
	}
	if len(created.Tracks) != 0 {
		t.Fatalf("tracks = %v, want empty", created.Tracks)
	}

	owner := fs.users["u1"]
	if len(owner.Library.CreatedPlaylistIDs) != 1 || owner.Library.CreatedPlaylistIDs[0] != created.ID {
		t.Fatalf("owner library = %v, want [%s]", owner.Library.CreatedPlaylistIDs, created.ID)
	}
	if owner.PlaylistCount != 1 {
		t.Fatalf("playlist count = %d, want 1", owner.PlaylistCount)
	}
}

func TestCreateRollsBackOnLibraryFailure(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierPremium)
	fs.saveUserErr = errors.New("boom")
	svc := newTestService(fs, nil)

	_, err := svc.Create(context.Background(), "u1", CreateParams{Name: "Road Trip"})
	if err == nil {
		t.Fatal("Create succeeded, want error")
	}
	if len(fs.playlists) != 0 {
		t.Fatalf("playlists = %v, want none after rollback", fs.playlists)
	}
}

func TestUpdateByOwner(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedPlaylist(fs, "p1", "u1")
	svc := newTestService(fs, nil)

	updated, err := svc.Update(context.Background(), "u1", "p1", CreateParams{Name: "Renamed", Description: "new"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" || updated.Description != "new" {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestUpdateByStrangerForbidden(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedUser(fs, "u2", models.TierPremium)
	seedPlaylist(fs, "p1", "u1")
	svc := newTestService(fs, nil)

	_, err := svc.Update(context.Background(), "u2", "p1", CreateParams{Name: "Hijacked"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateByAdminAllowed(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedUser(fs, "admin", models.TierAdmin)
	seedPlaylist(fs, "p1", "u1")
	svc := newTestService(fs, nil)

	updated, err := svc.Update(context.Background(), "admin", "p1", CreateParams{Name: "Moderated"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Moderated" {
		t.Fatalf("name = %q, want Moderated", updated.Name)
	}
}

func TestDeleteByAdminUpdatesOwnerLibrary(t *testing.T) {
	fs := newFakeStore()
	owner := seedUser(fs, "u1", models.TierStandard)
	owner.Library.CreatedPlaylistIDs = []string{"p1"}
	owner.PlaylistCount = 1
	seedUser(fs, "admin", models.TierAdmin)
	seedPlaylist(fs, "p1", "u1")
	svc := newTestService(fs, nil)

	if err := svc.Delete(context.Background(), "admin", "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := fs.playlists["p1"]; ok {
		t.Fatal("playlist still present after delete")
	}
	saved := fs.users["u1"]
	if len(saved.Library.CreatedPlaylistIDs) != 0 {
		t.Fatalf("owner library = %v, want empty", saved.Library.CreatedPlaylistIDs)
	}
	if saved.PlaylistCount != 0 {
		t.Fatalf("owner playlist count = %d, want 0", saved.PlaylistCount)
	}
	if admin := fs.users["admin"]; len(admin.Library.CreatedPlaylistIDs) != 0 {
		t.Fatalf("admin library touched: %v", admin.Library.CreatedPlaylistIDs)
	}
}

func TestDeleteByStrangerForbidden(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedUser(fs, "u2", models.TierPremium)
	seedPlaylist(fs, "p1", "u1")
	svc := newTestService(fs, nil)

	if err := svc.Delete(context.Background(), "u2", "p1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestAddTrackAppends(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedPlaylist(fs, "p1", "u1", "t1")
	fc := &fakeCatalog{tracks: map[string]models.Track{"t2": {ID: "t2", Name: "track t2"}}}
	svc := newTestService(fs, fc)

	updated, err := svc.AddTrack(context.Background(), "p1", "t2", "u1")
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	if len(updated.Tracks) != 2 || updated.Tracks[1].ID != "t2" {
		t.Fatalf("tracks = %v", updated.Tracks)
	}
}

func TestAddTrackDuplicateConflicts(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedPlaylist(fs, "p1", "u1", "t1")
	fc := &fakeCatalog{tracks: map[string]models.Track{"t1": {ID: "t1"}}}
	svc := newTestService(fs, fc)

	_, err := svc.AddTrack(context.Background(), "p1", "t1", "u1")
	if !errors.Is(err, ErrDuplicateTrack) {
		t.Fatalf("err = %v, want ErrDuplicateTrack", err)
	}
}

func TestAddTrackAdminIsStillForbidden(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedUser(fs, "admin", models.TierAdmin)
	seedPlaylist(fs, "p1", "u1")
	fc := &fakeCatalog{tracks: map[string]models.Track{"t1": {ID: "t1"}}}
	svc := newTestService(fs, fc)

	_, err := svc.AddTrack(context.Background(), "p1", "t1", "admin")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestAddTrackUnknownTrack(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedPlaylist(fs, "p1", "u1")
	svc := newTestService(fs, &fakeCatalog{})

	_, err := svc.AddTrack(context.Background(), "p1", "nope", "u1")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("err = %v, want catalog.ErrNotFound", err)
	}
}

func TestRemoveTrackAbsentIsNoOp(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedPlaylist(fs, "p1", "u1", "t1", "t2")
	svc := newTestService(fs, nil)

	updated, err := svc.RemoveTrack(context.Background(), "p1", "missing", "u1")
	if err != nil {
		t.Fatalf("RemoveTrack: %v", err)
	}
	if len(updated.Tracks) != 2 {
		t.Fatalf("tracks = %v, want unchanged", updated.Tracks)
	}
}

func TestRemoveTrackFilters(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierStandard)
	seedPlaylist(fs, "p1", "u1", "t1", "t2", "t3")
	svc := newTestService(fs, nil)

	updated, err := svc.RemoveTrack(context.Background(), "p1", "t2", "u1")
	if err != nil {
		t.Fatalf("RemoveTrack: %v", err)
	}
	if len(updated.Tracks) != 2 || updated.Tracks[0].ID != "t1" || updated.Tracks[1].ID != "t3" {
		t.Fatalf("tracks = %v", updated.Tracks)
	}
}

func TestMixDeduplicatesFirstWins(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierPremium)
	seedPlaylist(fs, "p1", "u1", "t1", "t2")
	seedPlaylist(fs, "p2", "u1", "t2", "t3")
	svc := newTestService(fs, nil)

	mixed, err := svc.Mix(context.Background(), "p1", "p2", "u1")
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}

	var ids []string
	for _, track := range mixed.Tracks {
		ids = append(ids, track.ID)
	}
	want := []string{"t1", "t2", "t3"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("track ids = %v, want %v", ids, want)
	}
	if mixed.Name != "Mix of playlist p1 and playlist p2" {
		t.Fatalf("name = %q", mixed.Name)
	}
	if mixed.OwnerID != "u1" {
		t.Fatalf("owner = %q, want u1", mixed.OwnerID)
	}
}

func TestMixCapsTrackCount(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierPremium)

	var ids1, ids2 []string
	for i := 0; i < 15; i++ {
		ids1 = append(ids1, fmt.Sprintf("a%d", i))
		ids2 = append(ids2, fmt.Sprintf("b%d", i))
	}
	seedPlaylist(fs, "p1", "u1", ids1...)
	seedPlaylist(fs, "p2", "u1", ids2...)
	svc := newTestService(fs, nil)

	mixed, err := svc.Mix(context.Background(), "p1", "p2", "u1")
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if len(mixed.Tracks) != mixTrackCap {
		t.Fatalf("track count = %d, want %d", len(mixed.Tracks), mixTrackCap)
	}
}

func TestMixRegistersInRequesterLibrary(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierPremium)
	seedPlaylist(fs, "p1", "u1", "t1")
	seedPlaylist(fs, "p2", "u1", "t2")
	svc := newTestService(fs, nil)

	mixed, err := svc.Mix(context.Background(), "p1", "p2", "u1")
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}

	owner := fs.users["u1"]
	if len(owner.Library.CreatedPlaylistIDs) != 1 || owner.Library.CreatedPlaylistIDs[0] != mixed.ID {
		t.Fatalf("owner library = %v, want [%s]", owner.Library.CreatedPlaylistIDs, mixed.ID)
	}
}

func TestMixExternalPlaylistRequiresLike(t *testing.T) {
	fs := newFakeStore()
	seedUser(fs, "u1", models.TierPremium)
	seedPlaylist(fs, "p1", "u1", "t1")
	fc := &fakeCatalog{playlists: map[string]models.Playlist{
		"ext1": {ID: "ext1", Name: "External", Tracks: tracks("x1")},
	}}
	svc := newTestService(fs, fc)

	_, err := svc.Mix(context.Background(), "p1", "ext1", "u1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	fs.users["u1"].Library.LikedPlaylistIDs = []string{"ext1"}
	mixed, err := svc.Mix(context.Background(), "p1", "ext1", "u1")
	if err != nil {
		t.Fatalf("Mix after like: %v", err)
	}
	if len(mixed.Tracks) != 2 {
		t.Fatalf("tracks = %v, want 2", mixed.Tracks)
	}
}

func TestMixUnknownPlaylist(t *testing.T) {
	fs := newFakeStore()
	user := seedUser(fs, "u1", models.TierPremium)
	user.Library.LikedPlaylistIDs = []string{"ghost"}
	seedPlaylist(fs, "p1", "u1", "t1")
	svc := newTestService(fs, nil)

	_, err := svc.Mix(context.Background(), "p1", "ghost", "u1")
	if !errors.Is(err, store.ErrPlaylistNotFound) {
		t.Fatalf("err = %v, want ErrPlaylistNotFound", err)
	}
}

func TestGetFallsBackToCatalog(t *testing.T) {
	fs := newFakeStore()
	fc := &fakeCatalog{playlists: map[string]models.Playlist{
		"ext1": {ID: "ext1", Name: "External"},
	}}
	svc := newTestService(fs, fc)

	playlist, err := svc.Get(context.Background(), "ext1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if playlist.Name != "External" {
		t.Fatalf("name = %q", playlist.Name)
	}

	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, store.ErrPlaylistNotFound) {
		t.Fatalf("err = %v, want ErrPlaylistNotFound", err)
	}
}
