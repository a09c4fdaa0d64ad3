package models

// Track represents a song sourced from the external catalog. Tracks are
// read-only for this application; they are referenced by id inside playlists
// and liked sets.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArtistName  string `json:"artist_name"`
	AlbumName   string `json:"album_name"`
	ImageURL    string `json:"image_url,omitempty"`
	DurationMs  int    `json:"duration_ms"`
	PreviewURL  string `json:"preview_url,omitempty"`
	Popularity  int    `json:"popularity"`
	ExternalURL string `json:"external_url"`
	AudioURL    string `json:"audio_url,omitempty"`
}

// Album represents an album from the external catalog.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url,omitempty"`
	ReleaseDate string   `json:"release_date"`
	AlbumType   string   `json:"album_type"`
	TotalTracks int      `json:"total_tracks"`
	Popularity  int      `json:"popularity"`
	ExternalURL string   `json:"external_url"`
	Artists     []string `json:"artists"`
	Tracks      []Track  `json:"tracks,omitempty"`
}

// Artist represents an artist from the external catalog.
type Artist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url,omitempty"`
	Popularity  int      `json:"popularity"`
	Followers   int      `json:"followers"`
	ExternalURL string   `json:"external_url"`
	Genres      []string `json:"genres"`
}

// LibraryView is a user's library with every liked id resolved against the
// catalog and playlist store. Items that no longer resolve are omitted.
type LibraryView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	FollowerCount  int        `json:"follower_count"`
	FollowingCount int        `json:"following_count"`
	PlaylistCount  int        `json:"playlist_count"`
	Tracks         []Track    `json:"tracks"`
	Artists        []Artist   `json:"artists"`
	Albums         []Album    `json:"albums"`
	Playlists      []Playlist `json:"playlists"`
}
