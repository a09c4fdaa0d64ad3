package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"mixtape/internal/models"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// SpotifyClient implements Client against the Spotify Web API using the
// client-credentials flow. The access token is cached until shortly before it
// expires. Lookups are retried a couple of times on transient failures since
// the catalog is the dominant external dependency.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	httpClient   *http.Client
	maxRetries   int

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

// NewSpotifyClient creates a Spotify catalog client.
func NewSpotifyClient(clientID, clientSecret string) *SpotifyClient {
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		tokenURL:     "https://accounts.spotify.com/api/token",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 2,
	}
}

// NewSpotifyClientWithBaseURL is used by tests to point the client at a stub
// server. The token endpoint is derived from the same base.
func NewSpotifyClientWithBaseURL(clientID, clientSecret, baseURL string) *SpotifyClient {
	c := NewSpotifyClient(clientID, clientSecret)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	c.tokenURL = c.baseURL + "/token"
	return c
}

// Spotify API response structures.

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifySimple struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []spotifySimple     `json:"artists"`
	DurationMs   int                 `json:"duration_ms"`
	Popularity   int                 `json:"popularity"`
	PreviewURL   string              `json:"preview_url"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	Album        *struct {
		Name   string         `json:"name"`
		Images []spotifyImage `json:"images"`
	} `json:"album"`
}

type spotifyAlbum struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	AlbumType    string              `json:"album_type"`
	ReleaseDate  string              `json:"release_date"`
	TotalTracks  int                 `json:"total_tracks"`
	Popularity   int                 `json:"popularity"`
	Images       []spotifyImage      `json:"images"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	Artists      []spotifySimple     `json:"artists"`
}

type spotifyArtist struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Popularity   int                 `json:"popularity"`
	Genres       []string            `json:"genres"`
	Images       []spotifyImage      `json:"images"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	Followers    struct {
		Total int `json:"total"`
	} `json:"followers"`
}

type spotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Images      []spotifyImage `json:"images"`
	Owner       struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

type spotifySearchResponse struct {
	Tracks    *page[spotifyTrack]    `json:"tracks,omitempty"`
	Albums    *page[spotifyAlbum]    `json:"albums,omitempty"`
	Artists   *page[spotifyArtist]   `json:"artists,omitempty"`
	Playlists *page[spotifyPlaylist] `json:"playlists,omitempty"`
}

type page[T any] struct {
	Items []T `json:"items"`
}

// authenticate obtains an access token, reusing the cached one while valid.
func (c *SpotifyClient) authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.tokenExpiry) {
		return nil
	}

	authString := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+authString)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send auth request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: auth failed: %s - %s", ErrUnavailable, resp.Status, string(body))
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	// Renew a minute early to avoid racing the expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)

	return nil
}

// doRequest performs an authenticated GET against the catalog API, retrying
// transient failures (network errors and 5xx responses) within the budget.
func (c *SpotifyClient) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := c.authenticate(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	apiURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", ErrUnavailable, err)
			continue
		}

		done, err := c.handleResponse(resp, result)
		if done {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// handleResponse decodes the response. The bool reports whether the outcome
// is final; 5xx statuses are retryable.
func (c *SpotifyClient) handleResponse(resp *http.Response, result any) (bool, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return true, fmt.Errorf("decode response: %w", err)
		}
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return true, ErrNotFound
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("%w: %s - %s", ErrUnavailable, resp.Status, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return true, fmt.Errorf("%w: %s - %s", ErrUnavailable, resp.Status, string(body))
	}
}

func (c *SpotifyClient) search(ctx context.Context, kind, query string, limit int) (*spotifySearchResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"q":     []string{query},
		"type":  []string{kind},
		"limit": []string{fmt.Sprintf("%d", limit)},
	}

	var result spotifySearchResponse
	if err := c.doRequest(ctx, "search", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FindTrack retrieves full track details by id.
func (c *SpotifyClient) FindTrack(ctx context.Context, id string) (*models.Track, error) {
	var st spotifyTrack
	if err := c.doRequest(ctx, "tracks/"+id, nil, &st); err != nil {
		return nil, err
	}
	track := convertTrack(st)
	return &track, nil
}

// FindAlbum retrieves full album details by id.
func (c *SpotifyClient) FindAlbum(ctx context.Context, id string) (*models.Album, error) {
	var sa spotifyAlbum
	if err := c.doRequest(ctx, "albums/"+id, nil, &sa); err != nil {
		return nil, err
	}
	album := convertAlbum(sa)
	return &album, nil
}

// FindArtist retrieves full artist details by id.
func (c *SpotifyClient) FindArtist(ctx context.Context, id string) (*models.Artist, error) {
	var sa spotifyArtist
	if err := c.doRequest(ctx, "artists/"+id, nil, &sa); err != nil {
		return nil, err
	}
	artist := convertArtist(sa)
	return &artist, nil
}

// FindPlaylist retrieves a playlist and its track listing, adapted to the
// local playlist structure.
func (c *SpotifyClient) FindPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	var sp spotifyPlaylist
	if err := c.doRequest(ctx, "playlists/"+id, nil, &sp); err != nil {
		return nil, err
	}

	tracks, err := c.FindPlaylistTracks(ctx, id)
	if err != nil {
		return nil, err
	}

	playlist := convertPlaylist(sp)
	playlist.Tracks = tracks
	if playlist.ImageURL == "" && len(tracks) > 0 {
		playlist.ImageURL = tracks[0].ImageURL
	}
	return &playlist, nil
}

// FindPlaylistTracks retrieves the ordered track listing of a playlist.
func (c *SpotifyClient) FindPlaylistTracks(ctx context.Context, id string) ([]models.Track, error) {
	var result struct {
		Items []struct {
			Track *spotifyTrack `json:"track"`
		} `json:"items"`
	}
	if err := c.doRequest(ctx, "playlists/"+id+"/tracks", nil, &result); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, convertTrack(*item.Track))
	}
	return tracks, nil
}

// SearchTracks searches the catalog for tracks matching the query.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	result, err := c.search(ctx, "track", query, limit)
	if err != nil {
		return nil, err
	}
	if result.Tracks == nil {
		return []models.Track{}, nil
	}
	tracks := make([]models.Track, 0, len(result.Tracks.Items))
	for _, st := range result.Tracks.Items {
		tracks = append(tracks, convertTrack(st))
	}
	return tracks, nil
}

// SearchAlbums searches the catalog for albums matching the query.
func (c *SpotifyClient) SearchAlbums(ctx context.Context, query string, limit int) ([]models.Album, error) {
	result, err := c.search(ctx, "album", query, limit)
	if err != nil {
		return nil, err
	}
	if result.Albums == nil {
		return []models.Album{}, nil
	}
	albums := make([]models.Album, 0, len(result.Albums.Items))
	for _, sa := range result.Albums.Items {
		albums = append(albums, convertAlbum(sa))
	}
	return albums, nil
}

// SearchArtists searches the catalog for artists matching the query.
func (c *SpotifyClient) SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error) {
	result, err := c.search(ctx, "artist", query, limit)
	if err != nil {
		return nil, err
	}
	if result.Artists == nil {
		return []models.Artist{}, nil
	}
	artists := make([]models.Artist, 0, len(result.Artists.Items))
	for _, sa := range result.Artists.Items {
		artists = append(artists, convertArtist(sa))
	}
	return artists, nil
}

// SearchPlaylists searches the catalog for playlists matching the query.
// Track listings are not loaded for search results.
func (c *SpotifyClient) SearchPlaylists(ctx context.Context, query string, limit int) ([]models.Playlist, error) {
	result, err := c.search(ctx, "playlist", query, limit)
	if err != nil {
		return nil, err
	}
	if result.Playlists == nil {
		return []models.Playlist{}, nil
	}
	playlists := make([]models.Playlist, 0, len(result.Playlists.Items))
	for _, sp := range result.Playlists.Items {
		playlists = append(playlists, convertPlaylist(sp))
	}
	return playlists, nil
}

// Converters from Spotify wire types to domain types.

func convertTrack(st spotifyTrack) models.Track {
	artistName := ""
	if len(st.Artists) > 0 {
		artistName = st.Artists[0].Name
	}

	albumName := ""
	imageURL := ""
	if st.Album != nil {
		albumName = st.Album.Name
		if len(st.Album.Images) > 0 {
			imageURL = st.Album.Images[0].URL
		}
	}

	return models.Track{
		ID:          st.ID,
		Name:        st.Name,
		ArtistName:  artistName,
		AlbumName:   albumName,
		ImageURL:    imageURL,
		DurationMs:  st.DurationMs,
		PreviewURL:  st.PreviewURL,
		Popularity:  st.Popularity,
		ExternalURL: st.ExternalURLs.Spotify,
	}
}

func convertAlbum(sa spotifyAlbum) models.Album {
	imageURL := ""
	if len(sa.Images) > 0 {
		imageURL = sa.Images[0].URL
	}

	artists := make([]string, 0, len(sa.Artists))
	for _, artist := range sa.Artists {
		artists = append(artists, artist.Name)
	}

	return models.Album{
		ID:          sa.ID,
		Name:        sa.Name,
		ImageURL:    imageURL,
		ReleaseDate: sa.ReleaseDate,
		AlbumType:   sa.AlbumType,
		TotalTracks: sa.TotalTracks,
		Popularity:  sa.Popularity,
		ExternalURL: sa.ExternalURLs.Spotify,
		Artists:     artists,
	}
}

func convertArtist(sa spotifyArtist) models.Artist {
	imageURL := ""
	if len(sa.Images) > 0 {
		imageURL = sa.Images[0].URL
	}

	return models.Artist{
		ID:          sa.ID,
		Name:        sa.Name,
		ImageURL:    imageURL,
		Popularity:  sa.Popularity,
		Followers:   sa.Followers.Total,
		ExternalURL: sa.ExternalURLs.Spotify,
		Genres:      sa.Genres,
	}
}

func convertPlaylist(sp spotifyPlaylist) models.Playlist {
	imageURL := ""
	if len(sp.Images) > 0 {
		imageURL = sp.Images[0].URL
	}

	return models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		OwnerID:     sp.Owner.ID,
		OwnerName:   sp.Owner.DisplayName,
		ImageURL:    imageURL,
		Tracks:      []models.Track{},
	}
}
