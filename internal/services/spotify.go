// Spotify Web API client.
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/agentkit/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// MaxPlaylistItems is the largest batch accepted by the add-items endpoint.
	MaxPlaylistItems = 100
	// MaxRecommendations is the largest limit accepted by the recommendations endpoint.
	MaxRecommendations = 100
)

// SpotifyScopes are requested when authorizing the music agent.
var SpotifyScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-private",
	"playlist-modify-public",
	"user-library-read",
	"user-library-modify",
	"user-read-recently-played",
	"user-top-read",
}

type followers struct {
	Total int `json:"total"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	PreviewURL *string         `json:"preview_url"`
	URI        string          `json:"uri"`
}

// ArtistName returns the first credited artist, or "Unknown".
func (t SpotifyTrack) ArtistName() string {
	if len(t.Artists) == 0 || t.Artists[0].Name == "" {
		return "Unknown"
	}
	return t.Artists[0].Name
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a simplified playlist object, as returned by listings and creation.
type SpotifyPlaylist struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Owner        Owner               `json:"owner"`
	Public       bool                `json:"public"`
	Tracks       simplePlaylistTrack `json:"tracks"`
	ExternalURLs externalURLs        `json:"external_urls"`
	URI          string              `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifyPlaylist `json:"items"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
}

// SpotifyDevice is a playback device.
type SpotifyDevice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

// SpotifyPlayback is the user's playback state. Item is nil between tracks or for non-track media.
type SpotifyPlayback struct {
	Device     SpotifyDevice `json:"device"`
	IsPlaying  bool          `json:"is_playing"`
	ProgressMS int           `json:"progress_ms"`
	Item       *SpotifyTrack `json:"item"`
}

// RecommendationSeeds selects what recommendations are based on. At most five seeds in total are accepted.
type RecommendationSeeds struct {
	Tracks  []string
	Artists []string
	Genres  []string
}

// Empty reports whether no seed is set.
func (s RecommendationSeeds) Empty() bool {
	return len(s.Tracks) == 0 && len(s.Artists) == 0 && len(s.Genres) == 0
}

// SpotifyService talks to the Spotify Web API on behalf of the authorized user.
// Uses [oauth2] for authentication and refreshes tokens through the persisted [AuthSession].
type SpotifyService struct {
	restClient
	config *oauth2.Config
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...Option) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       SpotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		restClient: newRESTClient("Spotify", spotifyBaseURL, opts...),
		config:     config,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration used for the code exchange.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// Authenticate refreshes session when expired and uses it for subsequent requests.
func (s *SpotifyService) Authenticate(ctx context.Context, session *AuthSession) error {
	if _, err := session.RefreshIfExpired(ctx, s.config); err != nil {
		return err
	}
	s.tokens = session.TokenSource(ctx, s.config, func(err error) {
		s.logger.Warn("failed to persist refreshed Spotify token", "error", err)
	})
	return nil
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentPlayback returns the playback state, or nil when no device is active.
func (s *SpotifyService) CurrentPlayback(ctx context.Context) (*SpotifyPlayback, error) {
	var playback *SpotifyPlayback
	if err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, nil, &playback); err != nil {
		return nil, err
	}
	return playback, nil
}

// Search finds tracks matching query.
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]SpotifyTrack, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/search", params, nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks.Items, nil
}

// TopTracks returns the user's top tracks for timeRange (short_term, medium_term or long_term).
func (s *SpotifyService) TopTracks(ctx context.Context, limit int, timeRange string) ([]SpotifyTrack, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if timeRange != "" {
		params.Set("time_range", timeRange)
	}

	var response struct {
		Items []SpotifyTrack `json:"items"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me/top/tracks", params, nil, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// Recommendations returns up to limit tracks generated from seeds.
func (s *SpotifyService) Recommendations(ctx context.Context, seeds RecommendationSeeds, limit int) ([]SpotifyTrack, error) {
	if seeds.Empty() {
		return nil, fmt.Errorf("%w: at least one recommendation seed", shared.ErrMissingArgument)
	}
	if limit < 1 || limit > MaxRecommendations {
		return nil, fmt.Errorf("%w: recommendation limit %d outside [1, %d]", shared.ErrInvalidArgument, limit, MaxRecommendations)
	}

	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if len(seeds.Tracks) > 0 {
		params.Set("seed_tracks", strings.Join(seeds.Tracks, ","))
	}
	if len(seeds.Artists) > 0 {
		params.Set("seed_artists", strings.Join(seeds.Artists, ","))
	}
	if len(seeds.Genres) > 0 {
		params.Set("seed_genres", strings.Join(seeds.Genres, ","))
	}

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/recommendations", params, nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// CreatePlaylist creates a playlist owned by userID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*SpotifyPlaylist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist SpotifyPlaylist
	endpoint := "/users/" + url.PathEscape(userID) + "/playlists"
	if err := s.doRequest(ctx, http.MethodPost, endpoint, nil, body, &playlist); err != nil {
		return nil, err
	}
	if playlist.ID == "" {
		return nil, fmt.Errorf("%w: created playlist has no id", shared.ErrMalformedResponse)
	}
	return &playlist, nil
}

// AddItems appends tracks to a playlist in a single request and returns the new snapshot id.
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, trackIDs []string) (string, error) {
	if len(trackIDs) == 0 {
		return "", fmt.Errorf("%w: no track IDs provided", shared.ErrMissingArgument)
	}
	if len(trackIDs) > MaxPlaylistItems {
		return "", fmt.Errorf("%w: maximum %d tracks per request", shared.ErrInvalidArgument, MaxPlaylistItems)
	}

	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = TrackURI(id)
	}

	var response struct {
		SnapshotID string `json:"snapshot_id"`
	}
	endpoint := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	if err := s.doRequest(ctx, http.MethodPost, endpoint, nil, map[string]any{"uris": uris}, &response); err != nil {
		return "", err
	}
	return response.SnapshotID, nil
}

// UserPlaylists retrieves the current user's playlists with pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, http.MethodGet, "/me/playlists", params, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// StartPlayback starts the given track URIs, or resumes the current context when uris is empty.
func (s *SpotifyService) StartPlayback(ctx context.Context, uris []string) error {
	var body any
	if len(uris) > 0 {
		body = map[string]any{"uris": uris}
	}
	return s.doRequest(ctx, http.MethodPut, "/me/player/play", nil, body, nil)
}

// Pause pauses playback on the active device.
func (s *SpotifyService) Pause(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil, nil)
}

// TrackURI converts a track ID to its spotify:track URI.
func TrackURI(id string) string {
	return "spotify:track:" + id
}
