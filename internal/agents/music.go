package agents

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/services"
	"github.com/desertthunder/agentkit/internal/shared"
	"github.com/desertthunder/agentkit/internal/tasks"
)

// MusicClient is the subset of [services.SpotifyService] used by [Music].
type MusicClient interface {
	CurrentUser(ctx context.Context) (*services.SpotifyUser, error)
	CurrentPlayback(ctx context.Context) (*services.SpotifyPlayback, error)
	Search(ctx context.Context, query string, limit int) ([]services.SpotifyTrack, error)
	TopTracks(ctx context.Context, limit int, timeRange string) ([]services.SpotifyTrack, error)
	Recommendations(ctx context.Context, seeds services.RecommendationSeeds, limit int) ([]services.SpotifyTrack, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*services.SpotifyPlaylist, error)
	AddItems(ctx context.Context, playlistID string, trackIDs []string) (string, error)
	UserPlaylists(ctx context.Context, limit, offset int) (*services.SpotifyPaginatedPlaylists, error)
	StartPlayback(ctx context.Context, uris []string) error
	Pause(ctx context.Context) error
}

const (
	topTrackSeeds     = 5
	playlistPageLimit = 50
)

// Music searches, recommends, plays and builds playlists on the user's Spotify account.
type Music struct {
	Base
	client MusicClient
}

var (
	_ Agent         = (*Music)(nil)
	_ tasks.Catalog = (*Music)(nil)
)

func NewMusic(client MusicClient, gen Generator, logger *log.Logger) *Music {
	return &Music{Base: newBase("spotify", gen, logger), client: client}
}

func (m *Music) TestConnection(ctx context.Context) bool {
	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		return m.connectionFailed(err)
	}
	m.logger.Info("connected to spotify", "user", user.DisplayName)
	return true
}

func (m *Music) Status(ctx context.Context) models.Status {
	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		return m.errorStatus(err)
	}
	playback, err := m.client.CurrentPlayback(ctx)
	if err != nil {
		return m.errorStatus(err)
	}

	subscription := user.Product
	if subscription == "" {
		subscription = "free"
	}
	fields := map[string]any{
		"user_id":      user.ID,
		"display_name": user.DisplayName,
		"followers":    user.Followers.Total,
		"country":      user.Country,
		"subscription": subscription,
	}

	if playback != nil {
		track, artist := "Unknown", "Unknown"
		if playback.Item != nil {
			track, artist = playback.Item.Name, playback.Item.ArtistName()
		}
		fields["currently_playing"] = map[string]any{
			"track":      track,
			"artist":     artist,
			"is_playing": playback.IsPlaying,
			"device":     playback.Device.Name,
		}
	}
	return m.connectedStatus(fields)
}

// SearchTracks returns up to limit tracks matching query.
func (m *Music) SearchTracks(ctx context.Context, query string, limit int) []models.Track {
	results, err := m.client.Search(ctx, query, limit)
	if err != nil {
		m.logger.Error("failed to search tracks", "query", query, "error", err)
		return []models.Track{}
	}

	tracks := toTracks(results)
	m.LogAction("search_tracks", fmt.Sprintf("Found %d tracks for: %s", len(tracks), query))
	return tracks
}

// Recommendations returns up to limit tracks for seeds. Without seeds, the user's five
// short-term top tracks are used.
func (m *Music) Recommendations(ctx context.Context, seeds services.RecommendationSeeds, limit int) []models.Track {
	if seeds.Empty() {
		top, err := m.client.TopTracks(ctx, topTrackSeeds, "short_term")
		if err != nil {
			m.logger.Error("failed to get top tracks", "error", err)
			return []models.Track{}
		}
		for _, t := range top {
			seeds.Tracks = append(seeds.Tracks, t.ID)
		}
	}

	results, err := m.client.Recommendations(ctx, seeds, limit)
	if err != nil {
		m.logger.Error("failed to get recommendations", "error", err)
		return []models.Track{}
	}

	tracks := toTracks(results)
	m.LogAction("get_recommendations", fmt.Sprintf("Generated %d recommendations", len(tracks)))
	return tracks
}

// CreatePlaylist creates a playlist owned by the current user.
func (m *Music) CreatePlaylist(ctx context.Context, name, description string, public bool) models.PlaylistResult {
	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		m.logger.Error("failed to create playlist", "name", name, "error", err)
		return models.ErrorResult(err)
	}

	playlist, err := m.client.CreatePlaylist(ctx, user.ID, name, description, public)
	if err != nil {
		m.logger.Error("failed to create playlist", "name", name, "error", err)
		return models.ErrorResult(err)
	}

	m.LogAction("create_playlist", fmt.Sprintf("Created playlist: %s", name))
	return models.PlaylistResult{
		ID:          playlist.ID,
		Name:        playlist.Name,
		URL:         playlist.ExternalURLs.Spotify,
		Description: playlist.Description,
		Status:      models.StatusCreated,
	}
}

// AddTracksToPlaylist adds trackIDs in a single request and reports whether it was accepted.
func (m *Music) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) bool {
	if _, err := m.client.AddItems(ctx, playlistID, trackIDs); err != nil {
		m.logger.Error("failed to add tracks to playlist", "playlist", playlistID, "error", err)
		return false
	}
	m.LogAction("add_tracks_to_playlist", fmt.Sprintf("Added %d tracks to playlist", len(trackIDs)))
	return true
}

// CreateMoodPlaylist builds a private playlist for mood with at most limit tracks.
// progress may be nil.
func (m *Music) CreateMoodPlaylist(ctx context.Context, mood string, limit int, progress chan<- tasks.ProgressUpdate) models.PlaylistResult {
	m.LogAction("create_mood_playlist", fmt.Sprintf("Starting playlist creation for mood: %s", mood))

	result := tasks.NewMoodSynthesizer(m, m.gen, m.logger).Run(ctx, mood, limit, progress)
	if result.Failed() {
		m.logger.Error("failed to create mood playlist", "mood", mood, "error", result.Error)
		return result
	}

	m.LogAction("create_mood_playlist", fmt.Sprintf("Successfully created '%s' with %d tracks.", result.Name, result.TracksAdded))
	return result
}

// CurrentTrack returns what is playing now, or nil when nothing is playing or the lookup fails.
func (m *Music) CurrentTrack(ctx context.Context) *models.NowPlaying {
	playback, err := m.client.CurrentPlayback(ctx)
	if err != nil {
		m.logger.Error("failed to get current track", "error", err)
		return nil
	}
	if playback == nil || playback.Item == nil {
		return nil
	}

	return &models.NowPlaying{
		Track:      playback.Item.Name,
		Artist:     playback.Item.ArtistName(),
		Album:      playback.Item.Album.Name,
		IsPlaying:  playback.IsPlaying,
		ProgressMS: playback.ProgressMS,
		DurationMS: playback.Item.DurationMS,
		Device:     playback.Device.Name,
	}
}

// MyPlaylists returns the first page of the user's playlists.
func (m *Music) MyPlaylists(ctx context.Context) []models.Playlist {
	page, err := m.client.UserPlaylists(ctx, playlistPageLimit, 0)
	if err != nil {
		m.logger.Error("failed to get playlists", "error", err)
		return []models.Playlist{}
	}

	out := make([]models.Playlist, len(page.Items))
	for i, p := range page.Items {
		out[i] = models.Playlist{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			TrackCount:  p.Tracks.Total,
			Public:      p.Public,
		}
	}
	m.LogAction("get_my_playlists", fmt.Sprintf("Retrieved %d playlists", len(out)))
	return out
}

// PlayTrack starts playback of a single track on the active device.
func (m *Music) PlayTrack(ctx context.Context, trackID string) bool {
	if trackID == "" {
		m.logger.Error("failed to play track", "error", fmt.Errorf("%w: track id", shared.ErrMissingArgument))
		return false
	}
	if err := m.client.StartPlayback(ctx, []string{services.TrackURI(trackID)}); err != nil {
		m.logger.Error("failed to play track", "track", trackID, "error", err)
		return false
	}
	m.LogAction("play_track", fmt.Sprintf("Started playing track: %s", trackID))
	return true
}

func (m *Music) PausePlayback(ctx context.Context) bool {
	if err := m.client.Pause(ctx); err != nil {
		m.logger.Error("failed to pause playback", "error", err)
		return false
	}
	m.LogAction("pause_playback", "Paused playback")
	return true
}

func (m *Music) ResumePlayback(ctx context.Context) bool {
	if err := m.client.StartPlayback(ctx, nil); err != nil {
		m.logger.Error("failed to resume playback", "error", err)
		return false
	}
	m.LogAction("resume_playback", "Resumed playback")
	return true
}

func toTracks(results []services.SpotifyTrack) []models.Track {
	tracks := make([]models.Track, 0, len(results))
	for _, t := range results {
		tracks = append(tracks, toTrack(t))
	}
	return tracks
}

func toTrack(t services.SpotifyTrack) models.Track {
	track := models.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artist:     t.ArtistName(),
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
		Popularity: t.Popularity,
	}
	if t.PreviewURL != nil {
		track.PreviewURL = *t.PreviewURL
	}
	return track
}
