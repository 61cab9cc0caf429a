package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/services"
	"github.com/desertthunder/agentkit/internal/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultPlaylistLimit is used when a non-positive limit is requested.
	DefaultPlaylistLimit = 20

	// minSuggestedTracks is the Stage 1 yield below which recommendations are requested.
	minSuggestedTracks = 10
)

// GenreMap maps a mood to the genres used as recommendation seeds.
var GenreMap = map[string][]string{
	"happy":     {"pop", "dance", "funk"},
	"sad":       {"indie", "blues", "singer-songwriter"},
	"energetic": {"rock", "electronic", "hip-hop"},
	"chill":     {"ambient", "jazz", "indie-folk"},
	"focus":     {"classical", "ambient", "instrumental"},
}

var defaultGenres = []string{"pop"}

// Catalog is the music provider surface the synthesizer needs.
//
// Implementations swallow provider errors: searches and recommendations return empty slices,
// creation returns an error-tagged result and adding returns false.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) []models.Track
	Recommendations(ctx context.Context, seeds services.RecommendationSeeds, limit int) []models.Track
	CreatePlaylist(ctx context.Context, name, description string, public bool) models.PlaylistResult
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) bool
}

// Generator produces text from a prompt. An empty model selects the default one.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) string
}

// Suggestion is one song proposed by the model.
type Suggestion struct {
	Song   string
	Artist string
}

// Query returns the catalog search string for the suggestion.
func (s Suggestion) Query() string {
	return s.Song + " " + s.Artist
}

// MoodSynthesizer builds a playlist for a mood from model suggestions, topped up with genre recommendations.
type MoodSynthesizer struct {
	catalog Catalog
	gen     Generator
	logger  *log.Logger
	now     func() time.Time
}

// NewMoodSynthesizer creates a synthesizer over catalog and gen.
func NewMoodSynthesizer(catalog Catalog, gen Generator, logger *log.Logger) *MoodSynthesizer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &MoodSynthesizer{catalog: catalog, gen: gen, logger: logger, now: time.Now}
}

// WithClock replaces the clock used to date playlist names.
func (m *MoodSynthesizer) WithClock(now func() time.Time) *MoodSynthesizer {
	m.now = now
	return m
}

// sendProgress sends a progress update through the channel without blocking.
func (m *MoodSynthesizer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run creates a playlist of at most limit unique tracks for mood.
//
// Failures are reported in the returned result. A playlist that was created is never removed,
// even when adding tracks fails; TracksAdded is 0 in that case.
func (m *MoodSynthesizer) Run(ctx context.Context, mood string, limit int, progress chan<- ProgressUpdate) models.PlaylistResult {
	if limit <= 0 {
		limit = DefaultPlaylistLimit
	}

	ids := newTrackSet()

	m.sendProgress(progress, suggestUpdate(mood))
	for _, id := range m.suggestedTracks(ctx, mood, progress) {
		ids.add(id)
	}
	m.logger.Debug("resolved suggestions", "mood", mood, "tracks", ids.len())

	if ids.len() < minSuggestedTracks {
		needed := clamp(limit-ids.len(), 1, services.MaxRecommendations)
		genres := GenresForMood(mood)

		m.sendProgress(progress, recommendUpdate(needed, genres))
		for _, track := range m.catalog.Recommendations(ctx, services.RecommendationSeeds{Genres: genres}, needed) {
			ids.add(track.ID)
		}
	}

	if ids.len() == 0 {
		m.logger.Warn("Could not find any tracks for the mood playlist.", "mood", mood)
		result := models.ErrorResult(shared.ErrNoTracksFound)
		m.sendProgress(progress, completedUpdate(result))
		return result
	}

	name := PlaylistName(mood, m.now())
	m.sendProgress(progress, createPlaylistUpdate(name))

	result := m.catalog.CreatePlaylist(ctx, name, PlaylistDescription(mood), false)
	if !result.Failed() && result.ID == "" {
		result = models.ErrorResult(fmt.Errorf("%w: created playlist has no id", shared.ErrMalformedResponse))
	}
	if result.Failed() {
		m.sendProgress(progress, completedUpdate(result))
		return result
	}

	final := ids.first(limit)
	m.sendProgress(progress, addTracksUpdate(len(final)))

	result.TracksAttempted = len(final)
	if m.catalog.AddTracksToPlaylist(ctx, result.ID, final) {
		result.TracksAdded = len(final)
	} else {
		m.logger.Warn("playlist created but tracks could not be added", "playlist", result.ID, "tracks", len(final))
	}

	m.sendProgress(progress, completedUpdate(result))
	return result
}

// suggestedTracks asks the model for songs and resolves each one to the first catalog hit.
func (m *MoodSynthesizer) suggestedTracks(ctx context.Context, mood string, progress chan<- ProgressUpdate) []string {
	suggestions := ParseSuggestions(m.gen.Generate(ctx, SuggestionPrompt(mood), ""))

	ids := make([]string, 0, len(suggestions))
	for i, s := range suggestions {
		m.sendProgress(progress, resolveUpdate(i+1, len(suggestions), s))

		results := m.catalog.SearchTracks(ctx, s.Query(), 1)
		if len(results) > 0 && results[0].ID != "" {
			ids = append(ids, results[0].ID)
		}
	}
	return ids
}

// SuggestionPrompt asks for 10 to 15 songs, one per line, as `- "Song Name" by Artist Name`.
func SuggestionPrompt(mood string) string {
	return fmt.Sprintf(`
Create a list of music recommendations for someone feeling %[1]s.
Provide 10-15 song suggestions in this format:
- "Song Name" by Artist Name
Focus on songs that match the %[1]s mood. Include a mix of popular and lesser-known tracks.
`, mood)
}

// ParseSuggestions extracts songs from bullet lines of the form `- "Song" by Artist`.
//
// Lines without a leading - or • bullet, or without " by ", are skipped. An empty song or artist
// is kept and searched as is.
func ParseSuggestions(text string) []Suggestion {
	var out []Suggestion
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
			continue
		}

		info := strings.TrimSpace(strings.TrimLeft(line, "-•"))
		song, artist, ok := strings.Cut(info, " by ")
		if !ok {
			continue
		}

		song = strings.Trim(strings.TrimSpace(song), `"`)
		artist = strings.TrimSpace(artist)
		out = append(out, Suggestion{Song: song, Artist: artist})
	}
	return out
}

// GenresForMood returns the recommendation genres for mood, case-insensitively. Unknown moods get pop.
func GenresForMood(mood string) []string {
	if genres, ok := GenreMap[strings.ToLower(strings.TrimSpace(mood))]; ok {
		return genres
	}
	return defaultGenres
}

// PlaylistName returns "<Mood> Vibes - YYYY-MM-DD".
func PlaylistName(mood string, t time.Time) string {
	return fmt.Sprintf("%s Vibes - %s", cases.Title(language.English).String(mood), t.Format(time.DateOnly))
}

// PlaylistDescription returns the description stored on created playlists.
func PlaylistDescription(mood string) string {
	return fmt.Sprintf("AI-generated playlist for a %s mood.", mood)
}

// trackSet keeps track IDs unique in insertion order.
type trackSet struct {
	order []string
	seen  map[string]struct{}
}

func newTrackSet() *trackSet {
	return &trackSet{seen: map[string]struct{}{}}
}

func (s *trackSet) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *trackSet) len() int { return len(s.order) }

func (s *trackSet) first(n int) []string {
	if n > len(s.order) {
		n = len(s.order)
	}
	return append([]string(nil), s.order[:n]...)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
