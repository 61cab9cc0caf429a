package tasks

import (
	"fmt"

	"github.com/desertthunder/agentkit/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	SuggestTracks Phase = iota
	ResolveTracks
	RecommendTracks
	CreatePlaylist
	AddTracks
	Completed
)

func (p Phase) String() string {
	switch p {
	case SuggestTracks:
		return "suggest_tracks"
	case ResolveTracks:
		return "resolve_tracks"
	case RecommendTracks:
		return "recommend_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case Completed:
		return "completed"
	default:
		return ""
	}
}

func suggestUpdate(mood string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SuggestTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Asking the model for %s songs...", mood),
	}
}

func resolveUpdate(step, total int, s Suggestion) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, s.Artist, s.Song),
		Data:    s,
	}
}

func recommendUpdate(needed int, genres []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecommendTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %d recommendations for %v...", needed, genres),
		Data:    genres,
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func addTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks...", count),
	}
}

func completedUpdate(result models.PlaylistResult) ProgressUpdate {
	msg := fmt.Sprintf("Playlist created: %s (%d tracks)", result.Name, result.TracksAdded)
	if result.Failed() {
		msg = fmt.Sprintf("Playlist not created: %s", result.Error)
	}
	return ProgressUpdate{
		Phase:   Completed,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    result,
	}
}
