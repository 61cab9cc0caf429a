package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/agentkit/internal/formatter"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/services"
	"github.com/desertthunder/agentkit/internal/shared"
	"github.com/desertthunder/agentkit/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SpotifyCurrent shows what is playing right now.
func (r *Runner) SpotifyCurrent(ctx context.Context, cmd *cli.Command) error {
	music, err := r.musicAgent(ctx)
	if err != nil {
		return err
	}

	current := music.CurrentTrack(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(current, cmd.Bool("pretty"))
	}

	if current == nil {
		return r.writePlain("%s\n", r.palette.Help("Nothing is playing."))
	}

	state := "⏸ Paused"
	if current.IsPlaying {
		state = "▶ Playing"
	}
	r.writePlain("%s: %s - %s\n", state, current.Track, current.Artist)
	r.writePlain("   Album: %s\n", current.Album)
	r.writePlain("   Progress: %s / %s\n", formatter.FormatDuration(current.ProgressMS), formatter.FormatDuration(current.DurationMS))
	if current.Device != "" {
		r.writePlain("   Device: %s\n", current.Device)
	}
	return nil
}

// SpotifySearch searches the catalog for tracks.
func (r *Runner) SpotifySearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	music, err := r.musicAgent(ctx)
	if err != nil {
		return err
	}

	tracks := music.SearchTracks(ctx, query, int(cmd.Int("limit")))
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}
	return r.exportTracks(cmd, fmt.Sprintf("Results for %q", query), tracks)
}

// SpotifyRecommend prints recommendations for the given seeds, or for the user's top tracks.
func (r *Runner) SpotifyRecommend(ctx context.Context, cmd *cli.Command) error {
	music, err := r.musicAgent(ctx)
	if err != nil {
		return err
	}

	seeds := services.RecommendationSeeds{
		Genres:  cmd.StringSlice("genre"),
		Tracks:  cmd.StringSlice("track"),
		Artists: cmd.StringSlice("artist"),
	}
	tracks := music.Recommendations(ctx, seeds, int(cmd.Int("limit")))
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}
	return r.exportTracks(cmd, "Recommendations", tracks)
}

// SpotifyPlaylists lists the user's playlists.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	music, err := r.musicAgent(ctx)
	if err != nil {
		return err
	}

	playlists := music.MyPlaylists(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("%s (%d)\n", r.palette.Title("Playlists"), len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
	}
	return nil
}

// SpotifyMood builds a playlist for a mood and streams progress while it runs.
func (r *Runner) SpotifyMood(ctx context.Context, cmd *cli.Command) error {
	mood := strings.TrimSpace(cmd.StringArg("mood"))
	if mood == "" {
		return fmt.Errorf("%w: mood is required", shared.ErrMissingArgument)
	}

	limit := int(cmd.Int("limit"))
	if limit < 1 || limit > 100 {
		return fmt.Errorf("%w: --limit must be between 1 and 100, got %d", shared.ErrInvalidFlag, limit)
	}

	music, err := r.musicAgent(ctx)
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	logger := shared.WithLogger(r.logger, "run", shared.GenerateID())
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			logger.Debug("mood playlist progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			if !asJSON {
				r.writePlain("→ %s\n", update.Message)
			}
		}
	}()

	result := music.CreateMoodPlaylist(ctx, mood, limit, progress)
	close(progress)
	<-done

	if asJSON {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}
	return r.writePlaylistResult(result)
}

// SpotifyPlay starts playback of one track.
func (r *Runner) SpotifyPlay(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id is required", shared.ErrMissingArgument)
	}

	music, err := r.musicAgent(ctx)
	if err != nil {
		return err
	}
	return r.writePlayback(music.PlayTrack(ctx, id), "Playing "+id)
}

// SpotifyPause pauses playback.
func (r *Runner) SpotifyPause(ctx context.Context, cmd *cli.Command) error {
	music, err := r.musicAgent(ctx)
	if err != nil {
		return err
	}
	return r.writePlayback(music.PausePlayback(ctx), "Paused")
}

// SpotifyResume resumes playback.
func (r *Runner) SpotifyResume(ctx context.Context, cmd *cli.Command) error {
	music, err := r.musicAgent(ctx)
	if err != nil {
		return err
	}
	return r.writePlayback(music.ResumePlayback(ctx), "Resumed")
}

func (r *Runner) writePlayback(ok bool, message string) error {
	if !ok {
		return fmt.Errorf("%w: playback request was rejected (is a device active?)", shared.ErrAPIRequest)
	}
	return r.writePlain("%s\n", r.palette.Check(true, message))
}

func (r *Runner) exportTracks(cmd *cli.Command, title string, tracks []models.Track) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case formatter.CSV:
		if data, err = formatter.TracksToCSV(tracks); err != nil {
			return err
		}
	case formatter.Markdown:
		data = formatter.TracksToMarkdown(title, tracks)
	default:
		if cmd.String("output") == "" {
			return r.writeTracks(title, tracks)
		}
		data = formatter.TracksToMarkdown(title, tracks)
	}
	return r.writeExport(cmd.String("output"), data)
}

func (r *Runner) writeTracks(title string, tracks []models.Track) error {
	r.writePlain("%s (%d)\n", r.palette.Title(title), len(tracks))
	for i, t := range tracks {
		r.writePlain("%d. %s - %s\n", i+1, t.Name, t.Artist)
		r.writePlain("   Album: %s | %s\n", t.Album, formatter.FormatDuration(t.DurationMS))
		r.writePlain("   ID: %s\n", t.ID)
	}
	return nil
}

func (r *Runner) writePlaylistResult(result models.PlaylistResult) error {
	if result.Failed() {
		if result.Err != nil {
			return fmt.Errorf("playlist creation failed: %w", result.Err)
		}
		return fmt.Errorf("%w: playlist creation failed: %s", shared.ErrAPIRequest, result.Error)
	}

	r.writePlain("%s\n", r.palette.Check(true, "Created "+result.Name))
	r.writePlain("   Tracks: %d/%d\n", result.TracksAdded, result.TracksAttempted)
	if result.URL != "" {
		r.writePlain("   URL: %s\n", result.URL)
	}
	if result.TracksAdded < result.TracksAttempted {
		r.writePlain("%s\n", r.palette.Warn("⚠ Some tracks could not be added."))
	}
	return nil
}
