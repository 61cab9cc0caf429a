// package formatter renders agent results as CSV, Markdown or plain text for export
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/shared"
)

// Format selects an export encoding.
type Format string

const (
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// ParseFormat accepts text, csv, markdown (or md). Empty means [Text].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return Text, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, csv or markdown)", shared.ErrInvalidFlag, s)
	}
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// TracksToCSV converts tracks to CSV with columns: ID, Name, Artist, Album, Duration, Popularity
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	records := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		records = append(records, []string{
			track.ID,
			track.Name,
			track.Artist,
			track.Album,
			FormatDuration(track.DurationMS),
			strconv.Itoa(track.Popularity),
		})
	}
	return writeCSV([]string{"ID", "Name", "Artist", "Album", "Duration", "Popularity"}, records)
}

// TracksToMarkdown renders tracks as a numbered Markdown list under a title heading.
func TracksToMarkdown(title string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	for i, track := range tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Name, albumPart, FormatDuration(track.DurationMS))
	}

	return buf.Bytes()
}

// EmailsToCSV converts emails to CSV with columns: ID, Date, Sender, Subject, Snippet
func EmailsToCSV(emails []models.MessageSummary) ([]byte, error) {
	records := make([][]string, 0, len(emails))
	for _, e := range emails {
		records = append(records, []string{e.ID, e.Date, e.Sender, e.Subject, e.Snippet})
	}
	return writeCSV([]string{"ID", "Date", "Sender", "Subject", "Snippet"}, records)
}

// EmailsToMarkdown renders emails as Markdown sections, one per message.
func EmailsToMarkdown(title string, emails []models.MessageSummary) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Emails**: %d\n", len(emails))

	for _, e := range emails {
		fmt.Fprintf(&buf, "\n## %s\n\n", e.Subject)
		fmt.Fprintf(&buf, "- **From**: %s\n", e.Sender)
		if e.Date != "" {
			fmt.Fprintf(&buf, "- **Date**: %s\n", e.Date)
		}
		fmt.Fprintf(&buf, "- **ID**: `%s`\n", e.ID)
		if e.Snippet != "" {
			fmt.Fprintf(&buf, "\n> %s\n", e.Snippet)
		}
	}

	return buf.Bytes()
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path is empty", shared.ErrMissingArgument)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
