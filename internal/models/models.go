package models

// MaxBodyLength is the maximum number of runes kept from a message body.
const MaxBodyLength = 500

// Status values reported by agents.
const (
	StatusConnected = "connected"
	StatusError     = "error"
	StatusCreated   = "created"
)

// MessageSummary is a normalized view of one mail message.
type MessageSummary struct {
	ID      string   `json:"id"`
	Subject string   `json:"subject"`
	Sender  string   `json:"sender"`
	Date    string   `json:"date"`
	Body    string   `json:"body"`
	Snippet string   `json:"snippet"`
	Labels  []string `json:"labels"`
}

// RecordSummary is a normalized view of one workspace database row.
type RecordSummary struct {
	Title      string `json:"title"`
	Created    string `json:"created"`
	LastEdited string `json:"last_edited"`
}

// DatabaseSummary identifies one workspace database.
type DatabaseSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Track is a piece of music identified by its provider ID.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMS int    `json:"duration_ms"`
	Popularity int    `json:"popularity"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// Playlist represents a playlist owned or followed by the user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int    `json:"tracks_count"`
	Public      bool   `json:"public"`
}

// NowPlaying describes the user's current playback.
type NowPlaying struct {
	Track      string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	IsPlaying  bool   `json:"is_playing"`
	ProgressMS int    `json:"progress"`
	DurationMS int    `json:"duration"`
	Device     string `json:"device"`
}

// PlaylistResult is the outcome of a playlist creation.
//
// TracksAttempted is the number of IDs sent in the add call.
// TracksAdded equals TracksAttempted when the provider accepted them and 0 otherwise.
type PlaylistResult struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name,omitempty"`
	URL             string `json:"url,omitempty"`
	Description     string `json:"description,omitempty"`
	TracksAdded     int    `json:"tracks_added"`
	TracksAttempted int    `json:"tracks_attempted"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
	Err             error  `json:"-"`
}

// Failed reports whether the result carries an error.
func (r PlaylistResult) Failed() bool {
	return r.Status == StatusError || r.Err != nil
}

// ErrorResult builds a failed [PlaylistResult] from err.
func ErrorResult(err error) PlaylistResult {
	return PlaylistResult{Status: StatusError, Error: err.Error(), Err: err}
}

// Status is the uniform snapshot returned by every agent.
//
// Fields holds provider-specific counters (e.g. total_messages, database_count).
type Status struct {
	Agent  string         `json:"agent"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Connected reports whether the snapshot was taken successfully.
func (s Status) Connected() bool {
	return s.Status == StatusConnected
}

// ErrorStatus builds an error-tagged [Status] for agent.
func ErrorStatus(agent string, err error) Status {
	return Status{Agent: agent, Status: StatusError, Error: err.Error()}
}
