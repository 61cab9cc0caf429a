// Package models defines the read-only views agents hand back to callers.
//
// Every value here is derived from a provider payload at the moment it is fetched and is never cached:
//   - [MessageSummary] : a normalized mail message (body truncated to [MaxBodyLength] runes)
//   - [RecordSummary] and [DatabaseSummary] : workspace database rows and databases
//   - [Track], [Playlist] and [NowPlaying] : music catalog and playback views
//   - [PlaylistResult] : the outcome of a playlist creation, including partial failures
//   - [Status] : the uniform health snapshot every agent reports
package models
