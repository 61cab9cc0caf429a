// Package tasks runs multi-step operations that combine the text generator with a music catalog.
//
// # Mood playlists
//
// [MoodSynthesizer.Run] builds a playlist in five stages:
//
//  1. Suggest : the model is asked for 10-15 songs as `- "Song" by Artist` lines. Each parsable line is
//     searched in the catalog and the first hit is kept.
//  2. Top up : when fewer than 10 unique tracks were found, recommendations seeded by the genres in
//     [GenreMap] fill the gap (limit minus found, clamped to [1, 100]).
//  3. Guard : no tracks at all yields an error result wrapping [shared.ErrNoTracksFound].
//  4. Create : a private playlist named "<Mood> Vibes - YYYY-MM-DD" is created.
//  5. Fill : the first limit tracks are added in one batch.
//
// Track IDs are deduplicated across stages. A created playlist is kept even if adding tracks fails.
//
// # Progress Reporting
//
// Progress is reported on an optional channel with non-blocking sends (select with default), so a slow
// or absent reader never stalls the run.
package tasks
