// Package services implements thin REST clients for the providers the agents wrap: Gmail, Notion and Spotify.
//
// # Requests
//
// Every client embeds the same request helper. It resolves a bearer token from an [oauth2.TokenSource],
// waits on an optional [rate.Limiter], sends JSON and decodes JSON. Status codes are mapped to sentinel errors:
//   - 401 : [shared.ErrTokenExpired]
//   - any other non-2xx : [shared.ErrAPIRequest]
//   - no token source : [shared.ErrNotAuthenticated]
//
// Base URL, HTTP client, rate limit and token source are all replaceable through [Option] values,
// which is how the tests point clients at an [httptest.Server].
//
// # Sessions
//
// [AuthSession] holds a provider-issued [oauth2.Token] and the token file it is persisted to.
// Gmail and Spotify call [AuthSession.RefreshIfExpired] before the first request, then read tokens
// through [AuthSession.TokenSource], which writes every refreshed token back to disk.
// Notion uses a static integration token.
//
// # OAuth
//
// [GmailService] and [SpotifyService] implement [OAuthService] so the CLI can run the authorization code
// flow against the local callback server in the server package.
package services
