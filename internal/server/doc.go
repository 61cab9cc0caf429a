// Package server runs the short-lived HTTP server that receives OAuth redirects.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [RequestLogger] is the only middleware in use.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the authorization code callback for one provider (Gmail or Spotify).
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel. It only processes one callback to prevent replay attacks.
//
// When the user runs `agentkit gmail auth` or `agentkit spotify auth`, a temporary server starts on the
// configured address (localhost:3000 by default), handles the callback and shuts down after receiving the token.
package server
