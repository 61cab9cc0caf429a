package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/agentkit/internal/shared"
	"golang.org/x/oauth2"
)

// AuthSession is a provider-issued token persisted to a token file.
type AuthSession struct {
	Token  *oauth2.Token
	Scopes []string
	Path   string

	mu sync.Mutex
}

type sessionFile struct {
	*oauth2.Token
	Scopes []string `json:"scopes,omitempty"`
}

// NewSession creates a session for token that will be persisted at path.
func NewSession(path string, token *oauth2.Token, scopes []string) *AuthSession {
	return &AuthSession{Token: token, Scopes: scopes, Path: path}
}

// LoadSession reads the token file at path.
//
// A missing file yields [shared.ErrNotAuthenticated] so callers can point the user at the auth command.
func LoadSession(path string, scopes []string) (*AuthSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: token file %s not found", shared.ErrNotAuthenticated, path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: token file %s: %v", shared.ErrInvalidCredentials, path, err)
	}
	if f.Token == nil || (f.AccessToken == "" && f.RefreshToken == "") {
		return nil, fmt.Errorf("%w: token file %s has no token", shared.ErrInvalidCredentials, path)
	}

	if len(f.Scopes) > 0 {
		scopes = f.Scopes
	}
	return &AuthSession{Token: f.Token, Scopes: scopes, Path: path}, nil
}

// Save writes the session to its token file with owner-only permissions.
func (s *AuthSession) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *AuthSession) save() error {
	if s.Path == "" {
		return fmt.Errorf("%w: token file path is empty", shared.ErrInvalidConfig)
	}
	if s.Token == nil {
		return fmt.Errorf("%w: nothing to save", shared.ErrNotAuthenticated)
	}

	data, err := json.MarshalIndent(sessionFile{Token: s.Token, Scopes: s.Scopes}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Valid reports whether the access token can be used without a refresh.
func (s *AuthSession) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Token.Valid()
}

// RefreshIfExpired refreshes an expired token through cfg and persists the result.
//
// It reports whether a refresh happened. An expired token without a refresh token yields
// [shared.ErrNoRefreshToken].
func (s *AuthSession) RefreshIfExpired(ctx context.Context, cfg *oauth2.Config) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Token == nil {
		return false, shared.ErrNotAuthenticated
	}
	if s.Token.Valid() {
		return false, nil
	}
	if s.Token.RefreshToken == "" {
		return false, fmt.Errorf("%w: %v", shared.ErrTokenExpired, shared.ErrNoRefreshToken)
	}

	token, err := cfg.TokenSource(ctx, s.Token).Token()
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	s.Token = token
	if err := s.save(); err != nil {
		return true, err
	}
	return true, nil
}

// TokenSource returns a source that refreshes through cfg and writes every new token back to the
// session file. onSaveError, when set, receives persistence failures.
func (s *AuthSession) TokenSource(ctx context.Context, cfg *oauth2.Config, onSaveError func(error)) oauth2.TokenSource {
	s.mu.Lock()
	current := s.Token
	s.mu.Unlock()

	return &refreshableTokenSource{
		source: cfg.TokenSource(ctx, current),
		last:   current,
		callback: func(token *oauth2.Token) {
			s.mu.Lock()
			s.Token = token
			err := s.save()
			s.mu.Unlock()
			if err != nil && onSaveError != nil {
				onSaveError(err)
			}
		},
	}
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and calls callback whenever the access token changes.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     *oauth2.Token
	mu       sync.Mutex
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := r.last == nil || r.last.AccessToken != token.AccessToken
	r.last = token
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}
