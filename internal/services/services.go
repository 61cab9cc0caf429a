package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentkit/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// OAuthService is implemented by providers that authorize through the authorization code flow.
type OAuthService interface {
	// GetAuthURL returns the consent page URL carrying state.
	GetAuthURL(state string) string

	// GetOAuthConfig returns the config used to exchange the callback code.
	GetOAuthConfig() *oauth2.Config

	// Name returns the provider name (e.g. "Gmail", "Spotify")
	Name() string
}

// Option configures the REST client shared by every provider service.
type Option func(*restClient)

// WithBaseURL points the service at a different API root, typically an [httptest.Server].
func WithBaseURL(u string) Option {
	return func(c *restClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces [http.DefaultClient].
func WithHTTPClient(h *http.Client) Option {
	return func(c *restClient) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithRateLimit caps outgoing requests at rps per second. Zero or less disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *restClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *restClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTokenSource authenticates requests with ts instead of a persisted session.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *restClient) { c.tokens = ts }
}

// restClient performs authenticated JSON requests against one provider API.
type restClient struct {
	provider   string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     oauth2.TokenSource
	headers    map[string]string
	logger     *log.Logger
}

func newRESTClient(provider, baseURL string, opts ...Option) restClient {
	c := restClient{
		provider:   provider,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		headers:    map[string]string{},
		logger:     shared.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// doRequest performs an authenticated HTTP request and decodes a JSON reply into result.
//
// 401 maps to [shared.ErrTokenExpired]; other non-2xx statuses map to [shared.ErrAPIRequest].
// Empty bodies (e.g. 204) leave result untouched.
func (c *restClient) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	if c.tokens == nil {
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, c.provider)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("provider request", "provider", c.provider, "method", method, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s returned status 401", shared.ErrTokenExpired, c.provider)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: %s status %d: %s", shared.ErrAPIRequest, c.provider, resp.StatusCode, shared.Truncate(string(data), 200))
	}

	if result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
	}

	return nil
}
