// Gmail REST client.
//
// Response types based on https://developers.google.com/gmail/api/reference/rest
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/desertthunder/agentkit/internal/shared"
	"golang.org/x/oauth2"
)

const (
	gmailBaseURL   = "https://gmail.googleapis.com/gmail/v1/users/me"
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

// GmailScopes are requested when authorizing the mail agent.
var GmailScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.compose",
	"https://www.googleapis.com/auth/gmail.modify",
}

// GmailProfile is the authenticated mailbox profile.
type GmailProfile struct {
	EmailAddress  string `json:"emailAddress"`
	MessagesTotal int    `json:"messagesTotal"`
	ThreadsTotal  int    `json:"threadsTotal"`
	HistoryID     string `json:"historyId"`
}

// GmailMessageRef is an entry of a message listing.
type GmailMessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type gmailMessageList struct {
	Messages           []GmailMessageRef `json:"messages"`
	NextPageToken      string            `json:"nextPageToken"`
	ResultSizeEstimate int               `json:"resultSizeEstimate"`
}

// GmailHeader is a single RFC 2822 header.
type GmailHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// GmailBody holds base64url encoded part data.
type GmailBody struct {
	Size int    `json:"size"`
	Data string `json:"data"`
}

// GmailPart is one MIME part; multipart messages nest further parts.
type GmailPart struct {
	PartID   string        `json:"partId"`
	MimeType string        `json:"mimeType"`
	Filename string        `json:"filename"`
	Headers  []GmailHeader `json:"headers"`
	Body     GmailBody     `json:"body"`
	Parts    []GmailPart   `json:"parts"`
}

// GmailMessage is a message fetched in full format.
type GmailMessage struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"threadId"`
	LabelIDs []string  `json:"labelIds"`
	Snippet  string    `json:"snippet"`
	Payload  GmailPart `json:"payload"`
}

// GmailLabel carries label counters.
type GmailLabel struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MessagesTotal  int    `json:"messagesTotal"`
	MessagesUnread int    `json:"messagesUnread"`
	ThreadsTotal   int    `json:"threadsTotal"`
	ThreadsUnread  int    `json:"threadsUnread"`
}

type clientSecrets struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
	RedirectURIs []string `json:"redirect_uris"`
}

// LoadClientSecrets builds an [oauth2.Config] from a Google client secrets file.
//
// Both "installed" and "web" application types are accepted. redirectURL overrides the file's first
// redirect URI when set.
func LoadClientSecrets(path, redirectURL string, scopes []string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: Gmail credentials file not found: %s", shared.ErrMissingCredentials, path)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var file struct {
		Installed *clientSecrets `json:"installed"`
		Web       *clientSecrets `json:"web"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}

	secrets := file.Installed
	if secrets == nil {
		secrets = file.Web
	}
	if secrets == nil || secrets.ClientID == "" {
		return nil, fmt.Errorf("%w: no client_id in %s", shared.ErrInvalidCredentials, path)
	}

	endpoint := oauth2.Endpoint{AuthURL: googleAuthURL, TokenURL: googleTokenURL}
	if secrets.AuthURI != "" {
		endpoint.AuthURL = secrets.AuthURI
	}
	if secrets.TokenURI != "" {
		endpoint.TokenURL = secrets.TokenURI
	}

	if redirectURL == "" && len(secrets.RedirectURIs) > 0 {
		redirectURL = secrets.RedirectURIs[0]
	}

	return &oauth2.Config{
		ClientID:     secrets.ClientID,
		ClientSecret: secrets.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}, nil
}

// GmailService reads the authenticated user's mailbox.
type GmailService struct {
	restClient
	config *oauth2.Config
}

// NewGmailService creates a Gmail client for config. Requests are unauthenticated until
// [GmailService.Authenticate] is called or [WithTokenSource] is passed.
func NewGmailService(config *oauth2.Config, opts ...Option) *GmailService {
	return &GmailService{
		restClient: newRESTClient("Gmail", gmailBaseURL, opts...),
		config:     config,
	}
}

func (s *GmailService) Name() string { return "Gmail" }

// GetAuthURL returns the Google consent URL. Offline access is requested so a refresh token is issued.
func (s *GmailService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (s *GmailService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// Authenticate refreshes session when expired and uses it for subsequent requests.
func (s *GmailService) Authenticate(ctx context.Context, session *AuthSession) error {
	if _, err := session.RefreshIfExpired(ctx, s.config); err != nil {
		return err
	}
	s.tokens = session.TokenSource(ctx, s.config, func(err error) {
		s.logger.Warn("failed to persist refreshed Gmail token", "error", err)
	})
	return nil
}

// Profile returns the mailbox profile.
func (s *GmailService) Profile(ctx context.Context) (*GmailProfile, error) {
	var profile GmailProfile
	if err := s.doRequest(ctx, http.MethodGet, "/profile", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListMessages lists up to max message references matching query and labelIDs.
func (s *GmailService) ListMessages(ctx context.Context, query string, max int, labelIDs ...string) ([]GmailMessageRef, error) {
	params := url.Values{}
	if max > 0 {
		params.Set("maxResults", strconv.Itoa(max))
	}
	if query != "" {
		params.Set("q", query)
	}
	for _, id := range labelIDs {
		params.Add("labelIds", id)
	}

	var list gmailMessageList
	if err := s.doRequest(ctx, http.MethodGet, "/messages", params, nil, &list); err != nil {
		return nil, err
	}
	return list.Messages, nil
}

// GetMessage fetches one message in full format.
func (s *GmailService) GetMessage(ctx context.Context, id string) (*GmailMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: message id", shared.ErrMissingArgument)
	}

	var msg GmailMessage
	params := url.Values{"format": {"full"}}
	if err := s.doRequest(ctx, http.MethodGet, "/messages/"+url.PathEscape(id), params, nil, &msg); err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return &msg, nil
}

// Label fetches a label with its counters.
func (s *GmailService) Label(ctx context.Context, id string) (*GmailLabel, error) {
	var label GmailLabel
	if err := s.doRequest(ctx, http.MethodGet, "/labels/"+url.PathEscape(id), nil, nil, &label); err != nil {
		return nil, err
	}
	return &label, nil
}
