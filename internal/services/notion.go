// Notion REST client.
//
// Response types based on https://developers.notion.com/reference
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/agentkit/internal/shared"
	"golang.org/x/oauth2"
)

const (
	notionBaseURL = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
)

// NotionRichText is one segment of a rich text array.
type NotionRichText struct {
	Type      string `json:"type"`
	PlainText string `json:"plain_text"`
	Text      *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
}

// NotionDatabase is a database object returned by search.
type NotionDatabase struct {
	ID             string           `json:"id"`
	Object         string           `json:"object"`
	Title          []NotionRichText `json:"title"`
	CreatedTime    string           `json:"created_time"`
	LastEditedTime string           `json:"last_edited_time"`
	URL            string           `json:"url"`
}

// NotionProperty is a page property. Only title properties carry the Title field.
type NotionProperty struct {
	ID    string           `json:"id"`
	Type  string           `json:"type"`
	Title []NotionRichText `json:"title,omitempty"`
}

// NotionPage is a database row.
type NotionPage struct {
	ID             string                    `json:"id"`
	Object         string                    `json:"object"`
	CreatedTime    string                    `json:"created_time"`
	LastEditedTime string                    `json:"last_edited_time"`
	Properties     map[string]NotionProperty `json:"properties"`
	URL            string                    `json:"url"`
}

type notionList[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// PlainText joins the text of every segment. Segments without plain_text fall back to text.content.
func PlainText(segments []NotionRichText) string {
	var sb strings.Builder
	for _, seg := range segments {
		switch {
		case seg.PlainText != "":
			sb.WriteString(seg.PlainText)
		case seg.Text != nil:
			sb.WriteString(seg.Text.Content)
		}
	}
	return sb.String()
}

// NotionService reads databases shared with an internal integration.
type NotionService struct {
	restClient
}

// NewNotionService creates a client authenticated with the integration token.
func NewNotionService(token string, opts ...Option) (*NotionService, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: NOTION_TOKEN not set", shared.ErrMissingCredentials)
	}

	opts = append([]Option{WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))}, opts...)
	c := newRESTClient("Notion", notionBaseURL, opts...)
	c.headers["Notion-Version"] = notionVersion

	return &NotionService{restClient: c}, nil
}

func (s *NotionService) Name() string { return "Notion" }

// SearchDatabases returns every database the integration can see, following next_cursor across pages.
func (s *NotionService) SearchDatabases(ctx context.Context) ([]NotionDatabase, error) {
	var (
		dbs    []NotionDatabase
		cursor string
	)
	for {
		body := map[string]any{
			"filter": map[string]string{"property": "object", "value": "database"},
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var list notionList[NotionDatabase]
		if err := s.doRequest(ctx, http.MethodPost, "/search", nil, body, &list); err != nil {
			return nil, err
		}
		dbs = append(dbs, list.Results...)

		if !list.HasMore || list.NextCursor == nil || *list.NextCursor == "" || *list.NextCursor == cursor {
			return dbs, nil
		}
		cursor = *list.NextCursor
	}
}

// QueryDatabase returns the first pageSize rows of a database.
func (s *NotionService) QueryDatabase(ctx context.Context, databaseID string, pageSize int) ([]NotionPage, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("%w: database id", shared.ErrMissingArgument)
	}

	body := map[string]any{}
	if pageSize > 0 {
		body["page_size"] = min(pageSize, 100)
	}

	var list notionList[NotionPage]
	endpoint := "/databases/" + url.PathEscape(databaseID) + "/query"
	if err := s.doRequest(ctx, http.MethodPost, endpoint, nil, body, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}
