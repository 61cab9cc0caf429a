package agents

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/services"
	"github.com/desertthunder/agentkit/internal/shared"
)

// MailClient is the subset of [services.GmailService] used by [Mail].
type MailClient interface {
	Profile(ctx context.Context) (*services.GmailProfile, error)
	ListMessages(ctx context.Context, query string, max int, labelIDs ...string) ([]services.GmailMessageRef, error)
	GetMessage(ctx context.Context, id string) (*services.GmailMessage, error)
	Label(ctx context.Context, id string) (*services.GmailLabel, error)
}

const unreadLabel = "UNREAD"

// Mail summarizes and triages a mailbox.
type Mail struct {
	Base
	client MailClient
}

var _ Agent = (*Mail)(nil)

func NewMail(client MailClient, gen Generator, logger *log.Logger) *Mail {
	return &Mail{Base: newBase("gmail", gen, logger), client: client}
}

func (m *Mail) TestConnection(ctx context.Context) bool {
	profile, err := m.client.Profile(ctx)
	if err != nil {
		return m.connectionFailed(err)
	}
	m.logger.Info("connected to gmail", "email", profile.EmailAddress)
	return true
}

func (m *Mail) Status(ctx context.Context) models.Status {
	profile, err := m.client.Profile(ctx)
	if err != nil {
		return m.errorStatus(err)
	}
	return m.connectedStatus(map[string]any{
		"email":          profile.EmailAddress,
		"total_messages": profile.MessagesTotal,
		"threads_total":  profile.ThreadsTotal,
	})
}

// RecentEmails returns up to max messages matching query, newest first.
func (m *Mail) RecentEmails(ctx context.Context, max int, query string) []models.MessageSummary {
	emails, err := m.fetch(ctx, query, max)
	if err != nil {
		m.logger.Error("failed to get emails", "error", err)
		return []models.MessageSummary{}
	}
	m.LogAction("get_recent_emails", fmt.Sprintf("Retrieved %d emails", len(emails)))
	return emails
}

// SearchEmails returns up to max messages matching a Gmail search query.
func (m *Mail) SearchEmails(ctx context.Context, query string, max int) []models.MessageSummary {
	emails, err := m.fetch(ctx, query, max)
	if err != nil {
		m.logger.Error("failed to search emails", "query", query, "error", err)
		return []models.MessageSummary{}
	}
	m.LogAction("search_emails", fmt.Sprintf("Found %d emails for query: %s", len(emails), query))
	return emails
}

// fetch lists message references and then gets each message in turn.
func (m *Mail) fetch(ctx context.Context, query string, max int) ([]models.MessageSummary, error) {
	refs, err := m.client.ListMessages(ctx, query, max)
	if err != nil {
		return nil, err
	}

	emails := make([]models.MessageSummary, 0, len(refs))
	for _, ref := range refs {
		msg, err := m.client.GetMessage(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		emails = append(emails, NormalizeMessage(msg))
	}
	return emails, nil
}

// UnreadCount reads the UNREAD label counter. Failures count as zero.
func (m *Mail) UnreadCount(ctx context.Context) int {
	label, err := m.client.Label(ctx, unreadLabel)
	if err != nil {
		m.logger.Error("failed to get unread count", "error", err)
		return 0
	}
	m.LogAction("get_unread_count", fmt.Sprintf("Found %d unread emails", label.MessagesUnread))
	return label.MessagesUnread
}

// SummarizeEmails asks for a brief overview of emails built from subject, sender and snippet.
func (m *Mail) SummarizeEmails(ctx context.Context, emails []models.MessageSummary) string {
	if len(emails) == 0 {
		return "No emails to summarize"
	}

	type digest struct {
		Subject string `json:"subject"`
		Sender  string `json:"sender"`
		Snippet string `json:"snippet"`
	}
	items := make([]digest, len(emails))
	for i, e := range emails {
		items[i] = digest{Subject: e.Subject, Sender: e.Sender, Snippet: e.Snippet}
	}

	prompt := fmt.Sprintf(`
Please provide a concise summary of these %d emails:

%s

Focus on:
1. Key themes and topics
2. Important senders
3. Any action items or urgent matters
4. Overall tone and priority

Keep the summary brief and organized.
`, len(emails), indentJSON(items))

	summary := m.Ask(ctx, prompt)
	m.LogAction("summarize_emails", fmt.Sprintf("Summarized %d emails", len(emails)))
	return summary
}

// ExtractActionItems asks for tasks and follow-ups found in the subject, sender and body of emails.
func (m *Mail) ExtractActionItems(ctx context.Context, emails []models.MessageSummary) string {
	if len(emails) == 0 {
		return "No emails to analyze"
	}

	type content struct {
		Subject string `json:"subject"`
		Sender  string `json:"sender"`
		Body    string `json:"body"`
	}
	items := make([]content, len(emails))
	for i, e := range emails {
		items[i] = content{Subject: e.Subject, Sender: e.Sender, Body: e.Body}
	}

	prompt := fmt.Sprintf(`
Analyze these emails and extract any action items, tasks, or follow-ups needed:

%s

For each action item, provide:
1. The task description
2. Who it's from
3. Any deadlines mentioned
4. Priority level (high/medium/low)

If no action items are found, say so clearly.
`, indentJSON(items))

	actions := m.Ask(ctx, prompt)
	m.LogAction("extract_action_items", fmt.Sprintf("Analyzed %d emails for tasks", len(emails)))
	return actions
}

// DraftReply writes a reply to message id. extra is passed to the model as additional context.
func (m *Mail) DraftReply(ctx context.Context, id, extra string) string {
	msg, err := m.client.GetMessage(ctx, id)
	if err != nil {
		m.logger.Error("failed to draft reply", "id", id, "error", err)
		return fmt.Sprintf("Error drafting reply: %v", err)
	}
	email := NormalizeMessage(msg)

	prompt := fmt.Sprintf(`
Draft a professional reply to this email:

Subject: %s
From: %s
Content: %s

Additional context: %s

Please write an appropriate, professional response. Keep it concise and helpful.
`, email.Subject, email.Sender, email.Body, extra)

	reply := m.Ask(ctx, prompt)
	m.LogAction("draft_reply", fmt.Sprintf("Drafted reply for email: %s", email.Subject))
	return reply
}

// NormalizeMessage flattens a full-format message. Missing headers default to "No Subject" and
// "Unknown", and the body is cut to [models.MaxBodyLength] runes.
func NormalizeMessage(msg *services.GmailMessage) models.MessageSummary {
	headers := msg.Payload.Headers

	labels := msg.LabelIDs
	if labels == nil {
		labels = []string{}
	}

	return models.MessageSummary{
		ID:      msg.ID,
		Subject: header(headers, "Subject", "No Subject"),
		Sender:  header(headers, "From", "Unknown"),
		Date:    header(headers, "Date", "Unknown"),
		Body:    shared.Truncate(MessageBody(msg.Payload), models.MaxBodyLength),
		Snippet: msg.Snippet,
		Labels:  labels,
	}
}

func header(headers []services.GmailHeader, name, fallback string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return fallback
}

// MessageBody returns the first text/plain part found depth first, or the decoded top-level body.
func MessageBody(payload services.GmailPart) string {
	if text, ok := plainTextPart(payload.Parts); ok {
		return text
	}
	return decodeBase64URL(payload.Body.Data)
}

func plainTextPart(parts []services.GmailPart) (string, bool) {
	for _, part := range parts {
		if part.MimeType == "text/plain" && part.Body.Data != "" {
			return decodeBase64URL(part.Body.Data), true
		}
		if text, ok := plainTextPart(part.Parts); ok {
			return text, true
		}
	}
	return "", false
}

// decodeBase64URL accepts padded and unpadded base64url. Undecodable data yields "".
func decodeBase64URL(data string) string {
	if data == "" {
		return ""
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
