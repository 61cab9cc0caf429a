package agents

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/services"
)

// WorkspaceClient is the subset of [services.NotionService] used by [Workspace].
type WorkspaceClient interface {
	SearchDatabases(ctx context.Context) ([]services.NotionDatabase, error)
	QueryDatabase(ctx context.Context, databaseID string, pageSize int) ([]services.NotionPage, error)
}

const (
	defaultPageLimit = 10
	contextPageLimit = 5
	untitled         = "Untitled"
)

// Workspace answers questions about the databases shared with a Notion integration.
type Workspace struct {
	Base
	client WorkspaceClient
}

var _ Agent = (*Workspace)(nil)

func NewWorkspace(client WorkspaceClient, gen Generator, logger *log.Logger) *Workspace {
	return &Workspace{Base: newBase("notion", gen, logger), client: client}
}

func (w *Workspace) TestConnection(ctx context.Context) bool {
	databases, err := w.client.SearchDatabases(ctx)
	if err != nil {
		return w.connectionFailed(err)
	}
	w.logger.Info("connected to notion", "databases", len(databases))
	return true
}

func (w *Workspace) Status(ctx context.Context) models.Status {
	databases, err := w.client.SearchDatabases(ctx)
	if err != nil {
		return w.errorStatus(err)
	}
	return w.connectedStatus(map[string]any{"database_count": len(databases)})
}

// Databases lists every accessible database.
func (w *Workspace) Databases(ctx context.Context) []models.DatabaseSummary {
	databases, err := w.client.SearchDatabases(ctx)
	if err != nil {
		w.logger.Error("failed to get databases", "error", err)
		return []models.DatabaseSummary{}
	}

	out := make([]models.DatabaseSummary, len(databases))
	for i, db := range databases {
		out[i] = models.DatabaseSummary{ID: db.ID, Title: DatabaseTitle(db)}
	}
	return out
}

// DatabasePages returns up to limit rows of a database. A non-positive limit means 10.
func (w *Workspace) DatabasePages(ctx context.Context, databaseID string, limit int) []models.RecordSummary {
	if limit <= 0 {
		limit = defaultPageLimit
	}

	pages, err := w.client.QueryDatabase(ctx, databaseID, limit)
	if err != nil {
		w.logger.Error("failed to get pages", "database", databaseID, "error", err)
		return []models.RecordSummary{}
	}

	out := make([]models.RecordSummary, len(pages))
	for i, page := range pages {
		out[i] = models.RecordSummary{
			Title:      PageTitle(page),
			Created:    page.CreatedTime,
			LastEdited: page.LastEditedTime,
		}
	}
	return out
}

// SummarizeDatabase describes the contents of a database and guesses what it is used for.
func (w *Workspace) SummarizeDatabase(ctx context.Context, databaseID string) string {
	pages := w.DatabasePages(ctx, databaseID, defaultPageLimit)
	if len(pages) == 0 {
		return "No pages found in database"
	}

	prompt := fmt.Sprintf(`
I have a Notion database with %d pages. Here's the information:

%s

Please provide a brief summary of this database content and suggest what type of database this might be.
`, len(pages), indentJSON(pages))

	w.LogAction("summarize_database", fmt.Sprintf("Summarizing database ID: %s (%d pages)", databaseID, len(pages)))
	return w.Ask(ctx, prompt)
}

// AskAboutWorkspace answers question using database titles, IDs and page counts as context.
// Page counts look at no more than five pages per database.
func (w *Workspace) AskAboutWorkspace(ctx context.Context, question string) string {
	databases := w.Databases(ctx)

	var sb strings.Builder
	sb.WriteString("You are an AI assistant that has access to a user's Notion workspace.\n\n")
	fmt.Fprintf(&sb, "Current Notion workspace contains:\n- %d databases\n\nDatabase details:\n", len(databases))
	for _, db := range databases {
		pages := w.DatabasePages(ctx, db.ID, contextPageLimit)
		fmt.Fprintf(&sb, "- Database: '%s' (ID: %s) with %d pages\n", db.Title, db.ID, len(pages))
	}
	fmt.Fprintf(&sb, "\nUser question: %s\n", question)
	sb.WriteString("\nPlease answer based on the Notion data provided above. ")
	sb.WriteString("If you need more specific information about a database, suggest using the 'summarize' command.\n")

	w.LogAction("ask_about_notion", fmt.Sprintf("Answering question over %d databases: %s", len(databases), question))
	return w.Ask(ctx, sb.String())
}

// DatabaseTitle returns the plain title of db, or "Untitled".
func DatabaseTitle(db services.NotionDatabase) string {
	if title := services.PlainText(db.Title); title != "" {
		return title
	}
	return untitled
}

// PageTitle returns the text of the first title property with content, or "Untitled".
// Properties are visited in name order.
func PageTitle(page services.NotionPage) string {
	for _, name := range slices.Sorted(maps.Keys(page.Properties)) {
		prop := page.Properties[name]
		if prop.Type != "title" || len(prop.Title) == 0 {
			continue
		}
		if title := services.PlainText(prop.Title); title != "" {
			return title
		}
	}
	return untitled
}
