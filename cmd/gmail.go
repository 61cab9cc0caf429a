package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/agentkit/internal/formatter"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/shared"
	"github.com/urfave/cli/v3"
)

// GmailRecent lists recent emails.
func (r *Runner) GmailRecent(ctx context.Context, cmd *cli.Command) error {
	mail, err := r.mailAgent(ctx)
	if err != nil {
		return err
	}

	emails := mail.RecentEmails(ctx, int(cmd.Int("max")), cmd.String("query"))
	if cmd.Bool("json") {
		return r.writeJSON(emails, cmd.Bool("pretty"))
	}
	return r.exportEmails(cmd, "Recent Emails", emails)
}

// GmailUnread prints the number of unread emails.
func (r *Runner) GmailUnread(ctx context.Context, cmd *cli.Command) error {
	mail, err := r.mailAgent(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("Unread emails: %d\n", mail.UnreadCount(ctx))
}

// GmailSearch searches the mailbox with a Gmail query.
func (r *Runner) GmailSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	mail, err := r.mailAgent(ctx)
	if err != nil {
		return err
	}

	emails := mail.SearchEmails(ctx, query, int(cmd.Int("max")))
	if cmd.Bool("json") {
		return r.writeJSON(emails, cmd.Bool("pretty"))
	}
	return r.exportEmails(cmd, fmt.Sprintf("Results for %q", query), emails)
}

// GmailSummarize summarizes recent emails.
func (r *Runner) GmailSummarize(ctx context.Context, cmd *cli.Command) error {
	mail, err := r.mailAgent(ctx)
	if err != nil {
		return err
	}

	emails := mail.RecentEmails(ctx, int(cmd.Int("max")), cmd.String("query"))
	return r.writeReply("Email Summary", mail.SummarizeEmails(ctx, emails))
}

// GmailActions extracts action items from recent emails.
func (r *Runner) GmailActions(ctx context.Context, cmd *cli.Command) error {
	mail, err := r.mailAgent(ctx)
	if err != nil {
		return err
	}

	emails := mail.RecentEmails(ctx, int(cmd.Int("max")), cmd.String("query"))
	return r.writeReply("Action Items", mail.ExtractActionItems(ctx, emails))
}

// GmailReply drafts a reply to one email.
func (r *Runner) GmailReply(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: message id is required", shared.ErrMissingArgument)
	}

	mail, err := r.mailAgent(ctx)
	if err != nil {
		return err
	}
	return r.writeReply("Draft Reply", mail.DraftReply(ctx, id, cmd.String("context")))
}

func (r *Runner) exportEmails(cmd *cli.Command, title string, emails []models.MessageSummary) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case formatter.CSV:
		if data, err = formatter.EmailsToCSV(emails); err != nil {
			return err
		}
	case formatter.Markdown:
		data = formatter.EmailsToMarkdown(title, emails)
	default:
		if cmd.String("output") == "" {
			return r.writeEmails(title, emails)
		}
		data = formatter.EmailsToMarkdown(title, emails)
	}
	return r.writeExport(cmd.String("output"), data)
}

func (r *Runner) writeEmails(title string, emails []models.MessageSummary) error {
	r.writePlain("%s (%d)\n", r.palette.Title(title), len(emails))
	if len(emails) == 0 {
		return r.writePlain("%s\n", r.palette.Help("No emails found."))
	}

	for i, e := range emails {
		r.writePlain("%d. %s\n", i+1, e.Subject)
		r.writePlain("   From: %s\n", e.Sender)
		if e.Date != "" {
			r.writePlain("   Date: %s\n", e.Date)
		}
		r.writePlain("   ID: %s\n", e.ID)
	}
	return nil
}
