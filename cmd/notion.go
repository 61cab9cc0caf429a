package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/agentkit/internal/shared"
	"github.com/urfave/cli/v3"
)

// NotionDatabases lists databases visible to the integration.
func (r *Runner) NotionDatabases(ctx context.Context, cmd *cli.Command) error {
	workspace, err := r.workspaceAgent()
	if err != nil {
		return err
	}

	databases := workspace.Databases(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(databases, cmd.Bool("pretty"))
	}

	r.writePlain("%s (%d)\n", r.palette.Title("Notion Databases"), len(databases))
	for i, db := range databases {
		r.writePlain("%d. %s\n   ID: %s\n", i+1, db.Title, db.ID)
	}
	return nil
}

// NotionSummarize summarizes the pages of one database.
func (r *Runner) NotionSummarize(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: database id is required", shared.ErrMissingArgument)
	}

	workspace, err := r.workspaceAgent()
	if err != nil {
		return err
	}
	return r.writeReply("Database Summary", workspace.SummarizeDatabase(ctx, id))
}

// NotionAsk answers a free-form question using workspace context.
func (r *Runner) NotionAsk(ctx context.Context, cmd *cli.Command) error {
	question := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("%w: question is required", shared.ErrMissingArgument)
	}

	workspace, err := r.workspaceAgent()
	if err != nil {
		return err
	}
	return r.writeReply("Answer", workspace.AskAboutWorkspace(ctx, question))
}
