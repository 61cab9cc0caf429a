package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/agentkit/internal/agents"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/urfave/cli/v3"
)

// Status prints a connection snapshot for every agent. Agents that cannot be built are reported as errors.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	statuses := r.agentStatuses(ctx)

	if cmd.Bool("json") {
		return r.writeJSON(statuses, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.palette.Title("Agent Status"))
	if host, model := r.modelHost(); host != "" {
		r.writePlain("Model: %s @ %s\n", model, host)
	}

	for _, s := range statuses {
		if !s.Connected() {
			r.writePlain("%s\n", r.palette.Check(false, fmt.Sprintf("%s: %s", s.Agent, s.Error)))
			continue
		}

		r.writePlain("%s\n", r.palette.Check(true, s.Agent))
		keys := make([]string, 0, len(s.Fields))
		for k := range s.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.writePlain("   %s: %v\n", k, s.Fields[k])
		}
	}
	return nil
}

func (r *Runner) agentStatuses(ctx context.Context) []models.Status {
	type builder struct {
		name  string
		build func() (agents.Agent, error)
	}

	builders := []builder{
		{"gmail", func() (agents.Agent, error) { return r.mailAgent(ctx) }},
		{"notion", func() (agents.Agent, error) { return r.workspaceAgent() }},
		{"spotify", func() (agents.Agent, error) { return r.musicAgent(ctx) }},
	}

	statuses := make([]models.Status, 0, len(builders))
	for _, b := range builders {
		agent, err := b.build()
		if err != nil {
			r.logger.Debug("agent unavailable", "agent", b.name, "error", err)
			statuses = append(statuses, models.ErrorStatus(b.name, err))
			continue
		}
		statuses = append(statuses, agent.Status(ctx))
	}
	return statuses
}

// modelHost reports the gateway target when the generator exposes it.
func (r *Runner) modelHost() (string, string) {
	g, ok := r.gen.(interface {
		Host() string
		Model() string
	})
	if !ok {
		return "", ""
	}
	return g.Host(), g.Model()
}
