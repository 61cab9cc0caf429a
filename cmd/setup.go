package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/agentkit/internal/shared"
	"github.com/urfave/cli/v3"
)

// Init writes the bundled config template to the --config path.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = defaultConfigPath
	}

	r.logger.Info("creating config file from template", "path", path)
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	r.writePlain("%s\n", r.palette.Check(true, "Config written to "+path))
	r.writePlain("%s\n", r.palette.Help("Next: fill in credentials, then run 'agentkit gmail auth' and 'agentkit spotify auth'."))
	return nil
}
