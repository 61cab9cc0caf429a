package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentkit/internal/agents"
	"github.com/desertthunder/agentkit/internal/ai"
	"github.com/desertthunder/agentkit/internal/formatter"
	"github.com/desertthunder/agentkit/internal/shared"
	"github.com/desertthunder/agentkit/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Agents are built on first use so that a missing credential only fails the commands that need it.
type Runner struct {
	config     *shared.Config
	configPath string
	gen        agents.Generator
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette

	mail      *agents.Mail
	workspace *agents.Workspace
	music     *agents.Music
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Mail, Workspace and Music replace the agents otherwise built from Config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Generator  agents.Generator
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer

	Mail      *agents.Mail
	Workspace *agents.Workspace
	Music     *agents.Music
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		gen:        opts.Generator,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    ui.Default(),
		mail:       opts.Mail,
		workspace:  opts.Workspace,
		music:      opts.Music,
	}
}

// setup runs before every command: it loads the config file named by --config, applies environment
// overrides, sets the log level and builds the gateway.
func (r *Runner) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
		config, err := shared.LoadConfig(path)
		switch {
		case err == nil:
			r.config = config
		case errors.Is(err, fs.ErrNotExist):
			r.logger.Debug("config file not found, using defaults", "path", path)
		default:
			return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
	}
	r.config.ApplyEnv(os.LookupEnv)

	if r.gen == nil {
		r.gen = ai.NewGateway(ai.Options{
			Host:       r.config.AI.Host,
			Model:      r.config.AI.Model,
			HTTPClient: &http.Client{Timeout: r.config.AI.Timeout()},
			Logger:     r.logger,
		})
	}
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		initCommand, statusCommand, gmailCommand, notionCommand, spotifyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeExport writes data to path, or to the runner output when path is empty.
func (r *Runner) writeExport(path string, data []byte) error {
	if path == "" {
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := formatter.WriteFile(path, data); err != nil {
		return err
	}
	r.logger.Info("export written", "path", path, "bytes", len(data))
	return r.writePlain("%s\n", r.palette.Check(true, "Exported to "+path))
}

// writeReply prints a titled block of model output.
func (r *Runner) writeReply(title, reply string) error {
	return r.writePlain("%s\n%s\n", r.palette.Title(title), reply)
}
