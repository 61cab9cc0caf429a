package agents

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentkit/internal/models"
	"github.com/desertthunder/agentkit/internal/shared"
)

// Agent is the contract shared by every provider-backed agent.
type Agent interface {
	Name() string
	// TestConnection performs one lightweight provider read. Failures are logged, never returned.
	TestConnection(ctx context.Context) bool
	// Status returns a snapshot of the provider account, or an error-tagged one.
	Status(ctx context.Context) models.Status
}

// Generator produces text from a prompt. Failures come back as text, never as errors.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) string
}

// Base holds the identity every agent variant embeds.
type Base struct {
	name   string
	logger *log.Logger
	gen    Generator
}

func newBase(name string, gen Generator, logger *log.Logger) Base {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return Base{name: name, gen: gen, logger: shared.WithLogger(logger, "agent", name)}
}

func (b *Base) Name() string { return b.name }

func (b *Base) Logger() *log.Logger { return b.logger }

// Ask sends prompt to the generator with its default model and returns the reply verbatim.
func (b *Base) Ask(ctx context.Context, prompt string) string {
	return b.gen.Generate(ctx, prompt, "")
}

// LogAction records an operation performed on behalf of the user.
func (b *Base) LogAction(action, details string) {
	b.logger.Infof("Action: %s - %s", action, details)
}

func (b *Base) connectionFailed(err error) bool {
	b.logger.Error("connection test failed", "error", err)
	return false
}

func (b *Base) errorStatus(err error) models.Status {
	return models.ErrorStatus(b.name, err)
}

func (b *Base) connectedStatus(fields map[string]any) models.Status {
	return models.Status{Agent: b.name, Status: models.StatusConnected, Fields: fields}
}
