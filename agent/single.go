package agent

import (
	"context"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// SingleAgent is the single-shot agent: one task in, one generation out.
// An optional persona is prepended to every task, giving the agent a stable
// voice without touching the kernel's system message.
type SingleAgent struct {
	base
	gen     core.Generator
	persona string
	logger  logging.Logger
}

// SingleOptions configures a SingleAgent.
type SingleOptions struct {
	// Persona is prepended to each task, separated by a newline.
	Persona string

	// Logger receives per-run diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewSingleAgent constructs a single-shot agent over a generator (typically
// the kernel).
func NewSingleAgent(name string, gen core.Generator, optFns ...func(o *SingleOptions)) *SingleAgent {
	opts := SingleOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &SingleAgent{
		base:    base{name: name},
		gen:     gen,
		persona: opts.Persona,
		logger:  logging.OrNoOp(opts.Logger),
	}
}

// Run generates a single completion for the task.
func (a *SingleAgent) Run(ctx context.Context, task string, opts ...core.GenerateOption) (string, error) {
	prompt := task
	if a.persona != "" {
		prompt = a.persona + "\n" + task
	}

	a.logger.Debug("agent.run", "agent", a.Name(), "kind", "single")

	return a.gen.GenerateText(ctx, prompt, opts...)
}
