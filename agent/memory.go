package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// MemoryAgent wraps an executor agent with retrieval augmentation: similar
// prior entries are fetched from a semantic memory and prepended to the
// task, the original task text is persisted tagged with this agent's name,
// and the augmented prompt is delegated to the executor.
//
// The memory is a best-effort collaborator. A failing similarity search
// degrades to an empty context; a failing write is logged and never blocks
// the generated answer. Both paths surface in the injected logger.
type MemoryAgent struct {
	base
	memory   core.TextMemory
	executor Agent
	limit    int
	logger   logging.Logger
}

// MemoryOptions configures a MemoryAgent.
type MemoryOptions struct {
	// SearchLimit bounds the number of retrieved entries. Defaults to 5.
	SearchLimit int

	// Logger receives retrieval/persistence diagnostics. Defaults to
	// NoOpLogger.
	Logger logging.Logger
}

// NewMemoryAgent constructs a retrieval-augmented wrapper around an
// executor agent.
func NewMemoryAgent(name string, memory core.TextMemory, executor Agent, optFns ...func(o *MemoryOptions)) *MemoryAgent {
	opts := MemoryOptions{
		SearchLimit: 5,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &MemoryAgent{
		base:     base{name: name},
		memory:   memory,
		executor: executor,
		limit:    opts.SearchLimit,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// Run augments the task with similar prior entries, persists the original
// task, and delegates the augmented prompt to the executor.
func (a *MemoryAgent) Run(ctx context.Context, task string, opts ...core.GenerateOption) (string, error) {
	similar, err := a.memory.SearchSimilar(ctx, task, a.limit)
	if err != nil {
		a.logger.Warn("agent.memory.search_failed", "agent", a.Name(), "error", err.Error())
		similar = nil
	}

	contextBlock := formatMatches(similar)

	augmented := fmt.Sprintf("Use the following prior context if useful:\n%s\n\nNow answer:\n%s", contextBlock, task)

	// Persist the original task, not the augmented prompt. Writes and
	// reads are independent; a failed write must not block the answer.
	if _, err := a.memory.AddText(ctx, task, map[string]any{"source": a.Name()}); err != nil {
		a.logger.Warn("agent.memory.write_failed", "agent", a.Name(), "error", err.Error())
	}

	return a.executor.Run(ctx, augmented, opts...)
}

func formatMatches(matches []core.MemoryResult) string {
	if len(matches) == 0 {
		return ""
	}

	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = "- " + m.Text
	}

	return strings.Join(lines, "\n")
}
