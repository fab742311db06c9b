package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// TaskDecomposerAgent plans first, executes second: the generator breaks the
// task into 3-5 sequential subtasks, then a single executor agent runs them
// strictly in plan order. Subtask N's prompt does not depend on N-1's
// result; this is a deliberate simplification, not a dependency-aware
// planner. The final output concatenates labeled per-subtask results in
// plan order.
type TaskDecomposerAgent struct {
	base
	gen      core.Generator
	executor Agent
	logger   logging.Logger
}

// TaskDecomposerOptions configures a TaskDecomposerAgent.
type TaskDecomposerOptions struct {
	// Logger receives planning/execution diagnostics. Defaults to
	// NoOpLogger.
	Logger logging.Logger
}

// NewTaskDecomposerAgent constructs a decomposer over a generator and an
// executor agent.
func NewTaskDecomposerAgent(name string, gen core.Generator, executor Agent, optFns ...func(o *TaskDecomposerOptions)) *TaskDecomposerAgent {
	opts := TaskDecomposerOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &TaskDecomposerAgent{
		base:     base{name: name},
		gen:      gen,
		executor: executor,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// Executor returns the agent that runs each subtask.
func (a *TaskDecomposerAgent) Executor() Agent { return a.executor }

// Decompose asks the generator for a plan and parses it into subtasks.
func (a *TaskDecomposerAgent) Decompose(ctx context.Context, task string, opts ...core.GenerateOption) ([]string, error) {
	plan, err := a.gen.GenerateText(ctx, planPrompt(task), opts...)
	if err != nil {
		return nil, err
	}

	return ParseSubtasks(plan), nil
}

// Run decomposes the task and executes every subtask in order, labeling and
// concatenating the results.
func (a *TaskDecomposerAgent) Run(ctx context.Context, task string, opts ...core.GenerateOption) (string, error) {
	plan, err := a.gen.GenerateText(ctx, planPrompt(task), opts...)
	if err != nil {
		return "", err
	}

	a.logger.Debug("agent.decomposer.plan", "agent", a.Name(), "plan", plan)

	subtasks := ParseSubtasks(plan)

	results := make([]string, 0, len(subtasks))
	for i, subtask := range subtasks {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		a.logger.Info("agent.decomposer.subtask", "agent", a.Name(), "index", i+1, "subtask", subtask)

		result, err := a.executor.Run(ctx, subtask, opts...)
		if err != nil {
			return "", err
		}

		results = append(results, fmt.Sprintf("Subtask %d Result:\n%s\n", i+1, result))
	}

	return strings.Join(results, "\n"), nil
}

func planPrompt(task string) string {
	return fmt.Sprintf(
		"You are a planning agent.\nDecompose the following task into 3-5 concrete, sequential subtasks:\n\nTask: %s\n\nReturn the list of subtasks as plain numbered steps.",
		task,
	)
}

// ParseSubtasks extracts subtask texts from a numbered or bulleted plan.
// For each line the first '.' (preferred) or '-' splits the ordinal/bullet
// marker from the subtask text; lines without either delimiter and empty
// remainders are discarded. Order is preserved.
func ParseSubtasks(plan string) []string {
	lines := strings.Split(strings.TrimSpace(plan), "\n")

	subtasks := make([]string, 0, len(lines))
	for _, line := range lines {
		var text string
		if idx := strings.Index(line, "."); idx >= 0 {
			text = line[idx+1:]
		} else if idx := strings.Index(line, "-"); idx >= 0 {
			text = line[idx+1:]
		} else {
			continue
		}

		if text = strings.TrimSpace(text); text != "" {
			subtasks = append(subtasks, text)
		}
	}

	return subtasks
}
