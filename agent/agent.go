// Package agent provides the composable agent control-flow variants built on
// top of the kernel: single-shot execution, iterate-until-stop loops,
// routing (best-effort and validated), task decomposition, two-party
// collaboration and memory-augmented execution.
//
// Every agent exposes Run(ctx, task) -> text and holds a shared reference to
// the generator (typically the kernel) it was constructed with. Agents keep
// no mutable state beyond an iteration counter reset at the start of each
// run, so a single instance can serve sequential runs; concurrent runs of
// the same looping instance are not supported.
package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/echolabs/echokernel/core"
)

// DefaultStopPhrase terminates iterative and collaborative loops when it
// appears (case-insensitively) in an agent's output.
const DefaultStopPhrase = "Final version"

// ErrNoSpecialists is returned by routing agents constructed without any
// registered specialist.
var ErrNoSpecialists = errors.New("no specialist agents registered")

// Agent is a composable unit of work: it receives a task and produces text,
// possibly delegating to other agents or the kernel along the way.
type Agent interface {
	// Name identifies the agent, e.g. for routing and memory tagging.
	Name() string

	// SetName renames the agent.
	SetName(name string)

	// Run executes the task. Generation options are forwarded to every
	// text generation the agent performs on behalf of this run.
	Run(ctx context.Context, task string, opts ...core.GenerateOption) (string, error)
}

// StopCondition decides whether an iterative loop should stop based on the
// latest result.
type StopCondition func(result string) bool

// StopOnPhrase builds a StopCondition matching a case-insensitive substring.
func StopOnPhrase(phrase string) StopCondition {
	return func(result string) bool {
		return containsFold(result, phrase)
	}
}

// base carries the renameable identity shared by all agent variants.
type base struct {
	name string
}

func (b *base) Name() string        { return b.name }
func (b *base) SetName(name string) { b.name = name }

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
