package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// PromptBuilder renders the prompt for one party of a collaborative loop.
// For Agent A, input is the current shared result; for Agent B it is Agent
// A's output of the same iteration. iteration is zero-based.
type PromptBuilder func(task, input string, iteration int) string

// CollaborativeAgent coordinates two agents in a strict alternating loop,
// e.g. an editor (A) reviewing and a writer (B) revising.
//
// Termination is deliberately asymmetric: when Agent A's output contains
// the stop phrase the loop ends immediately, Agent B does not get a final
// round, and the returned value is Agent B's output from the PREVIOUS
// iteration, the shared result A just approved. If A stops on the very
// first iteration there is no prior B output and the pre-loop shared result
// (the empty string) is returned. Agent B's own output never short-circuits
// the loop; it always becomes the next shared result. Reaching the
// iteration cap returns the last shared result.
type CollaborativeAgent struct {
	base
	agentA, agentB Agent
	maxIterations  int
	stopPhrase     string
	roleA, roleB   string
	buildA, buildB PromptBuilder
	logger         logging.Logger

	mu         sync.Mutex
	iterations int
}

// CollaborativeOptions configures a CollaborativeAgent.
type CollaborativeOptions struct {
	// MaxIterations caps the alternating loop. Defaults to 10.
	MaxIterations int

	// StopPhrase ends the collaboration when found (case-insensitively)
	// in Agent A's output. Defaults to DefaultStopPhrase.
	StopPhrase string

	// RoleA and RoleB label the parties inside the default prompts.
	// Default to "Agent A" / "Agent B".
	RoleA, RoleB string

	// AgentAPrompt and AgentBPrompt override the default prompt
	// builders.
	AgentAPrompt, AgentBPrompt PromptBuilder

	// Logger receives per-turn diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewCollaborativeAgent constructs a two-party alternating loop around
// agents A and B.
func NewCollaborativeAgent(name string, agentA, agentB Agent, optFns ...func(o *CollaborativeOptions)) *CollaborativeAgent {
	opts := CollaborativeOptions{
		MaxIterations: 10,
		StopPhrase:    DefaultStopPhrase,
		RoleA:         "Agent A",
		RoleB:         "Agent B",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	c := &CollaborativeAgent{
		base:          base{name: name},
		agentA:        agentA,
		agentB:        agentB,
		maxIterations: opts.MaxIterations,
		stopPhrase:    opts.StopPhrase,
		roleA:         opts.RoleA,
		roleB:         opts.RoleB,
		buildA:        opts.AgentAPrompt,
		buildB:        opts.AgentBPrompt,
		logger:        logging.OrNoOp(opts.Logger),
	}

	if c.buildA == nil {
		c.buildA = c.defaultAgentAPrompt
	}
	if c.buildB == nil {
		c.buildB = c.defaultAgentBPrompt
	}

	return c
}

// IterationCount reports how many iterations the current (or most recent)
// run has performed. It is reset to 0 at the start of every run.
func (c *CollaborativeAgent) IterationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.iterations
}

func (c *CollaborativeAgent) setIterations(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.iterations = n
}

// Run executes the collaboration until Agent A signals stop or the
// iteration cap is reached.
func (c *CollaborativeAgent) Run(ctx context.Context, task string, opts ...core.GenerateOption) (string, error) {
	c.setIterations(0)

	currentResult := ""

	for i := 0; i < c.maxIterations; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		c.setIterations(i + 1)
		c.logger.Debug("agent.collaborative.turn", "agent", c.Name(), "role", c.roleA, "iteration", i+1)

		aOutput, err := c.agentA.Run(ctx, c.buildA(task, currentResult, i), opts...)
		if err != nil {
			return "", err
		}

		if containsFold(aOutput, c.stopPhrase) {
			// A approved the shared result; B's last contribution is
			// the final answer, not A's own text.
			c.logger.Info("agent.collaborative.stopped", "agent", c.Name(), "role", c.roleA, "iteration", i+1)
			return currentResult, nil
		}

		c.logger.Debug("agent.collaborative.turn", "agent", c.Name(), "role", c.roleB, "iteration", i+1)

		bOutput, err := c.agentB.Run(ctx, c.buildB(task, aOutput, i), opts...)
		if err != nil {
			return "", err
		}

		currentResult = bOutput
	}

	c.logger.Info("agent.collaborative.exhausted", "agent", c.Name(), "iterations", c.maxIterations)

	return currentResult, nil
}

func (c *CollaborativeAgent) defaultAgentAPrompt(task, currentResult string, iteration int) string {
	if iteration == 0 {
		return fmt.Sprintf("Original task: %s\n\nPlease start working on this task.", task)
	}

	return fmt.Sprintf(
		"Original task: %s\n\nCurrent result:\n%s\n\nPlease review and provide feedback or improvements. If you're satisfied, end your response with '%s'.",
		task, currentResult, c.stopPhrase,
	)
}

func (c *CollaborativeAgent) defaultAgentBPrompt(task, aOutput string, iteration int) string {
	if iteration == 0 {
		return fmt.Sprintf(
			"Original task: %s\n\n%s's work:\n%s\n\nPlease continue or improve upon this work.",
			task, c.roleA, aOutput,
		)
	}

	return fmt.Sprintf(
		"Original task: %s\n\n%s's feedback:\n%s\n\nPlease implement the feedback and improve the work. If you're satisfied with the result, end your response with '%s'.",
		task, c.roleA, aOutput, c.stopPhrase,
	)
}
