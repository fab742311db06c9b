package agent

import (
	"context"
	"sync"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// loopFollowUpPrefix frames every iteration after the first.
const loopFollowUpPrefix = "Improve the previous output.\n\n"

// LoopAgent runs an inner agent repeatedly until a stop condition fires or
// the iteration cap is reached. The first iteration receives the original
// task; each later iteration asks the inner agent to improve its previous
// output.
//
// Reaching the cap without the condition firing is a normal outcome, not an
// error: the last result is returned and IterationCount reports the cap.
type LoopAgent struct {
	base
	inner         Agent
	maxIterations int
	stop          StopCondition
	logger        logging.Logger

	mu         sync.Mutex
	iterations int
}

// LoopOptions configures a LoopAgent.
type LoopOptions struct {
	// MaxIterations caps the loop. Defaults to 3.
	MaxIterations int

	// StopCondition terminates the loop when it returns true for a fresh
	// result. Takes precedence over StopPhrase.
	StopCondition StopCondition

	// StopPhrase terminates the loop on a case-insensitive substring
	// match. Defaults to DefaultStopPhrase when no StopCondition is set.
	StopPhrase string

	// Logger receives per-iteration diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewLoopAgent constructs a looping wrapper around an inner agent.
func NewLoopAgent(name string, inner Agent, optFns ...func(o *LoopOptions)) *LoopAgent {
	opts := LoopOptions{
		MaxIterations: 3,
		StopPhrase:    DefaultStopPhrase,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	stop := opts.StopCondition
	if stop == nil {
		stop = StopOnPhrase(opts.StopPhrase)
	}

	return &LoopAgent{
		base:          base{name: name},
		inner:         inner,
		maxIterations: opts.MaxIterations,
		stop:          stop,
		logger:        logging.OrNoOp(opts.Logger),
	}
}

// IterationCount reports how many iterations the current (or most recent)
// run has performed. It is reset to 0 at the start of every run.
func (a *LoopAgent) IterationCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.iterations
}

func (a *LoopAgent) setIterations(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.iterations = n
}

// Run iterates the inner agent until the stop condition fires or the
// iteration cap is reached. Both paths return the freshest result.
func (a *LoopAgent) Run(ctx context.Context, task string, opts ...core.GenerateOption) (string, error) {
	a.setIterations(0)

	currentTask := task
	var result string

	for i := 1; i <= a.maxIterations; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		a.setIterations(i)
		a.logger.Debug("agent.loop.iteration", "agent", a.Name(), "iteration", i)

		r, err := a.inner.Run(ctx, currentTask, opts...)
		if err != nil {
			return "", err
		}
		result = r

		if a.stop(r) {
			a.logger.Info("agent.loop.stopped", "agent", a.Name(), "iteration", i)
			return r, nil
		}

		currentTask = loopFollowUpPrefix + r
	}

	a.logger.Info("agent.loop.exhausted", "agent", a.Name(), "iterations", a.maxIterations)

	return result, nil
}
