package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// Validator judges a specialist's result. Returning false sends the router
// back to the decision step with a fresh prompt.
type Validator func(result string) bool

// SpecialistRouterAgent routes like RouterAgent but validates the outcome
// and retries within a bounded budget. Unlike the degrade-gracefully
// router, exhausting the budget is a hard failure surfaced as
// *core.RoutingExhaustedError with the attempt count.
type SpecialistRouterAgent struct {
	base
	gen          core.Generator
	routerPrompt string
	maxRetries   int
	specialists  *specialistSet
	logger       logging.Logger
}

// SpecialistRouterOptions configures a SpecialistRouterAgent.
type SpecialistRouterOptions struct {
	// RouterPrompt introduces the routing decision. When empty a default
	// prompt listing the registered specialists is built per attempt.
	RouterPrompt string

	// MaxRetries bounds the decide-execute-validate loop. Defaults to 3.
	MaxRetries int

	// Specialists pre-registers routing targets in order.
	Specialists []Agent

	// Logger receives routing diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewSpecialistRouterAgent constructs a validating router over a generator.
func NewSpecialistRouterAgent(name string, gen core.Generator, optFns ...func(o *SpecialistRouterOptions)) *SpecialistRouterAgent {
	opts := SpecialistRouterOptions{
		MaxRetries: 3,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := &SpecialistRouterAgent{
		base:         base{name: name},
		gen:          gen,
		routerPrompt: opts.RouterPrompt,
		maxRetries:   opts.MaxRetries,
		specialists:  newSpecialistSet(),
		logger:       logging.OrNoOp(opts.Logger),
	}

	for _, a := range opts.Specialists {
		r.RegisterSpecialist(a)
	}

	return r
}

// RegisterSpecialist adds a routing target keyed by its name.
func (r *SpecialistRouterAgent) RegisterSpecialist(a Agent) {
	r.specialists.add(a)
}

// Run routes the task without a validator.
func (r *SpecialistRouterAgent) Run(ctx context.Context, task string, opts ...core.GenerateOption) (string, error) {
	return r.RouteWithValidation(ctx, task, nil, opts...)
}

// RouteWithValidation runs the decide-execute-validate loop. Per attempt:
// ask the generator to name a specialist; an unknown name rebuilds the
// decision prompt listing valid names and retries; a known name runs the
// specialist, and its result is returned immediately when validate is nil
// or passes. A failed validation rebuilds the prompt and retries. Spending
// the whole budget fails with *core.RoutingExhaustedError.
func (r *SpecialistRouterAgent) RouteWithValidation(ctx context.Context, task string, validate Validator, opts ...core.GenerateOption) (string, error) {
	if r.specialists.first() == nil {
		return "", ErrNoSpecialists
	}

	routingPrompt := fmt.Sprintf("%s\nSubtask: %s", r.decisionPreamble(), task)

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		choice, err := r.gen.GenerateText(ctx, routingPrompt, opts...)
		if err != nil {
			return "", err
		}

		name := strings.TrimSpace(choice)

		selected, ok := r.specialists.get(name)
		if !ok {
			r.logger.Warn("agent.specialist_router.invalid_name", "agent", r.Name(), "returned", name, "attempt", attempt)
			routingPrompt = fmt.Sprintf("The previous agent name was invalid. Please choose from the following list: %s\nSubtask: %s", r.specialists.list(), task)
			continue
		}

		r.logger.Info("agent.specialist_router.routed", "agent", r.Name(), "specialist", name, "attempt", attempt)

		result, err := selected.Run(ctx, task, opts...)
		if err != nil {
			return "", err
		}

		if validate == nil || validate(result) {
			return result, nil
		}

		r.logger.Warn("agent.specialist_router.validation_failed", "agent", r.Name(), "specialist", name, "attempt", attempt)
		routingPrompt = fmt.Sprintf("Previous result failed validation. Please choose a different agent from: %s\nSubtask: %s", r.specialists.list(), task)
	}

	return "", &core.RoutingExhaustedError{Agent: r.Name(), Attempts: r.maxRetries}
}

func (r *SpecialistRouterAgent) decisionPreamble() string {
	if r.routerPrompt != "" {
		return r.routerPrompt
	}

	return fmt.Sprintf(
		"Given a subtask, choose the most appropriate specialist agent to handle it.\nAvailable agents: %s\nRespond with the name only.",
		r.specialists.list(),
	)
}
