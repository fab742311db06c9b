package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// specialistSet keeps routing targets by name while preserving registration
// order, so "first registered" is well defined for fallbacks.
type specialistSet struct {
	names  []string
	agents map[string]Agent
}

func newSpecialistSet() *specialistSet {
	return &specialistSet{agents: make(map[string]Agent)}
}

func (s *specialistSet) add(a Agent) {
	name := a.Name()
	if _, exists := s.agents[name]; !exists {
		s.names = append(s.names, name)
	}
	s.agents[name] = a
}

func (s *specialistSet) get(name string) (Agent, bool) {
	a, ok := s.agents[name]
	return a, ok
}

func (s *specialistSet) first() Agent {
	if len(s.names) == 0 {
		return nil
	}
	return s.agents[s.names[0]]
}

func (s *specialistSet) list() string {
	return strings.Join(s.names, ", ")
}

// RouterAgent dispatches a task to one of its registered specialists based
// on a single-shot classification by the generator. Routing is best-effort:
// an unrecognized name from the model falls back deterministically to the
// first-registered specialist instead of failing the run.
type RouterAgent struct {
	base
	gen          core.Generator
	routerPrompt string
	specialists  *specialistSet
	logger       logging.Logger
}

// RouterOptions configures a RouterAgent.
type RouterOptions struct {
	// RouterPrompt introduces the routing decision. A default prompt is
	// used when empty.
	RouterPrompt string

	// Specialists pre-registers routing targets in order.
	Specialists []Agent

	// Logger receives routing diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewRouterAgent constructs a best-effort router over a generator.
func NewRouterAgent(name string, gen core.Generator, optFns ...func(o *RouterOptions)) *RouterAgent {
	opts := RouterOptions{
		RouterPrompt: "Given a task, choose the most appropriate specialist agent to handle it.",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := &RouterAgent{
		base:         base{name: name},
		gen:          gen,
		routerPrompt: opts.RouterPrompt,
		specialists:  newSpecialistSet(),
		logger:       logging.OrNoOp(opts.Logger),
	}

	for _, a := range opts.Specialists {
		r.RegisterSpecialist(a)
	}

	return r
}

// RegisterSpecialist adds a routing target keyed by its name. Registering
// the same name again replaces the previous specialist.
func (r *RouterAgent) RegisterSpecialist(a Agent) {
	r.specialists.add(a)
}

// Run asks the generator to name the best specialist for the task, then
// dispatches to it and returns its result unmodified.
func (r *RouterAgent) Run(ctx context.Context, task string, opts ...core.GenerateOption) (string, error) {
	first := r.specialists.first()
	if first == nil {
		return "", ErrNoSpecialists
	}

	decisionPrompt := fmt.Sprintf("%s\nTask: %s\nRespond ONLY with the name of the best agent.", r.routerPrompt, task)

	choice, err := r.gen.GenerateText(ctx, decisionPrompt, opts...)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(choice)

	selected, ok := r.specialists.get(name)
	if !ok {
		r.logger.Warn("agent.router.fallback", "agent", r.Name(), "returned", name, "fallback", first.Name())
		selected = first
	} else {
		r.logger.Info("agent.router.routed", "agent", r.Name(), "specialist", name)
	}

	return selected.Run(ctx, task, opts...)
}
