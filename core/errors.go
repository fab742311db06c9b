package core

import "fmt"

// NoProviderError reports an operation that required a provider category
// with zero registrations. It is always surfaced to the caller and never
// retried internally.
type NoProviderError struct {
	Capability Capability
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("no %s provider registered with the kernel", e.Capability)
}

// NotFoundError reports a named reference (tool, agent) that does not
// resolve. Kind names the reference category.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// ValidationError reports malformed registration input. It is raised at
// registration time, never deferred to first use.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// RoutingExhaustedError reports a specialist router that spent its whole
// retry budget without producing a valid, validated result.
type RoutingExhaustedError struct {
	Agent    string
	Attempts int
}

func (e *RoutingExhaustedError) Error() string {
	return fmt.Sprintf("agent %s: failed to route task after %d attempts", e.Agent, e.Attempts)
}

// RoundLimitError reports a tool-calling round trip that exceeded its
// configured round cap. Without the cap a backend that keeps requesting
// tool calls would loop forever.
type RoundLimitError struct {
	Rounds int
}

func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("tool-calling round limit of %d exceeded", e.Rounds)
}
