package core

import "context"

// Message roles used in the transient conversation assembled per
// GenerateText call. The conversation only grows during a tool-calling
// round trip; messages are never removed or reordered.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one role-tagged entry of the transient conversation passed as
// extra context to a text provider. It is not persisted anywhere.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition is the wire shape a text provider forwards to a model
// backend to advertise a callable tool.
type ToolDefinition struct {
	Type     string             `json:"type"` // always "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a single function exposed to the model.
// Parameters is a minimal JSON Schema object (type, properties, required).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolHandler executes a tool with already-deserialized arguments. Handlers
// must honor ctx; keeping a long-running body responsive is the tool
// author's responsibility, the caller only awaits the returned result.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// GenerateConfig carries every generation parameter a TextProvider accepts.
// Zero values are replaced by DefaultGenerateConfig before dispatch.
type GenerateConfig struct {
	// SystemMessage is prepended as a system-role message when non-empty.
	SystemMessage string

	// Context messages are injected between the system message and the
	// user prompt, in order.
	Context []Message

	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64

	// Tools advertises callable functions to the backend. When nil the
	// kernel substitutes every registered tool ("tools always on"); an
	// empty non-nil slice disables tools for the call.
	Tools []ToolDefinition

	// ToolHandlers resolves tool-call requests by name during the round
	// trip. Defaulted alongside Tools.
	ToolHandlers map[string]ToolHandler
}

// DefaultGenerateConfig returns the baseline generation parameters.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Temperature: 0.7,
		MaxTokens:   1000,
		TopP:        1,
	}
}

// GenerateOption mutates a GenerateConfig.
type GenerateOption func(*GenerateConfig)

// WithSystemMessage sets the system message for the call.
func WithSystemMessage(msg string) GenerateOption {
	return func(c *GenerateConfig) { c.SystemMessage = msg }
}

// WithContext injects prior conversation messages before the user prompt.
func WithContext(messages ...Message) GenerateOption {
	return func(c *GenerateConfig) { c.Context = append(c.Context, messages...) }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenerateOption {
	return func(c *GenerateConfig) { c.Temperature = t }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) GenerateOption {
	return func(c *GenerateConfig) { c.MaxTokens = n }
}

// WithTopP sets the nucleus sampling parameter.
func WithTopP(p float64) GenerateOption {
	return func(c *GenerateConfig) { c.TopP = p }
}

// WithFrequencyPenalty sets the frequency penalty.
func WithFrequencyPenalty(p float64) GenerateOption {
	return func(c *GenerateConfig) { c.FrequencyPenalty = p }
}

// WithPresencePenalty sets the presence penalty.
func WithPresencePenalty(p float64) GenerateOption {
	return func(c *GenerateConfig) { c.PresencePenalty = p }
}

// WithTools overrides the advertised tool catalog and its handlers,
// suppressing the kernel's tools-always-on default for this call.
func WithTools(defs []ToolDefinition, handlers map[string]ToolHandler) GenerateOption {
	return func(c *GenerateConfig) {
		c.Tools = defs
		c.ToolHandlers = handlers
	}
}

// WithoutTools disables tool calling for this call.
func WithoutTools() GenerateOption {
	return func(c *GenerateConfig) {
		c.Tools = []ToolDefinition{}
		c.ToolHandlers = map[string]ToolHandler{}
	}
}

// Generator is the narrow text-generation surface agents depend on. It is
// satisfied by the kernel; tests substitute scripted implementations.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
}
