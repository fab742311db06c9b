// Package tool implements the tool subsystem: an immutable, schema-described
// Tool value type wrapping a plain Go function, and a Registry that resolves
// tools by name and renders the ordered definition catalog forwarded to
// model backends.
package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/internal/util"
)

// Tool is a named, schema-described callable a model backend may request to
// be invoked mid-generation. A Tool is constructed once and never mutated;
// metadata lives in the value, not in attributes attached to the function.
//
// Concurrency: a Tool holds no mutable state after construction and is safe
// for concurrent use.
type Tool struct {
	name        string
	description string
	parameters  map[string]any
	handler     core.ToolHandler
}

// New constructs a Tool from an explicit parameter schema and handler.
// Name and description are trimmed; an empty result fails with
// *core.ValidationError at registration time rather than at first use.
// A nil parameters map yields an empty object schema.
func New(name, description string, parameters map[string]any, handler core.ToolHandler) (*Tool, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if name == "" {
		return nil, &core.ValidationError{Field: "name", Message: "tool name must not be empty"}
	}

	if description == "" {
		return nil, &core.ValidationError{Field: "description", Message: "tool description must not be empty"}
	}

	if handler == nil {
		return nil, &core.ValidationError{Field: "handler", Message: "tool handler must not be nil"}
	}

	if parameters == nil {
		parameters = map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	return &Tool{
		name:        name,
		description: description,
		parameters:  parameters,
		handler:     handler,
	}, nil
}

// FromStruct derives the parameter schema from a struct type by one-time
// reflection, then builds the tool like New.
//
// Example:
//
//	type SumArgs struct {
//	    A float64 `json:"a" description:"First addend"`
//	    B float64 `json:"b" description:"Second addend"`
//	}
//
//	sum, err := tool.FromStruct("calculate_sum", "Calculate the sum of two numbers", SumArgs{},
//	    func(_ context.Context, args map[string]any) (any, error) {
//	        return args["a"].(float64) + args["b"].(float64), nil
//	    })
func FromStruct(name, description string, argsType any, handler core.ToolHandler) (*Tool, error) {
	return New(name, description, util.CreateSchema(argsType), handler)
}

// Name returns the unique tool name used as the registry key.
func (t *Tool) Name() string { return t.name }

// Description returns the natural language description exposed to models.
func (t *Tool) Description() string { return t.description }

// Parameters returns the minimal JSON schema describing accepted arguments.
func (t *Tool) Parameters() map[string]any { return t.parameters }

// Definition renders the wire shape forwarded to a model backend.
func (t *Tool) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Type: "function",
		Function: core.FunctionDefinition{
			Name:        t.name,
			Description: t.description,
			Parameters:  t.parameters,
		},
	}
}

// Call validates args against the declared schema then invokes the handler.
// Failures are wrapped as *ToolError with uniform codes:
//
//	*ToolError (returned directly) -> forwarded unchanged
//	validation failure             -> VALIDATION_ERROR
//	other error                    -> EXECUTION_ERROR
func (t *Tool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
			Details: err,
		}
	}

	result, err := t.handler(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	return result, nil
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
