// Package anthropic provides a kernel text provider backed by the Anthropic
// Messages API, including the tool-use round trip.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// MessageService is the slice of the Anthropic client used by the text
// provider. The SDK's Messages service satisfies it; tests supply scripted
// implementations.
type MessageService interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

var _ MessageService = (*anthropic.MessageService)(nil)

// TextProviderOptions configure the Anthropic text provider.
type TextProviderOptions struct {
	// Model is the Messages API model identifier.
	Model anthropic.Model

	// APIKey overrides the key read from the environment.
	APIKey string

	// MaxToolRounds caps the number of model/tool exchange rounds in a
	// single GenerateText call. Defaults to 10.
	MaxToolRounds int

	// Logger receives tool dispatch diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// TextProvider implements core.TextProvider on the Anthropic Messages API.
type TextProvider struct {
	messages      MessageService
	model         anthropic.Model
	maxToolRounds int
	logger        logging.Logger
}

var _ core.TextProvider = (*TextProvider)(nil)

// NewTextProvider creates a text provider using the official client. The
// API key is taken from the options or the ANTHROPIC_API_KEY environment
// variable.
func NewTextProvider(optFns ...func(o *TextProviderOptions)) *TextProvider {
	opts := applyOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return newTextProvider(&client.Messages, opts)
}

// NewTextProviderFromClient creates a text provider from an existing client.
func NewTextProviderFromClient(client *anthropic.Client, optFns ...func(o *TextProviderOptions)) *TextProvider {
	return newTextProvider(&client.Messages, applyOptions(optFns))
}

// NewTextProviderFromService creates a text provider from a message
// service. Useful for proxied deployments and for testing.
func NewTextProviderFromService(svc MessageService, optFns ...func(o *TextProviderOptions)) *TextProvider {
	return newTextProvider(svc, applyOptions(optFns))
}

func applyOptions(optFns []func(o *TextProviderOptions)) TextProviderOptions {
	opts := TextProviderOptions{
		Model:         anthropic.ModelClaude3_5Sonnet20241022,
		MaxToolRounds: 10,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return opts
}

func newTextProvider(svc MessageService, opts TextProviderOptions) *TextProvider {
	return &TextProvider{
		messages:      svc,
		model:         opts.Model,
		maxToolRounds: opts.MaxToolRounds,
		logger:        logging.OrNoOp(opts.Logger),
	}
}

// Capability implements core.Provider.
func (p *TextProvider) Capability() core.Capability {
	return core.CapabilityText
}

// GenerateText runs a Messages API exchange for the prompt. Tool use blocks
// in the response are dispatched to the matching handlers in
// cfg.ToolHandlers, results are appended as tool_result blocks, and the
// model is invoked again. The loop ends when the model returns plain text,
// or fails with core.RoundLimitError after MaxToolRounds exchanges.
func (p *TextProvider) GenerateText(ctx context.Context, prompt string, cfg core.GenerateConfig) (string, error) {
	params := p.buildParams(prompt, cfg)

	for round := 0; round < p.maxToolRounds; round++ {
		resp, err := p.messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("anthropic api error: %w", err)
		}

		var textBuilder strings.Builder

		toolUses := make([]anthropic.ToolUseBlock, 0, len(resp.Content))

		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				textBuilder.WriteString(block.AsText().Text)
			case "tool_use":
				toolUses = append(toolUses, block.AsToolUse())
			}
		}

		if len(toolUses) == 0 {
			return textBuilder.String(), nil
		}

		params.Messages = append(params.Messages, resp.ToParam())

		results := make([]anthropic.ContentBlockParamUnion, len(toolUses))
		for i, tu := range toolUses {
			results[i] = anthropic.NewToolResultBlock(tu.ID, p.dispatchToolUse(ctx, tu, cfg.ToolHandlers), false)
		}

		params.Messages = append(params.Messages, anthropic.NewUserMessage(results...))
	}

	return "", &core.RoundLimitError{Rounds: p.maxToolRounds}
}

// dispatchToolUse resolves and invokes a single tool use block, returning
// the text to feed back to the model. Missing tools and handler failures
// are reported to the model rather than aborting the conversation.
func (p *TextProvider) dispatchToolUse(ctx context.Context, tu anthropic.ToolUseBlock, handlers map[string]core.ToolHandler) string {
	handler, ok := handlers[tu.Name]
	if !ok {
		p.logger.Warn("anthropic.tool_not_found", "tool", tu.Name)
		return fmt.Sprintf("Tool %s not found", tu.Name)
	}

	args := map[string]any{}

	if raw, err := json.Marshal(tu.Input); err == nil {
		if err := json.Unmarshal(raw, &args); err != nil {
			p.logger.Warn("anthropic.tool_args_invalid", "tool", tu.Name, "error", err.Error())
			return fmt.Sprintf("Error executing tool %s: %s", tu.Name, err.Error())
		}
	}

	p.logger.Debug("anthropic.tool_use", "tool", tu.Name)

	result, err := handler(ctx, args)
	if err != nil {
		p.logger.Warn("anthropic.tool_failed", "tool", tu.Name, "error", err.Error())
		return fmt.Sprintf("Error executing tool %s: %s", tu.Name, err.Error())
	}

	if s, ok := result.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", result)
}

// buildParams assembles the Messages API parameters from the prompt,
// system message, context, and tool definitions.
func (p *TextProvider) buildParams(prompt string, cfg core.GenerateConfig) anthropic.MessageNewParams {
	var messages []anthropic.MessageParam

	var systemBlocks []anthropic.TextBlockParam

	if cfg.SystemMessage != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: cfg.SystemMessage})
	}

	for _, m := range cfg.Context {
		switch m.Role {
		case core.RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: m.Content})
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	params := anthropic.MessageNewParams{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   int64(cfg.MaxTokens),
		Temperature: anthropic.Float(cfg.Temperature),
		TopP:        anthropic.Float(cfg.TopP),
	}

	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	if len(cfg.Tools) > 0 {
		params.Tools = buildTools(cfg.Tools)
	}

	return params
}

// buildTools converts kernel tool definitions to the Anthropic tool format.
func buildTools(tools []core.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))

	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if params := tdef.Function.Parameters; params != nil {
			if properties, exists := params["properties"]; exists {
				inputSchema.Properties = properties
			}

			if required, exists := params["required"]; exists {
				inputSchema.Required = requiredStrings(required)
			}
		}

		out[i] = anthropic.ToolUnionParamOfTool(inputSchema, tdef.Function.Name)
	}

	return out
}

func requiredStrings(required any) []string {
	switch v := required.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, r := range v {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
