// Package openai provides kernel providers backed by the OpenAI API: a text
// provider implementing the Chat Completions tool-calling loop and an
// embedding provider. Both adapt the normalized kernel configuration into
// the SDK's parameter format and back.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// ChatCompletionService is the slice of the OpenAI client used by the text
// provider. The SDK's Chat.Completions service satisfies it; tests supply
// scripted implementations.
type ChatCompletionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

var _ ChatCompletionService = (*openai.ChatCompletionService)(nil)

// TextProviderOptions configure the OpenAI text provider.
type TextProviderOptions struct {
	// Model is the chat completion model identifier.
	Model string

	// APIKey overrides the key read from the environment.
	APIKey string

	// BaseURL points the client at an OpenAI-compatible endpoint, such
	// as an Azure OpenAI deployment or a local proxy.
	BaseURL string

	// MaxToolRounds caps the number of model/tool exchange rounds in a
	// single GenerateText call. Defaults to 10.
	MaxToolRounds int

	// Logger receives tool dispatch diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// TextProvider implements core.TextProvider on the Chat Completions API,
// including the function/tool calling round trip.
type TextProvider struct {
	chat          ChatCompletionService
	model         string
	maxToolRounds int
	logger        logging.Logger
}

var _ core.TextProvider = (*TextProvider)(nil)

// NewTextProvider creates a text provider using the official client. The
// API key is taken from the options or the OPENAI_API_KEY environment
// variable.
func NewTextProvider(optFns ...func(o *TextProviderOptions)) *TextProvider {
	var opts TextProviderOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	client := openai.NewClient(clientOptions(opts.APIKey, opts.BaseURL)...)

	return NewTextProviderFromClient(&client, optFns...)
}

func clientOptions(apiKey, baseURL string) []option.RequestOption {
	var clientOpts []option.RequestOption
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}

	return clientOpts
}

// NewTextProviderFromClient creates a text provider from an existing client.
func NewTextProviderFromClient(client *openai.Client, optFns ...func(o *TextProviderOptions)) *TextProvider {
	return NewTextProviderFromService(&client.Chat.Completions, optFns...)
}

// NewTextProviderFromService creates a text provider from a chat completion
// service. Useful for proxied deployments and for testing.
func NewTextProviderFromService(svc ChatCompletionService, optFns ...func(o *TextProviderOptions)) *TextProvider {
	opts := TextProviderOptions{
		Model:         openai.ChatModelGPT4oMini,
		MaxToolRounds: 10,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &TextProvider{
		chat:          svc,
		model:         opts.Model,
		maxToolRounds: opts.MaxToolRounds,
		logger:        logging.OrNoOp(opts.Logger),
	}
}

// Capability implements core.Provider.
func (p *TextProvider) Capability() core.Capability {
	return core.CapabilityText
}

// GenerateText runs a chat completion for the prompt. When the model
// responds with tool calls, each call is dispatched to the matching handler
// in cfg.ToolHandlers, the results are appended to the conversation as tool
// messages, and the model is invoked again. The loop ends when the model
// returns plain text, or fails with core.RoundLimitError after
// MaxToolRounds exchanges.
func (p *TextProvider) GenerateText(ctx context.Context, prompt string, cfg core.GenerateConfig) (string, error) {
	messages := buildMessages(prompt, cfg)
	params := p.buildParams(messages, cfg)

	for round := 0; round < p.maxToolRounds; round++ {
		resp, err := p.chat.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("openai api error: %w", err)
		}

		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("openai: no choices returned")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())

		for _, tc := range msg.ToolCalls {
			result := p.dispatchToolCall(ctx, tc, cfg.ToolHandlers)
			params.Messages = append(params.Messages, openai.ToolMessage(result, tc.ID))
		}
	}

	return "", &core.RoundLimitError{Rounds: p.maxToolRounds}
}

// dispatchToolCall resolves and invokes a single tool call, returning the
// text to feed back to the model. Missing tools and handler failures are
// reported to the model rather than aborting the conversation.
func (p *TextProvider) dispatchToolCall(ctx context.Context, tc openai.ChatCompletionMessageToolCall, handlers map[string]core.ToolHandler) string {
	name := tc.Function.Name

	handler, ok := handlers[name]
	if !ok {
		p.logger.Warn("openai.tool_not_found", "tool", name)
		return fmt.Sprintf("Tool %s not found", name)
	}

	args := map[string]any{}
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			p.logger.Warn("openai.tool_args_invalid", "tool", name, "error", err.Error())
			return fmt.Sprintf("Error executing tool %s: %s", name, err.Error())
		}
	}

	p.logger.Debug("openai.tool_call", "tool", name)

	result, err := handler(ctx, args)
	if err != nil {
		p.logger.Warn("openai.tool_failed", "tool", name, "error", err.Error())
		return fmt.Sprintf("Error executing tool %s: %s", name, err.Error())
	}

	return formatToolResult(result)
}

// buildMessages converts the system message, prior context, and prompt into
// the SDK's message union format.
func buildMessages(prompt string, cfg core.GenerateConfig) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if cfg.SystemMessage != "" {
		messages = append(messages, openai.SystemMessage(cfg.SystemMessage))
	}

	for _, m := range cfg.Context {
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	return append(messages, openai.UserMessage(prompt))
}

// buildParams assembles the request parameters including tool definitions.
func (p *TextProvider) buildParams(messages []openai.ChatCompletionMessageParamUnion, cfg core.GenerateConfig) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:         messages,
		Model:            p.model,
		Temperature:      openai.Float(cfg.Temperature),
		MaxTokens:        openai.Int(int64(cfg.MaxTokens)),
		TopP:             openai.Float(cfg.TopP),
		FrequencyPenalty: openai.Float(cfg.FrequencyPenalty),
		PresencePenalty:  openai.Float(cfg.PresencePenalty),
	}

	if len(cfg.Tools) == 0 {
		return params
	}

	tools := make([]openai.ChatCompletionToolParam, len(cfg.Tools))
	for i, tdef := range cfg.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}

	params.Tools = tools

	return params
}

func formatToolResult(result any) string {
	if s, ok := result.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", result)
}
