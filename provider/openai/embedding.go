package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/echolabs/echokernel/core"
)

// EmbeddingService is the slice of the OpenAI client used by the embedding
// provider. The SDK's Embeddings service satisfies it.
type EmbeddingService interface {
	New(ctx context.Context, body openai.EmbeddingNewParams, opts ...option.RequestOption) (*openai.CreateEmbeddingResponse, error)
}

var _ EmbeddingService = (*openai.EmbeddingService)(nil)

// EmbeddingProviderOptions configure the OpenAI embedding provider.
type EmbeddingProviderOptions struct {
	// Model is the embedding model identifier.
	Model string

	// APIKey overrides the key read from the environment.
	APIKey string

	// BaseURL points the client at an OpenAI-compatible endpoint, such
	// as an Azure OpenAI deployment or a local proxy.
	BaseURL string
}

// EmbeddingProvider implements core.EmbeddingProvider on the OpenAI
// Embeddings API.
type EmbeddingProvider struct {
	embeddings EmbeddingService
	model      string
}

var _ core.EmbeddingProvider = (*EmbeddingProvider)(nil)

// NewEmbeddingProvider creates an embedding provider using the official
// client. The API key is taken from the options or the OPENAI_API_KEY
// environment variable.
func NewEmbeddingProvider(optFns ...func(o *EmbeddingProviderOptions)) *EmbeddingProvider {
	var opts EmbeddingProviderOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	client := openai.NewClient(clientOptions(opts.APIKey, opts.BaseURL)...)

	return NewEmbeddingProviderFromClient(&client, optFns...)
}

// NewEmbeddingProviderFromClient creates an embedding provider from an
// existing client.
func NewEmbeddingProviderFromClient(client *openai.Client, optFns ...func(o *EmbeddingProviderOptions)) *EmbeddingProvider {
	return NewEmbeddingProviderFromService(&client.Embeddings, optFns...)
}

// NewEmbeddingProviderFromService creates an embedding provider from an
// embedding service. Useful for proxied deployments and for testing.
func NewEmbeddingProviderFromService(svc EmbeddingService, optFns ...func(o *EmbeddingProviderOptions)) *EmbeddingProvider {
	opts := EmbeddingProviderOptions{
		Model: openai.EmbeddingModelTextEmbedding3Small,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &EmbeddingProvider{
		embeddings: svc,
		model:      opts.Model,
	}
}

// Capability implements core.Provider.
func (p *EmbeddingProvider) Capability() core.Capability {
	return core.CapabilityEmbedding
}

// GenerateEmbedding returns the embedding vector for the given text.
func (p *EmbeddingProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Model:          p.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}

	resp, err := p.embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}

	raw := resp.Data[0].Embedding

	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}

	return vec, nil
}
