// Package testutil provides scripted providers and generators for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/echolabs/echokernel/core"
)

// ScriptedGenerator implements core.Generator, replaying canned responses
// in order. When the script runs out it repeats the last entry. A Respond
// function, when set, takes precedence over the script.
type ScriptedGenerator struct {
	// Responses are returned one per call, in order.
	Responses []string

	// Respond, when non-nil, computes the response from the prompt and
	// the call index.
	Respond func(prompt string, call int) (string, error)

	// Err, when non-nil, is returned by every call.
	Err error

	mu      sync.Mutex
	Prompts []string
}

// GenerateText implements core.Generator.
func (g *ScriptedGenerator) GenerateText(ctx context.Context, prompt string, opts ...core.GenerateOption) (string, error) {
	g.mu.Lock()
	call := len(g.Prompts)
	g.Prompts = append(g.Prompts, prompt)
	g.mu.Unlock()

	if g.Err != nil {
		return "", g.Err
	}

	if g.Respond != nil {
		return g.Respond(prompt, call)
	}

	if len(g.Responses) == 0 {
		return "", nil
	}

	if call >= len(g.Responses) {
		call = len(g.Responses) - 1
	}

	return g.Responses[call], nil
}

// Calls reports how many times GenerateText ran.
func (g *ScriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.Prompts)
}

// ScriptedTextProvider implements core.TextProvider with a fixed transform.
type ScriptedTextProvider struct {
	// Transform produces the response from the prompt and config. When
	// nil the prompt is echoed back.
	Transform func(prompt string, cfg core.GenerateConfig) (string, error)

	mu      sync.Mutex
	Prompts []string
	Configs []core.GenerateConfig
}

// Capability implements core.Provider.
func (p *ScriptedTextProvider) Capability() core.Capability {
	return core.CapabilityText
}

// GenerateText implements core.TextProvider.
func (p *ScriptedTextProvider) GenerateText(ctx context.Context, prompt string, cfg core.GenerateConfig) (string, error) {
	p.mu.Lock()
	p.Prompts = append(p.Prompts, prompt)
	p.Configs = append(p.Configs, cfg)
	p.mu.Unlock()

	if p.Transform == nil {
		return prompt, nil
	}

	return p.Transform(prompt, cfg)
}

// HashEmbedder implements core.EmbeddingProvider deterministically: equal
// texts map to equal vectors, distinct texts to nearly orthogonal ones.
// Good enough for exercising similarity plumbing without a model.
type HashEmbedder struct {
	// Dimension of the produced vectors. Defaults to 8.
	Dimension int
}

// Capability implements core.Provider.
func (e *HashEmbedder) Capability() core.Capability {
	return core.CapabilityEmbedding
}

// GenerateEmbedding implements core.EmbeddingProvider.
func (e *HashEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	dim := e.Dimension
	if dim <= 0 {
		dim = 8
	}

	vec := make([]float32, dim)

	h := uint32(2166136261)
	for _, b := range []byte(text) {
		h = (h ^ uint32(b)) * 16777619
	}

	vec[int(h%uint32(dim))] = 1

	return vec, nil
}

// FailingEmbedder implements core.EmbeddingProvider, failing every call.
type FailingEmbedder struct{}

// Capability implements core.Provider.
func (e *FailingEmbedder) Capability() core.Capability {
	return core.CapabilityEmbedding
}

// GenerateEmbedding implements core.EmbeddingProvider.
func (e *FailingEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embedder unavailable")
}
