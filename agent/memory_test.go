package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echolabs/echokernel/core"
)

// fakeTextMemory records writes and replays scripted search hits.
type fakeTextMemory struct {
	hits      []core.MemoryResult
	searchErr error
	addErr    error

	queries []string
	added   []string
	addMeta []map[string]any
}

func (m *fakeTextMemory) Capability() core.Capability { return core.CapabilityMemory }

func (m *fakeTextMemory) AddText(_ context.Context, text string, metadata map[string]any) (string, error) {
	if m.addErr != nil {
		return "", m.addErr
	}
	m.added = append(m.added, text)
	m.addMeta = append(m.addMeta, metadata)
	return "id-1", nil
}

func (m *fakeTextMemory) SearchSimilar(_ context.Context, query string, _ int) ([]core.MemoryResult, error) {
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *fakeTextMemory) GetText(_ context.Context, _ string) (*core.MemoryEntry, error) {
	return nil, nil
}

func (m *fakeTextMemory) DeleteText(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func TestMemoryAgent_AugmentsTaskWithMatches(t *testing.T) {
	memory := &fakeTextMemory{hits: []core.MemoryResult{
		{ID: "1", Text: "Paris is the capital of France."},
		{ID: "2", Text: "France borders Spain."},
	}}
	executor := &scriptedAgent{name: "executor", run: func(_ context.Context, task string) (string, error) {
		return "answer", nil
	}}

	agent := NewMemoryAgent("memory", memory, executor)

	result, err := agent.Run(context.Background(), "What is the capital of France?")
	assert.NoError(t, err)
	assert.Equal(t, "answer", result)

	assert.Equal(t,
		"Use the following prior context if useful:\n- Paris is the capital of France.\n- France borders Spain.\n\nNow answer:\nWhat is the capital of France?",
		executor.tasks[0],
	)
}

func TestMemoryAgent_PersistsOriginalTask(t *testing.T) {
	memory := &fakeTextMemory{}
	agent := NewMemoryAgent("researcher", memory, &scriptedAgent{name: "executor"})

	_, err := agent.Run(context.Background(), "summarize the report")
	assert.NoError(t, err)

	assert.Equal(t, []string{"summarize the report"}, memory.added)
	assert.Equal(t, map[string]any{"source": "researcher"}, memory.addMeta[0])
}

func TestMemoryAgent_SearchFailureDegradesToEmptyContext(t *testing.T) {
	memory := &fakeTextMemory{searchErr: assert.AnError}
	executor := &scriptedAgent{name: "executor"}

	agent := NewMemoryAgent("memory", memory, executor)

	_, err := agent.Run(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, "Use the following prior context if useful:\n\n\nNow answer:\nhello", executor.tasks[0])
}

func TestMemoryAgent_WriteFailureDoesNotBlock(t *testing.T) {
	memory := &fakeTextMemory{addErr: assert.AnError}
	executor := &scriptedAgent{name: "executor", run: func(_ context.Context, _ string) (string, error) {
		return "still answered", nil
	}}

	agent := NewMemoryAgent("memory", memory, executor)

	result, err := agent.Run(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, "still answered", result)
}

func TestMemoryAgent_SearchLimitOption(t *testing.T) {
	memory := &fakeTextMemory{}

	var gotLimit int
	limitMemory := &limitRecordingMemory{fakeTextMemory: memory, limit: &gotLimit}

	agent := NewMemoryAgent("memory", limitMemory, &scriptedAgent{name: "executor"}, func(o *MemoryOptions) {
		o.SearchLimit = 2
	})

	_, err := agent.Run(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, 2, gotLimit)
}

type limitRecordingMemory struct {
	*fakeTextMemory
	limit *int
}

func (m *limitRecordingMemory) SearchSimilar(ctx context.Context, query string, limit int) ([]core.MemoryResult, error) {
	*m.limit = limit
	return m.fakeTextMemory.SearchSimilar(ctx, query, limit)
}
