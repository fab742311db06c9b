package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echolabs/echokernel/internal/testutil"
)

func TestParseSubtasks_NumberedPlan(t *testing.T) {
	plan := "1. Fetch data\n2. Analyze data\n3. Write report"

	subtasks := ParseSubtasks(plan)
	assert.Equal(t, []string{"Fetch data", "Analyze data", "Write report"}, subtasks)
}

func TestParseSubtasks_BulletedPlan(t *testing.T) {
	plan := "- Fetch data\n- Analyze data"

	subtasks := ParseSubtasks(plan)
	assert.Equal(t, []string{"Fetch data", "Analyze data"}, subtasks)
}

func TestParseSubtasks_DiscardsNoise(t *testing.T) {
	plan := "Here is the plan:\n1. Fetch data\n\n2.   \n3. Write report"

	subtasks := ParseSubtasks(plan)
	assert.Equal(t, []string{"Fetch data", "Write report"}, subtasks)
}

func TestTaskDecomposer_RunsSubtasksInOrder(t *testing.T) {
	gen := &testutil.ScriptedGenerator{
		Responses: []string{"1. Fetch data\n2. Analyze data\n3. Write report"},
	}

	executor := &scriptedAgent{name: "executor", run: func(_ context.Context, task string) (string, error) {
		return "did: " + task, nil
	}}

	decomposer := NewTaskDecomposerAgent("planner", gen, executor)

	result, err := decomposer.Run(context.Background(), "produce a market report")
	assert.NoError(t, err)

	assert.Equal(t, []string{"Fetch data", "Analyze data", "Write report"}, executor.tasks)

	assert.Contains(t, result, "Subtask 1 Result:\ndid: Fetch data")
	assert.Contains(t, result, "Subtask 2 Result:\ndid: Analyze data")
	assert.Contains(t, result, "Subtask 3 Result:\ndid: Write report")
	assert.True(t, strings.Index(result, "Subtask 1") < strings.Index(result, "Subtask 2"))
	assert.True(t, strings.Index(result, "Subtask 2") < strings.Index(result, "Subtask 3"))
}

func TestTaskDecomposer_PlanPromptCarriesTask(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Responses: []string{"1. Only step"}}

	decomposer := NewTaskDecomposerAgent("planner", gen, &scriptedAgent{name: "executor"})

	subtasks, err := decomposer.Decompose(context.Background(), "analyze logs")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Only step"}, subtasks)
	assert.Contains(t, gen.Prompts[0], "You are a planning agent.")
	assert.Contains(t, gen.Prompts[0], "Task: analyze logs")
}

func TestTaskDecomposer_ExecutorAccessor(t *testing.T) {
	executor := &scriptedAgent{name: "executor"}
	decomposer := NewTaskDecomposerAgent("planner", &testutil.ScriptedGenerator{}, executor)

	assert.Same(t, executor, decomposer.Executor())
}
