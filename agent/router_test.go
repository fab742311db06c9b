package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/internal/testutil"
)

func TestRouterAgent_RoutesByName(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Responses: []string{"  coder \n"}}

	coder := &scriptedAgent{name: "coder", run: func(_ context.Context, _ string) (string, error) {
		return "code written", nil
	}}
	writer := &scriptedAgent{name: "writer"}

	router := NewRouterAgent("router", gen, func(o *RouterOptions) {
		o.Specialists = []Agent{writer, coder}
	})

	result, err := router.Run(context.Background(), "implement quicksort")
	assert.NoError(t, err)
	assert.Equal(t, "code written", result)
	assert.Equal(t, []string{"implement quicksort"}, coder.tasks)
	assert.Empty(t, writer.tasks)
}

func TestRouterAgent_UnknownNameFallsBackToFirst(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Responses: []string{"nonexistent"}}

	writer := &scriptedAgent{name: "writer", run: func(_ context.Context, _ string) (string, error) {
		return "fallback handled it", nil
	}}
	coder := &scriptedAgent{name: "coder"}

	router := NewRouterAgent("router", gen, func(o *RouterOptions) {
		o.Specialists = []Agent{writer, coder}
	})

	result, err := router.Run(context.Background(), "do something")
	assert.NoError(t, err)
	assert.Equal(t, "fallback handled it", result)
	assert.Empty(t, coder.tasks)
}

func TestRouterAgent_NoSpecialists(t *testing.T) {
	router := NewRouterAgent("router", &testutil.ScriptedGenerator{})

	_, err := router.Run(context.Background(), "task")
	assert.ErrorIs(t, err, ErrNoSpecialists)
}

func TestSpecialistRouter_ValidResultFirstTry(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Responses: []string{"coder"}}

	coder := &scriptedAgent{name: "coder", run: func(_ context.Context, _ string) (string, error) {
		return "valid output", nil
	}}

	router := NewSpecialistRouterAgent("router", gen, func(o *SpecialistRouterOptions) {
		o.Specialists = []Agent{coder}
	})

	result, err := router.RouteWithValidation(context.Background(), "task", func(r string) bool {
		return r == "valid output"
	})
	assert.NoError(t, err)
	assert.Equal(t, "valid output", result)
	assert.Equal(t, 1, gen.Calls())
}

func TestSpecialistRouter_ExhaustsRetries(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Responses: []string{"coder"}}

	coder := &scriptedAgent{name: "coder", run: func(_ context.Context, _ string) (string, error) {
		return "never good enough", nil
	}}

	router := NewSpecialistRouterAgent("router", gen, func(o *SpecialistRouterOptions) {
		o.MaxRetries = 2
		o.Specialists = []Agent{coder}
	})

	alwaysFail := func(string) bool { return false }

	_, err := router.RouteWithValidation(context.Background(), "task", alwaysFail)
	assert.Error(t, err)

	var exhausted *core.RoutingExhaustedError
	assert.True(t, errors.As(err, &exhausted))
	assert.Equal(t, "router", exhausted.Agent)
	assert.Equal(t, 2, exhausted.Attempts)

	// Exactly maxRetries attempts were spent.
	assert.Equal(t, 2, gen.Calls())
	assert.Len(t, coder.tasks, 2)
}

func TestSpecialistRouter_InvalidNameRetriesWithNameList(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Responses: []string{"bogus", "coder"}}

	coder := &scriptedAgent{name: "coder", run: func(_ context.Context, _ string) (string, error) {
		return "done", nil
	}}

	router := NewSpecialistRouterAgent("router", gen, func(o *SpecialistRouterOptions) {
		o.Specialists = []Agent{coder}
	})

	result, err := router.Run(context.Background(), "task")
	assert.NoError(t, err)
	assert.Equal(t, "done", result)

	// The retry prompt names the valid specialists.
	assert.Contains(t, gen.Prompts[1], "The previous agent name was invalid")
	assert.Contains(t, gen.Prompts[1], "coder")
}

func TestSpecialistRouter_ValidationFailurePromptsDifferentChoice(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Responses: []string{"coder", "coder"}}

	calls := 0
	coder := &scriptedAgent{name: "coder", run: func(_ context.Context, _ string) (string, error) {
		calls++
		if calls == 2 {
			return "good", nil
		}
		return "bad", nil
	}}

	router := NewSpecialistRouterAgent("router", gen, func(o *SpecialistRouterOptions) {
		o.Specialists = []Agent{coder}
	})

	result, err := router.RouteWithValidation(context.Background(), "task", func(r string) bool {
		return r == "good"
	})
	assert.NoError(t, err)
	assert.Equal(t, "good", result)
	assert.Contains(t, gen.Prompts[1], "Previous result failed validation")
}
