package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry == nil {
		t.Fatal("NewRegistry returned nil")
	}

	if registry.definitions == nil {
		t.Error("definitions map should be initialized")
	}

	if registry.handlers == nil {
		t.Error("handlers map should be initialized")
	}

	if len(registry.definitions) != 0 {
		t.Errorf("definitions should be empty, got %d entries", len(registry.definitions))
	}
}

func TestDefinitionsEmpty(t *testing.T) {
	registry := NewRegistry()

	definitions := registry.Definitions()

	if definitions == nil {
		t.Fatal("Definitions returned nil")
	}

	if len(definitions) != 0 {
		t.Errorf("expected empty slice, got %d definitions", len(definitions))
	}
}

func TestRegisterAndDefinitions(t *testing.T) {
	registry := NewRegistry()

	testHandler := func(ctx context.Context, arguments string) (string, error) {
		return "test response", nil
	}

	registry.Register(Definition{
		Type: "function",
		Function: FunctionSchema{
			Name:        "test_tool",
			Description: "A test tool",
			Parameters:  json.RawMessage(`{"type": "object"}`),
		},
		Handler:          testHandler,
		ValidityDuration: 5 * time.Minute,
	})

	definitions := registry.Definitions()

	if len(definitions) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(definitions))
	}

	def := definitions[0]
	if def.Function.Name != "test_tool" {
		t.Errorf("expected tool name 'test_tool', got %q", def.Function.Name)
	}

	if def.Function.Description != "A test tool" {
		t.Errorf("expected description 'A test tool', got %q", def.Function.Description)
	}

	if def.Type != "function" {
		t.Errorf("expected type 'function', got %q", def.Type)
	}
}

func TestRegisterMultipleTools(t *testing.T) {
	registry := NewRegistry()

	dummyHandler := func(ctx context.Context, arguments string) (string, error) {
		return "", nil
	}

	for _, name := range []string{"tool_a", "tool_b", "tool_c"} {
		registry.Register(Definition{
			Type:     "function",
			Function: FunctionSchema{Name: name},
			Handler:  dummyHandler,
		})
	}

	definitions := registry.Definitions()

	if len(definitions) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(definitions))
	}

	// Check all tools are present (order not guaranteed from map)
	names := make(map[string]bool)
	for _, def := range definitions {
		names[def.Function.Name] = true
	}

	for _, name := range []string{"tool_a", "tool_b", "tool_c"} {
		if !names[name] {
			t.Errorf("expected tool %q to be present", name)
		}
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	registry := NewRegistry()

	response := registry.Invoke(context.Background(), "nonexistent_tool", "{}")

	if !strings.Contains(response, "Unknown tool") {
		t.Errorf("expected unknown-tool message, got %q", response)
	}
}

func TestInvokeSuccess(t *testing.T) {
	registry := NewRegistry()

	registry.Register(Definition{
		Type:     "function",
		Function: FunctionSchema{Name: "test_tool"},
		Handler: func(ctx context.Context, arguments string) (string, error) {
			return "success response", nil
		},
	})

	response := registry.Invoke(context.Background(), "test_tool", "{}")

	if response != "success response" {
		t.Errorf("expected 'success response', got %q", response)
	}
}

func TestInvokeConvertsErrorsToStrings(t *testing.T) {
	registry := NewRegistry()

	registry.Register(Definition{
		Type:     "function",
		Function: FunctionSchema{Name: "failing_tool"},
		Handler: func(ctx context.Context, arguments string) (string, error) {
			return "", fmt.Errorf("something broke")
		},
	})

	response := registry.Invoke(context.Background(), "failing_tool", "{}")

	if !strings.Contains(response, "failing_tool") {
		t.Errorf("expected tool name in error response, got %q", response)
	}
	if !strings.Contains(response, "something broke") {
		t.Errorf("expected handler error in response, got %q", response)
	}
}

func TestHandleCallsIndividuallyEmpty(t *testing.T) {
	registry := NewRegistry()

	responses := registry.HandleCallsIndividually(context.Background(), []Call{})

	if responses == nil {
		t.Fatal("responses should not be nil")
	}

	if len(responses) != 0 {
		t.Errorf("expected empty responses, got %d", len(responses))
	}
}

func TestHandleCallsIndividuallySkipsNonFunction(t *testing.T) {
	registry := NewRegistry()

	calls := []Call{
		{
			ID:   "call_1",
			Type: "other_type",
			Function: CallFunction{
				Name:      "test_tool",
				Arguments: "{}",
			},
		},
	}

	responses := registry.HandleCallsIndividually(context.Background(), calls)

	if len(responses) != 0 {
		t.Errorf("expected 0 responses for non-function type, got %d", len(responses))
	}
}

func TestHandleCallsIndividuallyMultipleCalls(t *testing.T) {
	registry := NewRegistry()

	registry.Register(Definition{
		Type:     "function",
		Function: FunctionSchema{Name: "tool_1"},
		Handler: func(ctx context.Context, arguments string) (string, error) {
			return "response from tool_1", nil
		},
	})
	registry.Register(Definition{
		Type:     "function",
		Function: FunctionSchema{Name: "tool_2"},
		Handler: func(ctx context.Context, arguments string) (string, error) {
			return "response from tool_2", nil
		},
	})

	calls := []Call{
		{ID: "call_1", Type: "function", Function: CallFunction{Name: "tool_1", Arguments: "{}"}},
		{ID: "call_2", Type: "function", Function: CallFunction{Name: "tool_2", Arguments: "{}"}},
	}

	responses := registry.HandleCallsIndividually(context.Background(), calls)

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}

	// Check both responses are present (order not guaranteed due to parallel execution)
	responseMap := make(map[string]string)
	for _, r := range responses {
		responseMap[r.CallID] = r.Response
	}

	if responseMap["call_1"] != "response from tool_1" {
		t.Errorf("expected 'response from tool_1', got %q", responseMap["call_1"])
	}
	if responseMap["call_2"] != "response from tool_2" {
		t.Errorf("expected 'response from tool_2', got %q", responseMap["call_2"])
	}
}
