package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vkoski/infotools/metrics"
)

// Definition represents a tool that can be invoked by the tool-calling host
type Definition struct {
	Type             string         `json:"type"`
	Function         FunctionSchema `json:"function"`
	Handler          Handler        `json:"-"`
	ValidityDuration time.Duration  `json:"-"`
}

// FunctionSchema defines the schema for a function tool
type FunctionSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Call represents a call to a tool from the host
type Call struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function CallFunction `json:"function"`
}

// CallFunction represents the function part of a tool call
type CallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Handler is a function that handles a specific tool call. The arguments are
// a JSON object encoded as a string, matching the definition's parameter
// schema.
type Handler func(ctx context.Context, arguments string) (string, error)

// Registry stores all available tools and their handlers
type Registry struct {
	definitions map[string]Definition
	handlers    map[string]Handler
}

// Response represents a response from a tool call
type Response struct {
	CallID   string
	Response string
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]Definition),
		handlers:    make(map[string]Handler),
	}
}

// Register registers a tool with the registry
func (r *Registry) Register(definition Definition) {
	metrics.InitializeTool(definition.Function.Name)
	r.definitions[definition.Function.Name] = definition
	r.handlers[definition.Function.Name] = definition.Handler
}

// Definitions returns all registered tool definitions
func (r *Registry) Definitions() []Definition {
	definitions := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		definitions = append(definitions, def)
	}
	return definitions
}

// Invoke calls the named tool with the given JSON arguments and returns its
// textual response. Failures never escape as errors: an unknown tool or a
// failing handler produces a formatted error string instead, so the host
// always receives a complete reply.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) string {
	handler, exists := r.handlers[name]
	if !exists {
		log.Warn().Ctx(ctx).Str("tool", name).Msg("Unknown tool called")
		metrics.RecordToolCall(name, false)
		return fmt.Sprintf("Unknown tool: %s", name)
	}

	startTime := time.Now()
	response, err := handler(ctx, arguments)
	executionTime := time.Since(startTime).Seconds()

	if err != nil {
		log.Error().Ctx(ctx).Err(err).
			Str("tool", name).
			Str("arguments", arguments).
			Float64("execution_time_sec", executionTime).
			Msg("Tool call failed")
		metrics.RecordToolCall(name, false)
		return fmt.Sprintf("Error executing %s: %s", name, err.Error())
	}

	log.Debug().Ctx(ctx).
		Str("tool", name).
		Str("arguments", arguments).
		Int("response_length", len(response)).
		Float64("execution_time_sec", executionTime).
		Msg("Tool call succeeded")
	metrics.RecordToolCall(name, true)
	metrics.RecordToolLatency(name, executionTime)
	return response
}

// HandleCallsIndividually processes multiple tool calls in parallel and
// returns individual responses. Calls are independent of each other, so
// nothing is shared between the goroutines beyond the response slice.
func (r *Registry) HandleCallsIndividually(ctx context.Context, calls []Call) []Response {
	if len(calls) == 0 {
		return []Response{}
	}

	var (
		responses = make([]Response, 0, len(calls))
		wg        sync.WaitGroup
		mu        sync.Mutex
	)

	for _, call := range calls {
		if call.Type != "function" {
			continue
		}

		currentCall := call

		wg.Add(1)
		go func() {
			defer wg.Done()

			response := r.Invoke(ctx, currentCall.Function.Name, currentCall.Function.Arguments)

			mu.Lock()
			responses = append(responses, Response{
				CallID:   currentCall.ID,
				Response: response,
			})
			mu.Unlock()
		}()
	}

	wg.Wait()

	return responses
}
