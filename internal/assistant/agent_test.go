package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/maitred-ai/maitred/internal/capability"
	"github.com/maitred-ai/maitred/internal/llm"
	"github.com/maitred-ai/maitred/internal/policy"
)

// scriptedClient returns one canned response per call, recording each
// request.
type scriptedClient struct {
	responses []*llm.ChatCompletionResponse
	err       error
	requests  []*llm.ChatCompletionRequest
}

func (s *scriptedClient) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &llm.ChatCompletionResponse{}, nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func textResponse(content string) *llm.ChatCompletionResponse {
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{{Message: &llm.ChatMessage{Role: "assistant", Content: content}}},
	}
}

func toolCallResponse(id, name, args string) *llm.ChatCompletionResponse {
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{{Message: &llm.ChatMessage{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{{
				ID:       id,
				Type:     "function",
				Function: llm.ToolCallFunction{Name: name, Arguments: args},
			}},
		}}},
	}
}

func allowAllEngine(t *testing.T) *policy.Engine {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to build policy engine: %v", err)
	}
	return engine
}

func blockAllEngine(t *testing.T) *policy.Engine {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), `
package capability_policy

import rego.v1

default decision := "block"
`)
	if err != nil {
		t.Fatalf("failed to build policy engine: %v", err)
	}
	return engine
}

func TestGetResponsePlainText(t *testing.T) {
	client := &scriptedClient{responses: []*llm.ChatCompletionResponse{textResponse("hello there")}}
	agent := New(client, "gpt-test", "weather", "You are a weather expert.", nil, allowAllEngine(t), nil)

	resp, err := agent.GetResponse(context.Background(), "User: hi\nAssistant:")
	if err != nil {
		t.Fatalf("GetResponse failed: %v", err)
	}
	text, ok := resp.Text()
	if !ok || text != "hello there" {
		t.Fatalf("unexpected response: %q, %v", text, ok)
	}

	if len(client.requests) != 1 {
		t.Fatalf("expected 1 call, got %d", len(client.requests))
	}
	req := client.requests[0]
	if req.Model != "gpt-test" {
		t.Fatalf("unexpected model %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	if req.Messages[0].Content != "You are a weather expert." {
		t.Fatalf("instructions not sent as system message: %+v", req.Messages[0])
	}
}

func TestGetResponseResolvesCapabilityCall(t *testing.T) {
	client := &scriptedClient{responses: []*llm.ChatCompletionResponse{
		toolCallResponse("call-1", "add", `{"a": 2, "b": 3}`),
		textResponse("The sum is 5."),
	}}
	agent := New(client, "gpt-test", "math", "You do arithmetic.",
		[]capability.Capability{capability.Adder{}}, allowAllEngine(t), nil)

	resp, err := agent.GetResponse(context.Background(), "User: 2+3?\nAssistant:")
	if err != nil {
		t.Fatalf("GetResponse failed: %v", err)
	}
	text, ok := resp.Text()
	if !ok || text != "The sum is 5." {
		t.Fatalf("unexpected response: %q, %v", text, ok)
	}

	if len(client.requests) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(client.requests))
	}

	// The first request declares the capability.
	first := client.requests[0]
	if len(first.Tools) != 1 || first.Tools[0].Function.Name != "add" {
		t.Fatalf("capability not declared: %+v", first.Tools)
	}

	// The second request carries the assistant turn and the tool result.
	second := client.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != "tool" || last.ToolCallID != "call-1" {
		t.Fatalf("unexpected tool message: %+v", last)
	}
	var result struct {
		Sum float64 `json:"sum"`
	}
	if err := json.Unmarshal([]byte(last.Content), &result); err != nil {
		t.Fatalf("tool content is not JSON: %v", err)
	}
	if result.Sum != 5 {
		t.Fatalf("expected sum 5, got %v", result.Sum)
	}
}

func TestGetResponseUnknownCapability(t *testing.T) {
	client := &scriptedClient{responses: []*llm.ChatCompletionResponse{
		toolCallResponse("call-1", "launch_missiles", `{}`),
		textResponse("I cannot do that."),
	}}
	agent := New(client, "gpt-test", "math", "You do arithmetic.",
		[]capability.Capability{capability.Adder{}}, allowAllEngine(t), nil)

	resp, err := agent.GetResponse(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GetResponse failed: %v", err)
	}
	if text, _ := resp.Text(); text != "I cannot do that." {
		t.Fatalf("unexpected response %q", text)
	}

	last := client.requests[1].Messages[len(client.requests[1].Messages)-1]
	if !strings.Contains(last.Content, "unknown capability") {
		t.Fatalf("expected error payload, got %q", last.Content)
	}
}

func TestGetResponsePolicyBlocksCapability(t *testing.T) {
	client := &scriptedClient{responses: []*llm.ChatCompletionResponse{
		toolCallResponse("call-1", "add", `{"a": 1, "b": 1}`),
		textResponse("That was not allowed."),
	}}
	agent := New(client, "gpt-test", "math", "You do arithmetic.",
		[]capability.Capability{capability.Adder{}}, blockAllEngine(t), nil)

	resp, err := agent.GetResponse(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GetResponse failed: %v", err)
	}
	if text, _ := resp.Text(); text != "That was not allowed." {
		t.Fatalf("unexpected response %q", text)
	}

	last := client.requests[1].Messages[len(client.requests[1].Messages)-1]
	if !strings.Contains(last.Content, "blocked by policy") {
		t.Fatalf("expected blocked payload, got %q", last.Content)
	}
}

func TestGetResponseUpstreamFailure(t *testing.T) {
	client := &scriptedClient{err: errors.New("connection refused")}
	agent := New(client, "gpt-test", "weather", "instructions", nil, allowAllEngine(t), nil)

	_, err := agent.GetResponse(context.Background(), "prompt")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGetResponseEmptyChoices(t *testing.T) {
	client := &scriptedClient{responses: []*llm.ChatCompletionResponse{{}}}
	agent := New(client, "gpt-test", "weather", "instructions", nil, allowAllEngine(t), nil)

	resp, err := agent.GetResponse(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GetResponse failed: %v", err)
	}
	if _, ok := resp.Text(); ok {
		t.Fatal("expected no textual content")
	}
}

func TestGetResponseBoundsCapabilityRounds(t *testing.T) {
	// The client keeps asking for the same call; the loop must stop after
	// maxCapabilityRounds and return whatever content is present.
	var responses []*llm.ChatCompletionResponse
	for i := 0; i < maxCapabilityRounds+5; i++ {
		responses = append(responses, toolCallResponse(fmt.Sprintf("call-%d", i), "add", `{"a": 1, "b": 1}`))
	}
	client := &scriptedClient{responses: responses}
	agent := New(client, "gpt-test", "math", "instructions",
		[]capability.Capability{capability.Adder{}}, allowAllEngine(t), nil)

	resp, err := agent.GetResponse(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GetResponse failed: %v", err)
	}
	if _, ok := resp.Text(); ok {
		t.Fatal("expected no textual content from a tool-only reply")
	}
	if len(client.requests) != maxCapabilityRounds+1 {
		t.Fatalf("expected %d calls, got %d", maxCapabilityRounds+1, len(client.requests))
	}
}
