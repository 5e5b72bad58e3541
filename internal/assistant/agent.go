// Package assistant wraps the external chat-completion endpoint as an agent
// with fixed instructions and a bound capability set.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maitred-ai/maitred/internal/capability"
	"github.com/maitred-ai/maitred/internal/llm"
	"github.com/maitred-ai/maitred/internal/policy"
)

// ErrUpstream wraps every failure of the external assistant call.
var ErrUpstream = errors.New("upstream assistant error")

// maxCapabilityRounds bounds how many function-call rounds one GetResponse
// may resolve before the last textual content is returned as-is.
const maxCapabilityRounds = 4

// Agent is an external assistant bound to one persona's instructions and
// capabilities. It is constructed once per process and is safe for concurrent
// use; all per-conversation state travels in the prompt.
type Agent struct {
	client       llm.ChatClient
	deployment   string
	instructions string
	capabilities []capability.Capability
	policy       *policy.Engine
	persona      string
	logger       *slog.Logger
}

// New creates an agent for one persona.
func New(client llm.ChatClient, deployment, persona, instructions string, caps []capability.Capability, engine *policy.Engine, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		client:       client,
		deployment:   deployment,
		instructions: instructions,
		capabilities: caps,
		policy:       engine,
		persona:      persona,
		logger:       logger,
	}
}

// GetResponse sends the prompt to the assistant and resolves any function
// calls internally, returning the final response. Call failures wrap
// ErrUpstream; a reply without textual content is reported through
// Response.Text, not as an error.
func (a *Agent) GetResponse(ctx context.Context, prompt string) (Response, error) {
	messages := []llm.ChatMessage{
		{Role: "system", Content: a.instructions},
		{Role: "user", Content: prompt},
	}
	tools := capability.Declarations(a.capabilities)

	for round := 0; ; round++ {
		resp, err := a.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
			Model:    a.deployment,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
			return Response{}, nil
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 || round >= maxCapabilityRounds {
			return Response{content: msg.Content, hasText: msg.Content != ""}, nil
		}

		messages = append(messages, *msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, llm.ChatMessage{
				Role:       "tool",
				Content:    a.resolveCall(ctx, call),
				ToolCallID: call.ID,
			})
		}
	}
}

// resolveCall executes one function call and renders its outcome as the tool
// message content. Failures are fed back to the assistant rather than
// aborting the response.
func (a *Agent) resolveCall(ctx context.Context, call llm.ToolCall) string {
	name := call.Function.Name
	args := json.RawMessage(call.Function.Arguments)
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	target := a.lookup(name)
	if target == nil {
		a.logger.Warn("assistant requested unknown capability", "persona", a.persona, "capability", name)
		return errPayload(fmt.Sprintf("unknown capability %q", name))
	}

	var parsedArgs any
	if err := json.Unmarshal(args, &parsedArgs); err != nil {
		return errPayload("invalid capability arguments")
	}

	decision, err := a.policy.Evaluate(ctx, policy.Input{
		Persona:    a.persona,
		Capability: name,
		Args:       parsedArgs,
	})
	if err != nil {
		a.logger.Error("capability policy evaluation failed", "capability", name, "error", err)
		return errPayload("capability policy unavailable")
	}
	if decision != "allow" {
		a.logger.Info("capability invocation blocked", "persona", a.persona, "capability", name, "decision", decision)
		return errPayload(fmt.Sprintf("capability %q blocked by policy", name))
	}

	result, err := target.Invoke(ctx, args)
	if err != nil {
		a.logger.Warn("capability invocation failed", "capability", name, "error", err)
		return errPayload(err.Error())
	}

	a.logger.Debug("capability invoked", "persona", a.persona, "capability", name)
	return string(result)
}

func (a *Agent) lookup(name string) capability.Capability {
	for _, c := range a.capabilities {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func errPayload(msg string) string {
	payload, _ := json.Marshal(map[string]string{"error": msg})
	return string(payload)
}
