// Package capability defines the callable operations a persona exposes to the
// external assistant.
package capability

import (
	"context"
	"encoding/json"

	"github.com/maitred-ai/maitred/internal/llm"
)

// Parameter describes one typed argument of a capability.
type Parameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Capability is a named, described operation the assistant may invoke while
// generating a response. Each persona holds an ordered set of capabilities
// bound at construction.
type Capability interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Invoke(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

// Declarations renders an ordered capability set into chat-completion tool
// definitions.
func Declarations(caps []Capability) []llm.Tool {
	if len(caps) == 0 {
		return nil
	}
	tools := make([]llm.Tool, 0, len(caps))
	for _, c := range caps {
		tools = append(tools, llm.Tool{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        c.Name(),
				Description: c.Description(),
				Parameters:  schema(c.Parameters()),
			},
		})
	}
	return tools
}

// schema builds the JSON-schema object for a parameter list.
func schema(params []Parameter) map[string]any {
	properties := make(map[string]any, len(params))
	var required []string
	for _, p := range params {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
