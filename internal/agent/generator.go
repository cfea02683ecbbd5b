package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lectern-ai/lectern/internal/ai"
	"github.com/lectern-ai/lectern/internal/tools"
)

const systemPromptHeader = `You are an AI assistant specialized in course materials and educational content, with access to tools for course information.`

const systemPromptPolicy = `
## When to Use Tools
- Use search_course_content ONLY for questions about specific course content or detailed educational materials
- Use get_course_outline for questions about a course's structure or lesson list
- For general knowledge questions, answer directly without any tool
- Maximum ONE tool call per query

## How to Call a Tool
When you need a tool, output EXACTLY this format (no extra text before it):
<tool_call>{"name": "search_course_content", "arguments": {"query": "your search query here"}}</tool_call>

Example with filters:
<tool_call>{"name": "search_course_content", "arguments": {"query": "API endpoints", "course_name": "MCP"}}</tool_call>

## Response Guidelines
- Be brief and concise - get to the point quickly
- Provide direct answers only - no meta-commentary about searching
- Do not mention "based on the search results"
- Include relevant examples when they aid understanding`

// Generator drives one question-answering turn: at most two completion
// requests and at most one tool invocation in between, both sampled at
// temperature zero so a fixed model and corpus reproduce the same answer.
type Generator struct {
	client ai.IChatClient
}

func NewGenerator(client ai.IChatClient) *Generator {
	return &Generator{client: client}
}

// Answer runs the turn. history is an optional prior-conversation summary;
// registry may be nil, in which case any emitted invocation is stripped
// instead of executed. Completion failures propagate to the caller; protocol
// failures (malformed or unknown invocations) never do.
func (g *Generator) Answer(ctx context.Context, question string, history string, registry *tools.Registry) (string, error) {
	system := g.systemPrompt(registry)
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", system, history)
	}
	msgs := []ai.Message{
		{Role: ai.RoleSystem, Content: system},
		{Role: ai.RoleUser, Content: question},
	}
	opts := ai.ChatOptions{Temperature: ptr(float32(0))}

	first, err := g.client.Chat(ctx, msgs, opts)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}

	call, ok := ExtractToolCall(first)
	if !ok || registry == nil {
		return CleanResponse(first), nil
	}

	logutil.GetLogger(ctx).Debug("tool invocation requested", zap.String("tool", call.Name))
	result := registry.ExecuteTool(ctx, call.Name, call.Arguments)

	msgs = append(msgs,
		ai.Message{Role: ai.RoleAssistant, Content: first},
		ai.Message{Role: ai.RoleUser, Content: fmt.Sprintf(
			"Tool result:\n%s\n\nNow provide your final answer based on these search results. Be concise and do not mention that you searched.",
			result,
		)},
	)
	second, err := g.client.Chat(ctx, msgs, opts)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	return CleanResponse(second), nil
}

// systemPrompt renders the fixed policy text plus the declared capabilities
// of the registry, so the model only sees tools that are actually wired.
func (g *Generator) systemPrompt(registry *tools.Registry) string {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)
	if registry != nil {
		defs := registry.Definitions()
		if len(defs) > 0 {
			sb.WriteString("\n\n## Available Tools\n")
			for _, def := range defs {
				sb.WriteString(fmt.Sprintf("- **%s**: %s\n", def.Name, def.Description))
				sb.WriteString(fmt.Sprintf("  Arguments: %s\n", renderParams(def)))
			}
		}
	}
	sb.WriteString(systemPromptPolicy)
	return sb.String()
}

func renderParams(def tools.Definition) string {
	required := make(map[string]bool, len(def.Parameters.Required))
	for _, name := range def.Parameters.Required {
		required[name] = true
	}
	names := make([]string, 0, len(def.Parameters.Properties))
	for name := range def.Parameters.Properties {
		names = append(names, name)
	}
	// required params first, then alphabetical
	sort.Slice(names, func(i, j int) bool {
		if required[names[i]] != required[names[j]] {
			return required[names[i]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, 0, len(names))
	for _, name := range names {
		prop := def.Parameters.Properties[name]
		kind := "optional"
		if required[name] {
			kind = "required"
		}
		parts = append(parts, fmt.Sprintf("%s (%s, %s)", name, prop.Type, kind))
	}
	return strings.Join(parts, ", ")
}

func ptr[T any](v T) *T {
	return &v
}
