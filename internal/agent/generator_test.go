package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/internal/ai"
	"github.com/lectern-ai/lectern/internal/model"
	"github.com/lectern-ai/lectern/internal/tools"
)

type fakeChatClient struct {
	replies []string
	err     error
	calls   [][]ai.Message
	opts    []ai.ChatOptions
}

func (f *fakeChatClient) Chat(ctx context.Context, msgs []ai.Message, opts ai.ChatOptions) (string, error) {
	f.calls = append(f.calls, msgs)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[len(f.calls)-1]
	return reply, nil
}

type recordingTool struct {
	name    string
	result  string
	calls   int
	sources []model.Source
}

func (r *recordingTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        r.name,
		Description: "test tool",
		Parameters: tools.Schema{
			Type: "object",
			Properties: map[string]tools.Property{
				"query": {Type: "string", Description: "query"},
			},
			Required: []string{"query"},
		},
	}
}

func (r *recordingTool) Execute(ctx context.Context, args map[string]interface{}) string {
	r.calls++
	return r.result
}

func (r *recordingTool) LastSources() []model.Source {
	return r.sources
}

func (r *recordingTool) ResetSources() {
	r.sources = nil
}

func newTestRegistry(t *testing.T, tool tools.Tool) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(tool))
	return registry
}

func TestGeneratorAnswer_DirectPath(t *testing.T) {
	client := &fakeChatClient{replies: []string{"Paris is the capital of France."}}
	gen := NewGenerator(client)
	registry := newTestRegistry(t, &recordingTool{name: "search_course_content"})

	answer, err := gen.Answer(context.Background(), "capital of France?", "", registry)
	require.NoError(t, err)
	require.Equal(t, "Paris is the capital of France.", answer)
	require.Len(t, client.calls, 1)

	msgs := client.calls[0]
	require.Len(t, msgs, 2)
	require.Equal(t, ai.RoleSystem, msgs[0].Role)
	require.Equal(t, ai.RoleUser, msgs[1].Role)
	require.Equal(t, "capital of France?", msgs[1].Content)
}

func TestGeneratorAnswer_ToolPath(t *testing.T) {
	client := &fakeChatClient{replies: []string{
		`<tool_call>{"name": "search_course_content", "arguments": {"query": "API"}}</tool_call>`,
		"The course covers REST APIs in lesson 2.",
	}}
	gen := NewGenerator(client)
	tool := &recordingTool{name: "search_course_content", result: "[MCP - Lesson 2]\nREST API content"}
	registry := newTestRegistry(t, tool)

	answer, err := gen.Answer(context.Background(), "what about APIs?", "", registry)
	require.NoError(t, err)
	require.Equal(t, "The course covers REST APIs in lesson 2.", answer)
	require.Equal(t, 1, tool.calls)
	require.Len(t, client.calls, 2)

	followup := client.calls[1]
	require.Len(t, followup, 4)
	require.Equal(t, ai.RoleAssistant, followup[2].Role)
	require.Equal(t, ai.RoleUser, followup[3].Role)
	require.True(t, strings.HasPrefix(followup[3].Content, "Tool result:\n[MCP - Lesson 2]\nREST API content"))
	require.Contains(t, followup[3].Content, "do not mention that you searched")
}

func TestGeneratorAnswer_AtMostOneToolInvocation(t *testing.T) {
	client := &fakeChatClient{replies: []string{
		`<tool_call>{"name": "search_course_content", "arguments": {"query": "a"}}</tool_call>` +
			`<tool_call>{"name": "search_course_content", "arguments": {"query": "b"}}</tool_call>`,
		`Done. <tool_call>{"name": "search_course_content", "arguments": {"query": "c"}}</tool_call>`,
	}}
	gen := NewGenerator(client)
	tool := &recordingTool{name: "search_course_content", result: "content"}
	registry := newTestRegistry(t, tool)

	answer, err := gen.Answer(context.Background(), "question", "", registry)
	require.NoError(t, err)
	require.Equal(t, 1, tool.calls)
	require.Len(t, client.calls, 2)
	require.Equal(t, "Done.", answer)
}

func TestGeneratorAnswer_NilRegistryStripsMarkup(t *testing.T) {
	client := &fakeChatClient{replies: []string{
		`Checking. <tool_call>{"name": "search_course_content", "arguments": {"query": "x"}}</tool_call>`,
	}}
	gen := NewGenerator(client)

	answer, err := gen.Answer(context.Background(), "question", "", nil)
	require.NoError(t, err)
	require.Equal(t, "Checking.", answer)
	require.Len(t, client.calls, 1)
}

func TestGeneratorAnswer_UnknownToolFeedsResultBack(t *testing.T) {
	client := &fakeChatClient{replies: []string{
		`<tool_call>{"name": "nonexistent_tool", "arguments": {}}</tool_call>`,
		"I could not find that.",
	}}
	gen := NewGenerator(client)
	registry := newTestRegistry(t, &recordingTool{name: "search_course_content"})

	answer, err := gen.Answer(context.Background(), "question", "", registry)
	require.NoError(t, err)
	require.Equal(t, "I could not find that.", answer)
	require.Contains(t, client.calls[1][3].Content, "Tool 'nonexistent_tool' not found")
}

func TestGeneratorAnswer_TemperatureZero(t *testing.T) {
	client := &fakeChatClient{replies: []string{"answer"}}
	gen := NewGenerator(client)

	_, err := gen.Answer(context.Background(), "q", "", nil)
	require.NoError(t, err)
	require.NotNil(t, client.opts[0].Temperature)
	require.Equal(t, float32(0), *client.opts[0].Temperature)
}

func TestGeneratorAnswer_HistoryAppendedToSystemPrompt(t *testing.T) {
	client := &fakeChatClient{replies: []string{"answer"}}
	gen := NewGenerator(client)

	history := "User: hi\nAssistant: hello"
	_, err := gen.Answer(context.Background(), "q", history, nil)
	require.NoError(t, err)
	require.Contains(t, client.calls[0][0].Content, "Previous conversation:\n"+history)
}

func TestGeneratorAnswer_SystemPromptListsTools(t *testing.T) {
	client := &fakeChatClient{replies: []string{"answer"}}
	gen := NewGenerator(client)
	registry := newTestRegistry(t, &recordingTool{name: "search_course_content"})

	_, err := gen.Answer(context.Background(), "q", "", registry)
	require.NoError(t, err)
	system := client.calls[0][0].Content
	require.Contains(t, system, "## Available Tools")
	require.Contains(t, system, "search_course_content")
	require.Contains(t, system, "query (string, required)")
}

func TestGeneratorAnswer_CompletionErrorPropagates(t *testing.T) {
	client := &fakeChatClient{err: fmt.Errorf("backend down")}
	gen := NewGenerator(client)

	_, err := gen.Answer(context.Background(), "q", "", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "completion request")
	require.Contains(t, err.Error(), "backend down")
}
