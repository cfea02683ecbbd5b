package ai

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat exchange, in provider-neutral form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions carries sampling options. A nil Temperature leaves the
// provider default in place.
type ChatOptions struct {
	Temperature *float32
}

type ModelInfo struct {
	Name string `json:"name"`
	Size string `json:"size,omitempty"`
}

type IProvider interface {
	Name() string
	Chat(ctx context.Context, model string, msgs []Message, opts ChatOptions) (string, error)
	Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error)
}

// IModelLister is implemented by providers that can enumerate their
// locally available models.
type IModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

type IChatClient interface {
	Chat(ctx context.Context, msgs []Message, opts ChatOptions) (string, error)
}

type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}

type chatClient struct {
	provider IProvider
	model    string
}

func NewChatClient(p IProvider, model string) IChatClient {
	return &chatClient{provider: p, model: model}
}

func (c *chatClient) Chat(ctx context.Context, msgs []Message, opts ChatOptions) (string, error) {
	return c.provider.Chat(ctx, c.model, msgs, opts)
}

type embedder struct {
	provider IProvider
	model    string
}

func NewEmbedder(p IProvider, model string) IEmbedder {
	return &embedder{provider: p, model: model}
}

func (e *embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return e.provider.Embed(ctx, e.model, text, taskType)
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}
