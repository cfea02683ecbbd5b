package tools

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/lectern-ai/lectern/internal/model"
	"github.com/lectern-ai/lectern/internal/search"
)

// Retriever is the slice of the retrieval engine the tools consume.
type Retriever interface {
	Search(ctx context.Context, query string, opts search.Options) *model.SearchResults
	GetCourseOutline(ctx context.Context, courseTitle string) (*model.CourseOutline, error)
	LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, bool)
}

// Property describes one parameter of a tool, JSON-schema style.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Definition is the model-facing declaration of one capability.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// Tool is one named capability the orchestrator may invoke. Execute returns
// result text for the model; failures are rendered as text, never raised.
// LastSources is overwritten by each Execute call and cleared by
// ResetSources once the turn completes.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, args map[string]interface{}) string
	LastSources() []model.Source
	ResetSources()
}

func stringArg(args map[string]interface{}, key string) (string, bool) {
	value, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// intArg tolerates the numeric shapes JSON decoding can produce, plus
// numeric strings some models emit.
func intArg(args map[string]interface{}, key string) (*int, bool) {
	value, ok := args[key]
	if !ok || value == nil {
		return nil, true
	}
	switch v := value.(type) {
	case float64:
		n := int(v)
		return &n, true
	case int:
		n := v
		return &n, true
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return nil, false
		}
		n := int(parsed)
		return &n, true
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, false
		}
		return &parsed, true
	default:
		return nil, false
	}
}
