package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/lectern-ai/lectern/internal/model"
	"github.com/lectern-ai/lectern/internal/search"
)

// SearchTool searches course content with fuzzy course-name matching and
// optional lesson filtering.
type SearchTool struct {
	retriever   Retriever
	lastSources []model.Source
}

func NewSearchTool(retriever Retriever) *SearchTool {
	return &SearchTool{retriever: retriever}
}

func (t *SearchTool) Definition() Definition {
	return Definition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) string {
	query, ok := stringArg(args, "query")
	if !ok {
		return "Error: 'query' parameter is required"
	}
	opts := search.Options{}
	if courseName, ok := stringArg(args, "course_name"); ok {
		opts.CourseName = courseName
	}
	lessonNumber, ok := intArg(args, "lesson_number")
	if !ok {
		return "Error: 'lesson_number' must be an integer"
	}
	opts.LessonNumber = lessonNumber

	results := t.retriever.Search(ctx, query, opts)
	if results.Error != "" {
		return results.Error
	}
	if results.IsEmpty() {
		return t.emptyMessage(opts)
	}
	return t.format(ctx, results)
}

func (t *SearchTool) emptyMessage(opts search.Options) string {
	var filters []string
	if opts.CourseName != "" {
		filters = append(filters, fmt.Sprintf("in course '%s'", opts.CourseName))
	}
	if opts.LessonNumber != nil {
		filters = append(filters, fmt.Sprintf("in lesson %d", *opts.LessonNumber))
	}
	if len(filters) == 0 {
		return "No relevant content found."
	}
	return fmt.Sprintf("No relevant content found %s.", strings.Join(filters, " "))
}

func (t *SearchTool) format(ctx context.Context, results *model.SearchResults) string {
	blocks := make([]string, 0, len(results.Documents))
	sources := make([]model.Source, 0, len(results.Documents))
	for i, doc := range results.Documents {
		meta := results.Metadata[i]
		header := meta.CourseTitle
		source := model.Source{Title: meta.CourseTitle}
		if meta.LessonNumber != nil {
			header = fmt.Sprintf("%s - Lesson %d", meta.CourseTitle, *meta.LessonNumber)
			source.Title = header
			if link, ok := t.retriever.LessonLink(ctx, meta.CourseTitle, *meta.LessonNumber); ok {
				source.Link = link
			}
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", header, doc))
		sources = append(sources, source)
	}
	t.lastSources = sources
	return strings.Join(blocks, "\n\n")
}

func (t *SearchTool) LastSources() []model.Source {
	return t.lastSources
}

func (t *SearchTool) ResetSources() {
	t.lastSources = nil
}
