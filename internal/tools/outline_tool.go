package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lectern-ai/lectern/internal/model"
)

// OutlineTool returns the full outline of a course: title, link and every
// lesson in ascending numeric order.
type OutlineTool struct {
	retriever   Retriever
	lastSources []model.Source
}

func NewOutlineTool(retriever Retriever) *OutlineTool {
	return &OutlineTool{retriever: retriever}
}

func (t *OutlineTool) Definition() Definition {
	return Definition{
		Name:        "get_course_outline",
		Description: "Get the complete outline of a course: its title, link and full lesson list",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"course_title": {
					Type:        "string",
					Description: "Course title (partial matches work)",
				},
			},
			Required: []string{"course_title"},
		},
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args map[string]interface{}) string {
	courseTitle, ok := stringArg(args, "course_title")
	if !ok {
		return "Error: 'course_title' parameter is required"
	}
	outline, err := t.retriever.GetCourseOutline(ctx, courseTitle)
	if err != nil {
		return fmt.Sprintf("No course found matching '%s'", courseTitle)
	}

	lessons := make([]model.Lesson, len(outline.Lessons))
	copy(lessons, outline.Lessons)
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].LessonNumber < lessons[j].LessonNumber
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Course: %s\n", outline.Title)
	if outline.CourseLink != "" {
		fmt.Fprintf(&sb, "Link: %s\n", outline.CourseLink)
	}
	fmt.Fprintf(&sb, "Lessons (%d):\n", len(lessons))
	for _, lesson := range lessons {
		fmt.Fprintf(&sb, "Lesson %d: %s\n", lesson.LessonNumber, lesson.Title)
	}

	source := model.Source{Title: outline.Title}
	if outline.CourseLink != "" {
		source.Link = outline.CourseLink
	}
	t.lastSources = []model.Source{source}
	return strings.TrimRight(sb.String(), "\n")
}

func (t *OutlineTool) LastSources() []model.Source {
	return t.lastSources
}

func (t *OutlineTool) ResetSources() {
	t.lastSources = nil
}
