package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/internal/model"
	"github.com/lectern-ai/lectern/internal/search"
)

type fakeRetriever struct {
	results    *model.SearchResults
	outline    *model.CourseOutline
	outlineErr error
	links      map[string]string

	lastQuery string
	lastOpts  search.Options
}

func (f *fakeRetriever) Search(ctx context.Context, query string, opts search.Options) *model.SearchResults {
	f.lastQuery = query
	f.lastOpts = opts
	if f.results == nil {
		return &model.SearchResults{}
	}
	return f.results
}

func (f *fakeRetriever) GetCourseOutline(ctx context.Context, courseTitle string) (*model.CourseOutline, error) {
	if f.outlineErr != nil {
		return nil, f.outlineErr
	}
	return f.outline, nil
}

func (f *fakeRetriever) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, bool) {
	link, ok := f.links[fmt.Sprintf("%s/%d", courseTitle, lessonNumber)]
	return link, ok
}

func intp(n int) *int {
	return &n
}

func TestSearchToolExecute_FormatsResultsAndTracksSources(t *testing.T) {
	retriever := &fakeRetriever{
		results: &model.SearchResults{
			Documents: []string{"first chunk", "second chunk"},
			Metadata: []model.ChunkMeta{
				{CourseTitle: "Intro to MCP", LessonNumber: intp(1)},
				{CourseTitle: "Intro to MCP", LessonNumber: intp(3)},
			},
		},
		links: map[string]string{
			"Intro to MCP/1": "https://example.com/lesson1",
		},
	}
	tool := NewSearchTool(retriever)

	out := tool.Execute(context.Background(), map[string]interface{}{"query": "what is MCP"})
	require.Equal(t, "[Intro to MCP - Lesson 1]\nfirst chunk\n\n[Intro to MCP - Lesson 3]\nsecond chunk", out)
	require.Equal(t, "what is MCP", retriever.lastQuery)

	sources := tool.LastSources()
	require.Len(t, sources, 2)
	require.Equal(t, model.Source{Title: "Intro to MCP - Lesson 1", Link: "https://example.com/lesson1"}, sources[0])
	require.Equal(t, model.Source{Title: "Intro to MCP - Lesson 3"}, sources[1])

	tool.ResetSources()
	require.Empty(t, tool.LastSources())
}

func TestSearchToolExecute_HeaderWithoutLessonNumber(t *testing.T) {
	retriever := &fakeRetriever{
		results: &model.SearchResults{
			Documents: []string{"course overview"},
			Metadata:  []model.ChunkMeta{{CourseTitle: "Intro to MCP"}},
		},
	}
	tool := NewSearchTool(retriever)

	out := tool.Execute(context.Background(), map[string]interface{}{"query": "overview"})
	require.Equal(t, "[Intro to MCP]\ncourse overview", out)
	require.Equal(t, []model.Source{{Title: "Intro to MCP"}}, tool.LastSources())
}

func TestSearchToolExecute_MissingQuery(t *testing.T) {
	tool := NewSearchTool(&fakeRetriever{})
	require.Equal(t, "Error: 'query' parameter is required", tool.Execute(context.Background(), map[string]interface{}{}))
	require.Equal(t, "Error: 'query' parameter is required", tool.Execute(context.Background(), map[string]interface{}{"query": ""}))
}

func TestSearchToolExecute_PassesFilters(t *testing.T) {
	retriever := &fakeRetriever{}
	tool := NewSearchTool(retriever)

	tool.Execute(context.Background(), map[string]interface{}{
		"query":         "deadlocks",
		"course_name":   "MCP",
		"lesson_number": float64(4),
	})
	require.Equal(t, "MCP", retriever.lastOpts.CourseName)
	require.NotNil(t, retriever.lastOpts.LessonNumber)
	require.Equal(t, 4, *retriever.lastOpts.LessonNumber)
}

func TestSearchToolExecute_BadLessonNumber(t *testing.T) {
	tool := NewSearchTool(&fakeRetriever{})
	out := tool.Execute(context.Background(), map[string]interface{}{
		"query":         "deadlocks",
		"lesson_number": "four",
	})
	require.Equal(t, "Error: 'lesson_number' must be an integer", out)
}

func TestSearchToolExecute_ErrorPassthrough(t *testing.T) {
	retriever := &fakeRetriever{
		results: model.EmptySearchResults("No course found matching 'Nonexistent'"),
	}
	tool := NewSearchTool(retriever)

	out := tool.Execute(context.Background(), map[string]interface{}{"query": "anything", "course_name": "Nonexistent"})
	require.Equal(t, "No course found matching 'Nonexistent'", out)
	require.Empty(t, tool.LastSources())
}

func TestSearchToolExecute_EmptyMessages(t *testing.T) {
	tool := NewSearchTool(&fakeRetriever{})
	ctx := context.Background()

	require.Equal(t, "No relevant content found.",
		tool.Execute(ctx, map[string]interface{}{"query": "x"}))
	require.Equal(t, "No relevant content found in course 'MCP'.",
		tool.Execute(ctx, map[string]interface{}{"query": "x", "course_name": "MCP"}))
	require.Equal(t, "No relevant content found in lesson 2.",
		tool.Execute(ctx, map[string]interface{}{"query": "x", "lesson_number": float64(2)}))
	require.Equal(t, "No relevant content found in course 'MCP' in lesson 2.",
		tool.Execute(ctx, map[string]interface{}{"query": "x", "course_name": "MCP", "lesson_number": float64(2)}))
}

func TestSearchToolExecute_SourcesOverwrittenPerCall(t *testing.T) {
	retriever := &fakeRetriever{
		results: &model.SearchResults{
			Documents: []string{"a"},
			Metadata:  []model.ChunkMeta{{CourseTitle: "First"}},
		},
	}
	tool := NewSearchTool(retriever)
	tool.Execute(context.Background(), map[string]interface{}{"query": "x"})
	require.Equal(t, []model.Source{{Title: "First"}}, tool.LastSources())

	retriever.results = &model.SearchResults{
		Documents: []string{"b"},
		Metadata:  []model.ChunkMeta{{CourseTitle: "Second"}},
	}
	tool.Execute(context.Background(), map[string]interface{}{"query": "y"})
	require.Equal(t, []model.Source{{Title: "Second"}}, tool.LastSources())
}

func TestIntArg_Coercions(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  *int
		ok    bool
	}{
		{"float64", float64(3), intp(3), true},
		{"int", 7, intp(7), true},
		{"numeric string", "12", intp(12), true},
		{"missing", nil, nil, true},
		{"garbage string", "twelve", nil, false},
		{"bool", true, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := map[string]interface{}{}
			if tc.value != nil {
				args["n"] = tc.value
			}
			got, ok := intArg(args, "n")
			require.Equal(t, tc.ok, ok)
			if tc.want == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, *tc.want, *got)
		})
	}
}
