package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptySearchResults(t *testing.T) {
	results := EmptySearchResults("boom")
	require.Equal(t, "boom", results.Error)
	require.True(t, results.IsEmpty())
	require.Empty(t, results.Documents)
	require.Empty(t, results.Metadata)
	require.Empty(t, results.Distances)
}

func TestSearchResultsIsEmpty(t *testing.T) {
	require.True(t, (&SearchResults{}).IsEmpty())
	require.False(t, (&SearchResults{Documents: []string{"doc"}}).IsEmpty())
}

func TestCourseLessonLink(t *testing.T) {
	course := &Course{
		Title: "MCP",
		Lessons: []Lesson{
			{LessonNumber: 1, Title: "Basics", LessonLink: "https://example.com/l1"},
			{LessonNumber: 2, Title: "Tools"},
		},
	}
	link, ok := course.LessonLink(1)
	require.True(t, ok)
	require.Equal(t, "https://example.com/l1", link)

	link, ok = course.LessonLink(2)
	require.False(t, ok)
	require.Empty(t, link)

	_, ok = course.LessonLink(5)
	require.False(t, ok)
}
