package ingest

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/internal/model"
	appErr "github.com/lectern-ai/lectern/internal/pkg/errors"
	"github.com/lectern-ai/lectern/internal/repo"
	"github.com/lectern-ai/lectern/internal/search"
)

type fakeStore struct {
	docs map[string]string
}

func (f *fakeStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.docs))
	for key := range f.docs {
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	content, ok := f.docs[key]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

type memCourseIndex struct {
	courses map[string]*model.Course
}

func (m *memCourseIndex) Upsert(ctx context.Context, course *model.Course, embedding []float32) error {
	if m.courses == nil {
		m.courses = map[string]*model.Course{}
	}
	m.courses[course.Title] = course
	return nil
}

func (m *memCourseIndex) NearestTitle(ctx context.Context, embedding []float32) (string, error) {
	return "", appErr.ErrNotFound
}

func (m *memCourseIndex) Get(ctx context.Context, title string) (*model.Course, error) {
	course, ok := m.courses[title]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return course, nil
}

func (m *memCourseIndex) Count(ctx context.Context) (int, error) {
	return len(m.courses), nil
}

func (m *memCourseIndex) ListTitles(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *memCourseIndex) ListByTitles(ctx context.Context, titles []string) (map[string]*model.Course, error) {
	found := map[string]*model.Course{}
	for _, title := range titles {
		if course, ok := m.courses[title]; ok {
			found[title] = course
		}
	}
	return found, nil
}

type memChunkIndex struct {
	chunks  []model.CourseChunk
	deleted []string
}

func (m *memChunkIndex) Insert(ctx context.Context, chunks []model.CourseChunk, embeddings [][]float32) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memChunkIndex) Query(ctx context.Context, embedding []float32, filter repo.ChunkFilter, limit int) (*model.SearchResults, error) {
	return &model.SearchResults{}, nil
}

func (m *memChunkIndex) DeleteByCourse(ctx context.Context, courseTitle string) error {
	m.deleted = append(m.deleted, courseTitle)
	kept := m.chunks[:0]
	for _, chunk := range m.chunks {
		if chunk.CourseTitle != courseTitle {
			kept = append(kept, chunk)
		}
	}
	m.chunks = kept
	return nil
}

type constEmbedder struct{}

func (constEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return []float32{0.5}, nil
}

func (constEmbedder) ModelName() string {
	return "const-embed"
}

func newTestIngestor(store *fakeStore) (*Ingestor, *memCourseIndex, *memChunkIndex) {
	courses := &memCourseIndex{}
	chunks := &memChunkIndex{}
	engine := search.NewEngine(courses, chunks, constEmbedder{}, 5)
	return NewIngestor(store, engine, 800, 100), courses, chunks
}

func TestIngestorLoadAll_IndexesCoursesAndChunks(t *testing.T) {
	store := &fakeStore{docs: map[string]string{
		"mcp.txt": sampleScript,
	}}
	ing, courses, chunks := newTestIngestor(store)

	added, chunkCount, err := ing.LoadAll(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Equal(t, len(chunks.chunks), chunkCount)
	require.Contains(t, courses.courses, "Introduction to MCP")
	require.NotEmpty(t, chunks.chunks)

	// preamble chunks carry no lesson number, lesson chunks carry theirs,
	// chunk indexes ascend across the whole course
	require.Nil(t, chunks.chunks[0].LessonNumber)
	for i, chunk := range chunks.chunks {
		require.Equal(t, i, chunk.ChunkIndex)
		require.Equal(t, "Introduction to MCP", chunk.CourseTitle)
	}
	last := chunks.chunks[len(chunks.chunks)-1]
	require.NotNil(t, last.LessonNumber)
	require.Equal(t, 1, *last.LessonNumber)
}

func TestIngestorLoadAll_SkipsExistingCourses(t *testing.T) {
	store := &fakeStore{docs: map[string]string{
		"mcp.txt": sampleScript,
	}}
	ing, _, chunks := newTestIngestor(store)

	_, _, err := ing.LoadAll(context.Background(), false)
	require.NoError(t, err)
	before := len(chunks.chunks)

	added, chunkCount, err := ing.LoadAll(context.Background(), false)
	require.NoError(t, err)
	require.Zero(t, added)
	require.Zero(t, chunkCount)
	require.Len(t, chunks.chunks, before)
}

func TestIngestorLoadAll_ClearExistingRebuilds(t *testing.T) {
	store := &fakeStore{docs: map[string]string{
		"mcp.txt": sampleScript,
	}}
	ing, _, chunks := newTestIngestor(store)

	_, _, err := ing.LoadAll(context.Background(), false)
	require.NoError(t, err)
	before := len(chunks.chunks)

	added, chunkCount, err := ing.LoadAll(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Equal(t, before, chunkCount)
	require.Equal(t, []string{"Introduction to MCP"}, chunks.deleted)
	require.Len(t, chunks.chunks, before)
}

func TestIngestorLoadAll_SkipsUnparseableDocuments(t *testing.T) {
	store := &fakeStore{docs: map[string]string{
		"broken.txt": "no header at all",
		"mcp.txt":    sampleScript,
	}}
	ing, courses, _ := newTestIngestor(store)

	added, _, err := ing.LoadAll(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Len(t, courses.courses, 1)
}

func TestIngestorLoadAll_EmptyStore(t *testing.T) {
	ing, _, _ := newTestIngestor(&fakeStore{docs: map[string]string{}})
	added, chunkCount, err := ing.LoadAll(context.Background(), false)
	require.NoError(t, err)
	require.Zero(t, added)
	require.Zero(t, chunkCount)
}
