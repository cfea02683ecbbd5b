package search

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lectern-ai/lectern/internal/ai"
	"github.com/lectern-ai/lectern/internal/model"
	appErr "github.com/lectern-ai/lectern/internal/pkg/errors"
	"github.com/lectern-ai/lectern/internal/repo"
)

const (
	taskTypeQuery    = "RETRIEVAL_QUERY"
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
)

// CourseIndex is the course-catalog side of the two-tier index.
type CourseIndex interface {
	Upsert(ctx context.Context, course *model.Course, embedding []float32) error
	NearestTitle(ctx context.Context, embedding []float32) (string, error)
	Get(ctx context.Context, title string) (*model.Course, error)
	Count(ctx context.Context) (int, error)
	ListTitles(ctx context.Context) ([]string, error)
	ListByTitles(ctx context.Context, titles []string) (map[string]*model.Course, error)
}

// ChunkIndex is the content-chunk side of the two-tier index.
type ChunkIndex interface {
	Insert(ctx context.Context, chunks []model.CourseChunk, embeddings [][]float32) error
	Query(ctx context.Context, embedding []float32, filter repo.ChunkFilter, limit int) (*model.SearchResults, error)
	DeleteByCourse(ctx context.Context, courseTitle string) error
}

// Options scopes one content search. A nil Limit means the configured
// maximum result count.
type Options struct {
	CourseName   string
	LessonNumber *int
	Limit        *int
}

// Engine resolves fuzzy course names against the catalog index and runs
// filtered semantic search over the chunk index. Semantic matching is used
// for naming, exact matching for scoping.
type Engine struct {
	courses    CourseIndex
	chunks     ChunkIndex
	embedder   ai.IEmbedder
	maxResults int
}

func NewEngine(courses CourseIndex, chunks ChunkIndex, embedder ai.IEmbedder, maxResults int) *Engine {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Engine{
		courses:    courses,
		chunks:     chunks,
		embedder:   embedder,
		maxResults: maxResults,
	}
}

// ResolveCourseName maps a user-supplied partial course name to the canonical
// title of the semantically closest indexed course. Returns ErrNotFound when
// the catalog is empty or the lookup backend fails.
func (e *Engine) ResolveCourseName(ctx context.Context, query string) (string, error) {
	embedding, err := e.embedder.Embed(ctx, query, taskTypeQuery)
	if err != nil {
		logutil.GetLogger(ctx).Error("embed course name failed", zap.String("query", query), zap.Error(err))
		return "", fmt.Errorf("%w: resolve course name", appErr.ErrNotFound)
	}
	title, err := e.courses.NearestTitle(ctx, embedding)
	if err != nil {
		if !appErr.IsNotFound(err) {
			logutil.GetLogger(ctx).Error("course title lookup failed", zap.String("query", query), zap.Error(err))
		}
		return "", appErr.ErrNotFound
	}
	return title, nil
}

// Search runs semantic search over the content index. Failures are captured
// in SearchResults.Error and never propagate to the caller.
func (e *Engine) Search(ctx context.Context, query string, opts Options) *model.SearchResults {
	var filter repo.ChunkFilter
	if opts.CourseName != "" {
		title, err := e.ResolveCourseName(ctx, opts.CourseName)
		if err != nil {
			return model.EmptySearchResults(fmt.Sprintf("No course found matching '%s'", opts.CourseName))
		}
		filter.CourseTitle = title
	}
	filter.LessonNumber = opts.LessonNumber

	limit := e.maxResults
	if opts.Limit != nil {
		limit = *opts.Limit
	}
	if limit <= 0 {
		// An explicit zero limit is a legitimate request for nothing.
		return &model.SearchResults{}
	}

	embedding, err := e.embedder.Embed(ctx, query, taskTypeQuery)
	if err != nil {
		logutil.GetLogger(ctx).Error("embed search query failed", zap.Error(err))
		return model.EmptySearchResults(fmt.Sprintf("Search error: %v", err))
	}
	results, err := e.chunks.Query(ctx, embedding, filter, limit)
	if err != nil {
		logutil.GetLogger(ctx).Error("chunk query failed", zap.Error(err))
		return model.EmptySearchResults(fmt.Sprintf("Search error: %v", err))
	}
	return results
}

// GetCourseOutline resolves the title then returns the course's full ordered
// lesson list.
func (e *Engine) GetCourseOutline(ctx context.Context, courseTitle string) (*model.CourseOutline, error) {
	title, err := e.ResolveCourseName(ctx, courseTitle)
	if err != nil {
		return nil, appErr.ErrNotFound
	}
	course, err := e.courses.Get(ctx, title)
	if err != nil {
		return nil, err
	}
	return &model.CourseOutline{
		Title:      course.Title,
		CourseLink: course.CourseLink,
		Lessons:    course.Lessons,
	}, nil
}

// LessonLink returns the link of one lesson of a course, when known.
func (e *Engine) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, bool) {
	course, err := e.courses.Get(ctx, courseTitle)
	if err != nil {
		return "", false
	}
	return course.LessonLink(lessonNumber)
}

// AddCourseMetadata indexes one course in the catalog, embedding its title
// for fuzzy resolution.
func (e *Engine) AddCourseMetadata(ctx context.Context, course *model.Course) error {
	embedding, err := e.embedder.Embed(ctx, course.Title, taskTypeDocument)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}
	return e.courses.Upsert(ctx, course, embedding)
}

// AddCourseContent indexes the given chunks in the content index.
func (e *Engine) AddCourseContent(ctx context.Context, chunks []model.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	embeddings := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := e.embedder.Embed(ctx, chunk.Content, taskTypeDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d of %s: %w", chunk.ChunkIndex, chunk.CourseTitle, err)
		}
		embeddings = append(embeddings, embedding)
	}
	return e.chunks.Insert(ctx, chunks, embeddings)
}

// ClearCourse removes a course and its content from both index tiers.
func (e *Engine) ClearCourse(ctx context.Context, courseTitle string) error {
	return e.chunks.DeleteByCourse(ctx, courseTitle)
}

func (e *Engine) CourseCount(ctx context.Context) (int, error) {
	return e.courses.Count(ctx)
}

func (e *Engine) CourseTitles(ctx context.Context) ([]string, error) {
	return e.courses.ListTitles(ctx)
}

// ExistingCourses reports which of the given titles are already in the
// catalog.
func (e *Engine) ExistingCourses(ctx context.Context, titles []string) (map[string]struct{}, error) {
	courses, err := e.courses.ListByTitles(ctx, titles)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]struct{}, len(courses))
	for title := range courses {
		existing[title] = struct{}{}
	}
	return existing, nil
}

func (e *Engine) MaxResults() int {
	return e.maxResults
}
